package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"reeltrack/models"
	"reeltrack/services/accounts"
	"reeltrack/services/sessions"
)

type accountsService interface {
	Signup(ctx context.Context, name, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
}

var _ accountsService = (*accounts.Service)(nil)

type sessionIssuer interface {
	Issue(user models.User) (string, error)
}

var _ sessionIssuer = (*sessions.Service)(nil)

type AuthHandler struct {
	Accounts accountsService
	Sessions sessionIssuer
}

func NewAuthHandler(accountsSvc accountsService, sessionsSvc sessionIssuer) *AuthHandler {
	return &AuthHandler{Accounts: accountsSvc, Sessions: sessionsSvc}
}

// Signup registers a new account and returns its public fields.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Accounts.Signup(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrFieldsRequired), errors.Is(err, accounts.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logServerError(r, err)
			writeError(w, http.StatusInternalServerError, "server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login verifies credentials and returns a session token alongside the
// user's public fields.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Accounts.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrFieldsRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, accounts.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, accounts.ErrInvalidCredentials.Error())
		default:
			logServerError(r, err)
			writeError(w, http.StatusInternalServerError, "server error")
		}
		return
	}

	token, err := h.Sessions.Issue(user)
	if err != nil {
		logServerError(r, err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Me returns the account behind the request's session token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := sessions.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, sessions.ErrTokenInvalid.Error())
		return
	}

	user, err := h.Accounts.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, sessions.ErrTokenInvalid.Error())
			return
		}
		logServerError(r, err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
