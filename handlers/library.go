package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"reeltrack/models"
	"reeltrack/services/library"
	"reeltrack/services/sessions"
)

type libraryService interface {
	Add(ctx context.Context, userID, tmdbID int64, title, posterPath, status string) (models.MovieEntry, error)
	UpdateStatus(ctx context.Context, entryID, ownerID int64, status string) (models.MovieEntry, error)
	Remove(ctx context.Context, entryID, ownerID int64) error
	ListByUser(ctx context.Context, userID int64) ([]models.MovieEntry, error)
}

var _ libraryService = (*library.Service)(nil)

type LibraryHandler struct {
	Service libraryService
}

func NewLibraryHandler(service libraryService) *LibraryHandler {
	return &LibraryHandler{Service: service}
}

// List returns the caller's movie entries, most recently added first. The
// path user id must match the session identity.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := sessions.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, sessions.ErrTokenInvalid.Error())
		return
	}

	userID, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "user id must be a positive integer")
		return
	}
	if userID != identity.UserID {
		writeError(w, http.StatusUnauthorized, "cannot read another user's movies")
		return
	}

	entries, err := h.Service.ListByUser(r.Context(), userID)
	if err != nil {
		logServerError(r, err)
		writeError(w, http.StatusInternalServerError, "error fetching movies")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Add tracks a new title for the caller.
func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := sessions.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, sessions.ErrTokenInvalid.Error())
		return
	}

	var body struct {
		UserID     int64  `json:"user_id"`
		TMDBID     int64  `json:"tmdb_id"`
		Title      string `json:"title"`
		PosterPath string `json:"poster_path"`
		Status     string `json:"status"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if body.UserID != identity.UserID {
		writeError(w, http.StatusUnauthorized, "cannot add movies for another user")
		return
	}

	entry, err := h.Service.Add(r.Context(), identity.UserID, body.TMDBID, body.Title, body.PosterPath, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrDuplicateEntry):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, library.ErrUserIDRequired),
			errors.Is(err, library.ErrTMDBIDRequired),
			errors.Is(err, library.ErrTitleRequired),
			errors.Is(err, library.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logServerError(r, err)
			writeError(w, http.StatusInternalServerError, "error adding movie")
		}
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// UpdateStatus changes the watch status of one of the caller's entries.
func (h *LibraryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := sessions.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, sessions.ErrTokenInvalid.Error())
		return
	}

	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || entryID <= 0 {
		writeError(w, http.StatusBadRequest, "movie id must be a positive integer")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.Service.UpdateStatus(r.Context(), entryID, identity.UserID, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrEntryNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, library.ErrNotOwner):
			writeError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, library.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logServerError(r, err)
			writeError(w, http.StatusInternalServerError, "error updating movie")
		}
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// Delete removes one of the caller's entries.
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := sessions.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, sessions.ErrTokenInvalid.Error())
		return
	}

	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || entryID <= 0 {
		writeError(w, http.StatusBadRequest, "movie id must be a positive integer")
		return
	}

	if err := h.Service.Remove(r.Context(), entryID, identity.UserID); err != nil {
		switch {
		case errors.Is(err, library.ErrEntryNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, library.ErrNotOwner):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			logServerError(r, err)
			writeError(w, http.StatusInternalServerError, "error deleting movie")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Movie deleted successfully"})
}

func (h *LibraryHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
