package handlers

import (
	"context"
	"errors"
	"net/http"

	"reeltrack/models"
	"reeltrack/services/catalog"
	"reeltrack/services/recommend"
	"reeltrack/services/sessions"
)

type catalogSearcher interface {
	Search(ctx context.Context, query string) ([]models.CatalogItem, error)
}

var _ catalogSearcher = (*catalog.Client)(nil)

type recommender interface {
	Recommend(ctx context.Context, userID int64) ([]models.CatalogItem, error)
}

var _ recommender = (*recommend.Service)(nil)

// CatalogHandler proxies catalog search and serves the personalized feed.
// The proxy keeps the catalog API key off the client.
type CatalogHandler struct {
	Catalog   catalogSearcher
	Recommend recommender
}

func NewCatalogHandler(catalogClient catalogSearcher, recommendSvc recommender) *CatalogHandler {
	return &CatalogHandler{Catalog: catalogClient, Recommend: recommendSvc}
}

// Search forwards a title query to the catalog.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	items, err := h.Catalog.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, catalog.ErrQueryRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logServerError(r, err)
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Recommendations returns the aggregated feed for the session user.
func (h *CatalogHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	identity, ok := sessions.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, sessions.ErrTokenInvalid.Error())
		return
	}

	items, err := h.Recommend.Recommend(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, recommend.ErrUpstream) {
			writeError(w, http.StatusBadGateway, "catalog unavailable")
			return
		}
		logServerError(r, err)
		writeError(w, http.StatusInternalServerError, "error building recommendations")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
