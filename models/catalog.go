package models

// CatalogItem is a title as returned by the external movie catalog.
type CatalogItem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
	Overview   string `json:"overview"`
}
