package models

import "time"

// Watch statuses a tracked movie can hold. The strings are part of the wire
// contract and are stored verbatim.
const (
	StatusWatched    = "Watched"
	StatusInProgress = "In Progress"
	StatusNotYet     = "Not Yet"
)

// ValidStatus reports whether s is one of the recognised watch statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusWatched, StatusInProgress, StatusNotYet:
		return true
	}
	return false
}

// MovieEntry is a user's tracked title plus watch status. Title and poster
// are copied from the catalog at add time and never re-synced.
type MovieEntry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	TMDBID     int64     `json:"tmdb_id"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
