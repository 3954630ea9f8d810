package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"reeltrack/models"
)

var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrTMDBIDRequired = errors.New("tmdb id is required")
	ErrTitleRequired  = errors.New("title is required")
	ErrInvalidStatus  = errors.New("status must be one of Watched, In Progress, Not Yet")
	// ErrDuplicateEntry is surfaced from the UNIQUE(user_id, tmdb_id)
	// constraint, so concurrent adds cannot both slip through.
	ErrDuplicateEntry = errors.New("movie already tracked for this user")
	ErrEntryNotFound  = errors.New("movie entry not found")
	ErrNotOwner       = errors.New("movie entry belongs to a different user")
)

// Service manages per-user movie entries in the movies table. Every mutation
// takes the authenticated owner's id and rejects mismatches.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Add tracks a new title for the user. Title and poster are copied from the
// catalog at add time.
func (s *Service) Add(ctx context.Context, userID, tmdbID int64, title, posterPath, status string) (models.MovieEntry, error) {
	if userID <= 0 {
		return models.MovieEntry{}, ErrUserIDRequired
	}
	if tmdbID <= 0 {
		return models.MovieEntry{}, ErrTMDBIDRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.MovieEntry{}, ErrTitleRequired
	}
	if !models.ValidStatus(status) {
		return models.MovieEntry{}, ErrInvalidStatus
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO movies (user_id, tmdb_id, title, poster_path, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, tmdbID, title, posterPath, status, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.MovieEntry{}, ErrDuplicateEntry
		}
		return models.MovieEntry{}, fmt.Errorf("insert movie: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.MovieEntry{}, fmt.Errorf("read movie id: %w", err)
	}

	return models.MovieEntry{
		ID:         id,
		UserID:     userID,
		TMDBID:     tmdbID,
		Title:      title,
		PosterPath: posterPath,
		Status:     status,
		CreatedAt:  now,
	}, nil
}

// UpdateStatus changes the watch status of an entry owned by ownerID.
func (s *Service) UpdateStatus(ctx context.Context, entryID, ownerID int64, status string) (models.MovieEntry, error) {
	if !models.ValidStatus(status) {
		return models.MovieEntry{}, ErrInvalidStatus
	}

	entry, err := s.getByID(ctx, entryID)
	if err != nil {
		return models.MovieEntry{}, err
	}
	if entry.UserID != ownerID {
		return models.MovieEntry{}, ErrNotOwner
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE movies SET status = ? WHERE id = ?`, status, entryID); err != nil {
		return models.MovieEntry{}, fmt.Errorf("update movie status: %w", err)
	}

	entry.Status = status
	return entry, nil
}

// Remove deletes an entry owned by ownerID. Deleting an id that does not
// exist reports ErrEntryNotFound; a repeated delete is therefore not a no-op.
func (s *Service) Remove(ctx context.Context, entryID, ownerID int64) error {
	entry, err := s.getByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != ownerID {
		return ErrNotOwner
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, entryID); err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}

	return nil
}

// ListByUser returns all of a user's entries, most recently added first.
// A user with no entries gets an empty slice, not an error.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]models.MovieEntry, error) {
	if userID <= 0 {
		return nil, ErrUserIDRequired
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, tmdb_id, title, poster_path, status, created_at
		 FROM movies WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	entries := make([]models.MovieEntry, 0)
	for rows.Next() {
		var e models.MovieEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.TMDBID, &e.Title, &e.PosterPath, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	return entries, nil
}

func (s *Service) getByID(ctx context.Context, entryID int64) (models.MovieEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, tmdb_id, title, poster_path, status, created_at
		 FROM movies WHERE id = ?`, entryID)

	var e models.MovieEntry
	err := row.Scan(&e.ID, &e.UserID, &e.TMDBID, &e.Title, &e.PosterPath, &e.Status, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MovieEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return models.MovieEntry{}, fmt.Errorf("select movie: %w", err)
	}

	return e, nil
}
