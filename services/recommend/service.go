package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sourcegraph/conc"

	"reeltrack/models"
)

// ErrUpstream is returned when no recommendation source could be reached.
var ErrUpstream = errors.New("recommendation sources unavailable")

const (
	// maxSeeds caps how many of the user's most recent qualifying entries
	// seed the similar-items fan-out.
	maxSeeds     = 5
	fetchTimeout = 5 * time.Second
)

type libraryLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.MovieEntry, error)
}

type catalogProvider interface {
	Similar(ctx context.Context, tmdbID int64) ([]models.CatalogItem, error)
	Popular(ctx context.Context) ([]models.CatalogItem, error)
}

// Service aggregates a personalized feed from the catalog's similar-items
// endpoint, seeded by the user's watched and in-progress entries.
type Service struct {
	library libraryLister
	catalog catalogProvider
}

func NewService(library libraryLister, catalog catalogProvider) *Service {
	return &Service{library: library, catalog: catalog}
}

// Recommend builds the feed for a user. Seeds are fetched concurrently; a
// failed or timed-out source contributes nothing, and the call only fails
// when every source does. Users with no qualifying entries get the popular
// feed unmodified.
func (s *Service) Recommend(ctx context.Context, userID int64) ([]models.CatalogItem, error) {
	entries, err := s.library.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}

	seeds := make([]models.MovieEntry, 0, maxSeeds)
	for _, entry := range entries {
		if entry.Status != models.StatusWatched && entry.Status != models.StatusInProgress {
			continue
		}
		seeds = append(seeds, entry)
		if len(seeds) == maxSeeds {
			break
		}
	}

	if len(seeds) == 0 {
		items, err := s.catalog.Popular(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return items, nil
	}

	// Fan-out: one fetch per seed, joined before merging. Each goroutine
	// writes only its own slot.
	results := make([][]models.CatalogItem, len(seeds))
	fetched := make([]bool, len(seeds))

	var wg conc.WaitGroup
	for i, seed := range seeds {
		i, seed := i, seed
		wg.Go(func() {
			fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()

			items, err := s.catalog.Similar(fetchCtx, seed.TMDBID)
			if err != nil {
				log.Printf("[recommend] similar fetch for tmdb %d failed: %v", seed.TMDBID, err)
				return
			}
			results[i] = items
			fetched[i] = true
		})
	}
	wg.Wait()

	anyFetched := false
	for _, ok := range fetched {
		if ok {
			anyFetched = true
			break
		}
	}
	if !anyFetched {
		return nil, ErrUpstream
	}

	// Merge in seed order, dropping later duplicates so the first occurrence
	// wins.
	seen := make(map[int64]struct{})
	merged := make([]models.CatalogItem, 0)
	for _, items := range results {
		for _, item := range items {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			merged = append(merged, item)
		}
	}

	return merged, nil
}
