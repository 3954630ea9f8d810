package recommend_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"reeltrack/models"
	"reeltrack/services/recommend"
)

type fakeLibrary struct {
	entries []models.MovieEntry
	err     error
}

func (f *fakeLibrary) ListByUser(ctx context.Context, userID int64) ([]models.MovieEntry, error) {
	return f.entries, f.err
}

type fakeCatalog struct {
	mu          sync.Mutex
	similar     map[int64][]models.CatalogItem
	similarErr  map[int64]error
	similarGot  []int64
	popular     []models.CatalogItem
	popularErr  error
	popularHits int
}

func (f *fakeCatalog) Similar(ctx context.Context, tmdbID int64) ([]models.CatalogItem, error) {
	f.mu.Lock()
	f.similarGot = append(f.similarGot, tmdbID)
	f.mu.Unlock()
	if err, ok := f.similarErr[tmdbID]; ok {
		return nil, err
	}
	return f.similar[tmdbID], nil
}

func (f *fakeCatalog) Popular(ctx context.Context) ([]models.CatalogItem, error) {
	f.mu.Lock()
	f.popularHits++
	f.mu.Unlock()
	return f.popular, f.popularErr
}

func entry(tmdbID int64, status string) models.MovieEntry {
	return models.MovieEntry{ID: tmdbID, UserID: 1, TMDBID: tmdbID, Title: "t", Status: status}
}

func item(id int64) models.CatalogItem {
	return models.CatalogItem{ID: id, Title: "item"}
}

func TestEmptyLibraryFallsBackToPopular(t *testing.T) {
	catalog := &fakeCatalog{popular: []models.CatalogItem{item(1), item(2)}}
	svc := recommend.NewService(&fakeLibrary{}, catalog)

	items, err := svc.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("recommend returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected popular feed, got %d items", len(items))
	}
	if catalog.popularHits != 1 {
		t.Fatalf("expected one popular call, got %d", catalog.popularHits)
	}
	if len(catalog.similarGot) != 0 {
		t.Fatal("no similar calls expected without seeds")
	}
}

func TestNotYetEntriesDoNotSeed(t *testing.T) {
	library := &fakeLibrary{entries: []models.MovieEntry{
		entry(10, models.StatusNotYet),
		entry(11, models.StatusNotYet),
	}}
	catalog := &fakeCatalog{popular: []models.CatalogItem{item(1)}}
	svc := recommend.NewService(library, catalog)

	items, err := svc.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("recommend returned error: %v", err)
	}
	if len(items) != 1 || items[0].ID != 1 {
		t.Fatalf("expected popular fallback, got %+v", items)
	}
}

func TestMergeDedupesKeepingFirstOccurrence(t *testing.T) {
	library := &fakeLibrary{entries: []models.MovieEntry{
		entry(10, models.StatusWatched),
		entry(20, models.StatusInProgress),
	}}
	catalog := &fakeCatalog{similar: map[int64][]models.CatalogItem{
		10: {item(100), item(200)},
		20: {item(200), item(300)},
	}}
	svc := recommend.NewService(library, catalog)

	items, err := svc.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("recommend returned error: %v", err)
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	want := []int64{100, 200, 300}
	if len(ids) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, ids)
		}
	}
}

func TestSeedsCappedAtFiveMostRecent(t *testing.T) {
	var entries []models.MovieEntry
	for id := int64(1); id <= 8; id++ {
		entries = append(entries, entry(id, models.StatusWatched))
	}
	library := &fakeLibrary{entries: entries}
	catalog := &fakeCatalog{similar: map[int64][]models.CatalogItem{}}
	svc := recommend.NewService(library, catalog)

	if _, err := svc.Recommend(context.Background(), 1); err != nil {
		t.Fatalf("recommend returned error: %v", err)
	}

	if len(catalog.similarGot) != 5 {
		t.Fatalf("expected 5 seed fetches, got %d", len(catalog.similarGot))
	}
	// The list is newest-first; only the first five qualify.
	seen := make(map[int64]bool)
	for _, id := range catalog.similarGot {
		seen[id] = true
	}
	for id := int64(1); id <= 5; id++ {
		if !seen[id] {
			t.Fatalf("expected seed %d to be fetched, got %v", id, catalog.similarGot)
		}
	}
}

func TestPartialFailuresAreTolerated(t *testing.T) {
	library := &fakeLibrary{entries: []models.MovieEntry{
		entry(10, models.StatusWatched),
		entry(20, models.StatusWatched),
	}}
	catalog := &fakeCatalog{
		similar:    map[int64][]models.CatalogItem{20: {item(300)}},
		similarErr: map[int64]error{10: errors.New("upstream down")},
	}
	svc := recommend.NewService(library, catalog)

	items, err := svc.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected partial result, got error: %v", err)
	}
	if len(items) != 1 || items[0].ID != 300 {
		t.Fatalf("expected surviving source's items, got %+v", items)
	}
}

func TestAllSourcesFailing(t *testing.T) {
	library := &fakeLibrary{entries: []models.MovieEntry{
		entry(10, models.StatusWatched),
		entry(20, models.StatusWatched),
	}}
	catalog := &fakeCatalog{similarErr: map[int64]error{
		10: errors.New("down"),
		20: errors.New("down"),
	}}
	svc := recommend.NewService(library, catalog)

	if _, err := svc.Recommend(context.Background(), 1); !errors.Is(err, recommend.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestPopularFallbackFailure(t *testing.T) {
	catalog := &fakeCatalog{popularErr: errors.New("down")}
	svc := recommend.NewService(&fakeLibrary{}, catalog)

	if _, err := svc.Recommend(context.Background(), 1); !errors.Is(err, recommend.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestLibraryErrorIsNotUpstream(t *testing.T) {
	svc := recommend.NewService(&fakeLibrary{err: errors.New("db closed")}, &fakeCatalog{})

	_, err := svc.Recommend(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, recommend.ErrUpstream) {
		t.Fatal("library failures must not masquerade as upstream failures")
	}
}
