//go:build !integration

package suggestions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"otodoki/business/strategy"
	"otodoki/domain"
	"otodoki/internal/repository/itunes"
)

type fakeCatalog struct {
	tracks []domain.Track
	err    error
	calls  int
}

func (f *fakeCatalog) Search(_ context.Context, _ domain.SearchParams) ([]domain.Track, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tracks, nil
}

type fakeTrackStore struct {
	existing  map[string]bool
	upserted  []string
	upsertErr error
}

func newFakeTrackStore() *fakeTrackStore {
	return &fakeTrackStore{existing: make(map[string]bool)}
}

func (f *fakeTrackStore) Upsert(_ context.Context, track *domain.Track) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, track.CatalogID)
	f.existing[track.CatalogID] = true
	return nil
}

func (f *fakeTrackStore) Exists(_ context.Context, catalogID string) (bool, error) {
	return f.existing[catalogID], nil
}

type fakeHistoryStore struct {
	seen    []string
	userIDs []uint
}

func (f *fakeHistoryStore) SeenCatalogIDs(_ context.Context, _ uint, _ time.Time) ([]string, error) {
	return f.seen, nil
}

func (f *fakeHistoryStore) RecentUserIDs(_ context.Context, _ time.Time, _ int) ([]uint, error) {
	return f.userIDs, nil
}

func catalogTracks(n int) []domain.Track {
	tracks := make([]domain.Track, 0, n)
	for i := 0; i < n; i++ {
		tracks = append(tracks, domain.Track{
			CatalogID:  fmt.Sprintf("cat-%d", i),
			Title:      fmt.Sprintf("Track %d", i),
			Artist:     "Artist",
			Genre:      "Pop",
			PreviewURL: "https://example.com/p.m4a",
		})
	}
	return tracks
}

func newTestWorker(catalog CatalogClient, tracks TrackStore, history HistoryStore, queue *Queue) *Worker {
	return NewWorker(queue, catalog, tracks, history, strategy.NewRegistry(), nil, WorkerConfig{
		Interval:    time.Hour,
		BackoffBase: 100 * time.Millisecond,
		BackoffCap:  400 * time.Millisecond,
	})
}

func TestWorker_RefillEnqueuesAndCaches(t *testing.T) {
	queue := NewQueue(100, 20, 80)
	store := newFakeTrackStore()
	w := newTestWorker(&fakeCatalog{tracks: catalogTracks(5)}, store, &fakeHistoryStore{}, queue)

	if !w.TriggerRefill(context.Background()) {
		t.Fatal("refill should succeed")
	}

	if queue.Size() != 5 {
		t.Fatalf("queue size = %d, want 5", queue.Size())
	}
	if len(store.upserted) != 5 {
		t.Fatalf("cached %d tracks, want 5", len(store.upserted))
	}

	stats := w.Stats()
	if stats.Successes != 1 || stats.Failures != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestWorker_CachedTracksAreFiltered(t *testing.T) {
	queue := NewQueue(100, 20, 80)
	store := newFakeTrackStore()
	for _, tr := range catalogTracks(5) {
		store.existing[tr.CatalogID] = true
	}
	w := newTestWorker(&fakeCatalog{tracks: catalogTracks(5)}, store, &fakeHistoryStore{}, queue)

	if !w.TriggerRefill(context.Background()) {
		t.Fatal("refill should succeed even when nothing survives")
	}

	if queue.Size() != 0 {
		t.Fatalf("queue size = %d, want 0", queue.Size())
	}
}

func TestWorker_SaturatedQueueSkipsFetch(t *testing.T) {
	queue := NewQueue(10, 2, 5)
	queue.Enqueue(catalogTracks(5))

	catalog := &fakeCatalog{tracks: catalogTracks(10)}
	w := newTestWorker(catalog, newFakeTrackStore(), &fakeHistoryStore{}, queue)

	if !w.TriggerRefill(context.Background()) {
		t.Fatal("saturated cycle counts as success")
	}
	if catalog.calls != 0 {
		t.Fatalf("catalog called %d times, want 0", catalog.calls)
	}
}

func TestWorker_BackoffGrowsThenCaps(t *testing.T) {
	queue := NewQueue(100, 20, 80)
	w := newTestWorker(&fakeCatalog{err: itunes.ErrRateLimited}, newFakeTrackStore(), &fakeHistoryStore{}, queue)

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		400 * time.Millisecond,
	}

	for i, wantBackoff := range want {
		if w.TriggerRefill(context.Background()) {
			t.Fatalf("cycle %d should fail", i)
		}
		if got := w.currentBackoff(); got != wantBackoff {
			t.Fatalf("backoff after failure %d = %v, want %v", i+1, got, wantBackoff)
		}
	}

	stats := w.Stats()
	if stats.ConsecutiveFailures != len(want) {
		t.Fatalf("consecutive failures = %d, want %d", stats.ConsecutiveFailures, len(want))
	}
}

func TestWorker_SuccessResetsBackoff(t *testing.T) {
	queue := NewQueue(100, 20, 80)
	catalog := &fakeCatalog{err: itunes.ErrRateLimited}
	w := newTestWorker(catalog, newFakeTrackStore(), &fakeHistoryStore{}, queue)

	w.TriggerRefill(context.Background())
	if w.currentBackoff() == 0 {
		t.Fatal("expected backoff after failure")
	}

	catalog.err = nil
	catalog.tracks = catalogTracks(3)
	if !w.TriggerRefill(context.Background()) {
		t.Fatal("recovery cycle should succeed")
	}
	if w.currentBackoff() != 0 {
		t.Fatalf("backoff = %v, want reset to 0", w.currentBackoff())
	}
}

func TestWorker_MalformedResponseDoesNotGrowBackoff(t *testing.T) {
	queue := NewQueue(100, 20, 80)
	err := fmt.Errorf("%w: bad json", itunes.ErrMalformedResponse)
	w := newTestWorker(&fakeCatalog{err: err}, newFakeTrackStore(), &fakeHistoryStore{}, queue)

	if w.TriggerRefill(context.Background()) {
		t.Fatal("cycle should fail")
	}
	if got := w.currentBackoff(); got != 0 {
		t.Fatalf("backoff = %v, want 0 for non-retryable error", got)
	}

	stats := w.Stats()
	if stats.Failures != 1 {
		t.Fatalf("failures = %d, want 1", stats.Failures)
	}
}

func TestWorker_FilterDropsSeenQueuedAndDuplicate(t *testing.T) {
	queue := NewQueue(100, 20, 80)
	queue.Enqueue([]domain.Track{{CatalogID: "queued"}})

	store := newFakeTrackStore()
	history := &fakeHistoryStore{seen: []string{"seen"}}
	w := newTestWorker(&fakeCatalog{}, store, history, queue)

	fetched := []domain.Track{
		{CatalogID: "seen"},
		{CatalogID: "queued"},
		{CatalogID: "fresh"},
		{CatalogID: "fresh"},
		{CatalogID: ""},
	}

	survivors, err := w.filter(context.Background(), fetched, 7)
	if err != nil {
		t.Fatal(err)
	}

	if len(survivors) != 1 || survivors[0].CatalogID != "fresh" {
		t.Fatalf("survivors = %v, want only the fresh id once", survivors)
	}
}

func TestWorker_FilterIgnoresHistoryForAnonymousCycles(t *testing.T) {
	queue := NewQueue(100, 20, 80)
	history := &fakeHistoryStore{seen: []string{"seen"}}
	w := newTestWorker(&fakeCatalog{}, newFakeTrackStore(), history, queue)

	survivors, err := w.filter(context.Background(), []domain.Track{{CatalogID: "seen"}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(survivors) != 1 {
		t.Fatalf("survivors = %v; seen filter only applies to user-scoped cycles", survivors)
	}
}

func TestWorker_UpsertFailureKeepsTrackOutOfQueue(t *testing.T) {
	queue := NewQueue(100, 20, 80)
	store := newFakeTrackStore()
	store.upsertErr = errors.New("db down")
	w := newTestWorker(&fakeCatalog{tracks: catalogTracks(3)}, store, &fakeHistoryStore{}, queue)

	if !w.TriggerRefill(context.Background()) {
		t.Fatal("cycle itself should not fail on cache errors")
	}
	if queue.Size() != 0 {
		t.Fatalf("queue size = %d; tracks whose cache write failed must not be queued", queue.Size())
	}
}

func TestWorker_StartStopIdempotent(t *testing.T) {
	queue := NewQueue(100, 20, 80)
	w := newTestWorker(&fakeCatalog{tracks: catalogTracks(2)}, newFakeTrackStore(), &fakeHistoryStore{}, queue)

	w.Start(context.Background())
	w.Start(context.Background()) // second start is a no-op
	w.Stop()
	w.Stop() // second stop is a no-op

	if w.Stats().Running {
		t.Fatal("worker should report stopped")
	}
}
