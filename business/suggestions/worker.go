package suggestions

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"otodoki/business/strategy"
	"otodoki/domain"
	"otodoki/internal/repository/itunes"
	"otodoki/pkg/logger"
	"otodoki/pkg/metrics"
)

// ---- Collaborator interfaces ----

type CatalogClient interface {
	Search(ctx context.Context, params domain.SearchParams) ([]domain.Track, error)
}

type TrackStore interface {
	Upsert(ctx context.Context, track *domain.Track) error
	Exists(ctx context.Context, catalogID string) (bool, error)
}

type HistoryStore interface {
	SeenCatalogIDs(ctx context.Context, userID uint, since time.Time) ([]string, error)
	RecentUserIDs(ctx context.Context, since time.Time, limit int) ([]uint, error)
}

type WorkerConfig struct {
	Interval         time.Duration
	BackoffBase      time.Duration
	BackoffCap       time.Duration
	HistoryRetention time.Duration
	RecentUserWindow time.Duration
}

func (c *WorkerConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 60 * time.Second
	}
	if c.HistoryRetention <= 0 {
		c.HistoryRetention = 90 * 24 * time.Hour
	}
	if c.RecentUserWindow <= 0 {
		c.RecentUserWindow = 24 * time.Hour
	}
}

// Strategy selection weights. Non-personalized strategies keep a combined
// floor well above 20% so personalization can never starve catalog diversity.
var strategyWeights = map[string]int{
	"user_preference": 40,
	"artist":          15,
	"genre":           15,
	"random_keyword":  15,
	"release_year":    15,
}

const fallbackStrategy = "random_keyword"

const recentUserLimit = 50

type WorkerStats struct {
	Running             bool      `json:"running"`
	Cycles              uint64    `json:"cycles"`
	Successes           uint64    `json:"successes"`
	Failures            uint64    `json:"failures"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	CurrentBackoff      string    `json:"current_backoff"`
	LastStrategy        string    `json:"last_strategy"`
	LastError           string    `json:"last_error,omitempty"`
	LastCycleAt         time.Time `json:"last_cycle_at"`
}

// Worker is the replenishment loop. It owns all queue writes; the serving
// path only dequeues. One cycle: pick strategy, fetch, filter, cache,
// enqueue. All fetch failures stay inside the worker.
type Worker struct {
	queue    *Queue
	catalog  CatalogClient
	tracks   TrackStore
	history  HistoryStore
	registry *strategy.Registry
	analyzer strategy.PreferenceAnalyzer
	cfg      WorkerConfig

	mu                  sync.Mutex
	inFlight            bool
	running             bool
	cycles              uint64
	successes           uint64
	failures            uint64
	consecutiveFailures int
	backoff             time.Duration
	lastStrategy        string
	lastError           string
	lastCycleAt         time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWorker(
	queue *Queue,
	catalog CatalogClient,
	tracks TrackStore,
	history HistoryStore,
	registry *strategy.Registry,
	analyzer strategy.PreferenceAnalyzer,
	cfg WorkerConfig,
) *Worker {
	cfg.applyDefaults()

	return &Worker{
		queue:    queue,
		catalog:  catalog,
		tracks:   tracks,
		history:  history,
		registry: registry,
		analyzer: analyzer,
		cfg:      cfg,
	}
}

// Start launches the replenishment loop. It primes the queue once
// immediately, then cycles on the configured interval until Stop.
func (w *Worker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		cancel()
		return
	}
	w.running = true
	w.cancel = cancel
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop requests shutdown and waits for any in-flight cycle to finish. New
// cycles stop being scheduled; the current one is never aborted mid-fetch.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	logger.Info("replenishment worker started", "interval", w.cfg.Interval.String())

	w.cycle(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("replenishment worker stopped")
			return
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// cycle runs one replenishment pass and applies backoff sleep on failure.
func (w *Worker) cycle(ctx context.Context) {
	if !w.beginCycle() {
		return
	}

	err := w.runCycle(ctx)
	w.endCycle(err)

	if err == nil {
		return
	}

	delay := w.currentBackoff()
	if delay <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// TriggerRefill runs a single cycle out of band, for the serving path's
// low-watermark nudge and the admin endpoint. Returns false when a cycle is
// already in flight or the cycle failed.
func (w *Worker) TriggerRefill(ctx context.Context) bool {
	if !w.beginCycle() {
		return false
	}

	err := w.runCycle(ctx)
	w.endCycle(err)

	return err == nil
}

func (w *Worker) beginCycle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inFlight {
		return false
	}
	w.inFlight = true
	return true
}

func (w *Worker) endCycle(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.inFlight = false
	w.cycles++
	w.lastCycleAt = time.Now()

	if err == nil {
		w.successes++
		w.consecutiveFailures = 0
		w.backoff = 0
		w.lastError = ""
		return
	}

	w.failures++
	w.consecutiveFailures++
	w.lastError = err.Error()

	// exponential growth, capped; retryable errors only
	if isRetryable(err) {
		next := w.backoff * 2
		if w.backoff == 0 {
			next = w.cfg.BackoffBase
		}
		if next > w.cfg.BackoffCap {
			next = w.cfg.BackoffCap
		}
		w.backoff = next
	}
}

func isRetryable(err error) bool {
	return !errors.Is(err, itunes.ErrMalformedResponse)
}

func (w *Worker) currentBackoff() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.backoff
}

// runCycle is one strategy-select -> fetch -> filter -> cache -> enqueue
// pass. It never panics the process; every failure is returned for the
// caller's backoff bookkeeping.
func (w *Worker) runCycle(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.WorkerCycleDuration.Observe(time.Since(start).Seconds())
	}()

	if w.queue.IsSaturated() {
		metrics.WorkerCyclesTotal.WithLabelValues("saturated").Inc()
		return nil
	}

	strat, userID, err := w.pickStrategy(ctx)
	if err != nil {
		metrics.WorkerCyclesTotal.WithLabelValues("error").Inc()
		return err
	}
	w.noteStrategy(strat.Name())

	params, err := strat.GenerateParams(ctx)
	if errors.Is(err, strategy.ErrInsufficientHistory) {
		// fall back to a broad search when personalization has nothing
		if fb, fbErr := w.registry.Get(fallbackStrategy, strategy.Context{}); fbErr == nil {
			strat, userID = fb, 0
			w.noteStrategy(strat.Name())
			params, err = strat.GenerateParams(ctx)
		}
	}
	if err != nil {
		metrics.WorkerCyclesTotal.WithLabelValues("error").Inc()
		return err
	}

	fetched, err := w.catalog.Search(ctx, params)
	if err != nil {
		w.countFetchFailure(err)
		metrics.WorkerCyclesTotal.WithLabelValues("fetch_failed").Inc()
		logger.Warn("catalog fetch failed",
			"strategy", strat.Name(), "term", params.Term, err)
		return err
	}

	survivors, err := w.filter(ctx, fetched, userID)
	if err != nil {
		metrics.WorkerCyclesTotal.WithLabelValues("error").Inc()
		return err
	}

	// cache everything we saw, then enqueue only survivors whose cache write
	// stuck, so the queue never holds a track the cache does not know
	cached := w.cacheTracks(ctx, fetched)
	enqueueable := make([]domain.Track, 0, len(survivors))
	for _, t := range survivors {
		if cached[t.CatalogID] {
			enqueueable = append(enqueueable, t)
		}
	}

	added := w.queue.Enqueue(enqueueable)

	metrics.WorkerCyclesTotal.WithLabelValues("ok").Inc()
	logger.Info("replenishment cycle complete",
		"strategy", strat.Name(),
		"term", params.Term,
		"fetched", len(fetched),
		"survivors", len(survivors),
		"enqueued", added,
		"queue_size", w.queue.Size(),
	)

	return nil
}

func (w *Worker) noteStrategy(name string) {
	w.mu.Lock()
	w.lastStrategy = name
	w.mu.Unlock()
}

func (w *Worker) countFetchFailure(err error) {
	kind := "network"
	switch {
	case errors.Is(err, itunes.ErrRateLimited):
		kind = "rate_limited"
	case errors.Is(err, itunes.ErrMalformedResponse):
		kind = "malformed"
	}
	metrics.WorkerFetchFailures.WithLabelValues(kind).Inc()
}

// pickStrategy does a weighted random draw across the registry. A
// user_preference draw needs a recently active user; without one it degrades
// to the fallback. The returned userID is non-zero only for user-scoped
// strategies. The error covers the unreachable case of a registry without
// the fallback strategy.
func (w *Worker) pickStrategy(ctx context.Context) (strategy.Strategy, uint, error) {
	name := w.drawName()

	if name == "user_preference" {
		userID := w.pickRecentUser(ctx)
		if userID != 0 && w.analyzer != nil {
			strat, err := w.registry.Get(name, strategy.Context{
				Analyzer: w.analyzer,
				UserID:   userID,
			})
			if err == nil {
				return strat, userID, nil
			}
			logger.Warn("user_preference strategy unavailable", err)
		}
		name = fallbackStrategy
	}

	strat, err := w.registry.Get(name, strategy.Context{})
	if err != nil {
		logger.Warn("strategy lookup failed", "name", name, err)
		strat, err = w.registry.Get(fallbackStrategy, strategy.Context{})
		if err != nil {
			return nil, 0, err
		}
	}

	return strat, 0, nil
}

func (w *Worker) drawName() string {
	total := 0
	for _, name := range w.registry.Names() {
		total += strategyWeights[name]
	}
	if total <= 0 {
		return fallbackStrategy
	}

	n := rand.Intn(total)
	for _, name := range w.registry.Names() {
		n -= strategyWeights[name]
		if n < 0 {
			return name
		}
	}

	return fallbackStrategy
}

func (w *Worker) pickRecentUser(ctx context.Context) uint {
	if w.history == nil {
		return 0
	}

	since := time.Now().Add(-w.cfg.RecentUserWindow)
	userIDs, err := w.history.RecentUserIDs(ctx, since, recentUserLimit)
	if err != nil {
		logger.Warn("failed to list recent users", err)
		return 0
	}
	if len(userIDs) == 0 {
		return 0
	}

	return userIDs[rand.Intn(len(userIDs))]
}

// filter drops tracks already queued, already cached, or (for user-scoped
// strategies) already acted on by that user within the retention window.
func (w *Worker) filter(ctx context.Context, fetched []domain.Track, userID uint) ([]domain.Track, error) {
	seen := make(map[string]struct{})
	if userID != 0 && w.history != nil {
		since := time.Now().Add(-w.cfg.HistoryRetention)
		ids, err := w.history.SeenCatalogIDs(ctx, userID, since)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	survivors := make([]domain.Track, 0, len(fetched))
	batch := make(map[string]struct{}, len(fetched))

	for _, t := range fetched {
		if t.CatalogID == "" {
			continue
		}
		if _, dup := batch[t.CatalogID]; dup {
			continue
		}
		batch[t.CatalogID] = struct{}{}

		if _, ok := seen[t.CatalogID]; ok {
			continue
		}
		if w.queue.Contains(t.CatalogID) {
			continue
		}

		exists, err := w.tracks.Exists(ctx, t.CatalogID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		survivors = append(survivors, t)
	}

	return survivors, nil
}

// cacheTracks upserts every fetched track and reports which ids stuck.
func (w *Worker) cacheTracks(ctx context.Context, fetched []domain.Track) map[string]bool {
	cached := make(map[string]bool, len(fetched))
	for i := range fetched {
		t := fetched[i]
		if t.CatalogID == "" {
			continue
		}
		if err := w.tracks.Upsert(ctx, &t); err != nil {
			logger.Warn("track cache upsert failed", "catalog_id", t.CatalogID, err)
			continue
		}
		cached[t.CatalogID] = true
	}
	return cached
}

func (w *Worker) Stats() WorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return WorkerStats{
		Running:             w.running,
		Cycles:              w.cycles,
		Successes:           w.successes,
		Failures:            w.failures,
		ConsecutiveFailures: w.consecutiveFailures,
		CurrentBackoff:      w.backoff.String(),
		LastStrategy:        w.lastStrategy,
		LastError:           w.lastError,
		LastCycleAt:         w.lastCycleAt,
	}
}
