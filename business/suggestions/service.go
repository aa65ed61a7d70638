package suggestions

import (
	"context"
	"time"

	"otodoki/business/personalization"
	"otodoki/business/preference"
	"otodoki/pkg/logger"
	"otodoki/pkg/metrics"
)

type ServiceConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// Service is the serving boundary over the candidate queue. Dequeues are
// unranked for anonymous requests and ranked for users with an active
// preference profile. An empty queue is a normal empty result.
type Service struct {
	queue    *Queue
	worker   *Worker
	analyzer strategyAnalyzer
	ranker   *personalization.Service
	cfg      ServiceConfig
}

type strategyAnalyzer interface {
	AnalyzePreferences(ctx context.Context, userID uint, minLikes int) (*preference.Profile, error)
}

func NewService(
	queue *Queue,
	worker *Worker,
	analyzer strategyAnalyzer,
	ranker *personalization.Service,
	cfg ServiceConfig,
) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 50
	}

	return &Service{
		queue:    queue,
		worker:   worker,
		analyzer: analyzer,
		ranker:   ranker,
		cfg:      cfg,
	}
}

// GetSuggestions dequeues up to limit candidates, excluding the given catalog
// ids. When userID is non-nil and the profile is active the batch comes back
// ranked; any personalization failure degrades to dequeue order.
func (s *Service) GetSuggestions(ctx context.Context, userID *uint, limit int, excludeIDs []string) ([]personalization.ScoredTrack, bool, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	exclude := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		if id != "" {
			exclude[id] = struct{}{}
		}
	}

	tracks := s.queue.Dequeue(limit, exclude)

	if s.queue.IsLow() && s.worker != nil {
		// nudge the worker off the request path
		go func() {
			refillCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			s.worker.TriggerRefill(refillCtx)
		}()
	}

	personalized := false
	var profile *preference.Profile

	if userID != nil && s.analyzer != nil {
		p, err := s.analyzer.AnalyzePreferences(ctx, *userID, preference.DefaultMinLikes)
		if err != nil {
			// degrade to neutral ordering, never an error response
			logger.Warn("preference analysis failed, serving unranked",
				"user_id", *userID, err)
		} else if p.Active() {
			profile = p
			personalized = true
		}
	}

	scored := s.ranker.PersonalizeTracks(tracks, profile)

	mode := "neutral"
	if personalized {
		mode = "personalized"
	}
	metrics.SuggestionsServed.WithLabelValues(mode).Add(float64(len(scored)))

	return scored, personalized, nil
}

func (s *Service) QueueStats() QueueStats {
	return s.queue.Stats()
}
