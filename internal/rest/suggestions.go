package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"otodoki/business/personalization"
	"otodoki/business/suggestions"
	"otodoki/pkg/logger"
	"otodoki/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type SuggestionsService interface {
	GetSuggestions(ctx context.Context, userID *uint, limit int, excludeIDs []string) ([]personalization.ScoredTrack, bool, error)
	QueueStats() suggestions.QueueStats
}

type WorkerControl interface {
	TriggerRefill(ctx context.Context) bool
	Stats() suggestions.WorkerStats
}

type SuggestionsHandler struct {
	service SuggestionsService
	worker  WorkerControl
	timeout time.Duration
}

func NewSuggestionsHandler(service SuggestionsService, worker WorkerControl) *SuggestionsHandler {
	return &SuggestionsHandler{
		service: service,
		worker:  worker,
		timeout: 10 * time.Second,
	}
}

type SuggestionsResponse struct {
	Tracks       []personalization.ScoredTrack `json:"tracks"`
	Count        int                           `json:"count"`
	Personalized bool                          `json:"personalized"`
}

// GetSuggestions pops tracks off the candidate queue, ranked against the
// caller's preference profile when one exists.
func (h *SuggestionsHandler) GetSuggestions(c echo.Context) error {
	start := time.Now()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "limit must be a positive integer"})
		}
		limit = parsed
	}

	var excludeIDs []string
	if raw := c.QueryParam("excludeIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id := strings.TrimSpace(part); id != "" {
				excludeIDs = append(excludeIDs, id)
			}
		}
	}

	var userID *uint
	if id, ok := c.Get("user_id").(uint); ok {
		userID = &id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	tracks, personalized, err := h.service.GetSuggestions(ctx, userID, limit, excludeIDs)
	if err != nil {
		logger.Error("Failed to get suggestions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	metrics.SuggestionsLatency.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, fres.Response.StatusOK(SuggestionsResponse{
		Tracks:       tracks,
		Count:        len(tracks),
		Personalized: personalized,
	}))
}

// GetQueueStats exposes queue occupancy for dashboards and health probes.
func (h *SuggestionsHandler) GetQueueStats(c echo.Context) error {
	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.service.QueueStats()))
}

// GetQueueHealth reports "low" when the pool is at or under its low
// watermark. Still a 200: a draining queue is degraded, not down.
func (h *SuggestionsHandler) GetQueueHealth(c echo.Context) error {
	stats := h.service.QueueStats()

	status := "ok"
	if stats.IsLow {
		status = "low"
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": status,
		"queue":  stats,
	})
}

// GetWorkerStats reports the replenishment worker's cycle counters.
func (h *SuggestionsHandler) GetWorkerStats(c echo.Context) error {
	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.worker.Stats()))
}

// TriggerRefill asks the worker to run a cycle now. Returns 409 when a
// cycle is already in flight.
func (h *SuggestionsHandler) TriggerRefill(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if !h.worker.TriggerRefill(ctx) {
		return c.JSON(http.StatusConflict, ResponseError{Message: "a refill cycle is already running"})
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Refill cycle started",
	})
}
