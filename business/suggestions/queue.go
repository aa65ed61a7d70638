package suggestions

import (
	"sync"

	"otodoki/domain"
	"otodoki/pkg/metrics"
)

// QueueStats is a point-in-time snapshot for the stats/health endpoints.
type QueueStats struct {
	CurrentSize   int     `json:"current_size"`
	MaxCapacity   int     `json:"max_capacity"`
	Utilization   float64 `json:"utilization"`
	LowWatermark  int     `json:"low_watermark"`
	HighWatermark int     `json:"high_watermark"`
	IsLow         bool    `json:"is_low"`
	IsHigh        bool    `json:"is_high"`
}

// Queue is the bounded candidate pool shared between the replenishment worker
// (writer) and the serving path (reader). Every access goes through one
// mutex; no catalog id ever appears twice.
type Queue struct {
	mu            sync.Mutex
	items         []domain.Track
	members       map[string]struct{}
	capacity      int
	lowWatermark  int
	highWatermark int
}

func NewQueue(capacity, lowWatermark, highWatermark int) *Queue {
	if capacity <= 0 {
		capacity = 100
	}
	if highWatermark <= 0 || highWatermark > capacity {
		highWatermark = capacity * 4 / 5
	}
	if lowWatermark < 0 || lowWatermark >= highWatermark {
		lowWatermark = highWatermark / 4
	}

	return &Queue{
		items:         make([]domain.Track, 0, capacity),
		members:       make(map[string]struct{}),
		capacity:      capacity,
		lowWatermark:  lowWatermark,
		highWatermark: highWatermark,
	}
}

// Enqueue inserts tracks up to remaining capacity, silently dropping
// duplicates and overflow. Returns how many were accepted.
func (q *Queue) Enqueue(tracks []domain.Track) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	added := 0
	for _, t := range tracks {
		if t.CatalogID == "" {
			continue
		}
		if _, dup := q.members[t.CatalogID]; dup {
			metrics.QueueDroppedTotal.WithLabelValues("duplicate").Inc()
			continue
		}
		if len(q.items) >= q.capacity {
			metrics.QueueDroppedTotal.WithLabelValues("capacity").Inc()
			continue
		}

		q.items = append(q.items, t)
		q.members[t.CatalogID] = struct{}{}
		added++
	}

	if added > 0 {
		metrics.QueueEnqueuedTotal.Add(float64(added))
		metrics.QueueSize.Set(float64(len(q.items)))
	}

	return added
}

// Dequeue removes and returns up to limit tracks in insertion order, skipping
// (but keeping) any whose catalog id is in exclude. Each track is delivered
// to at most one caller.
func (q *Queue) Dequeue(limit int, exclude map[string]struct{}) []domain.Track {
	if limit <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	taken := make([]domain.Track, 0, limit)
	kept := q.items[:0]

	for _, t := range q.items {
		if len(taken) < limit {
			if _, skip := exclude[t.CatalogID]; !skip {
				taken = append(taken, t)
				delete(q.members, t.CatalogID)
				continue
			}
		}
		kept = append(kept, t)
	}

	q.items = kept
	metrics.QueueSize.Set(float64(len(q.items)))

	return taken
}

func (q *Queue) Contains(catalogID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, ok := q.members[catalogID]
	return ok
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

func (q *Queue) Capacity() int {
	return q.capacity
}

// Remaining is how many more tracks fit right now.
func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.capacity - len(q.items)
}

// IsLow reports whether the pool dropped to the low watermark, the signal for
// the serving path to nudge the worker.
func (q *Queue) IsLow() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items) <= q.lowWatermark
}

// IsSaturated reports whether the pool is at or above the high watermark, the
// worker's backpressure signal.
func (q *Queue) IsSaturated() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items) >= q.highWatermark
}

func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	size := len(q.items)
	return QueueStats{
		CurrentSize:   size,
		MaxCapacity:   q.capacity,
		Utilization:   float64(size) / float64(q.capacity) * 100,
		LowWatermark:  q.lowWatermark,
		HighWatermark: q.highWatermark,
		IsLow:         size <= q.lowWatermark,
		IsHigh:        size >= q.highWatermark,
	}
}
