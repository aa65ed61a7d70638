package history

import (
	"context"
	"errors"
	"fmt"

	"otodoki/domain"
	"otodoki/pkg/logger"

	"gorm.io/datatypes"
)

// HistoryRepository contract interface
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.PlayHistory) error
	FindByUser(ctx context.Context, userID uint) ([]domain.PlayHistory, error)
}

// TrackRepository contract interface
type TrackRepository interface {
	Upsert(ctx context.Context, track *domain.Track) error
	Exists(ctx context.Context, catalogID string) (bool, error)
	FindByCatalogID(ctx context.Context, catalogID string) (domain.Track, error)
	FindByCatalogIDs(ctx context.Context, catalogIDs []string) ([]domain.Track, error)
}

type historyService struct {
	historyRepo HistoryRepository
	trackRepo   TrackRepository
}

func NewHistoryService(historyRepo HistoryRepository, trackRepo TrackRepository) *historyService {
	return &historyService{
		historyRepo: historyRepo,
		trackRepo:   trackRepo,
	}
}

// RecordPlayInput carries one swipe decision; Track is optional metadata so
// an unseen track still lands in the cache.
type RecordPlayInput struct {
	CatalogID string
	Action    string
	Track     *domain.Track
	Context   map[string]interface{}
}

func (s *historyService) RecordPlay(ctx context.Context, userID uint, input RecordPlayInput) (domain.PlayHistory, error) {
	if input.CatalogID == "" {
		return domain.PlayHistory{}, errors.New("catalog id is required")
	}

	if !domain.ValidAction(input.Action) {
		return domain.PlayHistory{}, fmt.Errorf("invalid action %q", input.Action)
	}

	// cache the track first so the history row never references an unknown id
	if input.Track != nil {
		exists, err := s.trackRepo.Exists(ctx, input.CatalogID)
		if err != nil {
			logger.Warn("failed to check track cache", "catalog_id", input.CatalogID, err)
		}
		if err == nil && !exists {
			track := *input.Track
			track.CatalogID = input.CatalogID
			if err := s.trackRepo.Upsert(ctx, &track); err != nil {
				logger.Warn("failed to cache played track", "catalog_id", input.CatalogID, err)
			}
		}
	}

	entry := domain.PlayHistory{
		UserID:    userID,
		CatalogID: input.CatalogID,
		Action:    input.Action,
		Context:   datatypes.JSONMap(input.Context),
	}

	if err := s.historyRepo.Append(ctx, &entry); err != nil {
		logger.Error("Failed to append play history", err)
		return domain.PlayHistory{}, err
	}

	return entry, nil
}

// PlayRecord is one history entry joined with the cached track metadata.
// Track is nil when the cache no longer holds the played track.
type PlayRecord struct {
	Entry domain.PlayHistory `json:"entry"`
	Track *domain.Track      `json:"track,omitempty"`
}

func (s *historyService) ListHistory(ctx context.Context, userID uint) ([]PlayRecord, error) {
	entries, err := s.historyRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list play history", err)
		return nil, err
	}

	catalogIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		catalogIDs = append(catalogIDs, e.CatalogID)
	}

	tracks, err := s.trackRepo.FindByCatalogIDs(ctx, catalogIDs)
	if err != nil {
		logger.Error("Failed to load tracks for history", err)
		return nil, err
	}

	byID := make(map[string]domain.Track, len(tracks))
	for _, t := range tracks {
		byID[t.CatalogID] = t
	}

	records := make([]PlayRecord, 0, len(entries))
	for _, e := range entries {
		record := PlayRecord{Entry: e}
		if t, ok := byID[e.CatalogID]; ok {
			track := t
			record.Track = &track
		}
		records = append(records, record)
	}

	return records, nil
}

// GetTrack looks a track up in the local cache by its catalog id.
func (s *historyService) GetTrack(ctx context.Context, catalogID string) (domain.Track, error) {
	return s.trackRepo.FindByCatalogID(ctx, catalogID)
}
