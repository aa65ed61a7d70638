package postgres

import (
	"context"
	"fmt"
	"time"

	"otodoki/domain"

	"gorm.io/gorm"
)

type HistoryRepository struct {
	DB *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{
		DB: db,
	}
}

func (r *HistoryRepository) Append(ctx context.Context, entry *domain.PlayHistory) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append play history: %w", err)
	}

	return nil
}

func (r *HistoryRepository) FindByUser(ctx context.Context, userID uint) ([]domain.PlayHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var entries []domain.PlayHistory
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find play history: %w", err)
	}

	return entries, nil
}

// FindTracksByUserAction joins history rows against the track cache, ordered by
// when the user recorded them. The preference analyzer relies on this order
// being stable across calls for the same snapshot.
func (r *HistoryRepository) FindTracksByUserAction(ctx context.Context, userID uint, action string) ([]domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var tracks []domain.Track
	err := r.DB.WithContext(ctx).
		Model(&domain.Track{}).
		Joins("JOIN play_history ON play_history.catalog_id = tracks.catalog_id").
		Where("play_history.user_id = ? AND play_history.action = ?", userID, action).
		Order("play_history.created_at ASC").
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tracks by action: %w", err)
	}

	return tracks, nil
}

// RecentUserIDs lists users with history activity since the cutoff, most
// recent first. The worker samples this pool for personalized fetches.
func (r *HistoryRepository) RecentUserIDs(ctx context.Context, since time.Time, limit int) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}

	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&domain.PlayHistory{}).
		Select("user_id").
		Where("created_at >= ?", since).
		Group("user_id").
		Order("MAX(created_at) DESC").
		Limit(limit).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}

	return ids, nil
}

// SeenCatalogIDs returns every catalog id the user acted on since the cutoff,
// so the worker can avoid re-surfacing consumed tracks.
func (r *HistoryRepository) SeenCatalogIDs(ctx context.Context, userID uint, since time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []string
	err := r.DB.WithContext(ctx).
		Model(&domain.PlayHistory{}).
		Distinct("catalog_id").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Pluck("catalog_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list seen catalog ids: %w", err)
	}

	return ids, nil
}
