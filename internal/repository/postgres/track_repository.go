package postgres

import (
	"context"
	"errors"
	"fmt"

	"otodoki/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrackRepository struct {
	DB *gorm.DB
}

func NewTrackRepository(db *gorm.DB) *TrackRepository {
	return &TrackRepository{
		DB: db,
	}
}

// Upsert inserts the track or refreshes its metadata on catalog_id conflict.
func (r *TrackRepository) Upsert(ctx context.Context, track *domain.Track) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "catalog_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "artist", "genre", "release_year", "preview_url", "artwork_url", "updated_at",
		}),
	}).Create(track).Error
	if err != nil {
		return fmt.Errorf("failed to upsert track: %w", err)
	}

	return nil
}

func (r *TrackRepository) Exists(ctx context.Context, catalogID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.Track{}).
		Where("catalog_id = ?", catalogID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check track existence: %w", err)
	}

	return count > 0, nil
}

func (r *TrackRepository) FindByCatalogID(ctx context.Context, catalogID string) (domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return domain.Track{}, fmt.Errorf("context error: %w", err)
	}

	var track domain.Track
	err := r.DB.WithContext(ctx).Where("catalog_id = ?", catalogID).First(&track).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Track{}, errors.New("track not found")
		}
		return domain.Track{}, fmt.Errorf("failed to find track: %w", err)
	}

	return track, nil
}

func (r *TrackRepository) FindByCatalogIDs(ctx context.Context, catalogIDs []string) ([]domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(catalogIDs) == 0 {
		return []domain.Track{}, nil
	}

	var tracks []domain.Track
	err := r.DB.WithContext(ctx).Where("catalog_id IN ?", catalogIDs).Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tracks: %w", err)
	}

	return tracks, nil
}
