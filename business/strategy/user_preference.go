package strategy

import (
	"context"
	"fmt"
	"math/rand"

	"otodoki/business/preference"
	"otodoki/domain"
)

const topPickPool = 3

// userPreferenceStrategy derives search parameters from the user's like
// history. Requires an analyzer and a user id; with no active profile it
// fails with ErrInsufficientHistory and the caller substitutes a fallback.
type userPreferenceStrategy struct {
	analyzer PreferenceAnalyzer
	userID   uint
}

func newUserPreferenceStrategy(c Context) (Strategy, error) {
	if c.Analyzer == nil || c.UserID == 0 {
		return nil, fmt.Errorf("%w: user_preference needs an analyzer and a user id", ErrInvalidContext)
	}

	return &userPreferenceStrategy{
		analyzer: c.Analyzer,
		userID:   c.UserID,
	}, nil
}

func (s *userPreferenceStrategy) Name() string {
	return "user_preference"
}

func (s *userPreferenceStrategy) GenerateParams(ctx context.Context) (domain.SearchParams, error) {
	profile, err := s.analyzer.AnalyzePreferences(ctx, s.userID, preference.DefaultMinLikes)
	if err != nil {
		return domain.SearchParams{}, fmt.Errorf("analyze preferences: %w", err)
	}

	if profile == nil {
		return domain.SearchParams{}, ErrInsufficientHistory
	}

	// Artist wins over genre when both signals exist: it is the more specific
	// signal and carries the larger ranking weight.
	if artists := profile.TopArtists(topPickPool); len(artists) > 0 {
		return domain.SearchParams{
			Term:      artists[rand.Intn(len(artists))],
			Entity:    domain.SearchEntitySong,
			Attribute: domain.SearchAttributeArtist,
		}, nil
	}

	if genres := profile.TopGenres(topPickPool); len(genres) > 0 {
		return domain.SearchParams{
			Term:      genres[rand.Intn(len(genres))],
			Entity:    domain.SearchEntitySong,
			Attribute: domain.SearchAttributeGenre,
		}, nil
	}

	return domain.SearchParams{}, ErrInsufficientHistory
}
