package strategy

import (
	"context"
	"math/rand"

	"otodoki/domain"
)

// genreStrategy searches within one genre from a fixed list.
type genreStrategy struct {
	genres []string
}

func newGenreStrategy(c Context) (Strategy, error) {
	genres := c.Seeds
	if len(genres) == 0 {
		genres = defaultGenres
	}

	return &genreStrategy{genres: genres}, nil
}

func (s *genreStrategy) Name() string {
	return "genre"
}

func (s *genreStrategy) GenerateParams(_ context.Context) (domain.SearchParams, error) {
	return domain.SearchParams{
		Term:      s.genres[rand.Intn(len(s.genres))],
		Entity:    domain.SearchEntitySong,
		Attribute: domain.SearchAttributeGenre,
	}, nil
}
