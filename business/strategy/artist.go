package strategy

import (
	"context"
	"math/rand"

	"otodoki/domain"
)

// artistStrategy searches for songs by one artist from a seed list.
type artistStrategy struct {
	artists []string
}

func newArtistStrategy(c Context) (Strategy, error) {
	artists := c.Seeds
	if len(artists) == 0 {
		artists = defaultArtists
	}

	return &artistStrategy{artists: artists}, nil
}

func (s *artistStrategy) Name() string {
	return "artist"
}

func (s *artistStrategy) GenerateParams(_ context.Context) (domain.SearchParams, error) {
	return domain.SearchParams{
		Term:      s.artists[rand.Intn(len(s.artists))],
		Entity:    domain.SearchEntitySong,
		Attribute: domain.SearchAttributeArtist,
	}, nil
}
