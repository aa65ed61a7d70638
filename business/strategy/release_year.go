package strategy

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"otodoki/domain"
)

// releaseYearStrategy searches by a year picked from a bounded range.
type releaseYearStrategy struct{}

func newReleaseYearStrategy(_ Context) (Strategy, error) {
	return &releaseYearStrategy{}, nil
}

func (s *releaseYearStrategy) Name() string {
	return "release_year"
}

func (s *releaseYearStrategy) GenerateParams(_ context.Context) (domain.SearchParams, error) {
	ceiling := time.Now().Year()
	year := releaseYearFloor + rand.Intn(ceiling-releaseYearFloor+1)

	return domain.SearchParams{
		Term:      strconv.Itoa(year),
		Entity:    domain.SearchEntitySong,
		Attribute: domain.SearchAttributeRelease,
	}, nil
}
