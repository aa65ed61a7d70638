package strategy

import (
	"context"
	"math/rand"

	"otodoki/domain"
)

// keywordStrategy does an unconstrained term search. Widest net, used as the
// diversity source and as the fallback when personalization has nothing.
type keywordStrategy struct {
	keywords []string
}

func newKeywordStrategy(c Context) (Strategy, error) {
	keywords := c.Seeds
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}

	return &keywordStrategy{keywords: keywords}, nil
}

func (s *keywordStrategy) Name() string {
	return "random_keyword"
}

func (s *keywordStrategy) GenerateParams(_ context.Context) (domain.SearchParams, error) {
	return domain.SearchParams{
		Term:   s.keywords[rand.Intn(len(s.keywords))],
		Entity: domain.SearchEntitySong,
	}, nil
}
