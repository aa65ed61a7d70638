package strategy

import (
	"context"
	"errors"

	"otodoki/business/preference"
	"otodoki/domain"
)

var (
	// ErrUnknownStrategy — the registry has no strategy under that name.
	ErrUnknownStrategy = errors.New("unknown search strategy")
	// ErrInvalidContext — a strategy was constructed without the context it declares.
	ErrInvalidContext = errors.New("invalid strategy context")
	// ErrInsufficientHistory — the user has no active preference profile; the
	// caller is expected to substitute a non-personalized strategy.
	ErrInsufficientHistory = errors.New("insufficient history for personalized search")
)

// Strategy produces one set of catalog query parameters per call. Strategies
// are stateless value objects; a fresh instance per replenishment cycle is
// cheap and expected.
type Strategy interface {
	Name() string
	GenerateParams(ctx context.Context) (domain.SearchParams, error)
}

// PreferenceAnalyzer is what the user_preference strategy needs from the
// preference package.
type PreferenceAnalyzer interface {
	AnalyzePreferences(ctx context.Context, userID uint, minLikes int) (*preference.Profile, error)
}

// Context carries the inputs a factory may require. Each factory validates
// the fields it declares and ignores the rest.
type Context struct {
	Seeds    []string
	Analyzer PreferenceAnalyzer
	UserID   uint
}
