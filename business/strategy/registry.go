package strategy

import (
	"fmt"
)

// Factory builds a strategy instance from the supplied context.
type Factory func(c Context) (Strategy, error)

// Registry maps strategy names to factories. Registration order is preserved
// so Names() is deterministic.
type Registry struct {
	factories map[string]Factory
	names     []string
}

func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
	}

	r.Register("artist", newArtistStrategy)
	r.Register("genre", newGenreStrategy)
	r.Register("random_keyword", newKeywordStrategy)
	r.Register("release_year", newReleaseYearStrategy)
	r.Register("user_preference", newUserPreferenceStrategy)

	return r
}

func (r *Registry) Register(name string, f Factory) {
	if _, exists := r.factories[name]; !exists {
		r.names = append(r.names, name)
	}
	r.factories[name] = f
}

// Get builds the named strategy. Unregistered names fail with
// ErrUnknownStrategy.
func (r *Registry) Get(name string, c Context) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}

	return f(c)
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
