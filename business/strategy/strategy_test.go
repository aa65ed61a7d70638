//go:build !integration

package strategy

import (
	"context"
	"errors"
	"testing"

	"otodoki/business/preference"
	"otodoki/domain"
)

type fakeAnalyzer struct {
	profile *preference.Profile
	err     error
}

func (f *fakeAnalyzer) AnalyzePreferences(_ context.Context, _ uint, _ int) (*preference.Profile, error) {
	return f.profile, f.err
}

func TestRegistry_UnknownStrategy(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("nonexistent", Context{})
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestRegistry_NamesAreStable(t *testing.T) {
	r := NewRegistry()

	want := []string{"artist", "genre", "random_keyword", "release_year", "user_preference"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
}

func TestSeedStrategies_ProduceValidParams(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		name      string
		attribute string
	}{
		{"artist", domain.SearchAttributeArtist},
		{"genre", domain.SearchAttributeGenre},
		{"random_keyword", ""},
		{"release_year", domain.SearchAttributeRelease},
	}

	for _, tc := range cases {
		strat, err := r.Get(tc.name, Context{})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if strat.Name() != tc.name {
			t.Fatalf("name = %s, want %s", strat.Name(), tc.name)
		}

		params, err := strat.GenerateParams(context.Background())
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if params.Term == "" {
			t.Fatalf("%s: empty term", tc.name)
		}
		if params.Entity != domain.SearchEntitySong {
			t.Fatalf("%s: entity = %s", tc.name, params.Entity)
		}
		if params.Attribute != tc.attribute {
			t.Fatalf("%s: attribute = %q, want %q", tc.name, params.Attribute, tc.attribute)
		}
	}
}

func TestSeedStrategies_HonorSuppliedSeeds(t *testing.T) {
	r := NewRegistry()

	strat, err := r.Get("artist", Context{Seeds: []string{"Only Artist"}})
	if err != nil {
		t.Fatal(err)
	}

	params, err := strat.GenerateParams(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if params.Term != "Only Artist" {
		t.Fatalf("term = %q, want the supplied seed", params.Term)
	}
}

func TestUserPreference_RequiresAnalyzerAndUser(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Get("user_preference", Context{}); !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected ErrInvalidContext without analyzer, got %v", err)
	}

	if _, err := r.Get("user_preference", Context{Analyzer: &fakeAnalyzer{}}); !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected ErrInvalidContext without user id, got %v", err)
	}
}

func TestUserPreference_InsufficientHistory(t *testing.T) {
	r := NewRegistry()

	strat, err := r.Get("user_preference", Context{Analyzer: &fakeAnalyzer{profile: nil}, UserID: 7})
	if err != nil {
		t.Fatal(err)
	}

	_, err = strat.GenerateParams(context.Background())
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestUserPreference_PrefersArtistOverGenre(t *testing.T) {
	r := NewRegistry()

	analyzer := &fakeAnalyzer{profile: &preference.Profile{
		LikedGenres:  []preference.Count{{Name: "Rock", Count: 5}},
		LikedArtists: []preference.Count{{Name: "Queen", Count: 5}},
		TotalLikes:   5,
	}}

	strat, err := r.Get("user_preference", Context{Analyzer: analyzer, UserID: 7})
	if err != nil {
		t.Fatal(err)
	}

	params, err := strat.GenerateParams(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if params.Attribute != domain.SearchAttributeArtist {
		t.Fatalf("attribute = %q, want artist search when artist signal exists", params.Attribute)
	}
	if params.Term != "Queen" {
		t.Fatalf("term = %q, want Queen", params.Term)
	}
}

func TestUserPreference_FallsBackToGenre(t *testing.T) {
	r := NewRegistry()

	analyzer := &fakeAnalyzer{profile: &preference.Profile{
		LikedGenres: []preference.Count{{Name: "Jazz", Count: 3}},
		TotalLikes:  3,
	}}

	strat, err := r.Get("user_preference", Context{Analyzer: analyzer, UserID: 7})
	if err != nil {
		t.Fatal(err)
	}

	params, err := strat.GenerateParams(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if params.Attribute != domain.SearchAttributeGenre {
		t.Fatalf("attribute = %q, want genre search", params.Attribute)
	}
	if params.Term != "Jazz" {
		t.Fatalf("term = %q, want Jazz", params.Term)
	}
}

func TestUserPreference_AnalyzerError(t *testing.T) {
	r := NewRegistry()

	wantErr := errors.New("db down")
	strat, err := r.Get("user_preference", Context{Analyzer: &fakeAnalyzer{err: wantErr}, UserID: 7})
	if err != nil {
		t.Fatal(err)
	}

	_, err = strat.GenerateParams(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped analyzer error, got %v", err)
	}
}
