//go:build !integration

package personalization

import (
	"testing"

	"otodoki/business/preference"
	"otodoki/domain"
)

func profileFrom(likedGenres, likedArtists, dislikedGenres, dislikedArtists []preference.Count) *preference.Profile {
	return &preference.Profile{
		LikedGenres:     likedGenres,
		LikedArtists:    likedArtists,
		DislikedGenres:  dislikedGenres,
		DislikedArtists: dislikedArtists,
	}
}

func TestScore_NilProfileIsZero(t *testing.T) {
	s := NewService()

	got := s.Score(domain.Track{Genre: "Rock", Artist: "Queen"}, nil)
	if got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestScore_RulesAreAdditive(t *testing.T) {
	s := NewService()

	profile := profileFrom(
		[]preference.Count{{Name: "Rock", Count: 4}},
		[]preference.Count{{Name: "Queen", Count: 3}},
		[]preference.Count{{Name: "Rock", Count: 1}},
		[]preference.Count{{Name: "Queen", Count: 1}},
	)

	// liked genre 10+4, liked artist 15+2*3, disliked genre -5, disliked artist -10
	want := 14.0 + 21.0 - 5.0 - 10.0
	got := s.Score(domain.Track{Genre: "Rock", Artist: "Queen"}, profile)
	if got != want {
		t.Fatalf("score = %v, want %v", got, want)
	}
}

func TestScore_NoMatchesIsZero(t *testing.T) {
	s := NewService()

	profile := profileFrom(
		[]preference.Count{{Name: "Rock", Count: 2}},
		[]preference.Count{{Name: "Queen", Count: 2}},
		nil, nil,
	)

	got := s.Score(domain.Track{Genre: "Jazz", Artist: "Miles Davis"}, profile)
	if got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestScore_CanGoNegative(t *testing.T) {
	s := NewService()

	profile := profileFrom(nil, nil,
		[]preference.Count{{Name: "Rock", Count: 1}},
		[]preference.Count{{Name: "Queen", Count: 1}},
	)

	got := s.Score(domain.Track{Genre: "Rock", Artist: "Queen"}, profile)
	if got != -15 {
		t.Fatalf("score = %v, want -15", got)
	}
}

func TestPersonalizeTracks_NilProfileKeepsInputOrder(t *testing.T) {
	s := NewService()

	in := []domain.Track{
		{CatalogID: "1"},
		{CatalogID: "2"},
		{CatalogID: "3"},
	}

	out := s.PersonalizeTracks(in, nil)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Track.CatalogID != in[i].CatalogID {
			t.Fatalf("order changed at %d: got %s, want %s", i, out[i].Track.CatalogID, in[i].CatalogID)
		}
		if out[i].Score != 0 {
			t.Fatalf("score at %d = %v, want 0", i, out[i].Score)
		}
	}
}

func TestPersonalizeTracks_SortsDescendingStable(t *testing.T) {
	s := NewService()

	profile := profileFrom(
		[]preference.Count{{Name: "Rock", Count: 1}},
		nil, nil, nil,
	)

	in := []domain.Track{
		{CatalogID: "a", Genre: "Jazz"},
		{CatalogID: "b", Genre: "Rock"},
		{CatalogID: "c", Genre: "Jazz"},
		{CatalogID: "d", Genre: "Rock"},
	}

	out := s.PersonalizeTracks(in, profile)

	wantOrder := []string{"b", "d", "a", "c"}
	for i, want := range wantOrder {
		if out[i].Track.CatalogID != want {
			t.Fatalf("position %d = %s, want %s (full: %v)", i, out[i].Track.CatalogID, want, ids(out))
		}
	}
}

func TestPersonalizeTracks_EmptyInput(t *testing.T) {
	s := NewService()

	out := s.PersonalizeTracks(nil, profileFrom(nil, nil, nil, nil))
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
}

func ids(scored []ScoredTrack) []string {
	out := make([]string, 0, len(scored))
	for _, st := range scored {
		out = append(out, st.Track.CatalogID)
	}
	return out
}
