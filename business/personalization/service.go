package personalization

import (
	"sort"

	"otodoki/business/preference"
	"otodoki/domain"
)

// Scoring weights. Artist affinity is a stronger, more specific signal than
// genre affinity; dislike penalties stay smaller than like bonuses so one
// negative signal does not bury a track.
const (
	likedGenreBase   = 10.0
	likedArtistBase  = 15.0
	likedArtistScale = 2.0
	dislikedGenre    = -5.0
	dislikedArtist   = -10.0
)

type ScoredTrack struct {
	Track domain.Track `json:"track"`
	Score float64      `json:"score"`
}

// Service ranks track batches against a preference profile. Stateless.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// PersonalizeTracks returns the tracks ordered by score descending. Ties keep
// input order. A nil profile means no personalization: input order, all
// scores zero. Never fails.
func (s *Service) PersonalizeTracks(tracks []domain.Track, profile *preference.Profile) []ScoredTrack {
	scored := make([]ScoredTrack, 0, len(tracks))
	for _, t := range tracks {
		scored = append(scored, ScoredTrack{
			Track: t,
			Score: s.Score(t, profile),
		})
	}

	if profile == nil {
		return scored
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// Score applies each rule independently and sums. Scores may go negative.
func (s *Service) Score(track domain.Track, profile *preference.Profile) float64 {
	if profile == nil {
		return 0
	}

	score := 0.0

	if track.Genre != "" {
		if n, ok := profile.LikedGenreCount(track.Genre); ok {
			score += likedGenreBase + float64(n)
		}
		if profile.DislikedGenre(track.Genre) {
			score += dislikedGenre
		}
	}

	if track.Artist != "" {
		if n, ok := profile.LikedArtistCount(track.Artist); ok {
			score += likedArtistBase + likedArtistScale*float64(n)
		}
		if profile.DislikedArtist(track.Artist) {
			score += dislikedArtist
		}
	}

	return score
}

// Tracks strips scores, preserving order.
func Tracks(scored []ScoredTrack) []domain.Track {
	tracks := make([]domain.Track, 0, len(scored))
	for _, st := range scored {
		tracks = append(tracks, st.Track)
	}
	return tracks
}
