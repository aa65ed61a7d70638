package preference

import (
	"context"
	"fmt"
	"sort"

	"otodoki/domain"
	"otodoki/pkg/logger"
)

// DefaultMinLikes is how many likes a user needs before a profile counts as
// active. Below that the analyzer reports no profile at all.
const DefaultMinLikes = 3

// TrackSource is the slice of the history store the analyzer reads from.
type TrackSource interface {
	FindTracksByUserAction(ctx context.Context, userID uint, action string) ([]domain.Track, error)
}

// Count is one tallied genre or artist.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Profile is a point-in-time aggregation of a user's like/dislike history.
// It is derived state: recomputed on demand, never persisted.
type Profile struct {
	LikedGenres     []Count `json:"liked_genres"`
	LikedArtists    []Count `json:"liked_artists"`
	DislikedGenres  []Count `json:"disliked_genres"`
	DislikedArtists []Count `json:"disliked_artists"`
	TotalLikes      int     `json:"total_likes"`
	TotalDislikes   int     `json:"total_dislikes"`
}

// Active reports whether the profile carries enough signal to rank with.
func (p *Profile) Active() bool {
	return p != nil && p.TotalLikes > 0
}

func (p *Profile) TopGenres(n int) []string {
	return topNames(p.LikedGenres, n)
}

func (p *Profile) TopArtists(n int) []string {
	return topNames(p.LikedArtists, n)
}

func topNames(counts []Count, n int) []string {
	if n > len(counts) {
		n = len(counts)
	}
	names := make([]string, 0, n)
	for _, c := range counts[:n] {
		names = append(names, c.Name)
	}
	return names
}

// Analyzer derives preference profiles from play history. It holds no mutable
// state, so one instance is safe for concurrent use across requests.
type Analyzer struct {
	source TrackSource
}

func NewAnalyzer(source TrackSource) *Analyzer {
	return &Analyzer{source: source}
}

// AnalyzePreferences tallies liked/disliked genres and artists for the user.
// Returns a nil profile (and no error) when the user has fewer than minLikes
// liked tracks.
func (a *Analyzer) AnalyzePreferences(ctx context.Context, userID uint, minLikes int) (*Profile, error) {
	if minLikes <= 0 {
		minLikes = DefaultMinLikes
	}

	likedTracks, err := a.source.FindTracksByUserAction(ctx, userID, domain.ActionLike)
	if err != nil {
		return nil, fmt.Errorf("load liked tracks: %w", err)
	}

	if len(likedTracks) < minLikes {
		logger.Info("insufficient likes for preference profile",
			"user_id", userID, "likes", len(likedTracks), "min_likes", minLikes)
		return nil, nil
	}

	dislikedTracks, err := a.source.FindTracksByUserAction(ctx, userID, domain.ActionDislike)
	if err != nil {
		return nil, fmt.Errorf("load disliked tracks: %w", err)
	}

	profile := &Profile{
		LikedGenres:     countGenres(likedTracks),
		LikedArtists:    countArtists(likedTracks),
		DislikedGenres:  countGenres(dislikedTracks),
		DislikedArtists: countArtists(dislikedTracks),
		TotalLikes:      len(likedTracks),
		TotalDislikes:   len(dislikedTracks),
	}

	return profile, nil
}

func countGenres(tracks []domain.Track) []Count {
	return tally(tracks, func(t domain.Track) string { return t.Genre })
}

func countArtists(tracks []domain.Track) []Count {
	return tally(tracks, func(t domain.Track) string { return t.Artist })
}

// tally counts occurrences and orders them by count descending. Equal counts
// keep first-seen order, so the result is deterministic for a given snapshot.
func tally(tracks []domain.Track, key func(domain.Track) string) []Count {
	index := make(map[string]int)
	counts := make([]Count, 0)

	for _, t := range tracks {
		name := key(t)
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			counts[i].Count++
			continue
		}
		index[name] = len(counts)
		counts = append(counts, Count{Name: name, Count: 1})
	}

	// stable sort keeps ties in first-seen order
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	return counts
}

func countIn(counts []Count, name string) (int, bool) {
	for _, c := range counts {
		if c.Name == name {
			return c.Count, true
		}
	}
	return 0, false
}

// LikedGenreCount and friends are lookup helpers for the ranking engine.
func (p *Profile) LikedGenreCount(genre string) (int, bool) {
	return countIn(p.LikedGenres, genre)
}

func (p *Profile) LikedArtistCount(artist string) (int, bool) {
	return countIn(p.LikedArtists, artist)
}

func (p *Profile) DislikedGenre(genre string) bool {
	_, ok := countIn(p.DislikedGenres, genre)
	return ok
}

func (p *Profile) DislikedArtist(artist string) bool {
	_, ok := countIn(p.DislikedArtists, artist)
	return ok
}
