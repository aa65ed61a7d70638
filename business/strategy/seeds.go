package strategy

// Fallback seed pools, used when the caller supplies none. Skewed toward the
// catalog's Japanese storefront plus broadly international picks.
var defaultArtists = []string{
	"YOASOBI", "King Gnu", "Official HIGE DANdism", "Kenshi Yonezu",
	"Aimyon", "Mrs. GREEN APPLE", "The Beatles", "Taylor Swift",
	"Queen", "Bruno Mars",
}

var defaultGenres = []string{
	"J-Pop", "Pop", "Rock", "Hip-Hop/Rap", "Electronic",
	"Jazz", "R&B/Soul", "Alternative", "Anime", "Classical",
}

var defaultKeywords = []string{
	"pop", "rock", "jazz", "electronic", "indie",
	"love", "night", "dance", "summer", "dream",
	"blue", "star", "rain", "fire", "heart",
}

const (
	releaseYearFloor = 1960
)
