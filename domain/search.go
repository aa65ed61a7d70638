package domain

// Catalog search attribute constraints, iTunes Search API semantics.
const (
	SearchEntitySong       = "song"
	SearchAttributeArtist  = "artistTerm"
	SearchAttributeGenre   = "genreIndex"
	SearchAttributeRelease = "releaseDate"
)

// SearchParams is one parameterized query against the external catalog.
type SearchParams struct {
	Term      string `json:"term"`
	Entity    string `json:"entity"`
	Attribute string `json:"attribute,omitempty"`
}
