// Package model defines the data structures used throughout the application.
//
// Character types are immutable snapshots of the upstream catalog: the
// marvel client builds them once from a decoded response and nothing mutates
// them afterwards, which is what makes them safe to share from the cache.
package model

// DefaultDescription replaces a description the upstream left out.
const DefaultDescription = "No description available"

// Thumbnail points at an upstream image: the full URL is Path + "." + Extension.
type Thumbnail struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
}

// RelatedLink is one entry of a character's "urls" list (detail, wiki, comiclink...).
type RelatedLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Character is one normalized catalog entry.
//
// ID is assigned by the upstream and is unique across the catalog.
// The four *Available counts are never negative; missing groups decode as 0.
type Character struct {
	ID               int           `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Thumbnail        Thumbnail     `json:"thumbnail"`
	ResourceURI      string        `json:"resourceURI"`
	URLs             []RelatedLink `json:"urls"`
	ComicsAvailable  int           `json:"comics_available"`
	SeriesAvailable  int           `json:"series_available"`
	StoriesAvailable int           `json:"stories_available"`
	EventsAvailable  int           `json:"events_available"`
}

// CharacterPage is one page of a listing, with the upstream's paging counters.
type CharacterPage struct {
	Characters []Character `json:"characters"`
	Total      int         `json:"total"`
	Count      int         `json:"count"`
	Offset     int         `json:"offset"`
}
