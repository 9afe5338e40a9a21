package models

import "time"

// MediaType identifies the kind of a library item.
type MediaType string

const (
	MediaTypeFolder  MediaType = "folder"
	MediaTypeMovie   MediaType = "movie"
	MediaTypeTrailer MediaType = "trailer"
	MediaTypeVideo   MediaType = "video"
)

// Item models a media library entry. Libraries and folders use
// MediaTypeFolder; everything playable is movie, trailer or video.
type Item struct {
	ID             string    `json:"id"`
	ParentID       string    `json:"parentId,omitempty"`
	Name           string    `json:"name"`
	MediaType      MediaType `json:"mediaType"`
	ProductionYear int       `json:"productionYear,omitempty"` // 0 = unknown
	OfficialRating string    `json:"officialRating,omitempty"` // MPAA certification, "" = unrated
	Genres         []string  `json:"genres,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Studios        []string  `json:"studios,omitempty"`
	DateCreated    time.Time `json:"dateCreated,omitempty"` // zero = unknown
}

// IsMovie reports whether the item plays as a feature film.
func (i Item) IsMovie() bool {
	return i.MediaType == MediaTypeMovie
}

// Decade returns the item's production decade (e.g. 1990), or 0 when the
// year is unknown.
func (i Item) Decade() int {
	if i.ProductionYear == 0 {
		return 0
	}
	return (i.ProductionYear / 10) * 10
}

// User identifies the viewing profile a sequence is computed for. Marquee
// holds no account data; the host supplies the ID.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TrailerInfo is the cached metadata held per trailer identifier. An
// absent entry means the trailer scores neutrally, never an error.
type TrailerInfo struct {
	ID             string  `json:"id"`
	MovieID        int64   `json:"movieId,omitempty"`
	MovieTitle     string  `json:"movieTitle,omitempty"`
	VideoKey       string  `json:"videoKey,omitempty"` // video-host key (YouTube)
	Year           int     `json:"year,omitempty"`     // release-date year, 0 = unknown
	GenreIDs       []int64 `json:"genreIds,omitempty"`
	OfficialRating string  `json:"officialRating,omitempty"` // currently never populated by TMDB video listings
	Category       string  `json:"category,omitempty"`
}
