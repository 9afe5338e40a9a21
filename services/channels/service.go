// Package channels exposes the cached trailer pool as browsable category
// folders: upcoming, now playing, popular, and top rated.
package channels

import (
	"marquee/models"
	"marquee/services/metadata"
	"marquee/services/ratings"
)

// Folder is one channel category with its trailer count.
type Folder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var folderNames = map[string]string{
	metadata.CategoryUpcoming:   "Upcoming Movies",
	metadata.CategoryNowPlaying: "Now Playing",
	metadata.CategoryPopular:    "Popular Movies",
	metadata.CategoryTopRated:   "Top Rated Movies",
}

// MetadataSource lists cached trailers per category.
type MetadataSource interface {
	Category(category string) []models.TrailerInfo
}

// SettingsSource provides the current settings snapshot.
type SettingsSource interface {
	Current() models.Settings
}

// Service builds channel listings from the trailer metadata cache, capped
// by the configured per-category limit and maximum parental rating.
type Service struct {
	metadata MetadataSource
	settings SettingsSource
}

func NewService(metadata MetadataSource, settings SettingsSource) *Service {
	return &Service{metadata: metadata, settings: settings}
}

// Folders returns the category folders in fixed display order.
func (s *Service) Folders() []Folder {
	folders := make([]Folder, 0, len(metadata.Categories))
	for _, category := range metadata.Categories {
		folders = append(folders, Folder{
			ID:    category,
			Name:  folderNames[category],
			Count: len(s.Trailers(category)),
		})
	}
	return folders
}

// Trailers lists one category's trailers. The per-category limit truncates
// after rating filtering; trailers without a rating pass the cap.
func (s *Service) Trailers(category string) []models.TrailerInfo {
	cfg := s.settings.Current()

	var out []models.TrailerInfo
	for _, info := range s.metadata.Category(category) {
		if !ratings.IsAppropriate(info.OfficialRating, cfg.MaxTrailerRating) {
			continue
		}
		out = append(out, info)
	}
	if cfg.TrailerLimitPerCategory > 0 && len(out) > cfg.TrailerLimitPerCategory {
		out = out[:cfg.TrailerLimitPerCategory]
	}
	return out
}
