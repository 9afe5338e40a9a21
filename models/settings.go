package models

// TrailerRuleKind enumerates the closed set of trailer scoring rules.
type TrailerRuleKind string

const (
	RuleGenre         TrailerRuleKind = "genre"
	RuleYear          TrailerRuleKind = "year"
	RuleDecade        TrailerRuleKind = "decade"
	RuleRecentlyAdded TrailerRuleKind = "recentlyAdded"
	RuleUnplayed      TrailerRuleKind = "unplayed"
)

// TrailerRule is one configurable affinity rule. Priority orders rule
// application and derives the scoring weight; lower priority weighs more.
type TrailerRule struct {
	Kind     TrailerRuleKind `json:"kind"`
	Enabled  bool            `json:"enabled"`
	Priority int             `json:"priority"`
}

// Weight returns the scoring weight derived from the rule priority:
// 10 - min(priority, 9), never below 1.
func (r TrailerRule) Weight() int {
	p := r.Priority
	if p > 9 {
		p = 9
	}
	w := 10 - p
	if w < 1 {
		w = 1
	}
	return w
}

// PreRollSelection describes one candidate-matching rule for a pre-roll
// library. Selections are tried in ascending Priority order until one
// yields a match. Zero values mean "any".
type PreRollSelection struct {
	Name           string   `json:"name,omitempty"`   // case-insensitive substring of the item name
	Year           int      `json:"year,omitempty"`   // exact production year
	Decade         int      `json:"decade,omitempty"` // e.g. 1980
	Genres         []string `json:"genres,omitempty"`
	Studios        []string `json:"studios,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	RequireAllTags bool     `json:"requireAllTags,omitempty"` // all tags must match instead of any
	Seasonal       bool     `json:"seasonal,omitempty"`
	Priority       int      `json:"priority"`
}

// SeasonalTag defines a recurring annual window during which a tag is
// active. The window may wrap year-end (e.g. Dec 1 - Jan 6).
type SeasonalTag struct {
	Name       string `json:"name"`
	StartMonth int    `json:"startMonth"`
	StartDay   int    `json:"startDay"`
	EndMonth   int    `json:"endMonth"`
	EndDay     int    `json:"endDay"`
}

// PreRollSlot configures one pre-roll position (before trailers or before
// the feature). An empty LibraryID leaves the slot unconfigured.
type PreRollSlot struct {
	LibraryID         string             `json:"libraryId,omitempty"`
	Selections        []PreRollSelection `json:"selections,omitempty"`
	EnforceRating     bool               `json:"enforceRating"`
	IgnoreOutOfSeason bool               `json:"ignoreOutOfSeason"`
}

// Settings is the persisted configuration snapshot. The selection core
// only ever reads it; mutation goes through the settings service.
type Settings struct {
	EnableCinemaMode bool `json:"enableCinemaMode"`
	// CinemaModeLibraryID restricts cinema mode to movies whose top-level
	// library matches; empty means no restriction.
	CinemaModeLibraryID     string        `json:"cinemaModeLibraryId,omitempty"`
	TrailerPreRoll          PreRollSlot   `json:"trailerPreRoll"`
	FeaturePreRoll          PreRollSlot   `json:"featurePreRoll"`
	EnforceTrailerRating    bool          `json:"enforceTrailerRating"`
	SeasonalTags            []SeasonalTag `json:"seasonalTags,omitempty"`
	TrailerRules            []TrailerRule `json:"trailerRules,omitempty"`
	NumberOfTrailers        int           `json:"numberOfTrailers"`
	TrailerLimitPerCategory int           `json:"trailerLimitPerCategory"`
	// MaxTrailerRating caps channel listings; trailers with a known rating
	// above it are hidden. Empty means no cap.
	MaxTrailerRating string `json:"maxTrailerRating,omitempty"`
}

// DefaultSettings returns the configuration used until the admin changes it.
func DefaultSettings() Settings {
	return Settings{
		EnableCinemaMode:        true,
		NumberOfTrailers:        2,
		TrailerLimitPerCategory: 30,
		TrailerRules: []TrailerRule{
			{Kind: RuleGenre, Enabled: true, Priority: 1},
			{Kind: RuleYear, Enabled: true, Priority: 2},
			{Kind: RuleDecade, Enabled: true, Priority: 3},
			{Kind: RuleUnplayed, Enabled: true, Priority: 4},
			{Kind: RuleRecentlyAdded, Enabled: true, Priority: 5},
		},
		SeasonalTags: []SeasonalTag{
			{Name: "Halloween", StartMonth: 10, StartDay: 1, EndMonth: 10, EndDay: 31},
			{Name: "Christmas", StartMonth: 12, StartDay: 1, EndMonth: 1, EndDay: 6},
		},
	}
}
