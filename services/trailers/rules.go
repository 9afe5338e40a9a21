package trailers

import (
	"sort"

	"marquee/models"
)

// Per-rule contribution constants. Each contribution is multiplied by the
// rule's priority-derived weight before accumulating.
const (
	genreMatchScore  = 5
	decadeMatchScore = 3
	// ratingPenalty is subtracted when a trailer's rating is inappropriate
	// for the feature. TMDB video listings never carry a certification
	// today, so the penalty stays inert until richer metadata arrives.
	ratingPenalty = 100
)

// scoreFunc computes one rule's unweighted contribution for a candidate.
type scoreFunc func(info *models.TrailerInfo, movie *models.Item) int

// ruleScorers maps the closed set of rule kinds to their scoring
// functions. Unplayed and RecentlyAdded carry no primary score; they only
// order ties, so they map to nil.
var ruleScorers = map[models.TrailerRuleKind]scoreFunc{
	models.RuleGenre:         scoreGenre,
	models.RuleYear:          scoreYear,
	models.RuleDecade:        scoreDecade,
	models.RuleRecentlyAdded: nil,
	models.RuleUnplayed:      nil,
}

// scoreGenre is a coarse signal: trailer genre IDs are cached but no
// ID-to-name mapping exists, so any movie with at least one genre earns
// the same fixed contribution.
func scoreGenre(_ *models.TrailerInfo, movie *models.Item) int {
	if len(movie.Genres) == 0 {
		return 0
	}
	return genreMatchScore
}

func scoreYear(info *models.TrailerInfo, movie *models.Item) int {
	if info.Year == 0 || movie.ProductionYear == 0 {
		return 0
	}
	diff := info.Year - movie.ProductionYear
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return 5
	case diff == 1:
		return 4
	case diff == 2:
		return 3
	case diff <= 5:
		return 2
	case diff <= 10:
		return 1
	default:
		return 0
	}
}

func scoreDecade(info *models.TrailerInfo, movie *models.Item) int {
	if info.Year == 0 || movie.ProductionYear == 0 {
		return 0
	}
	if (info.Year/10)*10 == movie.Decade() {
		return decadeMatchScore
	}
	return 0
}

// enabledByPriority returns the enabled rules in ascending priority order.
func enabledByPriority(rules []models.TrailerRule) []models.TrailerRule {
	enabled := make([]models.TrailerRule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})
	return enabled
}
