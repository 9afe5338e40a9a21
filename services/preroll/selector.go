// Package preroll picks a single bumper-style item ("Coming Attractions",
// "Feature Presentation") from a configured library, honoring selection
// rules, the rating ladder and seasonal windows.
package preroll

import (
	"log"
	"sort"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"

	"marquee/models"
	"marquee/services/ratings"
	"marquee/services/seasonal"
)

// Library is the slice of the host media library the selector consumes.
type Library interface {
	// VideosInLibrary returns the flat, recursive list of playable video
	// items under the given library. It fails when the library id does not
	// resolve.
	VideosInLibrary(libraryID string) ([]models.Item, error)
}

// Rand is the injected random source.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Selector picks pre-roll items. Safe for concurrent use as long as the
// injected Rand is.
type Selector struct {
	lib Library
	rng Rand
}

func NewSelector(lib Library, rng Rand) *Selector {
	return &Selector{lib: lib, rng: rng}
}

// Select returns one pre-roll item for the slot, or nil when the slot is
// unconfigured, the library cannot be resolved, or nothing qualifies.
// Selections are tried in ascending priority order over a freshly shuffled
// library listing; when none matches, a uniformly random rating-appropriate
// item is returned instead.
func (s *Selector) Select(slot models.PreRollSlot, seasonalTags []models.SeasonalTag, movie *models.Item, now time.Time) *models.Item {
	if strings.TrimSpace(slot.LibraryID) == "" {
		return nil
	}

	items, err := s.lib.VideosInLibrary(slot.LibraryID)
	if err != nil {
		log.Printf("[preroll] library %s not available: %v", slot.LibraryID, err)
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	shuffled := make([]models.Item, len(items))
	copy(shuffled, items)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	active := seasonal.ActiveNames(seasonalTags, now)

	selections := make([]models.PreRollSelection, len(slot.Selections))
	copy(selections, slot.Selections)
	sort.SliceStable(selections, func(i, j int) bool {
		return selections[i].Priority < selections[j].Priority
	})

	for _, sel := range selections {
		for i := range shuffled {
			item := &shuffled[i]
			if slot.EnforceRating && movie != nil && !ratings.IsAppropriate(item.OfficialRating, movie.OfficialRating) {
				continue
			}
			if sel.Seasonal && slot.IgnoreOutOfSeason && !hasActiveTag(item, active) {
				continue
			}
			if matches(sel, item) {
				picked := *item
				return &picked
			}
		}
	}

	// No selection matched: fall back to one random rating-appropriate item.
	qualifying := shuffled[:0:0]
	for _, item := range shuffled {
		if slot.EnforceRating && movie != nil && !ratings.IsAppropriate(item.OfficialRating, movie.OfficialRating) {
			continue
		}
		qualifying = append(qualifying, item)
	}
	if len(qualifying) == 0 {
		return nil
	}
	picked := qualifying[s.rng.Intn(len(qualifying))]
	return &picked
}

// matches applies the selection's predicate to one item.
func matches(sel models.PreRollSelection, item *models.Item) bool {
	if sel.Name != "" && !strings.Contains(normalizeName(item.Name), normalizeName(sel.Name)) {
		return false
	}
	if sel.Year != 0 && item.ProductionYear != sel.Year {
		return false
	}
	if sel.Decade != 0 && item.Decade() != sel.Decade {
		return false
	}
	if len(sel.Genres) > 0 && !anyMatch(sel.Genres, item.Genres) {
		return false
	}
	if len(sel.Studios) > 0 && !anyMatch(sel.Studios, item.Studios) {
		return false
	}
	if len(sel.Tags) > 0 {
		if sel.RequireAllTags {
			if !allMatch(sel.Tags, item.Tags) {
				return false
			}
		} else if !anyMatch(sel.Tags, item.Tags) {
			return false
		}
	}
	return true
}

// normalizeName folds case and diacritics so "Café" matches "cafe".
func normalizeName(name string) string {
	return strings.ToLower(unidecode.Unidecode(name))
}

func hasActiveTag(item *models.Item, active map[string]bool) bool {
	for _, tag := range item.Tags {
		if active[strings.ToLower(tag)] {
			return true
		}
	}
	return false
}

func anyMatch(wanted, have []string) bool {
	for _, w := range wanted {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}

func allMatch(wanted, have []string) bool {
	for _, w := range wanted {
		found := false
		for _, h := range have {
			if strings.EqualFold(w, h) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
