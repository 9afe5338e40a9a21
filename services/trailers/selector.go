// Package trailers scores and ranks cached trailer candidates against the
// movie that is about to play.
package trailers

import (
	"sort"
	"time"

	"marquee/models"
	"marquee/services/ratings"
)

// MetadataSource supplies cached per-trailer metadata. A missing entry
// means the trailer scores neutrally; it stays eligible.
type MetadataSource interface {
	Trailer(id string) (*models.TrailerInfo, bool)
}

// Library supplies the played/date-added facts used for tie-breaking.
// Lookups that fail report "not played" and "no date".
type Library interface {
	IsPlayed(itemID, userID string) bool
	DateAdded(itemID string) (time.Time, bool)
}

// Rand is the injected random source.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Selector ranks trailer candidates. Stateless per call apart from the
// injected random source.
type Selector struct {
	meta MetadataSource
	lib  Library
	rng  Rand
}

func NewSelector(meta MetadataSource, lib Library, rng Rand) *Selector {
	return &Selector{meta: meta, lib: lib, rng: rng}
}

// scoredTrailer lives only inside one Select call.
type scoredTrailer struct {
	id           string
	score        int
	played       bool
	dateAdded    time.Time
	hasDateAdded bool
}

// Select returns up to count trailer identifiers ranked by the enabled
// rules. With no enabled rules it degrades to a uniform random sample.
// Duplicate candidates are preserved as given.
func (s *Selector) Select(movie *models.Item, user *models.User, candidateIDs []string, count int, rules []models.TrailerRule, enforceRating bool) []string {
	if count <= 0 || len(candidateIDs) == 0 {
		return nil
	}

	enabled := enabledByPriority(rules)
	if len(enabled) == 0 {
		return s.randomSample(candidateIDs, count)
	}

	wantPlayed := false
	wantDateAdded := false
	for _, r := range enabled {
		switch r.Kind {
		case models.RuleUnplayed:
			wantPlayed = true
		case models.RuleRecentlyAdded:
			wantDateAdded = true
		}
	}

	scored := make([]scoredTrailer, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		st := scoredTrailer{id: id}
		if info, ok := s.meta.Trailer(id); ok {
			for _, r := range enabled {
				fn := ruleScorers[r.Kind]
				if fn == nil {
					continue
				}
				st.score += fn(info, movie) * r.Weight()
			}
			if enforceRating && !ratings.IsAppropriate(info.OfficialRating, movie.OfficialRating) {
				st.score -= ratingPenalty
			}
		}
		if wantPlayed && user != nil {
			st.played = s.lib.IsPlayed(id, user.ID)
		}
		if wantDateAdded {
			st.dateAdded, st.hasDateAdded = s.lib.DateAdded(id)
		}
		scored = append(scored, st)
	}

	// Shuffle before the stable sort so residual ties land in random order.
	s.rng.Shuffle(len(scored), func(i, j int) {
		scored[i], scored[j] = scored[j], scored[i]
	})

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		for _, r := range enabled {
			switch r.Kind {
			case models.RuleUnplayed:
				if a.played != b.played {
					return !a.played
				}
			case models.RuleRecentlyAdded:
				// Unknown date-added sorts as oldest (zero time).
				if !a.dateAdded.Equal(b.dateAdded) {
					return a.dateAdded.After(b.dateAdded)
				}
			}
		}
		return false
	})

	if count > len(scored) {
		count = len(scored)
	}
	result := make([]string, count)
	for i := 0; i < count; i++ {
		result[i] = scored[i].id
	}
	return result
}

func (s *Selector) randomSample(candidateIDs []string, count int) []string {
	sample := make([]string, len(candidateIDs))
	copy(sample, candidateIDs)
	s.rng.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	if count > len(sample) {
		count = len(sample)
	}
	return sample[:count]
}
