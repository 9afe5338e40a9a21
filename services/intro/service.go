// Package intro composes the ordered pre-playback sequence for a feature:
// trailer pre-roll, selected trailers, feature pre-roll.
package intro

import (
	"log"
	"time"

	"marquee/models"
)

// SettingsSource yields the current configuration snapshot.
type SettingsSource interface {
	Current() models.Settings
}

// Library resolves items and their top-level library.
type Library interface {
	Item(id string) (*models.Item, error)
	TopLevelLibraryID(itemID string) string
}

// PreRollSelector picks one bumper for a slot, or nil.
type PreRollSelector interface {
	Select(slot models.PreRollSlot, seasonalTags []models.SeasonalTag, movie *models.Item, now time.Time) *models.Item
}

// TrailerSelector ranks trailer candidates for the movie.
type TrailerSelector interface {
	Select(movie *models.Item, user *models.User, candidateIDs []string, count int, rules []models.TrailerRule, enforceRating bool) []string
}

// Rand is the injected random source for the fallback path.
type Rand interface {
	Shuffle(n int, swap func(i, j int))
}

// Service orchestrates pre-roll and trailer selection into one sequence.
// It holds no mutable state across calls; concurrent invocations are
// independent.
type Service struct {
	settings SettingsSource
	lib      Library
	prerolls PreRollSelector
	trailers TrailerSelector
	rng      Rand
	now      func() time.Time
}

func NewService(settings SettingsSource, lib Library, prerolls PreRollSelector, trailers TrailerSelector, rng Rand) *Service {
	return &Service{
		settings: settings,
		lib:      lib,
		prerolls: prerolls,
		trailers: trailers,
		rng:      rng,
		now:      time.Now,
	}
}

// ComputeIntroSequence returns the ordered item identifiers to play before
// the given item. An empty sequence means "no intro content". When the
// item is not a movie, cinema mode is off, or the configured library
// restriction does not match, the candidate pool is sampled at random
// instead.
func (s *Service) ComputeIntroSequence(item *models.Item, user *models.User, candidateIDs []string, count int) []string {
	cfg := s.settings.Current()
	if count <= 0 {
		count = cfg.NumberOfTrailers
	}

	if item == nil || !item.IsMovie() || !cfg.EnableCinemaMode {
		return s.randomFallback(candidateIDs, count)
	}
	if cfg.CinemaModeLibraryID != "" {
		libraryID := s.lib.TopLevelLibraryID(item.ID)
		if libraryID != cfg.CinemaModeLibraryID {
			log.Printf("[intro] %s is outside the cinema mode library, using random trailers", item.ID)
			return s.randomFallback(candidateIDs, count)
		}
	}

	now := s.now()
	sequence := make([]string, 0, count+2)

	if pr := s.prerolls.Select(cfg.TrailerPreRoll, cfg.SeasonalTags, item, now); pr != nil {
		sequence = append(sequence, pr.ID)
	}
	sequence = append(sequence, s.trailers.Select(item, user, candidateIDs, count, cfg.TrailerRules, cfg.EnforceTrailerRating)...)
	if pr := s.prerolls.Select(cfg.FeaturePreRoll, cfg.SeasonalTags, item, now); pr != nil {
		sequence = append(sequence, pr.ID)
	}
	return sequence
}

// randomFallback shuffles the candidate pool and takes up to count.
func (s *Service) randomFallback(candidateIDs []string, count int) []string {
	if count <= 0 || len(candidateIDs) == 0 {
		return nil
	}
	shuffled := make([]string, len(candidateIDs))
	copy(shuffled, candidateIDs)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}
