// Package settings persists the marquee configuration as a JSON file and
// hands out read-only snapshots to the selection core.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"marquee/models"
	"marquee/services/ratings"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrInvalidRating      = errors.New("unknown parental rating")
)

// Service manages persistence and retrieval of the configuration.
type Service struct {
	mu       sync.RWMutex
	path     string
	settings models.Settings
}

// NewService creates a settings service storing data inside the provided
// directory. A missing file yields the defaults.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "settings.json"),
		settings: models.DefaultSettings(),
	}
	if err := svc.load(); err != nil {
		return nil, err
	}
	return svc, nil
}

// Current returns a snapshot of the configuration. Slices are copied so
// callers can never observe later updates mid-selection.
func (s *Service) Current() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.settings)
}

// Update validates, normalizes and persists new settings.
func (s *Service) Update(cfg models.Settings) error {
	if !ratings.Validate(cfg.MaxTrailerRating) {
		return fmt.Errorf("%w: %q", ErrInvalidRating, cfg.MaxTrailerRating)
	}
	normalize(&cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = cfg
	return s.save()
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}
	var cfg models.Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("[settings] %s is corrupt, falling back to defaults: %v", s.path, err)
		return nil
	}
	normalize(&cfg)
	s.settings = cfg
	return nil
}

func (s *Service) save() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// normalize clamps values the evaluators assume are sane: negative counts
// and out-of-range seasonal month/day boundaries.
func normalize(cfg *models.Settings) {
	if cfg.NumberOfTrailers < 0 {
		cfg.NumberOfTrailers = 0
	}
	if cfg.TrailerLimitPerCategory < 0 {
		cfg.TrailerLimitPerCategory = 0
	}
	for i := range cfg.SeasonalTags {
		tag := &cfg.SeasonalTags[i]
		tag.StartMonth, tag.StartDay = clampMonthDay(tag.StartMonth, tag.StartDay)
		tag.EndMonth, tag.EndDay = clampMonthDay(tag.EndMonth, tag.EndDay)
	}
}

func clampMonthDay(month, day int) (int, int) {
	if month < 1 {
		month = 1
	} else if month > 12 {
		month = 12
	}
	if day < 1 {
		day = 1
	}
	// Clamp against the month's longest possible length; leap-year Feb 29
	// is kept and degrades at evaluation time when needed.
	last := time.Date(2024, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return month, day
}

func cloneSettings(cfg models.Settings) models.Settings {
	out := cfg
	out.SeasonalTags = append([]models.SeasonalTag(nil), cfg.SeasonalTags...)
	out.TrailerRules = append([]models.TrailerRule(nil), cfg.TrailerRules...)
	out.TrailerPreRoll.Selections = append([]models.PreRollSelection(nil), cfg.TrailerPreRoll.Selections...)
	out.FeaturePreRoll.Selections = append([]models.PreRollSelection(nil), cfg.FeaturePreRoll.Selections...)
	return out
}
