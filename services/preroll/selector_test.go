package preroll

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"marquee/models"
)

type fakeLibrary struct {
	libraries map[string][]models.Item
}

func (f *fakeLibrary) VideosInLibrary(libraryID string) ([]models.Item, error) {
	items, ok := f.libraries[libraryID]
	if !ok {
		return nil, errors.New("library not found")
	}
	return items, nil
}

func seededSelector(lib Library) *Selector {
	return NewSelector(lib, rand.New(rand.NewSource(1)))
}

func october(day int) time.Time {
	return time.Date(2025, time.October, day, 20, 0, 0, 0, time.UTC)
}

func TestSelect_EmptyLibraryID(t *testing.T) {
	s := seededSelector(&fakeLibrary{})
	if got := s.Select(models.PreRollSlot{}, nil, nil, october(1)); got != nil {
		t.Fatalf("expected nil for unconfigured slot, got %+v", got)
	}
}

func TestSelect_UnresolvableLibrary(t *testing.T) {
	s := seededSelector(&fakeLibrary{libraries: map[string][]models.Item{}})
	slot := models.PreRollSlot{LibraryID: "missing"}
	if got := s.Select(slot, nil, nil, october(1)); got != nil {
		t.Fatalf("expected nil for unresolvable library, got %+v", got)
	}
}

func TestSelect_NameSubstringMatch(t *testing.T) {
	lib := &fakeLibrary{libraries: map[string][]models.Item{
		"bumpers": {
			{ID: "a", Name: "Intermission Reel"},
			{ID: "b", Name: "Coming Attractions 1978"},
		},
	}}
	slot := models.PreRollSlot{
		LibraryID:  "bumpers",
		Selections: []models.PreRollSelection{{Name: "coming attractions"}},
	}

	got := seededSelector(lib).Select(slot, nil, nil, october(1))
	if got == nil || got.ID != "b" {
		t.Fatalf("expected item b, got %+v", got)
	}
}

func TestSelect_NameMatchFoldsDiacritics(t *testing.T) {
	lib := &fakeLibrary{libraries: map[string][]models.Item{
		"bumpers": {{ID: "a", Name: "Ciné Classics Bumper"}},
	}}
	slot := models.PreRollSlot{
		LibraryID:  "bumpers",
		Selections: []models.PreRollSelection{{Name: "cine classics"}},
	}

	if got := seededSelector(lib).Select(slot, nil, nil, october(1)); got == nil {
		t.Fatal("expected diacritic-insensitive match")
	}
}

func TestSelect_PriorityOrder(t *testing.T) {
	lib := &fakeLibrary{libraries: map[string][]models.Item{
		"bumpers": {
			{ID: "feature", Name: "Feature Presentation"},
			{ID: "coming", Name: "Coming Attractions"},
		},
	}}
	slot := models.PreRollSlot{
		LibraryID: "bumpers",
		Selections: []models.PreRollSelection{
			{Name: "feature", Priority: 2},
			{Name: "coming", Priority: 1},
		},
	}

	got := seededSelector(lib).Select(slot, nil, nil, october(1))
	if got == nil || got.ID != "coming" {
		t.Fatalf("expected lower-priority selection to win, got %+v", got)
	}
}

func TestSelect_RatingGate(t *testing.T) {
	lib := &fakeLibrary{libraries: map[string][]models.Item{
		"bumpers": {
			{ID: "rough", Name: "Grindhouse Bumper", OfficialRating: "R"},
			{ID: "mild", Name: "Grindhouse Bumper Jr", OfficialRating: "G"},
		},
	}}
	slot := models.PreRollSlot{
		LibraryID:     "bumpers",
		EnforceRating: true,
		Selections:    []models.PreRollSelection{{Name: "grindhouse"}},
	}
	movie := &models.Item{ID: "m", MediaType: models.MediaTypeMovie, OfficialRating: "PG"}

	for i := 0; i < 20; i++ {
		got := NewSelector(lib, rand.New(rand.NewSource(int64(i)))).Select(slot, nil, movie, october(1))
		if got == nil || got.ID != "mild" {
			t.Fatalf("seed %d: expected only the G bumper to qualify, got %+v", i, got)
		}
	}
}

func TestSelect_SeasonalGate(t *testing.T) {
	lib := &fakeLibrary{libraries: map[string][]models.Item{
		"bumpers": {
			{ID: "spooky", Name: "Spooky Bumper", Tags: []string{"Halloween"}},
			{ID: "plain", Name: "Plain Bumper"},
		},
	}}
	tags := []models.SeasonalTag{{Name: "Halloween", StartMonth: 10, StartDay: 15, EndMonth: 10, EndDay: 31}}
	slot := models.PreRollSlot{
		LibraryID:         "bumpers",
		IgnoreOutOfSeason: true,
		Selections:        []models.PreRollSelection{{Name: "bumper", Seasonal: true}},
	}

	// In season, both names match but only the tagged item passes the
	// seasonal gate.
	for i := 0; i < 20; i++ {
		got := NewSelector(lib, rand.New(rand.NewSource(int64(i)))).Select(slot, tags, nil, october(20))
		if got == nil || got.ID != "spooky" {
			t.Fatalf("seed %d: expected the seasonal item in season, got %+v", i, got)
		}
	}
}

func TestSelect_TagsAllVsAny(t *testing.T) {
	lib := &fakeLibrary{libraries: map[string][]models.Item{
		"bumpers": {{ID: "a", Name: "Bumper", Tags: []string{"retro"}}},
	}}

	anySlot := models.PreRollSlot{
		LibraryID:  "bumpers",
		Selections: []models.PreRollSelection{{Tags: []string{"retro", "neon"}}},
	}
	if got := seededSelector(lib).Select(anySlot, nil, nil, october(1)); got == nil {
		t.Fatal("any-tag selection should match on one tag")
	}

	allSlot := models.PreRollSlot{
		LibraryID:  "bumpers",
		Selections: []models.PreRollSelection{{Tags: []string{"retro", "neon"}, RequireAllTags: true}},
	}
	got := seededSelector(lib).Select(allSlot, nil, nil, october(1))
	// All-tags selection fails, so the random fallback still returns an item.
	if got == nil {
		t.Fatal("expected random fallback when the all-tags selection fails")
	}
}

func TestSelect_FallbackIsRatingAppropriate(t *testing.T) {
	lib := &fakeLibrary{libraries: map[string][]models.Item{
		"bumpers": {
			{ID: "rough", Name: "A", OfficialRating: "NC-17"},
			{ID: "mild", Name: "B", OfficialRating: "PG"},
		},
	}}
	slot := models.PreRollSlot{
		LibraryID:     "bumpers",
		EnforceRating: true,
		Selections:    []models.PreRollSelection{{Name: "no such bumper"}},
	}
	movie := &models.Item{ID: "m", MediaType: models.MediaTypeMovie, OfficialRating: "PG-13"}

	for i := 0; i < 20; i++ {
		got := NewSelector(lib, rand.New(rand.NewSource(int64(i)))).Select(slot, nil, movie, october(1))
		if got == nil || got.ID != "mild" {
			t.Fatalf("seed %d: fallback returned inappropriate item: %+v", i, got)
		}
	}
}

func TestSelect_NoQualifyingItems(t *testing.T) {
	lib := &fakeLibrary{libraries: map[string][]models.Item{
		"bumpers": {{ID: "rough", Name: "A", OfficialRating: "R"}},
	}}
	slot := models.PreRollSlot{LibraryID: "bumpers", EnforceRating: true}
	movie := &models.Item{ID: "m", MediaType: models.MediaTypeMovie, OfficialRating: "G"}

	if got := seededSelector(lib).Select(slot, nil, movie, october(1)); got != nil {
		t.Fatalf("expected nil when nothing qualifies, got %+v", got)
	}
}

func TestSelect_YearAndDecade(t *testing.T) {
	lib := &fakeLibrary{libraries: map[string][]models.Item{
		"bumpers": {
			{ID: "old", Name: "Bumper", ProductionYear: 1978},
			{ID: "new", Name: "Bumper", ProductionYear: 1994},
		},
	}}

	yearSlot := models.PreRollSlot{
		LibraryID:  "bumpers",
		Selections: []models.PreRollSelection{{Year: 1994}},
	}
	if got := seededSelector(lib).Select(yearSlot, nil, nil, october(1)); got == nil || got.ID != "new" {
		t.Fatalf("expected exact-year match, got %+v", got)
	}

	decadeSlot := models.PreRollSlot{
		LibraryID:  "bumpers",
		Selections: []models.PreRollSelection{{Decade: 1970}},
	}
	if got := seededSelector(lib).Select(decadeSlot, nil, nil, october(1)); got == nil || got.ID != "old" {
		t.Fatalf("expected decade match, got %+v", got)
	}
}
