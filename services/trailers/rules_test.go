package trailers

import (
	"testing"

	"marquee/models"
)

func TestRuleWeight(t *testing.T) {
	cases := []struct {
		priority int
		weight   int
	}{
		{0, 10},
		{1, 9},
		{5, 5},
		{9, 1},
		{20, 1},
	}
	for _, tc := range cases {
		r := models.TrailerRule{Priority: tc.priority}
		if got := r.Weight(); got != tc.weight {
			t.Errorf("priority %d: weight = %d, want %d", tc.priority, got, tc.weight)
		}
	}
}

func TestScoreYearBuckets(t *testing.T) {
	movie := &models.Item{ProductionYear: 2020}
	cases := []struct {
		year  int
		score int
	}{
		{2020, 5},
		{2021, 4},
		{2019, 4},
		{2022, 3},
		{2025, 2},
		{2015, 2},
		{2030, 1},
		{2010, 1},
		{1990, 0},
	}
	for _, tc := range cases {
		info := &models.TrailerInfo{Year: tc.year}
		if got := scoreYear(info, movie); got != tc.score {
			t.Errorf("trailer year %d: score = %d, want %d", tc.year, got, tc.score)
		}
	}
}

func TestScoreYearUnknown(t *testing.T) {
	if scoreYear(&models.TrailerInfo{}, &models.Item{ProductionYear: 2020}) != 0 {
		t.Fatal("unknown trailer year should score 0")
	}
	if scoreYear(&models.TrailerInfo{Year: 2020}, &models.Item{}) != 0 {
		t.Fatal("unknown movie year should score 0")
	}
}

func TestScoreDecade(t *testing.T) {
	movie := &models.Item{ProductionYear: 1994}
	if scoreDecade(&models.TrailerInfo{Year: 1999}, movie) != decadeMatchScore {
		t.Fatal("same decade should score")
	}
	if scoreDecade(&models.TrailerInfo{Year: 2001}, movie) != 0 {
		t.Fatal("different decade should score 0")
	}
	if scoreDecade(&models.TrailerInfo{}, movie) != 0 {
		t.Fatal("unknown year should score 0")
	}
}

func TestScoreGenreIsCoarse(t *testing.T) {
	info := &models.TrailerInfo{GenreIDs: []int64{27, 53}}
	if scoreGenre(info, &models.Item{Genres: []string{"Horror"}}) != genreMatchScore {
		t.Fatal("movie with genres should earn the fixed contribution")
	}
	// The contribution does not depend on which genres the trailer has.
	if scoreGenre(&models.TrailerInfo{}, &models.Item{Genres: []string{"Comedy"}}) != genreMatchScore {
		t.Fatal("contribution should not depend on trailer genre IDs")
	}
	if scoreGenre(info, &models.Item{}) != 0 {
		t.Fatal("movie without genres should score 0")
	}
}

func TestEnabledByPriority(t *testing.T) {
	rules := []models.TrailerRule{
		{Kind: models.RuleYear, Enabled: true, Priority: 3},
		{Kind: models.RuleGenre, Enabled: false, Priority: 1},
		{Kind: models.RuleDecade, Enabled: true, Priority: 2},
	}
	enabled := enabledByPriority(rules)
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled rules, got %d", len(enabled))
	}
	if enabled[0].Kind != models.RuleDecade || enabled[1].Kind != models.RuleYear {
		t.Fatalf("unexpected order: %+v", enabled)
	}
}
