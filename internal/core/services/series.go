package services

import (
	"sort"

	"github.com/healthup/insight-engine/internal/core/domain"
)

// The analytics services never require pre-sorted input: callers hand
// over whatever the repository returned and the helpers below impose
// chronological order internally.

// sortedHistory returns a copy of history ordered by week start
// ascending, with nil entries dropped.
func sortedHistory(history []*domain.WeeklyReport) []*domain.WeeklyReport {
	out := make([]*domain.WeeklyReport, 0, len(history))
	for _, r := range history {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekStartDate.Before(out[j].WeekStartDate)
	})
	return out
}

// sortedSeries is sortedHistory with the current report appended as the
// newest entry.
func sortedSeries(current *domain.WeeklyReport, history []*domain.WeeklyReport) []*domain.WeeklyReport {
	series := sortedHistory(history)
	if current != nil {
		series = append(series, current)
	}
	return series
}

// unionCategories collects every category name that appears in any of
// the maps, sorted so iteration order never changes a result.
func unionCategories(maps ...map[string]int) []string {
	seen := make(map[string]bool)
	for _, m := range maps {
		for name := range m {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// seriesCategoryCounts builds, for each category, its weekly count
// vector aligned with the series order. The pick function selects
// which group of a week's stats to read.
func seriesCategoryCounts(series []*domain.WeeklyReport, pick func(domain.WeeklyStats) map[string]int) map[string][]float64 {
	maps := make([]map[string]int, len(series))
	for i, r := range series {
		maps[i] = pick(r.Stats.Normalized())
	}

	vectors := make(map[string][]float64)
	for _, name := range unionCategories(maps...) {
		vec := make([]float64, len(series))
		for i, m := range maps {
			if count := m[name]; count > 0 {
				vec[i] = float64(count)
			}
		}
		vectors[name] = vec
	}
	return vectors
}

func exerciseCategories(s domain.WeeklyStats) map[string]int { return s.ExerciseCategories }
func dietCategories(s domain.WeeklyStats) map[string]int     { return s.DietCategories }
func combinedCategories(s domain.WeeklyStats) map[string]int { return s.CombinedCategories() }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// safeRatio short-circuits division by zero to 0 so no score ever
// becomes NaN.
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
