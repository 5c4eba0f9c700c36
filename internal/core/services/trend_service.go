package services

import (
	"github.com/healthup/insight-engine/internal/core/domain"
)

// Tunable analysis constants. These mirror the thresholds the mobile
// clients were calibrated against; none of them is load-bearing.
const (
	// Velocity below this magnitude counts as stable.
	TrendStabilityEpsilon = 0.1

	// Weeks of history needed for full confidence.
	TrendConfidenceWindow = 8

	// Current count must exceed this multiple of the historical
	// average to flag an established category as emerging.
	EmergingJumpFactor = 2.0

	// Current count below this fraction of the historical average
	// flags a category as declining.
	DecliningDropFactor = 0.5
)

// TrendService derives week-over-week direction, velocity and category
// lifecycle signals from a user's report series.
type TrendService struct{}

func NewTrendService() *TrendService {
	return &TrendService{}
}

// Analyze compares the current week against the historical series.
// History may arrive in any order. An empty history produces a
// zero-confidence result with empty maps, never an error; only a nil
// current report is a caller error.
func (s *TrendService) Analyze(current *domain.WeeklyReport, history []*domain.WeeklyReport) (*domain.TrendAnalysis, error) {
	if current == nil {
		return nil, domain.ErrNilReport
	}

	past := sortedHistory(history)

	analysis := &domain.TrendAnalysis{
		WeeksAnalyzed:    len(past),
		OverallDirection: domain.TrendStable,
		ExerciseTrends:   make(map[string]domain.CategoryTrend),
		DietTrends:       make(map[string]domain.CategoryTrend),
		Emerging:         []string{},
		Declining:        []string{},
		Disappeared:      []string{},
		Lifecycles:       make(map[string]domain.CategoryLifecycle),
	}

	if len(past) == 0 {
		return analysis, nil
	}

	analysis.Confidence = clamp01(float64(len(past)) / TrendConfidenceWindow)

	currentStats := current.Stats.Normalized()
	lastWeek := past[len(past)-1].Stats.Normalized()

	analysis.ExerciseTrends = categoryTrends(currentStats.ExerciseCategories, lastWeek.ExerciseCategories)
	analysis.DietTrends = categoryTrends(currentStats.DietCategories, lastWeek.DietCategories)

	series := append(past, current)
	analysis.Velocity = seriesVelocity(series)
	switch {
	case analysis.Velocity > TrendStabilityEpsilon:
		analysis.OverallDirection = domain.TrendUp
	case analysis.Velocity < -TrendStabilityEpsilon:
		analysis.OverallDirection = domain.TrendDown
	}

	s.classifyLifecycles(analysis, currentStats, past)

	return analysis, nil
}

// categoryTrends compares current counts against the most recent
// historical week. Equality is exact; there is no tolerance band.
func categoryTrends(current, previous map[string]int) map[string]domain.CategoryTrend {
	trends := make(map[string]domain.CategoryTrend)
	for _, name := range unionCategories(current, previous) {
		curr := current[name]
		prev := previous[name]

		direction := domain.TrendStable
		if curr > prev {
			direction = domain.TrendUp
		} else if curr < prev {
			direction = domain.TrendDown
		}

		trends[name] = domain.CategoryTrend{
			Category:      name,
			Direction:     direction,
			CurrentValue:  curr,
			PreviousValue: prev,
		}
	}
	return trends
}

// seriesVelocity is the certification delta between the oldest and the
// newest week, divided by the number of week gaps between them.
func seriesVelocity(series []*domain.WeeklyReport) float64 {
	if len(series) < 2 {
		return 0
	}

	oldest := series[0].Stats.Normalized().TotalCertifications
	newest := series[len(series)-1].Stats.Normalized().TotalCertifications
	gaps := len(series) - 1

	return float64(newest-oldest) / float64(gaps)
}

func (s *TrendService) classifyLifecycles(analysis *domain.TrendAnalysis, current domain.WeeklyStats, past []*domain.WeeklyReport) {
	currentCounts := current.CombinedCategories()

	historyMaps := make([]map[string]int, len(past))
	for i, r := range past {
		historyMaps[i] = r.Stats.CombinedCategories()
	}

	allMaps := append([]map[string]int{currentCounts}, historyMaps...)
	totalWeeks := len(past) + 1

	for _, name := range unionCategories(allMaps...) {
		histTotal := 0
		for _, m := range historyMaps {
			histTotal += m[name]
		}
		histAvg := float64(histTotal) / float64(len(past))
		curr := float64(currentCounts[name])

		switch {
		case histAvg == 0 && curr > 0:
			analysis.Emerging = append(analysis.Emerging, name)
		case histAvg > 0 && curr > histAvg*EmergingJumpFactor:
			analysis.Emerging = append(analysis.Emerging, name)
		case histAvg > 0 && curr == 0:
			analysis.Disappeared = append(analysis.Disappeared, name)
		case histAvg > 0 && curr < histAvg*DecliningDropFactor:
			analysis.Declining = append(analysis.Declining, name)
		}

		activeWeeks := 0
		for _, m := range allMaps {
			if m[name] > 0 {
				activeWeeks++
			}
		}

		ratio := float64(activeWeeks) / float64(totalWeeks)
		analysis.Lifecycles[name] = domain.CategoryLifecycle{
			Category:    name,
			ActiveWeeks: activeWeeks,
			TotalWeeks:  totalWeeks,
			Ratio:       ratio,
			IsActive:    currentCounts[name] > 0 || ratio > 0.5,
		}
	}
}
