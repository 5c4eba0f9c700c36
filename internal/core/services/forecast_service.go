package services

import (
	"time"

	"github.com/healthup/insight-engine/internal/core/domain"
)

const (
	// Same-season weeks needed for full forecast confidence.
	ForecastSeasonWindow = 4

	// Same-season weeks needed before a seasonal factor is applied;
	// below this the factor defaults to 1.0.
	ForecastSeasonMinWeeks = 2

	// Exponential smoothing weight for trend extrapolation.
	ForecastSmoothingAlpha = 0.5
)

// ForecastService classifies the target date's season and extrapolates
// per-category usage toward it. It never consults the wall clock; the
// target date is the only time input.
type ForecastService struct{}

func NewForecastService() *ForecastService {
	return &ForecastService{}
}

func (s *ForecastService) Forecast(current *domain.WeeklyReport, history []*domain.WeeklyReport, targetDate time.Time) (*domain.SeasonalForecast, error) {
	if current == nil {
		return nil, domain.ErrNilReport
	}

	series := sortedSeries(current, history)
	season := domain.SeasonOf(targetDate)

	sameSeason := make([]*domain.WeeklyReport, 0, len(series))
	for _, r := range series {
		if domain.SeasonOf(r.WeekStartDate) == season {
			sameSeason = append(sameSeason, r)
		}
	}

	forecast := &domain.SeasonalForecast{
		TargetDate:  targetDate,
		Season:      season,
		SampleWeeks: len(sameSeason),
		Categories:  make(map[string]domain.CategoryForecast),
	}

	forecast.Confidence = seasonConfidence(sameSeason, targetDate)

	vectors := seriesCategoryCounts(series, combinedCategories)
	seasonal := seriesCategoryCounts(sameSeason, combinedCategories)

	for name, vec := range vectors {
		baseline := smoothedForecast(vec)

		factor := 1.0
		if len(sameSeason) >= ForecastSeasonMinWeeks {
			allAvg := mean(vec)
			seasonAvg := mean(seasonal[name])
			if allAvg > 0 {
				factor = seasonAvg / allAvg
			}
		}

		forecast.Categories[name] = domain.CategoryForecast{
			Category:       name,
			Predicted:      baseline * factor,
			Baseline:       baseline,
			SeasonalFactor: factor,
		}
	}

	return forecast, nil
}

// seasonConfidence scales with how many same-season weeks exist and
// how recent the latest of them is relative to the target date.
func seasonConfidence(sameSeason []*domain.WeeklyReport, targetDate time.Time) float64 {
	if len(sameSeason) == 0 {
		return 0
	}

	base := clamp01(float64(len(sameSeason)) / ForecastSeasonWindow)

	newest := sameSeason[0].WeekStartDate
	for _, r := range sameSeason[1:] {
		if r.WeekStartDate.After(newest) {
			newest = r.WeekStartDate
		}
	}

	weeksAgo := targetDate.Sub(newest).Hours() / (24 * domain.DaysPerWeek)
	if weeksAgo < 0 {
		weeksAgo = 0
	}

	// A full year since the last same-season week halves the weight.
	recency := 52.0 / (52.0 + weeksAgo)

	return clamp01(base * recency)
}

// smoothedForecast runs simple exponential smoothing over the weekly
// counts and returns the next-step level.
func smoothedForecast(vec []float64) float64 {
	if len(vec) == 0 {
		return 0
	}

	level := vec[0]
	for _, v := range vec[1:] {
		level = ForecastSmoothingAlpha*v + (1-ForecastSmoothingAlpha)*level
	}
	if level < 0 {
		return 0
	}
	return level
}
