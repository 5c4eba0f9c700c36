package domain

import "time"

type CategoryForecast struct {
	Category       string  `json:"category"`
	Predicted      float64 `json:"predicted"`
	Baseline       float64 `json:"baseline"`
	SeasonalFactor float64 `json:"seasonal_factor"`
}

// SeasonalForecast extrapolates category usage toward a target date.
// Confidence is 0 when no observed week falls in the target season.
type SeasonalForecast struct {
	TargetDate  time.Time                   `json:"target_date"`
	Season      Season                      `json:"season"`
	Confidence  float64                     `json:"confidence"`
	SampleWeeks int                         `json:"sample_weeks"`
	Categories  map[string]CategoryForecast `json:"categories"`
}
