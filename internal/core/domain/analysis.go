package domain

// DiversityScores are one week's entropy and balance metrics. All
// values are clamped to [0,1]; weeks with no activity score 0.
type DiversityScores struct {
	ExerciseDiversity float64 `json:"exercise_diversity"`
	DietDiversity     float64 `json:"diet_diversity"`
	OverallDiversity  float64 `json:"overall_diversity"`
	ExerciseBalance   float64 `json:"exercise_balance"`
	DietBalance       float64 `json:"diet_balance"`
	OverallBalance    float64 `json:"overall_balance"`
}

type CategoryTrend struct {
	Category      string         `json:"category"`
	Direction     TrendDirection `json:"direction"`
	CurrentValue  int            `json:"current_value"`
	PreviousValue int            `json:"previous_value"`
}

// CategoryLifecycle tracks how persistently a category has been used
// over the observed window.
type CategoryLifecycle struct {
	Category    string  `json:"category"`
	ActiveWeeks int     `json:"active_weeks"`
	TotalWeeks  int     `json:"total_weeks"`
	Ratio       float64 `json:"ratio"`
	IsActive    bool    `json:"is_active"`
}

// TrendAnalysis is the week-over-week picture for one user. With no
// history every map is empty and Confidence is 0; it is never an error.
type TrendAnalysis struct {
	WeeksAnalyzed    int                          `json:"weeks_analyzed"`
	Confidence       float64                      `json:"confidence"`
	Velocity         float64                      `json:"velocity"`
	OverallDirection TrendDirection               `json:"overall_direction"`
	ExerciseTrends   map[string]CategoryTrend     `json:"exercise_trends"`
	DietTrends       map[string]CategoryTrend     `json:"diet_trends"`
	Emerging         []string                     `json:"emerging"`
	Declining        []string                     `json:"declining"`
	Disappeared      []string                     `json:"disappeared"`
	Lifecycles       map[string]CategoryLifecycle `json:"lifecycles"`
}
