package domain

type CategoryPreference struct {
	Category          string  `json:"category"`
	TotalCount        int     `json:"total_count"`
	Frequency         int     `json:"frequency"`
	CurrentCount      int     `json:"current_count"`
	HistoricalAverage float64 `json:"historical_average"`
	Intensity         float64 `json:"intensity"`
}

// PreferenceStability measures how steady each group's category shares
// are week over week. Low share variance means high stability.
type PreferenceStability struct {
	ExerciseStability float64        `json:"exercise_stability"`
	DietStability     float64        `json:"diet_stability"`
	OverallStability  float64        `json:"overall_stability"`
	Classification    TrendDirection `json:"classification"`
}

// CorrelationMatrix maps category pair -> Pearson coefficient. The
// matrix is symmetric: m[a][b] == m[b][a].
type CorrelationMatrix map[string]map[string]float64

type CorrelationAnalysis struct {
	WeeksAnalyzed int               `json:"weeks_analyzed"`
	Exercise      CorrelationMatrix `json:"exercise"`
	Diet          CorrelationMatrix `json:"diet"`
	Cross         CorrelationMatrix `json:"cross"`
}

type EffectiveCombination struct {
	CategoryA     string   `json:"category_a"`
	CategoryB     string   `json:"category_b"`
	Correlation   float64  `json:"correlation"`
	Consistency   float64  `json:"consistency"`
	Effectiveness float64  `json:"effectiveness"`
	EffectType    string   `json:"effect_type"`
	Benefits      []string `json:"benefits"`
}

type SynergyRecommendation struct {
	Anchor      string  `json:"anchor"`
	Suggested   string  `json:"suggested"`
	Score       float64 `json:"score"`
	Correlation float64 `json:"correlation"`
	Confidence  float64 `json:"confidence"`
	Priority    string  `json:"priority"`
}

type HabitStackRecommendation struct {
	Anchor             string  `json:"anchor"`
	Stacked            string  `json:"stacked"`
	Score              float64 `json:"score"`
	SuccessProbability float64 `json:"success_probability"`
	Timing             string  `json:"timing"`
	Reason             string  `json:"reason"`
	Frequency          string  `json:"frequency"`
	Duration           string  `json:"duration"`
}

type BalanceSuggestion struct {
	Category         string  `json:"category"`
	Action           string  `json:"action"`
	CurrentRatio     float64 `json:"current_ratio"`
	RecommendedRatio float64 `json:"recommended_ratio"`
	Impact           float64 `json:"impact"`
}

type BalanceOptimization struct {
	Suggestions []BalanceSuggestion `json:"suggestions"`
	Issues      []string            `json:"issues"`
}

// PreferenceAnalysis bundles everything the preference engine derives
// from one user's series.
type PreferenceAnalysis struct {
	Preferences  map[string]CategoryPreference `json:"preferences"`
	Stability    PreferenceStability           `json:"stability"`
	Correlations CorrelationAnalysis           `json:"correlations"`
	Combinations []EffectiveCombination        `json:"combinations"`
	Synergies    []SynergyRecommendation       `json:"synergies"`
	HabitStacks  []HabitStackRecommendation    `json:"habit_stacks"`
	Balance      BalanceOptimization           `json:"balance"`
}
