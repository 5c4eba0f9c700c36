package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/healthup/insight-engine/internal/core/domain"
)

// Tunable preference-engine constants.
const (
	// Minimum weeks (history + current) before any correlation is
	// computed. Below this every matrix is empty.
	MinWeeksForCorrelation = 3

	// An effective combination needs at least this much positive
	// correlation and co-occurrence consistency.
	CombinationCorrelationMin = 0.3
	CombinationConsistencyMin = 0.5

	// A synergy anchor must be active in at least this share of
	// weeks; the suggested partner in at most this share.
	SynergyAnchorMinShare    = 0.5
	SynergyUnderusedMaxShare = 0.3

	// A habit-stacking anchor must be active in at least this share
	// of weeks, with at least this correlation to the stacked one.
	StackAnchorMinShare     = 0.6
	StackCorrelationMin     = 0.3

	// Stability at or above this classifies preferences as stable.
	StableClassificationMin = 0.7

	// Balance suggestions fire when a category's share drifts this
	// far from uniform.
	BalanceOveruseFactor  = 1.5
	BalanceUnderuseFactor = 0.5
)

// PreferenceService derives per-category preference metrics, pairwise
// correlation matrices and the recommendation surfaces built on them.
type PreferenceService struct{}

func NewPreferenceService() *PreferenceService {
	return &PreferenceService{}
}

// Analyze runs the whole preference pipeline over one user's series.
func (s *PreferenceService) Analyze(current *domain.WeeklyReport, history []*domain.WeeklyReport) (*domain.PreferenceAnalysis, error) {
	if current == nil {
		return nil, domain.ErrNilReport
	}

	correlations := s.Correlations(current, history)

	return &domain.PreferenceAnalysis{
		Preferences:  s.Preferences(current, history),
		Stability:    s.Stability(current, history),
		Correlations: correlations,
		Combinations: s.EffectiveCombinations(current, history),
		Synergies:    s.SynergyRecommendations(current, history),
		HabitStacks:  s.HabitStackRecommendations(current, history),
		Balance:      s.OptimizeBalance(current, history),
	}, nil
}

// Preferences computes per-category intensity metrics. Intensity
// weights categories that are both frequent and high-count:
// totalCount * frequency / totalWeeks.
func (s *PreferenceService) Preferences(current *domain.WeeklyReport, history []*domain.WeeklyReport) map[string]domain.CategoryPreference {
	past := sortedHistory(history)
	series := append(past, current)
	totalWeeks := len(series)

	currentCounts := current.Stats.Normalized().CombinedCategories()

	weekMaps := make([]map[string]int, len(series))
	for i, r := range series {
		weekMaps[i] = r.Stats.Normalized().CombinedCategories()
	}

	prefs := make(map[string]domain.CategoryPreference)
	for _, name := range unionCategories(weekMaps...) {
		totalCount := 0
		frequency := 0
		for _, m := range weekMaps {
			if count := m[name]; count > 0 {
				totalCount += count
				frequency++
			}
		}

		histTotal := 0
		for i := 0; i < len(past); i++ {
			histTotal += weekMaps[i][name]
		}

		histAvg := 0.0
		if len(past) > 0 {
			histAvg = float64(histTotal) / float64(len(past))
		}

		prefs[name] = domain.CategoryPreference{
			Category:          name,
			TotalCount:        totalCount,
			Frequency:         frequency,
			CurrentCount:      currentCounts[name],
			HistoricalAverage: histAvg,
			Intensity:         float64(totalCount) * float64(frequency) / float64(totalWeeks),
		}
	}
	return prefs
}

// Stability inverts the week-to-week variance of each category's share
// of its group total: low variance means high stability.
func (s *PreferenceService) Stability(current *domain.WeeklyReport, history []*domain.WeeklyReport) domain.PreferenceStability {
	series := sortedSeries(current, history)

	exercise := groupShareStability(series, exerciseCategories)
	diet := groupShareStability(series, dietCategories)
	overall := (exercise + diet) / 2

	classification := domain.TrendDown
	if overall >= StableClassificationMin {
		classification = domain.TrendStable
	}

	return domain.PreferenceStability{
		ExerciseStability: exercise,
		DietStability:     diet,
		OverallStability:  overall,
		Classification:    classification,
	}
}

// groupShareStability averages 1/(1+variance) of per-category weekly
// shares. A single observed week cannot vary, so it scores fully
// stable.
func groupShareStability(series []*domain.WeeklyReport, pick func(domain.WeeklyStats) map[string]int) float64 {
	if len(series) == 0 {
		return 0
	}

	shares := make(map[string][]float64)
	for _, r := range series {
		counts := pick(r.Stats.Normalized())
		total := 0
		for _, c := range counts {
			if c > 0 {
				total += c
			}
		}
		for _, name := range unionCategories(counts) {
			share := 0.0
			if total > 0 && counts[name] > 0 {
				share = float64(counts[name]) / float64(total)
			}
			shares[name] = append(shares[name], share)
		}
	}

	if len(shares) == 0 {
		return 0
	}

	sum := 0.0
	for _, vec := range shares {
		// Pad to full series length; absence is a zero share.
		for len(vec) < len(series) {
			vec = append(vec, 0)
		}
		sum += 1 / (1 + variance(vec))
	}
	return clamp01(sum / float64(len(shares)))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

// pearson computes the correlation coefficient of two aligned vectors.
// Zero variance on either side yields 0, never NaN.
func pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}

	meanX := mean(x)
	meanY := mean(y)

	var numerator, denomX, denomY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		numerator += dx * dy
		denomX += dx * dx
		denomY += dy * dy
	}

	if denomX == 0 || denomY == 0 {
		return 0
	}
	return numerator / math.Sqrt(denomX*denomY)
}

// Correlations builds Pearson matrices within exercise, within diet
// and across the two groups. Series shorter than the minimum return
// empty matrices.
func (s *PreferenceService) Correlations(current *domain.WeeklyReport, history []*domain.WeeklyReport) domain.CorrelationAnalysis {
	series := sortedSeries(current, history)

	analysis := domain.CorrelationAnalysis{
		WeeksAnalyzed: len(series),
		Exercise:      domain.CorrelationMatrix{},
		Diet:          domain.CorrelationMatrix{},
		Cross:         domain.CorrelationMatrix{},
	}

	if len(series) < MinWeeksForCorrelation {
		return analysis
	}

	exVectors := seriesCategoryCounts(series, exerciseCategories)
	dietVectors := seriesCategoryCounts(series, dietCategories)

	analysis.Exercise = pairwiseMatrix(exVectors, exVectors, true)
	analysis.Diet = pairwiseMatrix(dietVectors, dietVectors, true)
	analysis.Cross = pairwiseMatrix(exVectors, dietVectors, false)

	return analysis
}

func pairwiseMatrix(left, right map[string][]float64, symmetric bool) domain.CorrelationMatrix {
	matrix := domain.CorrelationMatrix{}
	for a, vecA := range left {
		for b, vecB := range right {
			if symmetric && a == b {
				continue
			}
			r := pearson(vecA, vecB)
			if matrix[a] == nil {
				matrix[a] = make(map[string]float64)
			}
			matrix[a][b] = r
			if symmetric {
				if matrix[b] == nil {
					matrix[b] = make(map[string]float64)
				}
				matrix[b][a] = r
			}
		}
	}
	return matrix
}

// EffectiveCombinations ranks category pairs whose correlation and
// co-occurrence consistency both clear their thresholds.
func (s *PreferenceService) EffectiveCombinations(current *domain.WeeklyReport, history []*domain.WeeklyReport) []domain.EffectiveCombination {
	series := sortedSeries(current, history)
	if len(series) < MinWeeksForCorrelation {
		return []domain.EffectiveCombination{}
	}

	exVectors := seriesCategoryCounts(series, exerciseCategories)
	dietVectors := seriesCategoryCounts(series, dietCategories)

	combinations := []domain.EffectiveCombination{}
	combinations = append(combinations, collectCombinations(exVectors, exVectors, true, "exercise pairing")...)
	combinations = append(combinations, collectCombinations(dietVectors, dietVectors, true, "diet pairing")...)
	combinations = append(combinations, collectCombinations(exVectors, dietVectors, false, "exercise and diet synergy")...)

	sort.Slice(combinations, func(i, j int) bool {
		if combinations[i].Effectiveness != combinations[j].Effectiveness {
			return combinations[i].Effectiveness > combinations[j].Effectiveness
		}
		if combinations[i].CategoryA != combinations[j].CategoryA {
			return combinations[i].CategoryA < combinations[j].CategoryA
		}
		return combinations[i].CategoryB < combinations[j].CategoryB
	})

	return combinations
}

func collectCombinations(left, right map[string][]float64, symmetric bool, effectType string) []domain.EffectiveCombination {
	leftNames := sortedKeys(left)
	rightNames := sortedKeys(right)

	out := []domain.EffectiveCombination{}
	for i, a := range leftNames {
		for j, b := range rightNames {
			if symmetric && j <= i {
				continue
			}
			r := pearson(left[a], right[b])
			consistency := coOccurrence(left[a], right[b])
			if r < CombinationCorrelationMin || consistency < CombinationConsistencyMin {
				continue
			}

			out = append(out, domain.EffectiveCombination{
				CategoryA:     a,
				CategoryB:     b,
				Correlation:   r,
				Consistency:   consistency,
				Effectiveness: 0.6*r + 0.4*consistency,
				EffectType:    effectType,
				Benefits: []string{
					fmt.Sprintf("%s and %s tend to happen in the same weeks", a, b),
					fmt.Sprintf("keeping both going reinforces your %s routine", effectType),
				},
			})
		}
	}
	return out
}

// coOccurrence is the share of weeks where both categories were active
// out of the weeks where either was.
func coOccurrence(x, y []float64) float64 {
	both := 0
	either := 0
	for i := range x {
		a := x[i] > 0
		b := y[i] > 0
		if a || b {
			either++
		}
		if a && b {
			both++
		}
	}
	return safeRatio(float64(both), float64(either))
}

// SynergyRecommendations suggest pairing an underused category with a
// frequent anchor it correlates positively with.
func (s *PreferenceService) SynergyRecommendations(current *domain.WeeklyReport, history []*domain.WeeklyReport) []domain.SynergyRecommendation {
	series := sortedSeries(current, history)
	if len(series) < MinWeeksForCorrelation {
		return []domain.SynergyRecommendation{}
	}

	vectors := seriesCategoryCounts(series, combinedCategories)
	weeks := float64(len(series))
	confidence := clamp01(weeks / TrendConfidenceWindow)

	recs := []domain.SynergyRecommendation{}
	for _, anchor := range sortedKeys(vectors) {
		anchorShare := activeShare(vectors[anchor])
		if anchorShare < SynergyAnchorMinShare {
			continue
		}
		for _, candidate := range sortedKeys(vectors) {
			if candidate == anchor {
				continue
			}
			candidateShare := activeShare(vectors[candidate])
			if candidateShare > SynergyUnderusedMaxShare || candidateShare == 0 {
				continue
			}
			r := pearson(vectors[anchor], vectors[candidate])
			if r <= 0 {
				continue
			}

			score := 0.6*r + 0.2*anchorShare + 0.2*(1-candidateShare)
			recs = append(recs, domain.SynergyRecommendation{
				Anchor:      anchor,
				Suggested:   candidate,
				Score:       score,
				Correlation: r,
				Confidence:  confidence,
				Priority:    priorityTier(score),
			})
		}
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].Anchor != recs[j].Anchor {
			return recs[i].Anchor < recs[j].Anchor
		}
		return recs[i].Suggested < recs[j].Suggested
	})

	return recs
}

func priorityTier(score float64) string {
	switch {
	case score > 0.7:
		return "high"
	case score > 0.4:
		return "medium"
	default:
		return "low"
	}
}

// HabitStackRecommendations pick a highly consistent anchor and propose
// stacking a correlated but underused category onto it.
func (s *PreferenceService) HabitStackRecommendations(current *domain.WeeklyReport, history []*domain.WeeklyReport) []domain.HabitStackRecommendation {
	series := sortedSeries(current, history)
	if len(series) < MinWeeksForCorrelation {
		return []domain.HabitStackRecommendation{}
	}

	vectors := seriesCategoryCounts(series, combinedCategories)

	recs := []domain.HabitStackRecommendation{}
	for _, anchor := range sortedKeys(vectors) {
		anchorShare := activeShare(vectors[anchor])
		if anchorShare < StackAnchorMinShare {
			continue
		}
		for _, stacked := range sortedKeys(vectors) {
			if stacked == anchor {
				continue
			}
			stackedShare := activeShare(vectors[stacked])
			if stackedShare > SynergyUnderusedMaxShare {
				continue
			}
			r := pearson(vectors[anchor], vectors[stacked])
			if r < StackCorrelationMin {
				continue
			}

			score := 0.6*r + 0.4*anchorShare
			recs = append(recs, domain.HabitStackRecommendation{
				Anchor:             anchor,
				Stacked:            stacked,
				Score:              score,
				SuccessProbability: math.Min(0.95, 0.5+0.3*r+0.2*anchorShare),
				Timing:             fmt.Sprintf("right after %s", anchor),
				Reason:             fmt.Sprintf("%s already happens most weeks, so it can carry %s", anchor, stacked),
				Frequency:          "2-3 times a week",
				Duration:           "15 minutes to start",
			})
		}
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].Anchor != recs[j].Anchor {
			return recs[i].Anchor < recs[j].Anchor
		}
		return recs[i].Stacked < recs[j].Stacked
	})

	return recs
}

// OptimizeBalance enumerates per-category usage corrections against a
// uniform target plus any detected distribution issues.
func (s *PreferenceService) OptimizeBalance(current *domain.WeeklyReport, history []*domain.WeeklyReport) domain.BalanceOptimization {
	out := domain.BalanceOptimization{
		Suggestions: []domain.BalanceSuggestion{},
		Issues:      []string{},
	}
	if current == nil {
		return out
	}

	stats := current.Stats.Normalized()
	counts := stats.CombinedCategories()
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return out
	}

	expected := 1.0 / float64(len(counts))
	for _, name := range unionCategories(counts) {
		ratio := float64(counts[name]) / float64(total)

		action := ""
		switch {
		case ratio > expected*BalanceOveruseFactor:
			action = "decrease"
		case ratio < expected*BalanceUnderuseFactor:
			action = "increase"
		}
		if action == "" {
			continue
		}

		out.Suggestions = append(out.Suggestions, domain.BalanceSuggestion{
			Category:         name,
			Action:           action,
			CurrentRatio:     ratio,
			RecommendedRatio: expected,
			Impact:           math.Abs(ratio - expected),
		})
	}

	sort.Slice(out.Suggestions, func(i, j int) bool {
		if out.Suggestions[i].Impact != out.Suggestions[j].Impact {
			return out.Suggestions[i].Impact > out.Suggestions[j].Impact
		}
		return out.Suggestions[i].Category < out.Suggestions[j].Category
	})

	if len(counts) < 2 {
		out.Suggestions = append(out.Suggestions, domain.BalanceSuggestion{
			Category:         "전체",
			Action:           "diversify",
			CurrentRatio:     1,
			RecommendedRatio: expected,
			Impact:           1 - expected,
		})
		out.Issues = append(out.Issues, "activity is concentrated in a single category")
	}

	exTotal := stats.ExerciseTotal()
	dietTotal := stats.DietTotal()
	if exTotal == 0 && dietTotal > 0 {
		out.Issues = append(out.Issues, "no exercise certifications this week")
	}
	if dietTotal == 0 && exTotal > 0 {
		out.Issues = append(out.Issues, "no diet certifications this week")
	}
	if exTotal > 0 && dietTotal > 0 {
		share := float64(exTotal) / float64(exTotal+dietTotal)
		if share > 0.75 {
			out.Issues = append(out.Issues, "certifications lean heavily toward exercise")
		} else if share < 0.25 {
			out.Issues = append(out.Issues, "certifications lean heavily toward diet")
		}
	}

	return out
}

func activeShare(vec []float64) float64 {
	if len(vec) == 0 {
		return 0
	}
	active := 0
	for _, v := range vec {
		if v > 0 {
			active++
		}
	}
	return float64(active) / float64(len(vec))
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
