package services

import (
	"math"

	"github.com/healthup/insight-engine/internal/core/domain"
)

// DiversityService scores one week's category usage. It is stateless;
// every method is a pure function of its arguments.
type DiversityService struct{}

func NewDiversityService() *DiversityService {
	return &DiversityService{}
}

// Score is the normalized Shannon entropy of a category count map:
// 0 when there is no activity or a single category holds everything,
// approaching 1 as usage flattens across categories.
func (s *DiversityService) Score(counts map[string]int) float64 {
	total := 0
	active := 0
	for _, count := range counts {
		if count > 0 {
			total += count
			active++
		}
	}

	if total == 0 || active < 2 {
		return 0
	}

	entropy := 0.0
	for _, count := range counts {
		if count <= 0 {
			continue
		}
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}

	return clamp01(entropy / math.Log2(float64(active)))
}

// GroupBalance measures how close one group's distribution is to
// uniform: the mean over categories of 1 - |actual - expected| where
// expected is the uniform share.
func (s *DiversityService) GroupBalance(counts map[string]int) float64 {
	total := 0
	active := 0
	for _, count := range counts {
		if count > 0 {
			total += count
			active++
		}
	}

	if total == 0 || active == 0 {
		return 0
	}

	expected := 1.0 / float64(active)
	sum := 0.0
	for _, count := range counts {
		if count <= 0 {
			continue
		}
		actual := float64(count) / float64(total)
		sum += 1 - math.Abs(actual-expected)
	}

	return clamp01(sum / float64(active))
}

// Scores computes the full diversity and balance picture for one week.
// The overall balance folds a third term into the average: how evenly
// certifications split between exercise and diet.
func (s *DiversityService) Scores(stats domain.WeeklyStats) domain.DiversityScores {
	clean := stats.Normalized()

	exTotal := clean.ExerciseTotal()
	dietTotal := clean.DietTotal()
	combined := exTotal + dietTotal

	ratioBalance := 0.0
	if combined > 0 {
		exRatio := float64(exTotal) / float64(combined)
		dietRatio := float64(dietTotal) / float64(combined)
		ratioBalance = clamp01(1 - math.Abs(exRatio-dietRatio))
	}

	exBalance := s.GroupBalance(clean.ExerciseCategories)
	dietBalance := s.GroupBalance(clean.DietCategories)

	overallBalance := 0.0
	if combined > 0 {
		overallBalance = clamp01((exBalance + dietBalance + ratioBalance) / 3)
	}

	return domain.DiversityScores{
		ExerciseDiversity: s.Score(clean.ExerciseCategories),
		DietDiversity:     s.Score(clean.DietCategories),
		OverallDiversity:  s.Score(clean.CombinedCategories()),
		ExerciseBalance:   exBalance,
		DietBalance:       dietBalance,
		OverallBalance:    overallBalance,
	}
}
