package services

import (
	"math"

	"github.com/healthup/insight-engine/internal/core/domain"
)

// Tunable achievement rule cutoffs.
const (
	WellRoundedMinCategories    = 5
	WellRoundedRareCategories   = 7
	VarietyMasterMinExercise    = 4
	ConsistencyChampionMinWeeks = 4
	AdventureSeekerMinNew       = 3
	PerfectBalanceBand          = 0.25
	PerfectBalanceMinCategories = 3
	HealthOptimizerMinShare     = 0.4
	HealthOptimizerMaxShare     = 0.6
)

// AchievementService evaluates a fixed rule table against the current
// week. Detection is stateless and pure: repeated identical calls
// return identical lists, and remembering which unlocks a user has
// already seen is the caller's job.
type AchievementService struct{}

func NewAchievementService() *AchievementService {
	return &AchievementService{}
}

type achievementRule struct {
	id     string
	title  string
	aType  domain.AchievementType
	rarity domain.AchievementRarity
	points int

	// current/target drive both unlock checks and progress bars.
	measure func(current domain.WeeklyStats, history []*domain.WeeklyReport) (currentValue, targetValue float64)

	// rarityFor optionally upgrades rarity based on the measured value.
	rarityFor func(currentValue float64) domain.AchievementRarity
}

func (s *AchievementService) rules() []achievementRule {
	return []achievementRule{
		{
			id:     "well_rounded_week",
			title:  "Well-Rounded Week",
			aType:  domain.AchievementTypeVariety,
			rarity: domain.RarityCommon,
			points: 25,
			measure: func(current domain.WeeklyStats, _ []*domain.WeeklyReport) (float64, float64) {
				return float64(current.DistinctCategoryCount()), WellRoundedMinCategories
			},
			rarityFor: func(v float64) domain.AchievementRarity {
				if v >= WellRoundedRareCategories {
					return domain.RarityRare
				}
				return domain.RarityCommon
			},
		},
		{
			id:     "exercise_variety_master",
			title:  "Exercise Variety Master",
			aType:  domain.AchievementTypeVariety,
			rarity: domain.RarityRare,
			points: 50,
			measure: func(current domain.WeeklyStats, _ []*domain.WeeklyReport) (float64, float64) {
				return float64(activeCount(current.ExerciseCategories)), VarietyMasterMinExercise
			},
		},
		{
			id:     "perfect_variety",
			title:  "Perfect Variety",
			aType:  domain.AchievementTypeVariety,
			rarity: domain.RarityLegendary,
			points: 250,
			measure: func(current domain.WeeklyStats, _ []*domain.WeeklyReport) (float64, float64) {
				combined := current.CombinedCategories()
				known := 0
				for name := range combined {
					if domain.IsKnownCategory(name) {
						known++
					}
				}
				return float64(known), float64(domain.KnownCategoryCount())
			},
		},
		{
			id:     "consistent_category_champion",
			title:  "Consistent Category Champion",
			aType:  domain.AchievementTypeConsistency,
			rarity: domain.RarityRare,
			points: 75,
			measure: func(current domain.WeeklyStats, history []*domain.WeeklyReport) (float64, float64) {
				return float64(longestFullyActiveWindow(current, history)), ConsistencyChampionMinWeeks
			},
		},
		{
			id:     "first_time_explorer",
			title:  "First Time Explorer",
			aType:  domain.AchievementTypeExploration,
			rarity: domain.RarityCommon,
			points: 20,
			measure: func(current domain.WeeklyStats, history []*domain.WeeklyReport) (float64, float64) {
				return float64(newCategoryCount(current, history)), 1
			},
		},
		{
			id:     "adventure_seeker",
			title:  "Adventure Seeker",
			aType:  domain.AchievementTypeExploration,
			rarity: domain.RarityRare,
			points: 60,
			measure: func(current domain.WeeklyStats, history []*domain.WeeklyReport) (float64, float64) {
				return float64(newCategoryCount(current, history)), AdventureSeekerMinNew
			},
		},
		{
			id:     "perfect_balance",
			title:  "Perfect Balance",
			aType:  domain.AchievementTypeBalance,
			rarity: domain.RarityEpic,
			points: 100,
			measure: func(current domain.WeeklyStats, _ []*domain.WeeklyReport) (float64, float64) {
				active := activeCount(current.ExerciseCategories) + activeCount(current.DietCategories)
				if active < PerfectBalanceMinCategories {
					return 0, 1
				}
				if withinBalanceBand(current.ExerciseCategories) && withinBalanceBand(current.DietCategories) {
					return 1, 1
				}
				return 0, 1
			},
		},
		{
			id:     "health_optimizer",
			title:  "Health Optimizer",
			aType:  domain.AchievementTypeBalance,
			rarity: domain.RarityRare,
			points: 50,
			measure: func(current domain.WeeklyStats, _ []*domain.WeeklyReport) (float64, float64) {
				total := current.ExerciseTotal() + current.DietTotal()
				if total == 0 {
					return 0, 1
				}
				share := float64(current.ExerciseTotal()) / float64(total)
				if share >= HealthOptimizerMinShare && share <= HealthOptimizerMaxShare {
					return 1, 1
				}
				return 0, 1
			},
		},
	}
}

// Detect evaluates every rule and returns the unlocked achievements.
func (s *AchievementService) Detect(current *domain.WeeklyReport, history []*domain.WeeklyReport) ([]domain.CategoryAchievement, error) {
	if current == nil {
		return nil, domain.ErrNilReport
	}

	stats := current.Stats.Normalized()
	past := sortedHistory(history)

	unlocked := []domain.CategoryAchievement{}
	for _, rule := range s.rules() {
		value, target := rule.measure(stats, past)
		if value < target {
			continue
		}

		rarity := rule.rarity
		if rule.rarityFor != nil {
			rarity = rule.rarityFor(value)
		}

		unlocked = append(unlocked, domain.CategoryAchievement{
			ID:     rule.id,
			Title:  rule.title,
			Type:   rule.aType,
			Rarity: rarity,
			Points: rule.points,
			IsNew:  true,
		})
	}

	return unlocked, nil
}

// Progress reports, for every rule that has not unlocked, how close the
// current week is to its target.
func (s *AchievementService) Progress(current *domain.WeeklyReport, history []*domain.WeeklyReport) ([]domain.AchievementProgress, error) {
	if current == nil {
		return nil, domain.ErrNilReport
	}

	stats := current.Stats.Normalized()
	past := sortedHistory(history)

	progress := []domain.AchievementProgress{}
	for _, rule := range s.rules() {
		value, target := rule.measure(stats, past)
		if value >= target {
			continue
		}

		progress = append(progress, domain.AchievementProgress{
			RuleID:       rule.id,
			Title:        rule.title,
			CurrentValue: value,
			TargetValue:  target,
			Progress:     clamp01(safeRatio(value, target)),
		})
	}

	return progress, nil
}

func activeCount(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// newCategoryCount counts categories active this week that never
// appeared in history. With no history nothing counts as new.
func newCategoryCount(current domain.WeeklyStats, history []*domain.WeeklyReport) int {
	if len(history) == 0 {
		return 0
	}

	seen := make(map[string]bool)
	for _, r := range history {
		for name := range r.Stats.CombinedCategories() {
			seen[name] = true
		}
	}

	count := 0
	for name := range current.CombinedCategories() {
		if !seen[name] {
			count++
		}
	}
	return count
}

// longestFullyActiveWindow finds the category kept active in the most
// consecutive recent weeks, current week included.
func longestFullyActiveWindow(current domain.WeeklyStats, history []*domain.WeeklyReport) int {
	weeks := make([]map[string]int, 0, len(history)+1)
	for _, r := range history {
		weeks = append(weeks, r.Stats.CombinedCategories())
	}
	weeks = append(weeks, current.CombinedCategories())

	best := 0
	for name := range current.CombinedCategories() {
		run := 0
		for i := len(weeks) - 1; i >= 0; i-- {
			if weeks[i][name] == 0 {
				break
			}
			run++
		}
		if run > best {
			best = run
		}
	}
	return best
}

// withinBalanceBand reports whether every active count in one group
// sits within a tight band around that group's own average. A group
// with no activity is vacuously balanced.
func withinBalanceBand(counts map[string]int) bool {
	active := activeCount(counts)
	if active == 0 {
		return true
	}

	total := 0
	for _, c := range counts {
		if c > 0 {
			total += c
		}
	}
	avg := float64(total) / float64(active)

	for _, c := range counts {
		if c <= 0 {
			continue
		}
		if math.Abs(float64(c)-avg) > avg*PerfectBalanceBand {
			return false
		}
	}
	return true
}
