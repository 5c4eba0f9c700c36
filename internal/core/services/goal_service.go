package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthup/insight-engine/internal/core/domain"
)

// Tunable goal-generation constants.
const (
	// Defaults when a user has no history at all.
	DefaultExerciseTarget  = 3
	DefaultDietTarget      = 3
	DefaultDiversityTarget = 0.7

	// Increment over current performance for adaptive targets.
	DiversityTargetMargin = 2

	// A consistency goal requires the category in at least
	// ConsistencyGoalMinWeeks of the last ConsistencyGoalWindow weeks.
	ConsistencyGoalMinWeeks = 3
	ConsistencyGoalWindow   = 6

	// Exploration challenges look at the recent window and expire
	// after a fixed number of days.
	ExplorationRecentWindow = 4
	ExplorationWindowDays   = 14
	ExplorationMaxTargets   = 3

	GoalBasePoints = 50
)

// GoalService generates adaptive goals from current performance and
// recomputes their progress from new reports. Generation takes the
// reference time explicitly so results depend only on the inputs.
type GoalService struct {
	diversity *DiversityService
}

func NewGoalService(diversity *DiversityService) *GoalService {
	return &GoalService{diversity: diversity}
}

// GenerateDynamicGoals produces a mix across the four goal types.
func (s *GoalService) GenerateDynamicGoals(current *domain.WeeklyReport, history []*domain.WeeklyReport, now time.Time) ([]*domain.CategoryGoal, error) {
	if current == nil {
		return nil, domain.ErrNilReport
	}

	past := sortedHistory(history)

	goals := []*domain.CategoryGoal{}
	goals = append(goals, s.CreateDiversityTarget(current, past, now)...)
	goals = append(goals, s.CreateConsistencyGoals(current, past, now)...)
	goals = append(goals, s.CreateExplorationChallenges(current, past, now)...)
	goals = append(goals, s.createBalanceGoal(current, now))

	return goals, nil
}

// CreateDiversityTarget sets distinct-category targets from current
// usage plus a margin, falling back to the 3/3 defaults and a 0.7
// target score when there is no history to calibrate against.
func (s *GoalService) CreateDiversityTarget(current *domain.WeeklyReport, history []*domain.WeeklyReport, now time.Time) []*domain.CategoryGoal {
	stats := current.Stats.Normalized()
	distinct := stats.DistinctCategoryCount()

	target := float64(DefaultExerciseTarget + DefaultDietTarget)
	difficulty := domain.DifficultyEasy
	if len(history) > 0 {
		target = float64(distinct + DiversityTargetMargin)
		difficulty = difficultyForIncrement(distinct, DiversityTargetMargin)
	}

	countGoal := newGoal(domain.GoalTypeDiversity, difficulty, now)
	countGoal.Title = fmt.Sprintf("Try %d different categories this week", int(target))
	countGoal.TargetValue = target
	countGoal.CurrentValue = float64(distinct)
	countGoal.Progress = clamp01(safeRatio(countGoal.CurrentValue, countGoal.TargetValue))

	scoreGoal := newGoal(domain.GoalTypeDiversity, domain.DifficultyMedium, now)
	scoreGoal.Title = "Spread activity more evenly across categories"
	scoreGoal.TargetValue = DefaultDiversityTarget
	scoreGoal.CurrentValue = s.diversity.Scores(stats).OverallDiversity
	scoreGoal.Progress = clamp01(safeRatio(scoreGoal.CurrentValue, scoreGoal.TargetValue))

	return []*domain.CategoryGoal{countGoal, scoreGoal}
}

// CreateConsistencyGoals only targets categories that clear a minimum
// historical-frequency bar, so one-off activity never spawns a goal.
func (s *GoalService) CreateConsistencyGoals(current *domain.WeeklyReport, history []*domain.WeeklyReport, now time.Time) []*domain.CategoryGoal {
	window := history
	if len(window) > ConsistencyGoalWindow {
		window = window[len(window)-ConsistencyGoalWindow:]
	}

	goals := []*domain.CategoryGoal{}
	currentCounts := current.Stats.Normalized().CombinedCategories()

	weekMaps := make([]map[string]int, len(window))
	for i, r := range window {
		weekMaps[i] = r.Stats.CombinedCategories()
	}

	for _, name := range unionCategories(weekMaps...) {
		activeWeeks := 0
		for _, m := range weekMaps {
			if m[name] > 0 {
				activeWeeks++
			}
		}
		if activeWeeks < ConsistencyGoalMinWeeks {
			continue
		}

		goal := newGoal(domain.GoalTypeConsistency, domain.DifficultyMedium, now)
		goal.Category = name
		goal.Title = fmt.Sprintf("Keep %s going for %d more weeks", name, ConsistencyGoalWindow-2)
		goal.TargetValue = float64(ConsistencyGoalWindow - 2)
		if currentCounts[name] > 0 {
			goal.CurrentValue = 1
		}
		goal.Progress = clamp01(safeRatio(goal.CurrentValue, goal.TargetValue))
		goals = append(goals, goal)
	}

	return goals
}

// CreateExplorationChallenges targets known categories absent from the
// recent window, with points scaling with challenge size and a fixed
// expiry.
func (s *GoalService) CreateExplorationChallenges(current *domain.WeeklyReport, history []*domain.WeeklyReport, now time.Time) []*domain.CategoryGoal {
	recent := history
	if len(recent) > ExplorationRecentWindow {
		recent = recent[len(recent)-ExplorationRecentWindow:]
	}

	seen := make(map[string]bool)
	for name := range current.Stats.CombinedCategories() {
		seen[name] = true
	}
	for _, r := range recent {
		for name := range r.Stats.CombinedCategories() {
			seen[name] = true
		}
	}

	targets := []string{}
	for _, name := range append(append([]string{}, domain.KnownExerciseCategories...), domain.KnownDietCategories...) {
		if !seen[name] {
			targets = append(targets, name)
		}
		if len(targets) == ExplorationMaxTargets {
			break
		}
	}

	if len(targets) == 0 {
		return []*domain.CategoryGoal{}
	}

	expires := now.AddDate(0, 0, ExplorationWindowDays)

	goal := newGoal(domain.GoalTypeExploration, difficultyForIncrement(0, len(targets)), now)
	goal.Categories = targets
	goal.Title = fmt.Sprintf("Explore %d new categories", len(targets))
	goal.TargetValue = float64(len(targets))
	goal.ExpiresAt = &expires
	goal.BasePoints = GoalBasePoints * len(targets)

	return []*domain.CategoryGoal{goal}
}

func (s *GoalService) createBalanceGoal(current *domain.WeeklyReport, now time.Time) *domain.CategoryGoal {
	scores := s.diversity.Scores(current.Stats)

	goal := newGoal(domain.GoalTypeBalance, domain.DifficultyHard, now)
	goal.Title = "Balance exercise and diet certifications"
	goal.TargetValue = 0.8
	goal.CurrentValue = scores.OverallBalance
	goal.Progress = clamp01(safeRatio(goal.CurrentValue, goal.TargetValue))
	return goal
}

// UpdateGoalProgress recomputes a goal's progress from a new report
// using the metric implied by the goal type. Completing or expiring a
// goal is terminal.
func (s *GoalService) UpdateGoalProgress(goal *domain.CategoryGoal, report *domain.WeeklyReport) error {
	if goal == nil {
		return domain.ErrNilGoal
	}
	if report == nil {
		return domain.ErrNilReport
	}
	if goal.IsCompleted {
		return nil
	}

	asOf := report.GeneratedAt
	if asOf.IsZero() {
		asOf = report.WeekEndDate
	}

	if goal.IsExpired(asOf) {
		goal.IsActive = false
		return nil
	}

	stats := report.Stats.Normalized()

	switch goal.Type {
	case domain.GoalTypeDiversity:
		if goal.TargetValue <= 1 {
			goal.CurrentValue = s.diversity.Scores(stats).OverallDiversity
		} else {
			goal.CurrentValue = float64(stats.DistinctCategoryCount())
		}
	case domain.GoalTypeConsistency:
		week := report.WeekStartDate
		counted := goal.LastCountedWeek != nil && goal.LastCountedWeek.Equal(week)
		if !counted && stats.CombinedCategories()[goal.Category] > 0 {
			goal.CurrentValue++
			goal.LastCountedWeek = &week
		}
	case domain.GoalTypeExploration:
		tried := 0
		combined := stats.CombinedCategories()
		for _, name := range goal.Categories {
			if combined[name] > 0 {
				tried++
			}
		}
		if float64(tried) > goal.CurrentValue {
			goal.CurrentValue = float64(tried)
		}
	case domain.GoalTypeBalance:
		goal.CurrentValue = s.diversity.Scores(stats).OverallBalance
	}

	goal.Progress = clamp01(safeRatio(goal.CurrentValue, goal.TargetValue))

	if goal.CurrentValue >= goal.TargetValue && goal.TargetValue > 0 {
		goal.IsCompleted = true
		goal.IsActive = false
		goal.Progress = 1
		completedAt := asOf
		goal.CompletedAt = &completedAt
	}

	return nil
}

// Summary aggregates goal totals. Expiry is judged against each goal's
// own window; completed goals count as completed even if their window
// has since lapsed.
func (s *GoalService) Summary(goals []*domain.CategoryGoal, now time.Time) domain.GoalSummary {
	summary := domain.GoalSummary{Total: len(goals)}

	for _, g := range goals {
		if g == nil {
			summary.Total--
			continue
		}

		switch {
		case g.IsCompleted:
			summary.Completed++
			summary.TotalPointsEarned += g.TotalPoints()
			summary.TotalPointsPossible += g.TotalPoints()
		case g.IsExpired(now):
			summary.Expired++
		default:
			if g.IsActive {
				summary.Active++
			}
			summary.TotalPointsPossible += g.TotalPoints()
		}
	}

	if summary.Total > 0 {
		summary.CompletionRate = float64(summary.Completed) / float64(summary.Total)
	}
	if summary.Completed+summary.Expired > 0 {
		summary.SuccessRate = float64(summary.Completed) / float64(summary.Completed+summary.Expired)
	}

	return summary
}

func newGoal(goalType domain.GoalType, difficulty domain.GoalDifficulty, now time.Time) *domain.CategoryGoal {
	return &domain.CategoryGoal{
		ID:         uuid.New().String(),
		Type:       goalType,
		Difficulty: difficulty,
		IsActive:   true,
		CreatedAt:  now,
		BasePoints: GoalBasePoints,
	}
}

func difficultyForIncrement(current, increment int) domain.GoalDifficulty {
	switch {
	case increment >= 3 && current >= 4:
		return domain.DifficultyExpert
	case increment >= 3:
		return domain.DifficultyHard
	case increment == 2:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyEasy
	}
}
