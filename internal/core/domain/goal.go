package domain

import (
	"errors"
	"time"
)

var ErrNilGoal = errors.New("goal is required")

type GoalType string

const (
	GoalTypeDiversity   GoalType = "diversity"
	GoalTypeConsistency GoalType = "consistency"
	GoalTypeExploration GoalType = "exploration"
	GoalTypeBalance     GoalType = "balance"
)

type GoalDifficulty string

const (
	DifficultyEasy   GoalDifficulty = "easy"
	DifficultyMedium GoalDifficulty = "medium"
	DifficultyHard   GoalDifficulty = "hard"
	DifficultyExpert GoalDifficulty = "expert"
)

func (d GoalDifficulty) Multiplier() float64 {
	switch d {
	case DifficultyMedium:
		return 1.5
	case DifficultyHard:
		return 2.0
	case DifficultyExpert:
		return 3.0
	default:
		return 1.0
	}
}

// CategoryGoal is a dynamically generated, progress-tracked target.
// It is mutated only through the goal service's progress update; once
// completed or expired it is terminal.
type CategoryGoal struct {
	ID           string         `json:"id"`
	Type         GoalType       `json:"type"`
	Title        string         `json:"title"`
	Category     string         `json:"category,omitempty"`
	Categories   []string       `json:"categories,omitempty"`
	Difficulty   GoalDifficulty `json:"difficulty"`
	TargetValue  float64        `json:"target_value"`
	CurrentValue float64        `json:"current_value"`
	Progress     float64        `json:"progress"`
	IsCompleted  bool           `json:"is_completed"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	BasePoints   int            `json:"base_points"`

	// LastCountedWeek marks the newest week already counted toward a
	// consistency streak, so replaying a report cannot double-count.
	LastCountedWeek *time.Time `json:"last_counted_week,omitempty"`
}

func (g *CategoryGoal) TotalPoints() int {
	return int(float64(g.BasePoints) * g.Difficulty.Multiplier())
}

func (g *CategoryGoal) IsExpired(at time.Time) bool {
	return g.ExpiresAt != nil && at.After(*g.ExpiresAt)
}

type GoalSummary struct {
	Total               int     `json:"total"`
	Active              int     `json:"active"`
	Completed           int     `json:"completed"`
	Expired             int     `json:"expired"`
	TotalPointsEarned   int     `json:"total_points_earned"`
	TotalPointsPossible int     `json:"total_points_possible"`
	CompletionRate      float64 `json:"completion_rate"`
	SuccessRate         float64 `json:"success_rate"`
}
