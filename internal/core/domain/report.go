package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrReportInvalidUserID   = errors.New("invalid user uuid")
	ErrReportInvalidWeek     = errors.New("week start date must be set")
	ErrReportNotCompletable  = errors.New("only a generating report can be completed")
	ErrReportAlreadyFinal    = errors.New("completed report cannot be regenerated")
	ErrNilReport             = errors.New("current report is required")
)

const (
	ReportStatusPending    = "pending"
	ReportStatusGenerating = "generating"
	ReportStatusCompleted  = "completed"
	ReportStatusFailed     = "failed"
)

const DaysPerWeek = 7

// WeeklyStats is one week of self-reported activity, bucketed into
// exercise and diet categories. Category names are an open vocabulary:
// a missing key means a count of zero.
type WeeklyStats struct {
	TotalCertifications int            `json:"total_certifications" db:"total_certifications"`
	ExerciseDays        int            `json:"exercise_days" db:"exercise_days"`
	DietDays            int            `json:"diet_days" db:"diet_days"`
	ExerciseCategories  map[string]int `json:"exercise_categories"`
	DietCategories      map[string]int `json:"diet_categories"`
	ConsistencyScore    float64        `json:"consistency_score" db:"consistency_score"`
}

// Normalized returns a defensive copy with day counts clamped to [0,7],
// negative category counts clamped to 0 and the consistency score
// clamped to [0,1].
func (s WeeklyStats) Normalized() WeeklyStats {
	out := WeeklyStats{
		TotalCertifications: clampMin(s.TotalCertifications, 0),
		ExerciseDays:        clampRange(s.ExerciseDays, 0, DaysPerWeek),
		DietDays:            clampRange(s.DietDays, 0, DaysPerWeek),
		ExerciseCategories:  make(map[string]int, len(s.ExerciseCategories)),
		DietCategories:      make(map[string]int, len(s.DietCategories)),
		ConsistencyScore:    clampUnit(s.ConsistencyScore),
	}

	for name, count := range s.ExerciseCategories {
		out.ExerciseCategories[name] = clampMin(count, 0)
	}
	for name, count := range s.DietCategories {
		out.DietCategories[name] = clampMin(count, 0)
	}

	return out
}

// CombinedCategories merges exercise and diet counts into a single map.
// Names that appear in both groups are summed.
func (s WeeklyStats) CombinedCategories() map[string]int {
	combined := make(map[string]int, len(s.ExerciseCategories)+len(s.DietCategories))
	for name, count := range s.ExerciseCategories {
		if count > 0 {
			combined[name] += count
		}
	}
	for name, count := range s.DietCategories {
		if count > 0 {
			combined[name] += count
		}
	}
	return combined
}

// DistinctCategoryCount counts categories with a positive count across
// both groups.
func (s WeeklyStats) DistinctCategoryCount() int {
	return len(s.CombinedCategories())
}

func countTotal(categories map[string]int) int {
	total := 0
	for _, count := range categories {
		if count > 0 {
			total += count
		}
	}
	return total
}

// ExerciseTotal sums all exercise category counts.
func (s WeeklyStats) ExerciseTotal() int { return countTotal(s.ExerciseCategories) }

// DietTotal sums all diet category counts.
func (s WeeklyStats) DietTotal() int { return countTotal(s.DietCategories) }

// WeeklyReport is one generated report per user per week. The stats and
// narrative fields are immutable once the report reaches "completed";
// later analytics treat earlier reports as read-only history.
type WeeklyReport struct {
	ID              string      `json:"id" db:"id"`
	UserUUID        string      `json:"user_uuid" db:"user_uuid"`
	WeekStartDate   time.Time   `json:"week_start_date" db:"week_start_date"`
	WeekEndDate     time.Time   `json:"week_end_date" db:"week_end_date"`
	GeneratedAt     time.Time   `json:"generated_at" db:"generated_at"`
	Stats           WeeklyStats `json:"stats"`
	Analysis        string      `json:"analysis" db:"analysis"`
	Recommendations []string    `json:"recommendations"`
	Status          string      `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

func NewWeeklyReport(userUUID string, weekStart time.Time) (*WeeklyReport, error) {
	if strings.TrimSpace(userUUID) == "" {
		return nil, ErrReportInvalidUserID
	}
	if weekStart.IsZero() {
		return nil, ErrReportInvalidWeek
	}

	now := time.Now().UTC()
	start := weekStart.UTC().Truncate(24 * time.Hour)

	return &WeeklyReport{
		ID:            uuid.New().String(),
		UserUUID:      userUUID,
		WeekStartDate: start,
		WeekEndDate:   start.AddDate(0, 0, DaysPerWeek-1),
		Status:        ReportStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (r *WeeklyReport) IsFinal() bool {
	return r.Status == ReportStatusCompleted || r.Status == ReportStatusFailed
}

// MarkGenerating moves the report into the generating state. A failed
// report may re-enter generation on a retry; only a completed report
// is immutable.
func (r *WeeklyReport) MarkGenerating() error {
	if r.Status == ReportStatusCompleted {
		return ErrReportAlreadyFinal
	}
	r.Status = ReportStatusGenerating
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete attaches the computed stats and the externally generated
// narrative. The analysis and recommendation strings are opaque here.
func (r *WeeklyReport) Complete(stats WeeklyStats, analysis string, recommendations []string) error {
	if r.Status != ReportStatusGenerating {
		return ErrReportNotCompletable
	}

	now := time.Now().UTC()
	r.Stats = stats.Normalized()
	r.Analysis = analysis
	r.Recommendations = recommendations
	r.Status = ReportStatusCompleted
	r.GeneratedAt = now
	r.UpdatedAt = now
	return nil
}

func (r *WeeklyReport) Fail() {
	if r.IsFinal() {
		return
	}
	r.Status = ReportStatusFailed
	r.UpdatedAt = time.Now().UTC()
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

func clampRange(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
