package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/healthup/insight-engine/internal/core/domain"
)

type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) Create(ctx context.Context, report *domain.WeeklyReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepo) GetByID(ctx context.Context, id string) (*domain.WeeklyReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WeeklyReport), args.Error(1)
}

func (m *MockReportRepo) GetByUserAndWeek(ctx context.Context, userUUID string, weekStart time.Time) (*domain.WeeklyReport, error) {
	args := m.Called(ctx, userUUID, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WeeklyReport), args.Error(1)
}

func (m *MockReportRepo) ListByUserUUID(ctx context.Context, userUUID string) ([]*domain.WeeklyReport, error) {
	args := m.Called(ctx, userUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WeeklyReport), args.Error(1)
}

func (m *MockReportRepo) Update(ctx context.Context, report *domain.WeeklyReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockNarrativeClient struct {
	mock.Mock
}

func (m *MockNarrativeClient) Narrate(ctx context.Context, stats domain.WeeklyStats, trends *domain.TrendAnalysis) (string, []string, error) {
	args := m.Called(ctx, stats, trends)
	var recs []string
	if args.Get(1) != nil {
		recs = args.Get(1).([]string)
	}
	return args.String(0), recs, args.Error(2)
}

// completedWeek builds a completed report for test series. weekStart is
// expressed as weeks after a fixed anchor Monday so tests stay readable.
func completedWeek(weeksAfterAnchor int, exercise, diet map[string]int) *domain.WeeklyReport {
	anchor := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	start := anchor.AddDate(0, 0, weeksAfterAnchor*domain.DaysPerWeek)

	total := 0
	for _, c := range exercise {
		if c > 0 {
			total += c
		}
	}
	for _, c := range diet {
		if c > 0 {
			total += c
		}
	}

	return &domain.WeeklyReport{
		ID:            "report-" + start.Format("2006-01-02"),
		UserUUID:      "user-1",
		WeekStartDate: start,
		WeekEndDate:   start.AddDate(0, 0, domain.DaysPerWeek-1),
		GeneratedAt:   start.AddDate(0, 0, domain.DaysPerWeek),
		Stats: domain.WeeklyStats{
			TotalCertifications: total,
			ExerciseCategories:  exercise,
			DietCategories:      diet,
		},
		Status: domain.ReportStatusCompleted,
	}
}
