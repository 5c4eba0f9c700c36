package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/healthup/insight-engine/internal/core/domain"
	"github.com/healthup/insight-engine/internal/core/services"
)

func newReportService(repo domain.ReportRepository, narrative services.NarrativeClient) *services.ReportService {
	diversity := services.NewDiversityService()
	return services.NewReportService(
		repo,
		narrative,
		diversity,
		services.NewTrendService(),
		services.NewPreferenceService(),
		services.NewForecastService(),
	)
}

func TestReportService_Generate(t *testing.T) {
	ctx := context.Background()
	weekStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	input := services.GenerateReportInput{
		UserUUID:  "user-1",
		WeekStart: weekStart,
		Stats: domain.WeeklyStats{
			TotalCertifications: 5,
			ExerciseDays:        3,
			DietDays:            2,
			ExerciseCategories:  map[string]int{"근력 운동": 3},
			DietCategories:      map[string]int{"집밥": 2},
		},
	}

	t.Run("Success: Walks a new report to completed with a narrative", func(t *testing.T) {
		repo := new(MockReportRepo)
		narrative := new(MockNarrativeClient)
		svc := newReportService(repo, narrative)

		repo.On("GetByUserAndWeek", ctx, "user-1", weekStart).Return(nil, domain.ErrReportNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.WeeklyReport")).Return(nil)
		repo.On("ListByUserUUID", ctx, "user-1").Return([]*domain.WeeklyReport{}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.WeeklyReport")).Return(nil)

		narrative.On("Narrate", mock.Anything, mock.Anything, mock.Anything).
			Return("a good week", []string{"keep going"}, nil)

		report, err := svc.Generate(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, domain.ReportStatusCompleted, report.Status)
		assert.Equal(t, "a good week", report.Analysis)
		assert.Equal(t, []string{"keep going"}, report.Recommendations)
		assert.Equal(t, 5, report.Stats.TotalCertifications)
		repo.AssertExpectations(t)
		narrative.AssertExpectations(t)
	})

	t.Run("Success: Narrative failure degrades to an empty analysis", func(t *testing.T) {
		repo := new(MockReportRepo)
		narrative := new(MockNarrativeClient)
		svc := newReportService(repo, narrative)

		repo.On("GetByUserAndWeek", ctx, "user-1", weekStart).Return(nil, domain.ErrReportNotFound)
		repo.On("Create", ctx, mock.Anything).Return(nil)
		repo.On("ListByUserUUID", ctx, "user-1").Return([]*domain.WeeklyReport{}, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		narrative.On("Narrate", mock.Anything, mock.Anything, mock.Anything).
			Return("", nil, errors.New("model overloaded"))

		report, err := svc.Generate(ctx, input)

		require.NoError(t, err, "narrative problems must not fail the report")
		assert.Equal(t, domain.ReportStatusCompleted, report.Status)
		assert.Empty(t, report.Analysis)
		assert.Empty(t, report.Recommendations)
	})

	t.Run("Success: No narrative client configured", func(t *testing.T) {
		repo := new(MockReportRepo)
		svc := newReportService(repo, nil)

		repo.On("GetByUserAndWeek", ctx, "user-1", weekStart).Return(nil, domain.ErrReportNotFound)
		repo.On("Create", ctx, mock.Anything).Return(nil)
		repo.On("ListByUserUUID", ctx, "user-1").Return([]*domain.WeeklyReport{}, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		report, err := svc.Generate(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, domain.ReportStatusCompleted, report.Status)
		assert.Empty(t, report.Analysis)
	})

	t.Run("Edge Case: Already completed week is returned untouched", func(t *testing.T) {
		repo := new(MockReportRepo)
		svc := newReportService(repo, nil)

		existing := completedWeek(0, map[string]int{"근력 운동": 3}, nil)
		repo.On("GetByUserAndWeek", ctx, "user-1", weekStart).Return(existing, nil)

		report, err := svc.Generate(ctx, input)

		require.NoError(t, err)
		assert.Same(t, existing, report)
		repo.AssertNotCalled(t, "Create")
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("Success: Failed week is regenerated on retry", func(t *testing.T) {
		repo := new(MockReportRepo)
		svc := newReportService(repo, nil)

		failed, err := domain.NewWeeklyReport("user-1", weekStart)
		require.NoError(t, err)
		require.NoError(t, failed.MarkGenerating())
		failed.Fail()

		repo.On("GetByUserAndWeek", ctx, "user-1", weekStart).Return(failed, nil)
		repo.On("ListByUserUUID", ctx, "user-1").Return([]*domain.WeeklyReport{}, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		report, err := svc.Generate(ctx, input)

		require.NoError(t, err, "a failed week must be retryable")
		assert.Equal(t, domain.ReportStatusCompleted, report.Status)
		assert.Equal(t, 5, report.Stats.TotalCertifications)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Create error propagates", func(t *testing.T) {
		repo := new(MockReportRepo)
		svc := newReportService(repo, nil)

		dbErr := errors.New("db connection lost")
		repo.On("GetByUserAndWeek", ctx, "user-1", weekStart).Return(nil, domain.ErrReportNotFound)
		repo.On("Create", ctx, mock.Anything).Return(dbErr)

		report, err := svc.Generate(ctx, input)

		assert.ErrorIs(t, err, dbErr)
		assert.Nil(t, report)
	})

	t.Run("Fail: Invalid input surfaces the domain error", func(t *testing.T) {
		repo := new(MockReportRepo)
		svc := newReportService(repo, nil)

		repo.On("GetByUserAndWeek", ctx, "", weekStart).Return(nil, domain.ErrReportNotFound)

		bad := input
		bad.UserUUID = ""
		_, err := svc.Generate(ctx, bad)

		assert.ErrorIs(t, err, domain.ErrReportInvalidUserID)
	})
}

func TestReportService_Current(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Newest completed week plus history", func(t *testing.T) {
		repo := new(MockReportRepo)
		svc := newReportService(repo, nil)

		older := completedWeek(0, map[string]int{"근력 운동": 2}, nil)
		newer := completedWeek(1, map[string]int{"근력 운동": 4}, nil)
		pending := completedWeek(2, map[string]int{"근력 운동": 1}, nil)
		pending.Status = domain.ReportStatusPending

		repo.On("ListByUserUUID", ctx, "user-1").
			Return([]*domain.WeeklyReport{newer, pending, older}, nil)

		current, history, err := svc.Current(ctx, "user-1")

		require.NoError(t, err)
		assert.Same(t, newer, current, "non-completed reports are ignored")
		require.Len(t, history, 1)
		assert.Same(t, older, history[0])
	})

	t.Run("Fail: No completed reports", func(t *testing.T) {
		repo := new(MockReportRepo)
		svc := newReportService(repo, nil)

		repo.On("ListByUserUUID", ctx, "user-1").Return([]*domain.WeeklyReport{}, nil)

		_, _, err := svc.Current(ctx, "user-1")
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})
}

func TestReportService_Analytics(t *testing.T) {
	ctx := context.Background()

	repo := new(MockReportRepo)
	svc := newReportService(repo, nil)

	older := completedWeek(0, map[string]int{"근력 운동": 2, "요가": 2}, map[string]int{"집밥": 2})
	newer := completedWeek(1, map[string]int{"근력 운동": 4, "요가": 1}, map[string]int{"집밥": 3})
	repo.On("ListByUserUUID", ctx, "user-1").
		Return([]*domain.WeeklyReport{older, newer}, nil)

	t.Run("Success: Diversity of the newest week", func(t *testing.T) {
		scores, err := svc.Diversity(ctx, "user-1")

		require.NoError(t, err)
		assert.Greater(t, scores.OverallDiversity, 0.0)
	})

	t.Run("Success: Trends across the series", func(t *testing.T) {
		analysis, err := svc.Trends(ctx, "user-1")

		require.NoError(t, err)
		assert.Equal(t, 1, analysis.WeeksAnalyzed)
		assert.Equal(t, domain.TrendUp, analysis.ExerciseTrends["근력 운동"].Direction)
	})

	t.Run("Success: Forecast for a target date", func(t *testing.T) {
		target := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

		forecast, err := svc.Forecast(ctx, "user-1", target)

		require.NoError(t, err)
		assert.Equal(t, domain.SeasonSpring, forecast.Season)
		assert.NotEmpty(t, forecast.Categories)
	})
}
