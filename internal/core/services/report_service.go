package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/healthup/insight-engine/internal/core/domain"
)

// NarrativeClient is the external text-generation service that turns
// computed analytics into human-readable analysis. Its output is
// opaque to the engine and stored as-is on the report.
type NarrativeClient interface {
	Narrate(ctx context.Context, stats domain.WeeklyStats, trends *domain.TrendAnalysis) (analysis string, recommendations []string, err error)
}

// ReportService owns the weekly report lifecycle and fronts the
// analytics services for callers that only hold a user id.
type ReportService struct {
	repo        domain.ReportRepository
	narrative   NarrativeClient
	diversity   *DiversityService
	trends      *TrendService
	preferences *PreferenceService
	forecasts   *ForecastService
}

func NewReportService(
	repo domain.ReportRepository,
	narrative NarrativeClient,
	diversity *DiversityService,
	trends *TrendService,
	preferences *PreferenceService,
	forecasts *ForecastService,
) *ReportService {
	return &ReportService{
		repo:        repo,
		narrative:   narrative,
		diversity:   diversity,
		trends:      trends,
		preferences: preferences,
		forecasts:   forecasts,
	}
}

type GenerateReportInput struct {
	UserUUID  string
	WeekStart time.Time
	Stats     domain.WeeklyStats
}

// Generate creates the report for one user's week and walks it through
// pending -> generating -> completed. A narrative failure degrades to
// an empty analysis; the report still completes. Only storage errors
// fail the report.
func (s *ReportService) Generate(ctx context.Context, input GenerateReportInput) (*domain.WeeklyReport, error) {
	existing, err := s.repo.GetByUserAndWeek(ctx, input.UserUUID, input.WeekStart)
	if err != nil && !errors.Is(err, domain.ErrReportNotFound) {
		return nil, fmt.Errorf("report service: lookup failed: %w", err)
	}
	if existing != nil && existing.Status == domain.ReportStatusCompleted {
		return existing, nil
	}

	report := existing
	if report == nil {
		report, err = domain.NewWeeklyReport(input.UserUUID, input.WeekStart)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, report); err != nil {
			return nil, fmt.Errorf("report service: create failed: %w", err)
		}
	}

	if err := report.MarkGenerating(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, fmt.Errorf("report service: update failed: %w", err)
	}

	history, err := s.historyBefore(ctx, input.UserUUID, report.WeekStartDate)
	if err != nil {
		report.Fail()
		if updateErr := s.repo.Update(ctx, report); updateErr != nil {
			log.Printf("Failed to persist failed report %s: %v", report.ID, updateErr)
		}
		return nil, err
	}

	stats := input.Stats.Normalized()

	// Trends feed the narrative service; a snapshot report is enough
	// for it even with no history.
	snapshot := *report
	snapshot.Stats = stats
	trendView, err := s.trends.Analyze(&snapshot, history)
	if err != nil {
		return nil, err
	}

	analysis := ""
	var recommendations []string
	if s.narrative != nil {
		narrCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		analysis, recommendations, err = s.narrative.Narrate(narrCtx, stats, trendView)
		if err != nil {
			log.Printf("Narrative generation failed for report %s, continuing without: %v", report.ID, err)
			analysis = ""
			recommendations = nil
		}
	}

	if err := report.Complete(stats, analysis, recommendations); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, report); err != nil {
		report.Fail()
		return nil, fmt.Errorf("report service: persist failed: %w", err)
	}

	return report, nil
}

// Current returns the newest completed report for a user along with
// the rest of the series as history.
func (s *ReportService) Current(ctx context.Context, userUUID string) (*domain.WeeklyReport, []*domain.WeeklyReport, error) {
	reports, err := s.repo.ListByUserUUID(ctx, userUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("report service: list failed: %w", err)
	}

	completed := make([]*domain.WeeklyReport, 0, len(reports))
	for _, r := range reports {
		if r.Status == domain.ReportStatusCompleted {
			completed = append(completed, r)
		}
	}
	completed = sortedHistory(completed)

	if len(completed) == 0 {
		return nil, nil, domain.ErrReportNotFound
	}

	newest := completed[len(completed)-1]
	return newest, completed[:len(completed)-1], nil
}

func (s *ReportService) List(ctx context.Context, userUUID string) ([]*domain.WeeklyReport, error) {
	reports, err := s.repo.ListByUserUUID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("report service: list failed: %w", err)
	}
	return sortedHistory(reports), nil
}

// Diversity scores the user's most recent completed week.
func (s *ReportService) Diversity(ctx context.Context, userUUID string) (*domain.DiversityScores, error) {
	current, _, err := s.Current(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	scores := s.diversity.Scores(current.Stats)
	return &scores, nil
}

func (s *ReportService) Trends(ctx context.Context, userUUID string) (*domain.TrendAnalysis, error) {
	current, history, err := s.Current(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return s.trends.Analyze(current, history)
}

func (s *ReportService) Preferences(ctx context.Context, userUUID string) (*domain.PreferenceAnalysis, error) {
	current, history, err := s.Current(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return s.preferences.Analyze(current, history)
}

func (s *ReportService) Forecast(ctx context.Context, userUUID string, targetDate time.Time) (*domain.SeasonalForecast, error) {
	current, history, err := s.Current(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return s.forecasts.Forecast(current, history, targetDate)
}

// historyBefore returns the completed reports strictly before a week.
func (s *ReportService) historyBefore(ctx context.Context, userUUID string, weekStart time.Time) ([]*domain.WeeklyReport, error) {
	reports, err := s.repo.ListByUserUUID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("report service: history lookup failed: %w", err)
	}

	history := make([]*domain.WeeklyReport, 0, len(reports))
	for _, r := range reports {
		if r.Status == domain.ReportStatusCompleted && r.WeekStartDate.Before(weekStart) {
			history = append(history, r)
		}
	}
	return history, nil
}
