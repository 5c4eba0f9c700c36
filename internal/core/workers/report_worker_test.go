package workers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthup/insight-engine/internal/adapters/repository"
	"github.com/healthup/insight-engine/internal/core/domain"
	"github.com/healthup/insight-engine/internal/core/services"
	"github.com/healthup/insight-engine/internal/core/workers"
)

func newTestWorker(repo domain.ReportRepository) *workers.ReportWorker {
	svc := services.NewReportService(
		repo,
		nil,
		services.NewDiversityService(),
		services.NewTrendService(),
		services.NewPreferenceService(),
		services.NewForecastService(),
	)
	return workers.NewReportWorker(svc)
}

func TestReportWorker_ProcessesJobs(t *testing.T) {
	repo := repository.NewInMemoryReportRepository()
	worker := newTestWorker(repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	weekStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	ok := worker.Enqueue(workers.GenerateJob{
		UserUUID:  "user-1",
		WeekStart: weekStart,
		Stats: domain.WeeklyStats{
			TotalCertifications: 4,
			ExerciseCategories:  map[string]int{"근력 운동": 2},
			DietCategories:      map[string]int{"집밥": 2},
		},
	})
	require.True(t, ok)

	// The worker runs async; give it a moment and poll.
	deadline := time.Now().Add(2 * time.Second)
	var report *domain.WeeklyReport
	for time.Now().Before(deadline) {
		r, err := repo.GetByUserAndWeek(context.Background(), "user-1", weekStart)
		if err == nil && r.Status == domain.ReportStatusCompleted {
			report = r
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.NotNil(t, report, "worker never completed the report")
	assert.Equal(t, 4, report.Stats.TotalCertifications)
	assert.Empty(t, report.Analysis, "no narrative client was configured")
}

func TestReportWorker_EnqueueNonBlocking(t *testing.T) {
	// Never started, so the queue only drains into its buffer.
	worker := newTestWorker(repository.NewInMemoryReportRepository())

	job := workers.GenerateJob{UserUUID: "user-1", WeekStart: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)}

	accepted := 0
	for i := 0; i < 150; i++ {
		if worker.Enqueue(job) {
			accepted++
		}
	}

	assert.Equal(t, 100, accepted, "enqueue must drop, not block, once the buffer is full")
}
