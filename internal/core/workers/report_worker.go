package workers

import (
	"context"
	"log"
	"time"

	"github.com/healthup/insight-engine/internal/core/domain"
	"github.com/healthup/insight-engine/internal/core/services"
)

type GenerateJob struct {
	UserUUID  string
	WeekStart time.Time
	Stats     domain.WeeklyStats
}

// ReportWorker generates weekly reports in the background so the HTTP
// layer can acknowledge a trigger immediately. Jobs are dropped with a
// log line when the queue is full; the external scheduler retries.
type ReportWorker struct {
	reports *services.ReportService
	jobs    chan GenerateJob
}

func NewReportWorker(reports *services.ReportService) *ReportWorker {
	return &ReportWorker{
		reports: reports,
		jobs:    make(chan GenerateJob, 100),
	}
}

func (w *ReportWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Report Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Report Worker shutting down...")
				return
			}
		}
	}()
}

func (w *ReportWorker) Enqueue(job GenerateJob) bool {
	select {
	case w.jobs <- job:
		return true
	default:
		log.Printf("Report Worker queue full! Dropping job for user %s week %s",
			job.UserUUID, job.WeekStart.Format("2006-01-02"))
		return false
	}
}

func (w *ReportWorker) processJob(ctx context.Context, job GenerateJob) {
	report, err := w.reports.Generate(ctx, services.GenerateReportInput{
		UserUUID:  job.UserUUID,
		WeekStart: job.WeekStart,
		Stats:     job.Stats,
	})
	if err != nil {
		log.Printf("Worker failed to generate report for user %s week %s: %v",
			job.UserUUID, job.WeekStart.Format("2006-01-02"), err)
		return
	}

	log.Printf("Report %s generated for user %s (week %s)",
		report.ID, job.UserUUID, job.WeekStart.Format("2006-01-02"))
}
