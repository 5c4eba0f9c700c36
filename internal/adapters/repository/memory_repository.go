package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/healthup/insight-engine/internal/core/domain"
)

type InMemoryReportRepository struct {
	store map[string]*domain.WeeklyReport

	mu sync.RWMutex
}

func NewInMemoryReportRepository() *InMemoryReportRepository {
	return &InMemoryReportRepository{
		store: make(map[string]*domain.WeeklyReport),
	}
}

func (r *InMemoryReportRepository) Create(ctx context.Context, report *domain.WeeklyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.store {
		if existing.UserUUID == report.UserUUID && existing.WeekStartDate.Equal(report.WeekStartDate) {
			return domain.ErrReportConflict
		}
	}

	r.store[report.ID] = report
	return nil
}

func (r *InMemoryReportRepository) GetByID(ctx context.Context, id string) (*domain.WeeklyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.store[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return report, nil
}

func (r *InMemoryReportRepository) GetByUserAndWeek(ctx context.Context, userUUID string, weekStart time.Time) (*domain.WeeklyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target := weekStart.UTC().Truncate(24 * time.Hour)
	for _, report := range r.store {
		if report.UserUUID == userUUID && report.WeekStartDate.Equal(target) {
			return report, nil
		}
	}
	return nil, domain.ErrReportNotFound
}

func (r *InMemoryReportRepository) ListByUserUUID(ctx context.Context, userUUID string) ([]*domain.WeeklyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []*domain.WeeklyReport
	for _, report := range r.store {
		if report.UserUUID == userUUID {
			reports = append(reports, report)
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].WeekStartDate.Before(reports[j].WeekStartDate)
	})

	return reports, nil
}

func (r *InMemoryReportRepository) Update(ctx context.Context, report *domain.WeeklyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[report.ID]; !ok {
		return domain.ErrReportNotFound
	}

	r.store[report.ID] = report
	return nil
}

func (r *InMemoryReportRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrReportNotFound
	}

	delete(r.store, id)
	return nil
}
