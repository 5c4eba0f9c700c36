package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrReportNotFound = errors.New("weekly report not found")
	ErrReportConflict = errors.New("a report for this user and week already exists")
)

type ReportRepository interface {
	// Create persists a new weekly report.
	Create(ctx context.Context, report *WeeklyReport) error

	// GetByID retrieves a report by its unique identifier.
	GetByID(ctx context.Context, id string) (*WeeklyReport, error)

	// GetByUserAndWeek retrieves the report for one user's week.
	GetByUserAndWeek(ctx context.Context, userUUID string, weekStart time.Time) (*WeeklyReport, error)

	// ListByUserUUID retrieves all reports for a user ordered by week
	// start ascending.
	ListByUserUUID(ctx context.Context, userUUID string) ([]*WeeklyReport, error)

	// Update modifies the state of an existing report.
	Update(ctx context.Context, report *WeeklyReport) error

	// Delete permanently removes a report.
	Delete(ctx context.Context, id string) error
}
