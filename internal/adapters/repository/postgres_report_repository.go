package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/healthup/insight-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresReportRepository struct {
	db *sqlx.DB
}

func NewPostgresReportRepository(db *sqlx.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresReportRepository) scanRow(row scannable) (*domain.WeeklyReport, error) {
	var rep domain.WeeklyReport
	var statsJSON []byte
	var recsJSON []byte
	var generatedAt sql.NullTime

	err := row.Scan(
		&rep.ID, &rep.UserUUID, &rep.WeekStartDate, &rep.WeekEndDate,
		&generatedAt, &statsJSON, &rep.Analysis, &recsJSON,
		&rep.Status, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if generatedAt.Valid {
		rep.GeneratedAt = generatedAt.Time
	}

	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &rep.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
		}
	}
	if len(recsJSON) > 0 {
		if err := json.Unmarshal(recsJSON, &rep.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
		}
	}

	return &rep, nil
}

func (r *PostgresReportRepository) Create(ctx context.Context, rep *domain.WeeklyReport) error {
	statsJSON, err := json.Marshal(rep.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	recsJSON, err := json.Marshal(rep.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	query := `
        INSERT INTO weekly_reports (
            id, user_uuid, week_start_date, week_end_date,
            generated_at, stats, analysis, recommendations,
            status, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7, $8,
            $9, $10, $11
        )`

	_, err = r.db.ExecContext(ctx, query,
		rep.ID, rep.UserUUID, rep.WeekStartDate, rep.WeekEndDate,
		nullableTime(rep.GeneratedAt), statsJSON, rep.Analysis, recsJSON,
		rep.Status, rep.CreatedAt, rep.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrReportConflict
		}
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

func (r *PostgresReportRepository) GetByID(ctx context.Context, id string) (*domain.WeeklyReport, error) {
	query := `SELECT * FROM weekly_reports WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	rep, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return rep, nil
}

func (r *PostgresReportRepository) GetByUserAndWeek(ctx context.Context, userUUID string, weekStart time.Time) (*domain.WeeklyReport, error) {
	query := `SELECT * FROM weekly_reports WHERE user_uuid = $1 AND week_start_date = $2`

	row := r.db.QueryRowContext(ctx, query, userUUID, weekStart.UTC().Truncate(24*time.Hour))

	rep, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return rep, nil
}

func (r *PostgresReportRepository) ListByUserUUID(ctx context.Context, userUUID string) ([]*domain.WeeklyReport, error) {
	query := `
        SELECT * FROM weekly_reports
        WHERE user_uuid = $1
        ORDER BY week_start_date ASC`

	rows, err := r.db.QueryContext(ctx, query, userUUID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var reports []*domain.WeeklyReport

	for rows.Next() {
		rep, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		reports = append(reports, rep)
	}

	return reports, nil
}

func (r *PostgresReportRepository) Update(ctx context.Context, rep *domain.WeeklyReport) error {
	statsJSON, err := json.Marshal(rep.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	recsJSON, err := json.Marshal(rep.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	query := `
        UPDATE weekly_reports SET
            generated_at=$1, stats=$2, analysis=$3, recommendations=$4,
            status=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	row := r.db.QueryRowContext(ctx, query,
		nullableTime(rep.GeneratedAt), statsJSON, rep.Analysis, recsJSON,
		rep.Status, rep.ID,
	)

	var newUpdatedAt time.Time
	if err := row.Scan(&newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrReportNotFound
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	rep.UpdatedAt = newUpdatedAt
	return nil
}

func (r *PostgresReportRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM weekly_reports WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrReportNotFound
	}

	return nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func isUniqueViolation(err error) bool {
	// pgx wraps server errors; SQLSTATE 23505 is unique_violation.
	type sqlStater interface{ SQLState() string }
	var stater sqlStater
	if errors.As(err, &stater) {
		return stater.SQLState() == "23505"
	}
	return false
}
