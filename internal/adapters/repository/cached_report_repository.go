package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/healthup/insight-engine/internal/core/domain"
)

var _ domain.ReportRepository = (*CachedReportRepository)(nil)

// CachedReportRepository caches each user's full report series: the
// analytics endpoints always read the whole list, so one key per user
// is enough. Any write invalidates that user's key.
type CachedReportRepository struct {
	next  domain.ReportRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedReportRepository(next domain.ReportRepository, cache *redis.Client) *CachedReportRepository {
	return &CachedReportRepository{
		next:  next,
		cache: cache,
		ttl:   15 * time.Minute,
	}
}

func (r *CachedReportRepository) cacheKey(userUUID string) string {
	return fmt.Sprintf("reports:%s", userUUID)
}

func (r *CachedReportRepository) invalidate(ctx context.Context, userUUID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userUUID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userUUID, err)
	}
}

func (r *CachedReportRepository) ListByUserUUID(ctx context.Context, userUUID string) ([]*domain.WeeklyReport, error) {
	key := r.cacheKey(userUUID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var reports []*domain.WeeklyReport
		if err := json.Unmarshal([]byte(val), &reports); err == nil {
			return reports, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userUUID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	reports, err := r.next.ListByUserUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(reports); err == nil {
		if setErr := r.cache.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return reports, nil
}

func (r *CachedReportRepository) GetByID(ctx context.Context, id string) (*domain.WeeklyReport, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedReportRepository) GetByUserAndWeek(ctx context.Context, userUUID string, weekStart time.Time) (*domain.WeeklyReport, error) {
	return r.next.GetByUserAndWeek(ctx, userUUID, weekStart)
}

func (r *CachedReportRepository) Create(ctx context.Context, report *domain.WeeklyReport) error {
	if err := r.next.Create(ctx, report); err != nil {
		return err
	}
	r.invalidate(ctx, report.UserUUID)
	return nil
}

func (r *CachedReportRepository) Update(ctx context.Context, report *domain.WeeklyReport) error {
	if err := r.next.Update(ctx, report); err != nil {
		return err
	}
	r.invalidate(ctx, report.UserUUID)
	return nil
}

func (r *CachedReportRepository) Delete(ctx context.Context, id string) error {
	report, err := r.next.GetByID(ctx, id)
	if err == nil && report != nil {
		defer r.invalidate(ctx, report.UserUUID)
	}

	return r.next.Delete(ctx, id)
}
