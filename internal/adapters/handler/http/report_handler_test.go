package http_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/healthup/insight-engine/internal/adapters/handler/http"
	"github.com/healthup/insight-engine/internal/adapters/handler/http/middleware"
	"github.com/healthup/insight-engine/internal/adapters/repository"
	"github.com/healthup/insight-engine/internal/core/domain"
	"github.com/healthup/insight-engine/internal/core/services"
	"github.com/healthup/insight-engine/internal/core/workers"
)

type testEnv struct {
	router *gin.Engine
	repo   *repository.InMemoryReportRepository
	token  string
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewInMemoryReportRepository()

	diversity := services.NewDiversityService()
	reportSvc := services.NewReportService(
		repo,
		nil,
		diversity,
		services.NewTrendService(),
		services.NewPreferenceService(),
		services.NewForecastService(),
	)
	worker := workers.NewReportWorker(reportSvc)

	tokenSvc := services.NewTokenService("test-secret", "test-issuer", 1*time.Hour)
	token, err := tokenSvc.GenerateToken("user-1")
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(tokenSvc))

	adapterHTTP.NewReportHandler(reportSvc, worker).RegisterRoutes(api)
	adapterHTTP.NewAnalyticsHandler(reportSvc).RegisterRoutes(api)
	adapterHTTP.NewAchievementHandler(reportSvc, services.NewAchievementService()).RegisterRoutes(api)
	adapterHTTP.NewGoalHandler(reportSvc, services.NewGoalService(diversity)).RegisterRoutes(api)

	return &testEnv{router: router, repo: repo, token: token}
}

// seedCompletedWeek stores a completed report for user-1 so the
// analytics endpoints have history to work with.
func seedCompletedWeek(t *testing.T, env *testEnv, weekStart time.Time, exercise, diet map[string]int) *domain.WeeklyReport {
	t.Helper()

	report, err := domain.NewWeeklyReport("user-1", weekStart)
	require.NoError(t, err)
	require.NoError(t, report.MarkGenerating())
	require.NoError(t, report.Complete(domain.WeeklyStats{
		TotalCertifications: countAll(exercise) + countAll(diet),
		ExerciseDays:        len(exercise),
		DietDays:            len(diet),
		ExerciseCategories:  exercise,
		DietCategories:      diet,
		ConsistencyScore:    0.8,
	}, "", nil))
	require.NoError(t, env.repo.Create(context.Background(), report))
	return report
}

func countAll(categories map[string]int) int {
	total := 0
	for _, count := range categories {
		total += count
	}
	return total
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.token)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestGenerateReport(t *testing.T) {
	t.Run("Success: 202 Accepted and queued", func(t *testing.T) {
		env := setupRouter(t)

		body := `{
			"week_start": "2025-03-03",
			"stats": {
				"exercise_categories": {"근력 운동": 3},
				"diet_categories": {"집밥": 2}
			}
		}`

		w := env.do("POST", "/api/v1/reports/generate", body)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"queued"`)
		assert.Contains(t, w.Body.String(), `"week_start":"2025-03-03"`)
	})

	t.Run("Fail: 401 Unauthorized (Missing Token)", func(t *testing.T) {
		env := setupRouter(t)

		req, _ := http.NewRequest("POST", "/api/v1/reports/generate", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: 400 Bad Request (Missing week_start)", func(t *testing.T) {
		env := setupRouter(t)

		w := env.do("POST", "/api/v1/reports/generate", `{"stats": {}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 Bad Request (Invalid date format)", func(t *testing.T) {
		env := setupRouter(t)

		w := env.do("POST", "/api/v1/reports/generate", `{"week_start": "03/03/2025"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
	})
}

func TestListReports(t *testing.T) {
	t.Run("Success: 200 OK with seeded reports", func(t *testing.T) {
		env := setupRouter(t)
		week := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
		seedCompletedWeek(t, env, week, map[string]int{"근력 운동": 3}, map[string]int{"집밥": 2})

		w := env.do("GET", "/api/v1/reports", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_uuid":"user-1"`)
		assert.Contains(t, w.Body.String(), "근력 운동")
	})
}

func TestCurrentReport(t *testing.T) {
	t.Run("Fail: 404 Not Found without completed reports", func(t *testing.T) {
		env := setupRouter(t)

		w := env.do("GET", "/api/v1/reports/current", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "no completed report yet")
	})

	t.Run("Success: 200 OK with newest week and history count", func(t *testing.T) {
		env := setupRouter(t)
		week := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
		seedCompletedWeek(t, env, week, map[string]int{"근력 운동": 3}, nil)
		seedCompletedWeek(t, env, week.AddDate(0, 0, 7), map[string]int{"유산소 운동": 2}, nil)

		w := env.do("GET", "/api/v1/reports/current", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"history_weeks":1`)
		assert.Contains(t, w.Body.String(), "유산소 운동")
	})
}
