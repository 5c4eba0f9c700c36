package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/healthup/insight-engine/internal/adapters/ai"
	"github.com/healthup/insight-engine/internal/adapters/cache"
	adapterHTTP "github.com/healthup/insight-engine/internal/adapters/handler/http"
	"github.com/healthup/insight-engine/internal/adapters/repository"
	"github.com/healthup/insight-engine/internal/core/domain"
	"github.com/healthup/insight-engine/internal/core/services"
	"github.com/healthup/insight-engine/internal/core/workers"
)

func main() {
	startTime := time.Now()

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	serverPort := os.Getenv("PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is required")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "insight-engine"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisClient := connectRedis()

	var reportRepo domain.ReportRepository = repository.NewPostgresReportRepository(db)
	if redisClient != nil {
		reportRepo = repository.NewCachedReportRepository(reportRepo, redisClient)
	}

	var narrative services.NarrativeClient
	if baseURL := os.Getenv("NARRATIVE_API_URL"); baseURL != "" {
		narrative = ai.NewClient(baseURL, os.Getenv("NARRATIVE_API_KEY"))
		log.Println("Narrative client enabled.")
	} else {
		log.Println("NARRATIVE_API_URL not set, reports will have no narrative analysis.")
	}

	diversityService := services.NewDiversityService()
	trendService := services.NewTrendService()
	preferenceService := services.NewPreferenceService()
	forecastService := services.NewForecastService()
	achievementService := services.NewAchievementService()
	goalService := services.NewGoalService(diversityService)
	tokenService := services.NewTokenService(jwtSecret, jwtIssuer, 24*time.Hour)

	reportService := services.NewReportService(
		reportRepo,
		narrative,
		diversityService,
		trendService,
		preferenceService,
		forecastService,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportWorker := workers.NewReportWorker(reportService)
	reportWorker.Start(ctx)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		ReportHandler:      adapterHTTP.NewReportHandler(reportService, reportWorker),
		AnalyticsHandler:   adapterHTTP.NewAnalyticsHandler(reportService),
		AchievementHandler: adapterHTTP.NewAchievementHandler(reportService, achievementService),
		GoalHandler:        adapterHTTP.NewGoalHandler(reportService, goalService),
		TokenService:       tokenService,
		DB:                 db,
		Redis:              redisClient,
		StartTime:          startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Insight Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}

func connectRedis() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		log.Println("REDIS_HOST not set, running without cache and rate limiting.")
		return nil
	}

	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	dbIndex := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.Printf("Invalid REDIS_DB %q, using 0.", raw)
		} else {
			dbIndex = parsed
		}
	}

	client, err := cache.NewRedisClient(host, port, os.Getenv("REDIS_PASSWORD"), dbIndex)
	if err != nil {
		log.Printf("Redis unavailable, continuing without cache: %v", err)
		return nil
	}

	log.Println("Redis connected successfully.")
	return client
}
