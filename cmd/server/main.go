package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/monster-team-builder/internal/api"
	"github.com/jstittsworth/monster-team-builder/internal/services"
	"github.com/jstittsworth/monster-team-builder/pkg/config"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/jstittsworth/monster-team-builder/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Open(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	var cacheService *services.CacheService
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cacheService = services.NewCacheService(redisClient)
	} else {
		log.Warn("REDIS_URL not set, running without cache")
	}

	// Text generator for trait synergy advice
	var claude *services.ClaudeClient
	var generator services.TextGenerator
	if cfg.AnthropicAPIKey != "" {
		claude = services.NewClaudeClient(cfg, log)
		generator = claude
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, trait synergy advice will use the fallback message")
	}

	var synergyCache services.SynergyCache
	if cacheService != nil {
		synergyCache = cacheService
	}
	advisor := services.NewTraitSynergyAdvisor(generator, synergyCache, cfg.AICacheTTL(), cfg.AITimeout, log)

	// Initialize services
	store := services.NewGormReferenceStore(db)
	teams := services.NewTeamService(db, store, log)
	history := services.NewAnalysisHistoryService(db, log, cfg.AnalysisHistoryRetention, cfg.AnalysisCleanupSchedule)
	if cfg.EnableBackgroundJobs {
		if err := history.Start(); err != nil {
			log.Errorf("Failed to start analysis history cleanup: %v", err)
		}
		defer history.Stop()
	}
	analyzer := services.NewTeamAnalyzer(store, advisor, teams, history, services.AnalyzerConfigFrom(cfg), log)

	var analyzeLimiter *services.ClientRateLimiter
	if cfg.AnalyzeRateLimit > 0 {
		analyzeLimiter = services.NewClientRateLimiter(cfg.AnalyzeRateLimit, time.Minute)
	}

	router := api.NewRouter(api.Dependencies{
		DB:       db,
		Cache:    cacheService,
		Claude:   claude,
		Teams:    teams,
		Analyzer: analyzer,
		History:  history,
		Logger:   log,

		AnalyzeLimiter: analyzeLimiter,
	}, cfg.CorsOrigins)

	// Log all registered routes
	log.Info("=== REGISTERED ROUTES ===")
	for _, route := range router.Routes() {
		log.Infof("%s %s", route.Method, route.Path)
	}
	log.Info("=========================")

	// Setup server. Analysis waits on up to six generator calls, so writes get
	// the generator timeout on top of the usual budget.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.AITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
