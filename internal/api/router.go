package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jstittsworth/monster-team-builder/internal/api/handlers"
	"github.com/jstittsworth/monster-team-builder/internal/api/middleware"
	"github.com/jstittsworth/monster-team-builder/internal/services"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/sirupsen/logrus"
)

// Dependencies are the shared services the routes are built on.
type Dependencies struct {
	DB       *database.DB
	Cache    *services.CacheService
	Claude   *services.ClaudeClient
	Teams    *services.TeamService
	Analyzer *services.TeamAnalyzer
	History  *services.AnalysisHistoryService
	Logger   *logrus.Logger

	// AnalyzeLimiter throttles the analyze endpoints per client. Nil disables it.
	AnalyzeLimiter *services.ClientRateLimiter
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	referenceHandler := handlers.NewReferenceHandler(deps.DB, deps.Cache, deps.Logger)
	teamHandler := handlers.NewTeamHandler(deps.Teams, deps.Logger)
	analysisHandler := handlers.NewAnalysisHandler(deps.Analyzer, deps.Teams, deps.History, deps.Logger)

	// Reference data
	group.GET("/types", referenceHandler.ListTypes)
	group.GET("/types/:id", referenceHandler.GetType)
	group.GET("/traits", referenceHandler.ListTraits)
	group.GET("/personalities", referenceHandler.ListPersonalities)
	group.GET("/moves", referenceHandler.ListMoves)
	group.GET("/moves/:id", referenceHandler.GetMove)
	group.GET("/monsters", referenceHandler.ListMonsters)
	group.GET("/monsters/:id", referenceHandler.GetMonster)
	group.GET("/magic-items", referenceHandler.ListMagicItems)
	group.GET("/game-terms", referenceHandler.ListGameTerms)

	// Teams
	group.POST("/teams", teamHandler.CreateTeam)
	group.GET("/teams", teamHandler.ListTeams)
	group.GET("/teams/:id", teamHandler.GetTeam)
	group.PUT("/teams/:id", teamHandler.UpdateTeam)
	group.DELETE("/teams/:id", teamHandler.DeleteTeam)

	// Analysis
	analyze := []gin.HandlerFunc{}
	if deps.AnalyzeLimiter != nil {
		analyze = append(analyze, middleware.RateLimit(deps.AnalyzeLimiter))
	}
	group.POST("/teams/analyze", append(analyze, analysisHandler.AnalyzeTeam)...)
	group.POST("/teams/analyze-by-id", append(analyze, analysisHandler.AnalyzeSavedTeam)...)
	group.GET("/teams/:id/analyses", analysisHandler.ListAnalyses)
}

// SetupHealthRoutes registers liveness and readiness probes at the root.
func SetupHealthRoutes(router gin.IRoutes, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Cache, deps.Claude, deps.History)

	router.GET("/health", healthHandler.GetHealth)
	router.HEAD("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.HEAD("/ready", healthHandler.GetReady)
}

// NewRouter builds the engine with middleware and all routes.
func NewRouter(deps Dependencies, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.CORS(corsOrigins))

	SetupHealthRoutes(router, deps)
	SetupRoutes(router.Group("/api/v1"), deps)
	return router
}
