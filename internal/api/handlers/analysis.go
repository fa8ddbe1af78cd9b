package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/internal/services"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
	"github.com/sirupsen/logrus"
)

const defaultHistoryLimit = 20

type AnalysisHandler struct {
	analyzer *services.TeamAnalyzer
	teams    *services.TeamService
	history  *services.AnalysisHistoryService
	logger   *logrus.Logger
}

func NewAnalysisHandler(analyzer *services.TeamAnalyzer, teams *services.TeamService, history *services.AnalysisHistoryService, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		teams:    teams,
		history:  history,
		logger:   logger,
	}
}

type AnalyzeTeamRequest struct {
	Team *models.TeamInput `json:"team"`
}

type AnalyzeSavedTeamRequest struct {
	TeamID uint `json:"team_id"`
}

// AnalyzeTeam analyzes an unsaved team
// POST /api/v1/teams/analyze
func (h *AnalysisHandler) AnalyzeTeam(c *gin.Context) {
	var req AnalyzeTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if req.Team == nil {
		utils.SendValidationError(c, "Invalid request body", "team is required")
		return
	}

	report, err := h.analyzer.AnalyzeTeam(c.Request.Context(), *req.Team)
	if err != nil {
		h.logFailure(c, err, 0)
		utils.SendServiceError(c, err, "Failed to analyze team")
		return
	}
	utils.SendSuccess(c, report)
}

// AnalyzeSavedTeam analyzes a stored team and records the report
// POST /api/v1/teams/analyze-by-id
func (h *AnalysisHandler) AnalyzeSavedTeam(c *gin.Context) {
	var req AnalyzeSavedTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if req.TeamID == 0 {
		utils.SendValidationError(c, "Invalid request body", "team_id is required")
		return
	}

	report, err := h.analyzer.AnalyzeSavedTeam(c.Request.Context(), req.TeamID)
	if err != nil {
		h.logFailure(c, err, req.TeamID)
		utils.SendServiceError(c, err, "Failed to analyze team")
		return
	}
	utils.SendSuccess(c, report)
}

// ListAnalyses returns stored reports for a team, newest first
// GET /api/v1/teams/:id/analyses?limit=20
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit < 1 || limit > maxPageSize {
		utils.SendValidationError(c, "Invalid limit", "limit must be between 1 and "+strconv.Itoa(maxPageSize))
		return
	}

	if _, err := h.teams.Get(c.Request.Context(), id); err != nil {
		utils.SendServiceError(c, err, "Failed to fetch team")
		return
	}

	analyses, err := h.history.List(c.Request.Context(), id, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch analysis history")
		utils.SendInternalError(c, "Failed to fetch analysis history")
		return
	}
	utils.SendSuccess(c, analyses)
}

func (h *AnalysisHandler) logFailure(c *gin.Context, err error, teamID uint) {
	h.logger.WithFields(logrus.Fields{
		"request_id": utils.RequestIDFromContext(c.Request.Context()),
		"team_id":    teamID,
		"error":      err.Error(),
	}).Warn("Team analysis failed")
}
