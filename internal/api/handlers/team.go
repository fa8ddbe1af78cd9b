package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/internal/services"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
	"github.com/sirupsen/logrus"
)

type TeamHandler struct {
	teams  *services.TeamService
	logger *logrus.Logger
}

func NewTeamHandler(teams *services.TeamService, logger *logrus.Logger) *TeamHandler {
	return &TeamHandler{
		teams:  teams,
		logger: logger,
	}
}

// CreateTeam stores a new team
// POST /api/v1/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var in models.TeamInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	team, err := h.teams.Create(c.Request.Context(), in)
	if err != nil {
		h.logFailure(c, err, "create")
		utils.SendServiceError(c, err, "Failed to create team")
		return
	}
	utils.SendSuccess(c, team)
}

// ListTeams returns saved teams, newest first
// GET /api/v1/teams?limit=50&offset=0
func (h *TeamHandler) ListTeams(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}

	teams, total, err := h.teams.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logFailure(c, err, "list")
		utils.SendInternalError(c, "Failed to fetch teams")
		return
	}
	utils.SendSuccessWithMeta(c, teams, utils.NewMeta(limit, offset, total))
}

// GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	team, err := h.teams.Get(c.Request.Context(), id)
	if err != nil {
		utils.SendServiceError(c, err, "Failed to fetch team")
		return
	}
	utils.SendSuccess(c, team)
}

// UpdateTeam replaces a team's name and item and upserts its members by id
// PUT /api/v1/teams/:id
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var in models.TeamInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	team, err := h.teams.Update(c.Request.Context(), id, in)
	if err != nil {
		h.logFailure(c, err, "update")
		utils.SendServiceError(c, err, "Failed to update team")
		return
	}
	utils.SendSuccess(c, team)
}

// DELETE /api/v1/teams/:id
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.teams.Delete(c.Request.Context(), id); err != nil {
		h.logFailure(c, err, "delete")
		utils.SendServiceError(c, err, "Failed to delete team")
		return
	}
	utils.SendSuccess(c, gin.H{"deleted": id})
}

func (h *TeamHandler) logFailure(c *gin.Context, err error, action string) {
	h.logger.WithFields(logrus.Fields{
		"request_id": utils.RequestIDFromContext(c.Request.Context()),
		"action":     action,
		"error":      err.Error(),
	}).Debug("Team request failed")
}
