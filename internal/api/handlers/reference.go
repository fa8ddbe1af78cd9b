package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/internal/services"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ReferenceHandler serves the read-only game data.
type ReferenceHandler struct {
	db     *database.DB
	cache  *services.CacheService
	logger *logrus.Logger
}

func NewReferenceHandler(db *database.DB, cache *services.CacheService, logger *logrus.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// ListTypes returns every type with its four relation sets
// GET /api/v1/types
func (h *ReferenceHandler) ListTypes(c *gin.Context) {
	var types []models.Type
	h.cachedList(c, "types", &types, func() (interface{}, error) {
		return models.GetTypesWithRelations(h.db)
	}, "Failed to fetch types")
}

// GetType returns one type
// GET /api/v1/types/:id
func (h *ReferenceHandler) GetType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	t, err := models.GetTypeByID(h.db, id)
	if err != nil {
		h.sendLookupError(c, err, "type", id)
		return
	}
	utils.SendSuccess(c, t)
}

// GET /api/v1/traits
func (h *ReferenceHandler) ListTraits(c *gin.Context) {
	var traits []models.Trait
	h.cachedList(c, "traits", &traits, func() (interface{}, error) {
		return models.GetTraits(h.db)
	}, "Failed to fetch traits")
}

// GET /api/v1/personalities
func (h *ReferenceHandler) ListPersonalities(c *gin.Context) {
	var personalities []models.Personality
	h.cachedList(c, "personalities", &personalities, func() (interface{}, error) {
		return models.GetPersonalities(h.db)
	}, "Failed to fetch personalities")
}

// GET /api/v1/magic-items
func (h *ReferenceHandler) ListMagicItems(c *gin.Context) {
	var items []models.MagicItem
	h.cachedList(c, "magic_items", &items, func() (interface{}, error) {
		return models.GetMagicItems(h.db)
	}, "Failed to fetch magic items")
}

// GET /api/v1/game-terms
func (h *ReferenceHandler) ListGameTerms(c *gin.Context) {
	var terms []models.GameTerm
	h.cachedList(c, "game_terms", &terms, func() (interface{}, error) {
		return models.GetGameTerms(h.db)
	}, "Failed to fetch game terms")
}

// ListMoves returns moves filtered by ids and name
// GET /api/v1/moves?ids=1,2,3&name=strike&limit=50&offset=0
func (h *ReferenceHandler) ListMoves(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}

	filter := models.MoveFilter{
		Name:   strings.TrimSpace(c.Query("name")),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
			if err != nil || id == 0 {
				utils.SendValidationError(c, "Invalid ids", "ids must be a comma-separated list of positive integers")
				return
			}
			filter.IDs = append(filter.IDs, uint(id))
		}
	}

	moves, total, err := models.GetMoves(h.db, filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch moves")
		utils.SendInternalError(c, "Failed to fetch moves")
		return
	}
	utils.SendSuccessWithMeta(c, moves, utils.NewMeta(limit, offset, total))
}

// GET /api/v1/moves/:id
func (h *ReferenceHandler) GetMove(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var move models.Move
	if err := h.db.Preload("MoveType").First(&move, id).Error; err != nil {
		h.sendLookupError(c, err, "move", id)
		return
	}
	utils.SendSuccess(c, move)
}

// ListMonsters returns monsters with their types and trait
// GET /api/v1/monsters?name=cin&limit=50&offset=0
func (h *ReferenceHandler) ListMonsters(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}

	monsters, total, err := models.GetMonsters(h.db, strings.TrimSpace(c.Query("name")), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch monsters")
		utils.SendInternalError(c, "Failed to fetch monsters")
		return
	}
	utils.SendSuccessWithMeta(c, monsters, utils.NewMeta(limit, offset, total))
}

// GET /api/v1/monsters/:id
func (h *ReferenceHandler) GetMonster(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	monster, err := models.GetMonsterByID(h.db, id)
	if err != nil {
		h.sendLookupError(c, err, "monster", id)
		return
	}
	utils.SendSuccess(c, monster)
}

// cachedList serves a full reference list from redis, loading and caching it
// on a miss. Cache failures fall through to the database.
func (h *ReferenceHandler) cachedList(c *gin.Context, kind string, dest interface{}, load func() (interface{}, error), failure string) {
	ctx := c.Request.Context()
	key := services.ReferenceListCacheKey(kind)

	if err := h.cache.Get(ctx, key, dest); err == nil {
		utils.SendSuccess(c, dest)
		return
	} else if !errors.Is(err, services.ErrCacheMiss) {
		h.logger.WithError(err).WithField("key", key).Warn("Reference cache read failed")
	}

	data, err := load()
	if err != nil {
		h.logger.WithError(err).Error(failure)
		utils.SendInternalError(c, failure)
		return
	}

	if err := h.cache.Set(ctx, key, data, services.ReferenceListTTL); err != nil {
		h.logger.WithError(err).WithField("key", key).Warn("Reference cache write failed")
	}
	utils.SendSuccess(c, data)
}

func (h *ReferenceHandler) sendLookupError(c *gin.Context, err error, entity string, id uint) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.SendNotFound(c, utils.NewNotFoundError(entity, id).Error())
		return
	}
	h.logger.WithError(err).WithField("entity", entity).Error("Lookup failed")
	utils.SendInternalError(c, "Failed to fetch "+entity)
}

// parseID reads a positive integer path parameter, replying 400 on failure.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		utils.SendValidationError(c, "Invalid "+param, param+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// parsePage reads limit and offset query parameters.
func parsePage(c *gin.Context) (int, int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 || limit > maxPageSize {
		utils.SendValidationError(c, "Invalid limit", "limit must be between 1 and "+strconv.Itoa(maxPageSize))
		return 0, 0, false
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		utils.SendValidationError(c, "Invalid offset", "offset must be a non-negative integer")
		return 0, 0, false
	}
	return limit, offset, true
}
