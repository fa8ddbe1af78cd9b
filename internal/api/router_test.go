package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/internal/seed"
	"github.com/jstittsworth/monster-team-builder/internal/services"
	"github.com/jstittsworth/monster-team-builder/pkg/config"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *utils.AppError `json:"error"`
	Meta    *utils.Meta     `json:"meta"`
}

type APISuite struct {
	suite.Suite
	router      *gin.Engine
	deps        Dependencies
	mr          *miniredis.Miniredis
	claude      *httptest.Server
	claudeCalls int32
	claudeDown  atomic.Bool
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := database.NewSQLiteConnection(":memory:", false)
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })
	s.Require().NoError(db.AutoMigrate(models.AllModels()...))
	s.Require().NoError(seed.Load(db))

	s.mr, err = miniredis.Run()
	s.Require().NoError(err)
	s.T().Cleanup(s.mr.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { redisClient.Close() })
	cache := services.NewCacheService(redisClient)

	s.claudeCalls = 0
	s.claudeDown.Store(false)
	s.claude = httptest.NewServer(http.HandlerFunc(s.fakeClaude))
	s.T().Cleanup(s.claude.Close)

	cfg := &config.Config{
		AnthropicAPIKey:         "test-key",
		AnthropicBaseURL:        s.claude.URL,
		AIModel:                 "claude-3-haiku-20240307",
		AIMaxTokens:             256,
		AIRateLimit:             6000,
		AITimeout:               5 * time.Second,
		CircuitBreakerThreshold: 100,
		SynergyConcurrency:      6,
	}
	claude := services.NewClaudeClient(cfg, logger)
	advisor := services.NewTraitSynergyAdvisor(claude, cache, time.Hour, cfg.AITimeout, logger)
	store := services.NewGormReferenceStore(db)
	teams := services.NewTeamService(db, store, logger)
	history := services.NewAnalysisHistoryService(db, logger, time.Hour, "@daily")

	s.deps = Dependencies{
		DB:       db,
		Cache:    cache,
		Claude:   claude,
		Teams:    teams,
		Analyzer: services.NewTeamAnalyzer(store, advisor, teams, history, services.AnalyzerConfigFrom(cfg), logger),
		History:  history,
		Logger:   logger,
	}
	s.router = NewRouter(s.deps, []string{"http://localhost:3000"})
}

// fakeClaude answers every prompt with the first move of the prompt's list.
func (s *APISuite) fakeClaude(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.claudeCalls, 1)
	if s.claudeDown.Load() {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"unavailable"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services.ClaudeResponse{
		Type: "message",
		Role: "assistant",
		Content: []services.ClaudeContentBlock{{
			Type: "text",
			Text: `{"synergy_moves": ["Ember Strike"], "recommendation": ["Lead with Ember Strike."]}`,
		}},
	})
}

func (s *APISuite) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *APISuite) TestHealthAndReady() {
	w, _ := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	s.Equal(http.StatusOK, w.Code)

	var ready struct {
		Status string                 `json:"status"`
		Checks map[string]interface{} `json:"checks"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &ready))
	s.Equal("ready", ready.Status)
	s.Equal("ok", ready.Checks["database"])
	s.Equal("ok", ready.Checks["redis"])
	s.Equal("ok", ready.Checks["text_generator"])

	s.mr.Close()
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *APISuite) TestReferenceLists() {
	w, env := s.do(http.MethodGet, "/api/v1/types", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var types []models.Type
	s.Require().NoError(json.Unmarshal(env.Data, &types))
	s.Len(types, 5)
	s.True(s.mr.Exists(services.ReferenceListCacheKey("types")))

	w, env = s.do(http.MethodGet, "/api/v1/types", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(env.Data, &types))
	s.Len(types, 5)

	for _, path := range []string{"/api/v1/traits", "/api/v1/personalities", "/api/v1/magic-items", "/api/v1/game-terms"} {
		w, env = s.do(http.MethodGet, path, nil)
		s.Equal(http.StatusOK, w.Code, path)
		s.True(env.Success, path)
	}
}

func (s *APISuite) TestMonstersAndMoves() {
	w, env := s.do(http.MethodGet, "/api/v1/monsters?name=cin", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var monsters []models.Monster
	s.Require().NoError(json.Unmarshal(env.Data, &monsters))
	s.Require().Len(monsters, 1)
	s.Equal("Cinder", monsters[0].Name)
	s.Equal(int64(1), env.Meta.Total)

	s.Empty(monsters[0].MovePool, "listings leave out the move pool")

	w, env = s.do(http.MethodGet, "/api/v1/monsters/1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var detail struct {
		EvolvesFromID *uint `json:"evolves_from_id"`
		Species       struct {
			Name string `json:"name"`
		} `json:"species"`
		MovePool []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"move_pool"`
		LegacyMoves []models.LegacyMove `json:"legacy_moves"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &detail))
	s.Require().NotNil(detail.EvolvesFromID)
	s.Equal(seed.MonsterKindling, *detail.EvolvesFromID)
	s.Equal("Cinderling", detail.Species.Name)
	s.Require().Len(detail.MovePool, 4)
	s.Equal("Ember Strike", detail.MovePool[0].Name)
	s.Equal([]models.LegacyMove{
		{MonsterID: 1, TypeID: seed.TypeWater, MoveID: 2},
		{MonsterID: 1, TypeID: seed.TypeGrass, MoveID: 3},
	}, detail.LegacyMoves)

	w, env = s.do(http.MethodGet, "/api/v1/monsters/6", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var marsh models.Monster
	s.Require().NoError(json.Unmarshal(env.Data, &marsh))
	s.Equal("Ground", marsh.SubType.Name)

	w, env = s.do(http.MethodGet, "/api/v1/monsters/99", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(utils.ErrCodeNotFound, env.Error.Code)

	w, env = s.do(http.MethodGet, "/api/v1/moves?ids=1,5", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var moves []models.Move
	s.Require().NoError(json.Unmarshal(env.Data, &moves))
	s.Len(moves, 2)

	w, env = s.do(http.MethodGet, "/api/v1/moves?ids=one", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(utils.ErrCodeValidation, env.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/moves?limit=0", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/moves/5", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestAnalyzeInlineTeam() {
	w, env := s.do(http.MethodPost, "/api/v1/teams/analyze", gin.H{"team": seed.SampleTeam()})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.NotEmpty(w.Header().Get("X-Request-ID"))

	var report struct {
		PerMonster []struct {
			EffectiveStats struct {
				HP int `json:"hp"`
			} `json:"effective_stats"`
			TraitSynergies []struct {
				MonsterID      uint     `json:"monster_id"`
				SynergyMoves   []uint   `json:"synergy_moves"`
				Recommendation []string `json:"recommendation"`
			} `json:"trait_synergies"`
		} `json:"per_monster"`
		TypeCoverage struct {
			WeakAgainstTypes []uint `json:"weak_against_types"`
		} `json:"type_coverage"`
		Recommendations []string `json:"recommendations"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &report))

	s.Require().Len(report.PerMonster, models.TeamSize)
	s.Equal(417, report.PerMonster[0].EffectiveStats.HP)
	s.Equal([]uint{1}, report.PerMonster[0].TraitSynergies[0].SynergyMoves)
	s.Equal([]string{"Lead with Ember Strike."}, report.PerMonster[0].TraitSynergies[0].Recommendation)
	s.Equal(uint(3), report.PerMonster[3].TraitSynergies[0].MonsterID)
	s.Equal([]uint{seed.TypeWater, seed.TypeElectric}, report.TypeCoverage.WeakAgainstTypes)
	s.NotEmpty(report.Recommendations)
	s.Equal(int32(models.TeamSize), atomic.LoadInt32(&s.claudeCalls))

	// identical prompts are served from the synergy cache
	w, _ = s.do(http.MethodPost, "/api/v1/teams/analyze", gin.H{"team": seed.SampleTeam()})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int32(models.TeamSize), atomic.LoadInt32(&s.claudeCalls))
}

func (s *APISuite) TestAnalyzeInlineTeam_GeneratorDown() {
	s.claudeDown.Store(true)

	w, env := s.do(http.MethodPost, "/api/v1/teams/analyze", gin.H{"team": seed.SampleTeam()})
	s.Require().Equal(http.StatusOK, w.Code)

	var report struct {
		PerMonster []struct {
			TraitSynergies []struct {
				SynergyMoves   []uint   `json:"synergy_moves"`
				Recommendation []string `json:"recommendation"`
			} `json:"trait_synergies"`
		} `json:"per_monster"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &report))
	for _, pm := range report.PerMonster {
		s.Empty(pm.TraitSynergies[0].SynergyMoves)
		s.Equal([]string{services.SynergyFallbackMessage}, pm.TraitSynergies[0].Recommendation)
	}
}

func (s *APISuite) TestAnalyzeInlineTeam_Errors() {
	short := seed.SampleTeam()
	short.UserMonsters = short.UserMonsters[:4]
	w, env := s.do(http.MethodPost, "/api/v1/teams/analyze", gin.H{"team": short})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(utils.ErrCodeValidation, env.Error.Code)

	unknown := seed.SampleTeam()
	unknown.UserMonsters[2].MonsterID = 99
	w, env = s.do(http.MethodPost, "/api/v1/teams/analyze", gin.H{"team": unknown})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("monster not found: 99", env.Error.Message)

	w, _ = s.do(http.MethodPost, "/api/v1/teams/analyze", gin.H{})
	s.Equal(http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/teams/analyze", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)

	s.Zero(atomic.LoadInt32(&s.claudeCalls))
}

func (s *APISuite) TestTeamLifecycle() {
	w, env := s.do(http.MethodPost, "/api/v1/teams", seed.SampleTeam())
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var team models.Team
	s.Require().NoError(json.Unmarshal(env.Data, &team))
	s.Require().NotZero(team.ID)
	s.Len(team.Monsters, models.TeamSize)
	teamPath := fmt.Sprintf("/api/v1/teams/%d", team.ID)

	w, env = s.do(http.MethodGet, "/api/v1/teams", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), env.Meta.Total)

	update := seed.SampleTeam()
	update.Name = "Renamed"
	w, env = s.do(http.MethodPut, teamPath, update)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(env.Data, &team))
	s.Equal("Renamed", team.Name)

	memberIDs := make([]uint, 0, models.TeamSize)
	for _, um := range team.Monsters {
		memberIDs = append(memberIDs, um.ID)
	}
	update = team.ToInput()
	update.UserMonsters[3].Move1ID = 3
	w, env = s.do(http.MethodPut, teamPath, update)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().NoError(json.Unmarshal(env.Data, &team))
	for i, um := range team.Monsters {
		s.Equal(memberIDs[i], um.ID, "member ids survive an update that sends them")
	}
	s.Equal(uint(3), team.Monsters[3].Move1ID)

	invalid := seed.SampleTeam()
	invalid.UserMonsters = invalid.UserMonsters[:5]
	w, _ = s.do(http.MethodPut, "/api/v1/teams/999", invalid)
	s.Equal(http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodPut, teamPath, invalid)
	s.Equal(http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, "/api/v1/teams/analyze-by-id", gin.H{"team_id": team.ID})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var report struct {
		Team struct {
			ID uint `json:"id"`
		} `json:"team"`
		PerMonster []struct {
			UserMonster struct {
				ID uint `json:"id"`
			} `json:"user_monster"`
		} `json:"per_monster"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &report))
	s.Equal(team.ID, report.Team.ID)
	s.Equal(team.Monsters[0].ID, report.PerMonster[0].UserMonster.ID)

	w, env = s.do(http.MethodGet, teamPath+"/analyses", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var analyses []models.TeamAnalysis
	s.Require().NoError(json.Unmarshal(env.Data, &analyses))
	s.Len(analyses, 1)

	w, _ = s.do(http.MethodDelete, teamPath, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, teamPath, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/teams/analyze-by-id", gin.H{"team_id": team.ID})
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, teamPath+"/analyses", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/teams", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *APISuite) TestAnalyzeRateLimit() {
	deps := s.deps
	deps.AnalyzeLimiter = services.NewClientRateLimiter(1, time.Minute)
	s.router = NewRouter(deps, nil)

	w, _ := s.do(http.MethodPost, "/api/v1/teams/analyze", gin.H{"team": seed.SampleTeam()})
	s.Equal(http.StatusOK, w.Code)

	w, env := s.do(http.MethodPost, "/api/v1/teams/analyze", gin.H{"team": seed.SampleTeam()})
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Equal(utils.ErrCodeRateLimit, env.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/types", nil)
	s.Equal(http.StatusOK, w.Code, "reference routes are not throttled")
}
