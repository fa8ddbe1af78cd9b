package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jstittsworth/monster-team-builder/internal/analysis"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/internal/seed"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/stretchr/testify/require"
)

const (
	typeFire     = seed.TypeFire
	typeWater    = seed.TypeWater
	typeGrass    = seed.TypeGrass
	typeGround   = seed.TypeGround
	typeElectric = seed.TypeElectric
)

// newTestDB returns a migrated in-memory database.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func seedReference(t *testing.T, db *database.DB) {
	t.Helper()
	require.NoError(t, seed.Load(db))
}

func sampleTeam() models.TeamInput {
	return seed.SampleTeam()
}

// stubAdvisor returns a deterministic finding and records concurrency.
type stubAdvisor struct {
	mu       sync.Mutex
	calls    int
	inFlight int
	peak     int
	delay    time.Duration
}

func (s *stubAdvisor) Advise(ctx context.Context, req SynergyRequest) analysis.TraitSynergyFinding {
	s.mu.Lock()
	s.calls++
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
	s.mu.Unlock()

	time.Sleep(s.delay)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	finding := analysis.TraitSynergyFinding{
		MonsterID:      req.MemberID,
		Trait:          traitName(req.Monster),
		SynergyMoves:   []uint{},
		Recommendation: []string{},
	}
	if req.Monster != nil && req.Monster.Trait != nil && req.Moves[0] != nil {
		finding.SynergyMoves = []uint{req.Moves[0].ID}
		finding.Recommendation = []string{"Open with " + req.Moves[0].Name + "."}
	}
	return finding
}
