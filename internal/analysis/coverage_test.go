package analysis

import (
	"testing"

	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTypeChart(t *testing.T) {
	chart := testChart()

	assert.Equal(t, 5, chart.Len())
	assert.Equal(t, []uint{fire, water, grass, ground, electric}, chart.Universe())
	assert.Equal(t, "Water", chart.Name(water))
	assert.Equal(t, "type 42", chart.Name(42))

	id, ok := chart.IDByName("Grass")
	assert.True(t, ok)
	assert.Equal(t, grass, id)
	assert.Empty(t, chart.Warnings())
}

func TestNewTypeChart_DanglingReference(t *testing.T) {
	types := testTypes()
	types[0].VulnerableTo = append(types[0].VulnerableTo, &models.Type{ID: 99})

	chart := NewTypeChart(types)

	require.Len(t, chart.Warnings(), 1)
	assert.Equal(t, WarnDanglingTypeRef, chart.Warnings()[0].Code)
	assert.NotContains(t, chart.Relations(fire).VulnerableTo, uint(99))
}

func TestEvaluateCoverage_FullUniverseLeavesNoGap(t *testing.T) {
	chart := testChart()
	members := []Member{
		member(0, monster(1, "A", fire, nil), fire, typedMove(1, fire), typedMove(2, water)),
		member(1, monster(2, "B", electric, nil), electric, typedMove(3, electric), typedMove(4, ground)),
	}

	report := EvaluateCoverage(chart, members)

	assert.Equal(t, []uint{fire, water, grass, ground, electric}, report.EffectiveAgainstTypes)
	assert.Empty(t, report.WeakAgainstTypes)
}

func TestEvaluateCoverage_OffensiveGap(t *testing.T) {
	chart := testChart()
	members := []Member{
		member(0, monster(1, "A", fire, nil), fire, typedMove(1, fire), nil, &models.Move{ID: 9}),
	}

	report := EvaluateCoverage(chart, members)

	assert.Equal(t, []uint{grass}, report.EffectiveAgainstTypes)
	assert.Equal(t, []uint{fire, water, ground, electric}, report.WeakAgainstTypes)
}

func TestEvaluateCoverage_ResistanceCancelsWeakness(t *testing.T) {
	chart := testChart()
	// Water/Grass: Electric hits Water but Grass resists it; Fire hits Grass
	// but Water resists it. Only Grass gets through.
	members := []Member{member(0, monster(1, "Reed", water, uintPtr(grass)), water)}

	report := EvaluateCoverage(chart, members)

	assert.Equal(t, []uint{grass}, report.TeamWeakTo)
	assert.NotContains(t, report.TeamWeakTo, electric)
	assert.NotContains(t, report.TeamWeakTo, fire)
}

func TestEvaluateCoverage_SharedAndSingleWeaknesses(t *testing.T) {
	chart := testChart()

	tests := []struct {
		name     string
		monster  *models.Monster
		expected []uint
	}{
		{"both types weak", monster(1, "Magma", fire, uintPtr(electric)), []uint{water, ground}},
		{"main type only", monster(2, "Spark", electric, nil), []uint{ground}},
		{"unknown sub type is ignored", monster(3, "Odd", electric, uintPtr(77)), []uint{ground}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := EvaluateCoverage(chart, []Member{member(0, tt.monster, tt.monster.MainTypeID)})
			assert.Equal(t, tt.expected, report.TeamWeakTo)
		})
	}
}

func TestEvaluateCoverage_TeamWeakToIsUnionOfMembers(t *testing.T) {
	chart := testChart()
	members := []Member{
		member(0, monster(1, "Spark", electric, nil), electric),
		member(1, monster(2, "Reed", water, uintPtr(grass)), water),
	}

	report := EvaluateCoverage(chart, members)

	assert.Equal(t, []uint{grass, ground}, report.TeamWeakTo)
}
