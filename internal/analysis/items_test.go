package analysis

import (
	"testing"

	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEligibilityRulesCoverEveryEffectCode(t *testing.T) {
	for _, code := range models.MagicEffectCodes {
		_, ok := eligibilityRules[code]
		assert.True(t, ok, "no eligibility rule for %s", code)
	}
	assert.Len(t, eligibilityRules, len(models.MagicEffectCodes))
}

func itemTeam() []Member {
	leader := monster(3, "Crown", ground, nil)
	leader.LeaderPotential = true
	return []Member{
		member(0, monster(1, "Ember", fire, nil), fire),
		member(1, monster(2, "Bloom", water, uintPtr(grass)), water),
		member(2, leader, electric),
		member(3, monster(4, "Puddle", electric, nil), grass),
	}
}

func TestEvaluateMagicItem(t *testing.T) {
	chart := testChart()

	tests := []struct {
		name     string
		item     *models.MagicItem
		expected []uint
	}{
		{"enhance accepts everyone", &models.MagicItem{EffectCode: models.EffectEnhanceSpell}, []uint{0, 1, 2, 3}},
		{"grass by name matches sub and legacy type", &models.MagicItem{EffectCode: models.EffectSunHealing}, []uint{1, 3}},
		{"fire by name", &models.MagicItem{EffectCode: models.EffectFlareBurst}, []uint{0}},
		{"explicit target type wins", &models.MagicItem{EffectCode: models.EffectFlowSpell, AppliesToTypeID: uintPtr(electric)}, []uint{2, 3}},
		{"leader with matching legacy type", &models.MagicItem{EffectCode: models.EffectEvolutionPower, AppliesToTypeID: uintPtr(electric)}, []uint{2}},
		{"leader with other legacy type", &models.MagicItem{EffectCode: models.EffectEvolutionPower, AppliesToTypeID: uintPtr(ground)}, []uint{}},
		{"leader without designated type", &models.MagicItem{EffectCode: models.EffectEvolutionPower}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, warnings := EvaluateMagicItem(tt.item, chart, itemTeam())
			assert.Empty(t, warnings)
			assert.Equal(t, tt.expected, eval.ValidTargets)
			assert.Same(t, tt.item, eval.ChosenItem)
			assert.Nil(t, eval.BestTargetMonsterID)
			assert.Nil(t, eval.Reasoning)
		})
	}
}

func TestEvaluateMagicItem_UnknownEffectCode(t *testing.T) {
	item := &models.MagicItem{ID: 5, Name: "Mystery Orb", EffectCode: "time_warp"}

	eval, warnings := EvaluateMagicItem(item, testChart(), itemTeam())

	assert.Empty(t, eval.ValidTargets)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnUnknownEffectCode, warnings[0].Code)
	assert.Contains(t, warnings[0].Message, "time_warp")
}

func TestEvaluateMagicItem_NoItem(t *testing.T) {
	eval, warnings := EvaluateMagicItem(nil, testChart(), itemTeam())
	assert.Nil(t, eval.ChosenItem)
	assert.Empty(t, eval.ValidTargets)
	assert.Empty(t, warnings)
}

func TestEvaluateMagicItem_TypeMissingFromChart(t *testing.T) {
	chart := NewTypeChart(testTypes()[1:]) // no Fire
	eval, _ := EvaluateMagicItem(&models.MagicItem{EffectCode: models.EffectFlareBurst}, chart, itemTeam())
	assert.Empty(t, eval.ValidTargets)
}
