package analysis

import (
	"fmt"

	"github.com/jstittsworth/monster-team-builder/internal/models"
)

// eligibilityRule decides whether a member can hold the item.
type eligibilityRule func(item *models.MagicItem, chart *TypeChart, m Member) bool

// typeGatedRule accepts members with the gated type as main, sub or legacy
// type. The gated type is the item's target type, or the named fallback.
func typeGatedRule(fallbackTypeName string) eligibilityRule {
	return func(item *models.MagicItem, chart *TypeChart, m Member) bool {
		var gated uint
		if item.AppliesToTypeID != nil {
			gated = *item.AppliesToTypeID
		} else if id, ok := chart.IDByName(fallbackTypeName); ok {
			gated = id
		} else {
			return false
		}
		for _, id := range m.TypeIDs() {
			if id == gated {
				return true
			}
		}
		return false
	}
}

var eligibilityRules = map[models.MagicEffectCode]eligibilityRule{
	models.EffectEnhanceSpell: func(*models.MagicItem, *TypeChart, Member) bool {
		return true
	},
	models.EffectSunHealing: typeGatedRule("Grass"),
	models.EffectFlareBurst: typeGatedRule("Fire"),
	models.EffectFlowSpell:  typeGatedRule("Water"),
	models.EffectEvolutionPower: func(item *models.MagicItem, _ *TypeChart, m Member) bool {
		if item.AppliesToTypeID == nil || m.Monster == nil {
			return false
		}
		return m.Monster.LeaderPotential && m.LegacyType == *item.AppliesToTypeID
	},
}

// EvaluateMagicItem lists team members eligible for the chosen item. An
// unknown effect code yields no targets and a warning.
func EvaluateMagicItem(item *models.MagicItem, chart *TypeChart, members []Member) (MagicItemEvaluation, []DataIntegrityWarning) {
	eval := MagicItemEvaluation{
		ChosenItem:   item,
		ValidTargets: []uint{},
	}
	if item == nil {
		return eval, nil
	}

	rule, ok := eligibilityRules[item.EffectCode]
	if !ok {
		return eval, []DataIntegrityWarning{{
			Code:    WarnUnknownEffectCode,
			Message: fmt.Sprintf("magic item %d (%s) has unknown effect code %q", item.ID, item.Name, item.EffectCode),
		}}
	}

	for _, m := range members {
		if m.Monster != nil && rule(item, chart, m) {
			eval.ValidTargets = append(eval.ValidTargets, m.ID)
		}
	}
	return eval, nil
}
