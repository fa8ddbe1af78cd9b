package analysis

import (
	"github.com/jstittsworth/monster-team-builder/internal/models"
)

const (
	fire uint = iota + 1
	water
	grass
	ground
	electric
)

func uintPtr(v uint) *uint { return &v }

// testTypes is a five-type slice of the game's chart.
func testTypes() []models.Type {
	ref := func(ids ...uint) []*models.Type {
		out := make([]*models.Type, len(ids))
		for i, id := range ids {
			out[i] = &models.Type{ID: id}
		}
		return out
	}
	return []models.Type{
		{ID: fire, Name: "Fire", EffectiveAgainst: ref(grass), WeakAgainst: ref(water, ground), VulnerableTo: ref(water, ground), ResistantTo: ref(grass)},
		{ID: water, Name: "Water", EffectiveAgainst: ref(fire, ground), WeakAgainst: ref(grass), VulnerableTo: ref(grass, electric), ResistantTo: ref(fire)},
		{ID: grass, Name: "Grass", EffectiveAgainst: ref(water, ground), WeakAgainst: ref(fire), VulnerableTo: ref(fire), ResistantTo: ref(water, ground, electric)},
		{ID: ground, Name: "Ground", EffectiveAgainst: ref(fire, electric), WeakAgainst: ref(grass), VulnerableTo: ref(water, grass), ResistantTo: ref(electric)},
		{ID: electric, Name: "Electric", EffectiveAgainst: ref(water), WeakAgainst: ref(ground), VulnerableTo: ref(ground), ResistantTo: ref(electric)},
	}
}

func testChart() *TypeChart {
	return NewTypeChart(testTypes())
}

func typedMove(id, typeID uint) *models.Move {
	return &models.Move{ID: id, Name: "Move", MoveTypeID: uintPtr(typeID), Category: models.CategoryPhysicalAttack, EnergyCost: 2}
}

func monster(id uint, name string, main uint, sub *uint) *models.Monster {
	return &models.Monster{
		ID: id, Name: name, MainTypeID: main, SubTypeID: sub, DefaultLegacyTypeID: main,
		BaseHP: 60, BasePhyAtk: 60, BaseMagAtk: 60, BasePhyDef: 60, BaseMagDef: 60, BaseSpd: 60,
		PreferredAttackStyle: models.AttackStyleBoth,
	}
}

func member(id uint, m *models.Monster, legacy uint, moves ...*models.Move) Member {
	mem := Member{ID: id, Monster: m, LegacyType: legacy, Talent: models.Talent{HPBoost: 10}}
	copy(mem.Moves[:], moves)
	return mem
}
