// Package seed loads a small starter data set: five types with their
// relations, seven monsters with species, move pools and legacy moves,
// personalities and magic items.
package seed

import (
	"fmt"

	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"gorm.io/gorm"
)

// Type ids in the starter set.
const (
	TypeFire uint = iota + 1
	TypeWater
	TypeGrass
	TypeGround
	TypeElectric
)

// MonsterKindling is the pre-evolution of Cinder. It is not part of SampleTeam.
const MonsterKindling uint = 7

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

// relation lists one owner's targets for a named association.
type relation struct {
	owner   uint
	name    string
	targets []uint
}

var typeRelations = []relation{
	{TypeFire, "EffectiveAgainst", []uint{TypeGrass}},
	{TypeFire, "WeakAgainst", []uint{TypeWater, TypeGround}},
	{TypeFire, "VulnerableTo", []uint{TypeWater, TypeGround}},
	{TypeFire, "ResistantTo", []uint{TypeGrass}},
	{TypeWater, "EffectiveAgainst", []uint{TypeFire, TypeGround}},
	{TypeWater, "WeakAgainst", []uint{TypeGrass}},
	{TypeWater, "VulnerableTo", []uint{TypeGrass, TypeElectric}},
	{TypeWater, "ResistantTo", []uint{TypeFire}},
	{TypeGrass, "EffectiveAgainst", []uint{TypeWater, TypeGround}},
	{TypeGrass, "WeakAgainst", []uint{TypeFire}},
	{TypeGrass, "VulnerableTo", []uint{TypeFire}},
	{TypeGrass, "ResistantTo", []uint{TypeWater, TypeGround, TypeElectric}},
	{TypeGround, "EffectiveAgainst", []uint{TypeFire, TypeElectric}},
	{TypeGround, "WeakAgainst", []uint{TypeGrass}},
	{TypeGround, "VulnerableTo", []uint{TypeWater, TypeGrass}},
	{TypeGround, "ResistantTo", []uint{TypeElectric}},
	{TypeElectric, "EffectiveAgainst", []uint{TypeWater}},
	{TypeElectric, "WeakAgainst", []uint{TypeGround}},
	{TypeElectric, "VulnerableTo", []uint{TypeGround}},
	{TypeElectric, "ResistantTo", []uint{TypeElectric}},
}

// movePools lists the moves each monster can learn, keyed by monster id.
var movePools = []relation{
	{MonsterKindling, "MovePool", []uint{1, 5}},
	{1, "MovePool", []uint{1, 2, 5, 6}},
	{2, "MovePool", []uint{1, 2, 5, 6}},
	{3, "MovePool", []uint{1, 2, 3, 5, 6}},
	{4, "MovePool", []uint{1, 2, 4, 5, 6}},
	{5, "MovePool", []uint{1, 2, 5, 6}},
	{6, "MovePool", []uint{1, 2, 4, 5, 6}},
}

var legacyMoves = []models.LegacyMove{
	{MonsterID: 1, TypeID: TypeWater, MoveID: 2},
	{MonsterID: 1, TypeID: TypeGrass, MoveID: 3},
	{MonsterID: 6, TypeID: TypeGround, MoveID: 4},
}

// Load inserts the starter set in one transaction. It fails if any of the
// rows already exist.
func Load(db *database.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		types := []models.Type{
			{ID: TypeFire, Name: "Fire"},
			{ID: TypeWater, Name: "Water"},
			{ID: TypeGrass, Name: "Grass"},
			{ID: TypeGround, Name: "Ground"},
			{ID: TypeElectric, Name: "Electric"},
		}
		if err := tx.Create(&types).Error; err != nil {
			return fmt.Errorf("failed to seed types: %w", err)
		}

		for _, rel := range typeRelations {
			refs := make([]*models.Type, len(rel.targets))
			for i, id := range rel.targets {
				refs[i] = &models.Type{ID: id}
			}
			if err := tx.Model(&models.Type{ID: rel.owner}).Association(rel.name).Append(refs); err != nil {
				return fmt.Errorf("failed to seed %s for type %d: %w", rel.name, rel.owner, err)
			}
		}

		if err := tx.Create(&models.Trait{ID: 1, Name: "Kindle", Description: "Fire moves cost 1 less energy."}).Error; err != nil {
			return fmt.Errorf("failed to seed traits: %w", err)
		}

		personalities := []models.Personality{
			{ID: 1, Name: "Brave", PhyAtkModPct: 0.2, MagAtkModPct: -0.1},
			{ID: 2, Name: "Calm", MagDefModPct: 0.2, PhyAtkModPct: -0.1},
		}
		if err := tx.Create(&personalities).Error; err != nil {
			return fmt.Errorf("failed to seed personalities: %w", err)
		}

		moves := []models.Move{
			{ID: 1, Name: "Ember Strike", MoveTypeID: uintPtr(TypeFire), Category: models.CategoryPhysicalAttack, EnergyCost: 2, Power: intPtr(60), Description: "Deals fire damage."},
			{ID: 2, Name: "Tidal Spell", MoveTypeID: uintPtr(TypeWater), Category: models.CategoryMagicAttack, EnergyCost: 3, Power: intPtr(70), Description: "Deals water damage."},
			{ID: 3, Name: "Vine Lash", MoveTypeID: uintPtr(TypeGrass), Category: models.CategoryPhysicalAttack, EnergyCost: 2, Power: intPtr(55), Description: "Deals grass damage."},
			{ID: 4, Name: "Quake", MoveTypeID: uintPtr(TypeGround), Category: models.CategoryPhysicalAttack, EnergyCost: 4, Power: intPtr(90), Description: "Deals ground damage."},
			{ID: 5, Name: "Guard", Category: models.CategoryDefense, EnergyCost: 0, Description: "Reduces damage and restores 2 energy."},
			{ID: 6, Name: "Focus", Category: models.CategoryStatus, EnergyCost: 1, HasCounter: true, Description: "Raises attack."},
		}
		if err := tx.Create(&moves).Error; err != nil {
			return fmt.Errorf("failed to seed moves: %w", err)
		}

		species := []models.MonsterSpecies{
			{ID: 1, Name: "Cinderling"},
			{ID: 2, Name: "Brook"},
			{ID: 3, Name: "Sprig"},
			{ID: 4, Name: "Pebble"},
			{ID: 5, Name: "Volt"},
			{ID: 6, Name: "Marsh"},
		}
		if err := tx.Create(&species).Error; err != nil {
			return fmt.Errorf("failed to seed species: %w", err)
		}

		// Kindling is listed first so Cinder's evolves_from_id resolves on insert.
		monsters := []models.Monster{
			{ID: MonsterKindling, Name: "Kindling", SpeciesID: uintPtr(1), MainTypeID: TypeFire, DefaultLegacyTypeID: TypeFire, TraitID: uintPtr(1), PreferredAttackStyle: models.AttackStylePhysical},
			{ID: 1, Name: "Cinder", SpeciesID: uintPtr(1), EvolvesFromID: uintPtr(MonsterKindling), MainTypeID: TypeFire, DefaultLegacyTypeID: TypeFire, TraitID: uintPtr(1), LeaderPotential: true, PreferredAttackStyle: models.AttackStylePhysical},
			{ID: 2, Name: "Brook", SpeciesID: uintPtr(2), MainTypeID: TypeWater, DefaultLegacyTypeID: TypeWater, PreferredAttackStyle: models.AttackStyleMagic},
			{ID: 3, Name: "Sprig", SpeciesID: uintPtr(3), MainTypeID: TypeGrass, DefaultLegacyTypeID: TypeGrass, PreferredAttackStyle: models.AttackStyleBoth},
			{ID: 4, Name: "Pebble", SpeciesID: uintPtr(4), MainTypeID: TypeGround, DefaultLegacyTypeID: TypeGround, PreferredAttackStyle: models.AttackStylePhysical},
			{ID: 5, Name: "Volt", SpeciesID: uintPtr(5), MainTypeID: TypeElectric, DefaultLegacyTypeID: TypeElectric, PreferredAttackStyle: models.AttackStyleMagic},
			{ID: 6, Name: "Marsh", SpeciesID: uintPtr(6), MainTypeID: TypeWater, SubTypeID: uintPtr(TypeGround), DefaultLegacyTypeID: TypeWater, PreferredAttackStyle: models.AttackStyleBoth},
		}
		for i := range monsters {
			monsters[i].BaseHP = 100
			monsters[i].BasePhyAtk = 80
			monsters[i].BaseMagAtk = 80
			monsters[i].BasePhyDef = 70
			monsters[i].BaseMagDef = 70
			monsters[i].BaseSpd = 60
		}
		if err := tx.Omit("MovePool", "LegacyMoves").Create(&monsters).Error; err != nil {
			return fmt.Errorf("failed to seed monsters: %w", err)
		}

		for _, pool := range movePools {
			refs := make([]*models.Move, len(pool.targets))
			for i, id := range pool.targets {
				refs[i] = &models.Move{ID: id}
			}
			if err := tx.Model(&models.Monster{ID: pool.owner}).Association(pool.name).Append(refs); err != nil {
				return fmt.Errorf("failed to seed move pool for monster %d: %w", pool.owner, err)
			}
		}

		legacy := append([]models.LegacyMove(nil), legacyMoves...)
		if err := tx.Create(&legacy).Error; err != nil {
			return fmt.Errorf("failed to seed legacy moves: %w", err)
		}

		items := []models.MagicItem{
			{ID: 1, Name: "Spell Book", EffectCode: models.EffectEnhanceSpell},
			{ID: 2, Name: "Sun Charm", EffectCode: models.EffectSunHealing, AppliesToTypeID: uintPtr(TypeGrass)},
			{ID: 3, Name: "Mystery Orb", EffectCode: "time_warp"},
			{ID: 4, Name: "Leader Crown", EffectCode: models.EffectEvolutionPower, AppliesToTypeID: uintPtr(TypeFire)},
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to seed magic items: %w", err)
		}

		terms := []models.GameTerm{
			{Key: "Counter", Description: "A move that punishes the opponent's move category."},
			{Key: "Legacy Type", Description: "An extra type granted by the monster's lineage, used for item eligibility."},
		}
		if err := tx.Create(&terms).Error; err != nil {
			return fmt.Errorf("failed to seed game terms: %w", err)
		}
		return nil
	})
}

// SampleTeam is six seeded monsters sharing one move set, with a valid
// three-stat talent on each.
func SampleTeam() models.TeamInput {
	legacy := []uint{TypeFire, TypeWater, TypeGrass, TypeGround, TypeElectric, TypeWater}
	in := models.TeamInput{Name: "Starter Squad", MagicItemID: 1}
	for i := 0; i < models.TeamSize; i++ {
		in.UserMonsters = append(in.UserMonsters, models.UserMonsterInput{
			MonsterID:     uint(i + 1),
			PersonalityID: 1,
			LegacyTypeID:  legacy[i],
			Move1ID:       1,
			Move2ID:       2,
			Move3ID:       5,
			Move4ID:       6,
			Talent:        models.TalentInput{HPBoost: 10, PhyAtkBoost: 10, SpdBoost: 10},
		})
	}
	return in
}
