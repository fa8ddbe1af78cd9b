// Package analysis computes derived battle statistics and strategic findings
// for a six-monster team. Every function here is pure: the caller resolves
// reference data and passes it in, nothing is fetched or cached.
package analysis

import (
	"github.com/jstittsworth/monster-team-builder/internal/models"
)

// BaseStats are a species' unmodified stats.
type BaseStats struct {
	HP     int `json:"hp"`
	PhyAtk int `json:"phy_atk"`
	MagAtk int `json:"mag_atk"`
	PhyDef int `json:"phy_def"`
	MagDef int `json:"mag_def"`
	Spd    int `json:"spd"`
}

// BaseStatsOf reads the base stats off a monster record.
func BaseStatsOf(m *models.Monster) BaseStats {
	return BaseStats{
		HP:     m.BaseHP,
		PhyAtk: m.BasePhyAtk,
		MagAtk: m.BaseMagAtk,
		PhyDef: m.BasePhyDef,
		MagDef: m.BaseMagDef,
		Spd:    m.BaseSpd,
	}
}

// EffectiveStats are final stats after talent and personality.
type EffectiveStats struct {
	HP     int `json:"hp"`
	PhyAtk int `json:"phy_atk"`
	MagAtk int `json:"mag_atk"`
	PhyDef int `json:"phy_def"`
	MagDef int `json:"mag_def"`
	Spd    int `json:"spd"`
}

// Values returns the stats in canonical order.
func (s EffectiveStats) Values() [6]int {
	return [6]int{s.HP, s.PhyAtk, s.MagAtk, s.PhyDef, s.MagDef, s.Spd}
}

type EnergyProfile struct {
	AvgEnergyCost        float64 `json:"avg_energy_cost"`
	HasZeroCostMove      bool    `json:"has_zero_cost_move"`
	HasEnergyRestoreMove bool    `json:"has_energy_restore_move"`
	ZeroCostMoves        []uint  `json:"zero_cost_moves"`
	EnergyRestoreMoves   []uint  `json:"energy_restore_moves"`
}

type CounterCoverage struct {
	HasAttackCounterStatus  bool   `json:"has_attack_counter_status"`
	HasDefenseCounterAttack bool   `json:"has_defense_counter_attack"`
	HasStatusCounterDefense bool   `json:"has_status_counter_defense"`
	TotalCounterMoves       int    `json:"total_counter_moves"`
	CounterMoveIDs          []uint `json:"counter_move_ids"`
}

type DefenseStatusMove struct {
	Count   int    `json:"defense_status_move_count"`
	MoveIDs []uint `json:"defense_status_move"`
}

// MoveProfile bundles the three per-monster move analyses.
type MoveProfile struct {
	Energy        EnergyProfile     `json:"energy_profile"`
	Counters      CounterCoverage   `json:"counter_coverage"`
	DefenseStatus DefenseStatusMove `json:"defense_status_move"`
}

type TraitSynergyFinding struct {
	MonsterID      uint     `json:"monster_id"`
	Trait          string   `json:"trait"`
	SynergyMoves   []uint   `json:"synergy_moves"`
	Recommendation []string `json:"recommendation"`
}

type TypeCoverageReport struct {
	EffectiveAgainstTypes []uint `json:"effective_against_types"`
	WeakAgainstTypes      []uint `json:"weak_against_types"`
	TeamWeakTo            []uint `json:"team_weak_to"`
}

type MagicItemEvaluation struct {
	ChosenItem          *models.MagicItem `json:"chosen_item"`
	ValidTargets        []uint            `json:"valid_targets"`
	BestTargetMonsterID *uint             `json:"best_target_monster_id"`
	Reasoning           *string           `json:"reasoning"`
}

// Severity levels for structured recommendations.
const (
	SeverityInfo   = "info"
	SeverityWarn   = "warn"
	SeverityDanger = "danger"
)

// Recommendation categories.
const (
	CategoryCoverage      = "coverage"
	CategoryWeakness      = "weakness"
	CategoryMagicItem     = "magic_item"
	CategoryEnergy        = "energy"
	CategoryCounters      = "counters"
	CategoryDefenseStatus = "defense_status"
	CategoryTraitSynergy  = "trait_synergy"
	CategoryRoleDiversity = "role_diversity"
	CategoryGeneral       = "general"
)

type Recommendation struct {
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	TypeIDs    []uint `json:"type_ids,omitempty"`
	MonsterIDs []uint `json:"monster_ids,omitempty"`
	MoveIDs    []uint `json:"move_ids,omitempty"`
}

// Warning codes.
const (
	WarnUnknownEffectCode   = "unknown_effect_code"
	WarnDanglingTypeRef     = "dangling_type_reference"
	WarnUnknownMoveCategory = "unknown_move_category"
)

// DataIntegrityWarning reports reference data the analysis had to skip.
// The affected facet degrades to an empty result.
type DataIntegrityWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Member is one resolved team slot.
type Member struct {
	ID          uint
	Monster     *models.Monster
	Personality *models.Personality
	LegacyType  uint
	Talent      models.Talent
	Moves       [models.MovesPerSlot]*models.Move
}

// TypeIDs returns main, sub (if any) and legacy type ids.
func (m Member) TypeIDs() []uint {
	ids := []uint{m.Monster.MainTypeID}
	if m.Monster.SubTypeID != nil {
		ids = append(ids, *m.Monster.SubTypeID)
	}
	return append(ids, m.LegacyType)
}

type MonsterAnalysis struct {
	UserMonster       *models.UserMonster   `json:"user_monster"`
	EffectiveStats    EffectiveStats        `json:"effective_stats"`
	EnergyProfile     EnergyProfile         `json:"energy_profile"`
	CounterCoverage   CounterCoverage       `json:"counter_coverage"`
	DefenseStatusMove DefenseStatusMove     `json:"defense_status_move"`
	TraitSynergies    []TraitSynergyFinding `json:"trait_synergies"`
}

// TeamAnalysisReport is the full result of analyzing one team.
type TeamAnalysisReport struct {
	Team                      *models.Team           `json:"team"`
	PerMonster                []MonsterAnalysis      `json:"per_monster"`
	TypeCoverage              TypeCoverageReport     `json:"type_coverage"`
	MagicItemEval             MagicItemEvaluation    `json:"magic_item_eval"`
	TeamStats                 TeamStatSummary        `json:"team_stats"`
	Recommendations           []string               `json:"recommendations"`
	RecommendationsStructured []Recommendation       `json:"recommendations_structured"`
	Warnings                  []DataIntegrityWarning `json:"warnings"`
}
