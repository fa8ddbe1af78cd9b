package models

import (
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"gorm.io/datatypes"
)

// Personality carries signed fractional stat modifiers, e.g. -0.1 or 0.2.
type Personality struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"uniqueIndex;size:50;not null" json:"name"`
	HPModPct     float64        `gorm:"default:0" json:"hp_mod_pct"`
	PhyAtkModPct float64        `gorm:"default:0" json:"phy_atk_mod_pct"`
	MagAtkModPct float64        `gorm:"default:0" json:"mag_atk_mod_pct"`
	PhyDefModPct float64        `gorm:"default:0" json:"phy_def_mod_pct"`
	MagDefModPct float64        `gorm:"default:0" json:"mag_def_mod_pct"`
	SpdModPct    float64        `gorm:"default:0" json:"spd_mod_pct"`
	Localized    datatypes.JSON `json:"localized,omitempty"`
}

type MagicEffectCode string

const (
	EffectEnhanceSpell   MagicEffectCode = "enhance_spell"
	EffectSunHealing     MagicEffectCode = "sun_healing"
	EffectFlareBurst     MagicEffectCode = "flare_burst"
	EffectFlowSpell      MagicEffectCode = "flow_spell"
	EffectEvolutionPower MagicEffectCode = "evolution_power"
)

// MagicEffectCodes is the closed set of known effect codes.
var MagicEffectCodes = []MagicEffectCode{
	EffectEnhanceSpell,
	EffectSunHealing,
	EffectFlareBurst,
	EffectFlowSpell,
	EffectEvolutionPower,
}

type MagicItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description      string          `gorm:"type:text" json:"description"`
	EffectCode       MagicEffectCode `gorm:"size:50;not null" json:"effect_code"`
	AppliesToTypeID  *uint           `json:"applies_to_type_id"`
	AppliesToType    *Type           `gorm:"foreignKey:AppliesToTypeID" json:"applies_to_type,omitempty"`
	EffectParameters datatypes.JSON  `json:"effect_parameters,omitempty"`
	Localized        datatypes.JSON  `json:"localized,omitempty"`
}

// GameTerm is a glossary entry used in synergy prompts.
type GameTerm struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Key         string         `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Localized   datatypes.JSON `json:"localized,omitempty"`
}

func GetTraits(db *database.DB) ([]Trait, error) {
	var traits []Trait
	err := db.Order("id").Find(&traits).Error
	return traits, err
}

func GetPersonalities(db *database.DB) ([]Personality, error) {
	var personalities []Personality
	err := db.Order("id").Find(&personalities).Error
	return personalities, err
}

func GetMagicItems(db *database.DB) ([]MagicItem, error) {
	var items []MagicItem
	err := db.Preload("AppliesToType").Order("id").Find(&items).Error
	return items, err
}

func GetGameTerms(db *database.DB) ([]GameTerm, error) {
	var terms []GameTerm
	err := db.Order("game_terms.key").Find(&terms).Error
	return terms, err
}
