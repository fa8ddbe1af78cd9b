package models

import (
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttackStyle string

const (
	AttackStylePhysical AttackStyle = "Physical"
	AttackStyleMagic    AttackStyle = "Magic"
	AttackStyleBoth     AttackStyle = "Both"
)

type Trait struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Localized   datatypes.JSON `json:"localized,omitempty"`
}

// MonsterSpecies groups the forms and evolution stages of one monster line.
type MonsterSpecies struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Localized datatypes.JSON `json:"localized,omitempty"`
}

// LegacyMove is the move a monster gains when given a particular legacy type.
type LegacyMove struct {
	MonsterID uint `gorm:"primaryKey" json:"monster_id"`
	TypeID    uint `gorm:"primaryKey" json:"type_id"`
	MoveID    uint `gorm:"not null" json:"move_id"`
}

type Monster struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;index" json:"name"`
	Form string `gorm:"size:50;default:'default'" json:"form"`

	SpeciesID     *uint           `gorm:"index" json:"species_id"`
	Species       *MonsterSpecies `json:"species,omitempty"`
	EvolvesFromID *uint           `json:"evolves_from_id"`

	MainTypeID          uint  `gorm:"not null;index" json:"main_type_id"`
	MainType            *Type `gorm:"foreignKey:MainTypeID" json:"main_type,omitempty"`
	SubTypeID           *uint `json:"sub_type_id"`
	SubType             *Type `gorm:"foreignKey:SubTypeID" json:"sub_type,omitempty"`
	DefaultLegacyTypeID uint  `gorm:"not null" json:"default_legacy_type_id"`
	DefaultLegacyType   *Type `gorm:"foreignKey:DefaultLegacyTypeID" json:"default_legacy_type,omitempty"`

	TraitID *uint  `json:"trait_id"`
	Trait   *Trait `json:"trait,omitempty"`

	LeaderPotential bool `gorm:"default:false" json:"leader_potential"`
	IsLeaderForm    bool `gorm:"default:false" json:"is_leader_form"`

	BaseHP     int `gorm:"not null" json:"base_hp"`
	BasePhyAtk int `gorm:"not null" json:"base_phy_atk"`
	BaseMagAtk int `gorm:"not null" json:"base_mag_atk"`
	BasePhyDef int `gorm:"not null" json:"base_phy_def"`
	BaseMagDef int `gorm:"not null" json:"base_mag_def"`
	BaseSpd    int `gorm:"not null" json:"base_spd"`

	PreferredAttackStyle AttackStyle    `gorm:"size:10;default:'Both'" json:"preferred_attack_style"`
	Localized            datatypes.JSON `json:"localized,omitempty"`

	// Only loaded for monster detail.
	MovePool    []*Move      `gorm:"many2many:monster_moves" json:"move_pool,omitempty"`
	LegacyMoves []LegacyMove `gorm:"foreignKey:MonsterID" json:"legacy_moves,omitempty"`
}

// AttackStyleOrDefault treats an empty stored style as Both.
func (m *Monster) AttackStyleOrDefault() AttackStyle {
	if m.PreferredAttackStyle == "" {
		return AttackStyleBoth
	}
	return m.PreferredAttackStyle
}

// MonsterDetailPreloads are the associations returned with monster detail.
var MonsterDetailPreloads = []string{"MainType", "SubType", "DefaultLegacyType", "Trait", "Species"}

// GetMonsters returns a page of monsters filtered by a case-insensitive name fragment.
func GetMonsters(db *database.DB, name string, limit, offset int) ([]Monster, int64, error) {
	query := db.Model(&Monster{})
	if name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	for _, p := range MonsterDetailPreloads {
		query = query.Preload(p)
	}

	var monsters []Monster
	err := query.Order("id").Find(&monsters).Error
	return monsters, total, err
}

// GetMonsterByID fetches a monster with its types, trait, species, move pool
// and legacy moves.
func GetMonsterByID(db *database.DB, id uint) (*Monster, error) {
	query := db.Model(&Monster{})
	for _, p := range MonsterDetailPreloads {
		query = query.Preload(p)
	}
	query = query.
		Preload("MovePool", func(db *gorm.DB) *gorm.DB { return db.Order("moves.id") }).
		Preload("LegacyMoves", func(db *gorm.DB) *gorm.DB { return db.Order("type_id") })
	var monster Monster
	err := query.First(&monster, id).Error
	return &monster, err
}
