package models

import (
	"time"

	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
	"gorm.io/datatypes"
)

const (
	TeamSize     = 6
	MovesPerSlot = 4

	// MaxBoostedStats is the number of stats a talent may invest in.
	MaxBoostedStats = 3
)

// allowedBoosts are the only talent values the game offers.
var allowedBoosts = map[int]bool{0: true, 7: true, 8: true, 9: true, 10: true}

type Talent struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	HPBoost     int  `gorm:"default:0" json:"hp_boost"`
	PhyAtkBoost int  `gorm:"default:0" json:"phy_atk_boost"`
	MagAtkBoost int  `gorm:"default:0" json:"mag_atk_boost"`
	PhyDefBoost int  `gorm:"default:0" json:"phy_def_boost"`
	MagDefBoost int  `gorm:"default:0" json:"mag_def_boost"`
	SpdBoost    int  `gorm:"default:0" json:"spd_boost"`
}

// Values returns boosts in stat order: hp, phy_atk, mag_atk, phy_def, mag_def, spd.
func (t Talent) Values() [6]int {
	return [6]int{t.HPBoost, t.PhyAtkBoost, t.MagAtkBoost, t.PhyDefBoost, t.MagDefBoost, t.SpdBoost}
}

// Validate enforces the allocation rule: every value in {0,7,8,9,10} and
// between one and three boosted stats.
func (t Talent) Validate() error {
	boosted := 0
	for _, v := range t.Values() {
		if !allowedBoosts[v] {
			return utils.NewValidationError("talent", "boost value %d is not one of 0, 7, 8, 9, 10", v)
		}
		if v != 0 {
			boosted++
		}
	}
	if boosted == 0 {
		return utils.NewValidationError("talent", "at least one stat must be boosted")
	}
	if boosted > MaxBoostedStats {
		return utils.NewValidationError("talent", "%d stats boosted, at most %d allowed", boosted, MaxBoostedStats)
	}
	return nil
}

type UserMonster struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	TeamID uint `gorm:"index;not null" json:"team_id"`
	Slot   int  `gorm:"not null" json:"slot"`

	MonsterID     uint         `gorm:"not null" json:"monster_id"`
	Monster       *Monster     `json:"monster,omitempty"`
	PersonalityID uint         `gorm:"not null" json:"personality_id"`
	Personality   *Personality `json:"personality,omitempty"`
	LegacyTypeID  uint         `gorm:"not null" json:"legacy_type_id"`
	LegacyType    *Type        `gorm:"foreignKey:LegacyTypeID" json:"legacy_type,omitempty"`

	Move1ID uint  `gorm:"not null" json:"move1_id"`
	Move1   *Move `gorm:"foreignKey:Move1ID" json:"move1,omitempty"`
	Move2ID uint  `gorm:"not null" json:"move2_id"`
	Move2   *Move `gorm:"foreignKey:Move2ID" json:"move2,omitempty"`
	Move3ID uint  `gorm:"not null" json:"move3_id"`
	Move3   *Move `gorm:"foreignKey:Move3ID" json:"move3,omitempty"`
	Move4ID uint  `gorm:"not null" json:"move4_id"`
	Move4   *Move `gorm:"foreignKey:Move4ID" json:"move4,omitempty"`

	TalentID uint    `gorm:"not null" json:"talent_id"`
	Talent   *Talent `json:"talent,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// MoveIDs returns the four move slots in order.
func (um *UserMonster) MoveIDs() [MovesPerSlot]uint {
	return [MovesPerSlot]uint{um.Move1ID, um.Move2ID, um.Move3ID, um.Move4ID}
}

type Team struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:100" json:"name"`
	MagicItemID uint          `gorm:"not null" json:"magic_item_id"`
	MagicItem   *MagicItem    `json:"magic_item,omitempty"`
	Monsters    []UserMonster `gorm:"constraint:OnDelete:CASCADE;" json:"user_monsters"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TeamAnalysis stores a generated report for a saved team.
type TeamAnalysis struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	RequestID           string         `gorm:"size:64;index" json:"request_id"`
	TeamID              uint           `gorm:"index;not null" json:"team_id"`
	Team                *Team          `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Report              datatypes.JSON `json:"report"`
	RecommendationCount int            `json:"recommendation_count"`
	WarningCount        int            `json:"warning_count"`
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`
}

// TalentInput is the request shape for a talent allocation.
type TalentInput struct {
	HPBoost     int `json:"hp_boost"`
	PhyAtkBoost int `json:"phy_atk_boost"`
	MagAtkBoost int `json:"mag_atk_boost"`
	PhyDefBoost int `json:"phy_def_boost"`
	MagDefBoost int `json:"mag_def_boost"`
	SpdBoost    int `json:"spd_boost"`
}

func (in TalentInput) Talent() Talent {
	return Talent{
		HPBoost:     in.HPBoost,
		PhyAtkBoost: in.PhyAtkBoost,
		MagAtkBoost: in.MagAtkBoost,
		PhyDefBoost: in.PhyDefBoost,
		MagDefBoost: in.MagDefBoost,
		SpdBoost:    in.SpdBoost,
	}
}

type UserMonsterInput struct {
	// ID is set for persisted members; inline members are identified by slot.
	ID            *uint       `json:"id,omitempty"`
	MonsterID     uint        `json:"monster_id"`
	PersonalityID uint        `json:"personality_id"`
	LegacyTypeID  uint        `json:"legacy_type_id"`
	Move1ID       uint        `json:"move1_id"`
	Move2ID       uint        `json:"move2_id"`
	Move3ID       uint        `json:"move3_id"`
	Move4ID       uint        `json:"move4_id"`
	Talent        TalentInput `json:"talent"`
}

func (in UserMonsterInput) MoveIDs() [MovesPerSlot]uint {
	return [MovesPerSlot]uint{in.Move1ID, in.Move2ID, in.Move3ID, in.Move4ID}
}

// TeamInput is a team composition as submitted for saving or inline analysis.
type TeamInput struct {
	Name         string             `json:"name"`
	MagicItemID  uint               `json:"magic_item_id"`
	UserMonsters []UserMonsterInput `json:"user_monsters"`
}

// Validate checks composition shape and talents. It does not resolve ids.
func (in TeamInput) Validate() error {
	if len(in.UserMonsters) != TeamSize {
		return utils.NewValidationError("user_monsters", "team must have exactly %d monsters, got %d", TeamSize, len(in.UserMonsters))
	}
	if in.MagicItemID == 0 {
		return utils.NewValidationError("magic_item_id", "a magic item is required")
	}
	for i, um := range in.UserMonsters {
		if um.MonsterID == 0 || um.PersonalityID == 0 || um.LegacyTypeID == 0 {
			return utils.NewValidationError("user_monsters", "slot %d: monster, personality and legacy type are required", i)
		}
		for j, moveID := range um.MoveIDs() {
			if moveID == 0 {
				return utils.NewValidationError("user_monsters", "slot %d: move%d_id is required", i, j+1)
			}
		}
		if err := um.Talent.Talent().Validate(); err != nil {
			return utils.NewValidationError("user_monsters", "slot %d: %s", i, err.Error())
		}
	}
	return nil
}

// ToInput converts a saved team back to its composition.
func (t *Team) ToInput() TeamInput {
	in := TeamInput{Name: t.Name, MagicItemID: t.MagicItemID}
	for _, um := range t.Monsters {
		id := um.ID
		member := UserMonsterInput{
			ID:            &id,
			MonsterID:     um.MonsterID,
			PersonalityID: um.PersonalityID,
			LegacyTypeID:  um.LegacyTypeID,
			Move1ID:       um.Move1ID,
			Move2ID:       um.Move2ID,
			Move3ID:       um.Move3ID,
			Move4ID:       um.Move4ID,
		}
		if um.Talent != nil {
			member.Talent = TalentInput{
				HPBoost:     um.Talent.HPBoost,
				PhyAtkBoost: um.Talent.PhyAtkBoost,
				MagAtkBoost: um.Talent.MagAtkBoost,
				PhyDefBoost: um.Talent.PhyDefBoost,
				MagDefBoost: um.Talent.MagDefBoost,
				SpdBoost:    um.Talent.SpdBoost,
			}
		}
		in.UserMonsters = append(in.UserMonsters, member)
	}
	return in
}

// GetTeamAnalyses returns the most recent stored reports for a team.
func GetTeamAnalyses(db *database.DB, teamID uint, limit int) ([]TeamAnalysis, error) {
	var analyses []TeamAnalysis
	query := db.Where("team_id = ?", teamID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&analyses).Error
	return analyses, err
}
