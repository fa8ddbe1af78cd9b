package models

import (
	"fmt"
	"strings"

	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"gorm.io/datatypes"
)

type MoveCategory string

const (
	CategoryPhysicalAttack MoveCategory = "PHY_ATTACK"
	CategoryMagicAttack    MoveCategory = "MAG_ATTACK"
	CategoryDefense        MoveCategory = "DEFENSE"
	CategoryStatus         MoveCategory = "STATUS"
)

var moveCategoryAliases = map[string]MoveCategory{
	"PHY_ATTACK":      CategoryPhysicalAttack,
	"PHYSICAL ATTACK": CategoryPhysicalAttack,
	"ATTACK":          CategoryPhysicalAttack, // older 3-value data did not split attacks
	"MAG_ATTACK":      CategoryMagicAttack,
	"MAGIC ATTACK":    CategoryMagicAttack,
	"DEFENSE":         CategoryDefense,
	"STATUS":          CategoryStatus,
}

// ParseMoveCategory accepts canonical codes, display names and the legacy
// "Attack" value.
func ParseMoveCategory(s string) (MoveCategory, error) {
	if c, ok := moveCategoryAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown move category %q", s)
}

// Canonical maps a stored value onto the 4-value category. ok is false for
// values outside the known set.
func (c MoveCategory) Canonical() (MoveCategory, bool) {
	parsed, err := ParseMoveCategory(string(c))
	return parsed, err == nil
}

func (c MoveCategory) IsAttack() bool {
	canonical, _ := c.Canonical()
	return canonical == CategoryPhysicalAttack || canonical == CategoryMagicAttack
}

func (c MoveCategory) IsDefense() bool {
	canonical, _ := c.Canonical()
	return canonical == CategoryDefense
}

func (c MoveCategory) IsStatus() bool {
	canonical, _ := c.Canonical()
	return canonical == CategoryStatus
}

type Move struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	MoveTypeID  *uint          `gorm:"index" json:"move_type_id"`
	MoveType    *Type          `gorm:"foreignKey:MoveTypeID" json:"move_type,omitempty"`
	Category    MoveCategory   `gorm:"size:20;not null" json:"move_category"`
	EnergyCost  int            `gorm:"not null;default:0" json:"energy_cost"`
	Power       *int           `json:"power"`
	Description string         `gorm:"type:text" json:"description"`
	HasCounter  bool           `gorm:"default:false" json:"has_counter"`
	IsMoveStone bool           `gorm:"default:false" json:"is_move_stone"`
	Localized   datatypes.JSON `json:"localized,omitempty"`
}

// MoveFilter narrows move listings.
type MoveFilter struct {
	IDs    []uint
	Name   string
	Limit  int
	Offset int
}

// GetMoves returns a page of moves and the unpaged total.
func GetMoves(db *database.DB, filter MoveFilter) ([]Move, int64, error) {
	query := db.Model(&Move{})
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var moves []Move
	err := query.Preload("MoveType").Order("id").Find(&moves).Error
	return moves, total, err
}
