package models

import (
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"gorm.io/datatypes"
)

// Type is an elemental type. The four relation sets are stored in separate
// join tables and are not kept symmetric with each other.
type Type struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Localized datatypes.JSON `json:"localized,omitempty"`

	// offense
	EffectiveAgainst []*Type `gorm:"many2many:type_effective_against;joinForeignKey:TypeID;joinReferences:TargetTypeID" json:"effective_against,omitempty"`
	WeakAgainst      []*Type `gorm:"many2many:type_weak_against;joinForeignKey:TypeID;joinReferences:TargetTypeID" json:"weak_against,omitempty"`

	// defense
	VulnerableTo []*Type `gorm:"many2many:type_vulnerable_to;joinForeignKey:TypeID;joinReferences:TargetTypeID" json:"vulnerable_to,omitempty"`
	ResistantTo  []*Type `gorm:"many2many:type_resistant_to;joinForeignKey:TypeID;joinReferences:TargetTypeID" json:"resistant_to,omitempty"`
}

// TypeRelations lists the association names preloaded for a full type chart.
var TypeRelations = []string{"EffectiveAgainst", "WeakAgainst", "VulnerableTo", "ResistantTo"}

// TypeIDs returns the ids of the given types in input order.
func TypeIDs(types []*Type) []uint {
	ids := make([]uint, 0, len(types))
	for _, t := range types {
		if t != nil {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// GetTypesWithRelations loads every type with its four relation sets.
func GetTypesWithRelations(db *database.DB) ([]Type, error) {
	query := db.Order("id")
	for _, rel := range TypeRelations {
		query = query.Preload(rel)
	}
	var types []Type
	err := query.Find(&types).Error
	return types, err
}

// GetTypeByID fetches one type with its relation sets.
func GetTypeByID(db *database.DB, id uint) (*Type, error) {
	query := db.Model(&Type{})
	for _, rel := range TypeRelations {
		query = query.Preload(rel)
	}
	var t Type
	err := query.First(&t, id).Error
	return &t, err
}
