package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
	"gorm.io/gorm"
)

// ReferenceStore resolves the read-only game data an analysis needs.
// Batched lookups return a map keyed by id; missing ids are simply absent.
type ReferenceStore interface {
	MonstersByIDs(ctx context.Context, ids []uint) (map[uint]*models.Monster, error)
	MovesByIDs(ctx context.Context, ids []uint) (map[uint]*models.Move, error)
	PersonalitiesByIDs(ctx context.Context, ids []uint) (map[uint]*models.Personality, error)
	MagicItemByID(ctx context.Context, id uint) (*models.MagicItem, error)
	TypeChart(ctx context.Context) ([]models.Type, error)
	GameTerms(ctx context.Context) ([]models.GameTerm, error)
}

// GormReferenceStore reads reference data with one query per entity kind.
type GormReferenceStore struct {
	db *database.DB
}

func NewGormReferenceStore(db *database.DB) *GormReferenceStore {
	return &GormReferenceStore{db: db}
}

func (s *GormReferenceStore) MonstersByIDs(ctx context.Context, ids []uint) (map[uint]*models.Monster, error) {
	result := make(map[uint]*models.Monster, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := s.db.WithContext(ctx).Where("id IN ?", ids)
	for _, p := range models.MonsterDetailPreloads {
		query = query.Preload(p)
	}

	var monsters []models.Monster
	if err := query.Find(&monsters).Error; err != nil {
		return nil, fmt.Errorf("failed to load monsters: %w", err)
	}
	for i := range monsters {
		result[monsters[i].ID] = &monsters[i]
	}
	return result, nil
}

func (s *GormReferenceStore) MovesByIDs(ctx context.Context, ids []uint) (map[uint]*models.Move, error) {
	result := make(map[uint]*models.Move, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var moves []models.Move
	if err := s.db.WithContext(ctx).Preload("MoveType").Where("id IN ?", ids).Find(&moves).Error; err != nil {
		return nil, fmt.Errorf("failed to load moves: %w", err)
	}
	for i := range moves {
		result[moves[i].ID] = &moves[i]
	}
	return result, nil
}

func (s *GormReferenceStore) PersonalitiesByIDs(ctx context.Context, ids []uint) (map[uint]*models.Personality, error) {
	result := make(map[uint]*models.Personality, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var personalities []models.Personality
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&personalities).Error; err != nil {
		return nil, fmt.Errorf("failed to load personalities: %w", err)
	}
	for i := range personalities {
		result[personalities[i].ID] = &personalities[i]
	}
	return result, nil
}

// MagicItemByID returns a NotFoundError when the item does not exist.
func (s *GormReferenceStore) MagicItemByID(ctx context.Context, id uint) (*models.MagicItem, error) {
	var item models.MagicItem
	err := s.db.WithContext(ctx).Preload("AppliesToType").First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("magic item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load magic item: %w", err)
	}
	return &item, nil
}

func (s *GormReferenceStore) TypeChart(ctx context.Context) ([]models.Type, error) {
	types, err := models.GetTypesWithRelations(&database.DB{DB: s.db.WithContext(ctx)})
	if err != nil {
		return nil, fmt.Errorf("failed to load type chart: %w", err)
	}
	return types, nil
}

func (s *GormReferenceStore) GameTerms(ctx context.Context) ([]models.GameTerm, error) {
	terms, err := models.GetGameTerms(&database.DB{DB: s.db.WithContext(ctx)})
	if err != nil {
		return nil, fmt.Errorf("failed to load game terms: %w", err)
	}
	return terms, nil
}

// missingIDs returns the requested ids absent from found, sorted and deduplicated.
func missingIDs[T any](requested []uint, found map[uint]T) []uint {
	seen := make(map[uint]bool)
	var missing []uint
	for _, id := range requested {
		if _, ok := found[id]; ok || seen[id] {
			continue
		}
		seen[id] = true
		missing = append(missing, id)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// uniqueIDs deduplicates ids preserving first occurrence.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
