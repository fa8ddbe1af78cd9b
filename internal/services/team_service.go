package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TeamService persists team compositions.
type TeamService struct {
	db     *database.DB
	store  ReferenceStore
	logger *logrus.Logger
}

func NewTeamService(db *database.DB, store ReferenceStore, logger *logrus.Logger) *TeamService {
	return &TeamService{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// Create validates the composition, checks every referenced id exists and
// stores the team with its members and talents.
func (s *TeamService) Create(ctx context.Context, in models.TeamInput) (*models.Team, error) {
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}

	var teamID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team := models.Team{Name: in.Name, MagicItemID: in.MagicItemID}
		if err := tx.Omit("Monsters", "MagicItem").Create(&team).Error; err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}
		teamID = team.ID
		return createMembers(tx, team.ID, in.UserMonsters)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("team_id", teamID).Info("Team created")
	return s.Get(ctx, teamID)
}

// List returns a page of teams with their members, newest first.
func (s *TeamService) List(ctx context.Context, limit, offset int) ([]models.Team, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Team{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count teams: %w", err)
	}

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var teams []models.Team
	err := preloadTeam(query).Order("created_at DESC").Order("id DESC").Find(&teams).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, total, nil
}

// Get returns a team with members ordered by slot.
func (s *TeamService) Get(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	err := preloadTeam(s.db.WithContext(ctx)).First(&team, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("team", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return &team, nil
}

// Update replaces the name and magic item of a team and upserts its members.
// A member carrying an id is updated in place, one without an id is created,
// and members left out of the input are deleted with their talents.
func (s *TeamService) Update(ctx context.Context, id uint, in models.TeamInput) (*models.Team, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}
	if err := checkMemberIDs(in.UserMonsters); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("team", id)
			}
			return fmt.Errorf("failed to load team: %w", err)
		}

		if err := tx.Model(&team).Updates(map[string]interface{}{
			"name":          in.Name,
			"magic_item_id": in.MagicItemID,
		}).Error; err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}
		return upsertMembers(tx, id, in.UserMonsters)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("team_id", id).Info("Team updated")
	return s.Get(ctx, id)
}

// Delete removes a team with its members, talents and stored analyses.
func (s *TeamService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("team", id)
			}
			return fmt.Errorf("failed to load team: %w", err)
		}

		if err := tx.Where("team_id = ?", id).Delete(&models.TeamAnalysis{}).Error; err != nil {
			return fmt.Errorf("failed to delete team analyses: %w", err)
		}
		if err := deleteMembers(tx, id); err != nil {
			return err
		}
		if err := tx.Delete(&team).Error; err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithField("team_id", id).Info("Team deleted")
	return nil
}

// check validates shape, then resolves references so unknown ids are
// reported before anything is written.
func (s *TeamService) check(ctx context.Context, in models.TeamInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := resolveSnapshot(ctx, s.store, in)
	return err
}

func (s *TeamService) exists(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}
	if count == 0 {
		return utils.NewNotFoundError("team", id)
	}
	return nil
}

// checkMemberIDs rejects a composition that names the same member twice.
func checkMemberIDs(members []models.UserMonsterInput) error {
	seen := make(map[uint]int, len(members))
	for slot, m := range members {
		if m.ID == nil {
			continue
		}
		if prev, ok := seen[*m.ID]; ok {
			return utils.NewValidationError("user_monsters", "slot %d: member %d already used by slot %d", slot, *m.ID, prev)
		}
		seen[*m.ID] = slot
	}
	return nil
}

func preloadTeam(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Monsters", func(db *gorm.DB) *gorm.DB { return db.Order("slot") }).
		Preload("Monsters.Talent").
		Preload("MagicItem")
}

func createMembers(tx *gorm.DB, teamID uint, members []models.UserMonsterInput) error {
	for slot, in := range members {
		if err := createMember(tx, teamID, slot, in); err != nil {
			return err
		}
	}
	return nil
}

func createMember(tx *gorm.DB, teamID uint, slot int, in models.UserMonsterInput) error {
	talent := in.Talent.Talent()
	if err := tx.Create(&talent).Error; err != nil {
		return fmt.Errorf("failed to create talent for slot %d: %w", slot, err)
	}

	member := models.UserMonster{
		TeamID:        teamID,
		Slot:          slot,
		MonsterID:     in.MonsterID,
		PersonalityID: in.PersonalityID,
		LegacyTypeID:  in.LegacyTypeID,
		Move1ID:       in.Move1ID,
		Move2ID:       in.Move2ID,
		Move3ID:       in.Move3ID,
		Move4ID:       in.Move4ID,
		TalentID:      talent.ID,
	}
	if err := tx.Create(&member).Error; err != nil {
		return fmt.Errorf("failed to create member for slot %d: %w", slot, err)
	}
	return nil
}

// upsertMembers brings a team's members in line with the input. Kept members
// move to negative slots first so the (team_id, slot) index never sees two
// members on one slot while they are reassigned.
func upsertMembers(tx *gorm.DB, teamID uint, members []models.UserMonsterInput) error {
	var existing []models.UserMonster
	if err := tx.Where("team_id = ?", teamID).Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to load members: %w", err)
	}
	byID := make(map[uint]models.UserMonster, len(existing))
	for _, um := range existing {
		byID[um.ID] = um
	}

	kept := make(map[uint]bool, len(members))
	for slot, in := range members {
		if in.ID == nil {
			continue
		}
		if _, ok := byID[*in.ID]; !ok {
			return utils.NewValidationError("user_monsters", "slot %d: member %d does not belong to team %d", slot, *in.ID, teamID)
		}
		kept[*in.ID] = true
	}

	var dropped, keptIDs []uint
	var droppedTalents []uint
	for _, um := range existing {
		if kept[um.ID] {
			keptIDs = append(keptIDs, um.ID)
			continue
		}
		dropped = append(dropped, um.ID)
		droppedTalents = append(droppedTalents, um.TalentID)
	}

	if len(dropped) > 0 {
		if err := tx.Where("id IN ?", dropped).Delete(&models.UserMonster{}).Error; err != nil {
			return fmt.Errorf("failed to delete members: %w", err)
		}
		if err := tx.Where("id IN ?", droppedTalents).Delete(&models.Talent{}).Error; err != nil {
			return fmt.Errorf("failed to delete talents: %w", err)
		}
	}
	if len(keptIDs) > 0 {
		err := tx.Model(&models.UserMonster{}).Where("id IN ?", keptIDs).
			Update("slot", gorm.Expr("-1 - slot")).Error
		if err != nil {
			return fmt.Errorf("failed to release member slots: %w", err)
		}
	}

	for slot, in := range members {
		if in.ID == nil {
			continue
		}
		current := byID[*in.ID]
		err := tx.Model(&models.UserMonster{}).Where("id = ?", current.ID).Updates(map[string]interface{}{
			"slot":           slot,
			"monster_id":     in.MonsterID,
			"personality_id": in.PersonalityID,
			"legacy_type_id": in.LegacyTypeID,
			"move1_id":       in.Move1ID,
			"move2_id":       in.Move2ID,
			"move3_id":       in.Move3ID,
			"move4_id":       in.Move4ID,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update member for slot %d: %w", slot, err)
		}

		talent := in.Talent.Talent()
		talent.ID = current.TalentID
		err = tx.Model(&talent).Select("*").Omit("ID").Updates(talent).Error
		if err != nil {
			return fmt.Errorf("failed to update talent for slot %d: %w", slot, err)
		}
	}

	for slot, in := range members {
		if in.ID != nil {
			continue
		}
		if err := createMember(tx, teamID, slot, in); err != nil {
			return err
		}
	}
	return nil
}

// deleteMembers removes a team's members and then their talents.
func deleteMembers(tx *gorm.DB, teamID uint) error {
	var talentIDs []uint
	if err := tx.Model(&models.UserMonster{}).Where("team_id = ?", teamID).Pluck("talent_id", &talentIDs).Error; err != nil {
		return fmt.Errorf("failed to load member talents: %w", err)
	}
	if err := tx.Where("team_id = ?", teamID).Delete(&models.UserMonster{}).Error; err != nil {
		return fmt.Errorf("failed to delete members: %w", err)
	}
	if len(talentIDs) > 0 {
		if err := tx.Where("id IN ?", talentIDs).Delete(&models.Talent{}).Error; err != nil {
			return fmt.Errorf("failed to delete talents: %w", err)
		}
	}
	return nil
}
