package services

import (
	"context"

	"github.com/jstittsworth/monster-team-builder/internal/analysis"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
)

// snapshot is the reference data one composition refers to, loaded once at
// the start of a request and read-only afterwards.
type snapshot struct {
	monsters      map[uint]*models.Monster
	moves         map[uint]*models.Move
	personalities map[uint]*models.Personality
	item          *models.MagicItem
	types         map[uint]*models.Type
	chart         *analysis.TypeChart
}

// resolveSnapshot loads every entity a composition references and fails
// with a NotFoundError naming the first entity kind that has unknown ids.
func resolveSnapshot(ctx context.Context, store ReferenceStore, in models.TeamInput) (*snapshot, error) {
	var monsterIDs, moveIDs, personalityIDs, typeIDs []uint
	for _, um := range in.UserMonsters {
		monsterIDs = append(monsterIDs, um.MonsterID)
		personalityIDs = append(personalityIDs, um.PersonalityID)
		typeIDs = append(typeIDs, um.LegacyTypeID)
		for _, id := range um.MoveIDs() {
			moveIDs = append(moveIDs, id)
		}
	}

	monsters, err := store.MonstersByIDs(ctx, uniqueIDs(monsterIDs))
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(monsterIDs, monsters); len(missing) > 0 {
		return nil, utils.NewNotFoundError("monster", missing...)
	}

	moves, err := store.MovesByIDs(ctx, uniqueIDs(moveIDs))
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(moveIDs, moves); len(missing) > 0 {
		return nil, utils.NewNotFoundError("move", missing...)
	}

	personalities, err := store.PersonalitiesByIDs(ctx, uniqueIDs(personalityIDs))
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(personalityIDs, personalities); len(missing) > 0 {
		return nil, utils.NewNotFoundError("personality", missing...)
	}

	chartTypes, err := store.TypeChart(ctx)
	if err != nil {
		return nil, err
	}
	types := make(map[uint]*models.Type, len(chartTypes))
	for i := range chartTypes {
		types[chartTypes[i].ID] = &chartTypes[i]
	}
	if missing := missingIDs(typeIDs, types); len(missing) > 0 {
		return nil, utils.NewNotFoundError("type", missing...)
	}

	item, err := store.MagicItemByID(ctx, in.MagicItemID)
	if err != nil {
		return nil, err
	}

	return &snapshot{
		monsters:      monsters,
		moves:         moves,
		personalities: personalities,
		item:          item,
		types:         types,
		chart:         analysis.NewTypeChart(chartTypes),
	}, nil
}

// members builds the analysis view of each slot. Persisted members keep
// their id; inline members are identified by slot index.
func (s *snapshot) members(in models.TeamInput) []analysis.Member {
	members := make([]analysis.Member, len(in.UserMonsters))
	for i, um := range in.UserMonsters {
		id := uint(i)
		if um.ID != nil {
			id = *um.ID
		}

		var moves [models.MovesPerSlot]*models.Move
		for j, moveID := range um.MoveIDs() {
			moves[j] = s.moves[moveID]
		}

		members[i] = analysis.Member{
			ID:          id,
			Monster:     s.monsters[um.MonsterID],
			Personality: s.personalities[um.PersonalityID],
			LegacyType:  um.LegacyTypeID,
			Talent:      um.Talent.Talent(),
			Moves:       moves,
		}
	}
	return members
}

// echoTeam rebuilds the submitted team with nested entity detail.
func (s *snapshot) echoTeam(in models.TeamInput, teamID uint, members []analysis.Member) *models.Team {
	team := &models.Team{
		ID:          teamID,
		Name:        in.Name,
		MagicItemID: in.MagicItemID,
		MagicItem:   s.item,
		Monsters:    make([]models.UserMonster, len(in.UserMonsters)),
	}
	for i, um := range in.UserMonsters {
		talent := um.Talent.Talent()
		team.Monsters[i] = models.UserMonster{
			ID:            members[i].ID,
			TeamID:        teamID,
			Slot:          i,
			MonsterID:     um.MonsterID,
			Monster:       s.monsters[um.MonsterID],
			PersonalityID: um.PersonalityID,
			Personality:   s.personalities[um.PersonalityID],
			LegacyTypeID:  um.LegacyTypeID,
			LegacyType:    s.types[um.LegacyTypeID],
			Move1ID:       um.Move1ID,
			Move1:         s.moves[um.Move1ID],
			Move2ID:       um.Move2ID,
			Move2:         s.moves[um.Move2ID],
			Move3ID:       um.Move3ID,
			Move3:         s.moves[um.Move3ID],
			Move4ID:       um.Move4ID,
			Move4:         s.moves[um.Move4ID],
			Talent:        &talent,
		}
	}
	return team
}
