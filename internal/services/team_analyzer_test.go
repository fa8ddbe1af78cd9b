package services

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/jstittsworth/monster-team-builder/internal/analysis"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type TeamAnalyzerSuite struct {
	suite.Suite
	db       *database.DB
	advisor  *stubAdvisor
	teams    *TeamService
	history  *AnalysisHistoryService
	analyzer *TeamAnalyzer
}

func TestTeamAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(TeamAnalyzerSuite))
}

func (s *TeamAnalyzerSuite) SetupTest() {
	s.db = newTestDB(s.T())
	seedReference(s.T(), s.db)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := NewGormReferenceStore(s.db)
	s.advisor = &stubAdvisor{}
	s.teams = NewTeamService(s.db, store, logger)
	s.history = NewAnalysisHistoryService(s.db, logger, 24*time.Hour, "@daily")
	s.analyzer = NewTeamAnalyzer(store, s.advisor, s.teams, s.history, AnalyzerConfig{SynergyConcurrency: 6}, logger)
}

func (s *TeamAnalyzerSuite) TestAnalyzeTeam_Report() {
	report, err := s.analyzer.AnalyzeTeam(context.Background(), sampleTeam())
	s.Require().NoError(err)

	s.Require().Len(report.PerMonster, models.TeamSize)
	s.Equal(uint(0), report.Team.ID)
	s.Equal("Starter Squad", report.Team.Name)
	s.Equal("Spell Book", report.Team.MagicItem.Name)

	first := report.PerMonster[0]
	s.Equal(uint(0), first.UserMonster.ID)
	s.Equal("Cinder", first.UserMonster.Monster.Name)
	s.Equal("Kindle", first.UserMonster.Monster.Trait.Name)
	s.Equal("Ember Strike", first.UserMonster.Move1.Name)
	s.Equal(analysis.EffectiveStats{HP: 417, PhyAtk: 247, MagAtk: 138, PhyDef: 137, MagDef: 137, Spd: 192}, first.EffectiveStats)

	s.Equal(1.5, first.EnergyProfile.AvgEnergyCost)
	s.Equal([]uint{5}, first.EnergyProfile.ZeroCostMoves)
	s.Equal([]uint{5}, first.EnergyProfile.EnergyRestoreMoves)
	s.Equal([]uint{6}, first.CounterCoverage.CounterMoveIDs)
	s.Equal(2, first.DefenseStatusMove.Count)

	s.Require().Len(first.TraitSynergies, 1)
	s.Equal([]uint{1}, first.TraitSynergies[0].SynergyMoves)
	s.Equal(uint(5), report.PerMonster[5].UserMonster.ID)

	s.Equal([]uint{typeFire, typeGrass, typeGround}, report.TypeCoverage.EffectiveAgainstTypes)
	s.Equal([]uint{typeWater, typeElectric}, report.TypeCoverage.WeakAgainstTypes)
	s.Equal([]uint{typeFire, typeWater, typeGrass, typeGround, typeElectric}, report.TypeCoverage.TeamWeakTo)

	s.Equal([]uint{0, 1, 2, 3, 4, 5}, report.MagicItemEval.ValidTargets)
	s.Nil(report.MagicItemEval.BestTargetMonsterID)
	s.Nil(report.MagicItemEval.Reasoning)

	s.Equal(417.0, report.TeamStats.HP.Mean)
	s.Equal(0.0, report.TeamStats.HP.StdDev)

	var categories []string
	for _, rec := range report.RecommendationsStructured {
		categories = append(categories, rec.Category)
	}
	s.Equal([]string{analysis.CategoryCoverage, analysis.CategoryWeakness, analysis.CategoryTraitSynergy}, categories)
	s.Equal(analysis.Messages(report.RecommendationsStructured), report.Recommendations)
	s.Empty(report.Warnings)
}

func (s *TeamAnalyzerSuite) TestAnalyzeTeam_Idempotent() {
	first, err := s.analyzer.AnalyzeTeam(context.Background(), sampleTeam())
	s.Require().NoError(err)
	second, err := s.analyzer.AnalyzeTeam(context.Background(), sampleTeam())
	s.Require().NoError(err)

	a, err := json.Marshal(first)
	s.Require().NoError(err)
	b, err := json.Marshal(second)
	s.Require().NoError(err)
	s.JSONEq(string(a), string(b))
}

func (s *TeamAnalyzerSuite) TestAnalyzeTeam_ValidationError() {
	in := sampleTeam()
	in.UserMonsters = in.UserMonsters[:5]

	_, err := s.analyzer.AnalyzeTeam(context.Background(), in)
	s.ErrorIs(err, utils.ErrInvalidInput)

	in = sampleTeam()
	in.UserMonsters[2].Talent = models.TalentInput{}
	_, err = s.analyzer.AnalyzeTeam(context.Background(), in)
	s.ErrorIs(err, utils.ErrInvalidInput)
	s.Zero(s.advisor.calls)
}

func (s *TeamAnalyzerSuite) TestAnalyzeTeam_NotFound() {
	tests := []struct {
		name   string
		mutate func(*models.TeamInput)
		entity string
		ids    []uint
	}{
		{"monster", func(in *models.TeamInput) { in.UserMonsters[1].MonsterID = 99; in.UserMonsters[4].MonsterID = 42 }, "monster", []uint{42, 99}},
		{"move", func(in *models.TeamInput) { in.UserMonsters[0].Move4ID = 77 }, "move", []uint{77}},
		{"personality", func(in *models.TeamInput) { in.UserMonsters[3].PersonalityID = 8 }, "personality", []uint{8}},
		{"legacy type", func(in *models.TeamInput) { in.UserMonsters[5].LegacyTypeID = 12 }, "type", []uint{12}},
		{"magic item", func(in *models.TeamInput) { in.MagicItemID = 50 }, "magic item", []uint{50}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := sampleTeam()
			tt.mutate(&in)

			_, err := s.analyzer.AnalyzeTeam(context.Background(), in)
			s.Require().ErrorIs(err, utils.ErrNotFound)

			var nf *utils.NotFoundError
			s.Require().ErrorAs(err, &nf)
			s.Equal(tt.entity, nf.Entity)
			s.Equal(tt.ids, nf.IDs)
		})
	}
}

func (s *TeamAnalyzerSuite) TestAnalyzeTeam_UnknownEffectCodeWarns() {
	in := sampleTeam()
	in.MagicItemID = 3

	report, err := s.analyzer.AnalyzeTeam(context.Background(), in)
	s.Require().NoError(err)

	s.Empty(report.MagicItemEval.ValidTargets)
	s.Require().Len(report.Warnings, 1)
	s.Equal(analysis.WarnUnknownEffectCode, report.Warnings[0].Code)
	s.Equal(analysis.CategoryMagicItem, report.RecommendationsStructured[2].Category)
}

func (s *TeamAnalyzerSuite) TestAnalyzeTeam_SynergyConcurrencyLimit() {
	for _, limit := range []int{1, 6} {
		advisor := &stubAdvisor{delay: 20 * time.Millisecond}
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		analyzer := NewTeamAnalyzer(NewGormReferenceStore(s.db), advisor, s.teams, nil, AnalyzerConfig{SynergyConcurrency: limit}, logger)

		report, err := analyzer.AnalyzeTeam(context.Background(), sampleTeam())
		s.Require().NoError(err)

		s.Equal(models.TeamSize, advisor.calls)
		s.LessOrEqual(advisor.peak, limit)
		for i, pm := range report.PerMonster {
			s.Equal(uint(i), pm.TraitSynergies[0].MonsterID)
		}
	}
}

func (s *TeamAnalyzerSuite) TestAnalyzeSavedTeam() {
	team, err := s.teams.Create(context.Background(), sampleTeam())
	s.Require().NoError(err)

	ctx := utils.ContextWithRequestID(context.Background(), "req-123")
	report, err := s.analyzer.AnalyzeSavedTeam(ctx, team.ID)
	s.Require().NoError(err)

	s.Equal(team.ID, report.Team.ID)
	for i, pm := range report.PerMonster {
		s.Equal(team.Monsters[i].ID, pm.UserMonster.ID)
		s.Equal(team.Monsters[i].ID, pm.TraitSynergies[0].MonsterID)
	}

	stored, err := s.history.List(context.Background(), team.ID, 10)
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Equal("req-123", stored[0].RequestID)
	s.Equal(len(report.Recommendations), stored[0].RecommendationCount)

	var decoded analysis.TeamAnalysisReport
	s.Require().NoError(json.Unmarshal(stored[0].Report, &decoded))
	s.Equal(report.Recommendations, decoded.Recommendations)
}

func (s *TeamAnalyzerSuite) TestAnalyzeSavedTeam_NotFound() {
	_, err := s.analyzer.AnalyzeSavedTeam(context.Background(), 404)
	s.ErrorIs(err, utils.ErrNotFound)
}
