package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jstittsworth/monster-team-builder/internal/analysis"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/pkg/config"
	"github.com/jstittsworth/monster-team-builder/pkg/logger"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AnalyzerConfig is fixed at construction.
type AnalyzerConfig struct {
	// SynergyConcurrency bounds in-flight synergy calls; 1 runs them sequentially.
	SynergyConcurrency int
	EnergyDetector     analysis.EnergyGainDetector
}

func AnalyzerConfigFrom(cfg *config.Config) AnalyzerConfig {
	return AnalyzerConfig{
		SynergyConcurrency: cfg.SynergyConcurrency,
		EnergyDetector:     analysis.DefaultEnergyDetector(),
	}
}

// SynergyAdvisor produces one trait synergy finding per monster. It never fails.
type SynergyAdvisor interface {
	Advise(ctx context.Context, req SynergyRequest) analysis.TraitSynergyFinding
}

// TeamAnalyzer runs the full analysis pipeline for a team.
type TeamAnalyzer struct {
	store   ReferenceStore
	advisor SynergyAdvisor
	teams   *TeamService
	history *AnalysisHistoryService
	cfg     AnalyzerConfig
	logger  *logrus.Logger
}

func NewTeamAnalyzer(store ReferenceStore, advisor SynergyAdvisor, teams *TeamService, history *AnalysisHistoryService, cfg AnalyzerConfig, logger *logrus.Logger) *TeamAnalyzer {
	if cfg.SynergyConcurrency < 1 {
		cfg.SynergyConcurrency = 1
	}
	if cfg.EnergyDetector == nil {
		cfg.EnergyDetector = analysis.DefaultEnergyDetector()
	}
	return &TeamAnalyzer{
		store:   store,
		advisor: advisor,
		teams:   teams,
		history: history,
		cfg:     cfg,
		logger:  logger,
	}
}

// AnalyzeTeam analyzes an inline composition. Members are identified by slot.
func (a *TeamAnalyzer) AnalyzeTeam(ctx context.Context, in models.TeamInput) (*analysis.TeamAnalysisReport, error) {
	return a.analyze(ctx, in, 0)
}

// AnalyzeSavedTeam analyzes a persisted team and stores the report.
func (a *TeamAnalyzer) AnalyzeSavedTeam(ctx context.Context, teamID uint) (*analysis.TeamAnalysisReport, error) {
	team, err := a.teams.Get(ctx, teamID)
	if err != nil {
		return nil, err
	}

	report, err := a.analyze(ctx, team.ToInput(), team.ID)
	if err != nil {
		return nil, err
	}

	if a.history != nil {
		requestID := utils.RequestIDFromContext(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		if _, err := a.history.Record(ctx, requestID, team.ID, report); err != nil {
			a.logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"team_id":    team.ID,
			}).WithError(err).Error("Failed to store analysis history")
		}
	}
	return report, nil
}

func (a *TeamAnalyzer) analyze(ctx context.Context, in models.TeamInput, teamID uint) (*analysis.TeamAnalysisReport, error) {
	log := logger.WithTeamContext(a.logger, utils.RequestIDFromContext(ctx), teamID)

	if err := in.Validate(); err != nil {
		return nil, err
	}

	snap, err := resolveSnapshot(ctx, a.store, in)
	if err != nil {
		return nil, err
	}
	terms, err := a.store.GameTerms(ctx)
	if err != nil {
		return nil, err
	}

	members := snap.members(in)
	ids := make([]uint, len(members))
	stats := make([]analysis.EffectiveStats, len(members))
	profiles := make([]analysis.MoveProfile, len(members))
	for i, m := range members {
		ids[i] = m.ID
		stats[i] = analysis.EvaluateStats(analysis.BaseStatsOf(m.Monster), m.Talent, m.Personality)
		profiles[i] = analysis.EvaluateMoveProfile(m.Moves, a.cfg.EnergyDetector)
	}

	synergies := a.adviseAll(ctx, members, terms)

	coverage := analysis.EvaluateCoverage(snap.chart, members)
	itemEval, itemWarnings := analysis.EvaluateMagicItem(snap.item, snap.chart, members)

	warnings := append([]analysis.DataIntegrityWarning{}, snap.chart.Warnings()...)
	warnings = append(warnings, analysis.CheckMoveCategories(distinctMoves(members))...)
	warnings = append(warnings, itemWarnings...)
	for _, w := range warnings {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	recs := analysis.SynthesizeRecommendations(analysis.RecommendationInput{
		Chart:     snap.chart,
		Members:   members,
		Profiles:  profiles,
		Synergies: synergies,
		Coverage:  coverage,
		MagicItem: itemEval,
	})

	team := snap.echoTeam(in, teamID, members)
	perMonster := make([]analysis.MonsterAnalysis, len(members))
	for i := range members {
		perMonster[i] = analysis.MonsterAnalysis{
			UserMonster:       &team.Monsters[i],
			EffectiveStats:    stats[i],
			EnergyProfile:     profiles[i].Energy,
			CounterCoverage:   profiles[i].Counters,
			DefenseStatusMove: profiles[i].DefenseStatus,
			TraitSynergies:    []analysis.TraitSynergyFinding{synergies[i]},
		}
	}

	log.WithFields(logrus.Fields{
		"recommendations": len(recs),
		"warnings":        len(warnings),
	}).Debug("Team analysis completed")

	return &analysis.TeamAnalysisReport{
		Team:                      team,
		PerMonster:                perMonster,
		TypeCoverage:              coverage,
		MagicItemEval:             itemEval,
		TeamStats:                 analysis.SummarizeTeamStats(ids, stats),
		Recommendations:           analysis.Messages(recs),
		RecommendationsStructured: recs,
		Warnings:                  warnings,
	}, nil
}

// adviseAll issues one synergy call per member, at most SynergyConcurrency
// at a time, and joins them. Findings keep team order.
func (a *TeamAnalyzer) adviseAll(ctx context.Context, members []analysis.Member, terms []models.GameTerm) []analysis.TraitSynergyFinding {
	findings := make([]analysis.TraitSynergyFinding, len(members))

	var g errgroup.Group
	g.SetLimit(a.cfg.SynergyConcurrency)
	for i := range members {
		i, m := i, members[i]
		g.Go(func() error {
			findings[i] = a.advisor.Advise(ctx, SynergyRequest{
				MemberID: m.ID,
				Monster:  m.Monster,
				Moves:    m.Moves,
				Terms:    terms,
			})
			return nil
		})
	}
	_ = g.Wait()

	return findings
}

func distinctMoves(members []analysis.Member) []*models.Move {
	seen := make(map[uint]bool)
	var moves []*models.Move
	for _, m := range members {
		for _, move := range m.Moves {
			if move == nil || seen[move.ID] {
				continue
			}
			seen[move.ID] = true
			moves = append(moves, move)
		}
	}
	return moves
}
