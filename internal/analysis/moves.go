package analysis

import (
	"fmt"
	"math"

	"github.com/jstittsworth/monster-team-builder/internal/models"
)

// EvaluateEnergyProfile averages energy cost over present moves and flags
// free and energy-granting moves. Nil slots are skipped.
func EvaluateEnergyProfile(moves [models.MovesPerSlot]*models.Move, detector EnergyGainDetector) EnergyProfile {
	if detector == nil {
		detector = DefaultEnergyDetector()
	}

	profile := EnergyProfile{
		ZeroCostMoves:      []uint{},
		EnergyRestoreMoves: []uint{},
	}

	total, present := 0, 0
	for _, move := range moves {
		if move == nil {
			continue
		}
		total += move.EnergyCost
		present++

		if move.EnergyCost == 0 {
			profile.ZeroCostMoves = append(profile.ZeroCostMoves, move.ID)
		}
		if detector.GrantsEnergy(move.Description) {
			profile.EnergyRestoreMoves = append(profile.EnergyRestoreMoves, move.ID)
		}
	}

	if present > 0 {
		avg := float64(total) / float64(present)
		profile.AvgEnergyCost = math.Round(avg*100) / 100
	}
	profile.HasZeroCostMove = len(profile.ZeroCostMoves) > 0
	profile.HasEnergyRestoreMove = len(profile.EnergyRestoreMoves) > 0

	return profile
}

// EvaluateCounterCoverage groups counter-flagged moves by category.
func EvaluateCounterCoverage(moves [models.MovesPerSlot]*models.Move) CounterCoverage {
	coverage := CounterCoverage{CounterMoveIDs: []uint{}}

	for _, move := range moves {
		if move == nil || !move.HasCounter {
			continue
		}
		coverage.TotalCounterMoves++
		coverage.CounterMoveIDs = append(coverage.CounterMoveIDs, move.ID)

		switch {
		case move.Category.IsAttack():
			coverage.HasAttackCounterStatus = true
		case move.Category.IsDefense():
			coverage.HasDefenseCounterAttack = true
		case move.Category.IsStatus():
			coverage.HasStatusCounterDefense = true
		}
	}

	return coverage
}

// EvaluateDefenseStatus counts defense and status category moves.
func EvaluateDefenseStatus(moves [models.MovesPerSlot]*models.Move) DefenseStatusMove {
	result := DefenseStatusMove{MoveIDs: []uint{}}
	for _, move := range moves {
		if move == nil {
			continue
		}
		if move.Category.IsDefense() || move.Category.IsStatus() {
			result.Count++
			result.MoveIDs = append(result.MoveIDs, move.ID)
		}
	}
	return result
}

// EvaluateMoveProfile runs all three move analyses over one monster's slots.
func EvaluateMoveProfile(moves [models.MovesPerSlot]*models.Move, detector EnergyGainDetector) MoveProfile {
	return MoveProfile{
		Energy:        EvaluateEnergyProfile(moves, detector),
		Counters:      EvaluateCounterCoverage(moves),
		DefenseStatus: EvaluateDefenseStatus(moves),
	}
}

// CheckMoveCategories reports moves whose stored category is outside the
// known set. Such moves count toward energy but toward no category.
func CheckMoveCategories(moves []*models.Move) []DataIntegrityWarning {
	var warnings []DataIntegrityWarning
	for _, move := range moves {
		if move == nil {
			continue
		}
		if _, ok := move.Category.Canonical(); !ok {
			warnings = append(warnings, DataIntegrityWarning{
				Code:    WarnUnknownMoveCategory,
				Message: fmt.Sprintf("move %d (%s) has unknown category %q", move.ID, move.Name, move.Category),
			})
		}
	}
	return warnings
}
