package analysis

import (
	"fmt"
	"strings"

	"github.com/jstittsworth/monster-team-builder/internal/models"
)

// HighEnergyCostThreshold is the mean move cost above which a monster gets an
// energy note.
const HighEnergyCostThreshold = 4.0

// MinDefenseStatusMoves is the defense/status move count below which a
// monster gets a survivability note.
const MinDefenseStatusMoves = 2

// RecommendationInput gathers everything the rules read. Profiles and
// Synergies are parallel to Members.
type RecommendationInput struct {
	Chart     *TypeChart
	Members   []Member
	Profiles  []MoveProfile
	Synergies []TraitSynergyFinding
	Coverage  TypeCoverageReport
	MagicItem MagicItemEvaluation
}

type recommender struct {
	in   RecommendationInput
	recs []Recommendation
}

func (r *recommender) add(rec Recommendation) {
	r.recs = append(r.recs, rec)
}

// SynthesizeRecommendations applies the recommendation rules in a fixed
// order. The output order is stable for identical input.
func SynthesizeRecommendations(in RecommendationInput) []Recommendation {
	r := &recommender{in: in}

	r.coverageGaps()
	r.teamWeaknesses()
	r.magicItemUsage()
	r.mainTypeDiversity()
	for i := range in.Members {
		r.memberNotes(i)
	}
	r.attackStyleDiversity()

	if len(r.recs) == 0 {
		r.add(Recommendation{
			Category: CategoryGeneral,
			Severity: SeverityInfo,
			Message:  "Your team looks well-built! No major issues detected.",
		})
	}
	return r.recs
}

// Messages flattens recommendations to their text, preserving order.
func Messages(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.Message
	}
	return out
}

func (r *recommender) coverageGaps() {
	gaps := r.in.Coverage.WeakAgainstTypes
	if len(gaps) == 0 {
		return
	}
	r.add(Recommendation{
		Category: CategoryCoverage,
		Severity: SeverityWarn,
		Message:  fmt.Sprintf("Your team's moves cannot hit these types super-effectively: %s. Consider adding moves that cover them.", r.typeNames(gaps)),
		TypeIDs:  gaps,
	})
}

func (r *recommender) teamWeaknesses() {
	weak := r.in.Coverage.TeamWeakTo
	if len(weak) == 0 {
		return
	}
	r.add(Recommendation{
		Category: CategoryWeakness,
		Severity: SeverityDanger,
		Message:  fmt.Sprintf("Your team is vulnerable to: %s. Consider monsters or moves that resist these types.", r.typeNames(weak)),
		TypeIDs:  weak,
	})
}

func (r *recommender) magicItemUsage() {
	item := r.in.MagicItem.ChosenItem
	if item == nil {
		return
	}
	targets := r.in.MagicItem.ValidTargets
	switch len(targets) {
	case 0:
		r.add(Recommendation{
			Category: CategoryMagicItem,
			Severity: SeverityDanger,
			Message:  fmt.Sprintf("The magic item %s cannot be used by any monster on your team.", item.Name),
		})
	case 1:
		r.add(Recommendation{
			Category:   CategoryMagicItem,
			Severity:   SeverityInfo,
			Message:    fmt.Sprintf("Only %s can use the magic item %s.", r.memberName(targets[0]), item.Name),
			MonsterIDs: targets,
		})
	}
}

func (r *recommender) mainTypeDiversity() {
	var distinct []uint
	seen := make(map[uint]bool)
	for _, m := range r.in.Members {
		if m.Monster == nil || seen[m.Monster.MainTypeID] {
			continue
		}
		seen[m.Monster.MainTypeID] = true
		distinct = append(distinct, m.Monster.MainTypeID)
	}
	if len(distinct) == 0 || len(distinct) > 2 {
		return
	}
	r.add(Recommendation{
		Category: CategoryRoleDiversity,
		Severity: SeverityWarn,
		Message:  fmt.Sprintf("Your team's main types are concentrated in %s. Consider diversifying for broader coverage.", r.typeNames(distinct)),
		TypeIDs:  distinct,
	})
}

func (r *recommender) memberNotes(i int) {
	m := r.in.Members[i]
	if m.Monster == nil || i >= len(r.in.Profiles) {
		return
	}
	name := m.Monster.Name
	profile := r.in.Profiles[i]
	ids := []uint{m.ID}

	if profile.Energy.AvgEnergyCost > HighEnergyCostThreshold {
		r.add(Recommendation{
			Category:   CategoryEnergy,
			Severity:   SeverityWarn,
			Message:    fmt.Sprintf("%s has a high average energy cost (%.2f). Consider adding low-cost or energy-restoring moves.", name, profile.Energy.AvgEnergyCost),
			MonsterIDs: ids,
		})
	}

	if profile.Counters.TotalCounterMoves == 0 {
		r.add(Recommendation{
			Category:   CategoryCounters,
			Severity:   SeverityInfo,
			Message:    fmt.Sprintf("%s has no counter moves and may struggle against predictable opponents.", name),
			MonsterIDs: ids,
		})
	}

	if profile.DefenseStatus.Count < MinDefenseStatusMoves {
		r.add(Recommendation{
			Category:   CategoryDefenseStatus,
			Severity:   SeverityWarn,
			Message:    fmt.Sprintf("%s has only %d defense/status move(s). Consider adding more for survivability.", name, profile.DefenseStatus.Count),
			MonsterIDs: ids,
			MoveIDs:    profile.DefenseStatus.MoveIDs,
		})
	}

	if i < len(r.in.Synergies) {
		finding := r.in.Synergies[i]
		if len(finding.SynergyMoves) > 0 {
			r.add(Recommendation{
				Category:   CategoryTraitSynergy,
				Severity:   SeverityInfo,
				Message:    fmt.Sprintf("%s's trait %s synergizes well with: %s.", name, finding.Trait, moveNames(m, finding.SynergyMoves)),
				MonsterIDs: ids,
				MoveIDs:    finding.SynergyMoves,
			})
		}
	}
}

func (r *recommender) attackStyleDiversity() {
	if len(r.in.Members) == 0 {
		return
	}
	var style models.AttackStyle
	var ids []uint
	for i, m := range r.in.Members {
		if m.Monster == nil {
			return
		}
		s := m.Monster.AttackStyleOrDefault()
		if i == 0 {
			style = s
		} else if s != style {
			return
		}
		ids = append(ids, m.ID)
	}
	r.add(Recommendation{
		Category:   CategoryRoleDiversity,
		Severity:   SeverityWarn,
		Message:    fmt.Sprintf("Every monster prefers %s attacks, which makes your strategy predictable. Consider mixing attack styles.", style),
		MonsterIDs: ids,
	})
}

func (r *recommender) typeNames(ids []uint) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		if r.in.Chart != nil {
			names[i] = r.in.Chart.Name(id)
		} else {
			names[i] = fmt.Sprintf("type %d", id)
		}
	}
	return strings.Join(names, ", ")
}

func (r *recommender) memberName(id uint) string {
	for _, m := range r.in.Members {
		if m.ID == id && m.Monster != nil {
			return m.Monster.Name
		}
	}
	return fmt.Sprintf("monster %d", id)
}

func moveNames(m Member, ids []uint) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		for _, move := range m.Moves {
			if move != nil && move.ID == id {
				names = append(names, move.Name)
				break
			}
		}
	}
	return strings.Join(names, ", ")
}
