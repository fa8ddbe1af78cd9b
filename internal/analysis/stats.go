package analysis

import (
	"math"

	"github.com/jstittsworth/monster-team-builder/internal/models"
)

// CalculateHP applies the HP formula. Rounding happens twice: once on the
// raw value and once after the personality modifier, before the flat bonus.
// math.Round rounds half away from zero.
func CalculateHP(base, boost int, pct float64) int {
	b := float64(base)
	t := float64(boost)

	hp := math.Round(1.7*(b+t*6) + 70 - 2.55*t)
	hp = math.Round(hp*(1+pct)) + 100
	return int(hp)
}

// CalculateStat applies the formula shared by the five non-HP stats.
func CalculateStat(base, boost int, pct float64) int {
	b := float64(base)
	t := float64(boost)

	v := math.Round(1.1*(b+t*6) + 10)
	v = math.Round(v*(1+pct)) + 50
	return int(v)
}

// EvaluateStats computes all six effective stats. The talent is assumed to
// have passed validation.
func EvaluateStats(base BaseStats, talent models.Talent, p *models.Personality) EffectiveStats {
	var mod models.Personality
	if p != nil {
		mod = *p
	}

	return EffectiveStats{
		HP:     CalculateHP(base.HP, talent.HPBoost, mod.HPModPct),
		PhyAtk: CalculateStat(base.PhyAtk, talent.PhyAtkBoost, mod.PhyAtkModPct),
		MagAtk: CalculateStat(base.MagAtk, talent.MagAtkBoost, mod.MagAtkModPct),
		PhyDef: CalculateStat(base.PhyDef, talent.PhyDefBoost, mod.PhyDefModPct),
		MagDef: CalculateStat(base.MagDef, talent.MagDefBoost, mod.MagDefModPct),
		Spd:    CalculateStat(base.Spd, talent.SpdBoost, mod.SpdModPct),
	}
}
