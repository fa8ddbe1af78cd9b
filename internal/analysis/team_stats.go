package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// StatSpread describes one stat across the team.
type StatSpread struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          int     `json:"min"`
	Max          int     `json:"max"`
	TopMonsterID uint    `json:"top_monster_id"`
}

type TeamStatSummary struct {
	HP     StatSpread `json:"hp"`
	PhyAtk StatSpread `json:"phy_atk"`
	MagAtk StatSpread `json:"mag_atk"`
	PhyDef StatSpread `json:"phy_def"`
	MagDef StatSpread `json:"mag_def"`
	Spd    StatSpread `json:"spd"`
}

// SummarizeTeamStats computes mean and sample standard deviation for each
// effective stat. ids and stats are parallel; ties for the top value go to
// the earlier member.
func SummarizeTeamStats(ids []uint, stats []EffectiveStats) TeamStatSummary {
	var summary TeamStatSummary
	if len(stats) == 0 || len(ids) != len(stats) {
		return summary
	}

	targets := [6]*StatSpread{&summary.HP, &summary.PhyAtk, &summary.MagAtk, &summary.PhyDef, &summary.MagDef, &summary.Spd}
	values := make([]float64, len(stats))

	for idx, target := range targets {
		best := 0
		for i, s := range stats {
			v := s.Values()[idx]
			values[i] = float64(v)
			if v > stats[best].Values()[idx] {
				best = i
			}
		}

		mean, std := stat.MeanStdDev(values, nil)
		if len(values) < 2 {
			std = 0
		}
		target.Mean = round2(mean)
		target.StdDev = round2(std)
		target.Min = int(minOf(values))
		target.Max = stats[best].Values()[idx]
		target.TopMonsterID = ids[best]
	}

	return summary
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
