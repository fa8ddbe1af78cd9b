package analysis

import (
	"fmt"
	"regexp"
)

// EnergyGainDetector classifies move text as granting energy to its user.
type EnergyGainDetector interface {
	GrantsEnergy(description string) bool
}

// DefaultEnergyPatterns match phrasings such as "gains 2 energy",
// "restores energy" and "steals 1 energy". This is a text heuristic over
// move descriptions, not game data.
var DefaultEnergyPatterns = []string{
	`(?i)\bgains?\s+(?:\d+\s+)?energy\b`,
	`(?i)\brestores?\s+(?:\d+\s+)?energy\b`,
	`(?i)\bsteals?\s+(?:\d+\s+)?energy\b`,
}

// RegexEnergyDetector matches a description against a fixed set of patterns.
type RegexEnergyDetector struct {
	patterns []*regexp.Regexp
}

func NewRegexEnergyDetector(patterns ...string) (*RegexEnergyDetector, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid energy pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &RegexEnergyDetector{patterns: compiled}, nil
}

func (d *RegexEnergyDetector) GrantsEnergy(description string) bool {
	for _, re := range d.patterns {
		if re.MatchString(description) {
			return true
		}
	}
	return false
}

var defaultEnergyDetector = mustRegexEnergyDetector(DefaultEnergyPatterns...)

// DefaultEnergyDetector returns the detector built from DefaultEnergyPatterns.
func DefaultEnergyDetector() EnergyGainDetector {
	return defaultEnergyDetector
}

func mustRegexEnergyDetector(patterns ...string) *RegexEnergyDetector {
	d, err := NewRegexEnergyDetector(patterns...)
	if err != nil {
		panic(err)
	}
	return d
}
