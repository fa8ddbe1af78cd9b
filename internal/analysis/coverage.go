package analysis

import (
	"fmt"
	"sort"

	"github.com/jstittsworth/monster-team-builder/internal/models"
)

type typeSet map[uint]struct{}

func (s typeSet) has(id uint) bool {
	_, ok := s[id]
	return ok
}

func (s typeSet) add(id uint) {
	s[id] = struct{}{}
}

func (s typeSet) sorted() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TypeRelations holds one type's four relation sets as id sets.
type TypeRelations struct {
	Name             string
	EffectiveAgainst typeSet
	WeakAgainst      typeSet
	VulnerableTo     typeSet
	ResistantTo      typeSet
}

// TypeChart is an immutable snapshot of the type universe and its relations.
type TypeChart struct {
	types    map[uint]*TypeRelations
	byName   map[string]uint
	warnings []DataIntegrityWarning
}

// NewTypeChart builds a chart from types loaded with their relation sets.
// Relations that point outside the loaded universe are dropped and reported.
func NewTypeChart(types []models.Type) *TypeChart {
	chart := &TypeChart{
		types:  make(map[uint]*TypeRelations, len(types)),
		byName: make(map[string]uint, len(types)),
	}
	for _, t := range types {
		chart.types[t.ID] = &TypeRelations{Name: t.Name}
		chart.byName[t.Name] = t.ID
	}

	for _, t := range types {
		rel := chart.types[t.ID]
		rel.EffectiveAgainst = chart.relationSet(t, "effective_against", t.EffectiveAgainst)
		rel.WeakAgainst = chart.relationSet(t, "weak_against", t.WeakAgainst)
		rel.VulnerableTo = chart.relationSet(t, "vulnerable_to", t.VulnerableTo)
		rel.ResistantTo = chart.relationSet(t, "resistant_to", t.ResistantTo)
	}
	return chart
}

func (c *TypeChart) relationSet(owner models.Type, relation string, targets []*models.Type) typeSet {
	set := make(typeSet, len(targets))
	for _, target := range targets {
		if target == nil {
			continue
		}
		if _, ok := c.types[target.ID]; !ok {
			c.warnings = append(c.warnings, DataIntegrityWarning{
				Code:    WarnDanglingTypeRef,
				Message: fmt.Sprintf("type %d (%s) %s references unknown type %d", owner.ID, owner.Name, relation, target.ID),
			})
			continue
		}
		set.add(target.ID)
	}
	return set
}

// Warnings returns problems found while building the chart.
func (c *TypeChart) Warnings() []DataIntegrityWarning {
	return c.warnings
}

// Has reports whether id is part of the universe.
func (c *TypeChart) Has(id uint) bool {
	_, ok := c.types[id]
	return ok
}

// Relations returns the relation sets for a type, or nil if unknown.
func (c *TypeChart) Relations(id uint) *TypeRelations {
	return c.types[id]
}

// Name returns a type's name, or a placeholder for unknown ids.
func (c *TypeChart) Name(id uint) string {
	if rel, ok := c.types[id]; ok {
		return rel.Name
	}
	return fmt.Sprintf("type %d", id)
}

// IDByName looks up a type by exact name.
func (c *TypeChart) IDByName(name string) (uint, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Universe returns every type id in ascending order.
func (c *TypeChart) Universe() []uint {
	set := make(typeSet, len(c.types))
	for id := range c.types {
		set.add(id)
	}
	return set.sorted()
}

// Len is the size of the type universe.
func (c *TypeChart) Len() int {
	return len(c.types)
}

// EvaluateCoverage computes offensive gaps and shared defensive weaknesses.
func EvaluateCoverage(chart *TypeChart, members []Member) TypeCoverageReport {
	effective := make(typeSet)
	for _, member := range members {
		for _, move := range member.Moves {
			if move == nil || move.MoveTypeID == nil {
				continue
			}
			rel := chart.Relations(*move.MoveTypeID)
			if rel == nil {
				continue
			}
			for id := range rel.EffectiveAgainst {
				effective.add(id)
			}
		}
	}

	weak := make(typeSet)
	for _, id := range chart.Universe() {
		if !effective.has(id) {
			weak.add(id)
		}
	}

	teamWeak := make(typeSet)
	for _, member := range members {
		if member.Monster == nil {
			continue
		}
		for _, attacker := range memberWeaknesses(chart, member.Monster) {
			teamWeak.add(attacker)
		}
	}

	return TypeCoverageReport{
		EffectiveAgainstTypes: effective.sorted(),
		WeakAgainstTypes:      weak.sorted(),
		TeamWeakTo:            teamWeak.sorted(),
	}
}

// memberWeaknesses returns attacking types that hit a monster's main/sub
// type combination without being cancelled. A type counts when both of the
// monster's types are vulnerable to it, or when exactly one is and the other
// neither resists it nor is vulnerable to it.
func memberWeaknesses(chart *TypeChart, m *models.Monster) []uint {
	main := chart.Relations(m.MainTypeID)
	if main == nil {
		return nil
	}
	var sub *TypeRelations
	if m.SubTypeID != nil {
		sub = chart.Relations(*m.SubTypeID)
	}

	var weak []uint
	for _, attacker := range chart.Universe() {
		mainWeak := main.VulnerableTo.has(attacker)
		mainResist := main.ResistantTo.has(attacker)
		subWeak := sub != nil && sub.VulnerableTo.has(attacker)
		subResist := sub != nil && sub.ResistantTo.has(attacker)

		if (mainWeak && subWeak) ||
			(mainWeak && !subResist && !subWeak) ||
			(subWeak && !mainResist && !mainWeak) {
			weak = append(weak, attacker)
		}
	}
	return weak
}
