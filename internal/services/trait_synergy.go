package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jstittsworth/monster-team-builder/internal/analysis"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/sirupsen/logrus"
)

// SynergyFallbackMessage is returned in place of advice when generation fails.
const SynergyFallbackMessage = "Error generating analysis."

const synergySystemPrompt = "You are an expert team-building analyst for a monster-collecting battle game. Respond with JSON only, no prose outside the JSON object."

// TextGenerator produces a JSON-only reply for a prompt.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// SynergyCache stores generated suggestions keyed by prompt.
type SynergyCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// SynergyRequest is one monster's input to the advisor.
type SynergyRequest struct {
	MemberID uint
	Monster  *models.Monster
	Moves    [models.MovesPerSlot]*models.Move
	Terms    []models.GameTerm
}

// SynergySuggestion is the decoded generator reply.
type SynergySuggestion struct {
	SynergyMoves   []string `json:"synergy_moves"`
	Recommendation []string `json:"recommendation"`
}

// TraitSynergyAdvisor asks a text generator which moves suit a monster's trait.
// Failures never propagate; they produce the fallback finding.
type TraitSynergyAdvisor struct {
	generator TextGenerator
	cache     SynergyCache
	cacheTTL  time.Duration
	timeout   time.Duration
	logger    *logrus.Logger
}

func NewTraitSynergyAdvisor(generator TextGenerator, cache SynergyCache, cacheTTL, timeout time.Duration, logger *logrus.Logger) *TraitSynergyAdvisor {
	return &TraitSynergyAdvisor{
		generator: generator,
		cache:     cache,
		cacheTTL:  cacheTTL,
		timeout:   timeout,
		logger:    logger,
	}
}

// Advise returns the trait synergy finding for one monster.
func (a *TraitSynergyAdvisor) Advise(ctx context.Context, req SynergyRequest) analysis.TraitSynergyFinding {
	finding := analysis.TraitSynergyFinding{
		MonsterID:    req.MemberID,
		Trait:        traitName(req.Monster),
		SynergyMoves: []uint{},
	}

	prompt := BuildSynergyPrompt(req)
	suggestion, err := a.suggest(ctx, prompt)
	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"member_id": req.MemberID,
			"monster":   monsterName(req.Monster),
			"error":     err.Error(),
		}).Warn("Trait synergy generation failed, using fallback")
		finding.Recommendation = []string{SynergyFallbackMessage}
		return finding
	}

	finding.SynergyMoves = MapMoveNames(suggestion.SynergyMoves, req.Moves)
	finding.Recommendation = suggestion.Recommendation
	if finding.Recommendation == nil {
		finding.Recommendation = []string{}
	}
	return finding
}

func (a *TraitSynergyAdvisor) suggest(ctx context.Context, prompt string) (*SynergySuggestion, error) {
	key := SynergyCacheKey(prompt)
	if a.cache != nil {
		var cached SynergySuggestion
		if err := a.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	if a.generator == nil {
		return nil, errors.New("no text generator configured")
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	raw, err := a.generator.GenerateJSON(callCtx, prompt, synergySystemPrompt)
	if err != nil {
		return nil, err
	}

	suggestion, err := ParseSynergyReply(raw)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, suggestion, a.cacheTTL); err != nil {
			a.logger.WithError(err).Debug("Failed to cache synergy suggestion")
		}
	}
	return suggestion, nil
}

// ParseSynergyReply extracts the JSON object between the first '{' and the last '}'.
func ParseSynergyReply(raw string) (*SynergySuggestion, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, errors.New("no JSON object in reply")
	}

	var suggestion SynergySuggestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &suggestion); err != nil {
		return nil, fmt.Errorf("malformed synergy reply: %w", err)
	}
	return &suggestion, nil
}

// MapMoveNames resolves names to ids by exact match within the selected
// moves. Unknown names are dropped and duplicates collapse.
func MapMoveNames(names []string, moves [models.MovesPerSlot]*models.Move) []uint {
	ids := []uint{}
	seen := make(map[uint]bool)
	for _, name := range names {
		for _, move := range moves {
			if move == nil || move.Name != name || seen[move.ID] {
				continue
			}
			seen[move.ID] = true
			ids = append(ids, move.ID)
			break
		}
	}
	return ids
}

// BuildSynergyPrompt renders the prompt for one monster.
func BuildSynergyPrompt(req SynergyRequest) string {
	var sb strings.Builder

	sb.WriteString("Analyze how this monster's trait works with its selected moves.\n\n")

	sb.WriteString("MONSTER:\n")
	sb.WriteString(fmt.Sprintf("- Name: %s\n", monsterName(req.Monster)))
	if req.Monster != nil {
		sb.WriteString(fmt.Sprintf("- Preferred attack style: %s\n", req.Monster.AttackStyleOrDefault()))
		if req.Monster.Trait != nil {
			sb.WriteString(fmt.Sprintf("- Trait: %s\n", req.Monster.Trait.Name))
			sb.WriteString(fmt.Sprintf("- Trait description: %s\n", req.Monster.Trait.Description))
		}
	}

	sb.WriteString("\nSELECTED MOVES:\n")
	for i, move := range req.Moves {
		if move == nil {
			sb.WriteString(fmt.Sprintf("%d. (empty)\n", i+1))
			continue
		}
		sb.WriteString(fmt.Sprintf("%d. %s [%s, energy %d]: %s\n", i+1, move.Name, move.Category, move.EnergyCost, move.Description))
	}

	if len(req.Terms) > 0 {
		sb.WriteString("\nGLOSSARY:\n")
		for _, term := range req.Terms {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", term.Key, term.Description))
		}
	}

	sb.WriteString("\nReturn a JSON object with exactly these fields:\n")
	sb.WriteString(`{"synergy_moves": ["<exact move names from the list above>"], "recommendation": ["<short advice>"]}`)
	sb.WriteString("\nOnly list moves that directly benefit from or trigger the trait.\n")

	return sb.String()
}

func traitName(m *models.Monster) string {
	if m == nil || m.Trait == nil {
		return ""
	}
	return m.Trait.Name
}

func monsterName(m *models.Monster) string {
	if m == nil {
		return ""
	}
	return m.Name
}
