package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTextGenerator for testing
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateJSON(ctx context.Context, prompt, systemPrompt string) (string, error) {
	args := m.Called(ctx, prompt, systemPrompt)
	return args.String(0), args.Error(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func synergyRequest() SynergyRequest {
	return SynergyRequest{
		MemberID: 2,
		Monster: &models.Monster{
			ID:                   7,
			Name:                 "Flutterfly",
			PreferredAttackStyle: models.AttackStyleMagic,
			Trait:                &models.Trait{Name: "Tailwind", Description: "Gains speed after using a status move."},
		},
		Moves: [4]*models.Move{
			{ID: 11, Name: "Gust", Category: models.CategoryMagicAttack, EnergyCost: 2, Description: "Wind damage."},
			{ID: 12, Name: "Haste", Category: models.CategoryStatus, EnergyCost: 1, Description: "Raises speed."},
			{ID: 13, Name: "Shield", Category: models.CategoryDefense, EnergyCost: 0, Description: "Blocks damage."},
			nil,
		},
		Terms: []models.GameTerm{{Key: "Counter", Description: "Moves that punish the opponent's category."}},
	}
}

func TestBuildSynergyPrompt(t *testing.T) {
	prompt := BuildSynergyPrompt(synergyRequest())

	assert.Contains(t, prompt, "Flutterfly")
	assert.Contains(t, prompt, "Tailwind")
	assert.Contains(t, prompt, "Gains speed after using a status move.")
	assert.Contains(t, prompt, "Preferred attack style: Magic")
	assert.Contains(t, prompt, "2. Haste [STATUS, energy 1]: Raises speed.")
	assert.Contains(t, prompt, "4. (empty)")
	assert.Contains(t, prompt, "- Counter: Moves that punish")
	assert.Contains(t, prompt, `"synergy_moves"`)
}

func TestParseSynergyReply(t *testing.T) {
	got, err := ParseSynergyReply("Sure! {\"synergy_moves\": [\"Haste\"], \"recommendation\": [\"Lead with Haste\"]} Hope that helps.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Haste"}, got.SynergyMoves)
	assert.Equal(t, []string{"Lead with Haste"}, got.Recommendation)

	_, err = ParseSynergyReply("no json here")
	assert.Error(t, err)

	_, err = ParseSynergyReply("{not json}")
	assert.Error(t, err)
}

func TestMapMoveNames(t *testing.T) {
	moves := synergyRequest().Moves
	ids := MapMoveNames([]string{"Haste", "Teleport", "Gust", "Haste", "haste"}, moves)
	assert.Equal(t, []uint{12, 11}, ids)
	assert.Equal(t, []uint{}, MapMoveNames(nil, moves))
}

func TestTraitSynergyAdvisor_Advise(t *testing.T) {
	generator := new(MockTextGenerator)
	generator.On("GenerateJSON", mock.Anything, mock.Anything, synergySystemPrompt).
		Return(`{"synergy_moves": ["Haste", "Unknown Move"], "recommendation": ["Use Haste early."]}`, nil).Once()

	advisor := NewTraitSynergyAdvisor(generator, nil, time.Hour, time.Second, quietLogger())
	finding := advisor.Advise(context.Background(), synergyRequest())

	assert.Equal(t, uint(2), finding.MonsterID)
	assert.Equal(t, "Tailwind", finding.Trait)
	assert.Equal(t, []uint{12}, finding.SynergyMoves)
	assert.Equal(t, []string{"Use Haste early."}, finding.Recommendation)
	generator.AssertExpectations(t)
}

func TestTraitSynergyAdvisor_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"generator error", "", errors.New("circuit open")},
		{"timeout", "", context.DeadlineExceeded},
		{"malformed reply", "I cannot help with that", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := new(MockTextGenerator)
			generator.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(tt.reply, tt.err)

			advisor := NewTraitSynergyAdvisor(generator, nil, time.Hour, time.Second, quietLogger())
			finding := advisor.Advise(context.Background(), synergyRequest())

			assert.Equal(t, []uint{}, finding.SynergyMoves)
			assert.Equal(t, []string{SynergyFallbackMessage}, finding.Recommendation)
		})
	}
}

func TestTraitSynergyAdvisor_NoGenerator(t *testing.T) {
	advisor := NewTraitSynergyAdvisor(nil, nil, time.Hour, time.Second, quietLogger())
	finding := advisor.Advise(context.Background(), synergyRequest())
	assert.Equal(t, []string{SynergyFallbackMessage}, finding.Recommendation)
}

func TestTraitSynergyAdvisor_AppliesTimeout(t *testing.T) {
	generator := new(MockTextGenerator)
	generator.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
		}).
		Return(`{"synergy_moves": [], "recommendation": []}`, nil)

	advisor := NewTraitSynergyAdvisor(generator, nil, time.Hour, 5*time.Second, quietLogger())
	finding := advisor.Advise(context.Background(), synergyRequest())

	assert.Equal(t, []string{}, finding.Recommendation)
}

func TestTraitSynergyAdvisor_CachesSuccessOnly(t *testing.T) {
	cache, _ := newTestCache(t)

	failing := new(MockTextGenerator)
	failing.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("down")).Once()
	NewTraitSynergyAdvisor(failing, cache, time.Hour, time.Second, quietLogger()).Advise(context.Background(), synergyRequest())

	exists, err := cache.Exists(context.Background(), SynergyCacheKey(BuildSynergyPrompt(synergyRequest())))
	require.NoError(t, err)
	assert.False(t, exists)

	generator := new(MockTextGenerator)
	generator.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"synergy_moves": ["Gust"], "recommendation": ["ok"]}`, nil).Once()
	advisor := NewTraitSynergyAdvisor(generator, cache, time.Hour, time.Second, quietLogger())

	first := advisor.Advise(context.Background(), synergyRequest())
	second := advisor.Advise(context.Background(), synergyRequest())

	assert.Equal(t, []uint{11}, first.SynergyMoves)
	assert.Equal(t, first, second)
	generator.AssertNumberOfCalls(t, "GenerateJSON", 1)
}
