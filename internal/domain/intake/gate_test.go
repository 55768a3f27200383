package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
)

func turnWith(score float64, meta map[string]any) casefile.Turn {
	return casefile.Turn{Score: score, Metadata: meta}
}

func TestGateEmptyHistory(t *testing.T) {
	g := NewGate(0)

	got := g.Evaluate(nil)

	assert.Equal(t, DecisionInsufficient, got.Decision)
	assert.Equal(t, 0.0, got.Score)
}

func TestGateScoreBelowThreshold(t *testing.T) {
	g := NewGate(0.8)

	got := g.Evaluate([]casefile.Turn{turnWith(0.79, map[string]any{
		"employer_address": "0xemp",
		"coworker_address": "0xcow",
	})})

	assert.Equal(t, DecisionInsufficient, got.Decision)
	assert.Equal(t, 0.79, got.Score)
	assert.Empty(t, got.MissingFields)
}

func TestGateThresholdIsInclusive(t *testing.T) {
	g := NewGate(0.8)

	got := g.Evaluate([]casefile.Turn{turnWith(0.8, map[string]any{
		"employer_address": "0xemp",
		"coworker_address": "0xcow",
	})})

	assert.Equal(t, DecisionReady, got.Decision)
	assert.Equal(t, "0xemp", got.Employer)
	assert.Equal(t, "0xcow", got.Coworker)
}

func TestGateMissingIdentityFields(t *testing.T) {
	g := NewGate(0.8)

	tests := []struct {
		name    string
		meta    map[string]any
		missing []string
	}{
		{"both missing", map[string]any{}, []string{"employer_address", "coworker_address"}},
		{"employer missing", map[string]any{"coworker_address": "0xcow"}, []string{"employer_address"}},
		{"coworker missing", map[string]any{"employer_address": "0xemp"}, []string{"coworker_address"}},
		{"empty string counts as missing", map[string]any{"employer_address": "", "coworker_address": "0xcow"}, []string{"employer_address"}},
		{"non-string counts as missing", map[string]any{"employer_address": 42, "coworker_address": "0xcow"}, []string{"employer_address"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Evaluate([]casefile.Turn{turnWith(0.9, tt.meta)})
			assert.Equal(t, DecisionMissingData, got.Decision)
			assert.Equal(t, tt.missing, got.MissingFields)
		})
	}
}

func TestGateOnlyLastTurnMatters(t *testing.T) {
	g := NewGate(0.8)

	history := []casefile.Turn{
		turnWith(0.95, map[string]any{"employer_address": "0xemp", "coworker_address": "0xcow"}),
		turnWith(0.3, nil),
	}

	got := g.Evaluate(history)

	assert.Equal(t, DecisionInsufficient, got.Decision)
	assert.Equal(t, 0.3, got.Score)
}

func TestGateDefaultThreshold(t *testing.T) {
	g := NewGate(-1)

	got := g.Evaluate([]casefile.Turn{turnWith(0.75, map[string]any{
		"employer_address": "0xemp",
		"coworker_address": "0xcow",
	})})

	assert.Equal(t, DecisionInsufficient, got.Decision)
}
