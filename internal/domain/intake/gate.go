package intake

import "github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"

// DefaultScoreThreshold is the completeness score at or above which a
// conversation is considered ready for contract generation.
const DefaultScoreThreshold = 0.8

// Decision is the outcome of a gate evaluation.
type Decision string

const (
	DecisionReady        Decision = "ready"
	DecisionInsufficient Decision = "insufficient"
	DecisionMissingData  Decision = "missing_data"
)

// GateResult reports whether a conversation may advance to contract
// generation, and which identity fields are missing when it may not.
type GateResult struct {
	Decision      Decision
	Score         float64
	MissingFields []string
	Employer      string
	Coworker      string
}

// Gate decides readiness from the last turn of a conversation.
type Gate struct {
	threshold float64
}

// NewGate returns a gate with the given score threshold. A non-positive
// threshold falls back to the default.
func NewGate(threshold float64) *Gate {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	return &Gate{threshold: threshold}
}

// Evaluate inspects the final turn of the history. The score must meet the
// threshold and both party addresses must be present in the turn metadata.
func (g *Gate) Evaluate(history []casefile.Turn) GateResult {
	last := casefile.LastTurn(history)
	if last == nil {
		return GateResult{Decision: DecisionInsufficient, Score: 0}
	}

	if last.Score < g.threshold {
		return GateResult{Decision: DecisionInsufficient, Score: last.Score}
	}

	employer := last.MetadataString(MetadataEmployerAddress)
	coworker := last.MetadataString(MetadataCoworkerAddress)

	var missing []string
	if employer == "" {
		missing = append(missing, MetadataEmployerAddress)
	}
	if coworker == "" {
		missing = append(missing, MetadataCoworkerAddress)
	}
	if len(missing) > 0 {
		return GateResult{Decision: DecisionMissingData, Score: last.Score, MissingFields: missing}
	}

	return GateResult{
		Decision: DecisionReady,
		Score:    last.Score,
		Employer: employer,
		Coworker: coworker,
	}
}
