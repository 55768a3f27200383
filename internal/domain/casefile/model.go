package casefile

import "time"

// Status represents the lifecycle of a case.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// AgentName identifies the intake agent that owns every case in this service.
const AgentName = "claudio"

// Case binds one user identity to one ongoing intake conversation and its
// eventual contract artifact.
type Case struct {
	CaseID         string     `json:"caseId"`
	UserAddress    string     `json:"userAddress"`
	Title          string     `json:"title"`
	Agent          string     `json:"agent"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// Turn is one user-message/agent-response exchange with the fact snapshot
// extracted from it. Turns are append-only and totally ordered by Timestamp
// within a case; the current state of a case is the facts/score/metadata of
// its last turn.
type Turn struct {
	ID           uint           `json:"-"`
	CaseID       string         `json:"caseId"`
	UserAddress  string         `json:"userAddress"`
	UserMessage  string         `json:"userMessage"`
	AgentMessage string         `json:"agentMessage"`
	Facts        []string       `json:"ucs"`
	Score        float64        `json:"score"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// MetadataString returns the named metadata entry when it is a non-empty
// string. Non-string values are treated as absent.
func (t *Turn) MetadataString(key string) string {
	if t == nil || t.Metadata == nil {
		return ""
	}
	if s, ok := t.Metadata[key].(string); ok {
		return s
	}
	return ""
}

// LastTurn returns the final element of an ascending turn history, or nil
// when the history is empty.
func LastTurn(history []Turn) *Turn {
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}
