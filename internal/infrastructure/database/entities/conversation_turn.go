package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
)

// ConversationTurn represents one persisted user/agent exchange with its
// extracted fact snapshot.
type ConversationTurn struct {
	ID           uint           `gorm:"primaryKey"`
	CaseID       string         `gorm:"size:128;index:idx_turn_case_timestamp;not null"`
	UserAddress  string         `gorm:"size:64;index"`
	UserMessage  string         `gorm:"type:text;not null"`
	AgentMessage string         `gorm:"type:text"`
	Facts        datatypes.JSON `gorm:"type:jsonb"`
	Score        float64
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	Timestamp    time.Time      `gorm:"index:idx_turn_case_timestamp;not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ConversationTurn.
func (ConversationTurn) TableName() string {
	return "conversation_turns"
}

// ToDomain converts the entity to the domain model. Corrupt JSON columns
// degrade to empty values rather than failing the read.
func (t *ConversationTurn) ToDomain() casefile.Turn {
	facts := []string{}
	if len(t.Facts) > 0 {
		_ = json.Unmarshal(t.Facts, &facts)
	}
	metadata := map[string]any{}
	if len(t.Metadata) > 0 {
		_ = json.Unmarshal(t.Metadata, &metadata)
	}
	return casefile.Turn{
		ID:           t.ID,
		CaseID:       t.CaseID,
		UserAddress:  t.UserAddress,
		UserMessage:  t.UserMessage,
		AgentMessage: t.AgentMessage,
		Facts:        facts,
		Score:        t.Score,
		Metadata:     metadata,
		Timestamp:    t.Timestamp,
	}
}

// NewConversationTurnEntity converts the domain model to its persistence
// schema.
func NewConversationTurnEntity(turn *casefile.Turn) (*ConversationTurn, error) {
	facts := turn.Facts
	if facts == nil {
		facts = []string{}
	}
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return nil, err
	}

	metadata := turn.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	return &ConversationTurn{
		CaseID:       turn.CaseID,
		UserAddress:  turn.UserAddress,
		UserMessage:  turn.UserMessage,
		AgentMessage: turn.AgentMessage,
		Facts:        datatypes.JSON(factsJSON),
		Score:        turn.Score,
		Metadata:     datatypes.JSON(metadataJSON),
		Timestamp:    turn.Timestamp,
	}, nil
}
