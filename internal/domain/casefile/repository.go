package casefile

import (
	"context"
	"errors"
	"time"
)

// Repository exposes persistence for cases and their conversation turns.
// Histories are returned in ascending Timestamp order; AppendTurn also
// touches the owning case's lastActivityAt.
type Repository interface {
	CreateCase(ctx context.Context, c *Case) error
	FindCase(ctx context.Context, caseID string) (*Case, error)
	ListCasesByUser(ctx context.Context, userAddress string) ([]*Case, error)
	LastActiveCase(ctx context.Context, userAddress string) (*Case, error)
	DeleteCase(ctx context.Context, caseID string) error
	MarkCompleted(ctx context.Context, caseID string, at time.Time) error

	ListTurns(ctx context.Context, caseID string) ([]Turn, error)
	AppendTurn(ctx context.Context, turn *Turn) error
}

type notFoundError struct{ caseID string }

func (e *notFoundError) Error() string { return "case not found: " + e.caseID }

// NewNotFoundError marks a missing case record so callers can distinguish
// absence from infrastructure failure.
func NewNotFoundError(caseID string) error { return &notFoundError{caseID: caseID} }

// IsNotFound reports whether err marks a missing case record.
func IsNotFound(err error) bool {
	var nf *notFoundError
	return errors.As(err, &nf)
}
