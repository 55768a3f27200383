package contract

import (
	"context"
	"time"
)

// Contract is the generated legal agreement artifact for a case: the drafted
// document, where it can be fetched, and the chain transaction that anchored
// the agreement.
type Contract struct {
	ID              uint      `json:"-"`
	CaseID          string    `json:"caseId"`
	EmployerAddress string    `json:"employerAddress"`
	CoworkerAddress string    `json:"coworkerAddress"`
	Document        string    `json:"document"`
	ArtifactURL     string    `json:"artifactUrl"`
	TxHash          string    `json:"txHash,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Repository persists generated contracts. At most one contract exists per
// case; ExistsByCaseID is the idempotency guard for generation requests.
type Repository interface {
	Create(ctx context.Context, c *Contract) error
	ExistsByCaseID(ctx context.Context, caseID string) (bool, error)
	FindByCaseID(ctx context.Context, caseID string) (*Contract, error)
}
