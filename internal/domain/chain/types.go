package chain

import "context"

// Agreement mirrors the on-chain agreement record keyed by the hashed caseId.
type Agreement struct {
	Employer       string `json:"employer"`
	Coworker       string `json:"coworker"`
	EmployerSigned bool   `json:"employerSigned"`
	CoworkerSigned bool   `json:"coworkerSigned"`
	CreatedAt      uint64 `json:"createdAt"`
	Exists         bool   `json:"exists"`
}

// TxResult reports the outcome of an agreement registration.
type TxResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Registrar is the blockchain collaborator. CreateAgreement is expected to
// be idempotent at the caller level via AgreementExists; the registrar itself
// performs no retries.
type Registrar interface {
	CreateAgreement(ctx context.Context, caseID, employerAddress, coworkerAddress string) (*TxResult, error)
	AgreementExists(ctx context.Context, caseID string) (bool, error)
	GetAgreement(ctx context.Context, caseID string) (*Agreement, error)
	IsFullySigned(ctx context.Context, caseID string) (bool, error)
}
