package entities

import (
	"time"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/contract"
)

// Contract represents the persisted contract artifact.
type Contract struct {
	ID              uint      `gorm:"primaryKey"`
	CaseID          string    `gorm:"uniqueIndex;size:128;not null"`
	EmployerAddress string    `gorm:"size:64;not null"`
	CoworkerAddress string    `gorm:"size:64;not null"`
	Document        string    `gorm:"type:text;not null"`
	ArtifactURL     string    `gorm:"size:512"`
	TxHash          string    `gorm:"size:80"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for Contract.
func (Contract) TableName() string {
	return "contracts"
}

// ToDomain converts the entity to the domain model.
func (c *Contract) ToDomain() *contract.Contract {
	return &contract.Contract{
		ID:              c.ID,
		CaseID:          c.CaseID,
		EmployerAddress: c.EmployerAddress,
		CoworkerAddress: c.CoworkerAddress,
		Document:        c.Document,
		ArtifactURL:     c.ArtifactURL,
		TxHash:          c.TxHash,
		CreatedAt:       c.CreatedAt,
	}
}

// NewContractEntity converts the domain model to its persistence schema.
func NewContractEntity(c *contract.Contract) *Contract {
	return &Contract{
		CaseID:          c.CaseID,
		EmployerAddress: c.EmployerAddress,
		CoworkerAddress: c.CoworkerAddress,
		Document:        c.Document,
		ArtifactURL:     c.ArtifactURL,
		TxHash:          c.TxHash,
		CreatedAt:       c.CreatedAt,
	}
}
