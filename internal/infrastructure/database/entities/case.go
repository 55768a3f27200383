package entities

import (
	"time"

	"gorm.io/gorm"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
)

// Case represents the persisted case record.
type Case struct {
	ID             uint      `gorm:"primaryKey"`
	CaseID         string    `gorm:"uniqueIndex;size:128;not null"`
	UserAddress    string    `gorm:"size:64;index:idx_case_user_status;not null"`
	Title          string    `gorm:"size:256"`
	Agent          string    `gorm:"size:32;not null"`
	Status         string    `gorm:"size:20;index:idx_case_user_status;not null;default:'active'"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
	LastActivityAt time.Time `gorm:"index"`
	CompletedAt    *time.Time
}

// TableName specifies the table name for Case.
func (Case) TableName() string {
	return "cases"
}

// BeforeCreate ensures defaults.
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.Agent == "" {
		c.Agent = casefile.AgentName
	}
	if c.Status == "" {
		c.Status = string(casefile.StatusActive)
	}
	return nil
}

// ToDomain converts the entity to the domain model.
func (c *Case) ToDomain() *casefile.Case {
	return &casefile.Case{
		CaseID:         c.CaseID,
		UserAddress:    c.UserAddress,
		Title:          c.Title,
		Agent:          c.Agent,
		Status:         casefile.Status(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		LastActivityAt: c.LastActivityAt,
		CompletedAt:    c.CompletedAt,
	}
}

// NewCaseEntity converts the domain model to its persistence schema.
func NewCaseEntity(c *casefile.Case) *Case {
	return &Case{
		CaseID:         c.CaseID,
		UserAddress:    c.UserAddress,
		Title:          c.Title,
		Agent:          c.Agent,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		LastActivityAt: c.LastActivityAt,
		CompletedAt:    c.CompletedAt,
	}
}
