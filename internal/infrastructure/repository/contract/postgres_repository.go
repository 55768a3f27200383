package contract

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/TesslaRay/claudio-aleph-2025/internal/domain/contract"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/database/entities"
)

// Repository persists generated contract artifacts.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a contract repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Repository = (*Repository)(nil)

// Create inserts the contract record. The unique index on case_id rejects a
// second contract for the same case.
func (r *Repository) Create(ctx context.Context, c *domain.Contract) error {
	entity := entities.NewContractEntity(c)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create contract for %s: %w", c.CaseID, err)
	}
	c.ID = entity.ID
	c.CreatedAt = entity.CreatedAt
	return nil
}

// ExistsByCaseID reports whether a contract was already generated for the
// case.
func (r *Repository) ExistsByCaseID(ctx context.Context, caseID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Contract{}).
		Where("case_id = ?", caseID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count contracts for %s: %w", caseID, err)
	}
	return count > 0, nil
}

// FindByCaseID fetches the contract for a case, or nil when none exists.
func (r *Repository) FindByCaseID(ctx context.Context, caseID string) (*domain.Contract, error) {
	var entity entities.Contract
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch contract for %s: %w", caseID, err)
	}
	return entity.ToDomain(), nil
}
