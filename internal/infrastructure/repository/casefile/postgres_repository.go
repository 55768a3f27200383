package casefile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/database/entities"
)

// Repository persists cases and conversation turns.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a case repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Repository = (*Repository)(nil)

// CreateCase inserts the case record.
func (r *Repository) CreateCase(ctx context.Context, c *domain.Case) error {
	entity := entities.NewCaseEntity(c)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create case %s: %w", c.CaseID, err)
	}
	c.CreatedAt = entity.CreatedAt
	c.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindCase fetches a case by its public case id.
func (r *Repository) FindCase(ctx context.Context, caseID string) (*domain.Case, error) {
	var entity entities.Case
	if err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError(caseID)
		}
		return nil, fmt.Errorf("fetch case %s: %w", caseID, err)
	}
	return entity.ToDomain(), nil
}

// ListCasesByUser returns all cases of a user, most recently active first.
func (r *Repository) ListCasesByUser(ctx context.Context, userAddress string) ([]*domain.Case, error) {
	var records []entities.Case
	if err := r.db.WithContext(ctx).
		Where("user_address = ?", userAddress).
		Order("last_activity_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list cases for %s: %w", userAddress, err)
	}

	cases := make([]*domain.Case, 0, len(records))
	for i := range records {
		cases = append(cases, records[i].ToDomain())
	}
	return cases, nil
}

// LastActiveCase returns the user's most recently active open case, or nil
// when the user has none.
func (r *Repository) LastActiveCase(ctx context.Context, userAddress string) (*domain.Case, error) {
	var entity entities.Case
	err := r.db.WithContext(ctx).
		Where("user_address = ? AND status = ?", userAddress, string(domain.StatusActive)).
		Order("last_activity_at DESC").
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch last active case for %s: %w", userAddress, err)
	}
	return entity.ToDomain(), nil
}

// DeleteCase removes a case and its conversation turns.
func (r *Repository) DeleteCase(ctx context.Context, caseID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("case_id = ?", caseID).Delete(&entities.ConversationTurn{}).Error; err != nil {
			return fmt.Errorf("delete turns for %s: %w", caseID, err)
		}
		result := tx.Where("case_id = ?", caseID).Delete(&entities.Case{})
		if result.Error != nil {
			return fmt.Errorf("delete case %s: %w", caseID, result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError(caseID)
		}
		return nil
	})
}

// MarkCompleted flips a case to completed and stamps the completion time.
func (r *Repository) MarkCompleted(ctx context.Context, caseID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Case{}).
		Where("case_id = ?", caseID).
		Updates(map[string]any{
			"status":       string(domain.StatusCompleted),
			"completed_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return fmt.Errorf("mark case %s completed: %w", caseID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError(caseID)
	}
	return nil
}

// ListTurns returns the full turn history of a case in ascending timestamp
// order.
func (r *Repository) ListTurns(ctx context.Context, caseID string) ([]domain.Turn, error) {
	var records []entities.ConversationTurn
	if err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("timestamp ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list turns for %s: %w", caseID, err)
	}

	turns := make([]domain.Turn, 0, len(records))
	for i := range records {
		turns = append(turns, records[i].ToDomain())
	}
	return turns, nil
}

// AppendTurn inserts a turn and touches the owning case's activity stamp.
func (r *Repository) AppendTurn(ctx context.Context, turn *domain.Turn) error {
	entity, err := entities.NewConversationTurnEntity(turn)
	if err != nil {
		return fmt.Errorf("encode turn for %s: %w", turn.CaseID, err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entity).Error; err != nil {
			return fmt.Errorf("append turn for %s: %w", turn.CaseID, err)
		}
		turn.ID = entity.ID

		if err := tx.Model(&entities.Case{}).
			Where("case_id = ?", turn.CaseID).
			Updates(map[string]any{
				"last_activity_at": turn.Timestamp,
				"updated_at":       turn.Timestamp,
			}).Error; err != nil {
			return fmt.Errorf("touch case %s: %w", turn.CaseID, err)
		}
		return nil
	})
}
