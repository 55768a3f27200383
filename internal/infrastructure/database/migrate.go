package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the claudio domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Case{},
		&entities.ConversationTurn{},
		&entities.Contract{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
