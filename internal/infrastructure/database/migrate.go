package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
)

// Migrate runs schema migrations for all gateway tables.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running database migrations")

	err := db.AutoMigrate(
		&model.Order{},
		&model.OrderRefund{},
		&model.OrderNote{},
		&model.Subscription{},
		&model.WebhookEvent{},
		&model.Setting{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations completed")
	return nil
}
