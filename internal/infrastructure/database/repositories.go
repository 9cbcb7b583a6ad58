package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	adapterRepo "github.com/checkoutlabs/paypal-gateway/internal/adapter/repository"
	domainRepo "github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

// Repositories bundles the gateway's data access layer for wiring.
type Repositories struct {
	Orders        domainRepo.OrderRepository
	Subscriptions domainRepo.SubscriptionRepository
	WebhookEvents domainRepo.WebhookEventRepository
	Settings      domainRepo.SettingRepository
}

// NewRepositories creates all repositories over one connection.
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Orders:        adapterRepo.NewOrderRepository(db, logger),
		Subscriptions: adapterRepo.NewSubscriptionRepository(db, logger),
		WebhookEvents: adapterRepo.NewWebhookEventRepository(db, logger),
		Settings:      adapterRepo.NewSettingRepository(db),
	}
}
