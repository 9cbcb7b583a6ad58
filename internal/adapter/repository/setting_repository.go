package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	domainRepo "github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a gorm-backed key-value settings store.
func NewSettingRepository(db *gorm.DB) domainRepo.SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting model.Setting

	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	return setting.Value, nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	setting := &model.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(setting).Error
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	return nil
}

func (r *settingRepository) Delete(ctx context.Context, key string) error {
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&model.Setting{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}

	return nil
}
