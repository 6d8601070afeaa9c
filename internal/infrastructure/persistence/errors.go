package persistence

import (
	"errors"

	"github.com/lfs/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm.ErrRecordNotFound to shared.ErrNotFound
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// deleted turns a delete result without affected rows into shared.ErrNotFound
func deleted(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
