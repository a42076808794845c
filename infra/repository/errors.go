package repository

import (
	"errors"

	"github.com/amirasaad/ledger/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors.
// This keeps infrastructure concerns (database errors) within the infrastructure layer.
// Record-not-found and duplicate-key become their domain counterparts; anything
// else, driver and context failures included, becomes a storage error.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrAlreadyExists
	}
	return domain.NewStorageError(err)
}

// WrapError wraps a GORM operation and automatically maps errors.
//
// Usage:
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(user).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
