package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, domain.ErrNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), domain.ErrNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, domain.ErrBusinessRule},
		{"deadline", context.DeadlineExceeded, domain.ErrStorage},
		{"driver", errors.New("connection refused"), domain.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, MapGormErrorToDomain(tt.in), tt.want)
		})
	}
	assert.NoError(t, MapGormErrorToDomain(nil))
}

func TestWrapError_KeepsCause(t *testing.T) {
	err := WrapError(func() error { return context.Canceled })
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)
}
