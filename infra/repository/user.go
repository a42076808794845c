package repository

import (
	"context"
	"errors"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/user"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository using the provided *gorm.DB.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Get implements repository.UserRepository.
func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail implements repository.UserRepository.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", email)
}

// Create implements repository.UserRepository.
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	m := User{
		ID:        u.ID,
		Email:     u.Email,
		Names:     u.Names,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*user.User, error) {
	var m User
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where(query, arg).First(&m).Error
	}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return user.NewUserFromData(m.ID, m.Email, m.Names, m.CreatedAt.UTC(), m.UpdatedAt.UTC()), nil
}
