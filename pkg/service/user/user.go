// Package user is the user directory the ledger consults to resolve account
// owners. Authentication is out of scope: a user is an email and a display
// name.
package user

import (
	"context"
	"log/slog"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/user"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
)

// Service provides user creation and lookup.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork and logger.
func New(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:    uow,
		logger: logger.With("component", "user-service"),
	}
}

// CreateUser registers a user. Emails are unique case-insensitively.
func (s *Service) CreateUser(
	ctx context.Context,
	email, names string,
) (u *user.User, err error) {
	u, err = user.NewUser(email, names)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, u)
	})
	if err != nil {
		s.logger.Warn("CreateUser failed", "email", u.Email, "error", err)
		return nil, domain.NewStorageError(err)
	}
	s.logger.Info("CreateUser successful", "userID", u.ID)
	return u, nil
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(
	ctx context.Context,
	id uuid.UUID,
) (u *user.User, err error) {
	err = s.uow.ReadOnly(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, domain.NewStorageError(err)
	}
	return u, nil
}

// FindUser satisfies the account service's user directory.
func (s *Service) FindUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.GetUser(ctx, id)
}
