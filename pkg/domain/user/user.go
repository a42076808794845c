package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when a user cannot be found in the
	// repository.
	ErrUserNotFound = domain.NewNotFoundError("user not found")
	// ErrEmailRequired is returned when a user is created without an email.
	ErrEmailRequired = domain.NewValidationError("email is required")
	// ErrInvalidEmail is returned when the email is not a valid address.
	ErrInvalidEmail = domain.NewValidationError("email is invalid")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = domain.NewBusinessError("email already registered")
)

// User is the owner of accounts. Authentication lives outside this system;
// the ledger only needs to know that the user exists.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Names     string    `json:"names"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// NewUser creates a User with a normalised email and current timestamps.
func NewUser(email, names string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Names:     strings.TrimSpace(names),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewUserFromData creates a User from raw data (used for DB hydration).
func NewUserFromData(
	id uuid.UUID,
	email, names string,
	created, updated time.Time,
) *User {
	return &User{
		ID:        id,
		Email:     email,
		Names:     names,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}
