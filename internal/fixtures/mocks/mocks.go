// Package mocks holds testify mocks for the ports the services depend on.
package mocks

import (
	"context"

	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/domain/user"
	"github.com/amirasaad/ledger/pkg/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserDirectory is a mock of the account service's user directory.
type MockUserDirectory struct {
	mock.Mock
}

// NewMockUserDirectory creates a mock whose expectations are asserted when
// the test ends.
func NewMockUserDirectory(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserDirectory {
	m := &MockUserDirectory{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserDirectory) FindUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockBus is a mock eventbus.Bus.
type MockBus struct {
	mock.Mock
}

// NewMockBus creates a mock whose expectations are asserted when the test
// ends.
func NewMockBus(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBus {
	m := &MockBus{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBus) Emit(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockBus) Register(eventType string, handler eventbus.HandlerFunc) {
	m.Called(eventType, handler)
}

var _ eventbus.Bus = (*MockBus)(nil)
