package app

import (
	"context"

	"github.com/amirasaad/ledger/pkg/domain/events"
)

// setupEventBus subscribes an audit logger to every ledger event.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	logger := a.Deps.Logger.With("component", "event-audit")
	for eventType := range events.EventTypes {
		bus.Register(eventType, func(_ context.Context, e events.Event) error {
			switch evt := e.(type) {
			case *events.TransactionRecorded:
				logger.Info("transaction recorded",
					"transactionID", evt.TransactionID,
					"accountID", evt.AccountID,
					"kind", evt.Kind,
					"amount", evt.Amount.String(),
					"balanceAfter", evt.BalanceAfter.String(),
					"sequence", evt.Sequence,
				)
			case *events.AccountCreated:
				logger.Info("account created", "accountID", evt.AccountID, "userID", evt.UserID)
			case *events.AccountStatusChanged:
				logger.Info("account status changed", "accountID", evt.AccountID, "active", evt.Active)
			default:
				logger.Debug("event", "type", e.Type())
			}
			return nil
		})
	}
}
