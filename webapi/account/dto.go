package account

import (
	"time"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/service/statement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//revive:disable

// CreateAccountRequest represents the request body for opening an account.
type CreateAccountRequest struct {
	HolderName string `json:"holder_name" xml:"holder_name" form:"holder_name" validate:"required,max=255"`
}

// AmountRequest represents the request body of a deposit or a withdrawal.
// Amount accepts a JSON number or a decimal string; a missing amount is
// rejected by the service as a validation error.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" xml:"amount" form:"amount"`
}

// AccountDTO is the API response representation of an account.
type AccountDTO struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	Active     bool            `json:"active"`
	Sequence   int64           `json:"sequence"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BalanceDTO is the response of a balance inquiry.
type BalanceDTO struct {
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// TransactionDTO is the API response representation of a ledger entry.
type TransactionDTO struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Sequence     int64           `json:"sequence"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// MutationDTO is returned by deposits and withdrawals.
type MutationDTO struct {
	Account AccountDTO `json:"account"`
}

// StatementDTO is the API response representation of a statement.
type StatementDTO struct {
	Account          AccountDTO       `json:"account"`
	Transactions     []TransactionDTO `json:"transactions"`
	TotalDeposits    decimal.Decimal  `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal  `json:"total_withdrawals"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// ToAccountDTO maps a domain account to its API representation.
func ToAccountDTO(a *account.Account) AccountDTO {
	return AccountDTO{
		ID:         a.ID,
		UserID:     a.UserID,
		HolderName: a.HolderName,
		Balance:    a.Balance,
		Active:     a.Active,
		Sequence:   a.Sequence,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// ToAccountDTOs maps a list of accounts; the result is never nil.
func ToAccountDTOs(accs []*account.Account) []AccountDTO {
	out := make([]AccountDTO, 0, len(accs))
	for _, a := range accs {
		out = append(out, ToAccountDTO(a))
	}
	return out
}

// ToTransactionDTO maps a ledger entry to its API representation.
func ToTransactionDTO(tx *account.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:           tx.ID,
		AccountID:    tx.AccountID,
		Kind:         tx.Kind.String(),
		Amount:       tx.Amount,
		BalanceAfter: tx.BalanceAfter,
		Sequence:     tx.Sequence,
		OccurredAt:   tx.OccurredAt,
	}
}

// ToStatementDTO maps a statement to its API representation.
func ToStatementDTO(st *statement.Statement) StatementDTO {
	txs := make([]TransactionDTO, 0, len(st.Transactions))
	for _, tx := range st.Transactions {
		txs = append(txs, ToTransactionDTO(tx))
	}
	return StatementDTO{
		Account:          ToAccountDTO(st.Account),
		Transactions:     txs,
		TotalDeposits:    st.TotalDeposits,
		TotalWithdrawals: st.TotalWithdrawals,
		GeneratedAt:      st.GeneratedAt,
	}
}
