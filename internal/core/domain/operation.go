package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationKind represents the direction of a balance mutation.
type OperationKind string

const (
	OperationKindDeposit  OperationKind = "deposit"
	OperationKindWithdraw OperationKind = "withdraw"
)

// Valid reports whether the kind is one of the supported values.
func (k OperationKind) Valid() bool {
	return k == OperationKindDeposit || k == OperationKindWithdraw
}

// Operation is an immutable ledger entry recording a single applied
// balance mutation. Amount is stored unsigned; Kind carries the direction.
type Operation struct {
	ID               uuid.UUID       `json:"id"`
	WalletID         uuid.UUID       `json:"wallet_id"`
	Kind             OperationKind   `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
	CreatedAt        time.Time       `json:"created_at"`
}
