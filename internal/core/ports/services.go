package ports

import (
	"context"
	"time"

	"wallet-ledger-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationValidator is the pure admission decision for balance mutations.
// Implementations perform no I/O and hold no state.
type OperationValidator interface {
	// ValidateInitialBalance rejects negative, over-precision, or
	// out-of-range opening balances.
	ValidateInitialBalance(balance decimal.Decimal) error
	// ValidateOperation decides whether (kind, amount) may be applied to
	// currentBalance and returns the resulting balance when admissible.
	ValidateOperation(currentBalance decimal.Decimal, kind domain.OperationKind, amount decimal.Decimal) (decimal.Decimal, error)
}

// WalletCache is the Redis read cache for wallet lookups (fast path).
// A miss is reported as (nil, nil); the ledger stays the source of truth.
type WalletCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	Set(ctx context.Context, wallet *domain.Wallet, ttl time.Duration) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// --- Service Ports (Business Logic) ---

// WalletService defines the balance engine use cases.
type WalletService interface {
	// CreateWallet opens a wallet with the given non-negative starting
	// balance; the decimal zero value opens an empty wallet.
	CreateWallet(ctx context.Context, initialBalance decimal.Decimal) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	// ApplyOperation atomically applies one deposit or withdrawal and
	// returns the updated wallet together with the recorded ledger entry.
	ApplyOperation(ctx context.Context, req ApplyOperationRequest) (*domain.Wallet, *domain.Operation, error)
	ListOperations(ctx context.Context, walletID uuid.UUID, params OperationListParams) ([]domain.Operation, int64, error)
}

// ApplyOperationRequest holds validated input for a balance mutation.
type ApplyOperationRequest struct {
	WalletID uuid.UUID
	Kind     domain.OperationKind
	Amount   decimal.Decimal
}
