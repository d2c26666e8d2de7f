package ports

import (
	"context"

	"wallet-ledger-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks; the row lock
// taken by GetByIDForUpdate holds until the enclosing commit or rollback.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	// UpdateBalance writes the new balance, bumps the version and updated_at.
	// Returns domain.ErrConcurrentModification when the row no longer carries
	// expectedVersion at write time.
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, newBalance decimal.Decimal, expectedVersion int64) error
}

// OperationRepository defines persistence for the append-only operation ledger.
type OperationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, op *domain.Operation) error
	// ListByWallet returns a page of operations newest-first plus the total count.
	ListByWallet(ctx context.Context, walletID uuid.UUID, params OperationListParams) ([]domain.Operation, int64, error)
}

// OperationListParams holds pagination for listing a wallet's operations.
type OperationListParams struct {
	Limit  int
	Offset int
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
