package postgres

import (
	"context"
	"fmt"

	"wallet-ledger-service/internal/core/domain"
	"wallet-ledger-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OperationRepo implements ports.OperationRepository. Rows are append-only;
// there is no update or delete path.
type OperationRepo struct {
	pool Pool
}

// NewOperationRepo creates a new OperationRepo.
func NewOperationRepo(pool Pool) *OperationRepo {
	return &OperationRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction.
func (r *OperationRepo) Create(ctx context.Context, tx pgx.Tx, op *domain.Operation) error {
	query := `INSERT INTO operations (id, wallet_id, kind, amount, resulting_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		op.ID, op.WalletID, op.Kind, op.Amount, op.ResultingBalance, op.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", translateConflict(err))
	}
	return nil
}

// ListByWallet fetches a page of a wallet's operations, newest first,
// together with the total number of entries.
func (r *OperationRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, params ports.OperationListParams) ([]domain.Operation, int64, error) {
	countQuery := `SELECT COUNT(*) FROM operations WHERE wallet_id = $1`

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, walletID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count operations: %w", err)
	}

	dataQuery := `SELECT id, wallet_id, kind, amount, resulting_balance, created_at
		FROM operations WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, dataQuery, walletID, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var ops []domain.Operation
	for rows.Next() {
		op := domain.Operation{}
		err := rows.Scan(
			&op.ID, &op.WalletID, &op.Kind, &op.Amount, &op.ResultingBalance, &op.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan operation row: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate operation rows: %w", err)
	}
	return ops, total, nil
}
