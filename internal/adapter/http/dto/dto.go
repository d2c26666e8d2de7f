package dto

import "github.com/shopspring/decimal"

// CreateWalletRequest is the request body for wallet creation. Balance is
// optional; a missing field opens the wallet at zero.
type CreateWalletRequest struct {
	Balance *decimal.Decimal `json:"balance,omitempty" binding:"omitempty,nonneg_decimal"`
}

// ApplyOperationRequest is the request body for balance operations.
type ApplyOperationRequest struct {
	Kind   string          `json:"kind" binding:"required,opkind"`
	Amount decimal.Decimal `json:"amount" binding:"required,positive_decimal"`
}

// WalletResponse is the wallet representation returned by the API.
// Balance marshals as a quoted decimal string.
type WalletResponse struct {
	ID        string          `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// OperationResponse is the ledger entry representation returned by the API.
type OperationResponse struct {
	ID               string          `json:"id"`
	WalletID         string          `json:"wallet_id"`
	Kind             string          `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
	CreatedAt        string          `json:"created_at"`
}

// ApplyOperationResponse pairs the recorded operation with the wallet state
// it produced.
type ApplyOperationResponse struct {
	Wallet    WalletResponse    `json:"wallet"`
	Operation OperationResponse `json:"operation"`
}

// OperationListResponse wraps a paginated operation history page.
type OperationListResponse struct {
	Items  []OperationResponse `json:"items"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}
