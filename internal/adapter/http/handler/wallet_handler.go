package handler

import (
	"errors"
	"io"
	"strconv"

	"wallet-ledger-service/internal/adapter/http/dto"
	"wallet-ledger-service/internal/core/domain"
	"wallet-ledger-service/internal/core/ports"
	"wallet-ledger-service/pkg/apperror"
	"wallet-ledger-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// CreateWallet handles POST /api/v1/wallets. The body is optional; an empty
// body opens the wallet at zero.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, bindingError(err))
		return
	}

	initial := decimal.Zero
	if req.Balance != nil {
		initial = *req.Balance
	}

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), initial)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toWalletResponse(wallet))
}

// GetWallet handles GET /api/v1/wallets/:id.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	id, ok := walletID(c)
	if !ok {
		return
	}

	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toWalletResponse(wallet))
}

// ApplyOperation handles POST /api/v1/wallets/:id/operation.
func (h *WalletHandler) ApplyOperation(c *gin.Context) {
	id, ok := walletID(c)
	if !ok {
		return
	}

	var req dto.ApplyOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}

	wallet, op, err := h.walletSvc.ApplyOperation(c.Request.Context(), ports.ApplyOperationRequest{
		WalletID: id,
		Kind:     domain.OperationKind(req.Kind),
		Amount:   req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ApplyOperationResponse{
		Wallet:    toWalletResponse(wallet),
		Operation: toOperationResponse(op),
	})
}

// ListOperations handles GET /api/v1/wallets/:id/operations.
func (h *WalletHandler) ListOperations(c *gin.Context) {
	id, ok := walletID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	ops, total, err := h.walletSvc.ListOperations(c.Request.Context(), id, ports.OperationListParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.OperationResponse, 0, len(ops))
	for i := range ops {
		items = append(items, toOperationResponse(&ops[i]))
	}

	response.OK(c, dto.OperationListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// walletID extracts and validates the :id path parameter. On failure it has
// already written the error response.
func walletID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return uuid.Nil, false
	}
	return id, true
}

// toWalletResponse converts domain.Wallet to DTO.
func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		ID:        w.ID.String(),
		Balance:   w.Balance,
		Version:   w.Version,
		CreatedAt: w.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: w.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// toOperationResponse converts domain.Operation to DTO.
func toOperationResponse(op *domain.Operation) dto.OperationResponse {
	return dto.OperationResponse{
		ID:               op.ID.String(),
		WalletID:         op.WalletID.String(),
		Kind:             string(op.Kind),
		Amount:           op.Amount,
		ResultingBalance: op.ResultingBalance,
		CreatedAt:        op.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// bindingError maps request binding failures to coded errors. Domain-shaped
// tags keep their wallet error codes so clients see the same code whether
// the edge or the engine rejects the value.
func bindingError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "opkind":
			return apperror.ErrUnsupportedOperationKind()
		case "positive_decimal":
			return apperror.ErrInvalidAmount()
		case "nonneg_decimal":
			return apperror.ErrInvalidInitialBalance()
		}
	}
	return apperror.Validation(err.Error())
}
