package service

import (
	"wallet-ledger-service/internal/core/domain"
	"wallet-ledger-service/pkg/apperror"

	"github.com/shopspring/decimal"
)

// maxFractionDigits matches the NUMERIC(19, 4) scale of the balance and
// amount columns.
const maxFractionDigits = 4

// maxBalance is the first value the balance column cannot represent (10^15).
var maxBalance = decimal.New(1, 15)

// OperationValidatorImpl implements ports.OperationValidator. It is
// stateless, performs no I/O, and never blocks.
type OperationValidatorImpl struct{}

// NewOperationValidator creates a new OperationValidatorImpl.
func NewOperationValidator() *OperationValidatorImpl {
	return &OperationValidatorImpl{}
}

// ValidateInitialBalance rejects opening balances that are negative, carry
// more fraction digits than the column stores, or fall outside its range.
func (v *OperationValidatorImpl) ValidateInitialBalance(balance decimal.Decimal) error {
	if balance.IsNegative() || overPrecise(balance) || balance.GreaterThanOrEqual(maxBalance) {
		return apperror.ErrInvalidInitialBalance()
	}
	return nil
}

// ValidateOperation decides whether (kind, amount) may be applied to
// currentBalance and returns the resulting balance when admissible.
// Rejections are deterministic; callers must not retry them.
func (v *OperationValidatorImpl) ValidateOperation(currentBalance decimal.Decimal, kind domain.OperationKind, amount decimal.Decimal) (decimal.Decimal, error) {
	if !kind.Valid() {
		return decimal.Zero, apperror.ErrUnsupportedOperationKind()
	}
	if !amount.IsPositive() || overPrecise(amount) {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}

	switch kind {
	case domain.OperationKindWithdraw:
		if amount.GreaterThan(currentBalance) {
			return decimal.Zero, apperror.ErrInsufficientFunds()
		}
		return currentBalance.Sub(amount), nil
	default:
		newBalance := currentBalance.Add(amount)
		if newBalance.GreaterThanOrEqual(maxBalance) {
			return decimal.Zero, apperror.ErrAmountOverflow()
		}
		return newBalance, nil
	}
}

// overPrecise reports whether d carries digits beyond maxFractionDigits.
// Trailing zeros do not count: 1.50000 truncates cleanly and is storable.
func overPrecise(d decimal.Decimal) bool {
	return !d.Equal(d.Truncate(maxFractionDigits))
}
