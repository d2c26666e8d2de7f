package dto

import (
	"wallet-ledger-service/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("nonneg_decimal", validateNonNegativeDecimal)
		_ = v.RegisterValidation("positive_decimal", validatePositiveDecimal)
		_ = v.RegisterValidation("opkind", validateOperationKind)
	}
}

// validatePositiveDecimal requires a decimal.Decimal field strictly greater
// than zero.
func validatePositiveDecimal(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return value.IsPositive()
}

// validateNonNegativeDecimal requires a decimal.Decimal field of zero or more.
func validateNonNegativeDecimal(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return !value.IsNegative()
}

// validateOperationKind accepts only the supported operation kinds.
func validateOperationKind(fl validator.FieldLevel) bool {
	return domain.OperationKind(fl.Field().String()).Valid()
}
