package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Business Logic (WAL) ----

func ErrWalletNotFound() *AppError {
	return New("WAL_001", "Wallet not found", http.StatusNotFound)
}

func ErrInvalidInitialBalance() *AppError {
	return New("WAL_002", "Initial balance must be a non-negative decimal with at most 4 fraction digits", http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_003", "Amount must be a positive decimal with at most 4 fraction digits", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("WAL_004", "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrUnsupportedOperationKind() *AppError {
	return New("WAL_005", "Unsupported operation kind", http.StatusBadRequest)
}

func ErrAmountOverflow() *AppError {
	return New("WAL_006", "Resulting balance exceeds the representable range", http.StatusUnprocessableEntity)
}

func ErrTransientConflict() *AppError {
	return New("WAL_007", "Wallet is under heavy contention, retry later", http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrStorageUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Storage temporarily unavailable", http.StatusServiceUnavailable, err)
}

// ---- Request Validation (REQ) ----

// Validation returns a REQ_001 error for malformed request payloads.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}
