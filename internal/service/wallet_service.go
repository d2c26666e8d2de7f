package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger-service/internal/core/domain"
	"wallet-ledger-service/internal/core/ports"
	"wallet-ledger-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// defaultApplyAttempts bounds the retry loop when the constructor is
	// handed a non-positive attempt count.
	defaultApplyAttempts = 3

	defaultListLimit = 20
	maxListLimit     = 100
)

// WalletServiceImpl implements ports.WalletService. Every balance change
// runs inside a single database transaction: the wallet row is locked,
// validated, updated with a version guard, and the operation row is
// appended before commit.
type WalletServiceImpl struct {
	walletRepo    ports.WalletRepository
	opRepo        ports.OperationRepository
	validator     ports.OperationValidator
	cache         ports.WalletCache
	transactor    ports.DBTransactor
	log           zerolog.Logger
	applyAttempts int
	cacheTTL      time.Duration
}

// NewWalletService creates a new WalletServiceImpl. applyAttempts bounds
// how many times ApplyOperation restarts after a concurrent-modification
// conflict before giving up.
func NewWalletService(
	walletRepo ports.WalletRepository,
	opRepo ports.OperationRepository,
	validator ports.OperationValidator,
	cache ports.WalletCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
	applyAttempts int,
	cacheTTL time.Duration,
) *WalletServiceImpl {
	if applyAttempts < 1 {
		applyAttempts = defaultApplyAttempts
	}
	return &WalletServiceImpl{
		walletRepo:    walletRepo,
		opRepo:        opRepo,
		validator:     validator,
		cache:         cache,
		transactor:    transactor,
		log:           log,
		applyAttempts: applyAttempts,
		cacheTTL:      cacheTTL,
	}
}

// CreateWallet provisions a wallet with the given opening balance. The
// returned wallet starts at version 1.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, initialBalance decimal.Decimal) (*domain.Wallet, error) {
	if err := s.validator.ValidateInitialBalance(initialBalance); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:        uuid.New(),
		Balance:   initialBalance,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("balance", wallet.Balance.String()).
		Msg("wallet created")

	return wallet, nil
}

// GetWallet returns the wallet's committed state. Reads go through the
// cache; a cache failure falls back to the database rather than failing
// the request.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("wallet_id", id.String()).Msg("wallet cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	wallet, err := s.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	if err := s.cache.Set(ctx, wallet, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("wallet_id", wallet.ID.String()).Msg("failed to cache wallet")
	}

	return wallet, nil
}

// ApplyOperation applies a deposit or withdrawal to the wallet's current
// committed balance. Version conflicts restart the whole
// fetch-validate-persist cycle on a fresh transaction, up to the
// configured attempt budget; deterministic rejections are never retried.
func (s *WalletServiceImpl) ApplyOperation(ctx context.Context, req ports.ApplyOperationRequest) (*domain.Wallet, *domain.Operation, error) {
	var lastErr error
	for attempt := 1; attempt <= s.applyAttempts; attempt++ {
		wallet, op, err := s.applyOnce(ctx, req)
		if err == nil {
			if cerr := s.cache.Invalidate(ctx, wallet.ID); cerr != nil {
				s.log.Warn().Err(cerr).Str("wallet_id", wallet.ID.String()).Msg("failed to invalidate wallet cache")
			}
			s.log.Info().
				Str("wallet_id", wallet.ID.String()).
				Str("operation_id", op.ID.String()).
				Str("kind", string(op.Kind)).
				Str("amount", op.Amount.String()).
				Str("resulting_balance", op.ResultingBalance.String()).
				Int("attempt", attempt).
				Msg("operation applied")
			return wallet, op, nil
		}
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return nil, nil, err
		}
		lastErr = err
		s.log.Warn().Err(err).
			Str("wallet_id", req.WalletID.String()).
			Int("attempt", attempt).
			Msg("concurrent wallet modification, retrying")
	}

	s.log.Warn().Err(lastErr).
		Str("wallet_id", req.WalletID.String()).
		Int("attempts", s.applyAttempts).
		Msg("operation abandoned after conflict retries")
	return nil, nil, apperror.ErrTransientConflict()
}

// applyOnce runs one fetch-validate-persist cycle. Conflict errors
// surface unwrapped so the retry loop in ApplyOperation can match them.
func (s *WalletServiceImpl) applyOnce(ctx context.Context, req ports.ApplyOperationRequest) (*domain.Wallet, *domain.Operation, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.ErrStorageUnavailable(fmt.Errorf("begin transaction: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.WalletID)
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			return nil, nil, err
		}
		return nil, nil, apperror.ErrStorageUnavailable(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, nil, apperror.ErrWalletNotFound()
	}

	newBalance, err := s.validator.ValidateOperation(wallet.Balance, req.Kind, req.Amount)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	op := &domain.Operation{
		ID:               uuid.New(),
		WalletID:         wallet.ID,
		Kind:             req.Kind,
		Amount:           req.Amount,
		ResultingBalance: newBalance,
		CreatedAt:        now,
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance, wallet.Version); err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			return nil, nil, err
		}
		return nil, nil, apperror.ErrStorageUnavailable(fmt.Errorf("update balance: %w", err))
	}

	if err := s.opRepo.Create(ctx, dbTx, op); err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			return nil, nil, err
		}
		return nil, nil, apperror.ErrStorageUnavailable(fmt.Errorf("record operation: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.ErrStorageUnavailable(fmt.Errorf("commit transaction: %w", err))
	}

	updated := *wallet
	updated.Balance = newBalance
	updated.Version = wallet.Version + 1
	updated.UpdatedAt = now
	return &updated, op, nil
}

// ListOperations returns a page of the wallet's operation history, newest
// first, together with the total count.
func (s *WalletServiceImpl) ListOperations(ctx context.Context, walletID uuid.UUID, params ports.OperationListParams) ([]domain.Operation, int64, error) {
	if params.Limit <= 0 {
		params.Limit = defaultListLimit
	}
	if params.Limit > maxListLimit {
		params.Limit = maxListLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, 0, apperror.ErrStorageUnavailable(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, 0, apperror.ErrWalletNotFound()
	}

	ops, total, err := s.opRepo.ListByWallet(ctx, walletID, params)
	if err != nil {
		return nil, 0, apperror.ErrStorageUnavailable(fmt.Errorf("list operations: %w", err))
	}

	return ops, total, nil
}
