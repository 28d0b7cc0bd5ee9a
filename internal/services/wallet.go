package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"monetization-service/internal/models"
	"monetization-service/internal/repositories/redisrepo"
	"monetization-service/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletService struct {
	store     storage.Store
	cache     BalanceCache
	publisher EventPublisher
	logger    *slog.Logger
	currency  string
	now       func() time.Time
}

func NewWalletService(store storage.Store, cache BalanceCache, publisher EventPublisher, logger *slog.Logger, currency string) *WalletService {
	return &WalletService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		currency:  currency,
		now:       time.Now,
	}
}

// applyToWallet computes the post-operation balance, writes the wallet
// transaction carrying that running balance, and updates the wallet's stored
// balance, all within the caller's database transaction. CREDIT and REFUND
// add, DEBIT subtracts; a DEBIT that would drive the balance below zero is
// rejected before anything is written.
func applyToWallet(ctx context.Context, tx storage.Tx, wallet *models.Wallet, opType string, amount decimal.Decimal, description string, referenceID, referenceType *string, now time.Time) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var newBalance decimal.Decimal
	switch opType {
	case models.WalletTransactionCredit, models.WalletTransactionRefund:
		newBalance = wallet.Balance.Add(amount)
	case models.WalletTransactionDebit:
		newBalance = wallet.Balance.Sub(amount)
		if newBalance.IsNegative() {
			return nil, storage.ErrInsufficientBalance
		}
	default:
		return nil, fmt.Errorf("unknown wallet operation type: %s", opType)
	}

	wt := &models.WalletTransaction{
		ID:            uuid.New().String(),
		WalletID:      wallet.ID,
		Type:          opType,
		Amount:        amount,
		Balance:       newBalance,
		Description:   description,
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
		CreatedAt:     now,
	}

	if err := tx.InsertWalletTransaction(ctx, wt); err != nil {
		return nil, err
	}
	if err := tx.UpdateWalletBalance(ctx, wallet.ID, newBalance); err != nil {
		return nil, err
	}

	wallet.Balance = newBalance
	return wt, nil
}

// GetBalance reads through the cache where possible. A missing wallet is not
// an error: wallets are created lazily on first use, so the balance is simply
// zero until then.
func (s *WalletService) GetBalance(ctx context.Context, userID string) (*models.WalletBalanceResponse, error) {
	if s.cache != nil {
		balance, err := s.cache.GetBalance(ctx, userID)
		if err == nil {
			return &models.WalletBalanceResponse{
				UserID:   userID,
				Balance:  balance,
				Currency: s.currency,
			}, nil
		}
		if !errors.Is(err, redisrepo.ErrBalanceNotFound) {
			s.logger.Warn("balance cache read failed", "userId", userID, "error", err)
		}
	}

	wallet, err := s.store.GetWalletByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			if _, uerr := s.store.GetUser(ctx, userID); uerr != nil {
				return nil, uerr
			}
			return &models.WalletBalanceResponse{
				UserID:   userID,
				Balance:  decimal.Zero,
				Currency: s.currency,
			}, nil
		}
		return nil, err
	}

	// Update the cache asynchronously with fresh data
	if s.cache != nil {
		go func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := s.cache.SetBalance(cacheCtx, userID, wallet.Balance); err != nil {
				s.logger.Warn("failed to update balance cache", "userId", userID, "error", err)
			}
		}()
	}

	return &models.WalletBalanceResponse{
		UserID:   userID,
		Balance:  wallet.Balance,
		Currency: wallet.Currency,
	}, nil
}

// TopUp credits the wallet and records the matching WALLET_TOPUP ledger
// transaction in the same database transaction. The wallet transaction
// references the ledger record by id and the two amounts are always equal.
func (s *WalletService) TopUp(ctx context.Context, req models.WalletTopUpRequest) (*models.WalletOperationResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	wallet, err := tx.EnsureWalletForUpdate(ctx, user.ID, s.currency)
	if err != nil {
		return nil, err
	}

	t := newTransaction(models.TransactionTypeWalletTopup, req.Amount, s.currency, "Wallet top-up", user.ID, now)
	if err := appendTransaction(ctx, tx, t); err != nil {
		return nil, err
	}

	refType := models.ReferenceTypeTransaction
	wt, err := applyToWallet(ctx, tx, wallet, models.WalletTransactionCredit, req.Amount, "Wallet top-up", &t.ID, &refType, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.updateCache(ctx, user.ID, wt.Balance)
	s.publish(ctx, t)

	return &models.WalletOperationResponse{
		Success:           true,
		Balance:           wt.Balance,
		WalletTransaction: wt,
		Transaction:       t,
	}, nil
}

// Spend debits the wallet for a non-fee purchase (e.g. a store order).
func (s *WalletService) Spend(ctx context.Context, req models.WalletSpendRequest) (*models.WalletOperationResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	description := req.Description
	if description == "" {
		description = "Wallet spend"
	}

	var refID, refType *string
	if req.ReferenceID != "" {
		refID = &req.ReferenceID
		rt := req.ReferenceType
		if rt == "" {
			rt = models.ReferenceTypeStoreOrder
		}
		refType = &rt
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	wallet, err := tx.EnsureWalletForUpdate(ctx, user.ID, s.currency)
	if err != nil {
		return nil, err
	}

	wt, err := applyToWallet(ctx, tx, wallet, models.WalletTransactionDebit, req.Amount, description, refID, refType, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.updateCache(ctx, user.ID, wt.Balance)

	return &models.WalletOperationResponse{
		Success:           true,
		Balance:           wt.Balance,
		WalletTransaction: wt,
	}, nil
}

// Refund credits back a previously debited amount. The unique index on
// (wallet, reference) for refunds guarantees a debit is refunded at most
// once, even under concurrent requests.
func (s *WalletService) Refund(ctx context.Context, req models.WalletRefundRequest) (*models.WalletOperationResponse, error) {
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	wallet, err := tx.EnsureWalletForUpdate(ctx, user.ID, s.currency)
	if err != nil {
		return nil, err
	}

	original, err := tx.GetWalletTransaction(ctx, wallet.ID, req.WalletTransactionID)
	if err != nil {
		return nil, err
	}
	if original.Type != models.WalletTransactionDebit {
		return nil, ErrNotRefundable
	}

	refType := models.ReferenceTypeWalletTransaction
	wt, err := applyToWallet(ctx, tx, wallet, models.WalletTransactionRefund, original.Amount, "Refund: "+original.Description, &original.ID, &refType, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.updateCache(ctx, user.ID, wt.Balance)

	return &models.WalletOperationResponse{
		Success:           true,
		Balance:           wt.Balance,
		WalletTransaction: wt,
	}, nil
}

// History returns the wallet's movements in creation order, the order in
// which replaying them reproduces the stored balance.
func (s *WalletService) History(ctx context.Context, userID string) (*models.WalletHistoryResponse, error) {
	wallet, err := s.store.GetWalletByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			if _, uerr := s.store.GetUser(ctx, userID); uerr != nil {
				return nil, uerr
			}
			return &models.WalletHistoryResponse{
				UserID:       userID,
				Balance:      decimal.Zero,
				Transactions: []models.WalletTransaction{},
			}, nil
		}
		return nil, err
	}

	transactions, err := s.store.ListWalletTransactions(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}

	return &models.WalletHistoryResponse{
		UserID:       userID,
		Balance:      wallet.Balance,
		Transactions: transactions,
	}, nil
}

func (s *WalletService) updateCache(ctx context.Context, userID string, balance decimal.Decimal) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetBalance(ctx, userID, balance); err != nil {
		s.logger.Warn("failed to update balance cache", "userId", userID, "error", err)
	}
}

func (s *WalletService) publish(ctx context.Context, transactions ...*models.Transaction) {
	if s.publisher == nil {
		return
	}
	for _, t := range transactions {
		event := models.TransactionEvent{
			TransactionID: t.ID,
			Type:          t.Type,
			Amount:        t.Amount,
			Currency:      t.Currency,
			UserID:        t.UserID,
			CreatedAt:     t.CreatedAt,
		}
		if err := s.publisher.PublishTransaction(ctx, event); err != nil {
			s.logger.Warn("failed to publish transaction event", "transactionId", t.ID, "error", err)
		}
	}
}
