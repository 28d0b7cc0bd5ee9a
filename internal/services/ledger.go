package services

import (
	"context"
	"time"

	"monetization-service/internal/models"
	"monetization-service/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCache caches wallet balances on the read path. Implemented by
// redisrepo; may be nil, in which case every read hits the database.
type BalanceCache interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, userID string, balance decimal.Decimal) error
	DeleteBalance(ctx context.Context, userID string) error
}

// EventPublisher feeds committed ledger records to downstream consumers.
// Implemented by kafkarepo; may be nil.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, event models.TransactionEvent) error
}

// appendTransaction validates and appends one ledger record. The ledger is
// append-only: nothing in this service updates or deletes a record once
// written.
func appendTransaction(ctx context.Context, tx storage.Tx, t *models.Transaction) error {
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return tx.InsertTransaction(ctx, t)
}

func newTransaction(txType string, amount decimal.Decimal, currency, description, userID string, now time.Time) *models.Transaction {
	return &models.Transaction{
		ID:          uuid.New().String(),
		Type:        txType,
		Amount:      amount,
		Currency:    currency,
		Status:      models.TransactionStatusCompleted,
		Description: description,
		UserID:      userID,
		CreatedAt:   now,
	}
}
