// Package storage defines the persistence contract the monetization engine
// runs against. The postgresrepo package implements it for production; tests
// substitute an in-memory implementation.
package storage

import (
	"context"
	"time"

	"monetization-service/internal/models"

	"github.com/shopspring/decimal"
)

type Store interface {
	// BeginTx opens one unit of work. Every fee record and its target entity
	// mutation go through the same Tx so they commit or roll back together.
	BeginTx(ctx context.Context) (Tx, error)

	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	GetWalletByUser(ctx context.Context, userID string) (*models.Wallet, error)
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)

	// TransactionExists reports whether a transaction of the given type was
	// already recorded for the (user, listing) pair. Used as the idempotency
	// fast path for contact unlock and sponsorship.
	TransactionExists(ctx context.Context, userID, listingID, transactionType string) (bool, error)

	ListUserTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	ListWalletTransactions(ctx context.Context, walletID string) ([]models.WalletTransaction, error)
}

type Tx interface {
	InsertTransaction(ctx context.Context, t *models.Transaction) error
	InsertBusinessAd(ctx context.Context, ad *models.BusinessAd) error
	MarkListingFeatured(ctx context.Context, listingID string) error
	MarkEventPartnered(ctx context.Context, eventID, level string, fee decimal.Decimal) error
	SetUserPremium(ctx context.Context, userID string, expires time.Time) error

	// EnsureWalletForUpdate returns the user's wallet, creating it with a zero
	// balance on first use, and holds it locked until the Tx ends. All balance
	// reads that precede a write must go through this.
	EnsureWalletForUpdate(ctx context.Context, userID, currency string) (*models.Wallet, error)
	UpdateWalletBalance(ctx context.Context, walletID string, balance decimal.Decimal) error
	InsertWalletTransaction(ctx context.Context, wt *models.WalletTransaction) error
	GetWalletTransaction(ctx context.Context, walletID, walletTransactionID string) (*models.WalletTransaction, error)

	Commit() error
	Rollback() error
}
