package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"monetization-service/internal/models"
	"monetization-service/internal/storage"

	"github.com/jmoiron/sqlx"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// BeginTx starts a database transaction and returns a transactional repository
func (s *Store) BeginTx(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, name, campus_id, is_premium, premium_expires, created_at, updated_at
		FROM users WHERE id = $1
	`

	err := s.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user from postgres: %w", err)
	}

	return &user, nil
}

func (s *Store) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing models.Listing

	query := `
		SELECT id, user_id, title, category, price, contact_info, is_featured, created_at
		FROM listings WHERE id = $1
	`

	err := s.db.GetContext(ctx, &listing, query, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing from postgres: %w", err)
	}

	return &listing, nil
}

func (s *Store) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event

	query := `
		SELECT id, user_id, title, is_partnered, sponsorship_level, partnership_fee, created_at
		FROM events WHERE id = $1
	`

	err := s.db.GetContext(ctx, &event, query, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event from postgres: %w", err)
	}

	return &event, nil
}

func (s *Store) GetWalletByUser(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet

	query := `
		SELECT id, user_id, balance, currency, is_active, created_at, updated_at
		FROM wallets WHERE user_id = $1
	`

	err := s.db.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet from postgres: %w", err)
	}

	return &wallet, nil
}

func (s *Store) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var t models.Transaction

	query := `
		SELECT id, type, amount, currency, status, description, user_id,
		       listing_id, event_id, business_ad_id, commission_rate, created_at
		FROM transactions WHERE id = $1
	`

	err := s.db.GetContext(ctx, &t, query, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction from postgres: %w", err)
	}

	return &t, nil
}

func (s *Store) TransactionExists(ctx context.Context, userID, listingID, transactionType string) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND listing_id = $2 AND type = $3 AND status = $4
		)
	`

	err := s.db.QueryRowContext(ctx, query, userID, listingID, transactionType,
		models.TransactionStatusCompleted).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction existence: %w", err)
	}

	return exists, nil
}

func (s *Store) ListUserTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	query := `
		SELECT id, type, amount, currency, status, description, user_id,
		       listing_id, event_id, business_ad_id, commission_rate, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var transactions []models.Transaction
	if err := s.db.SelectContext(ctx, &transactions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

func (s *Store) ListWalletTransactions(ctx context.Context, walletID string) ([]models.WalletTransaction, error) {
	query := `
		SELECT id, wallet_id, type, amount, balance, description,
		       reference_id, reference_type, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at ASC
	`

	var transactions []models.WalletTransaction
	if err := s.db.SelectContext(ctx, &transactions, query, walletID); err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}

	return transactions, nil
}
