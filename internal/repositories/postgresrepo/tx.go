package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"monetization-service/internal/models"
	"monetization-service/internal/storage"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// pq error code for unique_violation
const uniqueViolation = "23505"

type Tx struct {
	tx *sqlx.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// InsertTransaction appends a ledger record. The partial unique index on
// (user_id, listing_id, type) turns a concurrent duplicate unlock or
// sponsorship into ErrDuplicateTransaction instead of a second charge.
func (t *Tx) InsertTransaction(ctx context.Context, tr *models.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, type, amount, currency, status, description, user_id,
		 listing_id, event_id, business_ad_id, commission_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := t.tx.ExecContext(ctx, query,
		tr.ID, tr.Type, tr.Amount, tr.Currency, tr.Status, tr.Description,
		tr.UserID, tr.ListingID, tr.EventID, tr.BusinessAdID, tr.CommissionRate,
		tr.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return storage.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

func (t *Tx) InsertBusinessAd(ctx context.Context, ad *models.BusinessAd) error {
	query := `
		INSERT INTO business_ads
		(id, user_id, title, description, monthly_fee, start_date, end_date, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := t.tx.ExecContext(ctx, query,
		ad.ID, ad.UserID, ad.Title, ad.Description, ad.MonthlyFee,
		ad.StartDate, ad.EndDate, ad.IsActive, ad.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert business ad: %w", err)
	}

	return nil
}

func (t *Tx) MarkListingFeatured(ctx context.Context, listingID string) error {
	query := `UPDATE listings SET is_featured = TRUE WHERE id = $1`

	result, err := t.tx.ExecContext(ctx, query, listingID)
	if err != nil {
		return fmt.Errorf("failed to mark listing featured: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrListingNotFound
	}

	return nil
}

func (t *Tx) MarkEventPartnered(ctx context.Context, eventID, level string, fee decimal.Decimal) error {
	query := `
		UPDATE events
		SET is_partnered = TRUE, sponsorship_level = $1, partnership_fee = $2
		WHERE id = $3
	`

	result, err := t.tx.ExecContext(ctx, query, level, fee, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event partnered: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrEventNotFound
	}

	return nil
}

func (t *Tx) SetUserPremium(ctx context.Context, userID string, expires time.Time) error {
	query := `
		UPDATE users
		SET is_premium = TRUE, premium_expires = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := t.tx.ExecContext(ctx, query, expires, userID)
	if err != nil {
		return fmt.Errorf("failed to set user premium: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// EnsureWalletForUpdate creates the user's wallet on first use and locks its
// row for the rest of the transaction, serializing concurrent balance changes
// per wallet.
func (t *Tx) EnsureWalletForUpdate(ctx context.Context, userID, currency string) (*models.Wallet, error) {
	insert := `
		INSERT INTO wallets (id, user_id, balance, currency)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := t.tx.ExecContext(ctx, insert, uuid.New().String(), userID, currency); err != nil {
		return nil, fmt.Errorf("failed to ensure wallet: %w", err)
	}

	var wallet models.Wallet
	query := `
		SELECT id, user_id, balance, currency, is_active, created_at, updated_at
		FROM wallets WHERE user_id = $1 FOR UPDATE
	`

	if err := t.tx.GetContext(ctx, &wallet, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	return &wallet, nil
}

func (t *Tx) UpdateWalletBalance(ctx context.Context, walletID string, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	result, err := t.tx.ExecContext(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrWalletNotFound
	}

	return nil
}

func (t *Tx) InsertWalletTransaction(ctx context.Context, wt *models.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions
		(id, wallet_id, type, amount, balance, description, reference_id, reference_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := t.tx.ExecContext(ctx, query,
		wt.ID, wt.WalletID, wt.Type, wt.Amount, wt.Balance, wt.Description,
		wt.ReferenceID, wt.ReferenceType, wt.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return storage.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to insert wallet transaction: %w", err)
	}

	return nil
}

func (t *Tx) GetWalletTransaction(ctx context.Context, walletID, walletTransactionID string) (*models.WalletTransaction, error) {
	var wt models.WalletTransaction

	query := `
		SELECT id, wallet_id, type, amount, balance, description,
		       reference_id, reference_type, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1 AND id = $2
	`

	err := t.tx.GetContext(ctx, &wt, query, walletID, walletTransactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrWalletTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get wallet transaction: %w", err)
	}

	return &wt, nil
}
