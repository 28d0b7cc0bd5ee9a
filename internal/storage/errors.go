package storage

import "errors"

var (
	ErrUserNotFound              = errors.New("user not found")
	ErrListingNotFound           = errors.New("listing not found")
	ErrEventNotFound             = errors.New("event not found")
	ErrWalletNotFound            = errors.New("wallet not found")
	ErrTransactionNotFound       = errors.New("transaction not found")
	ErrWalletTransactionNotFound = errors.New("wallet transaction not found")
	ErrInsufficientBalance       = errors.New("insufficient balance")

	// ErrDuplicateTransaction is returned when the unique constraint on
	// (user, listing, type) rejects a second unlock or sponsorship record,
	// or a second refund of the same wallet transaction.
	ErrDuplicateTransaction = errors.New("transaction already recorded for this target")
)
