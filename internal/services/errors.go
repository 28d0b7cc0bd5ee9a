package services

import "errors"

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrNotListingOwner  = errors.New("listing does not belong to this user")
	ErrAlreadyFeatured  = errors.New("listing is already featured")
	ErrAlreadyPartnered = errors.New("event already has a partner")
	ErrNotRefundable    = errors.New("wallet transaction is not a refundable debit")
	ErrInvalidAdPeriod  = errors.New("ad end date must be after its start date")
)
