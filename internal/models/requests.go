package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// API request models

type ListingFeesRequest struct {
	UserID        string `json:"userId" validate:"required,uuid4"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof=WALLET EXTERNAL"`
}

type UnlockContactRequest struct {
	UserID        string `json:"userId" validate:"required,uuid4"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof=WALLET EXTERNAL"`
}

type SponsorListingRequest struct {
	UserID        string `json:"userId" validate:"required,uuid4"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof=WALLET EXTERNAL"`
}

type SubscribePremiumRequest struct {
	UserID        string `json:"userId" validate:"required,uuid4"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof=WALLET EXTERNAL"`
}

type CreateBusinessAdRequest struct {
	UserID        string           `json:"userId" validate:"required,uuid4"`
	Title         string           `json:"title" validate:"required"`
	Description   string           `json:"description"`
	MonthlyFee    *decimal.Decimal `json:"monthlyFee"`
	StartDate     *time.Time       `json:"startDate"`
	EndDate       *time.Time       `json:"endDate"`
	PaymentMethod string           `json:"paymentMethod" validate:"omitempty,oneof=WALLET EXTERNAL"`
}

type PartnerEventRequest struct {
	UserID           string `json:"userId" validate:"required,uuid4"`
	SponsorshipLevel string `json:"sponsorshipLevel" validate:"required"`
	PaymentMethod    string `json:"paymentMethod" validate:"omitempty,oneof=WALLET EXTERNAL"`
}

type WalletTopUpRequest struct {
	UserID string          `json:"userId" validate:"required,uuid4"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type WalletSpendRequest struct {
	UserID        string          `json:"userId" validate:"required,uuid4"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Description   string          `json:"description"`
	ReferenceID   string          `json:"referenceId"`
	ReferenceType string          `json:"referenceType"`
}

type WalletRefundRequest struct {
	UserID              string `json:"userId" validate:"required,uuid4"`
	WalletTransactionID string `json:"walletTransactionId" validate:"required,uuid4"`
}

// API response models

type ListingFeesResponse struct {
	Success      bool            `json:"success"`
	TotalCharged decimal.Decimal `json:"totalCharged"`
	Transactions []Transaction   `json:"transactions"`
}

type UnlockContactResponse struct {
	Success         bool            `json:"success"`
	OwnListing      bool            `json:"ownListing,omitempty"`
	AlreadyUnlocked bool            `json:"alreadyUnlocked,omitempty"`
	FeeCharged      decimal.Decimal `json:"feeCharged"`
	ContactInfo     string          `json:"contactInfo"`
	Transaction     *Transaction    `json:"transaction,omitempty"`
}

type SponsorListingResponse struct {
	Success     bool            `json:"success"`
	FeeCharged  decimal.Decimal `json:"feeCharged"`
	Listing     *Listing        `json:"listing"`
	Transaction *Transaction    `json:"transaction"`
}

type SubscribePremiumResponse struct {
	Success        bool            `json:"success"`
	FeeCharged     decimal.Decimal `json:"feeCharged"`
	PremiumExpires time.Time       `json:"premiumExpires"`
	Transaction    *Transaction    `json:"transaction"`
}

type CreateBusinessAdResponse struct {
	Success     bool            `json:"success"`
	FeeCharged  decimal.Decimal `json:"feeCharged"`
	BusinessAd  *BusinessAd     `json:"businessAd"`
	Transaction *Transaction    `json:"transaction"`
}

type PartnerEventResponse struct {
	Success     bool            `json:"success"`
	FeeCharged  decimal.Decimal `json:"feeCharged"`
	Event       *Event          `json:"event"`
	Transaction *Transaction    `json:"transaction"`
}

type WalletBalanceResponse struct {
	UserID   string          `json:"userId"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

type WalletOperationResponse struct {
	Success           bool               `json:"success"`
	Balance           decimal.Decimal    `json:"balance"`
	WalletTransaction *WalletTransaction `json:"walletTransaction"`
	Transaction       *Transaction       `json:"transaction,omitempty"`
}

type WalletHistoryResponse struct {
	UserID       string              `json:"userId"`
	Balance      decimal.Decimal     `json:"balance"`
	Transactions []WalletTransaction `json:"transactions"`
}

type UserTransactionsResponse struct {
	UserID       string        `json:"userId"`
	Transactions []Transaction `json:"transactions"`
}
