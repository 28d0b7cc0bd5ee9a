package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Database models

type User struct {
	ID             string     `db:"id"`
	Name           string     `db:"name"`
	CampusID       string     `db:"campus_id"`
	IsPremium      bool       `db:"is_premium"`
	PremiumExpires *time.Time `db:"premium_expires"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

type Listing struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"userId"`
	Title       string          `db:"title" json:"title"`
	Category    string          `db:"category" json:"category"`
	Price       decimal.Decimal `db:"price" json:"price"`
	ContactInfo string          `db:"contact_info" json:"-"`
	IsFeatured  bool            `db:"is_featured" json:"isFeatured"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

type Event struct {
	ID               string              `db:"id" json:"id"`
	UserID           string              `db:"user_id" json:"userId"`
	Title            string              `db:"title" json:"title"`
	IsPartnered      bool                `db:"is_partnered" json:"isPartnered"`
	SponsorshipLevel *string             `db:"sponsorship_level" json:"sponsorshipLevel,omitempty"`
	PartnershipFee   decimal.NullDecimal `db:"partnership_fee" json:"partnershipFee,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"createdAt"`
}

type BusinessAd struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"userId"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	MonthlyFee  decimal.Decimal `db:"monthly_fee" json:"monthlyFee"`
	StartDate   time.Time       `db:"start_date" json:"startDate"`
	EndDate     time.Time       `db:"end_date" json:"endDate"`
	IsActive    bool            `db:"is_active" json:"isActive"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// Transaction is an append-only ledger record. Once written with status
// COMPLETED its amount is never changed; only status may be updated.
type Transaction struct {
	ID             string              `db:"id" json:"id"`
	Type           string              `db:"type" json:"type"`
	Amount         decimal.Decimal     `db:"amount" json:"amount"`
	Currency       string              `db:"currency" json:"currency"`
	Status         string              `db:"status" json:"status"`
	Description    string              `db:"description" json:"description"`
	UserID         string              `db:"user_id" json:"userId"`
	ListingID      *string             `db:"listing_id" json:"listingId,omitempty"`
	EventID        *string             `db:"event_id" json:"eventId,omitempty"`
	BusinessAdID   *string             `db:"business_ad_id" json:"businessAdId,omitempty"`
	CommissionRate decimal.NullDecimal `db:"commission_rate" json:"commissionRate,omitempty"`
	CreatedAt      time.Time           `db:"created_at" json:"createdAt"`
}

type Wallet struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"userId"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	IsActive  bool            `db:"is_active" json:"isActive"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// WalletTransaction records one balance movement. Balance holds the wallet
// balance after this movement was applied, so replaying the rows in creation
// order reproduces the wallet's stored balance.
type WalletTransaction struct {
	ID            string          `db:"id" json:"id"`
	WalletID      string          `db:"wallet_id" json:"walletId"`
	Type          string          `db:"type" json:"type"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	Description   string          `db:"description" json:"description"`
	ReferenceID   *string         `db:"reference_id" json:"referenceId,omitempty"`
	ReferenceType *string         `db:"reference_type" json:"referenceType,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

// TransactionEvent is published to Kafka after a ledger record commits.
type TransactionEvent struct {
	TransactionID string          `json:"transaction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	UserID        string          `json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Transaction type constants
const (
	TransactionTypeListingFee          = "LISTING_FEE"
	TransactionTypeServiceMarketplace  = "SERVICE_MARKETPLACE_FEE"
	TransactionTypeHighValueCommission = "HIGH_VALUE_COMMISSION"
	TransactionTypeContactUnlock       = "CONTACT_UNLOCK"
	TransactionTypeSponsoredListing    = "SPONSORED_LISTING"
	TransactionTypePremiumSubscription = "PREMIUM_SUBSCRIPTION"
	TransactionTypeBusinessAd          = "BUSINESS_AD"
	TransactionTypeEventPartnership    = "EVENT_PARTNERSHIP"
	TransactionTypeWalletTopup         = "WALLET_TOPUP"
)

// Transaction status constants
const (
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusPending   = "PENDING"
	TransactionStatusFailed    = "FAILED"
)

// Wallet transaction type constants
const (
	WalletTransactionCredit = "CREDIT"
	WalletTransactionDebit  = "DEBIT"
	WalletTransactionRefund = "REFUND"
)

// Payment method constants
const (
	PaymentMethodWallet   = "WALLET"
	PaymentMethodExternal = "EXTERNAL"
)

// Reference type constants for wallet transactions
const (
	ReferenceTypeTransaction       = "TRANSACTION"
	ReferenceTypeWalletTransaction = "WALLET_TRANSACTION"
	ReferenceTypeStoreOrder        = "STORE_ORDER"
)

// Sponsorship level constants
const (
	SponsorshipLevelPlatinum = "PLATINUM"
	SponsorshipLevelGold     = "GOLD"
	SponsorshipLevelSilver   = "SILVER"
	SponsorshipLevelBronze   = "BRONZE"
)
