package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"monetization-service/internal/fees"
	"monetization-service/internal/models"
	"monetization-service/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActionService orchestrates fee-bearing user actions. Each action follows
// the same shape: validate and authorize against current snapshots, compute
// the fee with the point-in-time premium status, then record the ledger
// transaction and mutate the target entity inside one database transaction.
type ActionService struct {
	store    storage.Store
	wallets  *WalletService
	logger   *slog.Logger
	currency string
	now      func() time.Time
}

func NewActionService(store storage.Store, wallets *WalletService, logger *slog.Logger, currency string) *ActionService {
	return &ActionService{
		store:    store,
		wallets:  wallets,
		logger:   logger,
		currency: currency,
		now:      time.Now,
	}
}

// payFromWallet debits the actor's wallet within the action's transaction,
// referencing the ledger record that caused the charge.
func (s *ActionService) payFromWallet(ctx context.Context, tx storage.Tx, userID string, amount decimal.Decimal, description, transactionID string, now time.Time) (*models.WalletTransaction, error) {
	wallet, err := tx.EnsureWalletForUpdate(ctx, userID, s.currency)
	if err != nil {
		return nil, err
	}

	refType := models.ReferenceTypeTransaction
	return applyToWallet(ctx, tx, wallet, models.WalletTransactionDebit, amount, description, &transactionID, &refType, now)
}

// ChargeListingFees applies the listing fee, the service-marketplace
// surcharge, and the high-value commission for a freshly created listing.
// The listing fee is recorded even at amount zero; the surcharge and the
// commission are skipped entirely when they do not apply.
func (s *ActionService) ChargeListingFees(ctx context.Context, listingID string, req models.ListingFeesRequest) (*models.ListingFeesResponse, error) {
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID != user.ID {
		return nil, ErrNotListingOwner
	}

	now := s.now()
	activePremium := fees.IsActivePremium(user, now)

	var transactions []*models.Transaction

	listingFee := fees.ListingFee(activePremium)
	t := newTransaction(models.TransactionTypeListingFee, listingFee, s.currency,
		fmt.Sprintf("Listing fee for %q", listing.Title), user.ID, now)
	t.ListingID = &listing.ID
	transactions = append(transactions, t)

	if serviceFee := fees.ServiceMarketplaceFee(listing.Category, activePremium); serviceFee.IsPositive() {
		t := newTransaction(models.TransactionTypeServiceMarketplace, serviceFee, s.currency,
			fmt.Sprintf("Service marketplace fee for %q", listing.Title), user.ID, now)
		t.ListingID = &listing.ID
		transactions = append(transactions, t)
	}

	if rate := fees.CommissionRate(listing.Price); rate > 0 {
		amount := fees.CommissionAmount(listing.Price, rate)
		t := newTransaction(models.TransactionTypeHighValueCommission, amount, s.currency,
			fmt.Sprintf("High-value commission (%d%%) for %q", rate, listing.Title), user.ID, now)
		t.ListingID = &listing.ID
		t.CommissionRate = decimal.NewNullDecimal(decimal.NewFromInt(rate))
		transactions = append(transactions, t)
	}

	total := decimal.Zero
	for _, t := range transactions {
		total = total.Add(t.Amount)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range transactions {
		if err := appendTransaction(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	var debited *models.WalletTransaction
	if req.PaymentMethod == models.PaymentMethodWallet && total.IsPositive() {
		debited, err = s.payFromWallet(ctx, tx, user.ID, total,
			fmt.Sprintf("Listing fees for %q", listing.Title), transactions[0].ID, now)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if debited != nil {
		s.wallets.updateCache(ctx, user.ID, debited.Balance)
	}
	s.wallets.publish(ctx, transactions...)

	response := &models.ListingFeesResponse{
		Success:      true,
		TotalCharged: total,
		Transactions: make([]models.Transaction, 0, len(transactions)),
	}
	for _, t := range transactions {
		response.Transactions = append(response.Transactions, *t)
	}
	return response, nil
}

// UnlockContact charges the contact-unlock fee once per (user, listing) pair.
// The listing owner always gets the contact info for free, a repeat request
// short-circuits without a second charge, and active premium users unlock at
// amount zero (still recorded, so the pair stays unlocked).
func (s *ActionService) UnlockContact(ctx context.Context, listingID string, req models.UnlockContactRequest) (*models.UnlockContactResponse, error) {
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if listing.UserID == user.ID {
		return &models.UnlockContactResponse{
			Success:     true,
			OwnListing:  true,
			FeeCharged:  decimal.Zero,
			ContactInfo: listing.ContactInfo,
		}, nil
	}

	alreadyUnlocked := &models.UnlockContactResponse{
		Success:         true,
		AlreadyUnlocked: true,
		FeeCharged:      decimal.Zero,
		ContactInfo:     listing.ContactInfo,
	}

	exists, err := s.store.TransactionExists(ctx, user.ID, listing.ID, models.TransactionTypeContactUnlock)
	if err != nil {
		return nil, err
	}
	if exists {
		return alreadyUnlocked, nil
	}

	now := s.now()
	fee := fees.ContactUnlockFee(fees.IsActivePremium(user, now))

	t := newTransaction(models.TransactionTypeContactUnlock, fee, s.currency,
		fmt.Sprintf("Contact unlock for %q", listing.Title), user.ID, now)
	t.ListingID = &listing.ID

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := appendTransaction(ctx, tx, t); err != nil {
		// Lost the race: a concurrent request recorded the unlock first.
		if errors.Is(err, storage.ErrDuplicateTransaction) {
			return alreadyUnlocked, nil
		}
		return nil, err
	}

	var debited *models.WalletTransaction
	if req.PaymentMethod == models.PaymentMethodWallet && fee.IsPositive() {
		debited, err = s.payFromWallet(ctx, tx, user.ID, fee, t.Description, t.ID, now)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if debited != nil {
		s.wallets.updateCache(ctx, user.ID, debited.Balance)
	}
	s.wallets.publish(ctx, t)

	return &models.UnlockContactResponse{
		Success:     true,
		FeeCharged:  fee,
		ContactInfo: listing.ContactInfo,
		Transaction: t,
	}, nil
}

// SponsorListing records the boost fee and flips the listing to featured in
// one step. Only the owner may sponsor, and an already featured listing is
// rejected rather than charged again.
func (s *ActionService) SponsorListing(ctx context.Context, listingID string, req models.SponsorListingRequest) (*models.SponsorListingResponse, error) {
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID != user.ID {
		return nil, ErrNotListingOwner
	}
	if listing.IsFeatured {
		return nil, ErrAlreadyFeatured
	}

	now := s.now()
	fee := fees.SponsoredListingFee(fees.IsActivePremium(user, now))

	t := newTransaction(models.TransactionTypeSponsoredListing, fee, s.currency,
		fmt.Sprintf("Sponsored listing boost for %q", listing.Title), user.ID, now)
	t.ListingID = &listing.ID

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := appendTransaction(ctx, tx, t); err != nil {
		if errors.Is(err, storage.ErrDuplicateTransaction) {
			return nil, ErrAlreadyFeatured
		}
		return nil, err
	}
	if err := tx.MarkListingFeatured(ctx, listing.ID); err != nil {
		return nil, err
	}

	var debited *models.WalletTransaction
	if req.PaymentMethod == models.PaymentMethodWallet {
		debited, err = s.payFromWallet(ctx, tx, user.ID, fee, t.Description, t.ID, now)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if debited != nil {
		s.wallets.updateCache(ctx, user.ID, debited.Balance)
	}
	s.wallets.publish(ctx, t)

	listing.IsFeatured = true
	return &models.SponsorListingResponse{
		Success:     true,
		FeeCharged:  fee,
		Listing:     listing,
		Transaction: t,
	}, nil
}

// SubscribePremium charges the subscription fee and grants premium until one
// calendar month from now, replacing any previous expiry.
func (s *ActionService) SubscribePremium(ctx context.Context, req models.SubscribePremiumRequest) (*models.SubscribePremiumResponse, error) {
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fee := fees.PremiumSubscriptionFee()
	expires := fees.PremiumExpiry(now)

	t := newTransaction(models.TransactionTypePremiumSubscription, fee, s.currency,
		"Premium subscription (1 month)", user.ID, now)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := appendTransaction(ctx, tx, t); err != nil {
		return nil, err
	}
	if err := tx.SetUserPremium(ctx, user.ID, expires); err != nil {
		return nil, err
	}

	var debited *models.WalletTransaction
	if req.PaymentMethod == models.PaymentMethodWallet {
		debited, err = s.payFromWallet(ctx, tx, user.ID, fee, t.Description, t.ID, now)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if debited != nil {
		s.wallets.updateCache(ctx, user.ID, debited.Balance)
	}
	s.wallets.publish(ctx, t)

	return &models.SubscribePremiumResponse{
		Success:        true,
		FeeCharged:     fee,
		PremiumExpires: expires,
		Transaction:    t,
	}, nil
}

// CreateBusinessAd stores the ad and charges the flat posting fee together.
func (s *ActionService) CreateBusinessAd(ctx context.Context, req models.CreateBusinessAdRequest) (*models.CreateBusinessAdResponse, error) {
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	start := now
	if req.StartDate != nil {
		start = *req.StartDate
	}
	end := fees.BusinessAdEndDate(start, req.EndDate)
	if !end.After(start) {
		return nil, ErrInvalidAdPeriod
	}

	fee := fees.BusinessAdFee()
	monthlyFee := fee
	if req.MonthlyFee != nil {
		if req.MonthlyFee.IsNegative() {
			return nil, ErrInvalidAmount
		}
		monthlyFee = *req.MonthlyFee
	}

	ad := &models.BusinessAd{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		MonthlyFee:  monthlyFee,
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
		CreatedAt:   now,
	}

	t := newTransaction(models.TransactionTypeBusinessAd, fee, s.currency,
		fmt.Sprintf("Business ad %q", ad.Title), user.ID, now)
	t.BusinessAdID = &ad.ID

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.InsertBusinessAd(ctx, ad); err != nil {
		return nil, err
	}
	if err := appendTransaction(ctx, tx, t); err != nil {
		return nil, err
	}

	var debited *models.WalletTransaction
	if req.PaymentMethod == models.PaymentMethodWallet {
		debited, err = s.payFromWallet(ctx, tx, user.ID, fee, t.Description, t.ID, now)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if debited != nil {
		s.wallets.updateCache(ctx, user.ID, debited.Balance)
	}
	s.wallets.publish(ctx, t)

	return &models.CreateBusinessAdResponse{
		Success:     true,
		FeeCharged:  fee,
		BusinessAd:  ad,
		Transaction: t,
	}, nil
}

// PartnerEvent charges the tiered sponsorship fee and marks the event as
// partnered, storing the fee on the event.
func (s *ActionService) PartnerEvent(ctx context.Context, eventID string, req models.PartnerEventRequest) (*models.PartnerEventResponse, error) {
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsPartnered {
		return nil, ErrAlreadyPartnered
	}

	now := s.now()
	fee := fees.EventPartnershipFee(req.SponsorshipLevel)

	t := newTransaction(models.TransactionTypeEventPartnership, fee, s.currency,
		fmt.Sprintf("%s partnership for event %q", req.SponsorshipLevel, event.Title), user.ID, now)
	t.EventID = &event.ID

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := appendTransaction(ctx, tx, t); err != nil {
		return nil, err
	}
	if err := tx.MarkEventPartnered(ctx, event.ID, req.SponsorshipLevel, fee); err != nil {
		return nil, err
	}

	var debited *models.WalletTransaction
	if req.PaymentMethod == models.PaymentMethodWallet {
		debited, err = s.payFromWallet(ctx, tx, user.ID, fee, t.Description, t.ID, now)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if debited != nil {
		s.wallets.updateCache(ctx, user.ID, debited.Balance)
	}
	s.wallets.publish(ctx, t)

	event.IsPartnered = true
	event.SponsorshipLevel = &req.SponsorshipLevel
	event.PartnershipFee = decimal.NewNullDecimal(fee)
	return &models.PartnerEventResponse{
		Success:     true,
		FeeCharged:  fee,
		Event:       event,
		Transaction: t,
	}, nil
}

// GetTransaction looks up a single ledger record.
func (s *ActionService) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, transactionID)
}

// ListUserTransactions returns the user's ledger records, newest first.
func (s *ActionService) ListUserTransactions(ctx context.Context, userID string) (*models.UserTransactionsResponse, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	transactions, err := s.store.ListUserTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserTransactionsResponse{
		UserID:       userID,
		Transactions: transactions,
	}, nil
}
