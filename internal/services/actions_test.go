package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"monetization-service/internal/models"
	"monetization-service/internal/storage"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestServices(store *memStore, now time.Time) (*ActionService, *WalletService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	wallets := NewWalletService(store, nil, nil, logger, "INR")
	wallets.now = func() time.Time { return now }

	actions := NewActionService(store, wallets, logger, "INR")
	actions.now = func() time.Time { return now }

	return actions, wallets
}

const (
	userAlice = "7b7e2a62-9a1f-4f5e-8a35-0d6a3f1c2b01"
	userBob   = "4f2c9d18-6b3a-4e7d-9c51-8e0a2b4d6f02"
	listingID = "9c1d4e26-3f5a-4b8c-a173-5d7e9f0b2c03"
	eventID   = "2e8f6a34-7c1d-4d9e-b285-9f0a1c3e5d04"
)

func seedUser(store *memStore, id string, premiumUntil *time.Time) {
	store.addUser(models.User{
		ID:             id,
		Name:           "test user",
		IsPremium:      premiumUntil != nil,
		PremiumExpires: premiumUntil,
	})
}

func seedListing(store *memStore, id, ownerID, category string, price int64) {
	store.addListing(models.Listing{
		ID:          id,
		UserID:      ownerID,
		Title:       "calculus textbook",
		Category:    category,
		Price:       decimal.NewFromInt(price),
		ContactInfo: "+91 98765 43210",
	})
}

func transactionsOfType(store *memStore, txType string) []models.Transaction {
	var out []models.Transaction
	for _, t := range store.transactions {
		if t.Type == txType {
			out = append(out, t)
		}
	}
	return out
}

func TestChargeListingFees_ServiceCategory(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	seedListing(store, listingID, userAlice, "services-assignments", 50)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.ChargeListingFees(context.Background(), listingID, models.ListingFeesRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(resp.Transactions))
	}
	if got := resp.Transactions[0]; got.Type != models.TransactionTypeListingFee || !got.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("first transaction: got %s %s, want LISTING_FEE 10", got.Type, got.Amount)
	}
	if got := resp.Transactions[1]; got.Type != models.TransactionTypeServiceMarketplace || !got.Amount.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("second transaction: got %s %s, want SERVICE_MARKETPLACE_FEE 15", got.Type, got.Amount)
	}
	if !resp.TotalCharged.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("total: got %s, want 25", resp.TotalCharged)
	}
}

func TestChargeListingFees_ActivePremium(t *testing.T) {
	expires := testNow.Add(24 * time.Hour)
	store := newMemStore()
	seedUser(store, userAlice, &expires)
	seedListing(store, listingID, userAlice, "services-assignments", 50)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.ChargeListingFees(context.Background(), listingID, models.ListingFeesRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Transactions) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(resp.Transactions))
	}
	if got := resp.Transactions[0]; got.Type != models.TransactionTypeListingFee || !got.Amount.IsZero() {
		t.Fatalf("transaction: got %s %s, want LISTING_FEE 0", got.Type, got.Amount)
	}
	if n := len(transactionsOfType(store, models.TransactionTypeServiceMarketplace)); n != 0 {
		t.Fatalf("service marketplace transactions: got %d, want 0", n)
	}
}

func TestChargeListingFees_ExpiredPremium(t *testing.T) {
	// Flag still set, expiry elapsed: full fees apply.
	expires := testNow.Add(-time.Second)
	store := newMemStore()
	seedUser(store, userAlice, &expires)
	seedListing(store, listingID, userAlice, "services-assignments", 50)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.ChargeListingFees(context.Background(), listingID, models.ListingFeesRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.TotalCharged.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("total: got %s, want 25", resp.TotalCharged)
	}
}

func TestChargeListingFees_HighValueCommission(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	seedListing(store, listingID, userAlice, "electronics", 75000)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.ChargeListingFees(context.Background(), listingID, models.ListingFeesRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	commissions := transactionsOfType(store, models.TransactionTypeHighValueCommission)
	if len(commissions) != 1 {
		t.Fatalf("commission transactions: got %d, want 1", len(commissions))
	}
	if !commissions[0].Amount.Equal(decimal.NewFromInt(3750)) {
		t.Fatalf("commission amount: got %s, want 3750", commissions[0].Amount)
	}
	if !commissions[0].CommissionRate.Valid || !commissions[0].CommissionRate.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("commission rate: got %v, want 5", commissions[0].CommissionRate)
	}
	if !resp.TotalCharged.Equal(decimal.NewFromInt(3760)) {
		t.Fatalf("total: got %s, want 3760 (10 + 3750)", resp.TotalCharged)
	}
}

func TestChargeListingFees_NotOwner(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	seedUser(store, userBob, nil)
	seedListing(store, listingID, userBob, "books", 100)
	actions, _ := newTestServices(store, testNow)

	_, err := actions.ChargeListingFees(context.Background(), listingID, models.ListingFeesRequest{UserID: userAlice})
	if !errors.Is(err, ErrNotListingOwner) {
		t.Fatalf("error: got %v, want ErrNotListingOwner", err)
	}
}

func TestUnlockContact_Idempotent(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	seedUser(store, userBob, nil)
	seedListing(store, listingID, userBob, "books", 100)
	actions, _ := newTestServices(store, testNow)

	first, err := actions.UnlockContact(context.Background(), listingID, models.UnlockContactRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("first unlock: unexpected error: %v", err)
	}
	if first.AlreadyUnlocked {
		t.Fatalf("first unlock: alreadyUnlocked must be false")
	}
	if !first.FeeCharged.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("first unlock fee: got %s, want 5", first.FeeCharged)
	}
	if first.ContactInfo == "" {
		t.Fatalf("first unlock: contact info must be returned")
	}

	second, err := actions.UnlockContact(context.Background(), listingID, models.UnlockContactRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("second unlock: unexpected error: %v", err)
	}
	if !second.AlreadyUnlocked {
		t.Fatalf("second unlock: alreadyUnlocked must be true")
	}
	if !second.FeeCharged.IsZero() {
		t.Fatalf("second unlock fee: got %s, want 0", second.FeeCharged)
	}

	if n := len(transactionsOfType(store, models.TransactionTypeContactUnlock)); n != 1 {
		t.Fatalf("unlock transactions: got %d, want exactly 1", n)
	}
}

func TestUnlockContact_OwnListing(t *testing.T) {
	store := newMemStore()
	seedUser(store, userBob, nil)
	seedListing(store, listingID, userBob, "books", 100)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.UnlockContact(context.Background(), listingID, models.UnlockContactRequest{UserID: userBob})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OwnListing {
		t.Fatalf("ownListing must be true")
	}
	if !resp.FeeCharged.IsZero() {
		t.Fatalf("fee: got %s, want 0", resp.FeeCharged)
	}
	if resp.ContactInfo == "" {
		t.Fatalf("contact info must still be returned")
	}
	if len(store.transactions) != 0 {
		t.Fatalf("transactions: got %d, want none for self-unlock", len(store.transactions))
	}
}

func TestUnlockContact_PremiumWaived(t *testing.T) {
	expires := testNow.Add(time.Hour)
	store := newMemStore()
	seedUser(store, userAlice, &expires)
	seedUser(store, userBob, nil)
	seedListing(store, listingID, userBob, "books", 100)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.UnlockContact(context.Background(), listingID, models.UnlockContactRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FeeCharged.IsZero() {
		t.Fatalf("fee: got %s, want 0 for active premium", resp.FeeCharged)
	}

	// The zero-amount record still marks the pair as unlocked.
	unlocks := transactionsOfType(store, models.TransactionTypeContactUnlock)
	if len(unlocks) != 1 || !unlocks[0].Amount.IsZero() {
		t.Fatalf("unlock transactions: got %v, want one zero-amount record", unlocks)
	}

	second, err := actions.UnlockContact(context.Background(), listingID, models.UnlockContactRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("second unlock: unexpected error: %v", err)
	}
	if !second.AlreadyUnlocked {
		t.Fatalf("second unlock: alreadyUnlocked must be true")
	}
}

func TestSponsorListing(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	seedListing(store, listingID, userAlice, "books", 100)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.SponsorListing(context.Background(), listingID, models.SponsorListingRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FeeCharged.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("fee: got %s, want 25", resp.FeeCharged)
	}
	if !resp.Listing.IsFeatured {
		t.Fatalf("listing must be featured after sponsoring")
	}
	if !store.listings[listingID].IsFeatured {
		t.Fatalf("stored listing must be featured")
	}

	_, err = actions.SponsorListing(context.Background(), listingID, models.SponsorListingRequest{UserID: userAlice})
	if !errors.Is(err, ErrAlreadyFeatured) {
		t.Fatalf("repeat sponsor: got %v, want ErrAlreadyFeatured", err)
	}
	if n := len(transactionsOfType(store, models.TransactionTypeSponsoredListing)); n != 1 {
		t.Fatalf("sponsor transactions: got %d, want exactly 1", n)
	}
}

func TestSponsorListing_PremiumDiscount(t *testing.T) {
	expires := testNow.Add(time.Hour)
	store := newMemStore()
	seedUser(store, userAlice, &expires)
	seedListing(store, listingID, userAlice, "books", 100)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.SponsorListing(context.Background(), listingID, models.SponsorListingRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FeeCharged.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("fee: got %s, want 15 (40%% premium discount)", resp.FeeCharged)
	}
}

func TestSponsorListing_NotOwner(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	seedUser(store, userBob, nil)
	seedListing(store, listingID, userBob, "books", 100)
	actions, _ := newTestServices(store, testNow)

	_, err := actions.SponsorListing(context.Background(), listingID, models.SponsorListingRequest{UserID: userAlice})
	if !errors.Is(err, ErrNotListingOwner) {
		t.Fatalf("error: got %v, want ErrNotListingOwner", err)
	}
}

func TestSponsorListing_WalletInsufficientRollsBack(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	seedListing(store, listingID, userAlice, "books", 100)
	store.addWallet(models.Wallet{
		ID:       "wallet-alice",
		UserID:   userAlice,
		Balance:  decimal.NewFromInt(10),
		Currency: "INR",
		IsActive: true,
	})
	actions, _ := newTestServices(store, testNow)

	_, err := actions.SponsorListing(context.Background(), listingID, models.SponsorListingRequest{
		UserID:        userAlice,
		PaymentMethod: models.PaymentMethodWallet,
	})
	if !errors.Is(err, storage.ErrInsufficientBalance) {
		t.Fatalf("error: got %v, want ErrInsufficientBalance", err)
	}

	// Nothing may partially apply: no fee record, flag untouched, balance kept.
	if n := len(transactionsOfType(store, models.TransactionTypeSponsoredListing)); n != 0 {
		t.Fatalf("sponsor transactions after rollback: got %d, want 0", n)
	}
	if store.listings[listingID].IsFeatured {
		t.Fatalf("listing must not be featured after rollback")
	}
	if !store.wallets[userAlice].Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("wallet balance after rollback: got %s, want 10", store.wallets[userAlice].Balance)
	}
}

func TestSubscribePremium(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.SubscribePremium(context.Background(), models.SubscribePremiumRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FeeCharged.Equal(decimal.NewFromInt(99)) {
		t.Fatalf("fee: got %s, want 99", resp.FeeCharged)
	}

	wantExpires := testNow.AddDate(0, 1, 0)
	if !resp.PremiumExpires.Equal(wantExpires) {
		t.Fatalf("expiry: got %v, want %v", resp.PremiumExpires, wantExpires)
	}

	u := store.users[userAlice]
	if !u.IsPremium || u.PremiumExpires == nil || !u.PremiumExpires.Equal(wantExpires) {
		t.Fatalf("stored user premium state: got %+v, want premium until %v", u, wantExpires)
	}
}

func TestSubscribePremium_ReplacesExpiry(t *testing.T) {
	old := testNow.AddDate(0, 0, 20)
	store := newMemStore()
	seedUser(store, userAlice, &old)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.SubscribePremium(context.Background(), models.SubscribePremiumRequest{UserID: userAlice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The new expiry replaces the old one instead of stacking on it.
	wantExpires := testNow.AddDate(0, 1, 0)
	if !resp.PremiumExpires.Equal(wantExpires) {
		t.Fatalf("expiry: got %v, want %v", resp.PremiumExpires, wantExpires)
	}
}

func TestPartnerEvent_Gold(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	store.addEvent(models.Event{ID: eventID, UserID: userBob, Title: "tech fest"})
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.PartnerEvent(context.Background(), eventID, models.PartnerEventRequest{
		UserID:           userAlice,
		SponsorshipLevel: models.SponsorshipLevelGold,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FeeCharged.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("fee: got %s, want 3000", resp.FeeCharged)
	}
	if !resp.Event.IsPartnered {
		t.Fatalf("event must be partnered")
	}

	stored := store.events[eventID]
	if !stored.IsPartnered || !stored.PartnershipFee.Valid || !stored.PartnershipFee.Decimal.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("stored event: got %+v, want partnered with fee 3000", stored)
	}
}

func TestPartnerEvent_UnknownLevelFallback(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	store.addEvent(models.Event{ID: eventID, UserID: userBob, Title: "tech fest"})
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.PartnerEvent(context.Background(), eventID, models.PartnerEventRequest{
		UserID:           userAlice,
		SponsorshipLevel: "TITANIUM",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FeeCharged.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("fee: got %s, want 1000 fallback", resp.FeeCharged)
	}
}

func TestPartnerEvent_AlreadyPartnered(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	store.addEvent(models.Event{ID: eventID, UserID: userBob, Title: "tech fest", IsPartnered: true})
	actions, _ := newTestServices(store, testNow)

	_, err := actions.PartnerEvent(context.Background(), eventID, models.PartnerEventRequest{
		UserID:           userAlice,
		SponsorshipLevel: models.SponsorshipLevelGold,
	})
	if !errors.Is(err, ErrAlreadyPartnered) {
		t.Fatalf("error: got %v, want ErrAlreadyPartnered", err)
	}
}

func TestCreateBusinessAd_DefaultDuration(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.CreateBusinessAd(context.Background(), models.CreateBusinessAdRequest{
		UserID: userAlice,
		Title:  "campus cafe",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FeeCharged.Equal(decimal.NewFromInt(199)) {
		t.Fatalf("fee: got %s, want 199", resp.FeeCharged)
	}

	wantEnd := testNow.AddDate(0, 0, 30)
	if !resp.BusinessAd.EndDate.Equal(wantEnd) {
		t.Fatalf("end date: got %v, want %v (start + 30 days)", resp.BusinessAd.EndDate, wantEnd)
	}
	if _, ok := store.ads[resp.BusinessAd.ID]; !ok {
		t.Fatalf("ad must be stored")
	}
	if n := len(transactionsOfType(store, models.TransactionTypeBusinessAd)); n != 1 {
		t.Fatalf("business ad transactions: got %d, want 1", n)
	}
}

func TestCreateBusinessAd_EndBeforeStart(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	actions, _ := newTestServices(store, testNow)

	end := testNow.Add(-time.Hour)
	_, err := actions.CreateBusinessAd(context.Background(), models.CreateBusinessAdRequest{
		UserID:  userAlice,
		Title:   "campus cafe",
		EndDate: &end,
	})
	if !errors.Is(err, ErrInvalidAdPeriod) {
		t.Fatalf("error: got %v, want ErrInvalidAdPeriod", err)
	}
}

func TestPaidActionFromWallet(t *testing.T) {
	store := newMemStore()
	seedUser(store, userAlice, nil)
	seedListing(store, listingID, userAlice, "books", 100)
	store.addWallet(models.Wallet{
		ID:       "wallet-alice",
		UserID:   userAlice,
		Balance:  decimal.NewFromInt(100),
		Currency: "INR",
		IsActive: true,
	})
	actions, _ := newTestServices(store, testNow)

	resp, err := actions.SponsorListing(context.Background(), listingID, models.SponsorListingRequest{
		UserID:        userAlice,
		PaymentMethod: models.PaymentMethodWallet,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !store.wallets[userAlice].Balance.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("balance: got %s, want 75", store.wallets[userAlice].Balance)
	}
	if len(store.walletTxs) != 1 {
		t.Fatalf("wallet transactions: got %d, want 1", len(store.walletTxs))
	}
	wt := store.walletTxs[0]
	if wt.Type != models.WalletTransactionDebit || !wt.Amount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("wallet transaction: got %s %s, want DEBIT 25", wt.Type, wt.Amount)
	}
	if wt.ReferenceID == nil || *wt.ReferenceID != resp.Transaction.ID {
		t.Fatalf("wallet transaction must reference the ledger record %s", resp.Transaction.ID)
	}
}
