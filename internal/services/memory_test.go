package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"monetization-service/internal/models"
	"monetization-service/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory storage.Store used instead of Postgres in tests.
// A memTx holds the store's lock from Begin until Commit or Rollback and
// restores a snapshot on rollback, so the commit-or-nothing behavior of the
// real store is preserved.
type memStore struct {
	mu           sync.Mutex
	users        map[string]models.User
	listings     map[string]models.Listing
	events       map[string]models.Event
	ads          map[string]models.BusinessAd
	transactions []models.Transaction
	wallets      map[string]models.Wallet // keyed by user id
	walletTxs    []models.WalletTransaction
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]models.User),
		listings: make(map[string]models.Listing),
		events:   make(map[string]models.Event),
		ads:      make(map[string]models.BusinessAd),
		wallets:  make(map[string]models.Wallet),
	}
}

func (m *memStore) addUser(u models.User) {
	m.users[u.ID] = u
}

func (m *memStore) addListing(l models.Listing) {
	m.listings[l.ID] = l
}

func (m *memStore) addEvent(e models.Event) {
	m.events[e.ID] = e
}

func (m *memStore) addWallet(w models.Wallet) {
	m.wallets[w.UserID] = w
}

type memSnapshot struct {
	users        map[string]models.User
	listings     map[string]models.Listing
	events       map[string]models.Event
	ads          map[string]models.BusinessAd
	transactions []models.Transaction
	wallets      map[string]models.Wallet
	walletTxs    []models.WalletTransaction
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		users:        make(map[string]models.User, len(m.users)),
		listings:     make(map[string]models.Listing, len(m.listings)),
		events:       make(map[string]models.Event, len(m.events)),
		ads:          make(map[string]models.BusinessAd, len(m.ads)),
		transactions: append([]models.Transaction(nil), m.transactions...),
		wallets:      make(map[string]models.Wallet, len(m.wallets)),
		walletTxs:    append([]models.WalletTransaction(nil), m.walletTxs...),
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.listings {
		s.listings[k] = v
	}
	for k, v := range m.events {
		s.events[k] = v
	}
	for k, v := range m.ads {
		s.ads[k] = v
	}
	for k, v := range m.wallets {
		s.wallets[k] = v
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.users = s.users
	m.listings = s.listings
	m.events = s.events
	m.ads = s.ads
	m.transactions = s.transactions
	m.wallets = s.wallets
	m.walletTxs = s.walletTxs
}

func (m *memStore) BeginTx(ctx context.Context) (storage.Tx, error) {
	m.mu.Lock()
	return &memTx{store: m, before: m.snapshot()}, nil
}

func (m *memStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &u, nil
}

func (m *memStore) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[listingID]
	if !ok {
		return nil, storage.ErrListingNotFound
	}
	return &l, nil
}

func (m *memStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return nil, storage.ErrEventNotFound
	}
	return &e, nil
}

func (m *memStore) GetWalletByUser(ctx context.Context, userID string) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, storage.ErrWalletNotFound
	}
	return &w, nil
}

func (m *memStore) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.transactions {
		if t.ID == transactionID {
			t := t
			return &t, nil
		}
	}
	return nil, storage.ErrTransactionNotFound
}

func (m *memStore) TransactionExists(ctx context.Context, userID, listingID, transactionType string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transactionExistsLocked(userID, listingID, transactionType), nil
}

func (m *memStore) transactionExistsLocked(userID, listingID, transactionType string) bool {
	for _, t := range m.transactions {
		if t.UserID == userID && t.Type == transactionType &&
			t.Status == models.TransactionStatusCompleted &&
			t.ListingID != nil && *t.ListingID == listingID {
			return true
		}
	}
	return false
}

func (m *memStore) ListUserTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ListWalletTransactions(ctx context.Context, walletID string) ([]models.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WalletTransaction
	for _, wt := range m.walletTxs {
		if wt.WalletID == walletID {
			out = append(out, wt)
		}
	}
	return out, nil
}

// typesOnce mirrors the partial unique index on (user, listing, type).
var typesOnce = map[string]bool{
	models.TransactionTypeContactUnlock:    true,
	models.TransactionTypeSponsoredListing: true,
}

type memTx struct {
	store  *memStore
	before memSnapshot
	done   bool
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.restore(t.before)
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) InsertTransaction(ctx context.Context, tr *models.Transaction) error {
	if typesOnce[tr.Type] && tr.ListingID != nil &&
		t.store.transactionExistsLocked(tr.UserID, *tr.ListingID, tr.Type) {
		return storage.ErrDuplicateTransaction
	}
	t.store.transactions = append(t.store.transactions, *tr)
	return nil
}

func (t *memTx) InsertBusinessAd(ctx context.Context, ad *models.BusinessAd) error {
	t.store.ads[ad.ID] = *ad
	return nil
}

func (t *memTx) MarkListingFeatured(ctx context.Context, listingID string) error {
	l, ok := t.store.listings[listingID]
	if !ok {
		return storage.ErrListingNotFound
	}
	l.IsFeatured = true
	t.store.listings[listingID] = l
	return nil
}

func (t *memTx) MarkEventPartnered(ctx context.Context, eventID, level string, fee decimal.Decimal) error {
	e, ok := t.store.events[eventID]
	if !ok {
		return storage.ErrEventNotFound
	}
	e.IsPartnered = true
	e.SponsorshipLevel = &level
	e.PartnershipFee = decimal.NewNullDecimal(fee)
	t.store.events[eventID] = e
	return nil
}

func (t *memTx) SetUserPremium(ctx context.Context, userID string, expires time.Time) error {
	u, ok := t.store.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.IsPremium = true
	u.PremiumExpires = &expires
	t.store.users[userID] = u
	return nil
}

func (t *memTx) EnsureWalletForUpdate(ctx context.Context, userID, currency string) (*models.Wallet, error) {
	w, ok := t.store.wallets[userID]
	if !ok {
		w = models.Wallet{
			ID:       uuid.New().String(),
			UserID:   userID,
			Balance:  decimal.Zero,
			Currency: currency,
			IsActive: true,
		}
		t.store.wallets[userID] = w
	}
	return &w, nil
}

func (t *memTx) UpdateWalletBalance(ctx context.Context, walletID string, balance decimal.Decimal) error {
	for userID, w := range t.store.wallets {
		if w.ID == walletID {
			w.Balance = balance
			t.store.wallets[userID] = w
			return nil
		}
	}
	return storage.ErrWalletNotFound
}

func (t *memTx) InsertWalletTransaction(ctx context.Context, wt *models.WalletTransaction) error {
	if wt.Type == models.WalletTransactionRefund && wt.ReferenceID != nil {
		for _, existing := range t.store.walletTxs {
			if existing.WalletID == wt.WalletID && existing.Type == models.WalletTransactionRefund &&
				existing.ReferenceID != nil && *existing.ReferenceID == *wt.ReferenceID {
				return storage.ErrDuplicateTransaction
			}
		}
	}
	t.store.walletTxs = append(t.store.walletTxs, *wt)
	return nil
}

func (t *memTx) GetWalletTransaction(ctx context.Context, walletID, walletTransactionID string) (*models.WalletTransaction, error) {
	for _, wt := range t.store.walletTxs {
		if wt.WalletID == walletID && wt.ID == walletTransactionID {
			wt := wt
			return &wt, nil
		}
	}
	return nil, storage.ErrWalletTransactionNotFound
}
