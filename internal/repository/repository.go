package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// Expected describes the prior state a conditional auction update is
// predicated on. Status is always checked; CurrentPrice only when set.
type Expected struct {
	Status       model.Status
	CurrentPrice *decimal.Decimal
}

// AuctionPatch describes the fields a conditional update applies.
// Nil pointers leave the field untouched.
type AuctionPatch struct {
	Status       *model.Status
	CurrentPrice *decimal.Decimal
	WinnerID     *string
	WinnerName   *string
	WinningBid   *decimal.Decimal
}

// StatusChange reports a persisted lifecycle transition.
type StatusChange struct {
	AuctionID string
	From      model.Status
	To        model.Status
}

// AuctionDB defines the storage interface for the auction system
type AuctionDB interface {
	CreateAuction(a model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	ListAuctions() ([]model.Auction, error)
	DeleteAuction(auctionID string) error
	ConditionalUpdateAuction(auctionID string, expect Expected, patch AuctionPatch) (model.Auction, error)
	AdmitBid(auctionID string, expect Expected, b model.Bid) (model.Auction, error)
	RecomputeAuctionStatus(auctionID string) (StatusChange, bool, error)
	BulkRecomputeStatuses() ([]StatusChange, error)
	CreateBid(b model.Bid) error
	GetBid(bidID string) (model.Bid, error)
	ListBids(auctionID string) ([]model.Bid, error)
	SetBidRevealed(bidID string) (model.Bid, error)
	CreateUser(u model.User) error
	GetUser(userID string) (model.User, error)
	GetUserByEmail(email string) (model.User, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// Reads return views with the auction status recomputed from the clock;
// only RecomputeAuctionStatus, BulkRecomputeStatuses and conditional
// updates persist anything.
type MemoryRepo struct {
	mu           sync.RWMutex
	auctions     map[string]model.Auction // key: auctionID
	bids         map[string][]model.Bid   // key: auctionID -> bids in acceptance order
	bidAuction   map[string]string        // key: bidID -> auctionID
	users        map[string]model.User    // key: userID
	usersByEmail map[string]string        // key: email -> userID
	now          func() time.Time
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:     make(map[string]model.Auction),
		bids:         make(map[string][]model.Bid),
		bidAuction:   make(map[string]string),
		users:        make(map[string]model.User),
		usersByEmail: make(map[string]string),
		now:          time.Now,
	}
}

// SetClock overrides the repository clock. This method is intended for tests only.
func (r *MemoryRepo) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// CreateAuction stores a new auction record
func (r *MemoryRepo) CreateAuction(a model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[a.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w", a.AuctionID, auctionerrors.ErrConflict)
	}
	r.auctions[a.AuctionID] = a
	return nil
}

// GetAuction returns an auction with its status recomputed as of now
func (r *MemoryRepo) GetAuction(auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	a.Status = a.EffectiveStatus(r.now())
	return a, nil
}

// ListAuctions returns all auctions, newest first, statuses recomputed
func (r *MemoryRepo) ListAuctions() ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	auctions := make([]model.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		a.Status = a.EffectiveStatus(now)
		auctions = append(auctions, a)
	}
	sort.Slice(auctions, func(i, j int) bool {
		return auctions[i].CreatedAt.After(auctions[j].CreatedAt)
	})
	return auctions, nil
}

// DeleteAuction removes an auction and its bids
func (r *MemoryRepo) DeleteAuction(auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return fmt.Errorf("delete auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	for _, b := range r.bids[auctionID] {
		delete(r.bidAuction, b.BidID)
	}
	delete(r.bids, auctionID)
	delete(r.auctions, auctionID)
	return nil
}

// ConditionalUpdateAuction applies patch only if the auction's
// effective state matches expect (compare-and-swap). A failed
// expectation returns ErrConflict and leaves the record untouched.
func (r *MemoryRepo) ConditionalUpdateAuction(auctionID string, expect Expected, patch AuctionPatch) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	now := r.now()
	if a.EffectiveStatus(now) != expect.Status {
		return model.Auction{}, fmt.Errorf("update auction %s: status is %s, expected %s: %w",
			auctionID, a.EffectiveStatus(now), expect.Status, auctionerrors.ErrConflict)
	}
	if expect.CurrentPrice != nil && !a.CurrentPrice.Equal(*expect.CurrentPrice) {
		return model.Auction{}, fmt.Errorf("update auction %s: current price moved: %w",
			auctionID, auctionerrors.ErrConflict)
	}

	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.CurrentPrice != nil {
		a.CurrentPrice = *patch.CurrentPrice
	}
	if patch.WinnerID != nil {
		a.WinnerID = *patch.WinnerID
	}
	if patch.WinnerName != nil {
		a.WinnerName = *patch.WinnerName
	}
	if patch.WinningBid != nil {
		a.WinningBid = *patch.WinningBid
	}

	r.auctions[auctionID] = a

	a.Status = a.EffectiveStatus(now)
	return a, nil
}

// AdmitBid commits an accepted bid under the same critical section as
// the price compare-and-swap: the auction's current price and bid
// count move together with the bid record, so no reader ever sees one
// without the other. A failed expectation returns ErrConflict and
// stores nothing.
func (r *MemoryRepo) AdmitBid(auctionID string, expect Expected, b model.Bid) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("admit bid for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	now := r.now()
	if a.EffectiveStatus(now) != expect.Status {
		return model.Auction{}, fmt.Errorf("admit bid for auction %s: status is %s, expected %s: %w",
			auctionID, a.EffectiveStatus(now), expect.Status, auctionerrors.ErrConflict)
	}
	if expect.CurrentPrice != nil && !a.CurrentPrice.Equal(*expect.CurrentPrice) {
		return model.Auction{}, fmt.Errorf("admit bid for auction %s: current price moved: %w",
			auctionID, auctionerrors.ErrConflict)
	}

	a.CurrentPrice = b.Amount
	a.BidCount++
	r.auctions[auctionID] = a
	r.bids[auctionID] = append(r.bids[auctionID], b)
	r.bidAuction[b.BidID] = auctionID

	a.Status = a.EffectiveStatus(now)
	return a, nil
}

// RecomputeAuctionStatus persists the time-derived status of a single
// auction and reports whether it changed. Safe to call from both the
// one-shot scheduler and the sweep; the second caller sees no change.
func (r *MemoryRepo) RecomputeAuctionStatus(auctionID string) (StatusChange, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return StatusChange{}, false, fmt.Errorf("recompute auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	eff := a.EffectiveStatus(r.now())
	if eff == a.Status {
		return StatusChange{}, false, nil
	}

	change := StatusChange{AuctionID: auctionID, From: a.Status, To: eff}
	a.Status = eff
	r.auctions[auctionID] = a
	return change, true, nil
}

// BulkRecomputeStatuses persists time-derived statuses for all
// non-terminal auctions and returns the transitions that occurred.
func (r *MemoryRepo) BulkRecomputeStatuses() ([]StatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var changes []StatusChange
	for id, a := range r.auctions {
		eff := a.EffectiveStatus(now)
		if eff == a.Status {
			continue
		}
		changes = append(changes, StatusChange{AuctionID: id, From: a.Status, To: eff})
		a.Status = eff
		r.auctions[id] = a
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].AuctionID < changes[j].AuctionID
	})
	return changes, nil
}

// CreateBid records an accepted bid for an auction
func (r *MemoryRepo) CreateBid(b model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[b.AuctionID]; !ok {
		return fmt.Errorf("create bid for auction %s: %w", b.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	r.bids[b.AuctionID] = append(r.bids[b.AuctionID], b)
	r.bidAuction[b.BidID] = b.AuctionID
	return nil
}

// GetBid returns a single bid by id
func (r *MemoryRepo) GetBid(bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctionID, ok := r.bidAuction[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	for _, b := range r.bids[auctionID] {
		if b.BidID == bidID {
			return b, nil
		}
	}
	return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
}

// ListBids returns all bids for an auction in acceptance order
func (r *MemoryRepo) ListBids(auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("list bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return append([]model.Bid(nil), r.bids[auctionID]...), nil
}

// SetBidRevealed marks a bid as revealed and returns the updated record
func (r *MemoryRepo) SetBidRevealed(bidID string) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auctionID, ok := r.bidAuction[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("reveal bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	bids := r.bids[auctionID]
	for i := range bids {
		if bids[i].BidID == bidID {
			bids[i].Revealed = true
			return bids[i], nil
		}
	}
	return model.Bid{}, fmt.Errorf("reveal bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
}

// CreateUser stores a new user record
func (r *MemoryRepo) CreateUser(u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.usersByEmail[u.Email]; ok {
		return fmt.Errorf("create user %s: %w", u.Email, auctionerrors.ErrUserExists)
	}
	r.users[u.UserID] = u
	r.usersByEmail[u.Email] = u.UserID
	return nil
}

// GetUser returns a user by id
func (r *MemoryRepo) GetUser(userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return u, nil
}

// GetUserByEmail returns a user by email address
func (r *MemoryRepo) GetUserByEmail(email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usersByEmail[email]
	if !ok {
		return model.User{}, fmt.Errorf("get user by email %s: %w", email, auctionerrors.ErrUserNotFound)
	}
	return r.users[id], nil
}
