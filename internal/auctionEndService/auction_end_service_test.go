package auctionend

import (
	"errors"
	"sync"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/ws"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recordingBroadcaster) BroadcastToAuction(auctionID string, e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingBroadcaster) BroadcastAll(e ws.Event) {}

func (r *recordingBroadcaster) all() []ws.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ws.Event(nil), r.events...)
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []string // winner userIDs
	fail  bool
}

func (r *recordingNotifier) SendWinEmail(winner model.User, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp unavailable")
	}
	r.sent = append(r.sent, winner.UserID)
	return nil
}

func (r *recordingNotifier) sentTo() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

// endedFixture seeds a repo with one ended auction and the given bids.
func endedFixture(t *testing.T, bids []model.Bid) (*repository.MemoryRepo, time.Time) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	repo := repository.NewMemoryRepo()
	repo.SetClock(func() time.Time { return base })

	price := decimal.NewFromInt(100)
	if len(bids) > 0 {
		price = bids[len(bids)-1].Amount
	}
	require.NoError(t, repo.CreateAuction(model.Auction{
		AuctionID:    "a1",
		Title:        "signed first edition",
		SellerID:     "seller1",
		StartPrice:   decimal.NewFromInt(100),
		CurrentPrice: price,
		StartTime:    base.Add(-2 * time.Hour),
		EndTime:      base.Add(-time.Hour),
		Status:       model.StatusEnded,
		BidCount:     len(bids),
	}))
	for _, b := range bids {
		require.NoError(t, repo.CreateBid(b))
	}
	return repo, base
}

func TestAuctionEndService_Resolve(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bids := []model.Bid{
		{BidID: "b1", AuctionID: "a1", BidderID: "user1", BidderName: "Jane Doe", Amount: decimal.NewFromInt(150), CreatedAt: base.Add(-90 * time.Minute)},
		{BidID: "b2", AuctionID: "a1", BidderID: "user2", BidderName: "Bob Ross", Amount: decimal.NewFromInt(200), CreatedAt: base.Add(-80 * time.Minute)},
	}
	repo, _ := endedFixture(t, bids)
	require.NoError(t, repo.CreateUser(model.User{UserID: "user2", Username: "bob", Email: "bob@example.com", Role: model.RoleBuyer}))

	hub := &recordingBroadcaster{}
	mailer := &recordingNotifier{}
	service := NewAuctionEndService(repo, hub, mailer)

	require.NoError(t, service.Resolve("a1"))

	auction, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, auction.Status)
	require.Equal(t, "user2", auction.WinnerID)
	require.Equal(t, "Bob Ross", auction.WinnerName)
	require.True(t, auction.WinningBid.Equal(decimal.NewFromInt(200)))

	require.Equal(t, []string{"user2"}, mailer.sentTo())

	events := hub.all()
	require.Len(t, events, 1)
	require.Equal(t, ws.EventAuctionEnd, events[0].Type)
	require.Equal(t, "user2", events[0].WinnerID)
	require.Equal(t, "Bob Ross", events[0].WinnerName)
	require.Equal(t, "signed first edition", events[0].AuctionTitle)
}

// Resolving an auction with no bids is a successful no-op: the auction
// stays ended and nothing is broadcast.
func TestAuctionEndService_Resolve_NoBids(t *testing.T) {
	repo, _ := endedFixture(t, nil)
	hub := &recordingBroadcaster{}
	mailer := &recordingNotifier{}
	service := NewAuctionEndService(repo, hub, mailer)

	require.NoError(t, service.Resolve("a1"))

	auction, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.StatusEnded, auction.Status)
	require.Empty(t, auction.WinnerID)
	require.Empty(t, hub.all())
	require.Empty(t, mailer.sentTo())
}

func TestAuctionEndService_Resolve_NotYetEnded(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := repository.NewMemoryRepo()
	repo.SetClock(func() time.Time { return base })
	require.NoError(t, repo.CreateAuction(model.Auction{
		AuctionID:    "a1",
		Title:        "still running",
		SellerID:     "seller1",
		StartPrice:   decimal.NewFromInt(100),
		CurrentPrice: decimal.NewFromInt(100),
		StartTime:    base.Add(-time.Hour),
		EndTime:      base.Add(time.Hour),
		Status:       model.StatusActive,
	}))

	hub := &recordingBroadcaster{}
	service := NewAuctionEndService(repo, hub, nil)

	require.NoError(t, service.Resolve("a1"))

	auction, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, auction.Status)
	require.Empty(t, hub.all())
}

func TestAuctionEndService_Resolve_UnknownAuction(t *testing.T) {
	repo := repository.NewMemoryRepo()
	service := NewAuctionEndService(repo, nil, nil)

	err := service.Resolve("missing")
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

// Ties on amount go to the earliest bid.
func TestAuctionEndService_Resolve_TieBreak(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bids := []model.Bid{
		{BidID: "b1", AuctionID: "a1", BidderID: "user1", BidderName: "Jane Doe", Amount: decimal.NewFromInt(200), CreatedAt: base.Add(-90 * time.Minute)},
		{BidID: "b2", AuctionID: "a1", BidderID: "user2", BidderName: "Bob Ross", Amount: decimal.NewFromInt(200), CreatedAt: base.Add(-80 * time.Minute)},
	}
	repo, _ := endedFixture(t, bids)
	service := NewAuctionEndService(repo, nil, nil)

	require.NoError(t, service.Resolve("a1"))

	auction, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, "user1", auction.WinnerID, "earliest of the tied bids wins")
}

// Resolve may be triggered by both the one-shot timer and the periodic
// sweep; only the first invocation transitions and notifies.
func TestAuctionEndService_Resolve_Idempotent(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bids := []model.Bid{
		{BidID: "b1", AuctionID: "a1", BidderID: "user1", BidderName: "Jane Doe", Amount: decimal.NewFromInt(150), CreatedAt: base.Add(-90 * time.Minute)},
	}
	repo, _ := endedFixture(t, bids)
	require.NoError(t, repo.CreateUser(model.User{UserID: "user1", Username: "jane", Email: "jane@example.com", Role: model.RoleBuyer}))

	hub := &recordingBroadcaster{}
	mailer := &recordingNotifier{}
	service := NewAuctionEndService(repo, hub, mailer)

	require.NoError(t, service.Resolve("a1"))
	require.NoError(t, service.Resolve("a1"))
	require.NoError(t, service.Resolve("a1"))

	require.Len(t, hub.all(), 1, "auctionEnd must be broadcast exactly once")
	require.Equal(t, []string{"user1"}, mailer.sentTo())
}

func TestAuctionEndService_Resolve_ConcurrentResolvers(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bids := []model.Bid{
		{BidID: "b1", AuctionID: "a1", BidderID: "user1", BidderName: "Jane Doe", Amount: decimal.NewFromInt(150), CreatedAt: base.Add(-90 * time.Minute)},
	}
	repo, _ := endedFixture(t, bids)
	require.NoError(t, repo.CreateUser(model.User{UserID: "user1", Username: "jane", Email: "jane@example.com", Role: model.RoleBuyer}))

	hub := &recordingBroadcaster{}
	mailer := &recordingNotifier{}
	service := NewAuctionEndService(repo, hub, mailer)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, service.Resolve("a1"))
		}()
	}
	wg.Wait()

	auction, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, auction.Status)
	require.Len(t, hub.all(), 1)
	require.Len(t, mailer.sentTo(), 1)
}

// A failing email never blocks completion or the broadcast.
func TestAuctionEndService_Resolve_EmailFailureIsIsolated(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bids := []model.Bid{
		{BidID: "b1", AuctionID: "a1", BidderID: "user1", BidderName: "Jane Doe", Amount: decimal.NewFromInt(150), CreatedAt: base.Add(-90 * time.Minute)},
	}
	repo, _ := endedFixture(t, bids)
	require.NoError(t, repo.CreateUser(model.User{UserID: "user1", Username: "jane", Email: "jane@example.com", Role: model.RoleBuyer}))

	hub := &recordingBroadcaster{}
	service := NewAuctionEndService(repo, hub, &recordingNotifier{fail: true})

	require.NoError(t, service.Resolve("a1"))

	auction, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, auction.Status)
	require.Len(t, hub.all(), 1)
}

func TestSelectWinner(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bids := []model.Bid{
		{BidID: "b1", BidderID: "user1", Amount: decimal.NewFromInt(120), CreatedAt: base},
		{BidID: "b2", BidderID: "user2", Amount: decimal.NewFromInt(180), CreatedAt: base.Add(time.Minute)},
		{BidID: "b3", BidderID: "user3", Amount: decimal.NewFromInt(150), CreatedAt: base.Add(2 * time.Minute)},
	}
	require.Equal(t, "b2", selectWinner(bids).BidID)
}
