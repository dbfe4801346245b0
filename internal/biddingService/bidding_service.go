package bidding

import (
	"errors"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/ws"
	"auction-house/utils"

	"github.com/shopspring/decimal"
)

// maxAdmissionRetries bounds the optimistic retry loop when a bid
// loses the compare-and-swap race against a concurrent bid.
const maxAdmissionRetries = 3

// BiddingService is the bid admission engine: it validates a bid
// against the auction's live state and applies it with a conditional
// write so no two bids are ever accepted against the same prior price.
type BiddingService struct {
	repo repository.AuctionDB
	hub  ws.Broadcaster
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, hub ws.Broadcaster) *BiddingService {
	return &BiddingService{
		repo: repo,
		hub:  hub,
	}
}

// SubmitBid validates and records a user's bid on an auction. On
// success the auction's current price and bid count move atomically
// with respect to other bids on the same auction, and a bidUpdate
// event is broadcast best-effort after the state is committed.
func (s *BiddingService) SubmitBid(auctionID, bidderID string, amount decimal.Decimal) (models.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidInput)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return models.Bid{}, fmt.Errorf("service: %w - bid amount must be positive", auctionerrors.ErrInvalidInput)
	}

	bidder, err := s.repo.GetUser(bidderID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to load bidder %s: %w", bidderID, err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAdmissionRetries; attempt++ {
		auction, err := s.repo.GetAuction(auctionID)
		if err != nil {
			return models.Bid{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
		}

		if auction.Status != models.StatusActive {
			return models.Bid{}, fmt.Errorf("service: cannot place bid - auction is %s: %w",
				auction.Status, auctionerrors.ErrInvalidState)
		}
		if amount.LessThanOrEqual(auction.CurrentPrice) {
			return models.Bid{}, fmt.Errorf("service: %w - current price is %s",
				auctionerrors.ErrBidTooLow, auction.CurrentPrice.String())
		}

		bid := models.Bid{
			BidID:      utils.GenerateID(),
			AuctionID:  auctionID,
			BidderID:   bidderID,
			BidderName: bidder.DisplayName(),
			Amount:     amount,
			CreatedAt:  time.Now().UTC(),
		}

		prevPrice := auction.CurrentPrice
		updated, err := s.repo.AdmitBid(auctionID,
			repository.Expected{Status: models.StatusActive, CurrentPrice: &prevPrice},
			bid,
		)
		if err != nil {
			if errors.Is(err, auctionerrors.ErrConflict) {
				// Lost the race; re-read and re-validate.
				lastErr = err
				continue
			}
			return models.Bid{}, fmt.Errorf("service: failed to apply bid on auction %s: %w", auctionID, err)
		}

		s.notifyBidAccepted(updated, bid)
		return bid, nil
	}

	return models.Bid{}, fmt.Errorf("service: bid admission for auction %s retried out: %w", auctionID, lastErr)
}

// notifyBidAccepted broadcasts a bidUpdate event. Best-effort: the bid
// stays accepted whatever happens here.
func (s *BiddingService) notifyBidAccepted(auction models.Auction, bid models.Bid) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToAuction(auction.AuctionID, ws.BidUpdateEvent(auction.AuctionID, auction.BidCount, bid.BidderName))
}

// ListBids returns all bids for a specific auction
func (s *BiddingService) ListBids(auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	bids, err := s.repo.ListBids(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids for auction %s: %w", auctionID, err)
	}

	return bids, nil
}

// RevealBid marks a bid as revealed. Only the bid's owner may reveal
// it, and only once the parent auction has ended.
func (s *BiddingService) RevealBid(bidID, requesterID string) (models.Bid, error) {
	if bidID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty bid ID", auctionerrors.ErrInvalidInput)
	}

	bid, err := s.repo.GetBid(bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to load bid %s: %w", bidID, err)
	}
	if bid.BidderID != requesterID {
		return models.Bid{}, fmt.Errorf("service: %w - only the bidder may reveal a bid", auctionerrors.ErrUnauthorized)
	}

	auction, err := s.repo.GetAuction(bid.AuctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to load auction %s: %w", bid.AuctionID, err)
	}
	if auction.Status != models.StatusEnded && auction.Status != models.StatusCompleted {
		return models.Bid{}, fmt.Errorf("service: cannot reveal bid before auction ends: %w", auctionerrors.ErrInvalidState)
	}

	revealed, err := s.repo.SetBidRevealed(bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to reveal bid %s: %w", bidID, err)
	}
	return revealed, nil
}
