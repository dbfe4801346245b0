package auctionend

import (
	"errors"
	"fmt"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/email"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/ws"
	"auction-house/utils"
)

// AuctionEndService resolves ended auctions: it selects the winning
// bid and performs the single ended -> completed transition.
type AuctionEndService struct {
	repo   repository.AuctionDB
	hub    ws.Broadcaster
	mailer email.Notifier
}

// NewAuctionEndService creates a new AuctionEndService instance
func NewAuctionEndService(repo repository.AuctionDB, hub ws.Broadcaster, mailer email.Notifier) *AuctionEndService {
	return &AuctionEndService{
		repo:   repo,
		hub:    hub,
		mailer: mailer,
	}
}

// Resolve completes an ended auction. Idempotent and safe under
// concurrent invocation: the transition is a conditional write keyed
// on the auction still being ended, so only the first caller performs
// it. An auction with no bids stays ended; that is a successful no-op.
func (s *AuctionEndService) Resolve(auctionID string) error {
	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return fmt.Errorf("auction end: failed to load auction %s: %w", auctionID, err)
	}
	if auction.Status != models.StatusEnded {
		// Not yet due, or already completed by another resolver.
		return nil
	}

	bids, err := s.repo.ListBids(auctionID)
	if err != nil {
		return fmt.Errorf("auction end: failed to list bids for auction %s: %w", auctionID, err)
	}
	if len(bids) == 0 {
		return nil
	}

	winning := selectWinner(bids)

	completed := models.StatusCompleted
	updated, err := s.repo.ConditionalUpdateAuction(auctionID,
		repository.Expected{Status: models.StatusEnded},
		repository.AuctionPatch{
			Status:     &completed,
			WinnerID:   &winning.BidderID,
			WinnerName: &winning.BidderName,
			WinningBid: &winning.Amount,
		},
	)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrConflict) {
			// Another resolver completed the auction first.
			return nil
		}
		return fmt.Errorf("auction end: failed to complete auction %s: %w", auctionID, err)
	}

	s.notifyWinner(updated, winning)
	return nil
}

// selectWinner picks the highest bid; ties go to the earliest bid
func selectWinner(bids []models.Bid) models.Bid {
	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(winning.Amount) ||
			(b.Amount.Equal(winning.Amount) && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning
}

// notifyWinner sends the win email and the auctionEnd broadcast. Both
// are best-effort and independent: neither failure rolls back the
// completed transition.
func (s *AuctionEndService) notifyWinner(auction models.Auction, winning models.Bid) {
	if s.mailer != nil {
		winner, err := s.repo.GetUser(winning.BidderID)
		if err != nil {
			utils.Error("auction end: failed to load winner for email", map[string]any{
				"auction_id": auction.AuctionID,
				"winner_id":  winning.BidderID,
				"error":      err.Error(),
			})
		} else if err := s.mailer.SendWinEmail(winner, auction); err != nil {
			utils.Error("auction end: failed to send win email", map[string]any{
				"auction_id": auction.AuctionID,
				"winner_id":  winning.BidderID,
				"error":      err.Error(),
			})
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToAuction(auction.AuctionID,
			ws.AuctionEndEvent(auction.AuctionID, winning.BidderID, winning.BidderName, winning.Amount, auction.Title))
	}
}
