package auction

import (
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	auctionstatus "auction-house/internal/auctionStatusService"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"

	"github.com/shopspring/decimal"
)

// CreateParams are the seller-supplied fields of a new auction
type CreateParams struct {
	Title       string
	Description string
	StartPrice  decimal.Decimal
	StartTime   time.Time
	EndTime     time.Time
}

// AuctionService owns auction creation, lookup and deletion
type AuctionService struct {
	repo      repository.AuctionDB
	scheduler *auctionstatus.Scheduler
	now       func() time.Time
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, scheduler *auctionstatus.Scheduler) *AuctionService {
	return &AuctionService{
		repo:      repo,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// CreateAuction validates and stores a new auction with status
// upcoming, then arms its one-shot transition timers.
func (s *AuctionService) CreateAuction(p CreateParams, sellerID string) (models.Auction, error) {
	if sellerID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing seller ID", auctionerrors.ErrInvalidInput)
	}
	if p.Title == "" || p.Description == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing title or description", auctionerrors.ErrInvalidInput)
	}
	if p.StartPrice.IsNegative() {
		return models.Auction{}, fmt.Errorf("service: %w - start price must not be negative", auctionerrors.ErrInvalidInput)
	}

	now := s.now()
	if !p.StartTime.After(now) {
		return models.Auction{}, fmt.Errorf("service: %w - start time must be in the future", auctionerrors.ErrInvalidInput)
	}
	if !p.EndTime.After(p.StartTime) {
		return models.Auction{}, fmt.Errorf("service: %w - end time must be after start time", auctionerrors.ErrInvalidInput)
	}

	auction := models.Auction{
		AuctionID:    utils.GenerateID(),
		Title:        p.Title,
		Description:  p.Description,
		SellerID:     sellerID,
		StartPrice:   p.StartPrice,
		CurrentPrice: p.StartPrice,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Status:       models.StatusUpcoming,
		IsSealed:     true,
		CreatedAt:    now.UTC(),
	}

	if err := s.repo.CreateAuction(auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}

	if s.scheduler != nil {
		s.scheduler.Schedule(auction)
	}

	return auction, nil
}

// GetAuction returns a single auction with its live status
func (s *AuctionService) GetAuction(auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// ListAuctions returns all auctions, newest first
func (s *AuctionService) ListAuctions() ([]models.Auction, error) {
	auctions, err := s.repo.ListAuctions()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// DeleteAuction removes an auction. Only the owning seller may delete,
// and only while the auction is upcoming with no bids.
func (s *AuctionService) DeleteAuction(auctionID, requesterID string) error {
	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	if auction.SellerID != requesterID {
		return fmt.Errorf("service: %w - only the seller may delete an auction", auctionerrors.ErrUnauthorized)
	}
	if auction.Status != models.StatusUpcoming {
		return fmt.Errorf("service: cannot delete - auction is %s: %w", auction.Status, auctionerrors.ErrInvalidState)
	}

	bids, err := s.repo.ListBids(auctionID)
	if err != nil {
		return fmt.Errorf("service: failed to list bids for auction %s: %w", auctionID, err)
	}
	if len(bids) > 0 {
		return fmt.Errorf("service: cannot delete - auction has bids: %w", auctionerrors.ErrInvalidState)
	}

	if err := s.repo.DeleteAuction(auctionID); err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", auctionID, err)
	}

	if s.scheduler != nil {
		s.scheduler.Cancel(auctionID)
	}

	return nil
}
