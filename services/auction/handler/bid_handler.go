package handler

import (
	"net/http"

	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BiddingServiceInterface interface {
	SubmitBid(auctionID, bidderID string, amount decimal.Decimal) (model.Bid, error)
	ListBids(auctionID string) ([]model.Bid, error)
	RevealBid(bidID, requesterID string) (model.Bid, error)
}

type BidHandler struct {
	service BiddingServiceInterface
}

func NewBidHandler(service BiddingServiceInterface) *BidHandler {
	return &BidHandler{service: service}
}

// SubmitBidHandler handles POST /api/bids
func (h *BidHandler) SubmitBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	bidderID := helpers.UserIDFromContext(c)
	bid, err := h.service.SubmitBid(req.AuctionID, bidderID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		helpers.RespondError(c, "SubmitBidHandler", err, map[string]any{
			"auction_id": req.AuctionID,
			"bidder_id":  bidderID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.BidToResponse(bid), "bid submitted successfully")
	helpers.LogSuccess("SubmitBidHandler", "bid submitted successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"bidder_id":  bidderID,
		"amount":     bid.Amount.String(),
	})
}

// GetBidsByAuctionHandler handles GET /api/bids/auction/:auction_id
func (h *BidHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	bids, err := h.service.ListBids(auctionID)
	if err != nil {
		helpers.RespondError(c, "GetBidsByAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.BidToResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// RevealBidHandler handles POST /api/bids/:bid_id/reveal
func (h *BidHandler) RevealBidHandler(c *gin.Context) {
	bidID := c.Param("bid_id")
	requesterID := helpers.UserIDFromContext(c)

	bid, err := h.service.RevealBid(bidID, requesterID)
	if err != nil {
		helpers.RespondError(c, "RevealBidHandler", err, map[string]any{
			"bid_id":       bidID,
			"requester_id": requesterID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.BidToResponse(bid), "bid revealed successfully")
	helpers.LogSuccess("RevealBidHandler", "bid revealed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
	})
}
