package handler

import (
	"net/http"

	auction "auction-house/internal/auctionService"
	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AuctionServiceInterface interface {
	CreateAuction(p auction.CreateParams, sellerID string) (model.Auction, error)
	GetAuction(auctionID string) (model.Auction, error)
	ListAuctions() ([]model.Auction, error)
	DeleteAuction(auctionID, requesterID string) error
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /api/auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	sellerID := helpers.UserIDFromContext(c)
	created, err := h.service.CreateAuction(auction.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		StartPrice:  decimal.NewFromFloat(req.StartPrice),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}, sellerID)
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, map[string]any{"seller_id": sellerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.AuctionToResponse(created), "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": created.AuctionID,
		"seller_id":  sellerID,
		"start_time": created.StartTime,
		"end_time":   created.EndTime,
	})
}

// ListAuctionsHandler handles GET /api/auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ListAuctions()
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, nil)
		return
	}

	resp := make([]helpers.AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		resp = append(resp, helpers.AuctionToResponse(a))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /api/auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	a, err := h.service.GetAuction(auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.AuctionToResponse(a), "auction retrieved successfully")
}

// DeleteAuctionHandler handles DELETE /api/auctions/:auction_id
func (h *AuctionHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	requesterID := helpers.UserIDFromContext(c)

	if err := h.service.DeleteAuction(auctionID, requesterID); err != nil {
		helpers.RespondError(c, "DeleteAuctionHandler", err, map[string]any{
			"auction_id":   auctionID,
			"requester_id": requesterID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction deleted successfully")
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted successfully", map[string]any{
		"auction_id": auctionID,
	})
}
