package helpers

import (
	"time"

	model "auction-house/internal/models"
)

// Request/Response DTOs
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=buyer seller both"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type CreateAuctionRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	StartPrice  float64   `json:"start_price" binding:"gte=0"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
}

type AuctionResponse struct {
	AuctionID    string  `json:"auction_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	SellerID     string  `json:"seller_id"`
	StartPrice   float64 `json:"start_price"`
	CurrentPrice float64 `json:"current_price"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Status       string  `json:"status"`
	BidCount     int     `json:"bid_count"`
	WinnerID     string  `json:"winner_id,omitempty"`
	WinnerName   string  `json:"winner_name,omitempty"`
	WinningBid   float64 `json:"winning_bid,omitempty"`
	IsSealed     bool    `json:"is_sealed"`
}

type PlaceBidRequest struct {
	AuctionID string  `json:"auction_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

// BidResponse never carries the raw bidder identity; other bidders
// only ever see the display name.
type BidResponse struct {
	BidID      string  `json:"bid_id"`
	AuctionID  string  `json:"auction_id"`
	BidderName string  `json:"bidder_name"`
	Amount     float64 `json:"amount"`
	CreatedAt  string  `json:"created_at"`
	Revealed   bool    `json:"revealed"`
}

// UserToResponse converts a user entity to its public view
func UserToResponse(u model.User) UserResponse {
	return UserResponse{
		UserID:   u.UserID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}

// AuctionToResponse converts an auction entity to its public view
func AuctionToResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:    a.AuctionID,
		Title:        a.Title,
		Description:  a.Description,
		SellerID:     a.SellerID,
		StartPrice:   a.StartPrice.InexactFloat64(),
		CurrentPrice: a.CurrentPrice.InexactFloat64(),
		StartTime:    a.StartTime.UTC().Format(time.RFC3339),
		EndTime:      a.EndTime.UTC().Format(time.RFC3339),
		Status:       string(a.Status),
		BidCount:     a.BidCount,
		WinnerID:     a.WinnerID,
		WinnerName:   a.WinnerName,
		WinningBid:   a.WinningBid.InexactFloat64(),
		IsSealed:     a.IsSealed,
	}
}

// BidToResponse converts a bid entity to its public view
func BidToResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:      b.BidID,
		AuctionID:  b.AuctionID,
		BidderName: b.BidderName,
		Amount:     b.Amount.InexactFloat64(),
		CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
		Revealed:   b.Revealed,
	}
}
