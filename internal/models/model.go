package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an auction.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusCompleted Status = "completed"
)

// Role describes what a user is allowed to do.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleBoth   Role = "both"
)

// User represents a participant in the auction system
type User struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
	Role         Role   `json:"role"`
}

// DisplayName returns the name shown to other bidders
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// CanBid reports whether the user's role permits placing bids
func (u User) CanBid() bool {
	return u.Role == RoleBuyer || u.Role == RoleBoth
}

// CanSell reports whether the user's role permits creating auctions
func (u User) CanSell() bool {
	return u.Role == RoleSeller || u.Role == RoleBoth
}

// Auction represents a sealed-bid auction listing
type Auction struct {
	AuctionID    string          `json:"auction_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	SellerID     string          `json:"seller_id"`
	StartPrice   decimal.Decimal `json:"start_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	Status       Status          `json:"status"`
	BidCount     int             `json:"bid_count"`
	WinnerID     string          `json:"winner_id,omitempty"`
	WinnerName   string          `json:"winner_name,omitempty"`
	WinningBid   decimal.Decimal `json:"winning_bid"`
	IsSealed     bool            `json:"is_sealed"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Bid represents a user's bid on an auction. Immutable once created
// except for the Revealed flag.
type Bid struct {
	BidID      string          `json:"bid_id"`
	AuctionID  string          `json:"auction_id"`
	BidderID   string          `json:"bidder_id"`
	BidderName string          `json:"bidder_name"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
	Revealed   bool            `json:"revealed"`
}

// ComputeStatus derives an auction's status from the clock. It is the
// single source of truth for the upcoming -> active -> ended
// transitions. The completed state is terminal and is never
// recomputed: winner resolution is the only writer that may enter it.
func ComputeStatus(now, startTime, endTime time.Time, current Status) Status {
	if current == StatusCompleted {
		return StatusCompleted
	}
	switch {
	case !now.Before(endTime):
		return StatusEnded
	case !now.Before(startTime):
		return StatusActive
	default:
		return StatusUpcoming
	}
}

// EffectiveStatus returns the auction's status as of now, honoring the
// terminal completed state.
func (a Auction) EffectiveStatus(now time.Time) Status {
	return ComputeStatus(now, a.StartTime, a.EndTime, a.Status)
}
