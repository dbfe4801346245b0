package ws

import (
	model "auction-house/internal/models"

	"github.com/shopspring/decimal"
)

// Event types pushed to subscribers.
const (
	EventConnected    = "connected"
	EventPong         = "pong"
	EventStatusUpdate = "statusUpdate"
	EventBidUpdate    = "bidUpdate"
	EventAuctionEnd   = "auctionEnd"
)

// Event is a one-way notification delivered to subscribed clients.
// Fields are populated per event type; the rest are omitted.
type Event struct {
	Type         string           `json:"type"`
	AuctionID    string           `json:"auctionId,omitempty"`
	Status       model.Status     `json:"status,omitempty"`
	BidCount     int              `json:"bidCount,omitempty"`
	LastBidder   string           `json:"lastBidder,omitempty"`
	WinnerID     string           `json:"winnerId,omitempty"`
	WinnerName   string           `json:"winnerName,omitempty"`
	WinningBid   *decimal.Decimal `json:"winningBid,omitempty"`
	AuctionTitle string           `json:"auctionTitle,omitempty"`
}

// StatusUpdateEvent announces a lifecycle transition
func StatusUpdateEvent(auctionID string, status model.Status) Event {
	return Event{Type: EventStatusUpdate, AuctionID: auctionID, Status: status}
}

// BidUpdateEvent announces an accepted bid
func BidUpdateEvent(auctionID string, bidCount int, lastBidder string) Event {
	return Event{Type: EventBidUpdate, AuctionID: auctionID, BidCount: bidCount, LastBidder: lastBidder}
}

// AuctionEndEvent announces the resolved winner of a completed auction
func AuctionEndEvent(auctionID, winnerID, winnerName string, winningBid decimal.Decimal, title string) Event {
	return Event{
		Type:         EventAuctionEnd,
		AuctionID:    auctionID,
		WinnerID:     winnerID,
		WinnerName:   winnerName,
		WinningBid:   &winningBid,
		AuctionTitle: title,
	}
}

// Broadcaster is the fan-out contract consumed by the auction services.
type Broadcaster interface {
	BroadcastToAuction(auctionID string, e Event)
	BroadcastAll(e Event)
}
