package email

import (
	model "auction-house/internal/models"
	"auction-house/utils"
)

// Notifier is the outbound email collaborator. Sending is best-effort:
// callers log failures and never let them fail the operation that
// triggered the notification.
type Notifier interface {
	SendWinEmail(winner model.User, auction model.Auction) error
}

// LogNotifier writes win notifications to the application log instead
// of a mail relay. Default implementation when no SMTP relay is wired.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier instance
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// SendWinEmail logs the win notification that would have been mailed
func (n *LogNotifier) SendWinEmail(winner model.User, auction model.Auction) error {
	utils.Info("auction win email", map[string]any{
		"to":          winner.Email,
		"winner_id":   winner.UserID,
		"auction_id":  auction.AuctionID,
		"title":       auction.Title,
		"winning_bid": auction.WinningBid.String(),
	})
	return nil
}
