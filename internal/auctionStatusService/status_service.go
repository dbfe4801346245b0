package auctionstatus

import (
	"context"
	"time"

	auctionend "auction-house/internal/auctionEndService"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/ws"
	"auction-house/utils"
)

// defaultSweepInterval is the period of the bulk status sweep
const defaultSweepInterval = time.Minute

// StatusService is the periodic sweep over all non-terminal auctions.
// It is the durable correctness backstop for lifecycle transitions;
// the one-shot Scheduler only lowers notification latency. Both feed
// the same idempotent recompute, so a transition is persisted and
// announced once no matter which trigger fires first.
type StatusService struct {
	repo     repository.AuctionDB
	hub      ws.Broadcaster
	endSvc   *auctionend.AuctionEndService
	interval time.Duration
}

// NewStatusService creates a new StatusService instance. A
// non-positive interval falls back to the default of one minute.
func NewStatusService(repo repository.AuctionDB, hub ws.Broadcaster, endSvc *auctionend.AuctionEndService, interval time.Duration) *StatusService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &StatusService{
		repo:     repo,
		hub:      hub,
		endSvc:   endSvc,
		interval: interval,
	}
}

// Start runs the sweep loop until ctx is canceled. An initial sweep
// runs immediately so a restarted process catches up on transitions
// whose one-shot timers were lost.
func (s *StatusService) Start(ctx context.Context) {
	go func() {
		s.Sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Sweep recomputes every auction's status in bulk and announces each
// transition that was persisted.
func (s *StatusService) Sweep() {
	changes, err := s.repo.BulkRecomputeStatuses()
	if err != nil {
		utils.Error("status sweep failed", map[string]any{"error": err.Error()})
		return
	}
	for _, change := range changes {
		s.announce(change)
	}
}

// announce broadcasts a statusUpdate and, when an auction just ended,
// hands it to winner resolution. A failure for one auction never
// aborts processing of the rest.
func (s *StatusService) announce(change repository.StatusChange) {
	if s.hub != nil {
		s.hub.BroadcastToAuction(change.AuctionID, ws.StatusUpdateEvent(change.AuctionID, change.To))
	}

	if change.To == models.StatusEnded && s.endSvc != nil {
		if err := s.endSvc.Resolve(change.AuctionID); err != nil {
			utils.Error("winner resolution failed", map[string]any{
				"auction_id": change.AuctionID,
				"error":      err.Error(),
			})
		}
	}
}

// ReconcileOne recomputes a single auction's status, announcing the
// transition if one was persisted. Used by the one-shot scheduler.
func (s *StatusService) ReconcileOne(auctionID string) {
	change, changed, err := s.repo.RecomputeAuctionStatus(auctionID)
	if err != nil {
		utils.Error("status reconcile failed", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}
	if !changed {
		return
	}
	s.announce(change)
}
