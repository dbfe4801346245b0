package auctionstatus

import (
	"sync"
	"time"

	model "auction-house/internal/models"
)

// Scheduler arms one-shot timers at auction creation that fire at
// startTime and endTime. Timers are a latency optimization on top of
// the sweep: they are not durable across restarts, and both paths go
// through the same idempotent reconcile.
type Scheduler struct {
	mu     sync.Mutex
	status *StatusService
	timers map[string][]*time.Timer // key: auctionID
	now    func() time.Time
}

// NewScheduler creates a new Scheduler driving the given StatusService
func NewScheduler(status *StatusService) *Scheduler {
	return &Scheduler{
		status: status,
		timers: make(map[string][]*time.Timer),
		now:    time.Now,
	}
}

// Schedule arms the start and end transition timers for an auction.
// Times already in the past are skipped; the sweep covers them.
func (s *Scheduler) Schedule(a model.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var timers []*time.Timer
	for _, at := range []time.Time{a.StartTime, a.EndTime} {
		delay := at.Sub(now)
		if delay <= 0 {
			continue
		}
		auctionID := a.AuctionID
		timers = append(timers, time.AfterFunc(delay, func() {
			s.status.ReconcileOne(auctionID)
		}))
	}
	if len(timers) > 0 {
		s.timers[a.AuctionID] = timers
	}
}

// Cancel stops any pending timers for an auction
func (s *Scheduler) Cancel(auctionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers[auctionID] {
		t.Stop()
	}
	delete(s.timers, auctionID)
}

// Shutdown stops all pending timers
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timers := range s.timers {
		for _, t := range timers {
			t.Stop()
		}
		delete(s.timers, id)
	}
}
