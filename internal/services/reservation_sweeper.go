package services

import (
	"context"
	"log"
	"time"
)

// ReservationSweeper periodically releases reservations left pending by
// requests that never settled, for example after a crash.
type ReservationSweeper struct {
	ledger   *CreditLedger
	ttl      time.Duration
	interval time.Duration
}

func NewReservationSweeper(ledger *CreditLedger, ttl, interval time.Duration) *ReservationSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReservationSweeper{ledger: ledger, ttl: ttl, interval: interval}
}

// Run sweeps until ctx is cancelled.
func (s *ReservationSweeper) Run(ctx context.Context) {
	log.Printf("[SWEEPER] Started: ttl=%s interval=%s", s.ttl, s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SWEEPER] Stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass and returns the number of released
// reservations.
func (s *ReservationSweeper) SweepOnce(ctx context.Context) int {
	n, err := s.ledger.SweepStale(ctx, s.ttl)
	if err != nil {
		log.Printf("[SWEEPER] Sweep failed after releasing %d reservations: %v", n, err)
	}
	if n > 0 {
		log.Printf("[SWEEPER] Released %d stale reservations", n)
	}
	return n
}
