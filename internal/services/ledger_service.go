package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kirin765/naver-smartstore/internal/audit"
	"github.com/kirin765/naver-smartstore/internal/metrics"
	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/store"
)

const sweepBatchSize = 100

// CreditLedger owns every balance mutation. Debits go through Reserve followed
// by exactly one of Commit or Rollback.
type CreditLedger struct {
	store store.CreditStore
	audit *audit.AuditLogger
	newID func() string
	now   func() time.Time
}

func NewCreditLedger(s store.CreditStore, auditLogger *audit.AuditLogger) *CreditLedger {
	if auditLogger == nil {
		auditLogger = audit.NewAuditLogger()
	}
	return &CreditLedger{
		store: s,
		audit: auditLogger,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (l *CreditLedger) GetBalance(ctx context.Context, userID string) (*models.CreditAccount, error) {
	return l.store.GetAccount(ctx, userID)
}

// Reserve removes amount from the spendable balance. The returned reservation
// must be passed to Commit or Rollback.
func (l *CreditLedger) Reserve(ctx context.Context, userID string, amount int64) (*models.Reservation, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: reserve amount must be positive", models.ErrInvalidRequest)
	}

	res := &models.Reservation{ID: l.newID(), UserID: userID, Amount: amount}
	if err := l.store.ReserveCredits(ctx, res); err != nil {
		if errors.Is(err, models.ErrInsufficientCredits) {
			metrics.CreditReservations.WithLabelValues(metrics.OutcomeInsufficient).Inc()
			l.audit.LogReserve(res.ID, userID, amount, "REJECTED")
			return nil, err
		}
		metrics.CreditReservations.WithLabelValues(metrics.OutcomeError).Inc()
		if !errors.Is(err, models.ErrAccountNotFound) {
			l.audit.LogError(res.ID, userID, err)
		}
		return nil, err
	}

	metrics.CreditReservations.WithLabelValues(metrics.OutcomeReserved).Inc()
	l.audit.LogReserve(res.ID, userID, amount, "PENDING")
	return res, nil
}

// Commit turns a reservation into a usage transaction. Repeating a commit
// returns the original transaction without charging again.
func (l *CreditLedger) Commit(ctx context.Context, res *models.Reservation, kind models.TransactionKind, description string) (*models.CreditTransaction, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: nil reservation", models.ErrInvalidRequest)
	}
	if kind != models.KindUsage {
		return nil, fmt.Errorf("%w: reservations commit as %q only", models.ErrInvalidRequest, models.KindUsage)
	}

	tx, err := l.store.CommitReservation(ctx, res.ID, &models.CreditTransaction{
		ID:          l.newID(),
		Kind:        kind,
		Description: description,
	})
	if err != nil {
		metrics.CreditReservations.WithLabelValues(metrics.OutcomeError).Inc()
		l.audit.LogError(res.ID, res.UserID, err)
		return nil, err
	}

	res.Status = models.ReservationCommitted
	res.TransactionID = tx.ID
	metrics.CreditReservations.WithLabelValues(metrics.OutcomeCommitted).Inc()
	l.audit.LogCommit(res.ID, tx.ID, res.UserID, res.Amount, description)
	return tx, nil
}

// Rollback returns a pending reservation to the balance. Rolling back twice is
// harmless; rolling back a committed reservation fails.
func (l *CreditLedger) Rollback(ctx context.Context, res *models.Reservation) error {
	return l.release(ctx, res, "generation not completed", metrics.OutcomeRolledBack)
}

func (l *CreditLedger) release(ctx context.Context, res *models.Reservation, reason, outcome string) error {
	if res == nil {
		return fmt.Errorf("%w: nil reservation", models.ErrInvalidRequest)
	}
	released, err := l.store.ReleaseReservation(ctx, res.ID)
	if err != nil {
		metrics.CreditReservations.WithLabelValues(metrics.OutcomeError).Inc()
		l.audit.LogError(res.ID, res.UserID, err)
		return err
	}

	res.Status = models.ReservationReleased
	metrics.CreditReservations.WithLabelValues(outcome).Inc()
	l.audit.LogRollback(res.ID, res.UserID, released.Amount, reason)
	return nil
}

// Credit adds a positive amount as a purchase, bonus or refund.
func (l *CreditLedger) Credit(ctx context.Context, userID string, amount int64, kind models.TransactionKind, description string) (*models.CreditTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive", models.ErrInvalidRequest)
	}
	if !kind.Valid() || kind == models.KindUsage {
		return nil, fmt.Errorf("%w: cannot credit kind %q", models.ErrInvalidRequest, kind)
	}

	tx := &models.CreditTransaction{
		ID:          l.newID(),
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
	}
	if _, err := l.store.AddCredits(ctx, tx); err != nil {
		if !errors.Is(err, models.ErrAccountNotFound) {
			l.audit.LogError("", userID, err)
		}
		return nil, err
	}

	metrics.CreditsGranted.WithLabelValues(string(kind)).Add(float64(amount))
	l.audit.LogCredit(tx.ID, userID, amount, string(kind))
	return tx, nil
}

// Transactions lists the newest transactions of userID.
func (l *CreditLedger) Transactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return l.store.ListTransactions(ctx, userID, limit)
}

// SweepStale rolls back reservations still pending after olderThan. It returns
// how many were released.
func (l *CreditLedger) SweepStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := l.now().Add(-olderThan)
	released := 0
	for {
		stale, err := l.store.ListStaleReservations(ctx, cutoff, sweepBatchSize)
		if err != nil {
			return released, err
		}
		for i := range stale {
			err := l.release(ctx, &stale[i], "stale reservation", metrics.OutcomeSwept)
			switch {
			case err == nil:
				released++
			case errors.Is(err, models.ErrReservationSettled):
				// settled concurrently
			default:
				log.Printf("[LEDGER] Failed to release stale reservation %s: %v", stale[i].ID, err)
				return released, err
			}
		}
		if len(stale) < sweepBatchSize {
			return released, nil
		}
	}
}
