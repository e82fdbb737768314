// Package audit writes one JSON line per credit ledger event.
package audit

import (
	"encoding/json"
	"log"
	"time"
)

const (
	EventReserve   = "RESERVE"
	EventCommit    = "COMMIT"
	EventRollback  = "ROLLBACK"
	EventCredit    = "CREDIT"
	EventReconcile = "RECONCILE"
	EventError     = "ERROR"
)

type AuditEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	UserID        string    `json:"user_id"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	Details       any       `json:"details,omitempty"`
}

type AuditLogger struct {
	logger *log.Logger
}

// NewAuditLogger writes through the standard logger.
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{logger: log.Default()}
}

// NewAuditLoggerTo writes through l.
func NewAuditLoggerTo(l *log.Logger) *AuditLogger {
	return &AuditLogger{logger: l}
}

func (a *AuditLogger) LogReserve(reservationID, userID string, amount int64, status string) {
	a.log(AuditEvent{
		EventType:     EventReserve,
		ReservationID: reservationID,
		UserID:        userID,
		Amount:        amount,
		Status:        status,
	})
}

func (a *AuditLogger) LogCommit(reservationID, transactionID, userID string, amount int64, description string) {
	a.log(AuditEvent{
		EventType:     EventCommit,
		ReservationID: reservationID,
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
		Status:        "SUCCESS",
		Details:       map[string]string{"description": description},
	})
}

func (a *AuditLogger) LogRollback(reservationID, userID string, amount int64, reason string) {
	a.log(AuditEvent{
		EventType:     EventRollback,
		ReservationID: reservationID,
		UserID:        userID,
		Amount:        amount,
		Status:        "SUCCESS",
		Details:       map[string]string{"reason": reason},
	})
}

func (a *AuditLogger) LogCredit(transactionID, userID string, amount int64, kind string) {
	a.log(AuditEvent{
		EventType:     EventCredit,
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
		Status:        "SUCCESS",
		Details:       map[string]string{"kind": kind},
	})
}

// LogReconcile records a paid generation whose result could not be stored.
func (a *AuditLogger) LogReconcile(transactionID, userID, productID string, amount int64, err error) {
	a.log(AuditEvent{
		EventType:     EventReconcile,
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
		Status:        "UNRESOLVED",
		Details: map[string]string{
			"product_id": productID,
			"error":      err.Error(),
		},
	})
}

func (a *AuditLogger) LogError(reservationID, userID string, err error) {
	a.log(AuditEvent{
		EventType:     EventError,
		ReservationID: reservationID,
		UserID:        userID,
		Status:        "FAILED",
		Details:       map[string]string{"error": err.Error()},
	})
}

func (a *AuditLogger) log(event AuditEvent) {
	event.Timestamp = time.Now().UTC()
	data, _ := json.Marshal(event)
	a.logger.Printf("AUDIT: %s", string(data))
}
