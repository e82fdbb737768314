package models

import "time"

// TransactionKind is the business reason for a credit transaction.
type TransactionKind string

const (
	KindPurchase TransactionKind = "purchase"
	KindUsage    TransactionKind = "usage"
	KindBonus    TransactionKind = "bonus"
	KindRefund   TransactionKind = "refund"
)

// Valid reports whether k is one of the known kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindPurchase, KindUsage, KindBonus, KindRefund:
		return true
	}
	return false
}

// CreditAccount holds the spendable balance of one user.
type CreditAccount struct {
	UserID        string    `json:"userId" db:"user_id"`
	Balance       int64     `json:"balance" db:"balance"`
	LifetimeUsage int64     `json:"lifetimeUsage" db:"lifetime_usage"`
	InitialGrant  int64     `json:"initialGrant" db:"initial_grant"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// CreditTransaction is an immutable ledger line. Amount is negative for usage.
type CreditTransaction struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"userId" db:"user_id"`
	Amount        int64           `json:"amount" db:"amount"`
	Kind          TransactionKind `json:"type" db:"kind"`
	Description   string          `json:"description,omitempty" db:"description"`
	ReservationID string          `json:"reservationId,omitempty" db:"reservation_id"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// ReservationStatus tracks the lifecycle of a pending debit.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationCommitted ReservationStatus = "committed"
	ReservationReleased  ReservationStatus = "released"
)

// Reservation is a debit already removed from the spendable balance but not yet
// recorded as usage.
type Reservation struct {
	ID            string            `json:"id" db:"id"`
	UserID        string            `json:"userId" db:"user_id"`
	Amount        int64             `json:"amount" db:"amount"`
	Status        ReservationStatus `json:"status" db:"status"`
	TransactionID string            `json:"transactionId,omitempty" db:"transaction_id"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at"`
	SettledAt     *time.Time        `json:"settledAt,omitempty" db:"settled_at"`
}

// CreditPackage is a purchasable bundle of credits.
type CreditPackage struct {
	ID       string `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	Credits  int64  `json:"credits" mapstructure:"credits"`
	PriceKRW int64  `json:"priceKrw" mapstructure:"price_krw"`
	Active   bool   `json:"isActive" mapstructure:"active"`
}
