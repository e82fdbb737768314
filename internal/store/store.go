// Package store persists users, credit accounts, products and generation logs.
package store

import (
	"context"
	"time"

	"github.com/kirin765/naver-smartstore/internal/models"
)

// CreditStore holds balances, reservations and the transaction log. Every
// method that changes a balance does so atomically for its account.
type CreditStore interface {
	GetAccount(ctx context.Context, userID string) (*models.CreditAccount, error)

	// ReserveCredits decrements the balance by r.Amount only if the balance
	// covers it, and records r as pending. It returns
	// *models.InsufficientCreditsError when the balance is too low.
	ReserveCredits(ctx context.Context, r *models.Reservation) error

	// CommitReservation marks a pending reservation committed, appends tx and
	// adds the reserved amount to lifetime usage. Committing an already
	// committed reservation returns the original transaction.
	CommitReservation(ctx context.Context, reservationID string, tx *models.CreditTransaction) (*models.CreditTransaction, error)

	// ReleaseReservation returns a pending reservation to the balance.
	// Releasing a released reservation is a no-op.
	ReleaseReservation(ctx context.Context, reservationID string) (*models.Reservation, error)

	AddCredits(ctx context.Context, tx *models.CreditTransaction) (*models.CreditAccount, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error)
	ListStaleReservations(ctx context.Context, createdBefore time.Time, limit int) ([]models.Reservation, error)
}

// ProductStore scopes every lookup by owner.
type ProductStore interface {
	InsertProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, userID, productID string) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error

	// SaveGeneration writes only the generated fields of type t and returns
	// the stored product, leaving concurrent edits to other columns intact.
	SaveGeneration(ctx context.Context, userID, productID string, t models.GenerationType, r *models.GenerationResult) (*models.Product, error)
	DeleteProduct(ctx context.Context, userID, productID string) error
	ListProductsByUser(ctx context.Context, userID string, limit int) ([]models.Product, error)
	CountProductsByUser(ctx context.Context, userID string) (int, error)
}

// UserStore creates users together with their credit account.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User, initialCredits int64) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type GenerationLogStore interface {
	InsertGenerationLog(ctx context.Context, l *models.GenerationLog) error
}

// Store is the full storage collaborator.
type Store interface {
	CreditStore
	ProductStore
	UserStore
	GenerationLogStore
}
