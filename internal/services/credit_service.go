package services

import (
	"context"
	"fmt"

	"github.com/kirin765/naver-smartstore/internal/models"
)

// CreditSummary is the balance view shown on the credits page.
type CreditSummary struct {
	Balance       int64                      `json:"balance"`
	LifetimeUsage int64                      `json:"lifetimeUsage"`
	Transactions  []models.CreditTransaction `json:"transactions"`
}

// CreditService exposes balances and the package catalog. Purchases credit the
// account directly without capturing a payment, so they are refused unless
// unpaid purchases were enabled.
type CreditService struct {
	ledger      *CreditLedger
	packages    []models.CreditPackage
	allowUnpaid bool
}

func NewCreditService(ledger *CreditLedger, packages []models.CreditPackage) *CreditService {
	return &CreditService{ledger: ledger, packages: packages}
}

// WithUnpaidPurchases enables Purchase.
func (s *CreditService) WithUnpaidPurchases(enabled bool) *CreditService {
	s.allowUnpaid = enabled
	return s
}

func (s *CreditService) Summary(ctx context.Context, userID string, limit int) (*CreditSummary, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}
	acc, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.ledger.Transactions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return &CreditSummary{
		Balance:       acc.Balance,
		LifetimeUsage: acc.LifetimeUsage,
		Transactions:  txs,
	}, nil
}

// Packages returns the active packages.
func (s *CreditService) Packages() []models.CreditPackage {
	out := make([]models.CreditPackage, 0, len(s.packages))
	for _, p := range s.packages {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Purchase credits the package's credits to userID.
func (s *CreditService) Purchase(ctx context.Context, userID, packageID string) (*models.CreditTransaction, *models.CreditAccount, error) {
	if userID == "" {
		return nil, nil, models.ErrUnauthenticated
	}
	if !s.allowUnpaid {
		return nil, nil, models.ErrPurchaseDisabled
	}
	var pkg *models.CreditPackage
	for i := range s.packages {
		if s.packages[i].ID == packageID && s.packages[i].Active {
			pkg = &s.packages[i]
			break
		}
	}
	if pkg == nil {
		return nil, nil, fmt.Errorf("credit package %q: %w", packageID, models.ErrNotFound)
	}

	tx, err := s.ledger.Credit(ctx, userID, pkg.Credits, models.KindPurchase, pkg.Name)
	if err != nil {
		return nil, nil, err
	}
	acc, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return tx, acc, nil
}
