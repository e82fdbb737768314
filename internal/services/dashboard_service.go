package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/store"
)

const recentProductCount = 5

type DashboardStats struct {
	Balance        int64            `json:"balance"`
	LifetimeUsage  int64            `json:"lifetimeUsage"`
	ProductCount   int              `json:"productCount"`
	RecentProducts []models.Product `json:"recentProducts"`
}

type DashboardService struct {
	ledger   *CreditLedger
	products store.ProductStore
}

func NewDashboardService(ledger *CreditLedger, products store.ProductStore) *DashboardService {
	return &DashboardService{ledger: ledger, products: products}
}

// Stats reads the balance, product count and recent products concurrently.
func (s *DashboardService) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}

	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acc, err := s.ledger.GetBalance(gctx, userID)
		if err != nil {
			return err
		}
		stats.Balance = acc.Balance
		stats.LifetimeUsage = acc.LifetimeUsage
		return nil
	})
	g.Go(func() error {
		n, err := s.products.CountProductsByUser(gctx, userID)
		stats.ProductCount = n
		return err
	})
	g.Go(func() error {
		recent, err := s.products.ListProductsByUser(gctx, userID, recentProductCount)
		stats.RecentProducts = recent
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
