package services

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/stretchr/testify/mock"

	"github.com/kirin765/naver-smartstore/internal/audit"
	"github.com/kirin765/naver-smartstore/internal/generator"
	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/store"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, p generator.Payload) (*generator.Output, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generator.Output), args.Error(1)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// commitFailingStore loses every commit.
type commitFailingStore struct {
	*store.MemoryStore
}

func (s commitFailingStore) CommitReservation(ctx context.Context, reservationID string, tx *models.CreditTransaction) (*models.CreditTransaction, error) {
	return nil, errors.New("connection reset by peer")
}

// saveFailingStore cannot save generated copy to products.
type saveFailingStore struct {
	*store.MemoryStore
}

func (s saveFailingStore) SaveGeneration(ctx context.Context, userID, productID string, t models.GenerationType, r *models.GenerationResult) (*models.Product, error) {
	return nil, errors.New("connection reset by peer")
}

func discardAudit() *audit.AuditLogger {
	return audit.NewAuditLoggerTo(log.New(io.Discard, "", 0))
}

func newTestStore(userID string, balance int64) *store.MemoryStore {
	st := store.NewMemoryStore()
	st.CreateAccount(userID, balance)
	return st
}

func titleOutput() *generator.Output {
	return &generator.Output{Title: "🎧 무선 블루투스 이어폰", Alternatives: []string{"노이즈캔슬링 이어폰"}}
}

func fullOutput() *generator.Output {
	return &generator.Output{
		Title:       "🎧 무선 블루투스 이어폰",
		Description: "<p>선명한 음질</p>",
		BulletSpecs: []string{"✅ 30시간 재생"},
		Tags:        []string{"이어폰", "블루투스"},
	}
}
