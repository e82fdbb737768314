package services

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirin765/naver-smartstore/internal/audit"
	"github.com/kirin765/naver-smartstore/internal/generator"
	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/store"
)

func newTestProducts(st *store.MemoryStore, products store.ProductStore, auditLogger *audit.AuditLogger) *ProductService {
	gen := newTestGeneration(st, generator.Static{}, time.Second)
	return NewProductService(products, gen, auditLogger)
}

func sampleInput() *models.ProductInput {
	price := int64(39000)
	return &models.ProductInput{
		ProductName: "무선 블루투스 이어폰",
		Category:    "디지털가전",
		Brand:       "사운드코어",
		Price:       &price,
		Keywords:    []string{"이어폰", "노이즈캔슬링"},
	}
}

func TestProductService_CRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(genUser, 10)
	svc := newTestProducts(st, st, discardAudit())

	p, err := svc.Create(ctx, genUser, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusDraft, p.Status)
	assert.NotEmpty(t, p.ID)

	got, err := svc.Get(ctx, genUser, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "사운드코어", got.Brand)

	_, err = svc.Get(ctx, "user-2", p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	title := "직접 쓴 제목"
	status := models.ProductStatusPublished
	updated, err := svc.Update(ctx, genUser, p.ID, &models.ProductUpdate{GeneratedTitle: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, title, updated.GeneratedTitle)
	assert.Equal(t, status, updated.Status)
	assert.Equal(t, "디지털가전", updated.Category)

	list, err := svc.List(ctx, genUser, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, genUser, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, genUser, p.ID), models.ErrNotFound)
}

func TestProductService_Validation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(genUser, 10)
	svc := newTestProducts(st, st, discardAudit())

	_, err := svc.Create(ctx, genUser, &models.ProductInput{Category: "패션"})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	p, err := svc.Create(ctx, genUser, &models.ProductInput{ProductName: "머그컵"})
	require.NoError(t, err)
	assert.NotNil(t, p.Keywords)

	bad := "archived"
	_, err = svc.Update(ctx, genUser, p.ID, &models.ProductUpdate{Status: &bad})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	_, err = svc.Create(ctx, "", sampleInput())
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestProductService_GenerateForProduct(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(genUser, 10)
	svc := newTestProducts(st, st, discardAudit())

	p, err := svc.Create(ctx, genUser, sampleInput())
	require.NoError(t, err)

	out, err := svc.GenerateForProduct(ctx, genUser, p.ID, models.GenerationTags, "")
	require.NoError(t, err)
	assert.Empty(t, out.Warning)
	assert.Equal(t, int64(1), out.Result.CreditsUsed)
	assert.Equal(t, []string{"무선 블루투스 이어폰", "이어폰", "노이즈캔슬링"}, out.Product.GeneratedTags)

	_, err = svc.GenerateForProduct(ctx, genUser, p.ID, models.GenerationFull, models.ToneFriendly)
	require.NoError(t, err)

	saved, err := svc.Get(ctx, genUser, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "✨ 무선 블루투스 이어폰", saved.GeneratedTitle)
	assert.NotEmpty(t, saved.GeneratedDescription)
	assert.Len(t, saved.GeneratedBulletSpecs, 5)

	assert.Equal(t, int64(4), balanceOf(t, st).Balance)

	logs := st.GenerationLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, p.ID, logs[0].ProductID)

	t.Run("another user's product is not found and not charged", func(t *testing.T) {
		st.CreateAccount("user-2", 10)
		_, err := svc.GenerateForProduct(ctx, "user-2", p.ID, models.GenerationTitle, "")
		assert.ErrorIs(t, err, models.ErrNotFound)
		acc, _ := st.GetAccount(ctx, "user-2")
		assert.Equal(t, int64(10), acc.Balance)
	})
}

func TestProductService_GenerateSaveFailureKeepsCharge(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(genUser, 10)
	var buf bytes.Buffer
	svc := newTestProducts(st, saveFailingStore{st}, audit.NewAuditLoggerTo(log.New(&buf, "", 0)))

	p, err := svc.Create(ctx, genUser, sampleInput())
	require.NoError(t, err)

	out, err := svc.GenerateForProduct(ctx, genUser, p.ID, models.GenerationTitle, "")
	require.NoError(t, err)
	assert.NotEmpty(t, out.Warning)
	assert.Nil(t, out.Product)
	assert.Equal(t, "✨ 무선 블루투스 이어폰", out.Result.Title)

	assert.Equal(t, int64(9), balanceOf(t, st).Balance)
	assert.Contains(t, buf.String(), `"event_type":"RECONCILE"`)
	assert.Contains(t, buf.String(), p.ID)

	saved, err := st.GetProduct(ctx, genUser, p.ID)
	require.NoError(t, err)
	assert.Empty(t, saved.GeneratedTitle)
}

func TestProductService_GenerateKeepsEditsMadeDuringGeneration(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(genUser, 10)
	var productID string
	gen := generator.Func(func(genCtx context.Context, p generator.Payload) (*generator.Output, error) {
		// the seller renames the product while the model is running
		edited, err := st.GetProduct(genCtx, genUser, productID)
		if err != nil {
			return nil, err
		}
		edited.ProductName = "노이즈캔슬링 이어폰 2세대"
		if err := st.UpdateProduct(genCtx, edited); err != nil {
			return nil, err
		}
		return &generator.Output{Tags: []string{"이어폰"}}, nil
	})
	svc := NewProductService(st, newTestGeneration(st, gen, time.Second), discardAudit())

	p, err := svc.Create(ctx, genUser, sampleInput())
	require.NoError(t, err)
	productID = p.ID

	out, err := svc.GenerateForProduct(ctx, genUser, p.ID, models.GenerationTags, "")
	require.NoError(t, err)
	assert.Equal(t, "노이즈캔슬링 이어폰 2세대", out.Product.ProductName)

	saved, err := st.GetProduct(ctx, genUser, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "노이즈캔슬링 이어폰 2세대", saved.ProductName)
	assert.Equal(t, []string{"이어폰"}, saved.GeneratedTags)
}
