package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kirin765/naver-smartstore/internal/audit"
	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/store"
)

const maxProductList = 100

// ProductGeneration is the outcome of generating copy for a stored product.
// Warning is set when the copy was paid for but could not be saved.
type ProductGeneration struct {
	Result  *models.GenerationResult `json:"result"`
	Product *models.Product          `json:"product,omitempty"`
	Warning string                   `json:"warning,omitempty"`
}

type ProductService struct {
	store     store.ProductStore
	gen       *GenerationService
	audit     *audit.AuditLogger
	validator *ValidationHelper
}

func NewProductService(s store.ProductStore, gen *GenerationService, auditLogger *audit.AuditLogger) *ProductService {
	if auditLogger == nil {
		auditLogger = audit.NewAuditLogger()
	}
	return &ProductService{
		store:     s,
		gen:       gen,
		audit:     auditLogger,
		validator: NewValidationHelper(),
	}
}

func (s *ProductService) Create(ctx context.Context, userID string, in *models.ProductInput) (*models.Product, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}
	if err := s.validator.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidRequest, err)
	}

	p := &models.Product{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductName: in.ProductName,
		Category:    in.Category,
		Brand:       in.Brand,
		Price:       in.Price,
		Keywords:    in.Keywords,
		Status:      models.ProductStatusDraft,
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	if err := s.store.InsertProduct(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("[PRODUCT] Created product %s for user %s", p.ID, userID)
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, userID, productID string) (*models.Product, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}
	return s.store.GetProduct(ctx, userID, productID)
}

func (s *ProductService) List(ctx context.Context, userID string, limit int) ([]models.Product, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}
	if limit <= 0 || limit > maxProductList {
		limit = maxProductList
	}
	return s.store.ListProductsByUser(ctx, userID, limit)
}

// Update applies a partial update, including hand edits of generated fields.
func (s *ProductService) Update(ctx context.Context, userID, productID string, upd *models.ProductUpdate) (*models.Product, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}
	if err := s.validator.ValidateStruct(upd); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidRequest, err)
	}
	p, err := s.store.GetProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	upd.Apply(p)
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return models.ErrUnauthenticated
	}
	return s.store.DeleteProduct(ctx, userID, productID)
}

// GenerateForProduct generates copy of genType from the stored product and
// overwrites only that kind of generated field, so edits made while the
// generator runs are kept. If saving fails after the credits
// were committed, the charge stands: the result is still returned with a
// warning and a RECONCILE audit event is written.
func (s *ProductService) GenerateForProduct(ctx context.Context, userID, productID string, genType models.GenerationType, tone string) (*ProductGeneration, error) {
	p, err := s.Get(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	req := &models.GenerationRequest{
		ProductName: p.ProductName,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Keywords:    p.Keywords,
		Tone:        tone,
		Type:        genType,
	}
	result, usage, err := s.gen.generate(ctx, userID, p.ID, req)
	if err != nil {
		return nil, err
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()
	saved, err := s.store.SaveGeneration(saveCtx, userID, p.ID, genType, result)
	if err != nil {
		log.Printf("[PRODUCT] Generated %s copy for product %s could not be saved: %v", genType, p.ID, err)
		if !errors.Is(err, models.ErrPersistenceFailed) {
			err = fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
		}
		s.audit.LogReconcile(usage.ID, userID, p.ID, result.CreditsUsed, err)
		return &ProductGeneration{
			Result:  result,
			Warning: "generated content could not be saved to the product; copy it manually",
		}, nil
	}

	log.Printf("[PRODUCT] Saved %s copy to product %s at %s", genType, saved.ID, saved.UpdatedAt.Format(time.RFC3339))
	return &ProductGeneration{Result: result, Product: saved}, nil
}
