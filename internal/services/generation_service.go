package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kirin765/naver-smartstore/internal/generator"
	"github.com/kirin765/naver-smartstore/internal/metrics"
	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/store"
)

const settleTimeout = 5 * time.Second

// RateLimiter admits or rejects one request for key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type GenerationConfig struct {
	Settings generator.Settings
	Timeout  time.Duration
}

// GenerationService runs the credit-gated generation flow: validate, reserve,
// generate, then commit or roll back. It never writes products.
type GenerationService struct {
	ledger    *CreditLedger
	generator generator.Generator
	logs      store.GenerationLogStore
	limiter   RateLimiter
	validator *ValidationHelper
	cfg       GenerationConfig
}

func NewGenerationService(ledger *CreditLedger, gen generator.Generator, logs store.GenerationLogStore, cfg GenerationConfig) *GenerationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &GenerationService{
		ledger:    ledger,
		generator: gen,
		logs:      logs,
		validator: NewValidationHelper(),
		cfg:       cfg,
	}
}

// WithRateLimiter enables a per-user limit checked before any credits are
// reserved.
func (s *GenerationService) WithRateLimiter(l RateLimiter) *GenerationService {
	s.limiter = l
	return s
}

// Generate bills req.Type for userID and returns the generated copy.
func (s *GenerationService) Generate(ctx context.Context, userID string, req *models.GenerationRequest) (*models.GenerationResult, error) {
	result, _, err := s.generate(ctx, userID, "", req)
	return result, err
}

// generate also returns the usage transaction so callers can reference the
// charge when a later step fails.
func (s *GenerationService) generate(ctx context.Context, userID, productID string, req *models.GenerationRequest) (result *models.GenerationResult, usage *models.CreditTransaction, err error) {
	if userID == "" {
		return nil, nil, models.ErrUnauthenticated
	}
	if req == nil {
		return nil, nil, fmt.Errorf("%w: empty request", models.ErrInvalidRequest)
	}
	cost, ok := req.Type.Cost()
	if !ok {
		// the type comes from the URL, keep it out of metric labels
		metrics.Generations.WithLabelValues(metrics.TypeInvalid, metrics.OutcomeRejected).Inc()
		return nil, nil, fmt.Errorf("%w: unknown generation type %q", models.ErrInvalidRequest, req.Type)
	}
	genType := string(req.Type)

	r := *req
	if r.Tone == "" {
		r.Tone = models.ToneProfessional
	}
	req = &r
	if verr := s.validator.ValidateStruct(req); verr != nil {
		metrics.Generations.WithLabelValues(genType, metrics.OutcomeRejected).Inc()
		return nil, nil, fmt.Errorf("%w: %w", models.ErrInvalidRequest, verr)
	}

	if s.limiter != nil {
		allowed, lerr := s.limiter.Allow(ctx, "generate:"+userID)
		if lerr != nil {
			log.Printf("[GENERATE] Rate limiter unavailable for user %s: %v", userID, lerr)
		}
		if !allowed {
			metrics.Generations.WithLabelValues(genType, metrics.OutcomeRateLimited).Inc()
			return nil, nil, models.ErrRateLimited
		}
	}

	res, err := s.ledger.Reserve(ctx, userID, cost)
	if err != nil {
		metrics.Generations.WithLabelValues(genType, metrics.OutcomeRejected).Inc()
		return nil, nil, err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		metrics.Generations.WithLabelValues(genType, metrics.OutcomeFailed).Inc()
		// the request context may already be cancelled
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
		defer cancel()
		if rbErr := s.ledger.Rollback(rbCtx, res); rbErr != nil {
			log.Printf("[GENERATE] Rollback of reservation %s failed: %v", res.ID, rbErr)
		}
	}()

	payload, err := generator.BuildPayload(req, s.cfg.Settings)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	result, err = s.callGenerator(ctx, payload)
	if err != nil {
		log.Printf("[GENERATE] %s generation failed for user %s: %v", genType, userID, err)
		return nil, nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()
	usage, err = s.ledger.Commit(commitCtx, res, models.KindUsage, genType)
	if err != nil {
		log.Printf("[GENERATE] Commit of reservation %s failed: %v", res.ID, err)
		if errors.Is(err, models.ErrPersistenceFailed) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}
	committed = true
	metrics.Generations.WithLabelValues(genType, metrics.OutcomeSuccess).Inc()

	result.CreditsUsed = cost
	s.recordLog(commitCtx, userID, productID, req.Type, cost)
	return result, usage, nil
}

func (s *GenerationService) callGenerator(ctx context.Context, payload generator.Payload) (*models.GenerationResult, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, err := s.generator.Generate(genCtx, payload)
	metrics.ObserveGeneration(string(payload.Type), start)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, generator.ErrEmptyResponse
	}
	return out.Result(payload.Type), nil
}

// recordLog appends the generation log. Billing already happened, so a
// failure here is only logged.
func (s *GenerationService) recordLog(ctx context.Context, userID, productID string, t models.GenerationType, cost int64) {
	if s.logs == nil {
		return
	}
	entry := &models.GenerationLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   productID,
		Type:        t,
		CreditsUsed: cost,
	}
	if err := s.logs.InsertGenerationLog(ctx, entry); err != nil {
		log.Printf("[GENERATE] Failed to record generation log for user %s: %v", userID, err)
	}
}
