package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kirin765/naver-smartstore/docs"
	"github.com/kirin765/naver-smartstore/internal/audit"
	"github.com/kirin765/naver-smartstore/internal/config"
	"github.com/kirin765/naver-smartstore/internal/database"
	"github.com/kirin765/naver-smartstore/internal/generator"
	"github.com/kirin765/naver-smartstore/internal/handlers"
	"github.com/kirin765/naver-smartstore/internal/metrics"
	mW "github.com/kirin765/naver-smartstore/internal/middleware"
	"github.com/kirin765/naver-smartstore/internal/ratelimit"
	"github.com/kirin765/naver-smartstore/internal/services"
	"github.com/kirin765/naver-smartstore/internal/store"
)

// @title SmartStore Listing Generator API
// @version 1.0
// @description Credit-gated generation of Naver SmartStore product listing copy
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore := openStore(ctx, cfg.Database)
	defer closeStore()

	redisClient := database.InitRedis(ctx, cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	gen := newGenerator(cfg.Generator)
	auditLogger := audit.NewAuditLogger()

	ledger := services.NewCreditLedger(st, auditLogger)
	generationService := services.NewGenerationService(ledger, gen, st, services.GenerationConfig{
		Settings: generator.Settings{
			Model:       cfg.Generator.Model,
			FullModel:   cfg.Generator.FullModel,
			Temperature: cfg.Generator.Temperature,
		},
		Timeout: cfg.Generator.Timeout,
	})
	if redisClient != nil && cfg.RateLimit.GeneratePerWindow > 0 {
		limiter, err := ratelimit.NewFixedWindowLimiter(redisClient, "smartstore:ratelimit",
			cfg.RateLimit.GeneratePerWindow, cfg.RateLimit.Window)
		if err != nil {
			log.Fatalf("Failed to initialize rate limiter: %v", err)
		}
		generationService.WithRateLimiter(limiter)
	}
	productService := services.NewProductService(st, generationService, auditLogger)
	creditService := services.NewCreditService(ledger, cfg.Credits.Packages).
		WithUnpaidPurchases(cfg.Credits.AllowUnpaidPurchase)
	if cfg.Credits.AllowUnpaidPurchase {
		log.Println("[LEDGER] Unpaid credit purchases are enabled")
	}
	dashboardService := services.NewDashboardService(ledger, st)
	authService := services.NewAuthService(st, redisClient, cfg.JWT, cfg.Argon2, cfg.Credits.SignupGrant)

	sweeper := services.NewReservationSweeper(ledger, cfg.Credits.ReservationTTL, cfg.Credits.SweepInterval)
	go sweeper.Run(ctx)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(cfg.Generator.Timeout + 15*time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", handlers.Routes{
		Auth:        authService,
		Products:    handlers.NewProductHandler(productService),
		Generation:  handlers.NewGenerationHandler(generationService, productService),
		Credits:     handlers.NewCreditHandler(creditService),
		Dashboard:   handlers.NewDashboardHandler(dashboardService),
		RequireAuth: mW.NewAuth(cfg.JWT.SecretKey, redisClient),
	}.Register)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s (store=%s, generator=%s)", cfg.Server.Port, cfg.Database.Driver, cfg.Generator.Provider)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, func()) {
	if cfg.Driver == "memory" {
		log.Println("[DB] Using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), func() {}
	}

	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return store.NewPostgresStore(db), func() { db.Close() }
}

func newGenerator(cfg config.GeneratorConfig) generator.Generator {
	if cfg.Provider == "static" {
		log.Println("[GENERATE] Using the static generator")
		return generator.Static{}
	}
	return generator.NewOpenAIGenerator(cfg.BaseURL, cfg.APIKey).
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout + 5*time.Second})
}
