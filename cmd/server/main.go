package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/maarten/chauffeur/config"
	"github.com/maarten/chauffeur/internal/handler"
	gmaps "github.com/maarten/chauffeur/internal/maps"
	"github.com/maarten/chauffeur/internal/middleware"
	"github.com/maarten/chauffeur/internal/repository"
	"github.com/maarten/chauffeur/internal/service"
	"github.com/maarten/chauffeur/pkg/cache"
	"github.com/maarten/chauffeur/pkg/db"
)

func main() {
	// ── Load configuration ──────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// ── Connect to PostgreSQL ───────────────────────────
	pgPool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	defer pgPool.Close()
	log.Println("✓ PostgreSQL connected")

	// ── Connect to Redis ────────────────────────────────
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ── Routing provider ────────────────────────────────
	// Without an API key the resolver still works for coordinate
	// pairs via the great-circle fallback.
	var provider service.RouteProvider
	if cfg.Maps.APIKey != "" {
		routeSvc, err := gmaps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("failed to create maps client: %v", err)
		}
		provider = routeSvc
		log.Println("✓ Google Maps client ready")
	} else {
		log.Println("⚠ MAPS_API_KEY not set — distance resolution limited to coordinate fallback")
	}

	// ── Initialize layers ───────────────────────────────
	tariffRepo := repository.NewTariffRepository(pgPool, redisClient)
	quoteRepo := repository.NewQuoteRepository(pgPool)
	distanceCache := repository.NewDistanceCacheStore(redisClient, cfg.Pricing.DistanceCacheTTL)

	distanceSvc := service.NewDistanceService(provider, distanceCache, cfg.Maps.Timeout)
	fareSvc := service.NewFareService(cfg.Pricing)

	pricingHandler := handler.NewPricingHandler(distanceSvc, fareSvc, tariffRepo, quoteRepo)
	quoteHandler := handler.NewQuoteHandler(quoteRepo)

	// ── Setup router ────────────────────────────────────
	router := mux.NewRouter()

	// Health check endpoint.
	router.HandleFunc("/health", healthHandler(pgPool, redisClient)).Methods(http.MethodGet)

	// API v1 routes.
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/fare/estimate", pricingHandler.EstimateFare).Methods(http.MethodPost)
	api.HandleFunc("/fare/compare", pricingHandler.CompareFares).Methods(http.MethodPost)
	api.HandleFunc("/quotes/{id}", quoteHandler.GetQuote).Methods(http.MethodGet)

	// Wrap with logging, panic recovery and CORS for the booking frontend.
	wrapped := middleware.CORS(middleware.RequestLogger(middleware.Recoverer(router)))

	// ── Start HTTP server ───────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Server.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Periodic cache sweep keeps expired distance entries from piling up.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runCacheSweeper(sweepCtx, distanceSvc, cfg.Pricing.DistanceCacheTTL)

	// ── Graceful shutdown ───────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

// runCacheSweeper evicts expired distance cache entries once per TTL.
func runCacheSweeper(ctx context.Context, distanceSvc *service.DistanceService, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := distanceSvc.SweepCache(ctx); dropped > 0 {
				log.Printf("[distance] swept %d expired cache entries", dropped)
			}
		}
	}
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// healthHandler returns an HTTP handler that checks PG and Redis connectivity.
func healthHandler(pgPool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:   "ok",
			Services: make(map[string]string),
		}

		if err := db.HealthCheck(r.Context(), pgPool); err != nil {
			resp.Status = "degraded"
			resp.Services["postgres"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["postgres"] = "healthy"
		}

		if err := cache.HealthCheck(r.Context(), redisClient); err != nil {
			resp.Status = "degraded"
			resp.Services["redis"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["redis"] = "healthy"
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(resp)
	}
}
