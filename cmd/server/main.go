package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/installment-ledger/internal/cache"
	"github.com/segyhp/installment-ledger/internal/config"
	"github.com/segyhp/installment-ledger/internal/handler"
	"github.com/segyhp/installment-ledger/internal/service"
	"github.com/segyhp/installment-ledger/internal/storage"
	"github.com/segyhp/installment-ledger/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize Redis
	redisClient, err := cache.OpenRedis(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize service
	ledger := service.NewLedgerService(store.Repos, store.UoW,
		cache.NewLoanCache(redisClient, cfg.GetCacheTTL()),
		service.LedgerConfig{
			MarkupRate:       cfg.GetMarkupRate(),
			DefaultTermWeeks: cfg.Business.DefaultLoanWeeks,
		})
	ledgerHandler := handler.NewLedgerHandler(ledger)
	healthHandler := handler.NewHealthHandler(store, handler.PingFunc(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}))

	// Setup routes
	router := setupRoutes(cfg, ledgerHandler, healthHandler, redisClient)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s (env=%s, db=%s)", server.Addr, cfg.Server.Env, store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func setupRoutes(cfg *config.Config, ledgerHandler *handler.LedgerHandler, healthHandler *handler.HealthHandler, rdb *redis.Client) http.Handler {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handler.ActorMiddleware, handler.IdempotencyMiddleware(rdb, cfg.GetIdempotencyTTL()))
	ledgerHandler.Routes(api)

	standard := alice.New(
		handlers.RecoveryHandler(handlers.PrintRecoveryStack(cfg.IsDevelopment())),
		response.LoggingMiddleware,
		response.CORSMiddleware,
	)
	return standard.Then(router)
}
