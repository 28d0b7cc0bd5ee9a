package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "monetization-service/docs"
	"monetization-service/internal/broker"
	"monetization-service/internal/cache"
	"monetization-service/internal/config"
	"monetization-service/internal/database"
	"monetization-service/internal/repositories/kafkarepo"
	"monetization-service/internal/repositories/postgresrepo"
	"monetization-service/internal/repositories/redisrepo"
	"monetization-service/internal/services"
	"monetization-service/internal/transport/http/handler"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
}

// @title Campus Monetization API
// @version 1.0
// @description Fee rules, transaction ledger and wallet for a campus marketplace.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func New() (*App, error) {
	a := new(App)

	// Initialize config
	a.cfg = config.New()

	a.logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Connect to database
	db, err := database.NewPostgres(a.cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	// Connect to cache
	redis, err := cache.NewRedis(a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("cache connection error: %w", err)
	}

	// Connect to broker
	kafka, err := broker.NewKafkaWriter(a.cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("broker connection error: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(db)
	balanceCache := redisrepo.NewWalletRepository(redis)
	publisher := kafkarepo.NewTransactionRepository(kafka)

	// Initialize services
	walletService := services.NewWalletService(store, balanceCache, publisher, a.logger, a.cfg.Currency)
	actionService := services.NewActionService(store, walletService, a.logger, a.cfg.Currency)

	// Initialize mux and handlers
	mux := http.NewServeMux()

	handler.NewActions(mux, actionService, a.logger)
	handler.NewWallet(mux, walletService, a.logger)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize http server
	a.httpServer = &http.Server{
		Addr:         a.cfg.Server.Port,
		Handler:      a.logRequest(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return a, nil
}

func (a *App) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.logger.Info("received request", "method", r.Method, "uri", r.URL.RequestURI(), "ip", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

func (a *App) Run() error {
	a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Port)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
