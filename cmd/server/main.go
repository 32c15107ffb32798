package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mino-dev/mino-web/internal/api"
	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/billing"
	"github.com/mino-dev/mino-web/internal/config"
	"github.com/mino-dev/mino-web/internal/metrics"
	"github.com/mino-dev/mino-web/internal/repository/postgres"
	"github.com/mino-dev/mino-web/internal/service"
	"github.com/mino-dev/mino-web/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database. The connection is created once here and passed
	// down; nothing else opens connections.
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	repos := postgres.NewRepositories(db)

	// Auth provider client
	provider := authprovider.NewClient(cfg.AuthURL, cfg.AuthJWTSecret, cfg.AuthRequestTimeout)

	// Billing is optional; without a key users simply get no Stripe customer.
	var provisioner billing.CustomerProvisioner
	if cfg.StripeSecretKey != "" {
		provisioner = billing.NewStripeProvisioner(cfg.StripeSecretKey)
	}

	services := service.NewServices(repos, provisioner)

	// Canvas presence hub
	hub := websocket.NewHub(repos.UserCanvas)
	go hub.Run()

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	router := api.NewRouter(services, provider, hub, db, cfg, collector, registry)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	hub.Stop()

	log.Println("Server stopped")
}
