package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/clickhouse"
	"storefront/internal/localstore"
	"storefront/internal/postgres"
	"storefront/internal/realtime"
	"storefront/internal/search"
	"storefront/internal/workers"
	"storefront/pkg/logger"
)

func main() {
	// Initialize logger
	logger.Init()
	log.Println("🚀 Starting Storefront Core...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("✓ Configuration loaded")
	log.Printf("  - Postgres: %s:%d/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Database)
	log.Printf("  - RabbitMQ: %s", cfg.RabbitMQ.URL)
	log.Printf("  - ClickHouse: %s:%d/%s", cfg.ClickHouse.Host, cfg.ClickHouse.Port, cfg.ClickHouse.Database)
	log.Printf("  - Local store: %s", cfg.Local.Dir)

	// Connect to Postgres
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgClient.Close()
	log.Println("✓ Connected to Postgres")

	// Connect to ClickHouse
	chClient, err := clickhouse.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer chClient.Close()
	log.Println("✓ Connected to ClickHouse")

	// Open the realtime push channel
	channel, err := realtime.Dial(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer channel.Close()
	log.Println("✓ Connected to RabbitMQ")

	// Durable local storage + the stores hydrated from it
	local, err := localstore.New(cfg.Local.Dir)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	lineItems := cart.NewStore(local)
	searchHistory := search.NewHistory(local)
	log.Printf("✓ Local stores hydrated (%d cart lines, %d recent searches)",
		lineItems.CartCount(), len(searchHistory.Recent()))

	// Remote-backed services; warm the catalog so a dead schema fails fast
	catalogSvc := catalog.NewService(pgClient)
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	cats, err := catalogSvc.Categories(warmCtx)
	if err != nil {
		warmCancel()
		log.Fatalf("Failed to load categories: %v", err)
	}
	banners, err := catalogSvc.ActiveBanners(warmCtx)
	warmCancel()
	if err != nil {
		log.Fatalf("Failed to load home banners: %v", err)
	}
	log.Printf("✓ Catalog reachable (%d categories, %d active banners)", len(cats), len(banners))

	// Seller-dashboard analytics worker
	analytics := workers.NewAnalyticsWorker(channel, chClient, pgClient, cfg.RabbitMQ.OrderQueue)
	if err := analytics.Start(); err != nil {
		log.Fatalf("Failed to start analytics worker: %v", err)
	}
	defer analytics.Stop()

	log.Println("✓ All services started successfully")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down...")
	log.Println("✓ Stopped gracefully")
}
