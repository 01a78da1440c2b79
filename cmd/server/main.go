package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	"storefront-service/internal/api"
	"storefront-service/internal/broker"
	"storefront-service/internal/cache"
	"storefront-service/internal/money"
	"storefront-service/internal/pricing"
	"storefront-service/internal/service"
	"storefront-service/internal/source"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
	"storefront-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service")

	tp, err := util.InitTracer("storefront-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	catalogStore := store.New()

	sourceClient := source.NewClient(
		cfg.Sources.BaseURL,
		cfg.Sources.ItemsPath,
		cfg.Sources.DiscountsPath,
		cfg.Sources.SettingsPath,
		cfg.Sources.FetchTimeout,
	)

	sourceCache, err := cache.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SnapshotTTL)
	if err != nil {
		log.Printf("Redis unavailable, running without source cache: %v", err)
		sourceCache = nil
	} else {
		defer sourceCache.Close()
		log.Println("Redis connected")
	}

	var eventPublisher *broker.EventPublisher
	var refreshConsumer *broker.Consumer
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog)
		defer producer.Close()
		eventPublisher = broker.NewEventPublisher(producer)
		refreshConsumer = broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog, cfg.Kafka.ConsumerGroup)
		log.Println("Kafka producer initialized")
	}

	engine := pricing.NewEngine(cfg.Catalog.WholeUnitPrices)
	catalogService := service.NewCatalogService(catalogStore, sourceClient, sourceCache, eventPublisher, engine)

	ctx := context.Background()
	if err := catalogService.Load(ctx, service.LoadOptions{Origin: "startup"}); err != nil {
		log.Printf("Initial catalog load failed, serving once sources recover: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var refreshWorker *worker.RefreshWorker
	if refreshConsumer != nil {
		refreshWorker = worker.NewRefreshWorker(refreshConsumer, catalogService)
		go func() {
			if err := refreshWorker.Start(workerCtx); err != nil {
				log.Printf("Refresh worker error: %v", err)
			}
		}()
	}

	periodicRefresher := worker.NewPeriodicRefresher(catalogService, cfg.Catalog.RefreshInterval)
	go func() {
		if err := periodicRefresher.Start(workerCtx); err != nil {
			log.Printf("Periodic refresher error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	formatter := money.NewFormatter(cfg.Catalog.Locale, cfg.Catalog.CurrencyCode)
	handler := api.NewHandler(catalogService, formatter, cfg.Catalog.DefaultPageSize)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if refreshWorker != nil {
		refreshWorker.Stop()
	}

	log.Println("Server exited")
}
