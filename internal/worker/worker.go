package worker

import (
	"context"
	"log"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
)

// RefreshWorker reloads the catalog when a refresh event arrives on the
// catalog topic.
type RefreshWorker struct {
	consumer       *broker.Consumer
	eventHandler   *broker.EventHandler
	catalogService *service.CatalogService
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(
	consumer *broker.Consumer,
	catalogService *service.CatalogService,
) *RefreshWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnRefreshRequested(func(ctx context.Context, event *models.RefreshRequestedEvent) error {
		log.Printf("Refresh requested: reason=%s, bypass_cache=%t", event.Reason, event.BypassCache)
		return catalogService.Load(ctx, service.LoadOptions{
			BypassCache: event.BypassCache,
			Origin:      "event",
		})
	})

	return &RefreshWorker{
		consumer:       consumer,
		eventHandler:   eventHandler,
		catalogService: catalogService,
	}
}

// Start starts the worker
func (w *RefreshWorker) Start(ctx context.Context) error {
	log.Println("Starting refresh worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *RefreshWorker) Stop() error {
	log.Println("Stopping refresh worker...")
	return w.consumer.Close()
}

// PeriodicRefresher re-fetches the sources on a fixed interval so the
// snapshot tracks upstream edits without a manual trigger.
type PeriodicRefresher struct {
	catalogService *service.CatalogService
	interval       time.Duration
}

// NewPeriodicRefresher creates a periodic refresher. A zero interval
// disables it; Start returns immediately in that case.
func NewPeriodicRefresher(catalogService *service.CatalogService, interval time.Duration) *PeriodicRefresher {
	return &PeriodicRefresher{
		catalogService: catalogService,
		interval:       interval,
	}
}

// Start runs the refresh loop until the context is cancelled.
func (pr *PeriodicRefresher) Start(ctx context.Context) error {
	if pr.interval <= 0 {
		return nil
	}

	log.Printf("Starting periodic refresher: interval=%s", pr.interval)
	ticker := time.NewTicker(pr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Periodic refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := pr.catalogService.Load(ctx, service.LoadOptions{Origin: "periodic"}); err != nil {
				log.Printf("Periodic refresh failed: %v", err)
			}
		}
	}
}
