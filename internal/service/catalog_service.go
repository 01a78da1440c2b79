package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/cache"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/pricing"
	"storefront-service/internal/source"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSnapshot means no catalog load has succeeded yet.
var ErrNoSnapshot = errors.New("catalog snapshot not loaded")

// ErrProductNotFound is returned when a sku is not in the current snapshot.
var ErrProductNotFound = errors.New("product not found")

// CatalogService owns the catalog lifecycle: loading the three JSON
// sources, resolving pricing, publishing snapshots, and answering
// queries over the current snapshot.
type CatalogService struct {
	store     *store.Store
	sources   *source.Client
	cache     *cache.Cache           // nil disables the source fallback cache
	publisher *broker.EventPublisher // nil disables event publishing
	engine    *pricing.Engine
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service. cache and publisher
// may be nil; the corresponding behaviors are then skipped.
func NewCatalogService(
	st *store.Store,
	sources *source.Client,
	sourceCache *cache.Cache,
	publisher *broker.EventPublisher,
	engine *pricing.Engine,
) *CatalogService {
	return &CatalogService{
		store:     st,
		sources:   sources,
		cache:     sourceCache,
		publisher: publisher,
		engine:    engine,
		logger:    util.GetLogger(),
	}
}

// LoadOptions tunes a single load operation.
type LoadOptions struct {
	// BypassCache defeats any HTTP cache between us and the sources so a
	// manual refresh observes a genuinely fresh response.
	BypassCache bool
	// Origin labels the trigger for logs and events ("startup",
	// "manual", "periodic", "event").
	Origin string
}

// Load fetches all three sources, validates and prices the catalog, and
// atomically installs the new snapshot. The load is all-or-nothing: on
// any failure the prior snapshot stays intact and queryable. When the
// sources are unreachable the last cached copy from Redis is used
// instead, keeping the catalog available offline.
func (s *CatalogService) Load(ctx context.Context, opts LoadOptions) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.Load")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CatalogLoadDuration.Observe(time.Since(start).Seconds())
	}()

	fromCache := false
	payloads, err := s.sources.FetchAll(ctx, opts.BypassCache)
	if err != nil {
		s.logger.Warn("Source fetch failed, trying cache fallback",
			zap.String("origin", opts.Origin), zap.Error(err))

		if s.cache == nil {
			util.CatalogLoadsTotal.WithLabelValues("source_unavailable").Inc()
			return err
		}
		cached, cacheErr := s.cache.LoadSources(ctx)
		if cacheErr != nil {
			util.CatalogLoadsTotal.WithLabelValues("source_unavailable").Inc()
			s.logger.Error("Cache fallback unavailable", zap.Error(cacheErr))
			return err
		}
		payloads = cached
		fromCache = true
		util.CacheFallbacksTotal.Inc()
	}

	snapshot, err := s.buildSnapshot(payloads)
	if err != nil {
		util.CatalogLoadsTotal.WithLabelValues("validation_error").Inc()
		return err
	}

	s.store.Replace(snapshot)

	activeDiscounts := 0
	for i := range snapshot.Priced {
		if snapshot.Priced[i].HasDiscount() {
			activeDiscounts++
		}
	}
	util.SnapshotProducts.Set(float64(len(snapshot.Products)))
	util.SnapshotActiveDiscounts.Set(float64(activeDiscounts))
	if fromCache {
		util.CatalogLoadsTotal.WithLabelValues("cache_fallback").Inc()
	} else {
		util.CatalogLoadsTotal.WithLabelValues("success").Inc()
	}

	s.logger.Info("Catalog snapshot installed",
		zap.String("version", snapshot.Version),
		zap.String("origin", opts.Origin),
		zap.Int("products", len(snapshot.Products)),
		zap.Int("active_discounts", activeDiscounts),
		zap.Bool("from_cache", fromCache))

	if !fromCache && s.cache != nil {
		if err := s.cache.StoreSources(ctx, payloads); err != nil {
			s.logger.Error("Failed to cache source payloads", zap.Error(err))
		}
	}

	if s.publisher != nil {
		event := &models.CatalogRefreshedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCatalogRefreshed,
				Timestamp: time.Now(),
			},
			SnapshotVersion: snapshot.Version,
			ProductCount:    len(snapshot.Products),
			ActiveDiscounts: activeDiscounts,
			FromCache:       fromCache,
		}
		if err := s.publisher.PublishCatalogRefreshed(ctx, event); err != nil {
			s.logger.Error("Failed to publish CatalogRefreshed event", zap.Error(err))
		}
	}

	return nil
}

// buildSnapshot parses, validates, and prices the raw payloads. Pricing
// runs against the wall clock at build time.
func (s *CatalogService) buildSnapshot(payloads *source.Payloads) (*models.Snapshot, error) {
	products, err := source.ParseProducts(payloads.Items)
	if err != nil {
		return nil, err
	}
	discounts, err := source.ParseDiscounts(payloads.Discounts)
	if err != nil {
		return nil, err
	}
	settings, err := source.ParseSettings(payloads.Settings)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &models.Snapshot{
		Version:   uuid.New().String(),
		LoadedAt:  now,
		Products:  products,
		Discounts: discounts,
		Priced:    s.engine.Apply(products, discounts, now),
		Settings:  settings,
	}, nil
}

// RequestRefresh triggers a catalog reload. With a broker configured the
// request is published as an event and picked up by the refresh worker;
// otherwise the load runs inline.
func (s *CatalogService) RequestRefresh(ctx context.Context, reason string, bypassCache bool) error {
	util.RefreshRequestsTotal.WithLabelValues(reason).Inc()

	if s.publisher == nil {
		return s.Load(ctx, LoadOptions{BypassCache: bypassCache, Origin: "manual"})
	}

	event := &models.RefreshRequestedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeRefreshRequested,
			Timestamp: time.Now(),
		},
		Reason:      reason,
		BypassCache: bypassCache,
	}
	if err := s.publisher.PublishRefreshRequested(ctx, event); err != nil {
		return fmt.Errorf("failed to publish refresh request: %w", err)
	}
	return nil
}

// Query runs the query pipeline against the current snapshot.
func (s *CatalogService) Query(ctx context.Context, params models.QueryParams) (*models.QueryResult, *models.Snapshot, error) {
	_, span := util.StartSpan(ctx, "CatalogService.Query")
	defer span.End()

	snapshot := s.store.Current()
	if snapshot == nil {
		return nil, nil, ErrNoSnapshot
	}

	start := time.Now()
	result := catalog.Query(snapshot.Priced, params)
	util.QueryDuration.Observe(time.Since(start).Seconds())
	util.QueriesTotal.WithLabelValues(string(params.SortMode)).Inc()

	return &result, snapshot, nil
}

// GetProduct returns the priced product for an exact sku match.
func (s *CatalogService) GetProduct(ctx context.Context, sku string) (*models.PricedProduct, *models.Snapshot, error) {
	snapshot := s.store.Current()
	if snapshot == nil {
		return nil, nil, ErrNoSnapshot
	}
	for i := range snapshot.Priced {
		if snapshot.Priced[i].SKU == sku {
			return &snapshot.Priced[i], snapshot, nil
		}
	}
	return nil, nil, ErrProductNotFound
}

// Categories returns the derived category codes of the current snapshot.
func (s *CatalogService) Categories(ctx context.Context) ([]string, *models.Snapshot, error) {
	snapshot := s.store.Current()
	if snapshot == nil {
		return nil, nil, ErrNoSnapshot
	}
	return catalog.DeriveCategories(snapshot.Priced), snapshot, nil
}

// Ready reports whether the catalog can serve queries.
func (s *CatalogService) Ready() bool {
	return s.store.Ready()
}
