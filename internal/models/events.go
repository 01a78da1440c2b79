package models

import "time"

// Event types
const (
	EventTypeRefreshRequested = "CATALOG_REFRESH_REQUESTED"
	EventTypeCatalogRefreshed = "CATALOG_REFRESHED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// RefreshRequestedEvent asks the refresh worker to reload the catalog
// sources. BypassCache forces a cache-defeating fetch.
type RefreshRequestedEvent struct {
	BaseEvent
	Reason      string `json:"reason"`
	BypassCache bool   `json:"bypass_cache"`
}

// CatalogRefreshedEvent is published after a snapshot has been built and
// installed.
type CatalogRefreshedEvent struct {
	BaseEvent
	SnapshotVersion string `json:"snapshot_version"`
	ProductCount    int    `json:"product_count"`
	ActiveDiscounts int    `json:"active_discounts"`
	FromCache       bool   `json:"from_cache"`
}
