package ports

import (
	"context"
	"time"

	"orderboard/domain/core"
	"orderboard/domain/order"
	"orderboard/internal/cache"
)

// BoardPort is what the presentation layers need from the order board
type BoardPort interface {
	Dataset(ctx context.Context) (*order.Dataset, error)
	Refresh(ctx context.Context) (*order.Dataset, error)
	View(ctx context.Context, f order.Filter) order.View
	Tables() *order.StatusTables
	CacheState() CacheState
}

// CacheState describes the dataset currently held for a source
type CacheState struct {
	SourceID core.SourceID `json:"source_id"`
	Loaded   bool          `json:"loaded"`
	LoadedAt time.Time     `json:"loaded_at,omitempty"`
	Rows     int           `json:"rows"`
	TTL      time.Duration `json:"ttl_ns"`
	Stats    cache.Stats   `json:"stats"`
}

// DatasetListener is notified after every successful load
type DatasetListener interface {
	DatasetLoaded(ds *order.Dataset)
}
