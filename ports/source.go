package ports

import (
	"context"

	"orderboard/domain/core"
	"orderboard/domain/order"
)

// SourceFetcher retrieves the raw order table.
// Implementations wrap failures in core source sentinels.
type SourceFetcher interface {
	Fetch(ctx context.Context) (*order.RawTable, error)
	SourceID() core.SourceID
}
