package collector

import (
	"context"

	"sovlens/internal/domain/sov"
)

// Collector fetches platform items for one keyword. Implementations are
// thin API clients; the scoring core never performs I/O itself.
type Collector interface {
	// Name identifies the collector for logs and run metadata.
	Name() string

	// Platform is the platform every item from this collector carries.
	Platform() sov.Platform

	// Collect returns up to max items for the keyword, ranked 1-based in
	// result order.
	Collect(ctx context.Context, keyword string, max int) ([]sov.PlatformItem, error)
}
