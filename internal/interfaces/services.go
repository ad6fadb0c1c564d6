package interfaces

import (
	"context"

	"github.com/tranvn/folio/internal/models"
)

// AnalyticsService computes weighted-average-cost profit analytics over a
// user's transactions.
type AnalyticsService interface {
	// CalculateProfit returns the aggregate view: per-category snapshots with
	// nested asset snapshots, plus chart-ready portfolio totals.
	CalculateProfit(ctx context.Context, userID string) (*models.ProfitSummary, error)

	// CalculateProfitDetail returns the per-transaction view grouped by
	// category and asset, in the same chronological order the engine replays.
	CalculateProfitDetail(ctx context.Context, userID string) (*models.ProfitDetail, error)

	// RenderAllocationChart renders the category allocation donut as PNG bytes.
	RenderAllocationChart(ctx context.Context, userID string) ([]byte, error)
}

// PriceSyncService refreshes asset prices from their external sources.
type PriceSyncService interface {
	// SyncAll syncs every stored asset and returns the number synced.
	// Individual fetch failures record a zero price and do not abort the run.
	SyncAll(ctx context.Context) (int, error)

	// SyncAsset syncs a single asset.
	SyncAsset(ctx context.Context, asset *models.Asset) error
}

// InsightService generates AI commentary over computed analytics.
type InsightService interface {
	GenerateInsight(ctx context.Context, userID string) (string, error)
}
