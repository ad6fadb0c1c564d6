package app

import (
	"context"
	"time"

	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/interfaces"
)

// startPriceScheduler syncs every stored asset's price on a fixed interval.
func startPriceScheduler(ctx context.Context, syncService interfaces.PriceSyncService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Price scheduler: stopped")
			return
		case <-ticker.C:
			refreshPrices(ctx, syncService, logger)
		}
	}
}

func refreshPrices(ctx context.Context, syncService interfaces.PriceSyncService, logger *common.Logger) {
	start := time.Now()

	synced, err := syncService.SyncAll(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Price refresh: sync failed")
		return
	}

	logger.Info().
		Int("assets", synced).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh: complete")
}
