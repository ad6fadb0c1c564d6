// Package analytics computes weighted-average-cost profit analytics.
//
// The engine replays each asset's transactions chronologically, maintaining
// the held quantity and the cost attached to it. Buys raise both; sells
// realize profit against the weighted average cost as of that sale and can
// never rewrite history or drive the position negative. The same replay
// produces both the aggregate summary and the per-transaction detail rows.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/interfaces"
	"github.com/tranvn/folio/internal/models"
)

// Compile-time interface check
var _ interfaces.AnalyticsService = (*Service)(nil)

// Service implements AnalyticsService on top of the pure engine functions.
// It joins a user's transactions with their assets, categories, and latest
// synced prices, then hands the materialized set to the engine.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new analytics service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// CalculateProfit returns the aggregate summary view for a user.
func (s *Service) CalculateProfit(ctx context.Context, userID string) (*models.ProfitSummary, error) {
	start := time.Now()

	txs, assets, categories, err := s.loadInputs(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary, err := ComputeSummary(txs, assets, categories)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("transactions", len(txs)).
		Int("assets", len(assets)).
		Dur("elapsed", time.Since(start)).
		Msg("Profit summary computed")

	return summary, nil
}

// CalculateProfitDetail returns the per-transaction detail view for a user.
func (s *Service) CalculateProfitDetail(ctx context.Context, userID string) (*models.ProfitDetail, error) {
	txs, assets, categories, err := s.loadInputs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ComputeDetail(txs, assets, categories)
}

// RenderAllocationChart computes the summary and renders its chart data.
func (s *Service) RenderAllocationChart(ctx context.Context, userID string) ([]byte, error) {
	summary, err := s.CalculateProfit(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RenderAllocationChart(summary.ChartData)
}

// loadInputs materializes the engine's input: the user's transactions plus
// asset and category context, with each asset's CurrentPrice set from the
// newest synced observation. Assets that have never synced compute at price 0.
func (s *Service) loadInputs(ctx context.Context, userID string) ([]*models.Transaction, map[string]*models.Asset, map[string]*models.Category, error) {
	txs, err := s.storage.TransactionStore().ListTransactions(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	assetList, err := s.storage.AssetStore().ListAssets(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list assets: %w", err)
	}

	categoryList, err := s.storage.CategoryStore().ListCategories(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list categories: %w", err)
	}

	assets := make(map[string]*models.Asset, len(assetList))
	for _, a := range assetList {
		if price, err := s.storage.PriceStore().LatestPrice(ctx, a.ID); err == nil {
			a.CurrentPrice = price.Price
		} else {
			a.CurrentPrice = 0
		}
		assets[a.ID] = a
	}

	categories := make(map[string]*models.Category, len(categoryList))
	for _, c := range categoryList {
		categories[c.ID] = c
	}

	return txs, assets, categories, nil
}
