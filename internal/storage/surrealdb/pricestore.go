package surrealdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/models"
)

// PriceStore persists synced price observations. Every sync appends a new
// record so price history survives later syncs.
type PriceStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPriceStore(db *surrealdb.DB, logger *common.Logger) *PriceStore {
	return &PriceStore{
		db:     db,
		logger: logger,
	}
}

func (s *PriceStore) SavePrice(ctx context.Context, price *models.AssetPrice) error {
	sql := "UPSERT type::record('asset_price', $id) CONTENT $price"
	vars := map[string]any{"id": price.ID, "price": price}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.AssetPrice](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save price after retries: %w", err)
		}
	}
	return nil
}

func (s *PriceStore) LatestPrice(ctx context.Context, assetID string) (*models.AssetPrice, error) {
	sql := "SELECT * FROM asset_price WHERE asset_id = $asset_id ORDER BY synced_at DESC LIMIT 1"
	vars := map[string]any{"asset_id": assetID}

	results, err := surrealdb.Query[[]models.AssetPrice](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest price: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, errors.New("no price synced for asset")
}

func (s *PriceStore) ListPrices(ctx context.Context, assetID string, limit int) ([]*models.AssetPrice, error) {
	sql := "SELECT * FROM asset_price WHERE asset_id = $asset_id ORDER BY synced_at DESC"
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	vars := map[string]any{"asset_id": assetID}

	results, err := surrealdb.Query[[]models.AssetPrice](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.AssetPrice
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
