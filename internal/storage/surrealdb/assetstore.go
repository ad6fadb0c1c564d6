package surrealdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/models"
)

type AssetStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewAssetStore(db *surrealdb.DB, logger *common.Logger) *AssetStore {
	return &AssetStore{
		db:     db,
		logger: logger,
	}
}

func (s *AssetStore) GetAsset(ctx context.Context, assetID string) (*models.Asset, error) {
	asset, err := surrealdb.Select[models.Asset](ctx, s.db, surrealmodels.NewRecordID("asset", assetID))
	if err != nil {
		return nil, fmt.Errorf("failed to select asset: %w", err)
	}
	if asset == nil {
		return nil, errors.New("asset not found")
	}
	return asset, nil
}

func (s *AssetStore) SaveAsset(ctx context.Context, asset *models.Asset) error {
	sql := "UPSERT type::record('asset', $id) CONTENT $asset"
	vars := map[string]any{"id": asset.ID, "asset": asset}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Asset](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save asset after retries: %w", err)
		}
	}
	return nil
}

func (s *AssetStore) DeleteAsset(ctx context.Context, assetID string) error {
	_, err := surrealdb.Delete[models.Asset](ctx, s.db, surrealmodels.NewRecordID("asset", assetID))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

func (s *AssetStore) ListAssets(ctx context.Context, userID string) ([]*models.Asset, error) {
	sql := "SELECT * FROM asset WHERE user_id = $user_id ORDER BY name ASC"
	vars := map[string]any{"user_id": userID}
	return s.queryAssets(ctx, sql, vars)
}

func (s *AssetStore) ListAssetsByCategory(ctx context.Context, userID, categoryID string) ([]*models.Asset, error) {
	sql := "SELECT * FROM asset WHERE user_id = $user_id AND category_id = $category_id ORDER BY name ASC"
	vars := map[string]any{"user_id": userID, "category_id": categoryID}
	return s.queryAssets(ctx, sql, vars)
}

func (s *AssetStore) queryAssets(ctx context.Context, sql string, vars map[string]any) ([]*models.Asset, error) {
	results, err := surrealdb.Query[[]models.Asset](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Asset
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
