// Package pricesync refreshes asset prices from their external sources.
//
// Every sync appends an AssetPrice observation, successful or not: a failed
// fetch records a zero price so the sync history shows the gap instead of
// silently reusing a stale value.
package pricesync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/interfaces"
	"github.com/tranvn/folio/internal/models"
)

// Clients holds one price source per asset kind.
type Clients struct {
	Fund   interfaces.PriceClient
	Stock  interfaces.PriceClient
	Gold   interfaces.PriceClient
	Crypto interfaces.PriceClient
}

// Service implements interfaces.PriceSyncService.
type Service struct {
	storage interfaces.StorageManager
	clients Clients
	logger  *common.Logger
}

// NewService creates a price sync service.
func NewService(storage interfaces.StorageManager, clients Clients, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		clients: clients,
		logger:  logger,
	}
}

// SyncAll syncs every asset of every user and returns the number of assets
// processed. Per-asset failures are recorded and do not abort the run.
func (s *Service) SyncAll(ctx context.Context) (int, error) {
	start := time.Now()

	users, err := s.storage.UserStore().ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	synced := 0
	for _, user := range users {
		assets, err := s.storage.AssetStore().ListAssets(ctx, user.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to list assets for sync")
			continue
		}
		for _, asset := range assets {
			if err := s.SyncAsset(ctx, asset); err != nil {
				s.logger.Warn().Err(err).Str("asset", asset.Name).Msg("Asset sync failed")
				continue
			}
			synced++
		}
	}

	s.logger.Info().
		Int("synced", synced).
		Dur("elapsed", time.Since(start)).
		Msg("Price sync run complete")

	return synced, nil
}

// SyncAsset fetches the current price for one asset and records the
// observation. A fetch failure records a zero price and is not an error;
// only storage failures and unknown asset kinds are.
func (s *Service) SyncAsset(ctx context.Context, asset *models.Asset) error {
	client, err := s.clientFor(asset.Kind)
	if err != nil {
		return err
	}

	symbol := models.NormalizeAssetName(asset.Name)
	price, err := client.FetchPrice(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("asset", asset.Name).
			Str("kind", string(asset.Kind)).
			Msg("Price fetch failed, recording zero price")
		price = 0
	}

	observation := &models.AssetPrice{
		ID:       uuid.NewString(),
		AssetID:  asset.ID,
		Price:    price,
		SyncedAt: time.Now().UTC(),
	}
	if err := s.storage.PriceStore().SavePrice(ctx, observation); err != nil {
		return fmt.Errorf("failed to save price for asset %s: %w", asset.ID, err)
	}

	asset.CurrentPrice = price
	if err := s.storage.AssetStore().SaveAsset(ctx, asset); err != nil {
		return fmt.Errorf("failed to update asset %s: %w", asset.ID, err)
	}

	s.logger.Debug().
		Str("asset", asset.Name).
		Float64("price", price).
		Msg("Asset price synced")

	return nil
}

func (s *Service) clientFor(kind models.AssetKind) (interfaces.PriceClient, error) {
	var client interfaces.PriceClient
	switch kind {
	case models.AssetKindFund:
		client = s.clients.Fund
	case models.AssetKindStock:
		client = s.clients.Stock
	case models.AssetKindGold:
		client = s.clients.Gold
	case models.AssetKindCrypto:
		client = s.clients.Crypto
	default:
		return nil, fmt.Errorf("unknown asset kind %q", kind)
	}
	if client == nil {
		return nil, fmt.Errorf("no price client configured for kind %q", kind)
	}
	return client, nil
}

var _ interfaces.PriceSyncService = (*Service)(nil)
