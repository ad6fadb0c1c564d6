// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/tranvn/folio/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	UserStore() UserStore
	CategoryStore() CategoryStore
	AssetStore() AssetStore
	TransactionStore() TransactionStore
	PriceStore() PriceStore
	LabelStore() LabelStore

	Close() error
}

// UserStore manages user accounts.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// CategoryStore manages asset categories.
type CategoryStore interface {
	GetCategory(ctx context.Context, categoryID string) (*models.Category, error)
	SaveCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
	ListCategories(ctx context.Context, userID string) ([]*models.Category, error)
}

// AssetStore manages assets.
type AssetStore interface {
	GetAsset(ctx context.Context, assetID string) (*models.Asset, error)
	SaveAsset(ctx context.Context, asset *models.Asset) error
	DeleteAsset(ctx context.Context, assetID string) error
	ListAssets(ctx context.Context, userID string) ([]*models.Asset, error)
	ListAssetsByCategory(ctx context.Context, userID, categoryID string) ([]*models.Asset, error)
}

// TransactionStore manages investment transactions.
type TransactionStore interface {
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error
	// ListTransactions returns all of a user's transactions ordered by trade
	// date descending. The analytics engine applies its own chronological
	// ordering.
	ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error)
	ListTransactionsByAsset(ctx context.Context, userID, assetID string) ([]*models.Transaction, error)
}

// PriceStore manages synced asset price observations.
type PriceStore interface {
	SavePrice(ctx context.Context, price *models.AssetPrice) error
	// LatestPrice returns the most recent observation by synced_at, or an
	// error when the asset has never synced.
	LatestPrice(ctx context.Context, assetID string) (*models.AssetPrice, error)
	ListPrices(ctx context.Context, assetID string, limit int) ([]*models.AssetPrice, error)
}

// LabelStore manages user-defined labels.
type LabelStore interface {
	GetLabel(ctx context.Context, labelID string) (*models.Label, error)
	SaveLabel(ctx context.Context, label *models.Label) error
	DeleteLabel(ctx context.Context, labelID string) error
	ListLabels(ctx context.Context, userID string) ([]*models.Label, error)
}
