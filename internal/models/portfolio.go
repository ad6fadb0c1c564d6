// Package models defines data structures for Folio
package models

import (
	"strings"
	"time"
)

// AssetKind identifies which price source an asset syncs from.
// It has no bearing on profit math: the analytics engine treats
// every asset as a flat record with a current price.
type AssetKind string

const (
	AssetKindFund   AssetKind = "fund"
	AssetKindStock  AssetKind = "stock"
	AssetKindGold   AssetKind = "gold"
	AssetKindCrypto AssetKind = "crypto"
)

// ValidAssetKind reports whether k is a known asset kind.
func ValidAssetKind(k AssetKind) bool {
	switch k {
	case AssetKindFund, AssetKindStock, AssetKindGold, AssetKindCrypto:
		return true
	}
	return false
}

// Category groups assets for reporting (e.g. "Stocks", "Gold", "Crypto").
type Category struct {
	ID        string    `json:"category_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Asset is a holdable instrument. CurrentPrice is the latest synced market
// price. It is populated from the newest AssetPrice before analytics run,
// never derived from transactions.
type Asset struct {
	ID           string    `json:"asset_id"`
	UserID       string    `json:"user_id"`
	CategoryID   string    `json:"category_id"`
	Name         string    `json:"name"`
	Kind         AssetKind `json:"kind"`
	CurrentPrice float64   `json:"current_price"`
	CreatedAt    time.Time `json:"created_at"`
}

// AssetPrice is one synced price observation for an asset.
type AssetPrice struct {
	ID       string    `json:"price_id"`
	AssetID  string    `json:"asset_id"`
	Price    float64   `json:"price"`
	SyncedAt time.Time `json:"synced_at"`
}

// TransactionKind is the direction of an investment transaction.
type TransactionKind string

const (
	TransactionBuy  TransactionKind = "buy"
	TransactionSell TransactionKind = "sell"
)

// ValidTransactionKind reports whether k is "buy" or "sell".
func ValidTransactionKind(k TransactionKind) bool {
	return k == TransactionBuy || k == TransactionSell
}

// Transaction is a single buy or sell of an asset.
//
// Date is the user-supplied trade date and is display-only. CreatedAt is the
// record creation instant and is what the weighted-average-cost replay orders
// by, so back-dating an entry does not rewrite already-realized history.
type Transaction struct {
	ID        string          `json:"transaction_id"`
	UserID    string          `json:"user_id"`
	AssetID   string          `json:"asset_id"`
	Kind      TransactionKind `json:"kind"`
	Quantity  float64         `json:"quantity"`
	NAV       float64         `json:"nav"`
	Fee       float64         `json:"fee"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// Label is a user-defined tag that can be attached to assets.
type Label struct {
	ID        string    `json:"label_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	AssetIDs  []string  `json:"asset_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeAssetName trims and upcases an asset symbol for price lookups.
func NormalizeAssetName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
