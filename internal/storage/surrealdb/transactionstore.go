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

// TransactionStore persists investment transactions in the
// investment_transaction table.
type TransactionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewTransactionStore(db *surrealdb.DB, logger *common.Logger) *TransactionStore {
	return &TransactionStore{
		db:     db,
		logger: logger,
	}
}

func (s *TransactionStore) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	tx, err := surrealdb.Select[models.Transaction](ctx, s.db, surrealmodels.NewRecordID("investment_transaction", transactionID))
	if err != nil {
		return nil, fmt.Errorf("failed to select transaction: %w", err)
	}
	if tx == nil {
		return nil, errors.New("transaction not found")
	}
	return tx, nil
}

func (s *TransactionStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	sql := "UPSERT type::record('investment_transaction', $id) CONTENT $tx"
	vars := map[string]any{"id": tx.ID, "tx": tx}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save transaction after retries: %w", err)
		}
	}
	return nil
}

func (s *TransactionStore) DeleteTransaction(ctx context.Context, transactionID string) error {
	_, err := surrealdb.Delete[models.Transaction](ctx, s.db, surrealmodels.NewRecordID("investment_transaction", transactionID))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a user's transactions newest trade date first.
func (s *TransactionStore) ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	sql := "SELECT * FROM investment_transaction WHERE user_id = $user_id ORDER BY date DESC, created_at DESC"
	vars := map[string]any{"user_id": userID}
	return s.queryTransactions(ctx, sql, vars)
}

func (s *TransactionStore) ListTransactionsByAsset(ctx context.Context, userID, assetID string) ([]*models.Transaction, error) {
	sql := "SELECT * FROM investment_transaction WHERE user_id = $user_id AND asset_id = $asset_id ORDER BY date DESC, created_at DESC"
	vars := map[string]any{"user_id": userID, "asset_id": assetID}
	return s.queryTransactions(ctx, sql, vars)
}

func (s *TransactionStore) queryTransactions(ctx context.Context, sql string, vars map[string]any) ([]*models.Transaction, error) {
	results, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Transaction
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
