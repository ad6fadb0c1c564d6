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

type CategoryStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewCategoryStore(db *surrealdb.DB, logger *common.Logger) *CategoryStore {
	return &CategoryStore{
		db:     db,
		logger: logger,
	}
}

func (s *CategoryStore) GetCategory(ctx context.Context, categoryID string) (*models.Category, error) {
	category, err := surrealdb.Select[models.Category](ctx, s.db, surrealmodels.NewRecordID("category", categoryID))
	if err != nil {
		return nil, fmt.Errorf("failed to select category: %w", err)
	}
	if category == nil {
		return nil, errors.New("category not found")
	}
	return category, nil
}

func (s *CategoryStore) SaveCategory(ctx context.Context, category *models.Category) error {
	sql := "UPSERT type::record('category', $id) CONTENT $category"
	vars := map[string]any{"id": category.ID, "category": category}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Category](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save category after retries: %w", err)
		}
	}
	return nil
}

func (s *CategoryStore) DeleteCategory(ctx context.Context, categoryID string) error {
	_, err := surrealdb.Delete[models.Category](ctx, s.db, surrealmodels.NewRecordID("category", categoryID))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *CategoryStore) ListCategories(ctx context.Context, userID string) ([]*models.Category, error) {
	sql := "SELECT * FROM category WHERE user_id = $user_id ORDER BY created_at ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.Category](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Category
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
