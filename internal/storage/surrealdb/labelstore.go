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

type LabelStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewLabelStore(db *surrealdb.DB, logger *common.Logger) *LabelStore {
	return &LabelStore{
		db:     db,
		logger: logger,
	}
}

func (s *LabelStore) GetLabel(ctx context.Context, labelID string) (*models.Label, error) {
	label, err := surrealdb.Select[models.Label](ctx, s.db, surrealmodels.NewRecordID("label", labelID))
	if err != nil {
		return nil, fmt.Errorf("failed to select label: %w", err)
	}
	if label == nil {
		return nil, errors.New("label not found")
	}
	return label, nil
}

func (s *LabelStore) SaveLabel(ctx context.Context, label *models.Label) error {
	sql := "UPSERT type::record('label', $id) CONTENT $label"
	vars := map[string]any{"id": label.ID, "label": label}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Label](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save label after retries: %w", err)
		}
	}
	return nil
}

func (s *LabelStore) DeleteLabel(ctx context.Context, labelID string) error {
	_, err := surrealdb.Delete[models.Label](ctx, s.db, surrealmodels.NewRecordID("label", labelID))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

func (s *LabelStore) ListLabels(ctx context.Context, userID string) ([]*models.Label, error) {
	sql := "SELECT * FROM label WHERE user_id = $user_id ORDER BY name ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.Label](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Label
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
