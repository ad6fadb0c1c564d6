package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tranvn/folio/internal/models"
)

// handleAssets handles GET (list, optional ?category_id filter) and POST on /api/assets.
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleAssetList(w, r)
	case http.MethodPost:
		s.handleAssetCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeAssets dispatches /api/assets/{id} and /api/assets/{id}/prices.
func (s *Server) routeAssets(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/assets/")
	if path == "" {
		s.handleAssets(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	assetID := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		switch r.Method {
		case http.MethodGet:
			s.handleAssetGet(w, r, assetID)
		case http.MethodDelete:
			s.handleAssetDelete(w, r, assetID)
		default:
			RequireMethod(w, r, http.MethodGet, http.MethodDelete)
		}
	case "prices":
		s.handleAssetPrices(w, r, assetID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleAssetList(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var (
		assets []*models.Asset
		err    error
	)
	if categoryID := r.URL.Query().Get("category_id"); categoryID != "" {
		assets, err = s.app.Storage.AssetStore().ListAssetsByCategory(r.Context(), userID, categoryID)
	} else {
		assets, err = s.app.Storage.AssetStore().ListAssets(r.Context(), userID)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list assets")
		WriteError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   assets,
	})
}

func (s *Server) handleAssetCreate(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req struct {
		CategoryID string `json:"category_id"`
		Name       string `json:"name"`
		Kind       string `json:"kind"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	kind := models.AssetKind(req.Kind)
	if !models.ValidAssetKind(kind) {
		WriteError(w, http.StatusBadRequest, "kind must be one of: fund, stock, gold, crypto")
		return
	}

	ctx := r.Context()

	// The category must exist and belong to the caller
	category, err := s.app.Storage.CategoryStore().GetCategory(ctx, req.CategoryID)
	if err != nil || category.UserID != userID {
		WriteError(w, http.StatusBadRequest, "category not found")
		return
	}

	asset := &models.Asset{
		ID:         uuid.NewString(),
		UserID:     userID,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Kind:       kind,
		CreatedAt:  time.Now(),
	}

	if err := s.app.Storage.AssetStore().SaveAsset(ctx, asset); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save asset")
		WriteError(w, http.StatusInternalServerError, "failed to save asset")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "ok",
		"data":   asset,
	})
}

func (s *Server) handleAssetGet(w http.ResponseWriter, r *http.Request, assetID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	asset, err := s.app.Storage.AssetStore().GetAsset(r.Context(), assetID)
	if err != nil || asset.UserID != userID {
		WriteError(w, http.StatusNotFound, "asset not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   asset,
	})
}

func (s *Server) handleAssetDelete(w http.ResponseWriter, r *http.Request, assetID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.AssetStore()

	asset, err := store.GetAsset(ctx, assetID)
	if err != nil || asset.UserID != userID {
		WriteError(w, http.StatusNotFound, "asset not found")
		return
	}

	// An asset with transactions cannot be removed
	txs, err := s.app.Storage.TransactionStore().ListTransactionsByAsset(ctx, userID, assetID)
	if err != nil {
		s.logger.Error().Err(err).Str("asset_id", assetID).Msg("Failed to check asset transactions")
		WriteError(w, http.StatusInternalServerError, "failed to delete asset")
		return
	}
	if len(txs) > 0 {
		WriteError(w, http.StatusConflict, "asset still has transactions")
		return
	}

	if err := store.DeleteAsset(ctx, assetID); err != nil {
		s.logger.Error().Err(err).Str("asset_id", assetID).Msg("Failed to delete asset")
		WriteError(w, http.StatusInternalServerError, "failed to delete asset")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}

// handleAssetPrices handles GET /api/assets/{id}/prices with an optional ?limit.
func (s *Server) handleAssetPrices(w http.ResponseWriter, r *http.Request, assetID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	ctx := r.Context()

	asset, err := s.app.Storage.AssetStore().GetAsset(ctx, assetID)
	if err != nil || asset.UserID != userID {
		WriteError(w, http.StatusNotFound, "asset not found")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := parseInt(l); err == nil && v > 0 {
			limit = v
		}
	}

	prices, err := s.app.Storage.PriceStore().ListPrices(ctx, assetID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("asset_id", assetID).Msg("Failed to list prices")
		WriteError(w, http.StatusInternalServerError, "failed to list prices")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   prices,
	})
}
