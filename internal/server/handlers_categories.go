package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tranvn/folio/internal/models"
)

// handleCategories handles GET (list) and POST (create) on /api/categories.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleCategoryList(w, r)
	case http.MethodPost:
		s.handleCategoryCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeCategories dispatches GET/DELETE for /api/categories/{id}.
func (s *Server) routeCategories(w http.ResponseWriter, r *http.Request) {
	categoryID := strings.TrimPrefix(r.URL.Path, "/api/categories/")
	if categoryID == "" {
		s.handleCategories(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleCategoryGet(w, r, categoryID)
	case http.MethodDelete:
		s.handleCategoryDelete(w, r, categoryID)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	categories, err := s.app.Storage.CategoryStore().ListCategories(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list categories")
		WriteError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   categories,
	})
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := &models.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	if err := s.app.Storage.CategoryStore().SaveCategory(r.Context(), category); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save category")
		WriteError(w, http.StatusInternalServerError, "failed to save category")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "ok",
		"data":   category,
	})
}

func (s *Server) handleCategoryGet(w http.ResponseWriter, r *http.Request, categoryID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	category, err := s.app.Storage.CategoryStore().GetCategory(r.Context(), categoryID)
	if err != nil || category.UserID != userID {
		WriteError(w, http.StatusNotFound, "category not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   category,
	})
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request, categoryID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.CategoryStore()

	category, err := store.GetCategory(ctx, categoryID)
	if err != nil || category.UserID != userID {
		WriteError(w, http.StatusNotFound, "category not found")
		return
	}

	// A category holding assets cannot be removed
	assets, err := s.app.Storage.AssetStore().ListAssetsByCategory(ctx, userID, categoryID)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", categoryID).Msg("Failed to check category assets")
		WriteError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	if len(assets) > 0 {
		WriteError(w, http.StatusConflict, "category still has assets")
		return
	}

	if err := store.DeleteCategory(ctx, categoryID); err != nil {
		s.logger.Error().Err(err).Str("category_id", categoryID).Msg("Failed to delete category")
		WriteError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
