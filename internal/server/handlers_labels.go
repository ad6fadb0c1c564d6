package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tranvn/folio/internal/models"
)

// handleLabels handles GET (list) and POST (create) on /api/labels.
func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleLabelList(w, r)
	case http.MethodPost:
		s.handleLabelCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeLabels dispatches GET/PUT/DELETE for /api/labels/{id}.
func (s *Server) routeLabels(w http.ResponseWriter, r *http.Request) {
	labelID := strings.TrimPrefix(r.URL.Path, "/api/labels/")
	if labelID == "" {
		s.handleLabels(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleLabelGet(w, r, labelID)
	case http.MethodPut:
		s.handleLabelUpdate(w, r, labelID)
	case http.MethodDelete:
		s.handleLabelDelete(w, r, labelID)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// ownedAssetIDs filters candidate asset IDs down to those the user owns.
func (s *Server) ownedAssetIDs(r *http.Request, userID string, candidates []string) []string {
	owned := make([]string, 0, len(candidates))
	for _, id := range candidates {
		asset, err := s.app.Storage.AssetStore().GetAsset(r.Context(), id)
		if err != nil {
			continue
		}
		if asset.UserID == userID {
			owned = append(owned, id)
		}
	}
	return owned
}

func (s *Server) handleLabelList(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	labels, err := s.app.Storage.LabelStore().ListLabels(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list labels")
		WriteError(w, http.StatusInternalServerError, "failed to list labels")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   labels,
	})
}

func (s *Server) handleLabelCreate(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req struct {
		Name     string   `json:"name"`
		AssetIDs []string `json:"asset_ids"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	assetIDs := s.ownedAssetIDs(r, userID, req.AssetIDs)

	label := &models.Label{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		AssetIDs:  assetIDs,
		CreatedAt: time.Now(),
	}

	if err := s.app.Storage.LabelStore().SaveLabel(r.Context(), label); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save label")
		WriteError(w, http.StatusInternalServerError, "failed to save label")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "ok",
		"data":   label,
	})
}

func (s *Server) handleLabelGet(w http.ResponseWriter, r *http.Request, labelID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	label, err := s.app.Storage.LabelStore().GetLabel(r.Context(), labelID)
	if err != nil || label.UserID != userID {
		WriteError(w, http.StatusNotFound, "label not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   label,
	})
}

func (s *Server) handleLabelUpdate(w http.ResponseWriter, r *http.Request, labelID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req struct {
		Name     *string   `json:"name"`
		AssetIDs *[]string `json:"asset_ids"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.LabelStore()

	label, err := store.GetLabel(ctx, labelID)
	if err != nil || label.UserID != userID {
		WriteError(w, http.StatusNotFound, "label not found")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			WriteError(w, http.StatusBadRequest, "name is required")
			return
		}
		label.Name = name
	}
	if req.AssetIDs != nil {
		label.AssetIDs = s.ownedAssetIDs(r, userID, *req.AssetIDs)
	}

	if err := store.SaveLabel(ctx, label); err != nil {
		s.logger.Error().Err(err).Str("label_id", labelID).Msg("Failed to save label")
		WriteError(w, http.StatusInternalServerError, "failed to save label")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   label,
	})
}

func (s *Server) handleLabelDelete(w http.ResponseWriter, r *http.Request, labelID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.LabelStore()

	label, err := store.GetLabel(ctx, labelID)
	if err != nil || label.UserID != userID {
		WriteError(w, http.StatusNotFound, "label not found")
		return
	}

	if err := store.DeleteLabel(ctx, labelID); err != nil {
		s.logger.Error().Err(err).Str("label_id", labelID).Msg("Failed to delete label")
		WriteError(w, http.StatusInternalServerError, "failed to delete label")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
