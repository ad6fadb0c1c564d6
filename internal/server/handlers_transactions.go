package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tranvn/folio/internal/models"
)

// handleTransactions handles GET (list, optional ?asset_id filter) and POST on /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleTransactionList(w, r)
	case http.MethodPost:
		s.handleTransactionCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeTransactions dispatches GET/PUT/DELETE for /api/transactions/{id}.
func (s *Server) routeTransactions(w http.ResponseWriter, r *http.Request) {
	transactionID := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if transactionID == "" {
		s.handleTransactions(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleTransactionGet(w, r, transactionID)
	case http.MethodPut:
		s.handleTransactionUpdate(w, r, transactionID)
	case http.MethodDelete:
		s.handleTransactionDelete(w, r, transactionID)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// validateTransactionFields checks kind and the non-negative numeric fields.
func validateTransactionFields(kind models.TransactionKind, quantity, nav, fee float64) string {
	if !models.ValidTransactionKind(kind) {
		return "kind must be buy or sell"
	}
	if quantity < 0 {
		return "quantity must not be negative"
	}
	if nav < 0 {
		return "nav must not be negative"
	}
	if fee < 0 {
		return "fee must not be negative"
	}
	return ""
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var (
		txs []*models.Transaction
		err error
	)
	if assetID := r.URL.Query().Get("asset_id"); assetID != "" {
		txs, err = s.app.Storage.TransactionStore().ListTransactionsByAsset(r.Context(), userID, assetID)
	} else {
		txs, err = s.app.Storage.TransactionStore().ListTransactions(r.Context(), userID)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		WriteError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   txs,
	})
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req struct {
		AssetID  string    `json:"asset_id"`
		Kind     string    `json:"kind"`
		Quantity float64   `json:"quantity"`
		NAV      float64   `json:"nav"`
		Fee      float64   `json:"fee"`
		Date     time.Time `json:"date"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	kind := models.TransactionKind(req.Kind)
	if errMsg := validateTransactionFields(kind, req.Quantity, req.NAV, req.Fee); errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	ctx := r.Context()

	// The asset must exist and belong to the caller
	asset, err := s.app.Storage.AssetStore().GetAsset(ctx, req.AssetID)
	if err != nil || asset.UserID != userID {
		WriteError(w, http.StatusBadRequest, "asset not found")
		return
	}

	now := time.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}

	tx := &models.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		AssetID:   req.AssetID,
		Kind:      kind,
		Quantity:  req.Quantity,
		NAV:       req.NAV,
		Fee:       req.Fee,
		Date:      date,
		CreatedAt: now,
	}

	if err := s.app.Storage.TransactionStore().SaveTransaction(ctx, tx); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save transaction")
		WriteError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "ok",
		"data":   tx,
	})
}

func (s *Server) handleTransactionGet(w http.ResponseWriter, r *http.Request, transactionID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	tx, err := s.app.Storage.TransactionStore().GetTransaction(r.Context(), transactionID)
	if err != nil || tx.UserID != userID {
		WriteError(w, http.StatusNotFound, "transaction not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   tx,
	})
}

// handleTransactionUpdate handles PUT /api/transactions/{id}. CreatedAt is
// immutable so an edit keeps its place in the replay order.
func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request, transactionID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req struct {
		Kind     *string    `json:"kind"`
		Quantity *float64   `json:"quantity"`
		NAV      *float64   `json:"nav"`
		Fee      *float64   `json:"fee"`
		Date     *time.Time `json:"date"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.TransactionStore()

	tx, err := store.GetTransaction(ctx, transactionID)
	if err != nil || tx.UserID != userID {
		WriteError(w, http.StatusNotFound, "transaction not found")
		return
	}

	if req.Kind != nil {
		tx.Kind = models.TransactionKind(*req.Kind)
	}
	if req.Quantity != nil {
		tx.Quantity = *req.Quantity
	}
	if req.NAV != nil {
		tx.NAV = *req.NAV
	}
	if req.Fee != nil {
		tx.Fee = *req.Fee
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}

	if errMsg := validateTransactionFields(tx.Kind, tx.Quantity, tx.NAV, tx.Fee); errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	if err := store.SaveTransaction(ctx, tx); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to save transaction")
		WriteError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   tx,
	})
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request, transactionID string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.TransactionStore()

	tx, err := store.GetTransaction(ctx, transactionID)
	if err != nil || tx.UserID != userID {
		WriteError(w, http.StatusNotFound, "transaction not found")
		return
	}

	if err := store.DeleteTransaction(ctx, transactionID); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to delete transaction")
		WriteError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
