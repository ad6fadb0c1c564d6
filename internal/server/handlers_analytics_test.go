package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tranvn/folio/internal/models"
)

// seedPortfolio stores a user with one asset, one buy, and a synced price.
func seedPortfolio(t *testing.T, storage *memStorage) *models.User {
	t.Helper()
	user := seedUser(t, storage, "alice@example.com")
	category := seedCategory(t, storage, user.ID, "Stocks")
	asset := seedAsset(t, storage, user.ID, category.ID, "HPG", models.AssetKindStock)

	now := time.Now()
	storage.txs["tx1"] = &models.Transaction{
		ID: "tx1", UserID: user.ID, AssetID: asset.ID,
		Kind: models.TransactionBuy, Quantity: 10, NAV: 100,
		Date: now.Add(-24 * time.Hour), CreatedAt: now.Add(-24 * time.Hour),
	}
	storage.prices = append(storage.prices, &models.AssetPrice{
		ID: "p1", AssetID: asset.ID, Price: 150, SyncedAt: now,
	})
	return user
}

func TestHandleProfit_Success(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedPortfolio(t, storage)

	rec := do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/analytics/profit", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	data := resp["data"].(map[string]interface{})
	chartData := data["chart_data"].(map[string]interface{})
	totals := chartData["portfolio_summary"].(map[string]interface{})
	if totals["total_invested"] != 1000.0 {
		t.Errorf("expected total_invested 1000, got %v", totals["total_invested"])
	}
	if totals["total_current_value"] != 1500.0 {
		t.Errorf("expected total_current_value 1500, got %v", totals["total_current_value"])
	}
	if totals["total_profit"] != 500.0 {
		t.Errorf("expected total_profit 500, got %v", totals["total_profit"])
	}
}

func TestHandleProfitDetail_Success(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedPortfolio(t, storage)

	rec := do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/analytics/profit/detail", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	data := resp["data"].(map[string]interface{})
	detailed := data["detailed_data"].(map[string]interface{})
	stocks, ok := detailed["Stocks"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected detail rows under 'Stocks', got %v", detailed)
	}
	rows := stocks["HPG"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for HPG, got %d", len(rows))
	}
}

func TestHandleProfit_OversellReturns422(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedPortfolio(t, storage)

	// A sell bigger than the position makes the data unprocessable
	now := time.Now()
	storage.txs["tx2"] = &models.Transaction{
		ID: "tx2", UserID: user.ID, AssetID: storage.txs["tx1"].AssetID,
		Kind: models.TransactionSell, Quantity: 999, NAV: 100,
		Date: now, CreatedAt: now,
	}

	rec := do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/analytics/profit", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for oversold position, got %d: %s", rec.Code, rec.Body.String())
	}

	var errResp ErrorResponse
	decodeInto(t, rec, &errResp)
	if errResp.Code != "oversell" {
		t.Errorf("expected error code 'oversell', got %q", errResp.Code)
	}
}

func TestHandleAllocationChart_ReturnsPNG(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedPortfolio(t, storage)

	rec := do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/analytics/chart", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected Content-Type image/png, got %q", ct)
	}
	body := rec.Body.Bytes()
	if len(body) < 8 || string(body[1:4]) != "PNG" {
		t.Error("expected a PNG payload")
	}
}

func TestHandleAllocationChart_EmptyPortfolio(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "empty@example.com")

	rec := do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/analytics/chart", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a portfolio with no holdings, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleInsight_UnavailableWithoutGemini(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedPortfolio(t, storage)

	rec := do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/analytics/insight", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a Gemini client, got %d", rec.Code)
	}
}

func TestHandleInsight_Success(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedPortfolio(t, storage)
	srv.app.GeminiClient = &stubGemini{}
	srv.app.InsightService = &stubInsight{text: "steady portfolio"}

	rec := do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/analytics/insight", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data := resp["data"].(map[string]interface{})
	if data["insight"] != "steady portfolio" {
		t.Errorf("expected insight text, got %v", data["insight"])
	}
}

func TestHandlePriceSync_RunsInBackground(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	recorder := &syncRecorder{called: make(chan struct{}, 1)}
	srv.app.PriceSyncService = recorder

	rec := do(srv, authedRequest(t, srv, user, http.MethodPost, "/api/prices/sync", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case <-recorder.called:
	case <-time.After(2 * time.Second):
		t.Fatal("expected SyncAll to run in the background")
	}
}

func TestHandlePriceSync_RequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodPost, "/api/prices/sync", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
