package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tranvn/folio/internal/models"
)

// seedCategory stores a category directly and returns it.
func seedCategory(t *testing.T, storage *memStorage, userID, name string) *models.Category {
	t.Helper()
	c := &models.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	storage.categories[c.ID] = c
	return c
}

// seedAsset stores an asset directly and returns it.
func seedAsset(t *testing.T, storage *memStorage, userID, categoryID, name string, kind models.AssetKind) *models.Asset {
	t.Helper()
	a := &models.Asset{
		ID:         uuid.NewString(),
		UserID:     userID,
		CategoryID: categoryID,
		Name:       name,
		Kind:       kind,
		CreatedAt:  time.Now(),
	}
	storage.assets[a.ID] = a
	return a
}

// --- Categories ---

func TestHandleCategoryCreateAndList(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")

	body := jsonBody(t, map[string]string{"name": "Stocks"})
	rec := do(srv, authedRequest(t, srv, user, http.MethodPost, "/api/categories", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data := resp["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 category, got %d", len(data))
	}
	got := data[0].(map[string]interface{})
	if got["name"] != "Stocks" {
		t.Errorf("expected name 'Stocks', got %v", got["name"])
	}
}

func TestHandleCategoryCreate_RequiresName(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")

	body := jsonBody(t, map[string]string{"name": "  "})
	rec := do(srv, authedRequest(t, srv, user, http.MethodPost, "/api/categories", body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCategoryCreate_Unauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)

	body := jsonBody(t, map[string]string{"name": "Stocks"})
	rec := do(srv, httptest.NewRequest(http.MethodPost, "/api/categories", body))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandleCategoryList_ScopesToUser(t *testing.T) {
	srv, storage := newTestServer(t)
	alice := seedUser(t, storage, "alice@example.com")
	bob := seedUser(t, storage, "bob@example.com")
	seedCategory(t, storage, alice.ID, "Stocks")
	seedCategory(t, storage, bob.ID, "Gold")

	rec := do(srv, authedRequest(t, srv, alice, http.MethodGet, "/api/categories", nil))
	resp := decodeResponse(t, rec)
	data := resp["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 category for alice, got %d", len(data))
	}
}

func TestHandleCategoryDelete_BlockedWhileAssetsExist(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	category := seedCategory(t, storage, user.ID, "Stocks")
	seedAsset(t, storage, user.ID, category.ID, "HPG", models.AssetKindStock)

	rec := do(srv, authedRequest(t, srv, user, http.MethodDelete, "/api/categories/"+category.ID, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 while assets exist, got %d", rec.Code)
	}
}

func TestHandleCategoryDelete_OtherUsersCategoryIsHidden(t *testing.T) {
	srv, storage := newTestServer(t)
	alice := seedUser(t, storage, "alice@example.com")
	bob := seedUser(t, storage, "bob@example.com")
	category := seedCategory(t, storage, bob.ID, "Gold")

	rec := do(srv, authedRequest(t, srv, alice, http.MethodDelete, "/api/categories/"+category.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's category, got %d", rec.Code)
	}
	if _, ok := storage.categories[category.ID]; !ok {
		t.Error("category must not be deleted")
	}
}

// --- Assets ---

func TestHandleAssetCreate_Success(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	category := seedCategory(t, storage, user.ID, "Crypto")

	body := jsonBody(t, map[string]string{
		"category_id": category.ID,
		"name":        "BTC",
		"kind":        "crypto",
	})
	rec := do(srv, authedRequest(t, srv, user, http.MethodPost, "/api/assets", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data := resp["data"].(map[string]interface{})
	if data["kind"] != "crypto" {
		t.Errorf("expected kind 'crypto', got %v", data["kind"])
	}
}

func TestHandleAssetCreate_RejectsUnknownKind(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	category := seedCategory(t, storage, user.ID, "Other")

	body := jsonBody(t, map[string]string{
		"category_id": category.ID,
		"name":        "BOND1",
		"kind":        "bond",
	})
	rec := do(srv, authedRequest(t, srv, user, http.MethodPost, "/api/assets", body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown kind, got %d", rec.Code)
	}
}

func TestHandleAssetCreate_RejectsForeignCategory(t *testing.T) {
	srv, storage := newTestServer(t)
	alice := seedUser(t, storage, "alice@example.com")
	bob := seedUser(t, storage, "bob@example.com")
	category := seedCategory(t, storage, bob.ID, "Crypto")

	body := jsonBody(t, map[string]string{
		"category_id": category.ID,
		"name":        "BTC",
		"kind":        "crypto",
	})
	rec := do(srv, authedRequest(t, srv, alice, http.MethodPost, "/api/assets", body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for another user's category, got %d", rec.Code)
	}
}

func TestHandleAssetList_FiltersByCategory(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	stocks := seedCategory(t, storage, user.ID, "Stocks")
	crypto := seedCategory(t, storage, user.ID, "Crypto")
	seedAsset(t, storage, user.ID, stocks.ID, "HPG", models.AssetKindStock)
	seedAsset(t, storage, user.ID, crypto.ID, "BTC", models.AssetKindCrypto)

	rec := do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/assets?category_id="+stocks.ID, nil))
	resp := decodeResponse(t, rec)
	data := resp["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 asset in Stocks, got %d", len(data))
	}
	got := data[0].(map[string]interface{})
	if got["name"] != "HPG" {
		t.Errorf("expected asset 'HPG', got %v", got["name"])
	}
}

func TestHandleAssetDelete_BlockedWhileTransactionsExist(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	category := seedCategory(t, storage, user.ID, "Stocks")
	asset := seedAsset(t, storage, user.ID, category.ID, "HPG", models.AssetKindStock)
	storage.txs["tx1"] = &models.Transaction{
		ID: "tx1", UserID: user.ID, AssetID: asset.ID,
		Kind: models.TransactionBuy, Quantity: 10, NAV: 25000,
		Date: time.Now(), CreatedAt: time.Now(),
	}

	rec := do(srv, authedRequest(t, srv, user, http.MethodDelete, "/api/assets/"+asset.ID, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 while transactions exist, got %d", rec.Code)
	}
}

func TestHandleAssetPrices_ReturnsHistory(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	category := seedCategory(t, storage, user.ID, "Stocks")
	asset := seedAsset(t, storage, user.ID, category.ID, "HPG", models.AssetKindStock)

	base := time.Now().Add(-time.Hour)
	storage.prices = append(storage.prices,
		&models.AssetPrice{ID: "p1", AssetID: asset.ID, Price: 25000, SyncedAt: base},
		&models.AssetPrice{ID: "p2", AssetID: asset.ID, Price: 25100, SyncedAt: base.Add(30 * time.Minute)},
	)

	rec := do(srv, authedRequest(t, srv, user, http.MethodGet, "/api/assets/"+asset.ID+"/prices?limit=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data := resp["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 price with limit=1, got %d", len(data))
	}
	got := data[0].(map[string]interface{})
	if got["price"] != 25100.0 {
		t.Errorf("expected newest price 25100, got %v", got["price"])
	}
}

// --- Transactions ---

func TestHandleTransactionCreate_Success(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	category := seedCategory(t, storage, user.ID, "Stocks")
	asset := seedAsset(t, storage, user.ID, category.ID, "HPG", models.AssetKindStock)

	body := jsonBody(t, map[string]interface{}{
		"asset_id": asset.ID,
		"kind":     "buy",
		"quantity": 100,
		"nav":      25000,
		"fee":      5000,
	})
	rec := do(srv, authedRequest(t, srv, user, http.MethodPost, "/api/transactions", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data := resp["data"].(map[string]interface{})
	if data["kind"] != "buy" {
		t.Errorf("expected kind 'buy', got %v", data["kind"])
	}
	if data["created_at"] == nil {
		t.Error("expected created_at set by the server")
	}
}

func TestHandleTransactionCreate_Validation(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	category := seedCategory(t, storage, user.ID, "Stocks")
	asset := seedAsset(t, storage, user.ID, category.ID, "HPG", models.AssetKindStock)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"bad kind", map[string]interface{}{"asset_id": asset.ID, "kind": "transfer", "quantity": 1, "nav": 1}},
		{"negative quantity", map[string]interface{}{"asset_id": asset.ID, "kind": "buy", "quantity": -1, "nav": 1}},
		{"negative nav", map[string]interface{}{"asset_id": asset.ID, "kind": "buy", "quantity": 1, "nav": -1}},
		{"negative fee", map[string]interface{}{"asset_id": asset.ID, "kind": "buy", "quantity": 1, "nav": 1, "fee": -1}},
		{"unknown asset", map[string]interface{}{"asset_id": "nope", "kind": "buy", "quantity": 1, "nav": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(srv, authedRequest(t, srv, user, http.MethodPost, "/api/transactions", jsonBody(t, tc.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandleTransactionUpdate_KeepsCreatedAt(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	category := seedCategory(t, storage, user.ID, "Stocks")
	asset := seedAsset(t, storage, user.ID, category.ID, "HPG", models.AssetKindStock)

	createdAt := time.Now().Add(-24 * time.Hour)
	storage.txs["tx1"] = &models.Transaction{
		ID: "tx1", UserID: user.ID, AssetID: asset.ID,
		Kind: models.TransactionBuy, Quantity: 10, NAV: 25000,
		Date: createdAt, CreatedAt: createdAt,
	}

	body := jsonBody(t, map[string]interface{}{"quantity": 20})
	rec := do(srv, authedRequest(t, srv, user, http.MethodPut, "/api/transactions/tx1", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	tx := storage.txs["tx1"]
	if tx.Quantity != 20 {
		t.Errorf("expected quantity 20, got %v", tx.Quantity)
	}
	if !tx.CreatedAt.Equal(createdAt) {
		t.Errorf("created_at must not change on update: got %v", tx.CreatedAt)
	}
}

func TestHandleTransactionDelete_OtherUsersTransactionIsHidden(t *testing.T) {
	srv, storage := newTestServer(t)
	alice := seedUser(t, storage, "alice@example.com")
	bob := seedUser(t, storage, "bob@example.com")
	storage.txs["tx1"] = &models.Transaction{
		ID: "tx1", UserID: bob.ID, AssetID: "a1",
		Kind: models.TransactionBuy, Quantity: 10, NAV: 100,
		Date: time.Now(), CreatedAt: time.Now(),
	}

	rec := do(srv, authedRequest(t, srv, alice, http.MethodDelete, "/api/transactions/tx1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if _, ok := storage.txs["tx1"]; !ok {
		t.Error("transaction must not be deleted")
	}
}

// --- Labels ---

func TestHandleLabelCreate_FiltersForeignAssets(t *testing.T) {
	srv, storage := newTestServer(t)
	alice := seedUser(t, storage, "alice@example.com")
	bob := seedUser(t, storage, "bob@example.com")
	category := seedCategory(t, storage, alice.ID, "Stocks")
	mine := seedAsset(t, storage, alice.ID, category.ID, "HPG", models.AssetKindStock)
	theirs := seedAsset(t, storage, bob.ID, category.ID, "VNM", models.AssetKindStock)

	body := jsonBody(t, map[string]interface{}{
		"name":      "long-term",
		"asset_ids": []string{mine.ID, theirs.ID},
	})
	rec := do(srv, authedRequest(t, srv, alice, http.MethodPost, "/api/labels", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	data := resp["data"].(map[string]interface{})
	ids := data["asset_ids"].([]interface{})
	if len(ids) != 1 || ids[0] != mine.ID {
		t.Errorf("expected only owned asset %q, got %v", mine.ID, ids)
	}
}

func TestHandleLabelUpdateAndDelete(t *testing.T) {
	srv, storage := newTestServer(t)
	user := seedUser(t, storage, "alice@example.com")
	storage.labels["l1"] = &models.Label{
		ID: "l1", UserID: user.ID, Name: "watch", CreatedAt: time.Now(),
	}

	body := jsonBody(t, map[string]interface{}{"name": "hold"})
	rec := do(srv, authedRequest(t, srv, user, http.MethodPut, "/api/labels/l1", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if storage.labels["l1"].Name != "hold" {
		t.Errorf("expected renamed label, got %q", storage.labels["l1"].Name)
	}

	rec = do(srv, authedRequest(t, srv, user, http.MethodDelete, "/api/labels/l1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := storage.labels["l1"]; ok {
		t.Error("label must be deleted")
	}
}
