package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tranvn/folio/internal/app"
	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/interfaces"
	"github.com/tranvn/folio/internal/models"
	"github.com/tranvn/folio/internal/services/analytics"
)

// memStorage is an in-memory StorageManager for handler tests.
type memStorage struct {
	users      map[string]*models.User
	categories map[string]*models.Category
	assets     map[string]*models.Asset
	txs        map[string]*models.Transaction
	prices     []*models.AssetPrice
	labels     map[string]*models.Label
}

func newMemStorage() *memStorage {
	return &memStorage{
		users:      make(map[string]*models.User),
		categories: make(map[string]*models.Category),
		assets:     make(map[string]*models.Asset),
		txs:        make(map[string]*models.Transaction),
		labels:     make(map[string]*models.Label),
	}
}

func (m *memStorage) UserStore() interfaces.UserStore               { return (*memUserStore)(m) }
func (m *memStorage) CategoryStore() interfaces.CategoryStore       { return (*memCategoryStore)(m) }
func (m *memStorage) AssetStore() interfaces.AssetStore             { return (*memAssetStore)(m) }
func (m *memStorage) TransactionStore() interfaces.TransactionStore { return (*memTransactionStore)(m) }
func (m *memStorage) PriceStore() interfaces.PriceStore             { return (*memPriceStore)(m) }
func (m *memStorage) LabelStore() interfaces.LabelStore             { return (*memLabelStore)(m) }
func (m *memStorage) Close() error                                  { return nil }

type memUserStore memStorage

func (s *memUserStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %s", userID)
}

func (s *memUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found for email: %s", email)
}

func (s *memUserStore) SaveUser(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) DeleteUser(_ context.Context, userID string) error {
	delete(s.users, userID)
	return nil
}

func (s *memUserStore) ListUsers(_ context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

type memCategoryStore memStorage

func (s *memCategoryStore) GetCategory(_ context.Context, id string) (*models.Category, error) {
	if c, ok := s.categories[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("category not found: %s", id)
}

func (s *memCategoryStore) SaveCategory(_ context.Context, c *models.Category) error {
	s.categories[c.ID] = c
	return nil
}

func (s *memCategoryStore) DeleteCategory(_ context.Context, id string) error {
	delete(s.categories, id)
	return nil
}

func (s *memCategoryStore) ListCategories(_ context.Context, userID string) ([]*models.Category, error) {
	var out []*models.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memAssetStore memStorage

func (s *memAssetStore) GetAsset(_ context.Context, id string) (*models.Asset, error) {
	if a, ok := s.assets[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("asset not found: %s", id)
}

func (s *memAssetStore) SaveAsset(_ context.Context, a *models.Asset) error {
	s.assets[a.ID] = a
	return nil
}

func (s *memAssetStore) DeleteAsset(_ context.Context, id string) error {
	delete(s.assets, id)
	return nil
}

func (s *memAssetStore) ListAssets(_ context.Context, userID string) ([]*models.Asset, error) {
	var out []*models.Asset
	for _, a := range s.assets {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memAssetStore) ListAssetsByCategory(_ context.Context, userID, categoryID string) ([]*models.Asset, error) {
	var out []*models.Asset
	for _, a := range s.assets {
		if a.UserID == userID && a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memTransactionStore memStorage

func (s *memTransactionStore) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	if tx, ok := s.txs[id]; ok {
		return tx, nil
	}
	return nil, fmt.Errorf("transaction not found: %s", id)
}

func (s *memTransactionStore) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	s.txs[tx.ID] = tx
	return nil
}

func (s *memTransactionStore) DeleteTransaction(_ context.Context, id string) error {
	delete(s.txs, id)
	return nil
}

func (s *memTransactionStore) ListTransactions(_ context.Context, userID string) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range s.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *memTransactionStore) ListTransactionsByAsset(_ context.Context, userID, assetID string) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range s.txs {
		if tx.UserID == userID && tx.AssetID == assetID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type memPriceStore memStorage

func (s *memPriceStore) SavePrice(_ context.Context, p *models.AssetPrice) error {
	s.prices = append(s.prices, p)
	return nil
}

func (s *memPriceStore) LatestPrice(_ context.Context, assetID string) (*models.AssetPrice, error) {
	var latest *models.AssetPrice
	for _, p := range s.prices {
		if p.AssetID != assetID {
			continue
		}
		if latest == nil || p.SyncedAt.After(latest.SyncedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no price synced for asset %s", assetID)
	}
	return latest, nil
}

func (s *memPriceStore) ListPrices(_ context.Context, assetID string, limit int) ([]*models.AssetPrice, error) {
	var out []*models.AssetPrice
	for _, p := range s.prices {
		if p.AssetID == assetID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SyncedAt.After(out[j].SyncedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memLabelStore memStorage

func (s *memLabelStore) GetLabel(_ context.Context, id string) (*models.Label, error) {
	if l, ok := s.labels[id]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("label not found: %s", id)
}

func (s *memLabelStore) SaveLabel(_ context.Context, l *models.Label) error {
	s.labels[l.ID] = l
	return nil
}

func (s *memLabelStore) DeleteLabel(_ context.Context, id string) error {
	delete(s.labels, id)
	return nil
}

func (s *memLabelStore) ListLabels(_ context.Context, userID string) ([]*models.Label, error) {
	var out []*models.Label
	for _, l := range s.labels {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// syncRecorder implements PriceSyncService and signals when SyncAll runs.
type syncRecorder struct {
	called chan struct{}
}

func (r *syncRecorder) SyncAll(_ context.Context) (int, error) {
	select {
	case r.called <- struct{}{}:
	default:
	}
	return 1, nil
}

func (r *syncRecorder) SyncAsset(_ context.Context, _ *models.Asset) error { return nil }

// stubInsight implements InsightService with a fixed response.
type stubInsight struct {
	text string
	err  error
}

func (s *stubInsight) GenerateInsight(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

// stubGemini satisfies GeminiClient for handlers that only nil-check it.
type stubGemini struct{}

func (s *stubGemini) GenerateText(_ context.Context, prompt string) (string, error) {
	return "ok", nil
}
func (s *stubGemini) Close() error { return nil }

// newTestServer creates a server over in-memory storage with the real
// analytics service wired in.
func newTestServer(t *testing.T) (*Server, *memStorage) {
	t.Helper()
	logger := common.NewSilentLogger()
	cfg := common.NewDefaultConfig()
	storage := newMemStorage()

	a := &app.App{
		Config:           cfg,
		Logger:           logger,
		Storage:          storage,
		AnalyticsService: analytics.NewService(storage, logger),
	}
	return NewServer(a), storage
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return bytes.NewBuffer(data)
}

// seedUser stores a user directly and returns it.
func seedUser(t *testing.T, storage *memStorage, email string) *models.User {
	t.Helper()
	hash, err := hashPassword("secretpass")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	storage.users[user.ID] = user
	return user
}

// authedRequest builds a request carrying a valid bearer token for the user.
func authedRequest(t *testing.T, srv *Server, user *models.User, method, path string, body *bytes.Buffer) *http.Request {
	t.Helper()
	token, err := signJWT(user, srv.app.Config.Auth.JWTSecret, srv.app.Config.Auth.GetTokenExpiry())
	if err != nil {
		t.Fatalf("signJWT failed: %v", err)
	}
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// do runs a request through the full middleware stack and returns the recorder.
func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// decodeResponse unmarshals a JSON response body into a generic map.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// decodeInto unmarshals a JSON response body into v.
func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
