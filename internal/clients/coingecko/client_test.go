package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPrice_ParsesVNDPrice(t *testing.T) {
	var capturedPath, capturedQuery, capturedKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedQuery = r.URL.RawQuery
		capturedKey = r.Header.Get("x-cg-demo-api-key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"vnd":2712345678.9}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithAPIKey("demo-key"))
	price, err := client.FetchPrice(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("FetchPrice failed: %v", err)
	}

	if capturedPath != "/simple/price" {
		t.Errorf("expected path /simple/price, got %s", capturedPath)
	}
	if capturedQuery != "ids=bitcoin&vs_currencies=vnd" {
		t.Errorf("unexpected query: %s", capturedQuery)
	}
	if capturedKey != "demo-key" {
		t.Errorf("expected API key header, got %q", capturedKey)
	}
	if price != 2712345678.9 {
		t.Errorf("expected price 2712345678.9, got %f", price)
	}
}

func TestFetchPrice_NoKeyHeaderWhenUnset(t *testing.T) {
	var sawKey bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawKey = r.Header["X-Cg-Demo-Api-Key"]
		w.Write([]byte(`{"ethereum":{"vnd":1}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	if _, err := client.FetchPrice(context.Background(), "ETH"); err != nil {
		t.Fatalf("FetchPrice failed: %v", err)
	}
	if sawKey {
		t.Error("expected no API key header when key is unset")
	}
}

func TestFetchPrice_MissingVNDPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchPrice(context.Background(), "BTC")
	if err == nil {
		t.Fatal("expected error when response has no VND price")
	}
}

func TestFetchPrice_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchPrice(context.Background(), "BTC")
	if err == nil {
		t.Fatal("expected error on 429 response")
	}
}

func TestFetchPrice_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithTimeout(100*time.Millisecond))
	_, err := client.FetchPrice(context.Background(), "BTC")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestCoinID(t *testing.T) {
	tests := []struct {
		symbol string
		id     string
	}{
		{"BTC", "bitcoin"},
		{"btc", "bitcoin"},
		{" ton ", "the-open-network"},
		{"AVAX", "avalanche-2"},
		{"PEPE", "pepe"}, // unmapped symbols fall back to lowercase
	}
	for _, tt := range tests {
		if got := CoinID(tt.symbol); got != tt.id {
			t.Errorf("CoinID(%q) = %q, want %q", tt.symbol, got, tt.id)
		}
	}
}
