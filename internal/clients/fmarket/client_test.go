package fmarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const fundPage = `<!DOCTYPE html>
<html><body>
<div class="fund-header"><h1>VESAF</h1></div>
<div class="stats"><span class="nav">29,150.5</span><span class="nav">28,000</span></div>
</body></html>`

func TestFetchPrice_ParsesNAV(t *testing.T) {
	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Write([]byte(fundPage))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	nav, err := client.FetchPrice(context.Background(), "VESAF")
	if err != nil {
		t.Fatalf("FetchPrice failed: %v", err)
	}

	if capturedPath != "/vesaf" {
		t.Errorf("expected path /vesaf, got %s", capturedPath)
	}
	// First .nav element wins; thousands separators stripped
	if nav != 29150.5 {
		t.Errorf("expected NAV 29150.5, got %f", nav)
	}
}

func TestFetchPrice_LowercasesSymbol(t *testing.T) {
	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Write([]byte(fundPage))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	if _, err := client.FetchPrice(context.Background(), " DCDS "); err != nil {
		t.Fatalf("FetchPrice failed: %v", err)
	}
	if capturedPath != "/dcds" {
		t.Errorf("expected path /dcds, got %s", capturedPath)
	}
}

func TestFetchPrice_NoNAVElement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="navigation">menu</div></body></html>`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchPrice(context.Background(), "VESAF")
	if err == nil {
		t.Fatal("expected error when NAV element is missing")
	}
}

func TestFetchPrice_NonNumericNAV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><span class="nav">N/A</span></body></html>`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchPrice(context.Background(), "VESAF")
	if err == nil {
		t.Fatal("expected error on non-numeric NAV")
	}
}

func TestFetchPrice_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchPrice(context.Background(), "NOSUCH")
	if err == nil {
		t.Fatal("expected error on 404 response")
	}
}
