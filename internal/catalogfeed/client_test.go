package catalogfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetProducts_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/products" {
			t.Fatalf("path = %s, want /api/products", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "1" {
			t.Fatalf("page = %s, want 1", r.URL.Query().Get("page"))
		}

		resp := []Product{
			{
				Slug:     "calacatta-gold",
				Name:     "Calacatta Gold",
				Material: "quartz",
				PriceMin: 55,
				PriceMax: 90,
				Finishes: []string{"polished"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	products, code, retry, err := client.GetProducts(ctx, 1)
	if err != nil {
		t.Fatalf("GetProducts error: %v", err)
	}
	if code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", code, http.StatusOK)
	}
	if retry != 0 {
		t.Fatalf("retryAfter = %v, want 0", retry)
	}
	if len(products) != 1 || products[0].Slug != "calacatta-gold" {
		t.Fatalf("unexpected products: %+v", products)
	}
	if products[0].PriceMin != 55 || products[0].PriceMax != 90 {
		t.Fatalf("unexpected prices: %+v", products[0])
	}
}

func TestGetProducts_TooManyRequests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	products, code, retry, err := client.GetProducts(ctx, 1)
	if err != nil {
		t.Fatalf("GetProducts error: %v", err)
	}
	if products != nil {
		t.Fatalf("expected nil products for 429, got %+v", products)
	}
	if code != http.StatusTooManyRequests {
		t.Fatalf("status code = %d, want %d", code, http.StatusTooManyRequests)
	}
	if retry < 5*time.Second {
		t.Fatalf("retryAfter = %v, want at least 5s", retry)
	}
}

func TestGetProducts_NoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	products, code, retry, err := client.GetProducts(ctx, 1)
	if err != nil {
		t.Fatalf("GetProducts error: %v", err)
	}
	if products != nil {
		t.Fatalf("expected nil products for 204, got %+v", products)
	}
	if code != http.StatusNoContent {
		t.Fatalf("status code = %d, want %d", code, http.StatusNoContent)
	}
	if retry != 0 {
		t.Fatalf("retryAfter = %v, want 0", retry)
	}
}

func TestGetProducts_RetriesServerError(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Product{{Slug: "sierra-white", Name: "Sierra White", Material: "granite"}})
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products, code, _, err := client.GetProducts(ctx, 1)
	if err != nil {
		t.Fatalf("GetProducts error: %v", err)
	}
	if code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", code, http.StatusOK)
	}
	if len(products) != 1 || products[0].Slug != "sierra-white" {
		t.Fatalf("unexpected products: %+v", products)
	}
	if attempts < 2 {
		t.Fatalf("expected a retry after 500, got %d attempts", attempts)
	}
}
