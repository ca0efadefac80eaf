package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestHandler(baseURL string, client *http.Client) *Handler {
	return NewHandler(NewServiceProxy(baseURL, client), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_HandleAPI(t *testing.T) {
	t.Run("proxies GET /api/products", func(t *testing.T) {
		storefront := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/products" {
				t.Errorf("expected /api/products, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"products":[]}`))
		}))
		defer storefront.Close()

		handler := newTestHandler(storefront.URL, storefront.Client())
		rec := httptest.NewRecorder()

		handler.HandleAPI(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Type") != "application/json" {
			t.Errorf("expected application/json, got %s", rec.Header().Get("Content-Type"))
		}
		if rec.Body.String() != `{"products":[]}` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("proxies POST /api/cart with body", func(t *testing.T) {
		storefront := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"customer_id":"123"}` {
				t.Errorf("unexpected body: %s", body)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer storefront.Close()

		handler := newTestHandler(storefront.URL, storefront.Client())
		rec := httptest.NewRecorder()

		handler.HandleAPI(rec, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(`{"customer_id":"123"}`)))

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status 201, got %d", rec.Code)
		}
	})

	t.Run("preserves downstream error status", func(t *testing.T) {
		storefront := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"product not found"}`))
		}))
		defer storefront.Close()

		handler := newTestHandler(storefront.URL, storefront.Client())
		rec := httptest.NewRecorder()

		handler.HandleAPI(rec, httptest.NewRequest(http.MethodGet, "/api/products/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("refuses paths outside the api", func(t *testing.T) {
		storefront := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("admin path reached storefront: %s", r.URL.Path)
		}))
		defer storefront.Close()

		handler := newTestHandler(storefront.URL, storefront.Client())
		rec := httptest.NewRecorder()

		handler.HandleAPI(rec, httptest.NewRequest(http.MethodGet, "/admin/categories", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("returns 502 when storefront unavailable", func(t *testing.T) {
		handler := newTestHandler("http://localhost:99999", &http.Client{})
		rec := httptest.NewRecorder()

		handler.HandleAPI(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "service unavailable" {
			t.Errorf("expected 'service unavailable', got %s", resp["error"])
		}
	})
}
