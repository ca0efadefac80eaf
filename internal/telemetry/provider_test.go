package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSpanName(t *testing.T) {
	mux := http.NewServeMux()
	var got string
	mux.HandleFunc("GET /api/products/{slug}", func(w http.ResponseWriter, r *http.Request) {
		got = SpanName("", r)
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/red-shoes", nil))
	if got != "GET /api/products/{slug}" {
		t.Errorf("span name = %q, want route pattern", got)
	}

	unrouted := SpanName("", httptest.NewRequest(http.MethodPost, "/nowhere", nil))
	if unrouted != "POST /nowhere" {
		t.Errorf("span name = %q, want method and path", unrouted)
	}
}
