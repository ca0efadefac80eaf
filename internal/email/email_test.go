package email

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestHandler() *Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleSend(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"sent", `{"to":"a@b.com","subject":"Hi","body":"x"}`, http.StatusOK},
		{"missing recipient", `{"subject":"Hi"}`, http.StatusBadRequest},
		{"missing subject", `{"to":"a@b.com"}`, http.StatusBadRequest},
		{"malformed", `{"to":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()
			rec := httptest.NewRecorder()

			h.HandleSend(rec, httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(tt.body)))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestClientSendsToOutbox(t *testing.T) {
	h := newTestHandler()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", h.HandleSend)
	mux.HandleFunc("GET /outbox", h.HandleOutbox)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	for _, to := range []string{"a@b.com", "c@d.com", "a@b.com"} {
		if err := client.Send(context.Background(), Message{To: to, Subject: "Code", Body: "123456"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	resp, err := srv.Client().Get(srv.URL + "/outbox?to=a@b.com")
	if err != nil {
		t.Fatalf("get outbox: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var sent []sentMessage
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sent) != 2 {
		t.Errorf("got %d messages for a@b.com, want 2", len(sent))
	}
}

func TestClientReportsSinkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, srv.Client()).Send(context.Background(), Message{To: "a@b.com", Subject: "x"})
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
}
