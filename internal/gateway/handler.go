package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SarthakSoni31/Driven-backend/internal/httpjson"
)

const apiPrefix = "/api/"

type Handler struct {
	storefront *ServiceProxy
	resp       *httpjson.Responder
	logger     *slog.Logger
}

func NewHandler(storefront *ServiceProxy, logger *slog.Logger) *Handler {
	return &Handler{
		storefront: storefront,
		resp:       httpjson.NewResponder(logger),
		logger:     logger,
	}
}

// HandleAPI forwards storefront API calls. Anything outside /api/ is a 404.
func (h *Handler) HandleAPI(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, apiPrefix) {
		h.resp.Error(w, http.StatusNotFound, "not found")
		return
	}

	resp, err := h.storefront.ForwardRequest(r.Context(), r)
	if err != nil {
		h.logger.Error("failed to forward request", "error", err, "path", r.URL.Path)
		h.resp.Error(w, http.StatusBadGateway, "service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for _, key := range []string{"Content-Type", "Cache-Control"} {
		if v := resp.Header.Get(key); v != "" {
			w.Header().Set(key, v)
		}
	}

	w.WriteHeader(resp.StatusCode)

	h.logger.Info("request proxied", "method", r.Method, "path", r.URL.Path, "status", resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed to copy response body", "error", err)
	}
}
