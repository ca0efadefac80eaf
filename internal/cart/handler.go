package cart

import (
	"log/slog"
	"net/http"

	"github.com/SarthakSoni31/Driven-backend/internal/httpjson"
)

type Handler struct {
	service *Service
	resp    *httpjson.Responder
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		resp:    httpjson.NewResponder(logger),
		logger:  logger,
	}
}

func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	view, err := h.service.Fetch(r.Context(), customerID)
	if err != nil {
		h.resp.Fail(w, err, "failed to fetch cart", "customer_id", customerID)
		return
	}
	h.resp.JSON(w, http.StatusOK, view)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var in AddInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid cart body")
		return
	}

	view, err := h.service.Add(r.Context(), in)
	if err != nil {
		h.resp.Fail(w, err, "failed to add cart item", "customer_id", in.CustomerID)
		return
	}
	h.resp.JSON(w, http.StatusOK, view)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	cartID, itemID := r.PathValue("cartId"), r.PathValue("itemId")

	var req updateQuantityRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, err, "invalid cart body")
		return
	}

	line, err := h.service.UpdateQuantity(r.Context(), cartID, itemID, req.Quantity)
	if err != nil {
		h.resp.Fail(w, err, "failed to update cart item", "cart_id", cartID, "item_id", itemID)
		return
	}
	h.resp.JSON(w, http.StatusOK, line)
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	cartID, itemID := r.PathValue("cartId"), r.PathValue("itemId")

	remaining, err := h.service.Remove(r.Context(), cartID, itemID)
	if err != nil {
		h.resp.Fail(w, err, "failed to remove cart item", "cart_id", cartID, "item_id", itemID)
		return
	}
	h.resp.JSON(w, http.StatusOK, map[string]int{"remaining_items": remaining})
}
