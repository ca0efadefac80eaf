package orders

import (
	"log/slog"
	"net/http"

	"github.com/SarthakSoni31/Driven-backend/internal/auth"
	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/httpjson"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
)

type Handler struct {
	service *Service
	policy  *policy.Policy
	resp    *httpjson.Responder
	logger  *slog.Logger
}

func NewHandler(service *Service, p *policy.Policy, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		policy:  p,
		resp:    httpjson.NewResponder(logger),
		logger:  logger,
	}
}

func (h *Handler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	var in PlaceInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid order body")
		return
	}

	order, err := h.service.Place(r.Context(), in)
	if err != nil {
		h.resp.Fail(w, err, "failed to place order", "customer_id", in.CustomerID)
		return
	}

	h.resp.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Order placed successfully",
		"order":   order,
	})
}

func (h *Handler) HandleListForCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")

	orders, err := h.service.ListForCustomer(r.Context(), customerID)
	if err != nil {
		h.resp.Fail(w, err, "failed to list orders", "customer_id", customerID)
		return
	}

	h.logger.Info("orders listed", "customer_id", customerID, "count", len(orders))
	h.resp.JSON(w, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	customerID, orderID := r.PathValue("customerId"), r.PathValue("orderId")

	order, err := h.service.Get(r.Context(), customerID, orderID)
	if err != nil {
		h.resp.Fail(w, err, "failed to get order", "order_id", orderID)
		return
	}
	h.resp.JSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceOrder) {
		return
	}

	orders, err := h.service.List(r.Context())
	if err != nil {
		h.resp.Fail(w, err, "failed to list orders")
		return
	}
	h.resp.JSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionUpdate, policy.ResourceOrder) {
		return
	}
	id := r.PathValue("id")

	var req updateStatusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, err, "invalid order status body")
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.resp.Fail(w, err, "failed to update order status", "order_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, order)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action policy.Action, resource policy.Resource) bool {
	if err := auth.Authorize(r.Context(), h.policy, action, resource); err != nil {
		h.resp.Fail(w, err, "authorization failed")
		return false
	}
	return true
}
