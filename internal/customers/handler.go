package customers

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

func (h *Handler) HandleListAddresses(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")
	addresses, err := h.service.Addresses(r.Context(), customerID)
	if err != nil {
		h.resp.Fail(w, err, "failed to list addresses", "customer_id", customerID)
		return
	}
	h.resp.JSON(w, http.StatusOK, map[string]any{"success": true, "addresses": addresses})
}

func (h *Handler) HandleAddAddress(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customerId")

	var in AddressInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid address body")
		return
	}

	customer, err := h.service.AddAddress(r.Context(), customerID, in)
	if err != nil {
		h.resp.Fail(w, err, "failed to add address", "customer_id", customerID)
		return
	}
	h.resp.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) HandleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	customerID, addressID := r.PathValue("customerId"), r.PathValue("addressId")

	var change AddressChange
	if err := httpjson.Decode(r, &change); err != nil {
		h.resp.Fail(w, err, "invalid address body")
		return
	}

	customer, err := h.service.UpdateAddress(r.Context(), customerID, addressID, change)
	if err != nil {
		h.resp.Fail(w, err, "failed to update address", "customer_id", customerID, "address_id", addressID)
		return
	}
	h.resp.JSON(w, http.StatusOK, customer)
}

func (h *Handler) HandleSetDefault(w http.ResponseWriter, r *http.Request) {
	customerID, addressID := r.PathValue("customerId"), r.PathValue("addressId")

	customer, err := h.service.SetDefault(r.Context(), customerID, addressID)
	if err != nil {
		h.resp.Fail(w, err, "failed to set default address", "customer_id", customerID, "address_id", addressID)
		return
	}
	h.resp.JSON(w, http.StatusOK, customer)
}

func (h *Handler) HandleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	customerID, addressID := r.PathValue("customerId"), r.PathValue("addressId")

	if err := h.service.DeleteAddress(r.Context(), customerID, addressID); err != nil {
		h.resp.Fail(w, err, "failed to delete address", "customer_id", customerID, "address_id", addressID)
		return
	}
	h.resp.JSON(w, http.StatusOK, map[string]string{"message": "Address deleted successfully"})
}
