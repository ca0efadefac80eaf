package otp

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

type sendRequest struct {
	Email string `json:"email"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, err, "invalid otp body")
		return
	}

	if err := h.service.Send(r.Context(), req.Email); err != nil {
		h.resp.Fail(w, err, "failed to send otp")
		return
	}
	h.resp.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP sent successfully"})
}

type verifyRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, err, "invalid otp body")
		return
	}

	customer, err := h.service.Verify(r.Context(), req.Email, req.Otp)
	if err != nil {
		h.resp.Fail(w, err, "failed to verify otp")
		return
	}
	h.resp.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "OTP verified successfully",
		"customer": customer,
	})
}
