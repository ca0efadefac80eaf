// Package email is the mail sink that stands in for SMTP delivery, plus the
// client the other services use to reach it.
package email

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/httpjson"
)

const outboxSize = 100

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sentMessage struct {
	Message
	SentAt time.Time `json:"sent_at"`
}

// Handler accepts messages and keeps the most recent ones in memory so they
// can be inspected.
type Handler struct {
	mu     sync.Mutex
	outbox []sentMessage
	resp   *httpjson.Responder
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		resp:   httpjson.NewResponder(logger),
		logger: logger,
	}
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := httpjson.Decode(r, &msg); err != nil {
		h.resp.Fail(w, err, "invalid send body")
		return
	}
	msg.To = strings.TrimSpace(msg.To)
	if msg.To == "" {
		h.resp.Fail(w, domain.Invalid("to", "is required"), "invalid send body")
		return
	}
	if strings.TrimSpace(msg.Subject) == "" {
		h.resp.Fail(w, domain.Invalid("subject", "is required"), "invalid send body")
		return
	}

	h.mu.Lock()
	h.outbox = append(h.outbox, sentMessage{Message: msg, SentAt: time.Now().UTC()})
	if len(h.outbox) > outboxSize {
		h.outbox = h.outbox[len(h.outbox)-outboxSize:]
	}
	h.mu.Unlock()

	h.logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
	h.resp.JSON(w, http.StatusOK, sendResponse{Status: "sent"})
}

// HandleOutbox lists the retained messages, newest first. The optional "to"
// query parameter filters by recipient.
func (h *Handler) HandleOutbox(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")

	h.mu.Lock()
	sent := make([]sentMessage, 0, len(h.outbox))
	for i := len(h.outbox) - 1; i >= 0; i-- {
		if to == "" || h.outbox[i].To == to {
			sent = append(sent, h.outbox[i])
		}
	}
	h.mu.Unlock()

	h.resp.JSON(w, http.StatusOK, sent)
}
