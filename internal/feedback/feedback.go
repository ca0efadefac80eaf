// Package feedback stores contact-form submissions from the storefront.
package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SarthakSoni31/Driven-backend/internal/auth"
	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/httpjson"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
	"github.com/SarthakSoni31/Driven-backend/internal/validate"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, f *domain.Feedback) error {
	f.ID = uuid.New().String()
	f.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (id, name, email, phone, form_type, content, consent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, f.ID, f.Name, f.Email, f.Phone, f.FormType, f.Content, f.Consent, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// List returns every submission, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, form_type, content, consent, created_at
		FROM feedback
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []domain.Feedback{}
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Phone, &f.FormType, &f.Content, &f.Consent, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}

type Store interface {
	Create(ctx context.Context, f *domain.Feedback) error
	List(ctx context.Context) ([]domain.Feedback, error)
}

type Submission struct {
	Name     string `json:"name" validate:"required,alphaspace"`
	Email    string `json:"email" validate:"required,looseemail"`
	Phone    string `json:"phone" validate:"required"`
	FormType string `json:"formtype" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Consent  bool   `json:"consent"`
}

// Validate applies the contact form rules: every field is required and
// consent must be given.
func (s Submission) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if !s.Consent {
		return domain.Invalid("consent", "is required")
	}
	return nil
}

type Handler struct {
	store  Store
	policy *policy.Policy
	resp   *httpjson.Responder
	logger *slog.Logger
}

func NewHandler(store Store, p *policy.Policy, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		policy: p,
		resp:   httpjson.NewResponder(logger),
		logger: logger,
	}
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := httpjson.Decode(r, &sub); err != nil {
		h.resp.Fail(w, err, "invalid feedback body")
		return
	}
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)

	if err := sub.Validate(); err != nil {
		h.resp.Fail(w, err, "invalid feedback")
		return
	}

	f := &domain.Feedback{
		Name:     sub.Name,
		Email:    sub.Email,
		Phone:    sub.Phone,
		FormType: sub.FormType,
		Content:  sub.Content,
		Consent:  sub.Consent,
	}
	if err := h.store.Create(r.Context(), f); err != nil {
		h.resp.Fail(w, err, "failed to submit feedback")
		return
	}

	h.logger.Info("feedback submitted", "feedback_id", f.ID, "formtype", f.FormType)
	h.resp.JSON(w, http.StatusCreated, map[string]string{"message": "Feedback submitted successfully"})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if err != nil {
		h.resp.Fail(w, err, "failed to list feedback")
		return
	}
	h.resp.JSON(w, http.StatusOK, entries)
}

func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	if err := auth.Authorize(r.Context(), h.policy, policy.ActionView, policy.ResourceFeedback); err != nil {
		h.resp.Fail(w, err, "authorization failed")
		return
	}
	h.HandleList(w, r)
}
