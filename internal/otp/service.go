// Package otp issues one-time codes by email and turns a verified visitor
// into a known customer. There is no expiry or attempt limit on codes.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/validate"
)

const (
	minCode = 100000
	maxCode = 999999
)

type Store interface {
	Replace(ctx context.Context, rec *domain.OtpRecord) error
	Latest(ctx context.Context, email string) (*domain.OtpRecord, error)
	MarkVerified(ctx context.Context, id string) error
}

type CustomerStore interface {
	EnsureByEmail(ctx context.Context, email, name string) (*domain.Customer, error)
}

type Service struct {
	store      Store
	customers  CustomerStore
	dispatcher Dispatcher
	logger     *slog.Logger
	generate   func() (string, error)
}

func NewService(store Store, customers CustomerStore, dispatcher Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		customers:  customers,
		dispatcher: dispatcher,
		logger:     logger,
		generate:   GenerateCode,
	}
}

// GenerateCode returns a uniformly random six digit code in
// [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+minCode), nil
}

type sendInput struct {
	Email string `json:"email" validate:"required,looseemail"`
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Send issues a new code for the email, replacing any earlier one.
func (s *Service) Send(ctx context.Context, addr string) error {
	addr = normalizeEmail(addr)
	if err := validate.Struct(sendInput{Email: addr}); err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	rec := &domain.OtpRecord{Email: addr, Code: code, CreatedAt: time.Now().UTC()}
	if err := s.store.Replace(ctx, rec); err != nil {
		return err
	}

	if err := s.dispatcher.Dispatch(ctx, addr, code); err != nil {
		return fmt.Errorf("dispatch otp: %w", err)
	}

	s.logger.Info("otp issued", "email", addr)
	return nil
}

// Verify checks code against the latest code issued for the email. On a
// match the visitor becomes a customer; the name defaults to the local part
// of the email when the customer is new.
func (s *Service) Verify(ctx context.Context, addr, code string) (*domain.Customer, error) {
	addr = normalizeEmail(addr)
	code = strings.TrimSpace(code)
	if addr == "" {
		return nil, domain.Invalid("email", "is required")
	}
	if code == "" {
		return nil, domain.Invalid("otp", "is required")
	}

	rec, err := s.store.Latest(ctx, addr)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NotFound("otp")
	}
	if rec.Code != code {
		s.logger.Warn("otp mismatch", "email", addr)
		return nil, domain.ErrInvalidCode
	}

	if err := s.store.MarkVerified(ctx, rec.ID); err != nil {
		return nil, err
	}

	name, _, _ := strings.Cut(addr, "@")
	customer, err := s.customers.EnsureByEmail(ctx, addr, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("otp verified", "email", addr, "customer_id", customer.ID)
	return customer, nil
}
