// Package customers maintains customer records and their address books.
// A customer has at most one default address, and default_address_id always
// names it.
package customers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/validate"
)

type Store interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	Addresses(ctx context.Context, customerID string) ([]domain.Address, error)
	AddAddress(ctx context.Context, customerID string, a *domain.Address) error
	UpdateAddress(ctx context.Context, customerID, addressID string, change AddressChange) error
	SetDefault(ctx context.Context, customerID, addressID string) error
	DeleteAddress(ctx context.Context, customerID, addressID string) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type AddressInput struct {
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

func (s *Service) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	c, err := s.store.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("customer")
	}
	return c, nil
}

func (s *Service) Addresses(ctx context.Context, customerID string) ([]domain.Address, error) {
	c, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return c.Addresses, nil
}

func (s *Service) AddAddress(ctx context.Context, customerID string, in AddressInput) (*domain.Customer, error) {
	in.Street = strings.TrimSpace(in.Street)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Zip = strings.TrimSpace(in.Zip)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	a := domain.Address{
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		Country:   strings.TrimSpace(in.Country),
		IsDefault: in.IsDefault,
	}
	if a.Country == "" {
		a.Country = domain.DefaultCountry
	}

	if err := s.store.AddAddress(ctx, customerID, &a); err != nil {
		return nil, err
	}

	s.logger.Info("address added", "customer_id", customerID, "address_id", a.ID, "default", a.IsDefault)
	return s.Get(ctx, customerID)
}

// UpdateAddress changes the given fields. Blank strings leave a field as it
// was.
func (s *Service) UpdateAddress(ctx context.Context, customerID, addressID string, change AddressChange) (*domain.Customer, error) {
	for _, f := range []**string{&change.Street, &change.City, &change.State, &change.Zip, &change.Country} {
		if *f == nil {
			continue
		}
		if v := strings.TrimSpace(**f); v != "" {
			*f = &v
		} else {
			*f = nil
		}
	}

	if err := s.store.UpdateAddress(ctx, customerID, addressID, change); err != nil {
		return nil, err
	}

	s.logger.Info("address updated", "customer_id", customerID, "address_id", addressID)
	return s.Get(ctx, customerID)
}

func (s *Service) SetDefault(ctx context.Context, customerID, addressID string) (*domain.Customer, error) {
	if err := s.store.SetDefault(ctx, customerID, addressID); err != nil {
		return nil, err
	}

	s.logger.Info("default address set", "customer_id", customerID, "address_id", addressID)
	return s.Get(ctx, customerID)
}

func (s *Service) DeleteAddress(ctx context.Context, customerID, addressID string) error {
	if err := s.store.DeleteAddress(ctx, customerID, addressID); err != nil {
		return err
	}

	s.logger.Info("address deleted", "customer_id", customerID, "address_id", addressID)
	return nil
}
