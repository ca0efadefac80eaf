package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/postgres"
)

// Repository stores customers and their address books. Address mutations
// lock the customer row first, so changes to one customer's book are
// serialised while other customers proceed in parallel.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const customerSelect = `SELECT id, email, name, phone, default_address_id, created_at FROM customers`

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.getOne(ctx, customerSelect+` WHERE id = $1`, id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.getOne(ctx, customerSelect+` WHERE email = $1`, email)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var c domain.Customer
	var defaultID sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &defaultID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if defaultID.Valid {
		c.DefaultAddressID = &defaultID.String
	}

	c.Addresses, err = r.Addresses(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Addresses lists the customer's addresses in insertion order.
func (r *Repository) Addresses(ctx context.Context, customerID string) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, street, city, state, zip, country, is_default
		FROM addresses WHERE customer_id = $1 ORDER BY seq
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	addresses := []domain.Address{}
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.Street, &a.City, &a.State, &a.Zip, &a.Country, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

// EnsureByEmail returns the customer with the given email, creating it with
// name when it does not exist yet. The name of an existing customer is left
// alone.
func (r *Repository) EnsureByEmail(ctx context.Context, email, name string) (*domain.Customer, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, email, name, phone, created_at)
		VALUES ($1, $2, $3, '', NOW())
		ON CONFLICT (email) DO NOTHING
	`, uuid.New().String(), email, name)
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}

	c, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("customer")
	}
	return c, nil
}

// withCustomer runs fn in a transaction holding the customer's row lock.
func (r *Repository) withCustomer(ctx context.Context, customerID string, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM customers WHERE id = $1 FOR UPDATE`, customerID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("customer")
		}
		return fmt.Errorf("lock customer: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func clearDefault(ctx context.Context, tx *sql.Tx, customerID string) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE addresses SET is_default = FALSE WHERE customer_id = $1 AND is_default
	`, customerID); err != nil {
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}

func setDefault(ctx context.Context, tx *sql.Tx, customerID, addressID string) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE addresses SET is_default = TRUE WHERE customer_id = $1 AND id = $2
	`, customerID, addressID)
	if err != nil {
		return fmt.Errorf("set default address: %w", err)
	}
	if err := postgres.RequireAffected(result, "address"); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE customers SET default_address_id = $2 WHERE id = $1`, customerID, addressID)
	if err != nil {
		return fmt.Errorf("set default address id: %w", err)
	}
	return nil
}

func unsetDefaultID(ctx context.Context, tx *sql.Tx, customerID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE customers SET default_address_id = NULL WHERE id = $1`, customerID)
	if err != nil {
		return fmt.Errorf("clear default address id: %w", err)
	}
	return nil
}

// AddAddress appends a to the customer's book. A default address replaces
// the previous default.
func (r *Repository) AddAddress(ctx context.Context, customerID string, a *domain.Address) error {
	return r.withCustomer(ctx, customerID, func(tx *sql.Tx) error {
		if a.IsDefault {
			if err := clearDefault(ctx, tx, customerID); err != nil {
				return err
			}
		}

		a.ID = uuid.New().String()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO addresses (id, customer_id, street, city, state, zip, country, is_default)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		`, a.ID, customerID, a.Street, a.City, a.State, a.Zip, a.Country)
		if err != nil {
			return fmt.Errorf("insert address: %w", err)
		}

		if a.IsDefault {
			return setDefault(ctx, tx, customerID, a.ID)
		}
		return nil
	})
}

// AddressChange holds the fields of an address update. Nil fields are kept.
type AddressChange struct {
	Street    *string `json:"street"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Zip       *string `json:"zip"`
	Country   *string `json:"country"`
	IsDefault *bool   `json:"is_default"`
}

// UpdateAddress applies change to one address. Setting is_default moves the
// default to this address; clearing it on the current default leaves the
// customer without one.
func (r *Repository) UpdateAddress(ctx context.Context, customerID, addressID string, change AddressChange) error {
	return r.withCustomer(ctx, customerID, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE addresses SET
				street = COALESCE($3, street),
				city = COALESCE($4, city),
				state = COALESCE($5, state),
				zip = COALESCE($6, zip),
				country = COALESCE($7, country)
			WHERE customer_id = $1 AND id = $2
		`, customerID, addressID, change.Street, change.City, change.State, change.Zip, change.Country)
		if err != nil {
			return fmt.Errorf("update address: %w", err)
		}
		if err := postgres.RequireAffected(result, "address"); err != nil {
			return err
		}

		switch {
		case change.IsDefault == nil:
			return nil
		case *change.IsDefault:
			if err := clearDefault(ctx, tx, customerID); err != nil {
				return err
			}
			return setDefault(ctx, tx, customerID, addressID)
		default:
			if _, err := tx.ExecContext(ctx, `
				UPDATE addresses SET is_default = FALSE WHERE customer_id = $1 AND id = $2
			`, customerID, addressID); err != nil {
				return fmt.Errorf("unset default address: %w", err)
			}
			_, err := tx.ExecContext(ctx, `
				UPDATE customers SET default_address_id = NULL
				WHERE id = $1 AND default_address_id = $2
			`, customerID, addressID)
			if err != nil {
				return fmt.Errorf("clear default address id: %w", err)
			}
			return nil
		}
	})
}

func (r *Repository) SetDefault(ctx context.Context, customerID, addressID string) error {
	return r.withCustomer(ctx, customerID, func(tx *sql.Tx) error {
		if err := clearDefault(ctx, tx, customerID); err != nil {
			return err
		}
		return setDefault(ctx, tx, customerID, addressID)
	})
}

// DeleteAddress removes the address. When it was the default, the oldest
// remaining address becomes the default.
func (r *Repository) DeleteAddress(ctx context.Context, customerID, addressID string) error {
	return r.withCustomer(ctx, customerID, func(tx *sql.Tx) error {
		var wasDefault bool
		err := tx.QueryRowContext(ctx, `
			DELETE FROM addresses WHERE customer_id = $1 AND id = $2 RETURNING is_default
		`, customerID, addressID).Scan(&wasDefault)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound("address")
			}
			return fmt.Errorf("delete address: %w", err)
		}
		if !wasDefault {
			return nil
		}

		var next string
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM addresses WHERE customer_id = $1 ORDER BY seq LIMIT 1
		`, customerID).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			return unsetDefaultID(ctx, tx, customerID)
		}
		if err != nil {
			return fmt.Errorf("find next default address: %w", err)
		}
		return setDefault(ctx, tx, customerID, next)
	})
}
