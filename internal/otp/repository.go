package otp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/postgres"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Replace deletes every earlier code for the email and stores rec.
func (r *Repository) Replace(ctx context.Context, rec *domain.OtpRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM otp_codes WHERE email = $1`, rec.Email); err != nil {
		return fmt.Errorf("delete otp codes: %w", err)
	}

	rec.ID = uuid.New().String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO otp_codes (id, email, code, is_verified, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.Email, rec.Code, rec.IsVerified, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert otp code: %w", err)
	}

	return tx.Commit()
}

// Latest returns the most recent code for the email, or nil.
func (r *Repository) Latest(ctx context.Context, email string) (*domain.OtpRecord, error) {
	var rec domain.OtpRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, code, is_verified, created_at
		FROM otp_codes WHERE email = $1
		ORDER BY created_at DESC LIMIT 1
	`, email).Scan(&rec.ID, &rec.Email, &rec.Code, &rec.IsVerified, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get otp code: %w", err)
	}
	return &rec, nil
}

func (r *Repository) MarkVerified(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE otp_codes SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark otp verified: %w", err)
	}
	return postgres.RequireAffected(result, "otp")
}
