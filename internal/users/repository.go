package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/postgres"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userSelect = `
	SELECT u.id, u.name, u.email, u.phone, u.password_hash, u.role_id, COALESCE(r.name, ''), u.created_at
	FROM users u
	LEFT JOIN roles r ON r.id = u.role_id
`

func scanUser(s interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var roleID sql.NullString
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &roleID, &u.RoleName, &u.CreatedAt); err != nil {
		return nil, err
	}
	if roleID.Valid {
		u.RoleID = &roleID.String
	}
	return &u, nil
}

// List returns users newest first with their role names joined in.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+` ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.ID = uuid.New().String()
	u.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, role_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.RoleID, u.CreatedAt)
	return postgres.Translate(err, "insert user", "email already registered")
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, phone = $4, password_hash = $5, role_id = $6
		WHERE id = $1
	`, u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.RoleID)
	if err != nil {
		return postgres.Translate(err, "update user", "email already registered")
	}
	return postgres.RequireAffected(result, "user")
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return postgres.RequireAffected(result, "user")
}

type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, permissions FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, pq.Array(&role.Permissions)); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		if role.Permissions == nil {
			role.Permissions = []string{}
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx, `SELECT id, name, permissions FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, pq.Array(&role.Permissions))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	return &role, nil
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	role.ID = uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO roles (id, name, permissions) VALUES ($1, $2, $3)
	`, role.ID, role.Name, pq.Array(role.Permissions))
	return postgres.Translate(err, "insert role", "role already exists")
}

func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE roles SET name = $2, permissions = $3 WHERE id = $1
	`, role.ID, role.Name, pq.Array(role.Permissions))
	if err != nil {
		return postgres.Translate(err, "update role", "role already exists")
	}
	return postgres.RequireAffected(result, "role")
}

// Delete removes the role. Users holding it are left without a role.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return postgres.RequireAffected(result, "role")
}
