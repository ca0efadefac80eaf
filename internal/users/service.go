// Package users manages console staff accounts and their roles.
package users

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/validate"
)

// NoRole is reported for users without an assigned role.
const NoRole = "No Role"

type UserStore interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

type RoleStore interface {
	List(ctx context.Context) ([]domain.Role, error)
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, id string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	users  UserStore
	roles  RoleStore
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(users UserStore, roles RoleStore, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		roles:  roles,
		hasher: hasher,
		logger: logger,
	}
}

type CreateUserInput struct {
	Name     string  `json:"name" validate:"required,alphaspace"`
	Email    string  `json:"email" validate:"required,looseemail"`
	Phone    string  `json:"phone" validate:"required"`
	Password string  `json:"password" validate:"required,min=6"`
	RoleID   *string `json:"role_id"`
}

// UpdateUserInput leaves the password unchanged when Password is empty.
type UpdateUserInput struct {
	Name     string  `json:"name" validate:"required,alphaspace"`
	Email    string  `json:"email" validate:"required,looseemail"`
	Phone    string  `json:"phone" validate:"required"`
	Password string  `json:"password" validate:"omitempty,min=6"`
	RoleID   *string `json:"role_id"`
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].RoleName == "" {
			users[i].RoleName = NoRole
		}
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("user")
	}
	if u.RoleName == "" {
		u.RoleName = NoRole
	}
	return u, nil
}

func (s *Service) checkRole(ctx context.Context, roleID *string) (*string, error) {
	if roleID == nil || strings.TrimSpace(*roleID) == "" {
		return nil, nil
	}
	role, err := s.roles.GetByID(ctx, *roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.Invalid("role_id", "role does not exist")
	}
	return &role.ID, nil
}

func (s *Service) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	roleID, err := s.checkRole(ctx, in.RoleID)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{Name: in.Name, Email: in.Email, Phone: in.Phone, PasswordHash: hash, RoleID: roleID}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID)
	return s.Get(ctx, u.ID)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.RoleID, err = s.checkRole(ctx, in.RoleID); err != nil {
		return nil, err
	}
	u.Name, u.Email, u.Phone = in.Name, in.Email, in.Phone

	if in.Password != "" {
		if u.PasswordHash, err = s.hasher.Hash(in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", u.ID)
	return s.Get(ctx, u.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

type RoleInput struct {
	Name        string   `json:"name" validate:"required"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

func (in *RoleInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	perms := make([]string, 0, len(in.Permissions))
	for _, p := range in.Permissions {
		p = strings.TrimSpace(p)
		if p != "" && !slices.Contains(perms, p) {
			perms = append(perms, p)
		}
	}
	in.Permissions = perms
}

func (s *Service) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

func (s *Service) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.NotFound("role")
	}
	return role, nil
}

func (s *Service) CreateRole(ctx context.Context, in RoleInput) (*domain.Role, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	role := &domain.Role{Name: in.Name, Permissions: in.Permissions}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

func (s *Service) UpdateRole(ctx context.Context, id string, in RoleInput) (*domain.Role, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	role := &domain.Role{ID: id, Name: in.Name, Permissions: in.Permissions}
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("role updated", "role_id", role.ID)
	return role, nil
}

func (s *Service) DeleteRole(ctx context.Context, id string) error {
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("role deleted", "role_id", id)
	return nil
}
