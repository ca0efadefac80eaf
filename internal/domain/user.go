package domain

import "time"

// Built-in role names referenced by the access policy.
const (
	RoleAdmin            = "Admin"
	RoleEditor           = "Editor"
	RoleCatalogueManager = "CatalogueManager"
	RoleBlogManager      = "BlogManager"
)

type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	RoleID       *string   `json:"role_id"`
	RoleName     string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
