package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SarthakSoni31/Driven-backend/internal/auth"
	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
)

type fakeUsers struct {
	items map[string]domain.User
	roles *fakeRoles
}

func (f *fakeUsers) withRole(u domain.User) domain.User {
	u.RoleName = ""
	if u.RoleID != nil {
		if r, ok := f.roles.items[*u.RoleID]; ok {
			u.RoleName = r.Name
		}
	}
	return u
}

func (f *fakeUsers) List(context.Context) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range f.items {
		out = append(out, f.withRole(u))
	}
	return out, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	u = f.withRole(u)
	return &u, nil
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	for _, o := range f.items {
		if o.Email == u.Email {
			return domain.Conflict("email already registered")
		}
	}
	u.ID = uuid.New().String()
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *domain.User) error {
	if _, ok := f.items[u.ID]; !ok {
		return domain.NotFound("user")
	}
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.NotFound("user")
	}
	delete(f.items, id)
	return nil
}

type fakeRoles struct {
	items map[string]domain.Role
}

func (f *fakeRoles) List(context.Context) ([]domain.Role, error) {
	out := []domain.Role{}
	for _, r := range f.items {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoles) GetByID(_ context.Context, id string) (*domain.Role, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeRoles) Create(_ context.Context, r *domain.Role) error {
	r.ID = uuid.New().String()
	f.items[r.ID] = *r
	return nil
}

func (f *fakeRoles) Update(_ context.Context, r *domain.Role) error {
	if _, ok := f.items[r.ID]; !ok {
		return domain.NotFound("role")
	}
	f.items[r.ID] = *r
	return nil
}

func (f *fakeRoles) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.NotFound("role")
	}
	delete(f.items, id)
	return nil
}

func newTestService() (*Service, *fakeUsers) {
	roles := &fakeRoles{items: make(map[string]domain.Role)}
	users := &fakeUsers{items: make(map[string]domain.User), roles: roles}
	svc := NewService(users, roles, auth.NewPasswordHasherWithCost(4), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, users
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	editor, err := svc.CreateRole(ctx, RoleInput{Name: " Editor ", Permissions: []string{"blog", "blog", " "}})
	require.NoError(t, err)
	assert.Equal(t, "Editor", editor.Name)
	assert.Equal(t, []string{"blog"}, editor.Permissions)

	u, err := svc.Create(ctx, CreateUserInput{
		Name: "Asha Rao", Email: " Asha@Example.com ", Phone: "9999999999", Password: "secret1", RoleID: &editor.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, "Editor", u.RoleName)
	assert.NotEqual(t, "secret1", store.items[u.ID].PasswordHash)
	assert.True(t, auth.NewPasswordHasher().Verify("secret1", store.items[u.ID].PasswordHash))

	tests := []struct {
		name  string
		in    CreateUserInput
		field string
	}{
		{"digits in name", CreateUserInput{Name: "R2D2", Email: "r@d.io", Phone: "1", Password: "secret1"}, "name"},
		{"bad email", CreateUserInput{Name: "Ravi", Email: "ravi", Phone: "1", Password: "secret1"}, "email"},
		{"short password", CreateUserInput{Name: "Ravi", Email: "r@d.io", Phone: "1", Password: "abc"}, "password"},
		{"unknown role", CreateUserInput{Name: "Ravi", Email: "r@d.io", Phone: "1", Password: "secret1", RoleID: ptr("nope")}, "role_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateUserInput{Name: "Other", Email: "asha@example.com", Phone: "1", Password: "secret1"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func ptr(s string) *string { return &s }

func TestUpdateUserKeepsPasswordWhenBlank(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	u, err := svc.Create(ctx, CreateUserInput{Name: "Asha", Email: "a@b.co", Phone: "1", Password: "secret1"})
	require.NoError(t, err)
	before := store.items[u.ID].PasswordHash

	got, err := svc.Update(ctx, u.ID, UpdateUserInput{Name: "Asha K", Email: "a@b.co", Phone: "2"})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", got.Name)
	assert.Equal(t, NoRole, got.RoleName)
	assert.Equal(t, before, store.items[u.ID].PasswordHash)

	_, err = svc.Update(ctx, u.ID, UpdateUserInput{Name: "Asha K", Email: "a@b.co", Phone: "2", Password: "newpass"})
	require.NoError(t, err)
	assert.NotEqual(t, before, store.items[u.ID].PasswordHash)
}

func TestListReportsNoRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	_, err := svc.Create(ctx, CreateUserInput{Name: "Asha", Email: "a@b.co", Phone: "1", Password: "secret1"})
	require.NoError(t, err)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, NoRole, users[0].RoleName)
}

func TestUserAdminRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc, policy.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	body := `{"name":"Asha","email":"a@b.co","phone":"1","password":"secret1"}`
	for role, want := range map[string]int{
		domain.RoleEditor: http.StatusForbidden,
		domain.RoleAdmin:  http.StatusCreated,
	} {
		req := httptest.NewRequest(http.MethodPost, "/admin/api/users", strings.NewReader(body))
		req = req.WithContext(auth.WithActor(req.Context(), auth.Actor{UserID: "x", Role: role}))
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}
