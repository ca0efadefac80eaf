package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
)

// CookieName carries the console token for browser page loads.
const CookieName = "driven_token"

type Actor struct {
	UserID string
	Role   string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// Authorize checks the request's actor against p. A request without an
// actor is forbidden.
func Authorize(ctx context.Context, p *policy.Policy, action policy.Action, resource policy.Resource) error {
	a, ok := ActorFrom(ctx)
	if !ok {
		return fmt.Errorf("%w: no authenticated actor", domain.ErrForbidden)
	}
	return p.Check(a.Role, action, resource)
}

// Require rejects requests without a valid bearer token (header or cookie)
// and stores the token's actor in the request context.
func (m *TokenManager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			unauthorized(w, "authorization required")
			return
		}

		claims, err := m.Validate(raw)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}

		ctx := WithActor(r.Context(), Actor{UserID: claims.UserID, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
