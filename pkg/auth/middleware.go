package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/auth/policy"
	"github.com/de-tools/grc-admin/pkg/handlers/httpx"
	"github.com/de-tools/grc-admin/pkg/models/domain"
)

type ctxKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// UserID returns the caller's id, or "system" outside a request.
func UserID(ctx context.Context) string {
	if u, ok := UserFrom(ctx); ok {
		return u.ID
	}
	return "system"
}

// Authenticate requires a valid bearer token and stores its user in the
// request context.
func Authenticate(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				httpx.WriteError(w, r, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized))
				return
			}
			user, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}

			ctx := WithUser(r.Context(), user)
			logger := zerolog.Ctx(ctx).With().Str("user_id", user.ID).Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
		})
	}
}

// Authorizer checks the caller's roles against route requirements.
type Authorizer struct {
	engine *policy.Engine
}

func NewAuthorizer(engine *policy.Engine) *Authorizer {
	return &Authorizer{engine: engine}
}

// RequireRoles admits callers holding any of roles. Authenticate must run first.
func (a *Authorizer) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user, ok := UserFrom(ctx)
			if !ok {
				httpx.WriteError(w, r, fmt.Errorf("%w: not authenticated", domain.ErrUnauthorized))
				return
			}
			allowed, err := a.engine.Allowed(ctx, user.Roles, roles)
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			if !allowed {
				zerolog.Ctx(ctx).Warn().
					Strs("roles", user.Roles).
					Strs("required", roles).
					Msg("access denied")
				httpx.WriteError(w, r, domain.NewForbidden("requires one of roles: %s", strings.Join(roles, ", ")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
