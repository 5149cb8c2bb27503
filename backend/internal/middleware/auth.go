package middleware

import (
	"context"
	"net/http"

	"github.com/orangery/ams/backend/internal/auth"
	"github.com/orangery/ams/shared/domain"
	"github.com/orangery/ams/shared/logger"
	"github.com/orangery/ams/shared/utils"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (domain.Identity, error)
}

// Key to store the identity in the request context
type key int

const identityKey key = 0

type Auth struct {
	sessions SessionResolver
}

func NewAuth(sessions SessionResolver) *Auth {
	return &Auth{sessions: sessions}
}

// NeedAuth resolves the bearer token to a live identity and stores it in the request context.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := utils.BearerToken(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			identity, err := a.sessions.Resolve(r.Context(), token)
			if err != nil {
				logger.Log.Debug("session rejected", "path", r.URL.Path, "error", err)
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, &identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after NeedAuth.
func (a *Auth) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentityFromContext(r)
			if identity == nil {
				logger.Log.Error("role gate reached without a session", "path", r.URL.Path)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if err := auth.RequireRole(*identity, role); err != nil {
				logger.Log.Info("access denied", "user_id", identity.Id, "role", identity.Role, "required", role, "path", r.URL.Path)
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly chains NeedAuth with the admin role gate.
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	needAuth := a.NeedAuth()
	admin := a.RequireRole(domain.RoleAdmin)
	return func(next http.Handler) http.Handler {
		return needAuth(admin(next))
	}
}

func GetIdentityFromContext(r *http.Request) *domain.Identity {
	identity, ok := r.Context().Value(identityKey).(*domain.Identity)
	if !ok {
		return nil
	}
	return identity
}

// WithIdentity is used by handler tests to skip token resolution.
func WithIdentity(r *http.Request, identity domain.Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, &identity))
}
