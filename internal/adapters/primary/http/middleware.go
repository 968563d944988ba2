package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
	"github.com/jupiterclapton/inkwell/internal/core/ports"
)

// Noms des cookies portant la paire de tokens.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Clé privée pour le contexte (évite les collisions)
type contextKey struct{ name string }

var userCtxKey = &contextKey{"user"}

// RequireAuth est le gate d'autorisation : il extrait le credential
// (header Bearer OU cookie accessToken), le vérifie, recharge le compte
// et attache un *domain.User TYPÉ au contexte. Pas de header ni cookie,
// token invalide, compte disparu : 401, le handler n'est jamais appelé.
func RequireAuth(identity ports.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeError(w, domain.ErrInvalidToken)
				return
			}

			user, err := identity.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, domain.ErrInvalidToken)
				return
			}

			// Le user attaché est déjà sanitized (sans hash) par le service.
			ctx := context.WithValue(r.Context(), userCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext récupère l'identité authentifiée posée par RequireAuth.
// Contrat explicite : les handlers protégés peuvent compter sur un user non-nil.
func ActorFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userCtxKey).(*domain.User)
	return user
}

func extractToken(r *http.Request) string {
	// 1. Header "Authorization: Bearer <token>" en priorité
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	// 2. Fallback : cookie de session
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
