// Package http est l'adapter primaire (driving) : il traduit les requêtes
// HTTP en appels aux ports du cœur et les erreurs du domaine en status codes.
// Le cœur, lui, ne connaît pas HTTP.
package http

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/jupiterclapton/inkwell/internal/core/ports"
)

type RouterConfig struct {
	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter assemble les routes et la chaîne de middlewares.
// Mêmes chemins que l'API historique (/api/v1/user, /api/v1/blog).
func NewRouter(identity ports.IdentityService, content ports.ContentService, cfg RouterConfig) http.Handler {
	users := NewUserHandler(identity, cfg.SecureCookies)
	blogs := NewBlogHandler(content)
	authed := RequireAuth(identity)

	mux := http.NewServeMux()

	// --- Routes publiques ---
	mux.HandleFunc("POST /api/v1/user/register", users.Register)
	mux.HandleFunc("POST /api/v1/user/login", users.Login)
	mux.HandleFunc("POST /api/v1/user/refresh", users.Refresh)
	mux.HandleFunc("GET /api/v1/blog/tags", blogs.GetTags)
	mux.HandleFunc("GET /api/v1/blog", blogs.List)
	mux.HandleFunc("GET /api/v1/blog/{id}", blogs.Get)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	// --- Routes protégées (gate d'autorisation) ---
	mux.Handle("GET /api/v1/user/me", authed(http.HandlerFunc(users.Me)))
	mux.Handle("PATCH /api/v1/user/me", authed(http.HandlerFunc(users.UpdateProfile)))
	mux.Handle("DELETE /api/v1/user/me", authed(http.HandlerFunc(users.DeleteAccount)))

	mux.Handle("POST /api/v1/blog/create", authed(http.HandlerFunc(blogs.Create)))
	mux.Handle("PATCH /api/v1/blog/{id}", authed(http.HandlerFunc(blogs.Update)))
	mux.Handle("DELETE /api/v1/blog/{id}", authed(http.HandlerFunc(blogs.Delete)))
	mux.Handle("PUT /api/v1/blog/{id}/like", authed(http.HandlerFunc(blogs.Like)))
	mux.Handle("PUT /api/v1/blog/{id}/unlike", authed(http.HandlerFunc(blogs.Unlike)))
	mux.Handle("POST /api/v1/blog/{id}/comment", authed(http.HandlerFunc(blogs.Comment)))
	mux.Handle("DELETE /api/v1/blog/{id}/comment/{commentId}", authed(http.HandlerFunc(blogs.DeleteComment)))

	// --- CORS (englobe tout) ---
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}
