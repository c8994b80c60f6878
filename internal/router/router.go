// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API. Public reads need no token, comments need a login, and
// everything that mutates content is admin-only.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// Options carries the handler groups and settings the router wires up.
type Options struct {
	JWTSecret  string
	CORSOrigin string

	Articles   *handlers.Articles
	Comments   *handlers.Comments
	Categories *handlers.Categories
	Auth       *handlers.Auth
	AI         *handlers.AI
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(opts.CORSOrigin))
	r.Use(middleware.Authenticate(opts.JWTSecret))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Auth. Login and registration get a tighter rate limit to slow
		// down credential stuffing.
		loginLimiter := middleware.NewRateLimiter(10, time.Minute)
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Post("/auth/register", opts.Auth.Register)
			r.Post("/auth/login", opts.Auth.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/auth/me", opts.Auth.Me)
			r.Post("/auth/2fa/setup", opts.Auth.TwoFASetup)
			r.Post("/auth/2fa/verify", opts.Auth.TwoFAVerify)
		})

		// Public reads.
		r.Get("/articles", opts.Articles.List)
		r.Get("/articles/{slug}", opts.Articles.GetBySlug)
		r.Get("/articles/{slug}/comments", opts.Comments.GetThread)
		r.Get("/categories", opts.Categories.List)

		// Commenting needs a login but not the admin role.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/articles/{slug}/comments", opts.Comments.Create)
			r.Delete("/comments/{id}", opts.Comments.Delete)
		})

		// Content management and generation — admin only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/articles/all", opts.Articles.ListAll)
			r.Get("/articles/id/{id}", opts.Articles.GetByID)
			r.Post("/articles", opts.Articles.Create)
			r.Put("/articles/{id}", opts.Articles.Update)
			r.Delete("/articles/{id}", opts.Articles.Delete)

			r.Post("/categories", opts.Categories.Create)
			r.Put("/categories/{id}", opts.Categories.Update)
			r.Delete("/categories/{id}", opts.Categories.Delete)

			r.Post("/ai/generate-article", opts.AI.GenerateArticle)
			r.Get("/ai/status", opts.AI.Status)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
