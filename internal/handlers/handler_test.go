// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/ai"
	"inkwell/internal/auth"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

const handlerTestSecret = "handler-test-secret"

// mockAIProvider implements ai.Provider for handler tests.
type mockAIProvider struct {
	response string
	err      error
}

func (m *mockAIProvider) Name() string { return "mock" }
func (m *mockAIProvider) Generate(_ context.Context, _, _ string) (string, error) {
	return m.response, m.err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() {
		db.Exec(`DELETE FROM articles WHERE title LIKE 'htest %'`)
		db.Exec(`DELETE FROM categories WHERE slug LIKE 'htest-%'`)
		db.Exec(`DELETE FROM users WHERE email LIKE '%@handler-test.local'`)
		db.Close()
	})
	return db
}

// testEnv holds all dependencies for handler integration tests, plus a
// router wired the same way as the production one.
type testEnv struct {
	DB         *sql.DB
	Articles   *store.ArticleStore
	Comments   *store.CommentStore
	Categories *store.CategoryStore
	Users      *store.UserStore
	AIProvider *mockAIProvider
	Router     chi.Router
}

// newTestEnv creates a complete environment. The response cache is left
// nil so tests only need Postgres.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)

	articleStore := store.NewArticleStore(db)
	commentStore := store.NewCommentStore(db)
	categoryStore := store.NewCategoryStore(db)
	userStore := store.NewUserStore(db)

	provider := &mockAIProvider{response: "Title: htest Draft\n===\nbody"}
	registry := ai.NewRegistry("mock", nil)
	registry.Register("mock", provider)

	articles := NewArticles(articleStore, nil)
	comments := NewComments(commentStore, articleStore, nil)
	categories := NewCategories(categoryStore)
	authH := NewAuth(userStore, handlerTestSecret)
	aiH := NewAI(ai.NewGenerator(registry), registry, categoryStore, "mock-model")

	r := chi.NewRouter()
	r.Use(middleware.Authenticate(handlerTestSecret))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/auth/me", authH.Me)
			r.Post("/auth/2fa/setup", authH.TwoFASetup)
			r.Post("/auth/2fa/verify", authH.TwoFAVerify)
		})

		r.Get("/articles", articles.List)
		r.Get("/articles/{slug}", articles.GetBySlug)
		r.Get("/articles/{slug}/comments", comments.GetThread)
		r.Get("/categories", categories.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/articles/{slug}/comments", comments.Create)
			r.Delete("/comments/{id}", comments.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/articles/all", articles.ListAll)
			r.Get("/articles/id/{id}", articles.GetByID)
			r.Post("/articles", articles.Create)
			r.Put("/articles/{id}", articles.Update)
			r.Delete("/articles/{id}", articles.Delete)
			r.Post("/categories", categories.Create)
			r.Put("/categories/{id}", categories.Update)
			r.Delete("/categories/{id}", categories.Delete)
			r.Post("/ai/generate-article", aiH.GenerateArticle)
			r.Get("/ai/status", aiH.Status)
		})
	})

	return &testEnv{
		DB:         db,
		Articles:   articleStore,
		Comments:   commentStore,
		Categories: categoryStore,
		Users:      userStore,
		AIProvider: provider,
		Router:     r,
	}
}

// newUser creates an account directly in the store and returns it with a
// signed token.
func (e *testEnv) newUser(t *testing.T, role models.Role) (*models.User, string) {
	t.Helper()

	name := "u" + uuid.NewString()[:8]
	user, err := e.Users.Create(name, name+"@handler-test.local", "password123")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if role == models.RoleAdmin {
		if _, err := e.DB.Exec(`UPDATE users SET role = 'admin' WHERE id = $1`, user.ID); err != nil {
			t.Fatalf("promote user: %v", err)
		}
		user.Role = models.RoleAdmin
	}

	token, err := auth.IssueToken(user, handlerTestSecret)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, token
}

// do performs a request against the test router and decodes the JSON
// response into out (when non-nil).
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)

	if out != nil && rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr
}
