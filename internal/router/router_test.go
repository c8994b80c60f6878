package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/handlers"
)

// testRouter builds a router with empty handler groups. Requests that
// reach a handler would fail, so these tests only exercise routing and
// the middleware gates in front of the handlers.
func testRouter() http.Handler {
	return New(Options{
		JWTSecret:  "router-test-secret",
		CORSOrigin: "http://localhost:5173",
		Articles:   handlers.NewArticles(nil, nil),
		Comments:   handlers.NewComments(nil, nil, nil),
		Categories: handlers.NewCategories(nil),
		Auth:       handlers.NewAuth(nil, "router-test-secret"),
		AI:         handlers.NewAI(nil, nil, nil, ""),
	})
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if rr.Body.String() != `{"status":"ok"}` {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	cases := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/articles"},
		{http.MethodPut, "/api/articles/123"},
		{http.MethodDelete, "/api/articles/123"},
		{http.MethodGet, "/api/articles/all"},
		{http.MethodPost, "/api/categories"},
		{http.MethodPost, "/api/ai/generate-article"},
		{http.MethodPost, "/api/articles/some-slug/comments"},
		{http.MethodDelete, "/api/comments/123"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			testRouter().ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("got %d, want 401", rr.Code)
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/articles", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/nope/nothing", nil)
	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
}
