package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sherk_portal/internal/config"
	"sherk_portal/internal/http/handlers"
	"sherk_portal/internal/identity"
	"sherk_portal/internal/repository"
	"sherk_portal/internal/service"
	"sherk_portal/internal/session"
	"sherk_portal/internal/ws"

	"github.com/gin-gonic/gin"
)

type offlineAuth struct{}

var errOffline = &identity.AuthError{Kind: identity.NetworkUnavailable, Message: "offline"}

func (offlineAuth) SignInWithPassword(context.Context, string, string) (*identity.Token, error) {
	return nil, errOffline
}
func (offlineAuth) SignUp(context.Context, identity.Credentials) (*identity.Token, error) {
	return nil, errOffline
}
func (offlineAuth) SignOut(context.Context, string) error { return nil }
func (offlineAuth) Refresh(context.Context, string) (*identity.Token, error) {
	return nil, errOffline
}

func newRouter(t *testing.T, storeErr error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>sherk</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Parse(func(k string) string {
		return map[string]string{
			"SUPABASE_URL":      "https://example.supabase.co",
			"SUPABASE_ANON_KEY": "anon",
			"JWT_SECRET":        "secret",
			"FRONTEND_DIR":      dir,
		}[k]
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	reg := session.NewRegistry(session.Deps{
		Auth: offlineAuth{},
		Stores: func(func() string) (repository.StakeStore, repository.ProfileStore) {
			return nil, nil
		},
	}, time.Hour)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Config:   cfg,
		Sessions: reg,
		JWT:      service.NewJWTManager(cfg.JWTSecret, time.Hour),
		Audit:    service.NewAuditService(nil),
		Hub:      ws.NewHub(),
		Checks: map[string]handlers.Check{
			"store": func(context.Context) error { return storeErr },
		},
	})
	return r
}

func get(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(`{"email":"a@example.com","password":"secret1"}`)))
	return w
}

func TestRoutes(t *testing.T) {
	r := newRouter(t, nil)
	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/content/landing", http.StatusOK},
		{http.MethodGet, "/api/v1/stake/preview?boom_nfts=1", http.StatusOK},
		{http.MethodGet, "/api/v1/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/admin/stakes", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/ws", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/auth/signin", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
		{http.MethodGet, "/dashboard", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := get(r, tt.method, tt.path)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Fatalf("missing request id")
			}
		})
	}
}

func TestHealthReportsStoreOutage(t *testing.T) {
	r := newRouter(t, errors.New("connection refused"))
	for _, path := range []string{"/health", "/readyz"} {
		if w := get(r, http.MethodGet, path); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s status = %d", path, w.Code)
		}
	}
	if w := get(r, http.MethodGet, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("liveness status = %d", w.Code)
	}
}
