package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyaid/core/internal/config"
	"github.com/studyaid/core/internal/database"
	"github.com/studyaid/core/internal/modules/processing/ai"
	pkgredis "github.com/studyaid/core/internal/pkg/redis"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubCompleter struct{ reply string }

func (s stubCompleter) Complete(context.Context, ai.CompletionRequest) (string, error) {
	return s.reply, nil
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	ttl := 60
	return &config.AppConfig{
		Port: 8000,
		Database: config.DatabaseRuntimeConfig{
			Driver: config.DriverSQLite,
			Name:   filepath.Join(t.TempDir(), "app.db"),
		},
		AI: config.AIConfig{
			Provider:        config.ProviderGroq,
			APIKey:          "k",
			Model:           "m",
			TimeoutSeconds:  5,
			CacheTTLSeconds: &ttl,
		},
		RateLimit: config.RateLimitConfig{Max: 2, WindowSeconds: 60},
	}
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAppEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	db, err := database.Connect(cfg, true)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rc, err := pkgredis.Connect("redis://" + mr.Addr())
	require.NoError(t, err)

	a := newApp(zap.NewNop(), cfg, db, rc, stubCompleter{reply: `{"flashcards": [{"question": "Q", "answer": "A"}]}`})
	t.Cleanup(a.Shutdown)
	h := a.Router()

	assert.Equal(t, ":8000", a.Addr())

	w := do(h, http.MethodGet, "/health", "", nil)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
	w = do(h, http.MethodGet, "/db-ping", "", nil)
	assert.JSONEq(t, `{"db": "ok"}`, w.Body.String())

	w = do(h, http.MethodPost, "/createPro", `{"id": 1, "title": "Bio", "studyMaterial": "Cells"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(h, http.MethodPost, "/createPro", `{"id": 1, "title": "Bio", "studyMaterial": "Cells"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(h, http.MethodGet, "/projects", "", nil)
	assert.JSONEq(t, `[{"id": 1, "title": "Bio", "studyMaterial": "Cells"}]`, w.Body.String())

	body := `{"value": {"studyMaterial": "Cells"}}`
	for i := 0; i < 2; i++ {
		w = do(h, http.MethodPost, "/flashcards", body, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"result": {"flashcards": [{"question": "Q", "answer": "A"}]}}`, w.Body.String())
	}
	w = do(h, http.MethodPost, "/flashcards", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestAppWithoutCollaborators(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	a := newApp(zap.NewNop(), cfg, nil, nil, nil)
	h := a.Router()

	w := do(h, http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(h, http.MethodGet, "/db-ping", "", nil)
	assert.JSONEq(t, `{"db": "not configured"}`, w.Body.String())
	w = do(h, http.MethodPost, "/blurt", `{"value": {"studyMaterial": "m"}, "answer": "a"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(h, http.MethodPost, "/blurt", `{"value": {"studyMaterial": ""}, "answer": "a"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(h, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(h, http.MethodGet, "/blurt", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	a.Shutdown()
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	open := newApp(zap.NewNop(), testConfig(t), nil, nil, nil).Router()
	w := do(open, http.MethodGet, "/health", "", map[string]string{"Origin": "http://anywhere.test"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	cfg := testConfig(t)
	cfg.AllowedOrigins = []string{"*.example.com", "localhost:*"}
	restricted := newApp(zap.NewNop(), cfg, nil, nil, nil).Router()

	w = do(restricted, http.MethodGet, "/health", "", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	w = do(restricted, http.MethodGet, "/health", "", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	w = do(restricted, http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.test"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMatchOriginPattern(t *testing.T) {
	assert.True(t, matchOriginPattern("app.example.com", "app.example.com"))
	assert.True(t, matchOriginPattern("*.example.com", "a.b.example.com"))
	assert.False(t, matchOriginPattern("*.example.com", "example.org"))
	assert.True(t, matchOriginPattern("localhost:*", "localhost:3000"))
	assert.Equal(t, "localhost:3000", extractOriginHost("http://localhost:3000"))
	assert.Equal(t, "not a url", extractOriginHost("not a url"))
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestNewWithUnreachableDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database = config.DatabaseRuntimeConfig{
		Driver: config.DriverPostgres,
		URL:    "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=2",
	}
	core, logs := observer.New(zap.InfoLevel)

	a, err := New(zap.New(core), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)
	gin.SetMode(gin.TestMode)

	failed := logs.FilterLevelExact(zapcore.ErrorLevel).FilterMessage("database migration failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, config.DriverPostgres, failed[0].ContextMap()["driver"])

	h := a.Router()
	w := do(h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(h, http.MethodGet, "/db-ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"error"`)
}
