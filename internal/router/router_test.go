package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mainhusharm/main-launch/internal/config"
	"github.com/mainhusharm/main-launch/internal/database"
	"github.com/mainhusharm/main-launch/internal/logging"
	"github.com/mainhusharm/main-launch/internal/models"
	"github.com/mainhusharm/main-launch/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const indexHTML = `<!doctype html><title>journal</title><div id="root"></div>`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexHTML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "favicon.svg"), []byte("<svg/>"), 0o644))

	return &config.Config{
		Profile:  config.Development,
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: "router-test-secret"},
		CORS:     config.CORSConfig{Origins: []string{"*"}},
		Admin:    config.AdminConfig{MPin: "180623"},
		Static:   config.StaticConfig{Dir: dir},
		Database: config.DatabaseConfig{URL: "sqlite:///:memory:"},
	}
}

func newRouter(t *testing.T, db *gorm.DB, groups Groups) (*gin.Engine, *config.Config) {
	cfg := testConfig(t)
	if db != nil {
		cfg.Audit.Enabled = true
	}
	return SetupRouter(Deps{Config: cfg, DB: db, Logger: logging.Discard(), Groups: groups}), cfg
}

func send(r http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestPreflightOnEveryPath(t *testing.T) {
	r, _ := newRouter(t, nil, Groups{})
	for _, p := range []string{"/", "/api/admin/mpin-auth", "/api/nope", "/deep/link", "/socket.io/"} {
		w := send(r, http.MethodOptions, p, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, p)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), p)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Headers"), p)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Methods"), p)
	}
}

func TestMPinAuthFlow(t *testing.T) {
	r, cfg := newRouter(t, nil, Groups{})

	w := send(r, http.MethodPost, "/api/admin/mpin-auth", `{"mpin":"000000"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"msg":"Invalid M-PIN"}`, w.Body.String())

	w = send(r, http.MethodPost, "/api/admin/mpin-auth", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"msg":"Missing M-PIN"}`, w.Body.String())

	w = send(r, http.MethodPost, "/api/admin/mpin-auth", `not json`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Unprocessable entity", decode(t, w)["error"])

	for i := 0; i < 3; i++ {
		w = send(r, http.MethodPost, "/api/admin/mpin-auth", `{"mpin":"180623"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
		token, _ := decode(t, w)["access_token"].(string)
		require.NotEmpty(t, token)

		claims, err := util.ParseToken(cfg.JWT.Secret, token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Identity())

		w = send(r, http.MethodPost, "/api/admin/validate-token", "", http.Header{"Authorization": {"Bearer " + token}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	}

	w = send(r, http.MethodPost, "/api/admin/validate-token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotFoundAndFallback(t *testing.T) {
	r, _ := newRouter(t, nil, Groups{})

	w := send(r, http.MethodGet, "/api/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, map[string]any{
		"error":   "Not found",
		"message": "The endpoint /api/does-not-exist was not found",
	}, decode(t, w))

	w = send(r, http.MethodGet, "/some/frontend/route", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, indexHTML, w.Body.String())

	w = send(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, indexHTML, w.Body.String())

	w = send(r, http.MethodGet, "/favicon.svg", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<svg/>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "image/svg+xml")
}

func TestMethodNotAllowed(t *testing.T) {
	r, _ := newRouter(t, nil, Groups{})

	w := send(r, http.MethodGet, "/api/admin/mpin-auth", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Method not allowed", body["error"])
	assert.Equal(t, "The method GET is not allowed for this endpoint", body["message"])
	assert.Equal(t, []any{"POST"}, body["allowed_methods"])
}

func TestCORSHeaderOnRegularRequests(t *testing.T) {
	r, _ := newRouter(t, nil, Groups{})
	w := send(r, http.MethodPost, "/api/admin/mpin-auth", `{"mpin":"1"}`, http.Header{"Origin": {"https://journal.example"}})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

type fakeGroup struct {
	name   string
	routes map[string]gin.HandlerFunc
}

func (g fakeGroup) Name() string { return g.name }

func (g fakeGroup) Register(rg *gin.RouterGroup) {
	for p, h := range g.routes {
		rg.GET(p, h)
	}
}

func TestMountTable(t *testing.T) {
	names := []string{}
	prefixes := []string{}
	for _, m := range (Groups{}).Mounts() {
		names = append(names, m.Group.Name())
		prefixes = append(prefixes, m.Prefix)
	}
	assert.Equal(t, []string{"trades", "risk-plan", "auth", "user", "admin-auth", "telegram", "plan-generation", "accounts"}, names)
	assert.Equal(t, []string{"/api", "/api", "/api/auth", "/api", "/api/admin", "/api/telegram", "/api", "/api/accounts"}, prefixes)
}

func TestExternalGroupsAreMounted(t *testing.T) {
	groups := Groups{
		Trades: fakeGroup{name: "trades", routes: map[string]gin.HandlerFunc{
			"/trades": func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"trades": []any{}}) },
		}},
		Accounts: fakeGroup{name: "accounts", routes: map[string]gin.HandlerFunc{
			"/":       func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"accounts": []any{}}) },
			"/broken": func(c *gin.Context) { c.Status(http.StatusInternalServerError) },
			"/panic":  func(c *gin.Context) { panic("boom") },
		}},
	}
	r, _ := newRouter(t, nil, groups)

	w := send(r, http.MethodGet, "/api/trades", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"trades":[]}`, w.Body.String())

	w = send(r, http.MethodGet, "/api/accounts/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, p := range []string{"/api/accounts/broken", "/api/accounts/panic"} {
		w = send(r, http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code, p)
		assert.JSONEq(t, `{"error":"Internal server error","message":"An unexpected error occurred on the server"}`, w.Body.String(), p)
	}
}

func TestAdminRequestsAreAudited(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "audit.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))

	r, _ := newRouter(t, db, Groups{})
	send(r, http.MethodPost, "/api/admin/mpin-auth", `{"mpin":"180623"}`, nil)
	send(r, http.MethodGet, "/dashboard", "", nil)

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "/api/admin/mpin-auth", logs[0].Path)
	assert.Equal(t, http.StatusOK, logs[0].Status)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newRouter(t, nil, Groups{})
	send(r, http.MethodPost, "/api/admin/mpin-auth", `{"mpin":"000000"}`, nil)

	w := send(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "journal_http_requests_total")
}
