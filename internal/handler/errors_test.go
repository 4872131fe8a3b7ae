package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"/api/admin/mpin-auth", "/api/admin/mpin-auth", true},
		{"/api/admin/mpin-auth", "/api/admin/mpin-auth/", true},
		{"/api/admin/mpin-auth", "/api/admin", false},
		{"/api/trades/:id", "/api/trades/42", true},
		{"/api/trades/:id", "/api/trades", false},
		{"/api/trades/:id", "/api/trades/42/legs", false},
		{"/static/*filepath", "/static/css/app.css", true},
		{"/", "/", true},
		{"/", "/x", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchPattern(tc.pattern, tc.path), "%s ~ %s", tc.pattern, tc.path)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.POST("/api/admin/mpin-auth", func(c *gin.Context) {})
	r.PUT("/api/admin/mpin-auth", func(c *gin.Context) {})
	r.NoMethod(MethodNotAllowed(r))

	w := get(r, http.MethodGet, "/api/admin/mpin-auth")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	var body struct {
		Error   string   `json:"error"`
		Message string   `json:"message"`
		Allowed []string `json:"allowed_methods"`
	}
	require.NoError(t, jsonDecode(w, &body))
	assert.Equal(t, "Method not allowed", body.Error)
	assert.Equal(t, "The method GET is not allowed for this endpoint", body.Message)
	assert.Equal(t, []string{"POST", "PUT"}, body.Allowed)
}
