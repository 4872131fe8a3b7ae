package handler

import (
	"net/http"
	"sort"
	"strings"

	"github.com/mainhusharm/main-launch/internal/util"

	"github.com/gin-gonic/gin"
)

// spaMethods are the methods the frontend fallback answers.
var spaMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}

// MethodNotAllowed is the engine's NoMethod handler. It lists the methods
// registered for the request path.
func MethodNotAllowed(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		util.MethodNotAllowedResponse(c, AllowedMethods(engine.Routes(), c.Request.URL.Path))
	}
}

// AllowedMethods returns the sorted, de-duplicated methods of routes whose
// pattern matches path.
func AllowedMethods(routes gin.RoutesInfo, path string) []string {
	seen := map[string]struct{}{}
	for _, r := range routes {
		if matchPattern(r.Path, path) {
			seen[r.Method] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// matchPattern matches a gin route pattern (":param", "*wildcard") against path.
func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range ps {
		if strings.HasPrefix(seg, "*") {
			return true
		}
		if i >= len(xs) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if seg != xs[i] {
			return false
		}
	}
	return len(ps) == len(xs)
}
