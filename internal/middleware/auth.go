package middleware

import (
	"net/http"
	"strings"

	"github.com/mainhusharm/main-launch/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IdentityKey is the context key holding the verified token identity.
const IdentityKey = "identity"

// RequireToken verifies the bearer token and stores its identity in the context.
func RequireToken(jwtSecret string, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			util.Msg(c, http.StatusUnauthorized, "Missing Authorization Header")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			logger.WithError(err).WithField("path", c.Request.URL.Path).Warn("token verification failed")
			util.Msg(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		c.Set(IdentityKey, claims.Identity())
		c.Next()
	}
}

// CurrentIdentity returns the identity set by RequireToken.
func CurrentIdentity(c *gin.Context) (string, bool) {
	id := c.GetString(IdentityKey)
	return id, id != ""
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
