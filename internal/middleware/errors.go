package middleware

import (
	"net/http"

	"github.com/mainhusharm/main-launch/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponder fills in the uniform error body when a handler set an error
// status (c.Status, c.AbortWithStatus, c.AbortWithError) or recorded an error
// with c.Error, without writing a body.
func ErrorResponder() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// AbortWithStatus flushes the header but leaves the body empty
		if c.Writer.Size() > 0 {
			return
		}
		status := c.Writer.Status()
		if len(c.Errors) > 0 && status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}

		switch status {
		case http.StatusNotFound:
			util.NotFound(c)
		case http.StatusMethodNotAllowed:
			util.MethodNotAllowedResponse(c, nil)
		case http.StatusUnprocessableEntity:
			util.Unprocessable(c)
		case http.StatusInternalServerError:
			util.InternalError(c)
		}
	}
}

// Recovery turns a panic into the 500 body; the panic value is only logged.
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"panic": recovered,
		}).Error("recovered from panic")
		util.InternalError(c)
		c.Abort()
	})
}
