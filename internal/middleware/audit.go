package middleware

import (
	"github.com/mainhusharm/main-launch/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Audit writes one AuditLog row per request after it has been handled. The
// request body is not recorded.
func Audit(db *gorm.DB, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		identity, _ := CurrentIdentity(c)
		entry := models.AuditLog{
			Identity:  identity,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: truncate(c.Request.UserAgent(), 255),
		}
		if err := db.Create(&entry).Error; err != nil {
			logger.WithError(err).WithField("path", entry.Path).Error("write audit log")
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
