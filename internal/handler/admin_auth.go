package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/mainhusharm/main-launch/internal/config"
	"github.com/mainhusharm/main-launch/internal/metrics"
	"github.com/mainhusharm/main-launch/internal/middleware"
	"github.com/mainhusharm/main-launch/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminIdentity is the subject of every token issued by mpin-auth.
const AdminIdentity = "admin"

const maxAuthBody = 1 << 16

var (
	errMissingMPin = util.NewError(util.MissingCredential, "Missing M-PIN", nil)
	errInvalidMPin = util.NewError(util.InvalidCredential, "Invalid M-PIN", nil)
)

// AdminAuthHandler serves the admin M-PIN login and token probe.
type AdminAuthHandler struct {
	JWTSecret string
	MPin      string
	MPinHash  string
	Logger    logrus.FieldLogger
}

// NewAdminAuthHandler builds the handler from the admin settings.
func NewAdminAuthHandler(admin config.AdminConfig, jwtSecret string, logger logrus.FieldLogger) *AdminAuthHandler {
	return &AdminAuthHandler{
		JWTSecret: jwtSecret,
		MPin:      admin.MPin,
		MPinHash:  admin.MPinHash,
		Logger:    logger,
	}
}

func (h *AdminAuthHandler) Name() string { return "admin-auth" }

func (h *AdminAuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/validate-token", middleware.RequireToken(h.JWTSecret, h.Logger), h.ValidateToken)
	rg.POST("/mpin-auth", h.MPinAuth)
}

// ValidateToken only runs once RequireToken has accepted the token.
func (h *AdminAuthHandler) ValidateToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MPinAuth exchanges the admin M-PIN for a non-expiring access token.
func (h *AdminAuthHandler) MPinAuth(c *gin.Context) {
	h.Logger.Info("admin M-PIN authentication attempt")

	payload, err := readJSONObject(c.Request.Body)
	if err != nil {
		metrics.RecordAuthAttempt("malformed")
		h.Logger.WithError(err).Warn("admin M-PIN attempt with malformed body")
		util.Unprocessable(c)
		return
	}

	mpin, present := mpinValue(payload["mpin"])
	if !present {
		metrics.RecordAuthAttempt("missing")
		h.Logger.Warn("admin M-PIN attempt with missing M-PIN")
		util.Fail(c, errMissingMPin)
		return
	}

	if !util.MatchSecret(mpin, h.MPin, h.MPinHash) {
		metrics.RecordAuthAttempt("invalid")
		h.Logger.WithField("client_ip", c.ClientIP()).Warn("failed admin M-PIN attempt")
		util.Fail(c, errInvalidMPin)
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, AdminIdentity, 0)
	if err != nil {
		h.Logger.WithError(err).Error("issue admin token")
		util.InternalError(c)
		return
	}

	metrics.RecordAuthAttempt("success")
	h.Logger.Info("admin M-PIN authentication successful")
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// readJSONObject decodes body as a JSON object. An empty body is an empty object.
func readJSONObject(body io.Reader) (map[string]any, error) {
	payload := map[string]any{}
	if body == nil {
		return payload, nil
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxAuthBody))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		// literal null
		payload = map[string]any{}
	}
	return payload, nil
}

// mpinValue treats absent, null, "", false, 0, [] and {} as missing.
// Other non-string values are present but can never match.
func mpinValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		return "", x
	case float64:
		return "", x != 0
	case []any:
		return "", len(x) > 0
	case map[string]any:
		return "", len(x) > 0
	default:
		return "", true
	}
}
