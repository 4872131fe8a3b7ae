package router

import (
	"github.com/mainhusharm/main-launch/internal/config"
	"github.com/mainhusharm/main-launch/internal/handler"
	"github.com/mainhusharm/main-launch/internal/metrics"
	"github.com/mainhusharm/main-launch/internal/middleware"
	"github.com/mainhusharm/main-launch/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Groups supplies the route groups mounted under /api. A nil field keeps its
// prefix reserved without registering routes; AdminAuth defaults to the
// built-in M-PIN handler.
type Groups struct {
	Trades         handler.RouteGroup
	RiskPlan       handler.RouteGroup
	Auth           handler.RouteGroup
	User           handler.RouteGroup
	AdminAuth      handler.RouteGroup
	Telegram       handler.RouteGroup
	PlanGeneration handler.RouteGroup
	Accounts       handler.RouteGroup
}

// Mount pairs a path prefix with the group registered under it.
type Mount struct {
	Prefix string
	Group  handler.RouteGroup
}

// Deps is everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *logrus.Logger
	Hub    *realtime.Hub
	Groups Groups
}

// Mounts returns the mount table in registration order.
func (g Groups) Mounts() []Mount {
	return []Mount{
		{"/api", orReserved(g.Trades, "trades")},
		{"/api", orReserved(g.RiskPlan, "risk-plan")},
		{"/api/auth", orReserved(g.Auth, "auth")},
		{"/api", orReserved(g.User, "user")},
		{"/api/admin", orReserved(g.AdminAuth, "admin-auth")},
		{"/api/telegram", orReserved(g.Telegram, "telegram")},
		{"/api", orReserved(g.PlanGeneration, "plan-generation")},
		{"/api/accounts", orReserved(g.Accounts, "accounts")},
	}
}

func orReserved(g handler.RouteGroup, name string) handler.RouteGroup {
	if g == nil {
		return handler.Reserved(name)
	}
	return g
}

// SetupRouter builds the gin engine: middleware chain, route groups, realtime
// and metrics endpoints, error handlers and the frontend fallback.
func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestLogger(d.Logger),
		metrics.Middleware(),
		middleware.Recovery(d.Logger),
		middleware.Preflight(),
		middleware.CORS(cfg.CORS.Origins),
		middleware.ErrorResponder(),
	)

	groups := d.Groups
	if groups.AdminAuth == nil {
		groups.AdminAuth = handler.NewAdminAuthHandler(cfg.Admin, cfg.JWT.Secret, d.Logger.WithField("group", "admin-auth"))
	}

	for _, m := range groups.Mounts() {
		rg := r.Group(m.Prefix)
		if m.Prefix == "/api/admin" && cfg.Audit.Enabled && d.DB != nil {
			rg.Use(middleware.Audit(d.DB, d.Logger))
		}
		m.Group.Register(rg)
		d.Logger.WithFields(logrus.Fields{"prefix": m.Prefix, "group": m.Group.Name()}).Debug("route group mounted")
	}

	if d.Hub != nil {
		r.GET("/socket.io/", realtime.Handler(d.Hub, cfg.CORS.Origins))
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	static := handler.NewStaticHandler(cfg.Static.Dir)
	r.GET("/", static.Serve)
	r.HEAD("/", static.Serve)
	r.NoRoute(static.Serve)
	r.NoMethod(handler.MethodNotAllowed(r))

	return r
}
