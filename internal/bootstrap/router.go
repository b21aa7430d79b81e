package bootstrap

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/y4d-ngo/beneficiary-portal/internal/api/http"
	"github.com/y4d-ngo/beneficiary-portal/internal/api/http/middleware"
	authhttp "github.com/y4d-ngo/beneficiary-portal/internal/auth/http"
	authmw "github.com/y4d-ngo/beneficiary-portal/internal/auth/middleware"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth/service"
	"github.com/y4d-ngo/beneficiary-portal/internal/dashboard"
	projectshttp "github.com/y4d-ngo/beneficiary-portal/internal/projects/http"
	registrationshttp "github.com/y4d-ngo/beneficiary-portal/internal/registrations/http"
)

type RouterDeps struct {
	ServiceName string
	App         *App
	Auth        *service.AuthService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	app := dep.App
	cfg := app.Config
	logger := app.Logger

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestIDMiddleware(logger, app.Metrics))

	checks := map[string]httpapi.PingFunc{"store": app.Store.Ping}
	if app.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return app.Redis.Ping(ctx).Err() }
	} else {
		checks["redis"] = nil
	}
	httpapi.NewHealthHandler(dep.ServiceName, cfg.App.Version, checks).RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	api := r.Group("/api")

	limiter := middleware.NewClientRateLimiter(cfg.RateLimit.RegisterPerMinute, cfg.RateLimit.RegisterBurst)
	projects := projectshttp.New(app.Lifecycle, limiter, logger)
	projects.RegisterPublic(api.Group("/projects"))

	authhttp.New(dep.Auth, cfg.IsProduction(), logger).Register(api.Group("/admin/auth"))

	admin := api.Group("/admin")
	admin.Use(authmw.RequireAdmin(dep.Auth, logger))
	projects.RegisterAdmin(admin.Group("/projects"))
	projects.RegisterMaintenance(admin)
	registrationshttp.New(app.Lifecycle, logger).Register(admin.Group("/registrations"))
	dashboard.NewHandler(dashboard.NewService(app.Store), logger).Register(admin.Group("/dashboard"))

	return r
}
