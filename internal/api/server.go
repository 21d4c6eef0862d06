// Package api assembles the HTTP server: Echo with request middleware, the
// Huma-described /api/v1 surface, probes, and Prometheus metrics.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/price-alert-dispatcher/internal/api/handlers"
	mw "github.com/donaldgifford/price-alert-dispatcher/internal/api/middleware"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
)

// Deps are the services the API fronts.
type Deps struct {
	Store     store.Store
	Tracker   handlers.NotificationTracker
	Notifier  handlers.SystemNotifier
	Submitter handlers.ObservationSubmitter
	Checks    []handlers.Check
	Logger    *slog.Logger
	Version   string
}

// NewServer returns an Echo instance with every route registered.
func NewServer(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.Recovery(d.Logger))
	e.Use(mw.RequestLog(d.Logger))
	e.Use(mw.Metrics())

	health := handlers.NewHealthHandler(d.Checks...)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cfg := huma.DefaultConfig("price-alert-dispatcher", d.Version)
	cfg.Info.Description = "Alert rules, notification status, and observation intake."
	api := humaecho.New(e, cfg)

	handlers.RegisterRuleRoutes(api, handlers.NewRulesHandler(d.Store))
	handlers.RegisterOwnerRoutes(api, handlers.NewOwnersHandler(d.Store))
	handlers.RegisterNotificationRoutes(api, handlers.NewNotificationsHandler(d.Tracker, d.Notifier))
	handlers.RegisterObservationRoutes(api, handlers.NewObservationsHandler(d.Submitter))

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "route not found"})
	})

	return e
}
