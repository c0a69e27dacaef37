package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careloop/healthbuddy/config"
	"github.com/careloop/healthbuddy/internal/agent"
	"github.com/careloop/healthbuddy/internal/agent/telemetry"
)

// Run starts the HTTP API on the configured address.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	tele := telemetry.NewTelemetry(cfg.Telemetry, log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags))
	hb, err := agent.New(cfg, log.New(log.Writer(), "[HEALTHBUDDY] ", log.LstdFlags), tele)
	if err != nil {
		return err
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(tele.Registry(), promhttp.HandlerOpts{})))

	api := e.Group("/api")
	(&AssistantHandler{HB: hb}).Register(api)
	(&DoctorsHandler{HB: hb}).Register(api.Group("/doctors"))

	return e.Start(cfg.Server.Address)
}
