// Package api serves the HTTP status surface: a small JSON API for the
// latest snapshot and usage history, plus the Prometheus endpoint.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sysmon-pro/sysmon/internal/history"
	"github.com/sysmon-pro/sysmon/internal/log"
	"github.com/sysmon-pro/sysmon/internal/monitor"
)

// StatusPayload is the /api/status response body.
type StatusPayload struct {
	Timestamp time.Time              `json:"timestamp"`
	Status    string                 `json:"status"`
	Usage     monitor.Snapshot       `json:"usage"`
	NetDisk   monitor.NetDiskMetrics `json:"net_disk"`
	Battery   monitor.BatteryInfo    `json:"battery"`
	Thermals  monitor.Thermals       `json:"thermals"`
}

// StatusProvider returns the latest assembled status view.
type StatusProvider func() StatusPayload

type Server struct {
	echo    *echo.Echo
	status  StatusProvider
	history *history.Store
	metrics *Metrics
}

func NewServer(status StatusProvider, hist *history.Store, metrics *Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, status: status, history: hist, metrics: metrics}
	e.GET("/healthz", s.getHealth)
	e.GET("/api/status", s.getStatus)
	e.GET("/api/history", s.getHistory)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	return s
}

// Start serves in the background; startup failure is logged, not fatal,
// because the monitor keeps working without its HTTP surface.
func (s *Server) Start(addr string) {
	go func() {
		log.Info().Str("addr", addr).Msg("status API listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("status API failed")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) getHealth(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.status())
}

func (s *Server) getHistory(ctx echo.Context) error {
	if s.history == nil {
		return ctx.JSON(http.StatusOK, map[string]interface{}{
			"count":  0,
			"points": []history.Point{},
		})
	}
	limit := 60
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsed
	}
	points, err := s.history.Recent(ctx.Request().Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("history query failed")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to read history",
		})
	}
	if points == nil {
		points = []history.Point{}
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"count":  len(points),
		"points": points,
	})
}
