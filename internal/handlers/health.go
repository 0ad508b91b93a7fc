package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/estatehub/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout bounds all readiness checks of one request.
	HealthCheckTimeout = 2 * time.Second
)

// Pinger reports whether a dependency is reachable. *database.Database and
// *storage.AferoStore satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency is a named readiness check.
type Dependency struct {
	Name   string
	Pinger Pinger
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	deps      []Dependency
	startTime time.Time
	env       string
}

// NewHealthHandler creates a HealthHandler that reports ready only when
// every dependency answers.
func NewHealthHandler(env string, deps ...Dependency) *HealthHandler {
	return &HealthHandler{
		deps:      deps,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse maps each dependency to "up" or "down".
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health. It checks no dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// Ready handles GET /health/ready. Returns 503 when any dependency fails to
// answer within HealthCheckTimeout.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(h.deps))}
	for _, dep := range h.deps {
		if err := dep.Pinger.Ping(ctx); err != nil {
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Readiness check failed", err, map[string]interface{}{
					"dependency": dep.Name,
					"timeout":    HealthCheckTimeout.String(),
				})
			}
			resp.Status = "not_ready"
			resp.Checks[dep.Name] = "down"
			continue
		}
		resp.Checks[dep.Name] = "up"
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Info handles GET /api/v1/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
	})
}

// formatUptime renders d as "Xd Xh Xm Xs", omitting days when zero.
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	seconds := (d - minutes*time.Minute) / time.Second

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", int(days), int(hours), int(minutes), int(seconds))
	}
	return fmt.Sprintf("%dh %dm %ds", int(hours), int(minutes), int(seconds))
}
