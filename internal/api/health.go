package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// probeTimeout bounds each readiness check.
const probeTimeout = 2 * time.Second

// Probe checks one dependency. A nil error means it is reachable.
type Probe func(ctx context.Context) error

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe (runs every registered dependency probe).
type HealthHandler struct {
	probes map[string]Probe
}

// NewHealthHandler constructs a HealthHandler with the provided probes.
//
// Parameters:
//   - probes (map[string]Probe): Named dependency checks, e.g. "analysis" and
//     "postgres". Nil entries are ignored.
//
// Returns:
//   - *HealthHandler: A new handler instance.
func NewHealthHandler(probes map[string]Probe) *HealthHandler {
	return &HealthHandler{probes: probes}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: 200 when every probe succeeds, 503 with per-probe results otherwise.
//
// Parameters:
//   - r (*gin.Engine): The Gin router to register routes on.
func (h *HealthHandler) Register(r *gin.Engine) {
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// @Summary      Readiness probe
	// @Description  Returns ready if the analysis service and the history database are reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]any
	// @Failure      503  {object}  map[string]any
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		checks, ok := h.check(c.Request.Context())
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
	})
}

func (h *HealthHandler) check(ctx context.Context) (map[string]string, bool) {
	names := make([]string, 0, len(h.probes))
	for name, probe := range h.probes {
		if probe != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	ok := true
	for _, name := range names {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := h.probes[name](pctx)
		cancel()
		if err != nil {
			checks[name] = err.Error()
			ok = false
			continue
		}
		checks[name] = "ok"
	}
	return checks, ok
}
