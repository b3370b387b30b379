package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tickerdesk/config"
	"github.com/guttosm/tickerdesk/internal/analysis"
	"github.com/guttosm/tickerdesk/internal/api"
	"github.com/guttosm/tickerdesk/internal/service"
	"github.com/guttosm/tickerdesk/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Builds the analysis HTTP client from cfg.Analysis.
//   - Connects to PostgreSQL using InitPostgres() when history is enabled.
//   - Creates the page registry and starts its idle sweeper.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes (analysis service, database).
//   - Provides a cleanup function that closes pages and the DB connection.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	client := newClient(cfg)

	var (
		db      *sql.DB
		history service.HistoryService
	)
	if cfg.History.Enabled {
		var err error
		// indirection for unit testing
		db, err = postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		history = service.NewHistoryService(storage.NewHistoryRepository(db))
	}

	registry := NewRegistry(client, history, cfg.Server.SessionTTL)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go registry.Run(sweepCtx, sweepInterval(cfg.Server.SessionTTL))

	handler := api.NewHandler(registry, history)
	router := api.NewRouter(handler)

	probes := map[string]api.Probe{"analysis": client.Ping}
	if db != nil {
		probes["postgres"] = db.PingContext
	}
	api.NewHealthHandler(probes).Register(router)

	cleanup := func() {
		stopSweep()
		registry.CloseAll()
		if db != nil {
			_ = db.Close()
		}
	}

	return router, cleanup, nil
}

func newClient(cfg config.Config) *analysis.HTTPClient {
	return analysis.NewHTTPClient(cfg.Analysis.URL, cfg.Analysis.HealthURL, cfg.Analysis.Timeout)
}

// sweepInterval checks for idle pages a few times per ttl.
func sweepInterval(ttl time.Duration) time.Duration {
	iv := ttl / 4
	if iv < time.Second {
		iv = time.Second
	}
	return iv
}
