package main

//
//  @title           tickerdesk API
//  @version         1.0
//  @description     Query page host: pick a market, enter a ticker, run a stock analysis.
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/tickerdesk
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        pages
//  @tag.description Hosted query pages
//
//  @tag.name        history
//  @tag.description Recorded analysis requests
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/tickerdesk/config"
	_ "github.com/guttosm/tickerdesk/docs" // swagger docs
	"github.com/guttosm/tickerdesk/internal/analysis"
	"github.com/guttosm/tickerdesk/internal/app"
	"github.com/guttosm/tickerdesk/internal/logger"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: WebSocket streams stay open for the life of a page.
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (pages, DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown; cleanup
	// closes their pages, which ends the streams.
	cleanup()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the tickerdesk application.
//
// Modes (selected via --mode flag):
//   - query: Runs one query and prints each result as a JSON line.
//   - batch: Runs one query per ticker concurrently and prints one JSON line per ticker.
//   - serve: Starts the page host (REST, WebSocket stream, Swagger).
//
// Flags:
//   - --mode: Execution mode ("query", "batch" or "serve"). Default: "serve".
//   - --market: Market index or name (0, 1, Shanghai, Shenzhen, sh, sz). Default: "0".
//   - --ticker: Ticker for query mode.
//   - --tickers: Comma-separated tickers for batch mode.
//   - --parallel: Batch concurrency (1-16). Default: 4.
//   - --port: Port for serve mode. Defaults to value from config (SERVER_PORT).
func main() {
	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "serve", "Mode: query, batch or serve")
	market := flag.String("market", "0", "Market: 0|1|Shanghai|Shenzhen")
	ticker := flag.String("ticker", "", "Ticker for query mode (6 characters)")
	tickers := flag.String("tickers", "", "Comma-separated tickers for batch mode")
	parallel := flag.Int("parallel", 4, "How many queries to run concurrently in batch mode (max 16)")
	port := flag.String("port", "", "Port for serve mode (default SERVER_PORT)")
	flag.Parse()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Keep stdout for results in CLI modes
	if *mode != "serve" && os.Getenv("LOG_OUTPUT") == "" {
		_ = os.Setenv("LOG_OUTPUT", "stderr")
	}
	logger.Init()

	cfg := config.AppConfig
	client := analysis.NewHTTPClient(cfg.Analysis.URL, cfg.Analysis.HealthURL, cfg.Analysis.Timeout)

	switch *mode {
	case "query":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runQuery(ctx, client, *market, *ticker, os.Stdout, os.Stderr); err != nil {
			logger.L().Fatal().Err(err).Str("ticker", *ticker).Msg("query failed")
		}

	case "batch":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runBatch(ctx, client, *market, splitTickers(*tickers), *parallel, os.Stdout, os.Stderr); err != nil {
			logger.L().Fatal().Err(err).Msg("batch failed")
		}

	case "serve":
		logger.L().Info().Str("analyze_url", cfg.Analysis.URL).Bool("history", cfg.History.Enabled).Msg("starting page host")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		p := *port
		if p == "" {
			p = cfg.Server.Port
		}
		server := startServer(router, p)
		gracefulShutdown(context.Background(), server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
