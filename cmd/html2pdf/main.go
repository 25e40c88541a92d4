package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/use-agent/html2pdf/api"
	"github.com/use-agent/html2pdf/browser"
	"github.com/use-agent/html2pdf/config"
	"github.com/use-agent/html2pdf/converter"
	"github.com/use-agent/html2pdf/engine"
	"github.com/use-agent/html2pdf/metrics"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	// ── 1. Load configuration (env, then flags) ─────────────────────
	cfg := config.Load()
	bindFlags(cfg)
	flag.Parse()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		slog.Debug(fmt.Sprintf(format, args...))
	}))

	slog.Info("html2pdf starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"remote", cfg.Browser.ControlURL != "",
		"maxConcurrent", cfg.Converter.MaxConcurrent,
	)

	// ── 3. Browser binary locator ───────────────────────────────────
	var locator *browser.Locator
	if cfg.Browser.ControlURL == "" {
		locator = browser.NewLocator(cfg.Locator)
		if cfg.Locator.Prefetch {
			if err := locator.Warm(context.Background()); err != nil {
				// Conversions retry the resolution, so startup continues.
				slog.Error("browser prefetch failed", "error", err)
			}
		}
	}

	// ── 4. Converter + metrics ──────────────────────────────────────
	collector := metrics.NewCollector()
	rodEngine := engine.NewRodEngine(cfg.Browser.ControlURL)

	var conv *converter.Converter
	if locator != nil {
		conv = converter.New(rodEngine, locator, cfg.Browser, cfg.Converter)
	} else {
		conv = converter.New(rodEngine, nil, cfg.Browser, cfg.Converter)
	}
	conv.SetObserver(collector)
	slog.Info("converter ready", "engine", rodEngine.Name())

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(conv, cfg, collector, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// In-flight conversions tear their browsers down before returning.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("html2pdf stopped")
}

// bindFlags registers command-line overrides for the most common settings.
func bindFlags(cfg *config.Config) {
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "listen host")
	flag.IntVarP(&cfg.Server.Port, "port", "p", cfg.Server.Port, "listen port")
	flag.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	flag.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format: json or text")
	flag.StringVar(&cfg.Browser.ControlURL, "control-url", cfg.Browser.ControlURL, "DevTools URL of a running browser to use instead of launching one")
	flag.BoolVar(&cfg.Locator.Prefetch, "prefetch-browser", cfg.Locator.Prefetch, "resolve (and download) the browser binary at startup")
	flag.IntVar(&cfg.Converter.MaxConcurrent, "max-concurrent", cfg.Converter.MaxConcurrent, "maximum simultaneous conversions (0 = unlimited)")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
