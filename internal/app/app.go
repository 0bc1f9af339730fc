package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"horde-hunt/server/internal/config"
	servernet "horde-hunt/server/internal/net"
	"horde-hunt/server/internal/net/ws"
	"horde-hunt/server/internal/observability"
	"horde-hunt/server/internal/room"
	"horde-hunt/server/internal/telemetry"
	"horde-hunt/server/logging"
	loggingSinks "horde-hunt/server/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Addr          string
	ClientDir     string
	ConfigDir     string
	Logger        telemetry.Logger
	Logging       logging.Config
	Room          config.Config
	Observability observability.Config
}

// ConfigFromEnv reads the process environment on top of the defaults.
// Malformed values are reported through logger and ignored.
func ConfigFromEnv(logger telemetry.Logger) Config {
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	cfg := Config{
		Addr:      ":8080",
		ClientDir: filepath.Clean(filepath.Join("..", "client")),
		ConfigDir: filepath.Join("data", "rooms"),
		Logger:    logger,
		Logging:   logging.DefaultConfig(),
		Room:      config.Default(),
	}

	if raw := os.Getenv("ADDR"); raw != "" {
		cfg.Addr = raw
	}
	if raw := os.Getenv("CLIENT_DIR"); raw != "" {
		cfg.ClientDir = raw
	}
	if raw := os.Getenv("CONFIG_DIR"); raw != "" {
		cfg.ConfigDir = raw
	}
	if raw := os.Getenv("LOG_SINKS"); raw != "" {
		cfg.Logging.EnabledSinks = logging.ParseSinks(raw)
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.Logging.MinimumSeverity = logging.ParseSeverity(raw)
	}
	if raw := os.Getenv("LOG_JSON_PATH"); raw != "" {
		cfg.Logging.JSON.FilePath = raw
	}
	if raw := os.Getenv("LOG_ZAP_DEV"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Logging.Zap.Development = value
		} else {
			logger.Printf("invalid LOG_ZAP_DEV=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("ROOM_SEED"); raw != "" {
		cfg.Room.Seed = raw
	}
	if raw := os.Getenv("TICK_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.Room.Tick.IntervalMS = value
		} else {
			logger.Printf("invalid TICK_MS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("ENABLE_PPROF"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Observability.EnablePprof = value
		} else {
			logger.Printf("invalid ENABLE_PPROF=%q: %v", raw, err)
		}
	}
	return cfg
}

// buildSinks opens every sink named in cfg. Sinks close their own files when
// the router shuts down.
func buildSinks(cfg logging.Config) (sinks []logging.NamedSink, err error) {
	defer func() {
		if err == nil {
			return
		}
		for _, named := range sinks {
			named.Sink.Close(context.Background())
		}
		sinks = nil
	}()

	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsoleSink(os.Stdout)})
		case "json":
			if dir := filepath.Dir(cfg.JSON.FilePath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return sinks, fmt.Errorf("create json log dir: %w", err)
				}
			}
			file, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return sinks, fmt.Errorf("open json log: %w", err)
			}
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(file, cfg.JSON.FlushInterval)})
		case "zap":
			sink, err := loggingSinks.NewZap(cfg.Zap)
			if err != nil {
				return sinks, fmt.Errorf("build zap sink: %w", err)
			}
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: sink})
		default:
			return sinks, fmt.Errorf("unknown log sink %q", name)
		}
	}
	return sinks, nil
}

// Run serves the game until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}
	if err := cfg.Room.Validate(); err != nil {
		return fmt.Errorf("invalid room defaults: %w", err)
	}

	sinks, err := buildSinks(cfg.Logging)
	if err != nil {
		return err
	}

	router, err := logging.NewRouter(logging.ClockFunc(time.Now), cfg.Logging, sinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	if cfg.Logging.HasSink("json") {
		telemetryLogger.Printf("writing events to %s", cfg.Logging.JSON.FilePath)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	store, err := config.NewFileStore(cfg.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to open config store: %w", err)
	}

	counters := telemetry.NewCounters()
	manager := room.NewManager(ctx, cfg.Room, store, room.Deps{
		Publisher: router,
		Logger:    telemetryLogger,
		Metrics:   counters,
	})
	defer manager.Close()

	restored, err := manager.Restore()
	if err != nil {
		return err
	}
	if restored > 0 {
		telemetryLogger.Printf("restored %d rooms from %s", restored, cfg.ConfigDir)
	}

	wsHandler := ws.NewHandler(manager, ws.HandlerConfig{
		Logger:    telemetryLogger,
		Publisher: router,
		Metrics:   counters,
	})
	handler := servernet.NewHTTPHandler(manager, servernet.HTTPHandlerConfig{
		ClientDir:     cfg.ClientDir,
		Logger:        telemetryLogger,
		WebSocket:     http.HandlerFunc(wsHandler.Handle),
		Counters:      counters,
		Logging:       router,
		Started:       time.Now(),
		Observability: cfg.Observability,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		telemetryLogger.Printf("server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	telemetryLogger.Printf("server stopped")
	return nil
}
