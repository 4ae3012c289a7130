package server

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"presenced/pkg/config"
	"presenced/pkg/logger"
)

// Main is the entry point for the presence relay binary
func Main() {
	addr := flag.String("addr", "", "Listen address (overrides config)")
	configPath := flag.String("config", "", "Config file path (optional)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "", "Log format: text or json")
	reapInterval := flag.Int("reap-interval", 0, "Reap sweep interval in seconds (overrides config)")
	pollTimeout := flag.Int("poll-timeout", 0, "Poll client timeout in seconds (overrides config)")
	flag.Parse()

	// Load configuration (from file or defaults)
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Get().ErrorWithErr("failed to load configuration", err)
		os.Exit(1)
	}

	// Override config with command-line flags if provided
	if *addr != "" {
		cfg.Address = *addr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}
	if *reapInterval > 0 {
		cfg.Reaper.IntervalSeconds = *reapInterval
	}
	if *pollTimeout > 0 {
		cfg.Poll.TimeoutSeconds = *pollTimeout
	}

	// Initialize structured logger
	logger.Init(logger.LogLevel(cfg.Logging.Level), cfg.Logging.Format)
	log := logger.Get()

	log.InfoWith("configuration loaded", "address", cfg.Address,
		"reap_interval_seconds", cfg.Reaper.IntervalSeconds,
		"poll_timeout_seconds", cfg.Poll.TimeoutSeconds)

	srv := NewServer(cfg)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	errorChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errorChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.InfoWith("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.ErrorWithErr("error during shutdown", err)
		}
		log.InfoWith("server stopped")

	case err := <-errorChan:
		log.ErrorWithErr("server encountered fatal error", err)
		os.Exit(1)
	}
}
