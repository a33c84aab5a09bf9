package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/brokerd/internal/logger"
	"github.com/marmos91/brokerd/internal/server"
	"github.com/marmos91/brokerd/pkg/broker/events"
	"github.com/marmos91/brokerd/pkg/broker/gate"
	"github.com/marmos91/brokerd/pkg/broker/router"
	"github.com/marmos91/brokerd/pkg/config"
	"github.com/marmos91/brokerd/pkg/prompt"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure logger
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure log output: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("brokerd - per-tenant file broker")
	logger.Info("Log level set to: %s", cfg.Logging.Level)

	// Create stores
	fileStore, err := config.CreateFileStore(ctx, &cfg.Files)
	if err != nil {
		log.Fatalf("Failed to create file store: %v", err)
	}
	logger.Info("File store: %s (%s)", cfg.Files.Type, fileStore.Root())

	settingsStore, err := config.CreateSettingsStore(ctx, &cfg.Settings)
	if err != nil {
		log.Fatalf("Failed to create settings store: %v", err)
	}
	defer func() {
		if err := settingsStore.Close(); err != nil {
			logger.Warn("Settings store close error: %v", err)
		}
	}()
	logger.Info("Settings store: %s", cfg.Settings.Type)

	// Create the event recorder
	var sink events.Sink
	if cfg.Events.Enabled {
		fileSink, err := events.NewFileSink(cfg.Events.Directory)
		if err != nil {
			log.Fatalf("Failed to create event log: %v", err)
		}
		defer func() { _ = fileSink.Close() }()
		sink = fileSink
		logger.Info("Event log: %s", cfg.Events.Directory)
	}
	recorder := events.NewRecorder(sink, events.RecorderConfig{
		LogCommands: cfg.Events.LogCommands,
		LogResults:  cfg.Events.LogResults,
		LogAccess:   cfg.Events.LogAccess,
	})

	// Create the prompter. The daemon runs headless, so unknown tenants
	// get the configured policy answer. An interactive front end would
	// wire a prompt.Registry here instead.
	answer := prompt.ResponseDeny
	if cfg.Access.PromptDefault == "grant" {
		answer = prompt.ResponseGrant
	}
	prompter := prompt.NewStatic(answer)

	accessGate := gate.New(settingsStore, prompter, recorder, gate.Config{
		Enabled:       cfg.Access.Enabled,
		PromptEnabled: cfg.Access.Prompt,
	})
	commandRouter := router.New(fileStore)

	srv := server.New(server.Config{
		Listen:         cfg.Server.Listen,
		MaxConnections: cfg.Server.MaxConnections,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
	}, accessGate, commandRouter, recorder)

	logger.Info("Server configuration:")
	logger.Info("  Listen: %s", cfg.Server.Listen)
	if cfg.Server.MaxConnections > 0 {
		logger.Info("  Max connections: %d", cfg.Server.MaxConnections)
	} else {
		logger.Info("  Max connections: unlimited")
	}
	logger.Info("  Idle timeout: %v", cfg.Server.IdleTimeout)
	logger.Info("  Shutdown timeout: %v", cfg.Server.ShutdownTimeout)
	logger.Info("  Access control: enabled=%v prompt=%v", cfg.Access.Enabled, cfg.Access.Prompt)

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Broker is running on %s. Press Ctrl+C to stop.", cfg.Server.Listen)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error: %v", err)
			os.Exit(1)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Connections still open after %v, exiting anyway", cfg.Server.ShutdownTimeout)
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped")
	}
}
