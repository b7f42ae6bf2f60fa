// Tine is the login gateway: an SRP-6 authentication server, realm
// directory, and world-handshake endpoint for a legacy MMORPG client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/idewave/tine/internal/config"
	"github.com/idewave/tine/internal/gateway"
	"github.com/idewave/tine/internal/lifecycle"
	"github.com/idewave/tine/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	configPath := flag.String("config", "/etc/tine/config.yaml", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger := logging.New(logging.LevelError, logging.FormatJSON)
		logger.Error("gateway failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(parseLogLevel(cfg.Logging.Level), parseLogFormat(cfg.Logging.Format))
	logger.Info("tine gateway starting", map[string]any{
		"version":     version,
		"commit":      commit,
		"login_addr":  fmt.Sprintf("%s:%d", cfg.Login.Address, cfg.Login.Port),
		"world_addr":  fmt.Sprintf("%s:%d", cfg.World.Address, cfg.World.Port),
		"realm_count": fmt.Sprintf("%d-%d", cfg.Realms.CountMin, cfg.Realms.CountMax),
	})

	shutdownManager := lifecycle.NewShutdownManager()
	ctx := shutdownManager.Start(context.Background())

	loginServer := gateway.NewLoginServer(cfg, logger)
	worldServer := gateway.NewWorldServer(cfg, logger)

	errCh := make(chan error, 2)
	go func() { errCh <- loginServer.Run(ctx) }()
	go func() { errCh <- worldServer.Run(ctx) }()

	var runErr error
	for range 2 {
		if err := <-errCh; err != nil && runErr == nil {
			runErr = err
		}
	}

	logger.Info("tine gateway stopped", map[string]any{"reason": shutdownManager.Reason()})
	shutdownManager.Stop()

	return runErr
}

// loadConfig loads the configuration file, falling back to Default() when
// the file is absent so the gateway can start with zero configuration.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseLogFormat(format string) logging.LogFormat {
	if format == "human" {
		return logging.FormatHuman
	}
	return logging.FormatJSON
}
