package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denysvitali/share-viewer/pkg/config"
	"github.com/denysvitali/share-viewer/pkg/server"
	"github.com/denysvitali/share-viewer/pkg/telemetry"
	"github.com/denysvitali/share-viewer/pkg/theme"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the share viewer web widget",
	Long: `Start the web widget that accepts a share link and an optional password,
resolves the link through the lookup service and renders the shared files as a
collapsible tree.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().IntP("port", "p", 8000, "Port to listen on")
	serverCmd.Flags().String("host", "0.0.0.0", "Address to bind to")
	serverCmd.Flags().Bool("enable-metrics", true, "Expose Prometheus metrics on /metrics")
	serverCmd.Flags().Bool("enable-security", true, "Send a Content-Security-Policy header")
	serverCmd.Flags().Bool("system-dark", false, "Assume the system prefers a dark theme until the browser reports otherwise")
	serverCmd.Flags().Bool("enable-telemetry", false, "Enable OpenTelemetry tracing")
	serverCmd.Flags().String("otel-endpoint", "", "OpenTelemetry endpoint (if empty, uses auto-export)")

	// Bind flags to viper
	_ = viper.BindPFlag("server.port", serverCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serverCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.enable_metrics", serverCmd.Flags().Lookup("enable-metrics"))
	_ = viper.BindPFlag("server.enable_security", serverCmd.Flags().Lookup("enable-security"))
	_ = viper.BindPFlag("theme.system_dark", serverCmd.Flags().Lookup("system-dark"))
	_ = viper.BindPFlag("telemetry.enabled", serverCmd.Flags().Lookup("enable-telemetry"))
	_ = viper.BindPFlag("telemetry.endpoint", serverCmd.Flags().Lookup("otel-endpoint"))
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := GetLogger()
	logger.Info("Starting share viewer server")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize telemetry if enabled
	if cfg.Telemetry.Enabled {
		logger.Info("Initializing OpenTelemetry")
		cleanup, err := telemetry.Initialize(cfg.Telemetry, logger)
		if err != nil {
			logger.Warnf("Failed to initialize telemetry: %v", err)
		} else {
			defer cleanup()
		}
	}

	// The browser reports later changes through /api/theme/system
	themes, closeThemes, err := openThemes(cfg, theme.SystemPreferenceFunc(func() bool {
		return cfg.Theme.SystemDark
	}))
	if err != nil {
		return err
	}
	defer closeThemes()

	// Create and start server
	srv, err := server.New(cfg, logger, themes)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for interrupt signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-interrupt:
		logger.Infof("Received signal %v, shutting down...", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Errorf("Server shutdown error: %v", err)
			return err
		}

		logger.Info("Server stopped gracefully")
		return nil
	}
}
