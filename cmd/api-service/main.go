package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-khabri/internal/khabri/app"
	"market-khabri/internal/khabri/config"
	delivery "market-khabri/internal/khabri/delivery/http"
	"market-khabri/pkg/logger"

	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the Market Khabri API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Market Khabri API", logger.Field("name", cfg.App.Name))

	khabri, closeApp, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize services", logger.ErrorField(err))
	}
	defer closeApp()

	if cfg.Scheduler.Enabled {
		if err := khabri.Refresher.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start calendar refresher", logger.ErrorField(err))
		}
	}

	e := delivery.NewServer(
		delivery.NewAnalysisHandler(khabri.Dates, khabri.Pipeline, appLogger),
		delivery.NewChatHandler(khabri.Chat, appLogger),
		delivery.NewHealthHandler(khabri.Agents()),
		cfg.API.AllowOrigins,
		appLogger,
	)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Market Khabri API
// @version 1.0
// @description Quarterly results calendar, analysis pipeline and guarded chat.
// @BasePath /api
func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-khabri.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
