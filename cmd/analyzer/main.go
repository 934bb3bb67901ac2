package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"market-khabri/internal/khabri/app"
	"market-khabri/internal/khabri/config"
	"market-khabri/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	configPath    string
	upcomingLimit int
	latestLimit   int
	symbol        string
)

// withApp loads configuration, wires the services and runs fn with them.
func withApp(fn func(ctx context.Context, khabri *app.App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	khabri, closeApp, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeApp()

	return fn(ctx, khabri)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL...",
	Short: "Run the results pipeline for one or more companies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, khabri *app.App) error {
			for _, sym := range args {
				record, err := khabri.Pipeline.Run(ctx, sym)
				if err != nil {
					return fmt.Errorf("analysis of %s failed: %w", sym, err)
				}
				if err := printJSON(record); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List upcoming result dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, khabri *app.App) error {
			return printJSON(khabri.Dates.ListUpcoming(ctx, upcomingLimit))
		})
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "List the most recently analysed results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, khabri *app.App) error {
			records, err := khabri.Pipeline.Latest(ctx, latestLimit)
			if err != nil {
				return err
			}
			return printJSON(records)
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat about analysed companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, khabri *app.App) error {
			sessionID := khabri.Chat.NewSession("")
			fmt.Println("Ask about a company (empty line to quit).")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					return nil
				}
				reply, _ := khabri.Chat.Ask(ctx, sessionID, question, symbol)
				fmt.Println(reply)
			}
		})
	},
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "analyzer",
		Short: "Command line access to the Market Khabri pipeline",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-khabri.yaml", "Path to the configuration file")
	upcomingCmd.Flags().IntVarP(&upcomingLimit, "limit", "n", 20, "Maximum number of events")
	latestCmd.Flags().IntVarP(&latestLimit, "limit", "n", 10, "Maximum number of records")
	chatCmd.Flags().StringVarP(&symbol, "symbol", "s", "", "Company the conversation is about")

	rootCmd.AddCommand(analyzeCmd, upcomingCmd, latestCmd, chatCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error executing analyzer CLI: %s", err)
		os.Exit(1)
	}
}
