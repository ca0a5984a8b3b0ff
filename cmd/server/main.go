package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sharipovr/aws-url-shortener/internal/app"
	"github.com/sharipovr/aws-url-shortener/internal/config"
	"github.com/sharipovr/aws-url-shortener/internal/logging"
	"github.com/sharipovr/aws-url-shortener/internal/transport/client"
)

var rootCmd = &cobra.Command{
	Use:   "url-shortener",
	Short: "A URL shortening service written in Go",
	Long:  "A URL shortening service with click counting and pluggable storage (memory, SQLite, PostgreSQL, Redis or DynamoDB)",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the URL shortening server",
	Long:  "Start the URL shortening server. Configuration is read from the environment and an optional .env file; flags override both.",
	RunE:  runServer,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var createCmd = &cobra.Command{
	Use:   "create [URL]",
	Short: "Create a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateLink,
}

var getCmd = &cobra.Command{
	Use:   "get [SHORT_CODE]",
	Short: "Get information about a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetLink,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [SHORT_CODE]",
	Short: "Resolve a short URL and count a click",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	// Server command flags, defaults mirror the environment defaults
	serverCmd.Flags().StringP("port", "p", "3000", "Server port (PORT)")
	serverCmd.Flags().String("base-url", "http://localhost:3000", "Prefix of returned short URLs (BASE_URL)")
	serverCmd.Flags().String("store", config.BackendSQLite, "Store backend: memory, sqlite, postgres, redis or dynamodb (STORE_BACKEND)")
	serverCmd.Flags().String("table", "url-shortener", "Table name or key prefix (TABLE_NAME)")
	serverCmd.Flags().String("db-path", "urls.db", "SQLite database file path (DB_PATH)")
	serverCmd.Flags().String("database-url", "", "PostgreSQL connection string (DATABASE_URL)")
	serverCmd.Flags().Bool("auto-migrate", false, "Create the PostgreSQL table on start (STORE_AUTO_MIGRATE)")
	serverCmd.Flags().String("redis-addr", "localhost:6379", "Redis address (REDIS_ADDR)")
	serverCmd.Flags().String("code-alphabet", "base62", "Short code alphabet: base62 or hex (CODE_ALPHABET)")
	serverCmd.Flags().Int("cache-size", 10000, "URL cache capacity (CACHE_SIZE)")
	serverCmd.Flags().Bool("no-cache", false, "Disable the URL cache (CACHE_ENABLED=false)")
	serverCmd.Flags().Int("click-workers", 4, "Click recorder workers, 0 records inline (CLICK_WORKERS)")
	serverCmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error (LOG_LEVEL)")
	serverCmd.Flags().String("log-format", logging.FormatJSON, "Log format: json or console (LOG_FORMAT)")
	serverCmd.Flags().BoolP("verbose", "v", false, "Log HTTP request and error response bodies (LOG_VERBOSE)")
	serverCmd.Flags().Bool("metrics", true, "Expose /metrics (METRICS_ENABLED)")

	// Client command flags
	clientCmd.PersistentFlags().StringP("server-url", "u", "http://localhost:3000", "Server URL")

	// Add subcommands
	clientCmd.AddCommand(createCmd, getCmd, resolveCmd)
	rootCmd.AddCommand(serverCmd, clientCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting URL shortener server",
		zap.String("port", cfg.Server.Port),
		zap.String("base_url", cfg.Server.BaseURL),
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	application, err := app.New(initCtx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("error closing application", zap.Error(err))
		}
	}()

	server := application.HTTPServer()

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		logger.Info("shutting down gracefully", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", zap.Error(err))
		}
	}

	logger.Info("server stopped")
	return nil
}

func newCommands(cmd *cobra.Command) *client.Commands {
	serverURL, _ := cmd.Flags().GetString("server-url")
	return client.NewCommands(client.NewClient(serverURL))
}

func runCreateLink(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return newCommands(cmd).Create(ctx, args[0])
}

func runGetLink(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return newCommands(cmd).Get(ctx, args[0])
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return newCommands(cmd).Resolve(ctx, args[0])
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
