package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/api"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/config"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/ingest"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/storage"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/summarize"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP ingestion server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the XML or YAML config file")
	return cmd
}

func runServer(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	maxUpload, err := cfg.MaxUploadBytes()
	if err != nil {
		return err
	}
	bodyLimit, err := cfg.BodyLimitBytes()
	if err != nil {
		return err
	}

	store, err := storage.NewDuckStore(ctx, cfg.GetDatabasePath(), storage.DuckOptions{
		Threads:     cfg.Advanced.DuckDBThreads,
		MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	gemini, err := summarize.NewGemini(ctx, summarize.Options{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		Timeout:     cfg.GeminiTimeout(),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize summarizer: %w", err)
	}
	defer gemini.Close()

	pipeline := ingest.New(ingest.Config{
		MaxFileSize: maxUpload,
		Logger:      logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		Logger:         logger,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.AllowedOrigins(),
		BodyLimitBytes: bodyLimit,
		LogRequests:    cfg.Advanced.EnableRequestLogging,
	})
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Pipeline:          pipeline,
		Formats:           pipeline.Formats(),
		ContentTypes:      ingest.AllowedContentTypes(),
		Summarizer:        gemini,
		Store:             store,
		Logger:            logger,
		AllowFileDeletion: cfg.Security.AllowFileDeletion,
		Version:           Version,
	}))

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(configPath, cfg, maxUpload)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func printBanner(configPath string, cfg *config.AppConfig, maxUpload int64) {
	limit := "unlimited"
	if maxUpload > 0 {
		limit = humanize.Bytes(uint64(maxUpload))
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           FileExplorer Gemini Server                      ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Model:      %-45s║\n", cfg.Gemini.Model)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Database:  %-46s║\n", cfg.GetDatabasePath())
	fmt.Printf("║  Max File:  %-46s║\n", limit)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}
