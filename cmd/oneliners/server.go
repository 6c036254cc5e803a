package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/brightpath/oneliners/internal/api"
	"github.com/brightpath/oneliners/internal/assistant"
	"github.com/brightpath/oneliners/internal/config"
	"github.com/brightpath/oneliners/internal/forms"
	"github.com/brightpath/oneliners/internal/openai"
	"github.com/brightpath/oneliners/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the oneliners server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "oneliners version %s\n", version)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if cfg.Server.APIToken == "" {
		return fmt.Errorf("missing required config: API token (ONELINERS_API_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire the pipeline.
	provider := openai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	formsClient := forms.NewClient(cfg.Forms.BaseURL, cfg.Forms.ConsumerKey, cfg.Forms.ConsumerSecret, cfg.Forms.PageSize)
	runner := assistant.NewRunner(provider, cfg.OpenAI.AssistantID)
	writer := openai.NewVectorWriter(provider, cfg.OpenAI.FilePurpose)
	orch := pipeline.New(formsClient, runner, provider, writer, cfg.Forms.FormID, cfg.OpenAI.VectorStoreID, cfg.OpenAI.EmbedModel)

	// Sanity-check the configured assistant; a bad id would otherwise only
	// surface minutes into the first run.
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	ok, err := provider.ValidateAssistant(checkCtx, cfg.OpenAI.AssistantID)
	cancel()
	switch {
	case err != nil:
		slog.Warn("could not validate assistant", "assistant_id", cfg.OpenAI.AssistantID, "error", err)
	case !ok:
		slog.Warn("configured assistant ID is not valid", "assistant_id", cfg.OpenAI.AssistantID)
	default:
		slog.Info("assistant validated", "assistant_id", cfg.OpenAI.AssistantID)
	}

	deps := api.Deps{
		Processor: orch,
		Entries:   formsClient,
		FormID:    cfg.Forms.FormID,
		Token:     cfg.Server.APIToken,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewHandler(deps),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// MCP server on stdio alongside the HTTP API.
	stdioSrv := server.NewStdioServer(api.NewMCPServer(deps))
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		slog.Info("oneliners listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
