package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"keepkoro/internal/mcp"
	"keepkoro/internal/middleware"
	"keepkoro/internal/notes"
	"keepkoro/internal/session"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

//go:embed static
var staticFS embed.FS

type config struct {
	port     string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config{}

	cmd := &cobra.Command{
		Use:          "keepkoro",
		Short:        "Serve the KeepKoro notes board",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.port, "port", getEnv("PORT", "7521"), "HTTP listen port (env PORT)")
	cmd.Flags().StringVar(&cfg.logLevel, "log-level", getEnv("LOG_LEVEL", "info"), "debug, info, warn or error (env LOG_LEVEL)")

	return cmd
}

func run(ctx context.Context, cfg config) error {
	level, err := parseLevel(cfg.logLevel)
	if err != nil {
		return err
	}

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// Wire dependencies
	board := notes.NewBoard()
	noteSvc := notes.NewService(board)
	noteHandler := notes.NewHandler(noteSvc, logger)

	// Create MCP server
	mcpSrv := mcp.NewServer(noteSvc)

	handler, err := newMux(noteHandler, server.NewStreamableHTTPServer(mcpSrv))
	if err != nil {
		return err
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.port,
		Handler:      middleware.Logging(logger, session.Middleware(handler)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCtx, stop := signal.NotifyContext(context.WithoutCancel(ctx), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-sigCtx.Done()

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.port)
	logger.Info("endpoints available",
		"web", "http://localhost:"+cfg.port,
		"api", "http://localhost:"+cfg.port+"/api",
		"mcp", "http://localhost:"+cfg.port+"/mcp",
	)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newMux(noteHandler *notes.Handler, mcpHTTP http.Handler) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	// Static files
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("get static fs: %w", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	noteHandler.Register(mux)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
