package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hyperjump/vecindex/internal/search"
	"github.com/hyperjump/vecindex/internal/server"
	"github.com/hyperjump/vecindex/internal/vector"
	"github.com/hyperjump/vecindex/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd returns the command that answers HTTP queries over a saved index.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [flags] <index.json>",
		Short: "Serve queries over a serialized index",
		Long: `Load a serialized index and answer queries over HTTP.
With --watch the index file is reloaded whenever it is rewritten.`,
		Args: cobra.ExactArgs(1),
		RunE: runServe,
	}
	cmd.Flags().String("host", "", "Listen host (default from config)")
	cmd.Flags().Int("port", 0, "Listen port (default from config)")
	cmd.Flags().Bool("watch", false, "Reload the index when the file changes")
	cmd.Flags().String("caption-field", "header", "Default caption field for queries")
	cmd.Flags().IntP("top-k", "k", 10, "Default number of results per query")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}

	indexPath := args[0]
	store, err := vector.LoadFile(indexPath)
	if err != nil {
		return err
	}
	logger.Info("index loaded", zap.String("path", indexPath), zap.Int("documents", store.Len()))

	emb, err := embedderFactory(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("create %s embedder: %w", cfg.Embedding.Provider, err)
	}
	defer emb.Close()

	engine := search.NewEngine(emb, search.WithLogger(logger))
	srv := server.NewServer(engine, store, indexPath, &cfg.Server, &cfg.Index, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		w := watcher.NewWatcher(indexPath, func(string) { _ = srv.Reload() }, watcher.WithLogger(logger))
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", indexPath, err)
		}
		defer w.Stop()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		return srv.Stop(shutdownCtx)
	}
}
