package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mbellgrove/linkweaver/internal/api"
	"github.com/mbellgrove/linkweaver/internal/id/uuid"
	"github.com/mbellgrove/linkweaver/internal/publisher"
	pubsubpublisher "github.com/mbellgrove/linkweaver/internal/publisher/pubsub"
	queuememory "github.com/mbellgrove/linkweaver/internal/queue/memory"
	"github.com/mbellgrove/linkweaver/internal/store"
	storepostgres "github.com/mbellgrove/linkweaver/internal/store/postgres"
	"github.com/mbellgrove/linkweaver/internal/worker"
)

const queueDepth = 64

// newServeCmd creates the 'serve' subcommand: the HTTP API plus the
// background resolution worker.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the resolution HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pipe, err := buildPipeline(cfg)
			if err != nil {
				return err
			}

			var resStore store.ResolutionStore = store.NoOpStore{}
			if cfg.DB.DSN != "" {
				pgStore, err := storepostgres.New(ctx, storepostgres.Config{
					DSN:      cfg.DB.DSN,
					Table:    cfg.DB.Table,
					MaxConns: int32(cfg.DB.MaxOpenConns),
				})
				if err != nil {
					return fmt.Errorf("build resolution store: %w", err)
				}
				defer pgStore.Close()
				resStore = pgStore
			}

			var pub publisher.Publisher
			if cfg.PubSub.ProjectID != "" && cfg.PubSub.TopicName != "" {
				p, err := pubsubpublisher.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
				if err != nil {
					return fmt.Errorf("build publisher: %w", err)
				}
				defer func() { _ = p.Close() }()
				pub = p
			}

			archive, closeArchive, err := buildArchive(ctx, cfg)
			if err != nil {
				return fmt.Errorf("build archive store: %w", err)
			}
			if closeArchive != nil {
				defer closeArchive()
			}

			q := queuememory.NewQueue(queueDepth)
			defer q.Close()

			w := worker.New(q, pipe, resStore, pub, archive, worker.Config{
				Topic:         cfg.PubSub.TopicName,
				ArchivePrefix: cfg.Download.Prefix,
			}, logger)
			go w.Run(ctx)

			server := api.NewServer(pipe, q, uuid.NewUUIDGenerator(), logger)
			httpServer := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown http server: %w", err)
				}
				return nil
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			}
		},
	}
}
