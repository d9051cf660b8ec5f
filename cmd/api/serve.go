package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func runServe(cmd *cobra.Command, fs afero.Fs) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := newApp(cmd.Context(), cfg, log, fs)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("storage", cfg.Storage.Backend),
			zap.Stringer("max_upload_size", cfg.MaxUploadSize),
			zap.Bool("audit", cfg.AuditEnabled()),
			zap.Bool("admin", cfg.AdminEnabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return a.sweeper.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
