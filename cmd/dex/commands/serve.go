package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/dex-web/internal/httpserver"
	"finitefield.org/dex-web/internal/platform/observability"
	"finitefield.org/dex-web/internal/widget"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the widget over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			shutdownTracing, err := observability.SetupTracing(cmd.Context(), observability.TracingConfig{
				Endpoint:    cfg.OTel.Endpoint,
				ServiceName: cfg.OTel.ServiceName,
			})
			if err != nil {
				return err
			}

			fetcher, err := buildFetcher(cfg, logger, 0)
			if err != nil {
				return err
			}
			store, err := widget.NewStore(fetcher,
				widget.WithIdleTTL(cfg.Widget.IdleTTL),
				widget.WithLogger(logger.Named("widget")),
			)
			if err != nil {
				return err
			}

			srv := httpserver.New(httpserver.Config{
				Address:      cfg.HTTP.Addr,
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
				IdleTimeout:  cfg.HTTP.IdleTimeout,
				Logger:       logger,
				Widgets:      store,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sweepCtx, sweepCancel := context.WithCancel(context.Background())
			var sweepWG sync.WaitGroup
			sweepWG.Add(1)
			go func() {
				defer sweepWG.Done()
				store.Run(sweepCtx, cfg.Widget.SweepInterval)
			}()

			serveErr := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			logger.Info("widget server listening",
				zap.String("addr", cfg.HTTP.Addr),
				zap.String("api", cfg.API.BaseURL),
				zap.String("locale", cfg.NameLocale),
			)

			var runErr error
			select {
			case <-ctx.Done():
			case runErr = <-serveErr:
				logger.Error("http server failed", zap.Error(runErr))
			}

			sweepCancel()
			sweepWG.Wait()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown failed", zap.Error(err))
				if runErr == nil {
					runErr = err
				}
			}
			store.Close()
			if err := shutdownTracing(shutdownCtx); err != nil {
				logger.Warn("flush traces failed", zap.Error(err))
			}
			logger.Info("widget server stopped")
			return runErr
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides DEX_HTTP_ADDR)")
	return cmd
}
