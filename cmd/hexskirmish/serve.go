package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milk9111/hexskirmish/inspect"
	"github.com/milk9111/hexskirmish/prefabs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scenario over HTTP for inspection",
	Long: `Starts the inspect API on the configured address. With --watch, edits to
prefabs/ on disk reload the scenario and restart the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := cfg.Open(logger)
		if err != nil {
			return err
		}
		opts := []inspect.Option{inspect.WithLogger(logger), inspect.WithPrompt(g.Prompt)}
		if g.Producer != nil {
			opts = append(opts, inspect.WithProducer(g.Producer))
		}
		srv := inspect.New(g.Session, opts...)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Watch {
			if err := watchAndReload(ctx, srv); err != nil {
				logger.Warn("failed to watch prefabs", zap.Error(err))
			}
		}

		httpSrv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           srv,
			ReadHeaderTimeout: 5 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("inspect server listening", zap.String("addr", cfg.Addr), zap.String("scenario", cfg.Scenario))
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	},
}

// watchAndReload swaps a freshly opened session into srv whenever a scenario
// or script changes on disk, until ctx is done.
func watchAndReload(ctx context.Context, srv *inspect.Server) error {
	dirs := prefabs.OverrideDirs()
	if len(dirs) == 0 {
		return errors.New("no prefabs directory in the working directory")
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-w.Events:
				if !ok {
					return
				}
				g, err := cfg.Open(logger)
				if err != nil {
					logger.Warn("reload failed", zap.String("file", change.Path), zap.Bool("script", change.Script), zap.Error(err))
					continue
				}
				srv.Replace(g.Session, g.Producer, g.Prompt)
				logger.Info("scenario reloaded", zap.String("file", change.Path), zap.Bool("script", change.Script))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", zap.Error(err))
			}
		}
	}()
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	serveCmd.Flags().Bool("watch", false, "reload when prefabs/ changes on disk")
	_ = v.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("watch", serveCmd.Flags().Lookup("watch"))
	rootCmd.AddCommand(serveCmd)
}
