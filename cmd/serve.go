package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/djcass44/debview/pkg/viewer"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the package browser over http",
	RunE:  serve,
}

const (
	flagListen  = "listen"
	flagPreload = "preload"

	defaultListen   = ":8080"
	shutdownTimeout = 5 * time.Second
)

func init() {
	addSourceFlags(serveCmd)
	serveCmd.Flags().String(flagListen, "", "address to listen on (default \""+defaultListen+"\")")
	serveCmd.Flags().Bool(flagPreload, false, "read the status file on startup rather than on the first request")
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	log := logr.FromContextOrDiscard(ctx)

	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString(flagListen); listen != "" {
		cfg.Spec.Listen = listen
	}
	if cfg.Spec.Listen == "" {
		cfg.Spec.Listen = defaultListen
	}
	if preload, _ := cmd.Flags().GetBool(flagPreload); preload {
		cfg.Spec.Preload = true
	}

	sources, err := getSources(ctx, cfg.Spec)
	if err != nil {
		return err
	}
	v := viewer.NewViewer(ctx, sources...)

	// a missing status file is reported by the
	// server, so it's not fatal here
	if cfg.Spec.Preload {
		if err := v.Preload(ctx); err != nil {
			log.Error(err, "failed to preload package index")
		}
	}

	srv := &http.Server{
		Addr:              cfg.Spec.Listen,
		Handler:           v.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
