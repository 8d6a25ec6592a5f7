package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/agentcatalog/internal/api"
	"github.com/user/agentcatalog/internal/config"
	"github.com/user/agentcatalog/internal/hub"
	"github.com/user/agentcatalog/internal/registry"
	"github.com/user/agentcatalog/internal/server"
	"github.com/user/agentcatalog/internal/telemetry"
	"github.com/user/agentcatalog/internal/watcher"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog API, live reload channel and static site",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
	cmd.Flags().String("addr", config.DefaultAddr, "Listen address")
	cmd.Flags().String("static-dir", "", "Directory served for non-API paths")
	cmd.Flags().Bool("watch", false, "Reload templates when files change")
	return cmd
}

func runServe(ctx context.Context) error {
	logger := slog.Default()

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	frameworks, err := loadFrameworks()
	if err != nil {
		return err
	}

	metrics := telemetry.NewMetrics()
	metrics.SetTemplates(reg.Len())

	h := hub.New(logger)
	h.SetOnClientCount(metrics.SetClients)
	h.NotifyCatalog(reg.Len())

	srv, err := server.New(server.Options{
		Addr:      cfg.Addr,
		StaticDir: cfg.StaticDir,
		Hub:       h,
		Metrics:   metrics,
		API:       api.NewRouter(reg, frameworks, metrics),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nagentcatalog serving %d templates at http://%s\n\n", reg.Len(), srv.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if cfg.Watch {
		w, err := watcher.New(&watcher.Config{
			Dir:      cfg.TemplatesDir,
			Logger:   logger,
			OnChange: reloadFunc(reg, h, metrics, logger),
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			return w.Start(gctx)
		})
	}
	return g.Wait()
}

// reloadFunc re-reads the templates directory and tells connected clients.
// A failed reload keeps serving the previous snapshot.
func reloadFunc(reg *registry.Registry, h *hub.Hub, metrics *telemetry.Metrics, logger *slog.Logger) func() {
	return func() {
		err := reg.Reload()
		metrics.RecordReload(err, reg.Len())
		if err != nil {
			logger.Error("template reload failed", "error", err)
			h.NotifyReloadError(err)
			return
		}
		logger.Info("templates reloaded", "count", reg.Len())
		h.NotifyCatalog(reg.Len())
	}
}
