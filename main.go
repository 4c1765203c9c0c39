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

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"

	"github.com/studio-sirbu/portfolio/internal/analytics"
	"github.com/studio-sirbu/portfolio/internal/catalog"
	"github.com/studio-sirbu/portfolio/internal/config"
	applog "github.com/studio-sirbu/portfolio/internal/log"
	"github.com/studio-sirbu/portfolio/internal/site"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	logger, closer := applog.Init(cfg.Log)
	defer closer.Close()
	gin.SetMode(cfg.GinMode)

	if cfg.Admin.Defaulted {
		logger.Warn("using default admin credentials; set ADMIN_USERNAME and ADMIN_PASSWORD")
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.LoadFile(cfg.CatalogFile); err != nil {
			return err
		}
	}
	content, err := site.Load(cfg.SiteFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := analytics.Open(ctx, cfg.DatabasePath, analytics.WithLogger(applog.WithComponent(logger, "analytics")))
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := newApp(cfg, logger, cat, content, store, cfg.Contact.Sender())
	if err != nil {
		return err
	}
	a.background(a.cleanupOldVisitorData)

	logger.Info("catalog loaded", "works", cat.Len(), "categories", len(cat.Categories()))
	logger.Info("admin access available at /admin/login")
	if gin.Mode() == gin.DebugMode {
		logger.Debug("admin token (dev only)", "token", a.adminToken)
	}
	if cfg.Tracking {
		logger.Info("privacy: visitor tracking enabled with hashed IP addresses")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "mode", gin.Mode())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	a.bg.Wait()
	return nil
}
