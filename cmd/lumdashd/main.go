package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hnrobert/lumdash/internal/config"
	"github.com/hnrobert/lumdash/internal/datafs"
	"github.com/hnrobert/lumdash/internal/logger"
	"github.com/hnrobert/lumdash/internal/server"
	"github.com/hnrobert/lumdash/internal/users"
)

func main() {
	if err := run(); err != nil {
		logger.Error("lumdash: %v", err)
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LogDir); err != nil {
		logger.Warn("file logging disabled: %v", err)
	}

	secret, err := cfg.Secret()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		logger.Warn("LUMDASH_JWT_SECRET not set; sessions end on restart")
	}

	root := cfg.Root()
	dir := users.NewDirectory(root.MustPath(datafs.UsersFile))
	if err := dir.Ensure(); err != nil {
		logger.Warn("users: cannot create %s: %v", dir.Path(), err)
	}
	settings := config.NewStore(root.MustPath(datafs.SettingsFile))
	if err := settings.Ensure(); err != nil {
		logger.Warn("settings: cannot create defaults: %v", err)
	}

	app, err := server.NewApp(server.Options{
		Secret:       secret,
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.SecureCookie,
		AssetsDir:    cfg.AssetsDir,
	}, dir, settings)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Requests are served while the directory loads; dashboards show the
	// loading view until it is ready.
	dir.Start(ctx, nil)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("SIGHUP: reloading %s", dir.Path())
				_ = dir.Reload(ctx)
			}
		}
	}()

	srv := server.New(server.Config{ListenAddr: cfg.ListenAddr}, app)
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("lumdash listening on %s (data root %s)", cfg.ListenAddr, cfg.DataRoot)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
