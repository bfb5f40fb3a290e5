package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/adapter/sites"
	"github.com/jmylchreest/jav-meta/internal/config"
	"github.com/jmylchreest/jav-meta/internal/cookiejar"
	"github.com/jmylchreest/jav-meta/internal/facade"
	"github.com/jmylchreest/jav-meta/internal/httpserver"
	"github.com/jmylchreest/jav-meta/internal/imagecache"
	"github.com/jmylchreest/jav-meta/internal/observability"
	"github.com/jmylchreest/jav-meta/internal/qbittorrent"
	"github.com/jmylchreest/jav-meta/internal/scheduler"
	"github.com/jmylchreest/jav-meta/internal/store"
	"github.com/jmylchreest/jav-meta/internal/translate"
	"github.com/jmylchreest/jav-meta/internal/transport"
	"github.com/jmylchreest/jav-meta/internal/version"
	"github.com/jmylchreest/jav-meta/pkg/httpclient"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the jav-meta server",
	Long: `Start the jav-meta HTTP server.

The server wires together the code normalizer, category router, dual
transports, source adapters, translator, image cache, and persistence
layer behind the Command Facade, then exposes it over a small REST API
(getVideoInfo, hasBeenDownloaded, markAsDownloaded, rescrape,
downloadImage, and a qBittorrent torrent passthrough) intended to sit
behind a download manager or media organizer.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := observability.NewLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting jav-meta", slog.String("version", version.Version))

	if err := os.MkdirAll(cfg.Storage.BaseDir, 0o755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	jar, err := cookiejar.New(cfg.Storage.CookiePath(), cfg.Storage.CookieImportPath())
	if err != nil {
		return fmt.Errorf("opening cookie jar: %w", err)
	}

	httpT, err := transport.NewHTTP(transport.HTTPOptions{
		Timeout:          cfg.Transport.RequestTimeout,
		RetryAttempts:    cfg.Transport.RetryAttempts,
		CircuitThreshold: cfg.Transport.CircuitThreshold,
		CircuitTimeout:   cfg.Transport.CircuitResetTimeout,
		Proxy:            cfg.Transport.Proxy,
	}, jar)
	if err != nil {
		return fmt.Errorf("building HTTP transport: %w", err)
	}

	var headlessT *transport.Headless
	if cfg.Headless.Enabled {
		headlessT = transport.NewHeadless(transport.HeadlessOptions{
			BinaryPath:  cfg.Headless.BinaryPath,
			ViewportW:   cfg.Headless.ViewportW,
			ViewportH:   cfg.Headless.ViewportH,
			IdleTimeout: cfg.Headless.IdleTimeout,
			OpTimeout:   cfg.Headless.OpTimeout,
		}, jar)
	}

	registry := adapter.NewRegistry()
	sites.RegisterAll(registry, httpT, headlessT)

	translator := translate.New(httpclient.NewWithDefaults().StandardClient(), translate.Options{
		Endpoint: cfg.Translate.Endpoint,
		Target:   cfg.Translate.SourceTo,
		Enabled:  cfg.Translate.Enabled,
	}, logger)

	images, err := imagecache.New(imagecache.Options{
		MaxEntries: cfg.ImageCache.MaxEntries,
		MaxWeight:  cfg.ImageCache.MaxWeight,
	}, httpT)
	if err != nil {
		return fmt.Errorf("building image cache: %w", err)
	}

	db, err := store.New(cfg.Database, logger, nil)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	st, err := store.NewStore(db)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	var torrents facade.TorrentClient
	if cfg.QBittorrent.Enabled {
		client := qbittorrent.New(cfg.QBittorrent.BaseURL, nil)
		if cfg.QBittorrent.Username != "" {
			if err := client.Login(context.Background(), cfg.QBittorrent.Username, cfg.QBittorrent.Password); err != nil {
				logger.Warn("qbittorrent login failed, torrent passthrough may not work", slog.Any("error", err))
			}
		}
		torrents = client
	}

	cmdFacade := facade.New(st, registry, translator, images, torrents, logger)

	sched := scheduler.New(cfg.Scheduler, st, cmdFacade, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	srv := httpserver.NewServer(cfg.Server, cmdFacade, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during HTTP server shutdown", slog.Any("error", err))
	}
	if err := jar.Flush(); err != nil {
		logger.Error("error flushing cookie jar", slog.Any("error", err))
	}

	return nil
}
