package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/api"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/hints"
	"github.com/alnah/go-md2docx/internal/logging"
	"github.com/alnah/go-md2docx/internal/metrics"
	"github.com/alnah/go-md2docx/internal/storage"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// runServe runs the HTTP conversion service until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, fs, err := parseServeFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg, err := loadConfig(flags.common.config, fs, serveBindings)
	if err != nil {
		return err
	}

	logger, _, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded", zap.Any("config", cfg.Fields()))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewProm(metrics.Namespace, reg)

	sc := cfg.Storage()
	sc.Logger = logger.Named("storage")
	store := storage.NewProvider(sc)

	if flags.checkStorage {
		if err := probeStorage(ctx, store, cfg.URLExpiryDuration()); err != nil {
			return err
		}
		logger.Info("storage probe passed", zap.String("backend", string(store.Backend())))
	}

	pipeline, err := newPipeline(cfg, logger, rec, store)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("%w on %s: %v%s", ErrListen, cfg.ListenAddr, err, hints.ForListen(cfg.ListenAddr))
	}
	if env.OnListen != nil {
		env.OnListen(ln.Addr())
	}

	srv := &http.Server{
		Handler:           api.NewServer(pipeline, reg).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          zap.NewStdLog(logger),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	logger.Info("listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("version", Version),
	)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// probeContent is the artifact written and removed by probeStorage.
var probeContent = []byte("md2docx storage probe\n")

// probeStorage writes and deletes one small artifact so a misconfigured
// backend fails at startup instead of on the first docx request.
func probeStorage(ctx context.Context, store storage.Store, ttl time.Duration) error {
	locator, err := store.Put(ctx, probeContent, "txt", ttl)
	if err != nil {
		return fmt.Errorf("storage probe: %w%s", err, hints.ForStorage(string(store.Backend())))
	}
	if _, err := store.Delete(ctx, locator); err != nil {
		return fmt.Errorf("storage probe cleanup: %w", err)
	}
	return nil
}

// newPipeline wires converter, store and options from cfg. A Provider
// store builds its backend lazily on the first docx request.
func newPipeline(cfg *config.Config, logger *zap.Logger, rec metrics.Recorder, store storage.Store) (*api.Pipeline, error) {
	features := md2docx.DefaultFeatures
	if cfg.Highlight {
		features |= md2docx.FeatureHighlighting
	}
	conv := md2docx.NewConverter(md2docx.WithFeatures(features))

	r, err := newResolver(cfg.AssetsDir)
	if err != nil {
		return nil, err
	}
	var build md2docx.BuildOptions
	if cfg.DOCXTemplate != "" {
		build.Template, err = loadTemplate(r, cfg.DOCXTemplate)
		if err != nil {
			return nil, err
		}
	}
	build.Styles, err = resolveStyles(r, cfg.DOCXStyle, cfg.DOCXFontSize, "")
	if err != nil {
		return nil, err
	}

	return api.NewPipeline(conv, conv, store, api.Options{
		MaxFileSizeMB: cfg.MaxFileSizeMB,
		URLExpiry:     cfg.URLExpiryDuration(),
		BuildOptions:  build,
		Environment:   cfg.Environment,
		Version:       api.DefaultVersion,
		Logger:        logger.Named("pipeline"),
		Metrics:       rec,
	}), nil
}
