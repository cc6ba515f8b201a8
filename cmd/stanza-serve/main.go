// Package main provides the stanza watch-and-preview application entrypoint.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/euforicio/stanza/internal/buildinfo"
	"github.com/euforicio/stanza/internal/builder"
	"github.com/euforicio/stanza/internal/config"
	"github.com/euforicio/stanza/internal/preview"
	"github.com/euforicio/stanza/internal/watch"
)

func main() {
	cfg := config.Default()
	config.ApplyEnvOverrides(&cfg)

	flags := pflag.NewFlagSet("stanza-serve", pflag.ExitOnError)
	config.RegisterFlags(flags, &cfg)
	versionFlag := flags.Bool("version", false, "print version information and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		slog.Error("parse flags", slog.Any("err", err))
		os.Exit(1)
	}
	if *versionFlag {
		println(buildinfo.Summary())
		os.Exit(0)
	}

	if err := config.LoadSiteFile(&cfg, filepath.Join(cfg.ContentDir, config.DefaultSiteFile)); err != nil {
		slog.Error("load site file", slog.Any("err", err))
		os.Exit(1)
	}
	if err := config.Finalize(&cfg); err != nil {
		slog.Error("invalid configuration", slog.Any("err", err))
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	logger = logger.With("app", "stanza-serve")
	slog.SetDefault(logger)
	logger.Info("starting stanza-serve", slog.String("version", buildinfo.Summary()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bld, err := builder.New(logger)
	if err != nil {
		logger.Error("init builder failed", slog.Any("err", err))
		os.Exit(1)
	}

	opts := builder.Options{
		ContentDir:    cfg.ContentDir,
		OutputDir:     cfg.OutputDir,
		SiteTitle:     cfg.SiteTitle,
		SiteSubtitle:  cfg.SiteSubtitle,
		BaseURL:       cfg.BaseURL,
		AssetPrefix:   cfg.AssetPrefix,
		IncludeHidden: cfg.IncludeHidden,
		CleanOutput:   cfg.CleanOutput,
	}

	rebuild := func(ctx context.Context) error {
		return bld.Build(ctx, opts)
	}

	if err := rebuild(ctx); err != nil {
		logger.Error("initial build failed", slog.Any("err", err))
		os.Exit(1)
	}

	go func() {
		if err := watch.Run(ctx, cfg.ContentDir, logger, rebuild); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watch loop stopped", slog.Any("err", err))
			cancel()
		}
	}()

	srv := preview.New(cfg.OutputDir, cfg.Port, logger, cfg.Verbose)
	if err := srv.Serve(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("shutdown complete")
			return
		}
		logger.Error("preview server error", slog.Any("err", err))
		os.Exit(1)
	}
}
