// Package main provides the stanza one-shot build CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/euforicio/stanza/internal/buildinfo"
	"github.com/euforicio/stanza/internal/builder"
	"github.com/euforicio/stanza/internal/config"
)

func main() {
	cfg := config.Default()
	config.ApplyEnvOverrides(&cfg)

	flags := pflag.NewFlagSet("stanza", pflag.ExitOnError)
	config.RegisterFlags(flags, &cfg)
	assetsDir := flags.String("assets", "", "directory of assets to copy instead of the embedded bundle")
	searchIndex := flags.Bool("search-index", false, "generate a JSON search index alongside the site")
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
	logger = logger.With("app", "stanza")
	slog.SetDefault(logger)
	logger.Info("starting stanza", slog.String("version", buildinfo.Summary()))

	bld, err := builder.New(logger)
	if err != nil {
		logger.Error("init builder failed", slog.Any("err", err))
		os.Exit(1)
	}

	if err := bld.Build(context.Background(), builder.Options{
		ContentDir:          cfg.ContentDir,
		OutputDir:           cfg.OutputDir,
		AssetsDir:           *assetsDir,
		SiteTitle:           cfg.SiteTitle,
		SiteSubtitle:        cfg.SiteSubtitle,
		BaseURL:             cfg.BaseURL,
		AssetPrefix:         cfg.AssetPrefix,
		IncludeHidden:       cfg.IncludeHidden,
		GenerateSearchIndex: *searchIndex,
		CleanOutput:         cfg.CleanOutput,
	}); err != nil {
		logger.Error("build failed", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("build succeeded", slog.String("output", cfg.OutputDir))
}
