// Package config manages generator configuration from a site file, environment
// variables, and flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const envPrefix = "STANZA_"

// DefaultSiteFile is the site configuration file looked up in the content root.
const DefaultSiteFile = "stanza.yaml"

// Config holds runtime configuration for the builder and preview server.
type Config struct {
	ContentDir    string
	OutputDir     string
	SiteTitle     string
	SiteSubtitle  string
	BaseURL       string
	AssetPrefix   string
	Port          int
	CleanOutput   bool
	IncludeHidden bool
	Verbose       bool
}

// Default returns ready-to-use defaults prior to site-file/env/flag overrides.
func Default() Config {
	return Config{
		ContentDir:  "content",
		OutputDir:   "public",
		SiteTitle:   "stanza",
		AssetPrefix: "assets",
		Port:        0, // 0 = auto-select an available port
		CleanOutput: true,
	}
}

// RegisterFlags attaches configuration flags to the provided FlagSet.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ContentDir, "content", "c", cfg.ContentDir, "directory containing markdown posts and pages")
	fs.StringVarP(&cfg.OutputDir, "out", "o", cfg.OutputDir, "output directory for the generated site")
	fs.StringVar(&cfg.SiteTitle, "title", cfg.SiteTitle, "site title used in layouts and the feed")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "absolute base URL for canonical links and the feed")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port for the preview server (0 = auto-assign)")
	fs.BoolVar(&cfg.CleanOutput, "clean", cfg.CleanOutput, "wipe the output directory before building")
	fs.BoolVar(&cfg.IncludeHidden, "hidden", cfg.IncludeHidden, "include hidden files when scanning the content tree")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable verbose logging")
}

// siteFile mirrors the YAML shape of stanza.yaml.
type siteFile struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	BaseURL  string `yaml:"baseURL"`
	Output   string `yaml:"output"`
	Assets   string `yaml:"assets"`
}

// LoadSiteFile merges values from the given YAML file into cfg. A missing file
// is not an error; authors without a stanza.yaml get the defaults.
func LoadSiteFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read site file: %w", err)
	}

	var site siteFile
	if err := yaml.Unmarshal(raw, &site); err != nil {
		return fmt.Errorf("parse site file %s: %w", path, err)
	}

	if v := strings.TrimSpace(site.Title); v != "" {
		cfg.SiteTitle = v
	}
	if v := strings.TrimSpace(site.Subtitle); v != "" {
		cfg.SiteSubtitle = v
	}
	if v := strings.TrimSpace(site.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(site.Output); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(site.Assets); v != "" {
		cfg.AssetPrefix = v
	}
	return nil
}

// ApplyEnvOverrides reads supported environment variables and overrides cfg in place.
func ApplyEnvOverrides(cfg *Config) {
	applyStringEnv("CONTENT", func(v string) { cfg.ContentDir = v })
	applyStringEnv("OUT", func(v string) { cfg.OutputDir = v })
	applyStringEnv("TITLE", func(v string) { cfg.SiteTitle = v })
	applyStringEnv("BASE_URL", func(v string) { cfg.BaseURL = v })
	applyIntEnv("PORT", func(v int) { cfg.Port = v })
	applyBoolEnv("CLEAN", func(v bool) { cfg.CleanOutput = v })
	applyBoolEnv("HIDDEN", func(v bool) { cfg.IncludeHidden = v })
	applyBoolEnv("VERBOSE", func(v bool) { cfg.Verbose = v })
}

func applyStringEnv(key string, apply func(string)) {
	if raw, ok := lookupNonEmpty(key); ok {
		apply(raw)
	}
}

func applyIntEnv(key string, apply func(int)) {
	if raw, ok := lookupNonEmpty(key); ok {
		if value, err := strconv.Atoi(raw); err == nil {
			apply(value)
		}
	}
}

func applyBoolEnv(key string, apply func(bool)) {
	if raw, ok := lookupNonEmpty(key); ok {
		if value, err := strconv.ParseBool(raw); err == nil {
			apply(value)
		}
	}
}

func lookupNonEmpty(key string) (string, bool) {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	return value, true
}

// Finalize validates and normalizes paths.
func Finalize(cfg *Config) error {
	content, err := filepath.Abs(cfg.ContentDir)
	if err != nil {
		return fmt.Errorf("resolve content directory: %w", err)
	}
	cfg.ContentDir = content

	if cfg.OutputDir == "" {
		cfg.OutputDir = "public"
	}
	output, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}
	cfg.OutputDir = output

	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}

	if strings.TrimSpace(cfg.AssetPrefix) == "" {
		cfg.AssetPrefix = "assets"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return nil
}
