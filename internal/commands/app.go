package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cardledger/cardledger/internal/config"
	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/importer"
	"github.com/cardledger/cardledger/internal/logger"
)

// app is the configured runtime shared by the commands.
type app struct {
	root     string // directory holding the config file
	cfg      *config.Config
	reader   extract.Reader
	registry *importer.Registry
}

// loadConfig loads the dotenv file, reads the config file, then applies
// CARDLEDGER_* overrides. A missing config file falls back to defaults.
// Relative paths resolve against the config file's directory, which is
// returned alongside.
func loadConfig(opts *rootOptions) (*config.Config, string, error) {
	path, err := filepath.Abs(opts.configPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolving config path: %w", err)
	}
	base := filepath.Dir(path)

	envFile := opts.envFile
	if envFile == "" {
		envFile = filepath.Join(base, ".env")
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, "", err
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, "", err
	}
	cfg.ResolvePaths(base)
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, base, nil
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, root, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	reg, err := registryFor(cfg)
	if err != nil {
		return nil, err
	}
	return &app{root: root, cfg: cfg, reader: readerFor(cfg), registry: reg}, nil
}

// withLogger puts a logger configured from cfg into ctx.
func (a *app) withLogger(ctx context.Context, w io.Writer) (context.Context, error) {
	log, err := logger.NewWithOptions(logger.Options{Level: a.cfg.Log.Level, Format: a.cfg.Log.Format, Out: w})
	if err != nil {
		return nil, err
	}
	return logger.WithContext(ctx, log), nil
}

func readerFor(cfg *config.Config) extract.Reader {
	if cfg.Extractor.Command == "" {
		return extract.DumpReader{}
	}
	return extract.CommandReader{Path: cfg.Extractor.Command, Args: cfg.Extractor.Args}
}

func registryFor(cfg *config.Config) (*importer.Registry, error) {
	if cfg.RulesFile == "" {
		return importer.DefaultRegistry(), nil
	}
	rules, err := importer.LoadRulesFile(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	return importer.NewRegistryWithRules(rules), nil
}
