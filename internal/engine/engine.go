// Package engine provides the script generation pipeline used by both the
// CLI and the generator package.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ehabterra/apigen/internal/apidocs"
	"github.com/ehabterra/apigen/internal/calls"
	"github.com/ehabterra/apigen/internal/config"
	"github.com/ehabterra/apigen/internal/emit"
	"github.com/ehabterra/apigen/internal/filter"
	"github.com/ehabterra/apigen/internal/lint"
	"github.com/ehabterra/apigen/internal/psmodule"
)

const (
	CopyrightNotice = "apigen - Copyright 2025 Ehab Terra"
	LicenseNotice   = "Licensed under the Apache License 2.0. See LICENSE and NOTICE."
)

// EngineConfig holds configuration for the generation engine
type EngineConfig struct {
	APIKey    string
	Language  string
	Options   config.Options
	DocsURL   string
	BaseURL   string
	OutputDir string
	// OutputConfig, when set, receives the effective configuration as YAML.
	OutputConfig string
	Filter       filter.Filter
	Metadata     config.Metadata

	// Fetcher overrides the fetcher built from DocsURL.
	Fetcher        apidocs.Fetcher
	ManifestRunner psmodule.Runner
	Linter         *lint.Runner
	Logger         hclog.Logger
	// Stdout receives progress lines; os.Stdout when nil.
	Stdout io.Writer
}

// DefaultEngineConfig returns a new EngineConfig with default values
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Language:  config.DefaultLanguage,
		Options:   config.NewOptions(config.OptTextWrap),
		DocsURL:   config.DefaultDocsURL,
		BaseURL:   config.DefaultBaseURL,
		OutputDir: config.DefaultOutputDir,
		Metadata:  config.DefaultMetadata(),
	}
}

// Engine runs the pipeline: fetch, filter, normalize, render, write, then
// the optional lint and packaging steps.
type Engine struct {
	config *EngineConfig
}

// Result describes a finished run.
type Result struct {
	Path       string
	Language   string
	Calls      []calls.Record
	Stats      calls.Stats
	LintReport string
	// Module is set for the powershell variant.
	Module *psmodule.Module
}

// NewEngine creates a new Engine with the given configuration
func NewEngine(cfg *EngineConfig) *Engine {
	defaultConfig := DefaultEngineConfig()

	if cfg != nil {
		// Merge provided config with defaults
		if cfg.Language == "" {
			cfg.Language = defaultConfig.Language
		}
		if cfg.Options == nil {
			cfg.Options = defaultConfig.Options
		}
		if cfg.DocsURL == "" {
			cfg.DocsURL = defaultConfig.DocsURL
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = defaultConfig.BaseURL
		}
		if cfg.OutputDir == "" {
			cfg.OutputDir = defaultConfig.OutputDir
		}
		cfg.Metadata = cfg.Metadata.WithDefaults()
	} else {
		cfg = defaultConfig
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}

	return &Engine{config: cfg}
}

// Config returns the effective configuration.
func (e *Engine) Config() *EngineConfig {
	return e.config
}

// Generate runs the whole pipeline and returns what it produced.
func (e *Engine) Generate(ctx context.Context) (*Result, error) {
	cfg := e.config
	logger := cfg.Logger

	language, err := config.ValidateLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, config.ErrMissingKey
	}
	emitter, err := emit.Lookup(language)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(cfg.Stdout, "Generating a {%s} script\n", language)

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = apidocs.NewFetcher(cfg.DocsURL, cfg.APIKey)
	}
	endpoints, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch API description: %w", err)
	}
	logger.Debug("fetched API description", "source", cfg.DocsURL, "endpoints", len(endpoints))

	if !cfg.Filter.IsZero() {
		before := len(endpoints)
		endpoints = cfg.Filter.Apply(endpoints)
		logger.Info("filtered endpoints", "kept", len(endpoints), "dropped", before-len(endpoints))
	}
	if len(endpoints) == 0 {
		logger.Warn("no endpoints to generate, the script will only contain helpers")
	}

	normalizer := calls.NewNormalizer(cfg.Options, logger.Named("calls"))
	normalizer.Language = language
	records, err := normalizer.Normalize(endpoints)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize endpoints: %w", err)
	}

	result := &Result{
		Language: language,
		Calls:    records,
		Stats:    calls.ComputeStats(records),
	}

	fmt.Fprintf(cfg.Stdout, "\t- saving %s...\n", emitter.Filename())
	result.Path, err = emit.WriteFile(cfg.OutputDir, emitter, emit.Input{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Calls:    records,
		Preamble: calls.Preamble(records, language, cfg.DocsURL),
		Options:  cfg.Options,
		Logger:   logger.Named("emit"),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("script written", "path", result.Path, "calls", result.Stats.Total(), "verbs", result.Stats.String())

	if language == config.LanguagePowerShell {
		builder := &psmodule.Builder{
			Dir:      cfg.OutputDir,
			Metadata: cfg.Metadata,
			Runner:   cfg.ManifestRunner,
			Logger:   logger.Named("psmodule"),
			Stdout:   cfg.Stdout,
		}
		result.Module, err = builder.Build(ctx, result.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to package powershell module: %w", err)
		}
	}

	if cfg.Options.Has(config.OptLint) {
		result.LintReport = e.lint(ctx, language, result.Path)
	}

	if cfg.OutputConfig != "" {
		if err := config.Save(cfg.OutputConfig, e.EffectiveConfig()); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// lint runs the language linter. Lint problems are reported, never fatal.
func (e *Engine) lint(ctx context.Context, language, path string) string {
	cfg := e.config
	linter := cfg.Linter
	if linter == nil {
		linter = &lint.Runner{}
	}
	if linter.Logger == nil {
		linter.Logger = cfg.Logger.Named("lint")
	}

	report, err := linter.Run(ctx, language, path)
	if err != nil {
		cfg.Logger.Warn("lint step failed", "error", err)
	}
	if report != "" {
		fmt.Fprintf(cfg.Stdout, "Lint report for %s:\n%s\n", filepath.Base(path), report)
	}
	return report
}

// EffectiveConfig returns the configuration as it would be written to a
// config file.
func (e *Engine) EffectiveConfig() *config.File {
	cfg := e.config
	return &config.File{
		Key:          cfg.APIKey,
		Language:     strings.ToLower(cfg.Language),
		DocsURL:      cfg.DocsURL,
		BaseURL:      cfg.BaseURL,
		OutputDir:    cfg.OutputDir,
		Options:      cfg.Options.FileNames(),
		IncludePaths: cfg.Filter.Include,
		ExcludePaths: cfg.Filter.Exclude,
		Sections:     cfg.Filter.Sections,
		Module:       cfg.Metadata,
	}
}
