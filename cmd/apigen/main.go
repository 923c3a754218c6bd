// Copyright 2025 Ehab Terra
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/ryanuber/columnize"

	"github.com/ehabterra/apigen/internal/config"
	"github.com/ehabterra/apigen/internal/engine"
	"github.com/ehabterra/apigen/internal/filter"
	"github.com/ehabterra/apigen/internal/probe"
)

const modulePath = "github.com/ehabterra/apigen"

// stringSliceFlag implements flag.Value for string slices
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Version info - can be injected at build time via -ldflags or detected at runtime
var (
	Version   = "0.0.1" // Default version, overridden by -ldflags or runtime detection
	Commit    = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// reportedDeps are the libraries listed by --version.
var reportedDeps = []string{
	"github.com/getkin/kin-openapi",
	"github.com/Masterminds/sprig/v3",
	"gopkg.in/yaml.v3",
	"github.com/hashicorp/go-hclog",
}

// versionProbes returns the external tools reported by --version.
var versionProbes = probe.Defaults

// usageError marks failures caused by bad command line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// detectVersionInfo attempts to detect version information at runtime
func detectVersionInfo() {
	if Version != "0.0.1" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		Version = "unknown (go install)"
		return
	}
	if info.GoVersion != "" {
		GoVersion = info.GoVersion
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	hasVCSInfo := false
	isModified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			hasVCSInfo = true
			Commit = setting.Value
			if len(Commit) > 7 {
				Commit = Commit[:7]
			}
		case "vcs.time":
			hasVCSInfo = true
			BuildDate = setting.Value
		case "vcs.modified":
			isModified = setting.Value == "true"
		}
	}
	if isModified && !strings.Contains(Version, "+dirty") {
		Version += "+dirty"
	}
	if hasVCSInfo && Version == "0.0.1" {
		Version = "dev"
	}
	if Version == "0.0.1" {
		if info.Main.Path == modulePath {
			Version = "latest (go install)"
		} else {
			Version = "unknown (go install)"
		}
	}
}

// dependencyVersions reads the versions of reportedDeps from the build info.
func dependencyVersions() map[string]string {
	versions := make(map[string]string, len(reportedDeps))
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return versions
	}
	for _, dep := range info.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		versions[dep.Path] = dep.Version
	}
	return versions
}

func printVersion(ctx context.Context, w io.Writer) {
	detectVersionInfo()

	lines := []string{
		fmt.Sprintf("apigen version | %s", Version),
		fmt.Sprintf("Commit | %s", Commit),
		fmt.Sprintf("Build date | %s", BuildDate),
		fmt.Sprintf("Go version | %s", GoVersion),
	}
	deps := dependencyVersions()
	for _, dep := range reportedDeps {
		v := deps[dep]
		if v == "" {
			v = "unknown"
		}
		lines = append(lines, fmt.Sprintf("%s | %s", dep, v))
	}
	fmt.Fprintln(w, columnize.SimpleFormat(lines))

	var tools []string
	for _, r := range probe.RunAll(ctx, versionProbes()) {
		tools = append(tools, fmt.Sprintf("%s | %s", r.Name, r))
	}
	fmt.Fprintln(w, "\nTesting/linting:")
	if len(tools) > 0 {
		fmt.Fprintln(w, columnize.Format(tools, &columnize.Config{Prefix: "  "}))
	}
	fmt.Fprintln(w, engine.CopyrightNotice)
	fmt.Fprintln(w, engine.LicenseNotice)
}

// CLIConfig holds the configuration parsed from command line arguments
type CLIConfig struct {
	Key           string
	Language      string
	Classy        bool
	Lint          bool
	NoWrap        bool
	AddSampleResp bool
	DocsURL       string
	BaseURL       string
	OutputDir     string
	ConfigFile    string
	OutputConfig  string
	LogLevel      string
	IncludePaths  []string
	ExcludePaths  []string
	Sections      []string
	ShowVersion   bool
}

// parseFlags parses command line arguments and returns a CLIConfig
func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	fs := flag.NewFlagSet("apigen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := &CLIConfig{}

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Shorthand for --version")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s\n%s\n\nUsage: apigen (--key <apikey>) [flags]\n\nFlags:\n",
			engine.CopyrightNotice, engine.LicenseNotice)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  apigen --key $KEY\n")
		fmt.Fprintf(stderr, "  apigen --key $KEY --language ruby --classy\n")
		fmt.Fprintf(stderr, "  apigen --key $KEY --language powershell --section organizations\n")
	}

	fs.StringVar(&cfg.Key, "key", "", "Meraki Dashboard API key (or "+config.KeyEnvVar+")")
	fs.StringVar(&cfg.Language, "language", "", "Target language: "+strings.Join(config.Languages(), ", "))

	fs.BoolVar(&cfg.Classy, "classy", false, "Group calls into one class per section")
	fs.BoolVar(&cfg.Classy, "c", false, "Shorthand for --classy")

	fs.BoolVar(&cfg.Lint, "lint", false, "Run the language linter on the generated script")
	fs.BoolVar(&cfg.Lint, "l", false, "Shorthand for --lint")

	fs.BoolVar(&cfg.NoWrap, "no-wrap", false, "Do not wrap descriptions")
	fs.BoolVar(&cfg.NoWrap, "n", false, "Shorthand for --no-wrap")

	fs.BoolVar(&cfg.AddSampleResp, "add-sample-resp", false, "Add sample responses to descriptions")
	fs.BoolVar(&cfg.AddSampleResp, "r", false, "Shorthand for --add-sample-resp")

	fs.StringVar(&cfg.DocsURL, "docs", "", "API description URL or file")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Base URL embedded in the generated script")
	fs.StringVar(&cfg.OutputDir, "output-dir", "", "Directory the script is written to")
	fs.StringVar(&cfg.OutputDir, "o", "", "Shorthand for --output-dir")

	fs.StringVar(&cfg.ConfigFile, "config", "", "Configuration file path")
	fs.StringVar(&cfg.OutputConfig, "output-config", "", "Output effective configuration to file")
	fs.StringVar(&cfg.OutputConfig, "oc", "", "Shorthand for --output-config")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	fs.Var((*stringSliceFlag)(&cfg.IncludePaths), "include-path", "Include paths matching pattern (can be specified multiple times)")
	fs.Var((*stringSliceFlag)(&cfg.ExcludePaths), "exclude-path", "Exclude paths matching pattern (can be specified multiple times)")
	fs.Var((*stringSliceFlag)(&cfg.Sections), "section", "Only generate calls of this section (can be specified multiple times)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, &usageError{err}
	}
	if fs.NArg() > 0 {
		return nil, &usageError{fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))}
	}
	return cfg, nil
}

// buildEngineConfig merges the flags with the optional config file. Flags win.
func buildEngineConfig(cli *CLIConfig, logger hclog.Logger, stdout io.Writer) (*engine.EngineConfig, error) {
	file := &config.File{}
	if cli.ConfigFile != "" {
		loaded, err := config.Load(cli.ConfigFile)
		if err != nil {
			return nil, err
		}
		file = loaded
	}

	language := firstNonEmpty(cli.Language, file.Language)
	if _, err := config.ValidateLanguage(language); err != nil {
		return nil, &usageError{err}
	}

	key, err := config.ResolveKey(cli.Key, file)
	if err != nil {
		return nil, &usageError{err}
	}

	opts := config.FileOptions(file.Options)
	if cli.Classy {
		opts.Set(config.OptClassy, true)
	}
	if cli.Lint {
		opts.Set(config.OptLint, true)
	}
	if cli.AddSampleResp {
		opts.Set(config.OptAddSampleResp, true)
	}
	if cli.NoWrap {
		opts.Set(config.OptTextWrap, false)
	}

	return &engine.EngineConfig{
		APIKey:       key,
		Language:     language,
		Options:      opts,
		DocsURL:      firstNonEmpty(cli.DocsURL, file.DocsURL),
		BaseURL:      firstNonEmpty(cli.BaseURL, file.BaseURL),
		OutputDir:    firstNonEmpty(cli.OutputDir, file.OutputDir),
		OutputConfig: cli.OutputConfig,
		Filter: filter.Filter{
			Include:  append(append([]string{}, file.IncludePaths...), cli.IncludePaths...),
			Exclude:  append(append([]string{}, file.ExcludePaths...), cli.ExcludePaths...),
			Sections: append(append([]string{}, file.Sections...), cli.Sections...),
		},
		Metadata: file.Module,
		Logger:   logger,
		Stdout:   stdout,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func newLogger(level string, w io.Writer) (hclog.Logger, error) {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		return nil, &usageError{fmt.Errorf("invalid log level %q", level)}
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "apigen",
		Level:  lvl,
		Output: w,
	}), nil
}

// run executes the command and returns the generated script path.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (string, error) {
	cli, err := parseFlags(args, stderr)
	if err != nil {
		return "", err
	}

	if cli.ShowVersion {
		printVersion(ctx, stdout)
		return "", nil
	}

	logger, err := newLogger(cli.LogLevel, stderr)
	if err != nil {
		return "", err
	}
	engineConfig, err := buildEngineConfig(cli, logger, stdout)
	if err != nil {
		return "", err
	}

	result, err := engine.NewEngine(engineConfig).Generate(ctx)
	if err != nil {
		return "", err
	}
	return result.Path, nil
}

func main() {
	start := time.Now()
	fmt.Println(engine.CopyrightNotice)

	path, err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	var uerr *usageError
	switch {
	case errors.Is(err, flag.ErrHelp):
		return
	case errors.As(err, &uerr):
		fmt.Fprintf(os.Stderr, "apigen: %v\nRun 'apigen -h' for usage.\n", err)
		os.Exit(2)
	case err != nil:
		log.Fatalf("%v", err)
	case path == "":
		return
	}

	fmt.Println("Successfully generated:", path)
	fmt.Printf("Time elapsed: %s\n", time.Since(start))
}
