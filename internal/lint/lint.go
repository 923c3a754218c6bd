// Package lint runs an optional linter over generated scripts.
package lint

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/ehabterra/apigen/internal/config"
)

// Linter is the command that checks scripts of one language. Paths are
// appended to Args.
type Linter struct {
	Bin  string
	Args []string
	// ReportOnOutput treats any output as findings, for linters that exit
	// zero even when they report issues.
	ReportOnOutput bool
}

var linters = map[string]Linter{
	config.LanguagePython:     {Bin: "pylint", Args: []string{"--score=y"}},
	config.LanguageRuby:       {Bin: "rubocop", Args: []string{"--format", "simple"}},
	config.LanguageBash:       {Bin: "shellcheck"},
	config.LanguagePowerShell: {
		Bin:            "pwsh",
		Args:           []string{"-NoProfile", "-Command", "Invoke-ScriptAnalyzer", "-Path"},
		ReportOnOutput: true,
	},
}

// For returns the linter of a language.
func For(language string) (Linter, bool) {
	l, ok := linters[language]
	return l, ok
}

// Runner runs linters. The zero value uses os/exec.
type Runner struct {
	// Exec returns combined stdout and stderr.
	Exec     func(ctx context.Context, name string, args ...string) ([]byte, error)
	LookPath func(file string) (string, error)
	Logger   hclog.Logger
}

func (r *Runner) logger() hclog.Logger {
	if r.Logger == nil {
		return hclog.NewNullLogger()
	}
	return r.Logger
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Run lints each path and returns the reports of the files with issues. A
// linter exiting non-zero, or printing anything when ReportOnOutput is set,
// is an issue report; a missing linter only logs a
// warning. Failures to run the linter are collected into the error.
func (r *Runner) Run(ctx context.Context, language string, paths ...string) (string, error) {
	l, ok := For(language)
	if !ok {
		return "", fmt.Errorf("%w: no linter for %s", config.ErrUnsupportedLanguage, language)
	}

	lookPath := r.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	run := r.Exec
	if run == nil {
		run = combinedOutput
	}
	logger := r.logger().With("linter", l.Bin)

	if _, err := lookPath(l.Bin); err != nil {
		logger.Warn("linter not found, skipping lint step", "language", language)
		return "", nil
	}

	var (
		merr    *multierror.Error
		reports []string
	)
	for _, path := range paths {
		args := append(append([]string{}, l.Args...), path)
		out, err := run(ctx, l.Bin, args...)

		var exitErr *exec.ExitError
		switch {
		case err == nil && l.ReportOnOutput && strings.TrimSpace(string(out)) != "":
			reports = append(reports, fmt.Sprintf("%s:\n%s", path, strings.TrimSpace(string(out))))
		case err == nil:
			logger.Debug("lint clean", "path", path)
		case errors.As(err, &exitErr):
			report := strings.TrimSpace(string(out))
			if report == "" {
				report = "linter reported issues without output"
			}
			reports = append(reports, fmt.Sprintf("%s:\n%s", path, report))
		default:
			merr = multierror.Append(merr, fmt.Errorf("failed to run %s on %s: %w", l.Bin, path, err))
		}
	}

	return strings.Join(reports, "\n\n"), merr.ErrorOrNil()
}
