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

// Package psmodule packages a generated PowerShell script as a module:
//
//	<Name>/
//	    Classes/
//	    Functions/
//	        Private/
//	        Public/<script>.ps1
//	    <Name>.psd1
//	    <Name>.psm1
//
// The manifest is produced by New-ModuleManifest, run through pwsh.
package psmodule

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-version"

	"github.com/ehabterra/apigen/internal/config"
	"github.com/ehabterra/apigen/internal/emit"
)

//go:embed assets/entrypoint.psm1
var entrypoint []byte

// DefaultPowerShell is the binary New-ModuleManifest runs under.
const DefaultPowerShell = "pwsh"

const licensePath = "/blob/master/LICENSE.txt"

// Runner runs an external command and returns its output streams.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Builder scaffolds a PowerShell module next to a generated script.
type Builder struct {
	// Dir is where the module directory is created.
	Dir        string
	Metadata   config.Metadata
	Runner     Runner
	PowerShell string
	Logger     hclog.Logger
	// Stdout receives the manifest command output; os.Stdout when nil.
	Stdout io.Writer
}

// Module describes a built module.
type Module struct {
	Dir        string
	Manifest   string
	RootModule string
	Script     string
	Functions  []string
}

// Build creates the module layout, copies scriptPath into Functions/Public
// and generates the manifest.
func (b *Builder) Build(ctx context.Context, scriptPath string) (*Module, error) {
	meta := b.Metadata.WithDefaults()
	modVersion, err := version.NewVersion(meta.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid module version %q: %w", meta.Version, err)
	}

	logger := b.logger().With("module", meta.Name)

	dir := b.Dir
	if dir == "" {
		dir = "."
	}
	absDir, err := filepath.Abs(filepath.Join(dir, meta.Name))
	if err != nil {
		return nil, err
	}
	mod := &Module{
		Dir:        absDir,
		Manifest:   filepath.Join(absDir, meta.Name+".psd1"),
		RootModule: filepath.Join(absDir, meta.Name+".psm1"),
		Script:     filepath.Join(absDir, "Functions", "Public", filepath.Base(scriptPath)),
	}

	for _, sub := range []string{"Classes", filepath.Join("Functions", "Private"), filepath.Join("Functions", "Public")} {
		if err := os.MkdirAll(filepath.Join(absDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create module folder: %w", err)
		}
	}

	if err := os.WriteFile(mod.RootModule, entrypoint, 0644); err != nil {
		return nil, fmt.Errorf("failed to write module entrypoint: %w", err)
	}

	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	if err := os.WriteFile(mod.Script, script, 0644); err != nil {
		return nil, fmt.Errorf("failed to copy script into module: %w", err)
	}

	mod.Functions = FindFunctions(string(script))
	logger.Debug("module scaffolded", "dir", absDir, "functions", len(mod.Functions))

	args := ManifestArgs(meta, modVersion, mod)
	if err := b.runManifest(ctx, args); err != nil {
		return nil, err
	}
	return mod, nil
}

func (b *Builder) logger() hclog.Logger {
	if b.Logger == nil {
		return hclog.NewNullLogger()
	}
	return b.Logger
}

func (b *Builder) runManifest(ctx context.Context, args []string) error {
	runner := b.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	bin := b.PowerShell
	if bin == "" {
		bin = DefaultPowerShell
	}
	stdout := b.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	out, errOut, err := runner.Run(ctx, bin, args...)
	if len(out) > 0 || len(errOut) > 0 {
		fmt.Fprintf(stdout, "PS MODULE STDOUT: %s\nPS MODULE STDERR: %s\n", out, errOut)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%s is required to generate the module manifest: %w", bin, err)
	default:
		// the manifest is optional; the module still loads without it
		b.logger().Warn("New-ModuleManifest failed", "error", err)
		return nil
	}
}

var reFunction = regexp.MustCompile(`(?m)^\s*function ([A-Za-z0-9_-]+)`)

// FindFunctions returns the names of the functions defined in a script, in
// order and without repeats.
func FindFunctions(script string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range reFunction.FindAllStringSubmatch(script, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// psList renders names as a PowerShell array literal: @("a", "b").
func psList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = `"` + n + `"`
	}
	return "@(" + strings.Join(quoted, ", ") + ")"
}

// ManifestArgs builds the pwsh argument list for New-ModuleManifest. Every
// argument is escaped with emit.PSSanitize.
func ManifestArgs(meta config.Metadata, modVersion *version.Version, mod *Module) []string {
	args := []string{"-NoProfile", "-Command", "New-ModuleManifest", "-Path", mod.Manifest}
	add := func(flag, value string) {
		if value != "" {
			args = append(args, flag, value)
		}
	}

	add("-PowerShellVersion", meta.PowerShellVersion)
	add("-Author", meta.Author)
	add("-CompanyName", meta.Company)
	add("-Copyright", meta.Copyright)
	add("-ModuleVersion", modVersion.String())
	add("-Description", meta.Description)
	if len(meta.Tags) > 0 {
		add("-Tags", psList(meta.Tags))
	}
	if meta.ProjectURL != "" {
		add("-HelpInfoUri", meta.ProjectURL)
		add("-ProjectUri", meta.ProjectURL)
		add("-LicenseUri", strings.TrimRight(meta.ProjectURL, "/")+licensePath)
	}
	add("-ReleaseNotes", meta.ReleaseNotesSummary())
	add("-FunctionsToExport", psList(mod.Functions))
	add("-RootModule", mod.RootModule)

	for i, a := range args {
		args[i] = emit.PSSanitize(a)
	}
	return args
}
