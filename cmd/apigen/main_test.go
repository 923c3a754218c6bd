package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ehabterra/apigen/internal/config"
	"github.com/ehabterra/apigen/internal/probe"
)

const legacyDocs = `[
  {"section": "Organizations", "http_method": "GET", "path": "/organizations", "description": "List the organizations"},
  {"section": "Admins", "http_method": "POST", "path": "/organizations/{organizationId}/admins",
   "description": "Create a new dashboard administrator",
   "params": [{"name": "email", "in": "body", "required": true}]}
]`

func writeDocs(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.json")
	if err := os.WriteFile(path, []byte(legacyDocs), 0644); err != nil {
		t.Fatalf("Failed to write docs: %v", err)
	}
	return path
}

func fakeProbes(t *testing.T) {
	t.Helper()
	old := versionProbes
	versionProbes = func() []probe.Probe {
		found := func(context.Context, string, ...string) ([]byte, error) {
			return []byte("ruby 3.2.2 (2023-03-30 revision e51014f9c0) [x86_64-linux]\n"), nil
		}
		missing := func(context.Context, string, ...string) ([]byte, error) {
			return nil, errors.New("executable file not found in $PATH")
		}
		return []probe.Probe{
			probe.Command{Name: "ruby", Args: []string{"-v"}, Parse: probe.RubyVersion, Exec: found},
			probe.Command{Name: "bash", Args: []string{"--version"}, Note: "required for bash testing", Exec: missing},
		}
	}
	t.Cleanup(func() { versionProbes = old })
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"--key", "abc", "--language", "ruby", "-c", "-l", "-n", "-r",
		"--section", "networks", "--section", "devices", "--exclude-path", "/admins",
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if cfg.Key != "abc" || cfg.Language != "ruby" {
		t.Errorf("unexpected key/language: %+v", cfg)
	}
	if !cfg.Classy || !cfg.Lint || !cfg.NoWrap || !cfg.AddSampleResp {
		t.Errorf("Expected all short options set, got %+v", cfg)
	}
	if strings.Join(cfg.Sections, ",") != "networks,devices" {
		t.Errorf("Expected repeated sections, got %v", cfg.Sections)
	}
	if len(cfg.ExcludePaths) != 1 {
		t.Errorf("Expected one exclude path, got %v", cfg.ExcludePaths)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestParseFlags_Help(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"--help"}, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("Expected flag.ErrHelp, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Usage:") || !strings.Contains(stderr.String(), "--add-sample-resp") {
		t.Errorf("Help output should list usage and flags, got %q", stderr.String())
	}
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	_, err := parseFlags([]string{"--bogus"}, &bytes.Buffer{})
	var uerr *usageError
	if !errors.As(err, &uerr) {
		t.Fatalf("Expected usage error, got %v", err)
	}
}

func TestRun_Version(t *testing.T) {
	fakeProbes(t)
	var stdout bytes.Buffer

	// no key needed
	path, err := run(context.Background(), []string{"-v"}, &stdout, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if path != "" {
		t.Errorf("Expected no generation, got %s", path)
	}

	out := stdout.String()
	for _, want := range []string{"apigen version", "Go version", "github.com/getkin/kin-openapi", "Testing/linting:", "3.2.2", "not found (required for bash testing)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Version output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	t.Setenv(config.KeyEnvVar, "")
	docs := writeDocs(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unsupported language", []string{"--key", "k", "--language", "cobol"}},
		{"missing key", []string{"--language", "python"}},
		{"bad log level", []string{"--key", "k", "--log-level", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			args := append(tt.args, "--docs", docs, "--output-dir", dir)
			_, err := run(context.Background(), args, &bytes.Buffer{}, &bytes.Buffer{})

			var uerr *usageError
			if !errors.As(err, &uerr) {
				t.Fatalf("Expected usage error, got %v", err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("Expected nothing written, found %d entries", len(entries))
			}
		})
	}
}

func TestRun_Generate(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer

	path, err := run(context.Background(), []string{
		"--key", "k", "--language", "bash", "--docs", writeDocs(t), "--output-dir", dir, "--log-level", "error",
	}, &stdout, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if path != filepath.Join(dir, "meraki_api.sh") {
		t.Errorf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read script: %v", err)
	}
	if !strings.Contains(string(data), "API_KEY='k'") {
		t.Error("Expected key embedded in the bash script")
	}
	if !strings.Contains(stdout.String(), "Generating a {bash} script") {
		t.Errorf("missing progress output, got %q", stdout.String())
	}
}

func TestRun_ConfigFile(t *testing.T) {
	t.Setenv(config.KeyEnvVar, "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "apigen.yaml")
	cfg := &config.File{
		Key:      "from-file",
		Language: "ruby",
		DocsURL:  writeDocs(t),
		Sections: []string{"admins"},
		Options:  []string{config.OptClassy},
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Save redacts the key, so the flag supplies it
	path, err := run(context.Background(), []string{
		"--config", cfgPath, "--key", "flag-key", "--output-dir", dir, "--output-config", filepath.Join(dir, "out.yaml"),
	}, &bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if filepath.Ext(path) != ".rb" {
		t.Errorf("Expected language from config file, got %s", path)
	}

	saved, err := config.Load(filepath.Join(dir, "out.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if strings.Join(saved.Sections, ",") != "admins" {
		t.Errorf("Expected sections from config file, got %v", saved.Sections)
	}
	if strings.Join(saved.Options, ",") != "classy" {
		t.Errorf("Expected classy with default wrapping, got %v", saved.Options)
	}
}

func TestRun_ConfigFileNoWrap(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "apigen.yaml")
	if err := os.WriteFile(cfgPath, []byte("language: python\noptions: [no-wrap]\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cli, err := parseFlags([]string{"--config", cfgPath, "--key", "k"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	engineConfig, err := buildEngineConfig(cli, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("buildEngineConfig failed: %v", err)
	}
	if engineConfig.Options.Has(config.OptTextWrap) {
		t.Error("Expected no-wrap in the config file to turn textwrap off")
	}

	// the flag still works without a config file
	cli, err = parseFlags([]string{"--key", "k"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	engineConfig, err = buildEngineConfig(cli, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("buildEngineConfig failed: %v", err)
	}
	if !engineConfig.Options.Has(config.OptTextWrap) {
		t.Error("Expected textwrap on by default")
	}
}
