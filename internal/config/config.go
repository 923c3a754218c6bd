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

// Package config holds the configuration shared by the command line and the
// generation engine: the option set, the YAML config file and the module
// metadata used when packaging the PowerShell variant.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	LanguagePython     = "python"
	LanguageRuby       = "ruby"
	LanguageBash       = "bash"
	LanguagePowerShell = "powershell"

	// DefaultLanguage is used when no language is given.
	DefaultLanguage = LanguagePython

	DefaultDocsURL   = "https://api.meraki.com/api/v1/openapiSpec"
	DefaultBaseURL   = "https://api.meraki.com/api/v1"
	DefaultOutputDir = "."

	// KeyEnvVar is consulted when neither a flag nor the config file supply a key.
	KeyEnvVar = "APIGEN_API_KEY"

	redactedKey = "<redacted>"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrMissingKey          = errors.New("an API key is required")
)

// Languages lists every supported target language, default first.
func Languages() []string {
	return []string{LanguagePython, LanguageRuby, LanguageBash, LanguagePowerShell}
}

// HasClasses reports whether a language has a class-like container that
// the classy option can group calls into.
func HasClasses(language string) bool {
	return language == LanguagePython || language == LanguageRuby
}

// ValidateLanguage returns the canonical language name. An empty name selects
// the default.
func ValidateLanguage(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultLanguage, nil
	}
	if name == "ps" || name == "pwsh" {
		name = LanguagePowerShell
	}
	for _, l := range Languages() {
		if l == name {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w %q: valid options are %s", ErrUnsupportedLanguage, name, strings.Join(Languages(), ", "))
}

// File is the on-disk YAML configuration.
type File struct {
	Key          string   `yaml:"key,omitempty"`
	Language     string   `yaml:"language,omitempty"`
	DocsURL      string   `yaml:"docs_url,omitempty"`
	BaseURL      string   `yaml:"base_url,omitempty"`
	OutputDir    string   `yaml:"output_dir,omitempty"`
	Options      []string `yaml:"options,omitempty"`
	IncludePaths []string `yaml:"include_paths,omitempty"`
	ExcludePaths []string `yaml:"exclude_paths,omitempty"`
	Sections     []string `yaml:"sections,omitempty"`
	Module       Metadata `yaml:"module,omitempty"`
}

// Load reads a YAML configuration file. Unknown fields are rejected so typos
// do not silently fall back to defaults.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg File
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for _, o := range cfg.Options {
		if !IsOption(o) {
			return nil, fmt.Errorf("config file %s: unknown option %q", path, o)
		}
	}
	return &cfg, nil
}

// Save writes cfg as YAML. The API key is never written out.
func Save(path string, cfg *File) error {
	out := *cfg
	if out.Key != "" {
		out.Key = redactedKey
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal effective config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write effective config: %w", err)
	}
	return nil
}

// ResolveKey picks the API key by precedence: flag, config file, environment.
func ResolveKey(flagKey string, file *File) (string, error) {
	if flagKey != "" {
		return flagKey, nil
	}
	if file != nil && file.Key != "" && file.Key != redactedKey {
		return file.Key, nil
	}
	if env := os.Getenv(KeyEnvVar); env != "" {
		return env, nil
	}
	return "", ErrMissingKey
}
