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

// Package emit renders normalized call records into client scripts, one
// emitter per target language.
package emit

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/moby/sys/atomicwriter"

	"github.com/ehabterra/apigen/internal/calls"
	"github.com/ehabterra/apigen/internal/config"
)

// Input is everything an emitter needs to render a script.
type Input struct {
	APIKey   string
	BaseURL  string
	Calls    []calls.Record
	Preamble string
	Options  config.Options
	Logger   hclog.Logger
}

func (in Input) logger() hclog.Logger {
	if in.Logger == nil {
		return hclog.NewNullLogger()
	}
	return in.Logger
}

// Emitter renders a complete script for one target language.
type Emitter interface {
	Language() string
	Filename() string
	Render(w io.Writer, in Input) error
}

var registry = map[string]Emitter{}

func register(e Emitter) {
	registry[e.Language()] = e
}

func init() {
	register(newPython())
	register(newRuby())
	register(newBash())
	register(newPowerShell())
}

// Lookup returns the emitter for a language name as accepted by
// config.ValidateLanguage.
func Lookup(language string) (Emitter, error) {
	name, err := config.ValidateLanguage(language)
	if err != nil {
		return nil, err
	}
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedLanguage, language)
	}
	return e, nil
}

// Languages returns the registered language names, default first.
func Languages() []string {
	names := make([]string, 0, len(registry))
	for _, name := range config.Languages() {
		if _, ok := registry[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// WriteFile renders the script into memory and then atomically replaces
// <dir>/<e.Filename()>. Nothing is written when rendering fails.
func WriteFile(dir string, e Emitter, in Input) (string, error) {
	var buf bytes.Buffer
	if err := e.Render(&buf, in); err != nil {
		return "", fmt.Errorf("failed to render %s script: %w", e.Language(), err)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, e.Filename())
	perm := os.FileMode(0644)
	if e.Language() == config.LanguageBash {
		perm = 0755
	}
	if err := atomicwriter.WriteFile(path, buf.Bytes(), perm); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
