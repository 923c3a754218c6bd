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

// Package probe detects optional external tools (language runtimes, package
// managers, shells) and reports their versions. A missing tool is a normal
// result, not an error.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// ErrNotFound is returned by Semver for a tool that was not detected.
var ErrNotFound = errors.New("not found")

// Result is the outcome of one probe.
type Result struct {
	Name    string
	Present bool
	Version string
	// Note explains what the tool is needed for when it is missing.
	Note string
}

func (r Result) String() string {
	if r.Present {
		return r.Version
	}
	if r.Note == "" {
		return "not found"
	}
	return fmt.Sprintf("not found (%s)", r.Note)
}

// Probe checks for a single tool.
type Probe interface {
	Probe(ctx context.Context) Result
}

// ExecFunc runs a command and returns its standard output.
type ExecFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Exec runs the command with os/exec.
func Exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Command probes a tool by running it with version arguments.
type Command struct {
	Name string
	// Bin defaults to Name.
	Bin  string
	Args []string
	Note string
	// Parse extracts the version from the output; FirstLine when nil.
	Parse func(out string) string
	// Exec defaults to the package level Exec.
	Exec ExecFunc
}

// Probe runs the command. Any failure to run it reports the tool as absent.
func (c Command) Probe(ctx context.Context) Result {
	res := Result{Name: c.Name, Note: c.Note}

	run := c.Exec
	if run == nil {
		run = Exec
	}
	bin := c.Bin
	if bin == "" {
		bin = c.Name
	}

	out, err := run(ctx, bin, c.Args...)
	if err != nil {
		return res
	}

	parse := c.Parse
	if parse == nil {
		parse = FirstLine
	}
	v := parse(string(out))
	if v == "" {
		v = FirstLine(string(out))
	}
	res.Present = true
	res.Version = v
	return res
}

// FirstLine returns the first non-empty line, trimmed.
func FirstLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			return l
		}
	}
	return ""
}

// RubyVersion parses `ruby -v`: "ruby 3.2.2 (2023-03-30 revision e51014f9c0) [x86_64-linux]".
func RubyVersion(out string) string {
	return strings.TrimPrefix(FirstLine(out), "ruby ")
}

// BashVersion parses `bash --version`, returning the text after "version "
// up to the end of the line, e.g. "5.2.15(1)-release (x86_64-pc-linux-gnu)".
func BashVersion(out string) string {
	line := FirstLine(out)
	_, v, found := strings.Cut(line, "version ")
	if !found {
		return ""
	}
	return strings.TrimSpace(v)
}

var reSemver = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Semver extracts the first dotted version number of a result.
func Semver(r Result) (*version.Version, error) {
	if !r.Present {
		return nil, fmt.Errorf("%s: %w", r.Name, ErrNotFound)
	}
	m := reSemver.FindString(r.Version)
	if m == "" {
		return nil, fmt.Errorf("%s: no version number in %q", r.Name, r.Version)
	}
	return version.NewVersion(m)
}

// Defaults returns the probes reported by `apigen --version`.
func Defaults() []Probe {
	const rubyNote = "required for ruby linting and testing"
	return []Probe{
		Command{Name: "ruby", Args: []string{"-v"}, Note: rubyNote, Parse: RubyVersion},
		Command{Name: "gem", Args: []string{"-v"}, Note: rubyNote},
		Command{Name: "bash", Args: []string{"--version"}, Note: "required for bash testing", Parse: BashVersion},
		Command{Name: "pwsh", Args: []string{"--version"}, Note: "required for powershell packaging"},
	}
}

// RunAll runs the probes in order.
func RunAll(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		results = append(results, p.Probe(ctx))
	}
	return results
}
