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

package config

import "sort"

// Option names as selected on the command line.
const (
	OptClassy        = "classy"
	OptLint          = "lint"
	OptTextWrap      = "textwrap"
	OptAddSampleResp = "add-sample-resp"

	// OptNoWrap turns textwrap off from a config file's options list.
	OptNoWrap = "no-wrap"
)

var knownOptions = map[string]struct{}{
	OptClassy:        {},
	OptLint:          {},
	OptTextWrap:      {},
	OptAddSampleResp: {},
	OptNoWrap:        {},
}

// IsOption reports whether name is a recognised option.
func IsOption(name string) bool {
	_, ok := knownOptions[name]
	return ok
}

// Options is the flat set of enabled option names. The zero value has
// nothing enabled.
type Options map[string]bool

// NewOptions builds an option set from names; unknown names are kept so the
// caller can report them.
func NewOptions(names ...string) Options {
	o := make(Options, len(names))
	for _, n := range names {
		o[n] = true
	}
	return o
}

// Has reports whether the option is enabled.
func (o Options) Has(name string) bool {
	return o[name]
}

// Set enables or disables an option.
func (o Options) Set(name string, on bool) {
	if on {
		o[name] = true
		return
	}
	delete(o, name)
}

// Names returns the enabled options sorted by name.
func (o Options) Names() []string {
	names := make([]string, 0, len(o))
	for n, on := range o {
		if on {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// FileOptions builds the option set described by a config file's options
// list: textwrap is on unless the list names no-wrap.
func FileOptions(names []string) Options {
	o := NewOptions(OptTextWrap)
	for _, n := range names {
		if n == OptNoWrap {
			o.Set(OptTextWrap, false)
			continue
		}
		o.Set(n, true)
	}
	return o
}

// FileNames is the inverse of FileOptions.
func (o Options) FileNames() []string {
	names := make([]string, 0, len(o)+1)
	for _, n := range o.Names() {
		if n != OptTextWrap && n != OptNoWrap {
			names = append(names, n)
		}
	}
	if !o.Has(OptTextWrap) {
		names = append(names, OptNoWrap)
	}
	sort.Strings(names)
	return names
}
