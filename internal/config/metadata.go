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

import (
	"strings"
	"unicode/utf8"
)

// maxReleaseNotes is the longest value New-ModuleManifest accepts for -ReleaseNotes.
const maxReleaseNotes = 840

const (
	DefaultModuleName        = "MerakiAPI"
	DefaultModuleVersion     = "0.1.0"
	DefaultPowerShellVersion = "5.0"
	DefaultProjectURL        = "https://github.com/ehabterra/apigen"
)

// Metadata describes the generated package. It is passed explicitly to the
// packaging helper instead of being read from package-level globals.
type Metadata struct {
	Name              string   `yaml:"name,omitempty"`
	Version           string   `yaml:"version,omitempty"`
	Author            string   `yaml:"author,omitempty"`
	Company           string   `yaml:"company,omitempty"`
	Copyright         string   `yaml:"copyright,omitempty"`
	Description       string   `yaml:"description,omitempty"`
	ProjectURL        string   `yaml:"project_url,omitempty"`
	Tags              []string `yaml:"tags,omitempty"`
	PowerShellVersion string   `yaml:"powershell_version,omitempty"`
	ReleaseNotes      string   `yaml:"release_notes,omitempty"`
}

// DefaultMetadata returns the metadata used when the config file has no
// module block.
func DefaultMetadata() Metadata {
	return Metadata{
		Name:              DefaultModuleName,
		Version:           DefaultModuleVersion,
		Author:            "Ehab Terra",
		Company:           "Ehab Terra",
		Copyright:         "Ehab Terra 2025 All Rights Reserved.",
		Description:       "Generated client functions for the Meraki Dashboard API.",
		ProjectURL:        DefaultProjectURL,
		Tags:              []string{"Meraki", "API", "Networking"},
		PowerShellVersion: DefaultPowerShellVersion,
		ReleaseNotes:      "Initial release.",
	}
}

// WithDefaults fills every empty field from DefaultMetadata.
func (m Metadata) WithDefaults() Metadata {
	d := DefaultMetadata()
	if m.Name == "" {
		m.Name = d.Name
	}
	if m.Version == "" {
		m.Version = d.Version
	}
	if m.Author == "" {
		m.Author = d.Author
	}
	if m.Company == "" {
		m.Company = d.Company
	}
	if m.Copyright == "" {
		m.Copyright = d.Copyright
	}
	if m.Description == "" {
		m.Description = d.Description
	}
	if m.ProjectURL == "" {
		m.ProjectURL = d.ProjectURL
	}
	if len(m.Tags) == 0 {
		m.Tags = d.Tags
	}
	if m.PowerShellVersion == "" {
		m.PowerShellVersion = d.PowerShellVersion
	}
	if m.ReleaseNotes == "" {
		m.ReleaseNotes = d.ReleaseNotes
	}
	return m
}

// ReleaseNotesSummary returns the most recent changelog entry, i.e. the first
// paragraph of ReleaseNotes, cut to the manifest limit in characters.
func (m Metadata) ReleaseNotesSummary() string {
	notes := strings.ReplaceAll(m.ReleaseNotes, "\r\n", "\n")
	notes = strings.TrimSpace(notes)
	if i := strings.Index(notes, "\n\n"); i >= 0 {
		notes = notes[:i]
	}
	if utf8.RuneCountInString(notes) > maxReleaseNotes {
		notes = string([]rune(notes)[:maxReleaseNotes])
	}
	return notes
}
