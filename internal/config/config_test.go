package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLanguage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty selects default", "", LanguagePython, false},
		{"python", "python", LanguagePython, false},
		{"ruby upper case", "Ruby", LanguageRuby, false},
		{"bash", "bash", LanguageBash, false},
		{"powershell", "powershell", LanguagePowerShell, false},
		{"pwsh alias", "pwsh", LanguagePowerShell, false},
		{"cobol rejected", "cobol", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateLanguage(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsupportedLanguage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptions(t *testing.T) {
	o := NewOptions(OptLint, OptClassy)
	assert.True(t, o.Has(OptLint))
	assert.False(t, o.Has(OptTextWrap))

	o.Set(OptTextWrap, true)
	o.Set(OptLint, false)
	assert.Equal(t, []string{OptClassy, OptTextWrap}, o.Names())

	var empty Options
	assert.False(t, empty.Has(OptClassy))
	assert.Empty(t, empty.Names())
}

func TestFileOptions(t *testing.T) {
	o := FileOptions(nil)
	assert.Equal(t, []string{OptTextWrap}, o.Names())
	assert.Empty(t, o.FileNames())

	o = FileOptions([]string{OptClassy, OptNoWrap})
	assert.True(t, o.Has(OptClassy))
	assert.False(t, o.Has(OptTextWrap))
	assert.False(t, o.Has(OptNoWrap))
	assert.Equal(t, []string{OptClassy, OptNoWrap}, o.FileNames())

	// FileNames round-trips through FileOptions
	assert.Equal(t, o, FileOptions(o.FileNames()))
}

func TestHasClasses(t *testing.T) {
	assert.True(t, HasClasses(LanguagePython))
	assert.True(t, HasClasses(LanguageRuby))
	assert.False(t, HasClasses(LanguageBash))
	assert.False(t, HasClasses(LanguagePowerShell))
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apigen.yaml")
	content := `key: secret
language: ruby
options: [classy, textwrap]
include_paths:
  - /organizations/**
module:
  name: DashAPI
  version: 1.2.3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Key)
	assert.Equal(t, "ruby", cfg.Language)
	assert.Equal(t, []string{"classy", "textwrap"}, cfg.Options)
	assert.Equal(t, []string{"/organizations/**"}, cfg.IncludePaths)
	assert.Equal(t, "DashAPI", cfg.Module.Name)

	out := filepath.Join(dir, "effective.yaml")
	require.NoError(t, Save(out, cfg))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), redactedKey)

	// The in-memory config is untouched by Save.
	assert.Equal(t, "secret", cfg.Key)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	unknownField := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknownField, []byte("langauge: ruby\n"), 0644))
	_, err = Load(unknownField)
	require.Error(t, err)

	badOption := filepath.Join(dir, "option.yaml")
	require.NoError(t, os.WriteFile(badOption, []byte("options: [fancy]\n"), 0644))
	_, err = Load(badOption)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fancy")
}

func TestResolveKey(t *testing.T) {
	t.Setenv(KeyEnvVar, "")

	_, err := ResolveKey("", nil)
	assert.ErrorIs(t, err, ErrMissingKey)

	key, err := ResolveKey("flag", &File{Key: "file"})
	require.NoError(t, err)
	assert.Equal(t, "flag", key)

	key, err = ResolveKey("", &File{Key: "file"})
	require.NoError(t, err)
	assert.Equal(t, "file", key)

	// A redacted dump fed back in must not be used as a key.
	t.Setenv(KeyEnvVar, "env")
	key, err = ResolveKey("", &File{Key: redactedKey})
	require.NoError(t, err)
	assert.Equal(t, "env", key)
}

func TestMetadata(t *testing.T) {
	m := Metadata{Name: "Custom"}.WithDefaults()
	assert.Equal(t, "Custom", m.Name)
	assert.Equal(t, DefaultModuleVersion, m.Version)
	assert.Equal(t, DefaultPowerShellVersion, m.PowerShellVersion)

	m.ReleaseNotes = "v0.2.0\n- added classes\n\nv0.1.0\n- initial"
	assert.Equal(t, "v0.2.0\n- added classes", m.ReleaseNotesSummary())

	m.ReleaseNotes = strings.Repeat("x", 2000)
	assert.Len(t, m.ReleaseNotesSummary(), maxReleaseNotes)

	m.ReleaseNotes = "v1 " + strings.Repeat("é", 2000)
	summary := m.ReleaseNotesSummary()
	assert.True(t, utf8.ValidString(summary))
	assert.Equal(t, maxReleaseNotes, utf8.RuneCountInString(summary))
}
