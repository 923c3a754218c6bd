package psmodule

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-version"
	"github.com/shoenig/test/must"

	"github.com/ehabterra/apigen/internal/config"
	"github.com/ehabterra/apigen/internal/emit"
)

const testScript = `<#
Generated client.
#>
function Invoke-ApiCall {
}

function ConvertTo-QueryString {
}

function get_organizations {
    <#
    .SYNOPSIS
    This function lists organizations.
    #>
}

function get_thing_2 {
}
`

type fakeRunner struct {
	name   string
	args   []string
	stdout string
	stderr string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.name = name
	f.args = args
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func writeScript(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "meraki_api.ps1")
	must.NoError(t, os.WriteFile(path, []byte(testScript), 0644))
	return path
}

func argValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

func TestFindFunctions(t *testing.T) {
	must.Eq(t, []string{"Invoke-ApiCall", "ConvertTo-QueryString", "get_organizations", "get_thing_2"}, FindFunctions(testScript))
	must.SliceEmpty(t, FindFunctions("# no functions here"))
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir)
	runner := &fakeRunner{}
	var out bytes.Buffer

	b := &Builder{
		Dir:    dir,
		Runner: runner,
		Stdout: &out,
		Metadata: config.Metadata{
			Name:         "TestModule",
			Version:      "1.2.3",
			Author:       "Jane Doe <jane@example.com>",
			ReleaseNotes: "First entry.\n\nOlder entry.",
		},
	}
	mod, err := b.Build(context.Background(), script)
	must.NoError(t, err)

	must.Eq(t, filepath.Join(dir, "TestModule"), mod.Dir)
	for _, sub := range []string{"Classes", "Functions/Private", "Functions/Public"} {
		info, err := os.Stat(filepath.Join(mod.Dir, filepath.FromSlash(sub)))
		must.NoError(t, err)
		must.True(t, info.IsDir())
	}
	must.FileExists(t, filepath.Join(mod.Dir, "TestModule.psm1"))
	must.FileContains(t, filepath.Join(mod.Dir, "TestModule.psm1"), "Export-ModuleMember")
	must.FileContains(t, filepath.Join(mod.Dir, "Functions", "Public", "meraki_api.ps1"), "function get_organizations")
	must.Eq(t, []string{"Invoke-ApiCall", "ConvertTo-QueryString", "get_organizations", "get_thing_2"}, mod.Functions)

	must.Eq(t, "pwsh", runner.name)
	must.Eq(t, []string{"-NoProfile", "-Command", "New-ModuleManifest", "-Path"}, runner.args[:4])
	must.Eq(t, emit.PSSanitize(mod.Manifest), runner.args[4])
	must.Eq(t, "1.2.3", argValue(t, runner.args, "-ModuleVersion"))
	must.Eq(t, "Jane` Doe` `<jane@example.com`>", argValue(t, runner.args, "-Author"))
	must.Eq(t, "First` entry.", argValue(t, runner.args, "-ReleaseNotes"))
	must.Eq(t, `@("Invoke-ApiCall",` + "` " + `"ConvertTo-QueryString",` + "` " + `"get_organizations",` + "` " + `"get_thing_2")`,
		argValue(t, runner.args, "-FunctionsToExport"))
	must.Eq(t, emit.PSSanitize(config.DefaultProjectURL+licensePath), argValue(t, runner.args, "-LicenseUri"))

	// silent command, nothing printed
	must.Eq(t, "", out.String())
}

func TestBuild_PrintsOutput(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	b := &Builder{Dir: dir, Runner: &fakeRunner{stderr: "WARNING: something", err: errors.New("exit status 1")}, Stdout: &out}

	_, err := b.Build(context.Background(), writeScript(t, dir))
	must.NoError(t, err)
	must.StrContains(t, out.String(), "PS MODULE STDERR: WARNING: something")
}

func TestBuild_MissingPowerShell(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{err: &exec.Error{Name: "pwsh", Err: exec.ErrNotFound}}
	b := &Builder{Dir: dir, Runner: runner, Stdout: &bytes.Buffer{}}

	_, err := b.Build(context.Background(), writeScript(t, dir))
	must.ErrorIs(t, err, exec.ErrNotFound)
	must.ErrorContains(t, err, "pwsh is required")
}

func TestBuild_InvalidVersion(t *testing.T) {
	dir := t.TempDir()
	b := &Builder{Dir: dir, Runner: &fakeRunner{}, Metadata: config.Metadata{Version: "not-a-version"}}

	_, err := b.Build(context.Background(), writeScript(t, dir))
	must.ErrorContains(t, err, "invalid module version")
	must.FileNotExists(t, filepath.Join(dir, config.DefaultModuleName))
}

func TestBuild_MissingScript(t *testing.T) {
	b := &Builder{Dir: t.TempDir(), Runner: &fakeRunner{}}
	_, err := b.Build(context.Background(), filepath.Join(t.TempDir(), "nope.ps1"))
	must.ErrorContains(t, err, "failed to read script")
}

func TestManifestArgs_SkipsEmpty(t *testing.T) {
	v := version.Must(version.NewVersion("2.0"))
	args := ManifestArgs(config.Metadata{Name: "M"}, v, &Module{Manifest: "/m/M.psd1", RootModule: "/m/M.psm1"})

	joined := strings.Join(args, " ")
	must.StrNotContains(t, joined, "-Author")
	must.StrNotContains(t, joined, "-Tags")
	must.StrContains(t, joined, "-ModuleVersion 2.0.0")
	must.Eq(t, "@()", argValue(t, args, "-FunctionsToExport"))

	for _, a := range args {
		must.Eq(t, a, emit.PSSanitize(emit.PSUnsanitize(a)))
	}
}
