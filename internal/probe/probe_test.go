package probe

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeExec(outputs map[string]string) ExecFunc {
	return func(_ context.Context, name string, _ ...string) ([]byte, error) {
		out, ok := outputs[name]
		if !ok {
			return nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
		}
		return []byte(out), nil
	}
}

func TestCommand_Probe(t *testing.T) {
	run := fakeExec(map[string]string{
		"ruby": "ruby 3.2.2 (2023-03-30 revision e51014f9c0) [x86_64-linux]\n",
		"bash": "GNU bash, version 5.2.15(1)-release (x86_64-pc-linux-gnu)\nCopyright (C) 2022\n",
		"gem":  "\n3.4.10\n",
	})

	tests := []struct {
		name  string
		probe Command
		want  Result
	}{
		{
			name:  "ruby",
			probe: Command{Name: "ruby", Args: []string{"-v"}, Parse: RubyVersion, Exec: run},
			want:  Result{Name: "ruby", Present: true, Version: "3.2.2 (2023-03-30 revision e51014f9c0) [x86_64-linux]"},
		},
		{
			name:  "bash",
			probe: Command{Name: "bash", Parse: BashVersion, Exec: run},
			want:  Result{Name: "bash", Present: true, Version: "5.2.15(1)-release (x86_64-pc-linux-gnu)"},
		},
		{
			name:  "first line default",
			probe: Command{Name: "gem", Exec: run},
			want:  Result{Name: "gem", Present: true, Version: "3.4.10"},
		},
		{
			name:  "missing",
			probe: Command{Name: "pwsh", Note: "required for packaging", Exec: run},
			want:  Result{Name: "pwsh", Note: "required for packaging"},
		},
		{
			name:  "custom binary",
			probe: Command{Name: "interpreter", Bin: "ruby", Parse: RubyVersion, Exec: run},
			want:  Result{Name: "interpreter", Present: true, Version: "3.2.2 (2023-03-30 revision e51014f9c0) [x86_64-linux]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.probe.Probe(context.Background()))
		})
	}
}

func TestCommand_ProbeFailure(t *testing.T) {
	p := Command{Name: "ruby", Note: "needed", Exec: func(context.Context, string, ...string) ([]byte, error) {
		return []byte("partial"), errors.New("exit status 1")
	}}
	res := p.Probe(context.Background())
	assert.False(t, res.Present)
	assert.Equal(t, "not found (needed)", res.String())
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "1.2.3", Result{Present: true, Version: "1.2.3"}.String())
	assert.Equal(t, "not found", Result{}.String())
	assert.Equal(t, "not found (required for bash testing)", Result{Note: "required for bash testing"}.String())
}

func TestParsers(t *testing.T) {
	assert.Equal(t, "", BashVersion("no version text here"))
	assert.Equal(t, "3.0.0", RubyVersion("3.0.0"))
	assert.Equal(t, "", FirstLine("\n \n"))
	assert.Equal(t, "PowerShell 7.4.0", FirstLine("PowerShell 7.4.0\r\n"))
}

func TestSemver(t *testing.T) {
	v, err := Semver(Result{Name: "bash", Present: true, Version: "5.2.15(1)-release"})
	require.NoError(t, err)
	assert.Equal(t, "5.2.15", v.String())

	v, err = Semver(Result{Name: "pwsh", Present: true, Version: "PowerShell 7.4"})
	require.NoError(t, err)
	assert.Equal(t, "7.4.0", v.String())

	_, err = Semver(Result{Name: "ruby"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Semver(Result{Name: "x", Present: true, Version: "unknown"})
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	probes := Defaults()
	names := make([]string, 0, len(probes))
	for _, p := range probes {
		names = append(names, p.(Command).Name)
	}
	assert.Equal(t, []string{"ruby", "gem", "bash", "pwsh"}, names)
}

func TestRunAll(t *testing.T) {
	run := fakeExec(map[string]string{"bash": "GNU bash, version 5.1.16(1)-release"})
	results := RunAll(context.Background(), []Probe{
		Command{Name: "bash", Parse: BashVersion, Exec: run},
		Command{Name: "ruby", Exec: run},
	})
	require.Len(t, results, 2)
	assert.True(t, results[0].Present)
	assert.False(t, results[1].Present)
}
