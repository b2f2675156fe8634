package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-bindstat/pkg/cli"
	"github.com/dd0wney/cluso-bindstat/pkg/manifest"
)

func writeRun(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func runTool(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := command().Main(args, &stdout, &stderr)
	return code, stderr.String()
}

func TestAggregateRuns(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "matrices")
	writeRun(t, in, "run_0/popkins.csv", "2,0,0,0,0\n2,0,0,0,0\n1,0,1,0,0\n0,1,1,0,0\n1,0,0,1,0\n")
	writeRun(t, in, "run_1/popkins.csv", "2,0,0,0,0\n1,1,0,0,0\n0,0,0,0,2\n")

	code, stderr := runTool(t, "-workers", "2", "exp", in, out, "5")
	require.Equal(t, cli.ExitOK, code, stderr)

	free, err := os.ReadFile(filepath.Join(out, "cumulative_class_stats.free.exp.csv"))
	require.NoError(t, err)
	assert.Equal(t, "2,2\n2,1\n1,0\n0,0\n1,0\n", string(free))

	mer, err := os.ReadFile(filepath.Join(out, "cumulative_class_stats.2mer.exp.csv"))
	require.NoError(t, err)
	assert.Equal(t, "0,0\n0,0\n0,2\n0,2\n0,2\n", string(mer))

	m, err := manifest.Read(filepath.Join(out, manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, "aggregate-runs", m.Tool)
	assert.Equal(t, []int{0, 1}, m.Columns)
	assert.Equal(t, []manifest.FilledRun{{Run: 1, Rows: 2}}, m.Filled)
	assert.Len(t, m.Outputs, 5)
}

func TestAggregateRunsTwiceIntoInputDir(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir, "run_0/popkins.csv", "2,0,0,0,0\n0,0,0,0,2\n")
	writeRun(t, dir, "run_1/popkins.csv", "2,0,0,0,0\n")

	for i := 0; i < 2; i++ {
		code, stderr := runTool(t, "exp", dir, dir, "2")
		require.Equal(t, cli.ExitOK, code, "pass %d: %s", i, stderr)
	}

	free, err := os.ReadFile(filepath.Join(dir, "cumulative_class_stats.free.exp.csv"))
	require.NoError(t, err)
	assert.Equal(t, "2,2\n0,2\n", string(free))

	m, err := manifest.Read(filepath.Join(dir, manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, m.Columns)
}

func TestAggregateRunsTimestepsFromConfig(t *testing.T) {
	in := t.TempDir()
	writeRun(t, in, "run_0.csv", "2,0,0,0,0\n")
	cfg := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("expected_timesteps: 3\n"), 0o644))
	out := t.TempDir()

	code, stderr := runTool(t, "-config", cfg, "exp", in, out)
	require.Equal(t, cli.ExitOK, code, stderr)

	free, err := os.ReadFile(filepath.Join(out, "cumulative_class_stats.free.exp.csv"))
	require.NoError(t, err)
	assert.Equal(t, "2\n2\n2\n", string(free))
}

func TestAggregateRunsBadRun(t *testing.T) {
	in := t.TempDir()
	writeRun(t, in, "run_0.csv", "2,0,0,0,0\n")
	writeRun(t, in, "run_1.csv", "2,0,0,0,0\n2,0,0,0,0\n2,0,0,0,0\n")

	out := filepath.Join(t.TempDir(), "fail")
	code, stderr := runTool(t, "exp", in, out, "2")
	assert.Equal(t, cli.ExitFailure, code)
	assert.Contains(t, stderr, "invariant violation")

	out = filepath.Join(t.TempDir(), "skip")
	code, stderr = runTool(t, "-skip-bad-runs", "exp", in, out, "2")
	require.Equal(t, cli.ExitOK, code, stderr)

	m, err := manifest.Read(filepath.Join(out, manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, m.Columns)
	require.Len(t, m.Skipped, 1)
	assert.Equal(t, 1, m.Skipped[0].ID)
}

func TestAggregateRunsArguments(t *testing.T) {
	in := t.TempDir()
	writeRun(t, in, "run_0.csv", "2,0,0,0,0\n")
	out := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"arity", []string{"exp", in}},
		{"no timesteps", []string{"exp", in, out}},
		{"negative expected runs", []string{"-expected-runs", "-1", "exp", in, out, "5"}},
		{"bad name", []string{"a/b", in, out, "5"}},
		{"bad timesteps", []string{"exp", in, out, "five"}},
		{"missing run", []string{"-expected-runs", "2", "exp", in, out, "5"}},
		{"bad group-from", []string{"-group-from", "3", "exp", in, out, "5"}},
		{"missing input dir", []string{"exp", filepath.Join(in, "absent"), out, "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := runTool(t, tt.args...)
			assert.Equal(t, cli.ExitFailure, code)
		})
	}
}
