package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-bindstat/pkg/cli"
)

func runTool(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := command().Main(args, &stdout, &stderr)
	return code, stderr.String()
}

func TestPopkins(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "full_bindingsites.data")
	out := filepath.Join(dir, "popkins.csv")
	lines := "" +
		"\n" +
		"(0,0,4,0),(4,0,0,0);\n" +
		"(0,0,4,0),(4,0,0,0),(1,1,4,1),(4,1,1,1);\n"
	require.NoError(t, os.WriteFile(in, []byte(lines), 0o644))

	code, stderr := runTool(t, "-workers", "2", in, out, "0", "10", "3")
	require.Equal(t, cli.ExitOK, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "3,0,0,0,0,0\n2,1,0,0,0,0\n1,0,0,0,2,0\n", string(data))
}

// TestPopkinsSingletonAB covers (1,1,2,2),(1,2,3,4); with one receptor at id 1
func TestPopkinsSingletonAB(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "final.data")
	out := filepath.Join(dir, "popkins.csv")
	require.NoError(t, os.WriteFile(in, []byte("(1,1,2,2),(1,2,3,4);\n"), 0o644))

	code, stderr := runTool(t, "-start-indices", "1,2", "-site-a", "1", "-site-b", "2", in, out, "0", "4", "0")
	require.Equal(t, cli.ExitOK, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "0,0,0,1\n", string(data))
}

func TestPopkinsLayoutFromConfig(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "full_bindingsites.data")
	out := filepath.Join(dir, "popkins.csv")
	cfg := filepath.Join(dir, "exp.yaml")
	require.NoError(t, os.WriteFile(in, []byte("(0,0,4,0),(4,0,0,0);\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg, []byte("total_molecules: 10\nstart_indices: [0, 3]\n"), 0o644))

	code, stderr := runTool(t, "-config", cfg, in, out, "0")
	require.Equal(t, cli.ExitOK, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "2,1,0,0,0,0\n", string(data))

	// a totalMols argument overrides the configured total
	code, stderr = runTool(t, "-config", cfg, in, out, "0", "12")
	require.Equal(t, cli.ExitOK, code, stderr)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "2,1,0,0,0,0\n", string(data))
}

func TestPopkinsErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.data")
	require.NoError(t, os.WriteFile(in, []byte("(0,0,4,0);\n(0,0,44,0);\n"), 0o644))
	out := filepath.Join(dir, "out.csv")

	tests := []struct {
		name string
		args []string
	}{
		{"wrong arity", []string{in, out}},
		{"no start index", []string{in, out, "0", "10"}},
		{"no total", []string{in, out, "0"}},
		{"negative window", []string{"-window", "-1", in, out, "0", "10", "3"}},
		{"non-integer total", []string{in, out, "0", "ten", "3"}},
		{"missing input", []string{filepath.Join(dir, "absent"), out, "0", "10", "3"}},
		{"id outside layout", []string{in, out, "0", "10", "3"}},
		{"unknown type", []string{in, out, "5", "10", "3"}},
		{"same sites", []string{"-site-b", "0", in, out, "0", "10", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := runTool(t, tt.args...)
			assert.Equal(t, cli.ExitFailure, code)
		})
	}
}
