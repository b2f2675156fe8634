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

func TestStericHindrance(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "final_states.data")
	out := filepath.Join(dir, "steric.txt")
	// types: receptors 0..1, type 1 ligands 2..3, type 2 ligands 4..5
	lines := "(2,0,0,0),(2,1,1,0),(0,0,2,0),(4,0,1,1);\n" +
		"(3,1,0,1),(3,1,1,1);\n"
	require.NoError(t, os.WriteFile(in, []byte(lines), 0o644))

	code, stderr := runTool(t, "-counts", in, out, "3", "6", "0,2,4")
	require.Equal(t, cli.ExitOK, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, ""+
		"1: P(A|B) = 0.5\n"+
		"1: P(B|A) = 1\n"+
		"2: P(A|B) = 0\n"+
		"2: P(B|A) = 0\n"+
		"1: A = 1, B = 2, both = 1\n"+
		"2: A = 1, B = 0, both = 0\n", string(data))
}

func TestStericHindranceErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "final_states.data")
	require.NoError(t, os.WriteFile(in, []byte("(9,0,0,0);\n"), 0o644))
	out := filepath.Join(dir, "steric.txt")

	tests := []struct {
		name string
		args []string
	}{
		{"arity", []string{in, out, "3", "6"}},
		{"type count mismatch", []string{in, out, "2", "6", "0,2,4"}},
		{"unsorted starts", []string{in, out, "3", "6", "0,4,2"}},
		{"bad start list", []string{in, out, "3", "6", "0,a,4"}},
		{"id outside layout", []string{in, out, "3", "6", "0,2,4"}},
		{"missing input", []string{filepath.Join(dir, "absent"), out, "3", "6", "0,2,4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := runTool(t, tt.args...)
			assert.Equal(t, cli.ExitFailure, code)
		})
	}
}
