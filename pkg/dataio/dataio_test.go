package dataio

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

func TestReadLinesPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.txt")
	require.NoError(t, os.WriteFile(path, []byte("(0,0,20,0);\r\n\n(1,1,21,0);"), 0o644))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"(0,0,20,0);", "", "(1,1,21,0);"}, lines)
}

func TestReadLinesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestReadLinesLongLine(t *testing.T) {
	long := strings.Repeat("(1,0,2,1),", 50000) + ";"
	path := filepath.Join(t.TempDir(), "dump.txt")
	require.NoError(t, os.WriteFile(path, []byte(long+"\n"), 0o644))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, long, lines[0])
}

func TestCreateCompressedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv.sz")

	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "1,0,0,0\n0,1,0,0\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	plain, err := io.ReadAll(snappy.NewReader(strings.NewReader(string(raw))))
	require.NoError(t, err)
	assert.Equal(t, "1,0,0,0\n0,1,0,0\n", string(plain))

	r, err := OpenLines(path)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "1,0,0,0", first)
	_, err = r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, r.Lines())
}

func TestCreatePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "3,0,0,0\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3,0,0,0\n", string(data))
}

func TestOpenMissingFile(t *testing.T) {
	for _, name := range []string{"nope.txt", "nope.txt.sz"} {
		_, err := OpenLines(filepath.Join(t.TempDir(), name))
		assert.ErrorIs(t, err, errs.ErrMissingFile, name)
	}
}

func TestCreateInMissingDirectory(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.Error(t, err)
}
