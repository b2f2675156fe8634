// Package dataio opens analysis inputs and outputs. Paths ending in ".sz"
// are snappy framed streams; plain inputs are memory mapped.
package dataio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// CompressedExt marks snappy framed files.
const CompressedExt = ".sz"

// IsCompressed reports whether path names a snappy framed file.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedExt)
}

// OpenReader opens path for sequential reading. A missing file yields an
// errs.ErrMissingFile error.
func OpenReader(path string) (io.ReadCloser, error) {
	if IsCompressed(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, openError(path, err)
		}
		return &readCloser{Reader: snappy.NewReader(f), close: f.Close}, nil
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	return &readCloser{Reader: io.NewSectionReader(m, 0, int64(m.Len())), close: m.Close}, nil
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errs.MissingFile("open", path, err)
	}
	return errs.New("open").Path(path).Cause(err).Err()
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error {
	return r.close()
}

// LineReader yields the lines of an input file without a length limit.
type LineReader struct {
	path string
	src  io.ReadCloser
	buf  *bufio.Reader
	line int
}

// OpenLines opens path for line-by-line reading.
func OpenLines(path string) (*LineReader, error) {
	src, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &LineReader{path: path, src: src, buf: bufio.NewReaderSize(src, 1<<16)}, nil
}

// Next returns the next line without its line terminator, or io.EOF after
// the last line. A final line without a newline is still returned.
func (r *LineReader) Next() (string, error) {
	line, err := r.buf.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", io.EOF
		}
	} else if err != nil {
		return "", errs.New("read").Path(r.path).Line(r.line + 1).Cause(err).Err()
	}
	r.line++
	return strings.TrimRight(line, "\r\n"), nil
}

// Lines returns the number of lines returned so far.
func (r *LineReader) Lines() int {
	return r.line
}

// Path returns the file being read.
func (r *LineReader) Path() string {
	return r.path
}

// Close releases the underlying file or mapping.
func (r *LineReader) Close() error {
	return r.src.Close()
}

// ReadLines reads every line of path.
func ReadLines(path string) ([]string, error) {
	r, err := OpenLines(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var lines []string
	for {
		line, err := r.Next()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

// Create opens path for writing, truncating it. Writes are buffered and
// reach the file on Close.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.New("create").Path(path).Cause(err).Err()
	}

	if IsCompressed(path) {
		sw := snappy.NewBufferedWriter(f)
		return &writeCloser{Writer: sw, path: path, closers: []func() error{sw.Close, f.Close}}, nil
	}

	bw := bufio.NewWriterSize(f, 1<<16)
	return &writeCloser{Writer: bw, path: path, closers: []func() error{bw.Flush, f.Close}}, nil
}

type writeCloser struct {
	io.Writer
	path    string
	closers []func() error
	closed  bool
}

// Close flushes and closes in order and reports every failure.
func (w *writeCloser) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errList []error
	for _, c := range w.closers {
		if err := c(); err != nil {
			errList = append(errList, err)
		}
	}
	if err := errors.Join(errList...); err != nil {
		return fmt.Errorf("failed to close %s: %w", w.path, err)
	}
	return nil
}
