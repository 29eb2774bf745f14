// Package source opens vipl scripts and splits them into numbered lines.
//
// Scripts may be plain text, gzip (.gz) or zstd (.zst) compressed. Every line
// is normalized to NFC so keywords written with combining marks match the
// precomposed spelling in the keyword table.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/unicode/norm"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// maxLineSize bounds a single script line.
const maxLineSize = 1 << 20

// Open opens the script at path, decompressing by extension. Path "-" reads
// stdin, which is never closed.
func Open(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == Stdin {
		return io.NopCloser(stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &stacked{Reader: zr, closers: []io.Closer{zr, f}}, nil

	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rc := dec.IOReadCloser()
		return &stacked{Reader: rc, closers: []io.Closer{rc, f}}, nil
	}

	return f, nil
}

// ReadAll returns the decoded text of the script at path.
func ReadAll(path string, stdin io.Reader) (string, error) {
	rc, err := Open(path, stdin)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return string(data), nil
}

type stacked struct {
	io.Reader
	closers []io.Closer
}

func (s *stacked) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Scanner yields the lines of a script with their 1-based numbers.
type Scanner struct {
	s    *bufio.Scanner
	line int
	text string
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Scanner{s: s}
}

// Scan advances to the next line.
func (s *Scanner) Scan() bool {
	if !s.s.Scan() {
		return false
	}
	s.line++

	text := s.s.Text()
	if s.line == 1 {
		text = strings.TrimPrefix(text, "\uFEFF")
	}
	text = strings.TrimSuffix(text, "\r")
	s.text = norm.NFC.String(text)
	return true
}

// Text returns the current line without its line ending.
func (s *Scanner) Text() string {
	return s.text
}

// Line returns the current 1-based line number.
func (s *Scanner) Line() int {
	return s.line
}

// Err returns the first non-EOF read error.
func (s *Scanner) Err() error {
	return s.s.Err()
}

// Normalize applies the same normalization as Scanner to a single line.
func Normalize(line string) string {
	return norm.NFC.String(line)
}
