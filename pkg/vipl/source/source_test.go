package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/unicode/norm"
)

const script = "x:=5\nprint x\n"

func TestScanner(t *testing.T) {
	input := "\uFEFFfirst\r\n\n" + norm.NFD.String("biến") + "\nlast"
	s := NewScanner(strings.NewReader(input))

	var lines []string
	var numbers []int
	for s.Scan() {
		lines = append(lines, s.Text())
		numbers = append(numbers, s.Line())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"first", "", norm.NFC.String("biến"), "last"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, lines[i], want[i])
		}
		if numbers[i] != i+1 {
			t.Errorf("line number %d, want %d", numbers[i], i+1)
		}
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadAllCompressed(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "hello.vipl")
	writeFile(t, plain, []byte(script))

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write([]byte(script)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	gzPath := filepath.Join(dir, "hello.vipl.gz")
	writeFile(t, gzPath, gz.Bytes())

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	zstPath := filepath.Join(dir, "hello.vipl.zst")
	writeFile(t, zstPath, enc.EncodeAll([]byte(script), nil))
	enc.Close()

	for _, path := range []string{plain, gzPath, zstPath} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			got, err := ReadAll(path, nil)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if got != script {
				t.Errorf("ReadAll() = %q, want %q", got, script)
			}
		})
	}
}

func TestReadAllStdin(t *testing.T) {
	got, err := ReadAll(Stdin, strings.NewReader(script))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got != script {
		t.Errorf("ReadAll() = %q, want %q", got, script)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(filepath.Join(dir, "missing.vipl"), nil); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.vipl.gz")
	writeFile(t, bad, []byte("not gzip"))
	if _, err := Open(bad, nil); err == nil {
		t.Error("expected error for corrupt gzip")
	}
}
