package vipl

import (
	"io"
	"strings"
	"sync"

	"github.com/sambeau/vipl/pkg/vipl/evaluator"
)

// Output is where print statements write.
type Output = evaluator.Output

// Discard drops everything printed.
var Discard Output = evaluator.OutputFunc(func(string) {})

type writerOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *writerOutput) PrintLine(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	io.WriteString(o.w, line+"\n")
}

// WriterOutput writes each printed line to w followed by a newline. Several
// interpreters may share it.
func WriterOutput(w io.Writer) Output {
	return &writerOutput{w: w}
}

// Transcript records printed lines in order.
type Transcript struct {
	mu    sync.Mutex
	lines []string
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) PrintLine(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
}

// Lines returns a copy of the recorded lines.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

// String returns the output as a terminal would show it.
func (t *Transcript) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b strings.Builder
	for _, l := range t.lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// Reset forgets all recorded lines.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = nil
}
