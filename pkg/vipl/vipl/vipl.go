// Package vipl provides a public API for embedding the vipl interpreter.
//
//	out := vipl.NewTranscript()
//	_, err := vipl.Eval(ctx, "x:=5\nprint x", vipl.WithOutput(out))
//	// out.String() == "5\n"
package vipl

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sambeau/vipl/pkg/vipl/evaluator"
	"github.com/sambeau/vipl/pkg/vipl/keyword"
	"github.com/sambeau/vipl/pkg/vipl/logging"
	"github.com/sambeau/vipl/pkg/vipl/source"
	"github.com/sambeau/vipl/pkg/vipl/symbols"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

type options struct {
	keywords *keyword.Table
	output   Output
	diag     *logging.Logger
	mode     keyword.MatchMode
	filename string
	symbols  *symbols.Table
}

// Option configures an evaluation.
type Option func(*options)

// WithKeywords sets the keyword table. The default is keyword.Builtin().
func WithKeywords(t *keyword.Table) Option {
	return func(o *options) { o.keywords = t }
}

// WithOutput sets where print statements write. The default is stdout.
func WithOutput(out Output) Option {
	return func(o *options) { o.output = out }
}

// WithDiagnostics sets the diagnostic logger.
func WithDiagnostics(l *logging.Logger) Option {
	return func(o *options) { o.diag = l }
}

// WithMatchMode sets how keywords are matched.
func WithMatchMode(m keyword.MatchMode) Option {
	return func(o *options) { o.mode = m }
}

// WithFilename names the source in error positions.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithSymbols runs against an existing symbol table, so state carries over
// between calls.
func WithSymbols(t *symbols.Table) Option {
	return func(o *options) { o.symbols = t }
}

// New creates an interpreter from options.
func New(opts ...Option) *evaluator.Interpreter {
	o := options{
		keywords: keyword.Builtin(),
		output:   evaluator.Stdout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	in := evaluator.NewInterpreter(o.keywords)
	in.Output = o.output
	in.Diag = o.diag
	in.Mode = o.mode
	in.Filename = o.filename
	if o.symbols != nil {
		in.Symbols = o.symbols
	}
	return in
}

// Result is the state left by a run. It is returned even when the run fails,
// since earlier lines keep their effects.
type Result struct {
	Symbols *symbols.Table
}

// Lookup returns the value of a variable after the run.
func (r *Result) Lookup(name string) (string, bool) {
	v, ok := r.Symbols.Lookup(name)
	if !ok {
		return "", false
	}
	return v.Value, true
}

// Eval runs code, one statement per line.
func Eval(ctx context.Context, code string, opts ...Option) (*Result, error) {
	return EvalReader(ctx, strings.NewReader(code), opts...)
}

// EvalReader runs every line read from r.
func EvalReader(ctx context.Context, r io.Reader, opts ...Option) (*Result, error) {
	in := New(opts...)
	err := in.Run(ctx, r)
	return &Result{Symbols: in.Symbols}, err
}

// EvalFile runs the script at path. Compressed scripts (.gz, .zst) are
// decoded first, and "-" reads standard input.
func EvalFile(ctx context.Context, path string, opts ...Option) (*Result, error) {
	rc, err := source.Open(path, os.Stdin)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	opts = append([]Option{WithFilename(path)}, opts...)
	return EvalReader(ctx, rc, opts...)
}
