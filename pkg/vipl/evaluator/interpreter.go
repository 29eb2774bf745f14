package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/sambeau/vipl/pkg/vipl/dispatch"
	verrors "github.com/sambeau/vipl/pkg/vipl/errors"
	"github.com/sambeau/vipl/pkg/vipl/keyword"
	"github.com/sambeau/vipl/pkg/vipl/logging"
	"github.com/sambeau/vipl/pkg/vipl/source"
	"github.com/sambeau/vipl/pkg/vipl/symbols"
)

// Interpreter runs vipl lines against its own symbol table. It is not safe
// for concurrent Exec calls; only the keyword table may be swapped from
// another goroutine.
type Interpreter struct {
	Symbols  *symbols.Table
	Output   Output          // program output
	Diag     *logging.Logger // diagnostics, nil for none
	Mode     keyword.MatchMode
	Filename string // used to annotate errors

	mu       sync.RWMutex
	keywords *keyword.Table
}

// NewInterpreter creates an interpreter with an empty symbol table that
// prints to Stdout.
func NewInterpreter(keywords *keyword.Table) *Interpreter {
	return &Interpreter{
		Symbols:  symbols.New(),
		Output:   Stdout,
		keywords: keywords,
	}
}

// Keywords returns the current keyword table.
func (in *Interpreter) Keywords() *keyword.Table {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.keywords
}

// SetKeywords replaces the keyword table. Lines already dispatched are not
// affected.
func (in *Interpreter) SetKeywords(t *keyword.Table) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keywords = t
}

// Classify dispatches line without executing it. It reports false for blank
// lines and for comments, which start with '#' in the first column.
func (in *Interpreter) Classify(line string) (dispatch.Statement, bool) {
	st, _, ok := in.classify(line)
	return st, ok
}

func (in *Interpreter) classify(line string) (dispatch.Statement, *keyword.Table, bool) {
	if skipped(line) {
		return dispatch.Statement{}, nil, false
	}
	line = strings.TrimSpace(source.Normalize(line))
	if line == "" {
		return dispatch.Statement{}, nil, false
	}

	kw := in.Keywords()
	return dispatch.Classify(line, kw, in.Mode), kw, true
}

func skipped(line string) bool {
	return line == "" || strings.HasPrefix(line, "#")
}

// Exec processes a single line. The returned error, if any, is a
// *errors.ViplError and is fatal to the run.
func (in *Interpreter) Exec(line string) error {
	st, kw, ok := in.classify(line)
	if !ok {
		return nil
	}

	switch st.Kind {
	case dispatch.Print:
		out, err := Evaluate(st.Operand, in.Symbols)
		if err != nil {
			return err
		}
		in.Output.PrintLine(out)

	case dispatch.Declare:
		return in.declare(st, kw)

	case dispatch.Assign:
		return in.assign(st)

	case dispatch.Inert:
		in.Diag.Debugf("keyword %q has no action, line ignored", st.Keyword.Name)

	default:
		in.Diag.Debugf("not a statement: %q", st.Operand)
	}
	return nil
}

func (in *Interpreter) declare(st dispatch.Statement, kw *keyword.Table) error {
	name := strings.TrimSpace(st.Name)
	value := strings.TrimSpace(st.Value)
	if name == "" || value == "" {
		in.Diag.Debugf("declaration skipped: empty name or value (name=%q value=%q)", name, value)
		return nil
	}
	if kw.IsReserved(name) {
		return verrors.NewReservedName(name)
	}

	in.Symbols.Declare(name, literal(value))
	return nil
}

// assign trims the name but never skips on empty; an empty name is simply
// undefined. The value is stored as written, quotes included.
func (in *Interpreter) assign(st dispatch.Statement) error {
	name := strings.TrimSpace(st.Name)
	if !in.Symbols.Assign(name, strings.TrimSpace(st.Value)) {
		return verrors.NewUndefinedVariable(name, in.Symbols.Names())
	}
	return nil
}

// Run executes every line of r in order and stops at the first fatal error.
// Effects of earlier lines are kept. ctx is checked between lines.
func (in *Interpreter) Run(ctx context.Context, r io.Reader) error {
	sc := source.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.Exec(sc.Text()); err != nil {
			return in.annotate(err, sc.Line(), sc.Text())
		}
	}
	if err := sc.Err(); err != nil {
		if in.Filename != "" {
			return fmt.Errorf("reading %s: %w", in.Filename, err)
		}
		return fmt.Errorf("reading script: %w", err)
	}
	return nil
}

func (in *Interpreter) annotate(err error, line int, text string) error {
	var ve *verrors.ViplError
	if !errors.As(err, &ve) {
		return err
	}
	ve = ve.WithPosition(line, statementColumn(text))
	if in.Filename != "" {
		ve = ve.WithFile(in.Filename)
	}
	return ve
}

// statementColumn returns the 1-based rune column of the first non-space
// character.
func statementColumn(text string) int {
	i := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsSpace(r) })
	if i < 0 {
		return 1
	}
	return utf8.RuneCountInString(text[:i]) + 1
}
