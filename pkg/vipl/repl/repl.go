// Package repl implements the interactive vipl prompt.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"

	verrors "github.com/sambeau/vipl/pkg/vipl/errors"
	"github.com/sambeau/vipl/pkg/vipl/evaluator"
	"github.com/sambeau/vipl/pkg/vipl/keyword"
	"github.com/sambeau/vipl/pkg/vipl/logging"
)

const PROMPT = ">>> "

const LOGO = `
█░█ █ █▀█ █░░
▀▄▀ █ █▀▀ █▄▄`

// Options configures a REPL session.
type Options struct {
	Version  string
	History  string          // history file, empty for none
	Keywords string          // keyword file to watch, empty for none
	Watch    bool            // reload Keywords when it changes
	Diag     *logging.Logger // diagnostics, may be nil
}

// Start runs an interactive session on the terminal until exit, Ctrl+D or
// ctx is done. The interpreter's symbol table persists across lines; a fatal
// error is reported and the session continues.
func Start(ctx context.Context, in *evaluator.Interpreter, out io.Writer, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	s := &session{in: in, out: out}
	line.SetCompleter(s.complete)

	if opts.History != "" {
		if f, err := os.Open(opts.History); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(opts.History); err == nil {
				line.WriteHistory(f)
				f.Close()
			} else {
				opts.Diag.Warnf("could not save history: %v", err)
			}
		}()
	}

	if opts.Watch && opts.Keywords != "" {
		stop := watchKeywords(ctx, in, opts.Keywords, opts.Diag)
		defer stop()
	}

	fmt.Fprintln(out, LOGO)
	fmt.Fprintln(out, "v", opts.Version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	for ctx.Err() == nil {
		input, err := line.Prompt(PROMPT)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		if s.handle(input) {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
	}
}

func watchKeywords(ctx context.Context, in *evaluator.Interpreter, path string, diag *logging.Logger) func() {
	w, err := keyword.NewWatcher(path,
		func(t *keyword.Table) {
			in.SetKeywords(t)
			diag.Infof("reloaded %d keywords from %s", t.Len(), path)
		},
		func(err error) {
			diag.Errorf("keyword reload: %v", err)
		},
	)
	if err != nil {
		diag.Warnf("cannot watch %s: %v", path, err)
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	go w.Run(ctx)
	diag.Infof("watching %s for changes", path)

	return func() {
		cancel()
		w.Close()
	}
}

// session holds the per-line logic so it can run without a terminal.
type session struct {
	in  *evaluator.Interpreter
	out io.Writer
}

// handle processes one line of input and reports whether the session should
// end.
func (s *session) handle(input string) bool {
	trimmed := strings.TrimSpace(input)

	switch trimmed {
	case "exit", "exit()", "quit":
		return true
	}

	if strings.HasPrefix(trimmed, ":") && !strings.HasPrefix(trimmed, ":=") {
		s.command(trimmed)
		return false
	}

	if err := s.in.Exec(input); err != nil {
		printError(s.out, err)
	}
	return false
}

// command handles REPL meta-commands that start with ':'
func (s *session) command(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :vars           Show declared variables")
		fmt.Fprintln(s.out, "  :keywords       Show the keyword table")
		fmt.Fprintln(s.out, "  exit, quit      Exit the REPL")

	case ":vars":
		vars := s.in.Symbols.Variables()
		if len(vars) == 0 {
			fmt.Fprintln(s.out, "(no variables)")
			return
		}
		for _, v := range vars {
			kind := "string"
			if v.Numeric {
				kind = "number"
			}
			fmt.Fprintf(s.out, "  %s: %s = %s\n", v.Name, kind, v.Value)
		}

	case ":keywords":
		entries := s.in.Keywords().Entries()
		if len(entries) == 0 {
			fmt.Fprintln(s.out, "(no keywords)")
			return
		}
		for _, e := range entries {
			fmt.Fprintf(s.out, "  %s → %s\n", e.Name, e.Raw)
		}

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// complete returns completions for the last word of line from keyword and
// variable names.
func (s *session) complete(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if last := line[len(line)-1]; last == ' ' || last == '\t' {
		return nil
	}

	words := strings.Fields(line)
	lastWord := words[len(words)-1]
	head := line[:len(line)-len(lastWord)]

	seen := make(map[string]bool)
	var matches []string
	candidates := append(s.in.Keywords().Names(), s.in.Symbols.Names()...)
	for _, word := range candidates {
		if seen[word] || !strings.HasPrefix(word, lastWord) {
			continue
		}
		seen[word] = true
		matches = append(matches, head+word)
	}
	sort.Strings(matches)
	return matches
}

func printError(out io.Writer, err error) {
	var ve *verrors.ViplError
	if errors.As(err, &ve) {
		fmt.Fprintln(out, ve.PrettyString())
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}
