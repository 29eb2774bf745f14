package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/sambeau/vipl/config"
	"github.com/sambeau/vipl/pkg/vipl/dispatch"
	verrors "github.com/sambeau/vipl/pkg/vipl/errors"
	"github.com/sambeau/vipl/pkg/vipl/evaluator"
	"github.com/sambeau/vipl/pkg/vipl/keyword"
	"github.com/sambeau/vipl/pkg/vipl/logging"
	"github.com/sambeau/vipl/pkg/vipl/repl"
	"github.com/sambeau/vipl/pkg/vipl/source"
	"github.com/sambeau/vipl/pkg/vipl/vipl"
)

// Exit codes
const (
	exitOK    = 0
	exitFatal = 1 // script error, or --check found non-statements
	exitUsage = 2 // bad flags, config, keyword or script file
)

func main() {
	ctx := context.Background()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv))
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	listKeywords := false
	if len(args) > 0 && args[0] == "keywords" {
		listKeywords = true
		args = args[1:]
	}

	flags := flag.NewFlagSet("vipl", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printHelp(stderr) }

	var (
		helpFlag        = flags.Bool("h", false, "Show help message")
		helpLongFlag    = flags.Bool("help", false, "Show help message")
		versionFlag     = flags.Bool("V", false, "Show version information")
		versionLongFlag = flags.Bool("version", false, "Show version information")
		evalFlag        = flags.String("e", "", "Evaluate code string")
		evalLongFlag    = flags.String("eval", "", "Evaluate code string")
		checkFlag       = flags.Bool("check", false, "Classify lines without executing")
		configPath      = flags.String("config", "", "Path to config file")
		keywordsPath    = flags.String("keywords", "", "Path to keyword file")
		matchFlag       = flags.String("match", "", "Keyword matching: delimited or prefix")
		watchFlag       = flags.Bool("watch", false, "Reload the keyword file on change (REPL)")
		quietFlag       = flags.Bool("q", false, "Only report errors")
		quietLongFlag   = flags.Bool("quiet", false, "Only report errors")
		debugFlag       = flags.Bool("debug", false, "Verbose diagnostics")
	)

	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	if *helpFlag || *helpLongFlag {
		printHelp(stdout)
		return exitOK
	}

	if *versionFlag || *versionLongFlag {
		fmt.Fprintf(stdout, "vipl version %s\n", vipl.Version)
		return exitOK
	}

	cfg, err := config.Load(*configPath, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: loading config: %v\n", err)
		return exitUsage
	}

	// Apply CLI overrides
	if *keywordsPath != "" {
		cfg.Keywords = *keywordsPath
	}
	if *matchFlag != "" {
		cfg.Match = *matchFlag
	}
	if *watchFlag {
		cfg.REPL.Watch = true
	}
	if *quietFlag || *quietLongFlag {
		cfg.Logging.Level = "error"
	}
	if *debugFlag {
		cfg.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Error: config validation: %v\n", err)
		return exitUsage
	}

	diag, closeDiag, err := openDiagnostics(cfg.Logging, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	defer closeDiag()

	if cfg.Path != "" {
		diag.Debugf("using config %s", cfg.Path)
	}

	kw, kwFile, err := loadKeywords(cfg, diag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if listKeywords {
		for _, e := range kw.Entries() {
			fmt.Fprintf(stdout, "%s\t%s\n", e.Name, e.Raw)
		}
		return exitOK
	}

	mode, err := keyword.ParseMatchMode(cfg.Match)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	in := vipl.New(
		vipl.WithKeywords(kw),
		vipl.WithOutput(vipl.WriterOutput(stdout)),
		vipl.WithDiagnostics(diag),
		vipl.WithMatchMode(mode),
	)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	switch {
	case evalCode != "":
		return execute(ctx, in, "<eval>", evalCode, stderr)

	case *checkFlag:
		files := flags.Args()
		if len(files) == 0 {
			fmt.Fprintln(stderr, "Error: --check requires at least one file")
			return exitUsage
		}
		return checkFiles(in, files, stdin, stderr)

	case flags.NArg() > 0:
		filename := flags.Arg(0)
		content, err := source.ReadAll(filename, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading file '%s': %v\n", filename, err)
			return exitUsage
		}
		if filename == source.Stdin {
			filename = "<stdin>"
		}
		return execute(ctx, in, filename, content, stderr)

	case !isTerminal(stdin):
		content, err := source.ReadAll(source.Stdin, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading stdin: %v\n", err)
			return exitUsage
		}
		return execute(ctx, in, "<stdin>", content, stderr)

	default:
		if cfg.REPL.Watch && kwFile == "" {
			diag.Warnf("--watch ignored: using built-in keywords")
		}
		repl.Start(ctx, in, stdout, repl.Options{
			Version:  vipl.Version,
			History:  cfg.HistoryPath(),
			Keywords: kwFile,
			Watch:    cfg.REPL.Watch,
			Diag:     diag,
		})
		return exitOK
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// openDiagnostics creates the diagnostic logger described by cfg.
func openDiagnostics(cfg config.LoggingConfig, stdout, stderr io.Writer) (*logging.Logger, func() error, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Output {
	case "stderr", "":
		return logging.New(stderr, level), func() error { return nil }, nil
	case "stdout":
		return logging.New(stdout, level), func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log output: %w", err)
	}
	return logging.New(f, level), f.Close, nil
}

// loadKeywords loads the configured keyword file. A missing default file
// falls back to the built-in table; the returned path is then empty.
func loadKeywords(cfg *config.Config, diag *logging.Logger) (*keyword.Table, string, error) {
	path, explicit := cfg.KeywordsPath()

	kw, err := keyword.Load(path)
	if err == nil {
		diag.Debugf("loaded %d keywords from %s", kw.Len(), path)
		return kw, path, nil
	}

	if !explicit && errors.Is(err, fs.ErrNotExist) {
		diag.Debugf("no keyword file at %s, using built-in keywords", path)
		return keyword.Builtin(), "", nil
	}
	return nil, "", err
}

// execute runs a whole script and reports a fatal error with source context.
func execute(ctx context.Context, in *evaluator.Interpreter, filename, content string, stderr io.Writer) int {
	in.Filename = filename

	err := in.Run(ctx, strings.NewReader(content))
	if err == nil {
		return exitOK
	}

	var ve *verrors.ViplError
	if errors.As(err, &ve) {
		printRuntimeError(stderr, content, ve)
		return exitFatal
	}
	if ctx.Err() != nil {
		fmt.Fprintln(stderr, "Interrupted")
		return exitFatal
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitUsage
}

// checkFiles classifies every line of each file without executing anything
// and reports lines that are not statements.
func checkFiles(in *evaluator.Interpreter, files []string, stdin io.Reader, stderr io.Writer) int {
	hasErrors := false

	for _, filename := range files {
		content, err := source.ReadAll(filename, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading %s: %v\n", filename, err)
			return exitUsage
		}

		sc := source.NewScanner(strings.NewReader(content))
		for sc.Scan() {
			st, ok := in.Classify(sc.Text())
			if !ok || st.Kind != dispatch.None {
				continue
			}
			fmt.Fprintf(stderr, "%s: line %d: not a statement: %s\n", filename, sc.Line(), st.Operand)
			hasErrors = true
		}
	}

	if hasErrors {
		return exitFatal
	}
	return exitOK
}

// printRuntimeError prints a fatal error with the offending source line
func printRuntimeError(w io.Writer, content string, err *verrors.ViplError) {
	fmt.Fprintln(w, err.PrettyString())
	if err.Line > 0 {
		printSourceContext(w, strings.Split(content, "\n"), err.Line, err.Column)
	}
}

// printSourceContext prints the source line and error pointer
func printSourceContext(w io.Writer, lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := strings.TrimSuffix(lines[lineNum-1], "\r")
	if lineNum == 1 {
		sourceLine = strings.TrimPrefix(sourceLine, "\uFEFF")
	}

	fmt.Fprintf(w, "    %s\n", strings.TrimLeft(sourceLine, " \t"))

	// Columns point at the first non-blank rune, where the trimmed line starts.
	if colNum > 0 {
		fmt.Fprintln(w, "    ^")
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `vipl - line-oriented scripting language interpreter version %s

Usage:
  vipl [options] [file]
  vipl -e "code"
  vipl --check <file>...
  vipl keywords [options]

Commands:
  keywords              Print the loaded keyword table

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -q, --quiet           Only report errors
  --debug               Verbose diagnostics

Evaluation Options:
  -e, --eval <code>     Evaluate code string (newlines separate statements)
  --check               Report lines that are not statements without executing
  --keywords PATH       Keyword file (.xml, .yaml, .config)
  --match MODE          Keyword matching: delimited (default) or prefix
  --watch               Reload the keyword file when it changes (REPL)
  --config PATH         Path to config file (default: auto-detect)

Config Resolution:
  1. --config flag
  2. VIPL_CONFIG environment variable
  3. ./vipl.yaml
  4. ~/.config/vipl/vipl.yaml

Examples:
  vipl                      Start interactive REPL
  vipl hello.vipl           Execute a script (.gz and .zst are decompressed)
  vipl -e 'x:=5
  print x'                  Evaluate inline code (outputs: 5)
  cat hello.vipl | vipl     Execute a script from stdin
  vipl --check *.vipl       Check scripts without executing
  vipl keywords             List keywords

Exit Status:
  0  success
  1  runtime error (undefined variable, reserved name)
  2  usage, config or file error
`, vipl.Version)
}
