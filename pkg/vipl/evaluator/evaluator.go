// Package evaluator executes classified vipl statements against a symbol
// table.
package evaluator

import (
	"strings"

	verrors "github.com/sambeau/vipl/pkg/vipl/errors"
	"github.com/sambeau/vipl/pkg/vipl/symbols"
)

// Evaluate resolves a print operand to the text it prints.
//
// An empty operand prints an empty line. A double-quoted operand prints its
// interior verbatim and an all-digit operand prints itself. Anything else is
// a variable reference; an undeclared name is an UndefinedVariable error.
func Evaluate(operand string, syms *symbols.Table) (string, error) {
	if operand == "" {
		return "", nil
	}
	if s, ok := unquote(operand); ok {
		return s, nil
	}
	if symbols.IsNumber(operand) {
		return operand, nil
	}

	v, ok := syms.Lookup(operand)
	if !ok {
		return "", verrors.NewUndefinedVariable(operand, syms.Names())
	}
	return v.Value, nil
}

// unquote strips one pair of surrounding double quotes. No escapes.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// literal trims a declared or assigned value and strips its quotes.
func literal(s string) string {
	s, _ = unquote(strings.TrimSpace(s))
	return s
}
