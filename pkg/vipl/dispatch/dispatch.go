// Package dispatch classifies a single vipl line into a statement.
//
// Classification looks at the keyword table and at two structural operators:
// ":=" declares a variable and "=" assigns to an existing one. On a line that
// starts with a print keyword, operators inside double-quoted text are
// ignored, so print "a:=b" stays a print.
//
// Precedence, highest first:
//
//  1. ":=" anywhere in the line makes it a declaration. When a variable
//     keyword starts the line its text is removed from the name side.
//  2. A matched keyword decides the statement: print, variable (split on the
//     first "=") or inert.
//  3. "=" without a keyword is an assignment.
//  4. Anything else is not a statement.
package dispatch

import (
	"strings"

	"github.com/sambeau/vipl/pkg/vipl/keyword"
)

// Kind is the statement kind of a line.
type Kind int

const (
	None Kind = iota
	Print
	Declare
	Assign
	Inert
)

func (k Kind) String() string {
	switch k {
	case Print:
		return "print"
	case Declare:
		return "declare"
	case Assign:
		return "assign"
	case Inert:
		return "inert"
	default:
		return "none"
	}
}

const (
	DeclareOperator = ":="
	AssignOperator  = "="
)

// Statement is a classified line. Name and Value are untrimmed; Operand is
// trimmed.
type Statement struct {
	Kind     Kind
	Keyword  *keyword.Entry // nil when no keyword matched
	Operand  string         // print operand
	Name     string         // declare/assign target
	Value    string         // declare/assign value
	Operator string         // ":=", "=" or "" for keyword-only lines
}

// Classify classifies a trimmed line against keywords.
func Classify(line string, keywords *keyword.Table, mode keyword.MatchMode) Statement {
	var kw *keyword.Entry
	var rest string
	if e, r, ok := keywords.Match(line, mode); ok {
		kw = &e
		rest = r
	}

	index := strings.Index
	if kw != nil && kw.Action == keyword.Print {
		index = IndexUnquoted
	}

	if i := index(line, DeclareOperator); i >= 0 {
		name := line[:i]
		if kw != nil && kw.Action == keyword.DeclareVariable && len(kw.Name) <= i {
			if stripped := stripSeparator(line[len(kw.Name):i]); stripped != "" {
				name = stripped
			}
		}
		return Statement{
			Kind:     Declare,
			Keyword:  kw,
			Name:     name,
			Value:    line[i+len(DeclareOperator):],
			Operator: DeclareOperator,
		}
	}

	if kw != nil {
		operand := stripSeparator(rest)
		switch kw.Action {
		case keyword.Print:
			return Statement{Kind: Print, Keyword: kw, Operand: operand}
		case keyword.DeclareVariable:
			st := Statement{Kind: Declare, Keyword: kw, Operand: operand, Name: operand}
			if i := strings.Index(operand, AssignOperator); i >= 0 {
				st.Name = operand[:i]
				st.Value = operand[i+len(AssignOperator):]
				st.Operator = AssignOperator
			}
			return st
		default:
			return Statement{Kind: Inert, Keyword: kw, Operand: operand}
		}
	}

	if i := strings.Index(line, AssignOperator); i >= 0 {
		return Statement{
			Kind:     Assign,
			Name:     line[:i],
			Value:    line[i+len(AssignOperator):],
			Operator: AssignOperator,
		}
	}

	return Statement{Kind: None, Operand: line}
}

// stripSeparator trims s and removes one leading ':' separator.
func stripSeparator(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, ":")
	return strings.TrimSpace(s)
}

// IndexUnquoted returns the index of the first occurrence of op in s that is
// not inside a double-quoted region, or -1. When the quotes in s are
// unbalanced it is strings.Index.
func IndexUnquoted(s, op string) int {
	if strings.Count(s, `"`)%2 != 0 {
		return strings.Index(s, op)
	}
	quoted := false
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			quoted = !quoted
			continue
		}
		if !quoted && strings.HasPrefix(s[i:], op) {
			return i
		}
	}
	return -1
}
