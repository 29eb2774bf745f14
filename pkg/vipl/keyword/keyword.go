// Package keyword provides the keyword table that decides which statement a
// vipl line is.
//
// A table is an ordered list of (name, action) entries. Matching is
// first-match-wins in table order, so the order a definition file lists its
// keywords in is significant. Tables are read-only once built.
package keyword

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Action is what a matched keyword does with the rest of its line.
type Action int

const (
	// Inert keywords match lines but never execute anything.
	Inert Action = iota
	Print
	DeclareVariable
)

// ParseAction maps an action string from a definition file to an Action.
// Unknown strings map to Inert.
func ParseAction(s string) Action {
	switch s {
	case "print":
		return Print
	case "variable":
		return DeclareVariable
	default:
		return Inert
	}
}

func (a Action) String() string {
	switch a {
	case Print:
		return "print"
	case DeclareVariable:
		return "variable"
	default:
		return "inert"
	}
}

// Entry is a single keyword definition. Raw keeps the action string as it
// appeared in the definition file.
type Entry struct {
	Name   string
	Action Action
	Raw    string
}

// MatchMode selects how a keyword is recognised at the start of a line.
type MatchMode int

const (
	// MatchDelimited requires the keyword to be followed by end of line,
	// whitespace or ':'.
	MatchDelimited MatchMode = iota
	// MatchPrefix accepts any line that starts with the keyword text.
	MatchPrefix
)

// ParseMatchMode parses "delimited" or "prefix". The empty string is
// MatchDelimited.
func ParseMatchMode(s string) (MatchMode, error) {
	switch s {
	case "", "delimited":
		return MatchDelimited, nil
	case "prefix":
		return MatchPrefix, nil
	default:
		return MatchDelimited, fmt.Errorf("unknown match mode %q (must be delimited or prefix)", s)
	}
}

func (m MatchMode) String() string {
	if m == MatchPrefix {
		return "prefix"
	}
	return "delimited"
}

// Table is an ordered, read-only keyword table.
type Table struct {
	entries []Entry
	names   map[string]bool
}

// New builds a table from entries, keeping their order. Names are normalized
// to NFC. Entries with an empty name are dropped.
func New(entries []Entry) *Table {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		names:   make(map[string]bool, len(entries)),
	}
	for _, e := range entries {
		e.Name = norm.NFC.String(strings.TrimSpace(e.Name))
		if e.Name == "" {
			continue
		}
		if e.Raw == "" {
			e.Raw = e.Action.String()
		}
		t.entries = append(t.entries, e)
		t.names[e.Name] = true
	}
	return t
}

// Builtin returns the table used when no definition file is given:
// print → print and var → variable.
func Builtin() *Table {
	return New([]Entry{
		{Name: "print", Action: Print},
		{Name: "var", Action: DeclareVariable},
	})
}

// Match returns the first entry whose name starts line under mode, together
// with the text following the name.
func (t *Table) Match(line string, mode MatchMode) (Entry, string, bool) {
	if t == nil {
		return Entry{}, "", false
	}
	for _, e := range t.entries {
		if !strings.HasPrefix(line, e.Name) {
			continue
		}
		rest := line[len(e.Name):]
		if mode == MatchDelimited && !delimited(rest) {
			continue
		}
		return e, rest, true
	}
	return Entry{}, "", false
}

func delimited(rest string) bool {
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return r == ':' || unicode.IsSpace(r)
}

// IsReserved reports whether name is exactly the name of a keyword.
func (t *Table) IsReserved(name string) bool {
	if t == nil {
		return false
	}
	return t.names[name]
}

// Entries returns a copy of the entries in table order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Names returns the keyword names in table order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
