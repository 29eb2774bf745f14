// Package errors provides structured error types for the vipl language.
//
// ViplError represents every fatal condition the interpreter can raise. It
// carries a class, a catalog code, a rendered message, optional hints and
// the source position of the offending line.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and display.
type ErrorClass string

const (
	ClassUndefined ErrorClass = "undefined" // Variable not declared
	ClassReserved  ErrorClass = "reserved"  // Name collides with a keyword
)

// Catalog codes.
const (
	CodeUndefinedVariable = "UNDEF-0001"
	CodeReservedName      = "RESERVED-0001"
)

// Sentinels for errors.Is. They match any ViplError with the same code.
var (
	ErrUndefinedVariable = &ViplError{Class: ClassUndefined, Code: CodeUndefinedVariable}
	ErrReservedName      = &ViplError{Class: ClassReserved, Code: CodeReservedName}
)

// ViplError represents a fatal interpreter error.
type ViplError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based line (0 if unknown)
	Column  int            `json:"column"` // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *ViplError) Error() string {
	return e.String()
}

// Is reports whether target is a ViplError with the same code.
func (e *ViplError) Is(target error) bool {
	t, ok := target.(*ViplError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// String returns a one-line representation with location prefix and hints.
func (e *ViplError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *ViplError) PrettyString() string {
	var sb strings.Builder

	sb.WriteString("Runtime error")

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *ViplError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file name set.
func (e *ViplError) WithFile(file string) *ViplError {
	c := *e
	c.File = file
	return &c
}

// WithPosition returns a copy of the error with line and column set.
func (e *ViplError) WithPosition(line, column int) *ViplError {
	c := *e
	c.Line = line
	c.Column = column
	return &c
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	CodeUndefinedVariable: {
		Class:    ClassUndefined,
		Template: "variable [{{.Name}}] is not defined",
	},
	CodeReservedName: {
		Class:    ClassReserved,
		Template: "can not declare variable {{.Name}} because that is the keyword",
		Hints:    []string{"choose a name that is not in the keyword table"},
	},
}

// New creates a ViplError from the catalog. Unknown codes produce a generic
// error whose message is data["message"] or the code itself.
func New(code string, data map[string]any) *ViplError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if m, ok := data["message"].(string); ok {
			msg = m
		}
		return &ViplError{
			Class:   ClassUndefined,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	var hints []string
	for _, hintTmpl := range def.Hints {
		if rendered := renderTemplate(hintTmpl, data); rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &ViplError{
		Class:   def.Class,
		Code:    code,
		Message: renderTemplate(def.Template, data),
		Hints:   hints,
		Data:    data,
	}
}

// NewUndefinedVariable creates an undefined variable error. When a declared
// name is close to name, a "did you mean" hint is added.
func NewUndefinedVariable(name string, declared []string) *ViplError {
	err := New(CodeUndefinedVariable, map[string]any{"Name": name})

	if suggestion := FindClosestMatch(name, declared); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}

	return err
}

// NewReservedName creates the error raised when a declaration uses a
// keyword as its name.
func NewReservedName(name string) *ViplError {
	return New(CodeReservedName, map[string]any{"Name": name})
}

func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings,
// counting runes so accented names are not penalised per byte.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// threshold scales the allowed edit distance with the input length:
// 1-3 runes allow 1 edit, 4-6 allow 2, longer allow 3.
func threshold(input string) int {
	n := len([]rune(input))
	switch {
	case n >= 7:
		return 3
	case n >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch returns the candidate closest to input, or "" when the
// best candidate is an exact match or too far away.
func FindClosestMatch(input string, candidates []string) string {
	if input == "" || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > threshold(input) {
		return ""
	}

	return bestMatch
}
