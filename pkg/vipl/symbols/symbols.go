// Package symbols provides the variable store used by the vipl interpreter.
//
// A Table maps names to the single visible binding for that name. Declaring a
// name that already exists shadows the earlier binding: later lookups see the
// new value and the old value is dropped. Assignment mutates the visible
// binding in place and never adds an entry. Nothing is ever removed.
package symbols

// Variable is a named value. Numeric is derived from Value whenever the value
// is written.
type Variable struct {
	Name    string
	Value   string
	Numeric bool
}

// Table stores declared variables in declaration order.
type Table struct {
	store map[string]*Variable
	order []string
	decls map[string]int
}

// New creates an empty table.
func New() *Table {
	return &Table{
		store: make(map[string]*Variable),
		decls: make(map[string]int),
	}
}

// Declare binds name to value, shadowing any earlier binding of name.
func (t *Table) Declare(name, value string) *Variable {
	v := &Variable{Name: name, Value: value, Numeric: IsNumber(value)}
	if _, ok := t.store[name]; !ok {
		t.order = append(t.order, name)
	}
	t.store[name] = v
	t.decls[name]++
	return v
}

// Lookup returns the visible binding for name.
func (t *Table) Lookup(name string) (*Variable, bool) {
	v, ok := t.store[name]
	return v, ok
}

// Assign sets the value of an existing binding. It reports false, leaving the
// table untouched, when name was never declared.
func (t *Table) Assign(name, value string) bool {
	v, ok := t.store[name]
	if !ok {
		return false
	}
	v.Value = value
	v.Numeric = IsNumber(value)
	return true
}

// Len returns the number of distinct names in the table.
func (t *Table) Len() int {
	return len(t.store)
}

// Declarations returns how many times name has been declared, counting
// shadowed declarations.
func (t *Table) Declarations(name string) int {
	return t.decls[name]
}

// Names returns the declared names in first-declaration order.
func (t *Table) Names() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)
	return names
}

// Variables returns the visible bindings in first-declaration order.
func (t *Table) Variables() []Variable {
	vars := make([]Variable, 0, len(t.order))
	for _, name := range t.order {
		vars = append(vars, *t.store[name])
	}
	return vars
}

// IsNumber reports whether s is a non-empty run of ASCII digits.
func IsNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
