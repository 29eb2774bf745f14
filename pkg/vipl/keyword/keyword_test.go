package keyword

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		input    string
		expected Action
	}{
		{"print", Print},
		{"variable", DeclareVariable},
		{"Print", Inert},
		{"loop", Inert},
		{"", Inert},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseAction(tt.input); got != tt.expected {
				t.Errorf("ParseAction(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	table := New([]Entry{
		{Name: "print", Action: Print},
		{Name: "var", Action: DeclareVariable},
		{Name: "in ra", Action: Print},
	})

	tests := []struct {
		name   string
		line   string
		mode   MatchMode
		want   string
		rest   string
		wantOK bool
	}{
		{"space delimited", `print "hi"`, MatchDelimited, "print", ` "hi"`, true},
		{"colon delimited", "print:x", MatchDelimited, "print", ":x", true},
		{"bare keyword", "print", MatchDelimited, "print", "", true},
		{"identifier sharing prefix", "printer=1", MatchDelimited, "", "", false},
		{"identifier sharing prefix in prefix mode", "printer=1", MatchPrefix, "print", "er=1", true},
		{"multi word keyword", "in ra x", MatchDelimited, "in ra", " x", true},
		{"no keyword", "x:=1", MatchDelimited, "", "", false},
		{"case sensitive", "PRINT x", MatchDelimited, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rest, ok := table.Match(tt.line, tt.mode)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if e.Name != tt.want {
				t.Errorf("matched %q, want %q", e.Name, tt.want)
			}
			if rest != tt.rest {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

func TestMatchFirstEntryWins(t *testing.T) {
	table := New([]Entry{
		{Name: "p", Action: DeclareVariable},
		{Name: "print", Action: Print},
	})

	e, _, ok := table.Match("print x", MatchPrefix)
	if !ok || e.Name != "p" {
		t.Errorf("expected first entry to win in prefix mode, got %+v", e)
	}

	e, _, ok = table.Match("print x", MatchDelimited)
	if !ok || e.Name != "print" {
		t.Errorf("expected delimited match to skip undelimited entry, got %+v", e)
	}
}

func TestIsReserved(t *testing.T) {
	table := Builtin()
	if !table.IsReserved("print") || !table.IsReserved("var") {
		t.Error("expected builtin keywords to be reserved")
	}
	if table.IsReserved("printer") {
		t.Error("reservation must be exact")
	}

	var nilTable *Table
	if nilTable.IsReserved("print") || nilTable.Len() != 0 {
		t.Error("nil table must be empty")
	}
}

func TestNewNormalizesNames(t *testing.T) {
	decomposed := norm.NFD.String("biến")
	table := New([]Entry{{Name: decomposed, Action: DeclareVariable}, {Name: "  ", Action: Print}})

	if table.Len() != 1 {
		t.Fatalf("expected blank names to be dropped, got %d entries", table.Len())
	}
	if !table.IsReserved(norm.NFC.String("biến")) {
		t.Error("expected name to be stored in NFC")
	}
}

const markupKeywords = `<!DOCTYPE Note [
# comment line
<name>in_ra_màn_hình</name>
<value>"print"</value>

<name>biến</name>
<value>"variable"</value>
<name>lặp</name><value>"loop"</value>
]>
`

func TestParseMarkup(t *testing.T) {
	entries, err := ParseMarkup(strings.NewReader(markupKeywords))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Entry{
		{Name: "in_ra_màn_hình", Action: Print, Raw: "print"},
		{Name: "biến", Action: DeclareVariable, Raw: "variable"},
		{Name: "lặp", Action: Inert, Raw: "loop"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("ParseMarkup() = %+v, want %+v", entries, want)
	}
}

func TestParseMarkupMissingAction(t *testing.T) {
	_, err := ParseMarkup(strings.NewReader("<name>print</name>\n"))
	if err == nil {
		t.Fatal("expected error for keyword without action")
	}
}

func TestParsePairs(t *testing.T) {
	entries, err := ParsePairs(strings.NewReader("# keywords\nin_ra_màn_hình=print\n\nbiến = variable\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Name != "biến " || entries[1].Action != DeclareVariable {
		t.Errorf("unexpected entry: %+v", entries[1])
	}

	if _, err := ParsePairs(strings.NewReader("print\n")); err == nil {
		t.Error("expected error for line without '='")
	}
}

func TestLoadFormatsAgree(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"keyword.xml":    markupKeywords,
		"keyword.yaml":   "keywords:\n  - name: in_ra_màn_hình\n    action: print\n  - name: biến\n    action: variable\n  - name: lặp\n    action: loop\n",
		"keyword.config": "in_ra_màn_hình=print\nbiến=variable\nlặp=loop\n",
	}

	var tables []*Table
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		table, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		tables = append(tables, table)
	}

	for i := 1; i < len(tables); i++ {
		if !reflect.DeepEqual(tables[0].Entries(), tables[i].Entries()) {
			t.Errorf("tables differ:\n%+v\n%+v", tables[0].Entries(), tables[i].Entries())
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.xml")); err == nil {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.xml")
	if err := os.WriteFile(empty, []byte("<!DOCTYPE Note [\n]>\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(empty); !errors.Is(err, ErrNoKeywords) {
		t.Errorf("expected ErrNoKeywords, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("keywords: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected YAML parse error")
	}
}
