package keyword

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoKeywords is returned when a definition file yields an empty table.
var ErrNoKeywords = errors.New("no keywords defined")

// Load reads a keyword definition file. The format is chosen by extension:
// .yaml/.yml for YAML, .config/.conf/.cfg for name=action lines, anything
// else for the markup format.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords: %w", err)
	}

	var entries []Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = ParseYAML(data)
	case ".config", ".conf", ".cfg":
		entries, err = ParsePairs(bytes.NewReader(data))
	default:
		entries, err = ParseMarkup(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	t := New(entries)
	if t.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoKeywords)
	}
	return t, nil
}

// ParseMarkup reads the markup keyword format: element texts alternate
// between a keyword name and its action, e.g.
//
//	<!DOCTYPE Note [
//	<name>in_ra_màn_hình</name>
//	<value>"print"</value>
//	]>
//
// Lines starting with '#' are ignored. Quotes are removed from actions.
func ParseMarkup(r io.Reader) ([]Entry, error) {
	var texts []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		texts = append(texts, elementTexts(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(texts)%2 != 0 {
		return nil, fmt.Errorf("keyword %q has no action", texts[len(texts)-1])
	}

	entries := make([]Entry, 0, len(texts)/2)
	for i := 0; i < len(texts); i += 2 {
		raw := strings.TrimSpace(strings.ReplaceAll(texts[i+1], `"`, ""))
		entries = append(entries, Entry{
			Name:   texts[i],
			Action: ParseAction(raw),
			Raw:    raw,
		})
	}
	return entries, nil
}

// elementTexts returns the non-blank text that follows each opening tag on
// line. Closing tags, declarations (<!...>) and processing instructions
// (<?...?>) contribute nothing.
func elementTexts(line string) []string {
	var texts []string
	for {
		open := strings.IndexByte(line, '<')
		if open < 0 {
			return texts
		}
		end := strings.IndexByte(line[open:], '>')
		if end < 0 {
			return texts
		}
		tag := line[open+1 : open+end]
		line = line[open+end+1:]

		if tag == "" || tag[0] == '/' || tag[0] == '!' || tag[0] == '?' || strings.HasSuffix(tag, "/") {
			continue
		}

		text := line
		if next := strings.IndexByte(line, '<'); next >= 0 {
			text = line[:next]
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}
}

type yamlFile struct {
	Keywords []struct {
		Name   string `yaml:"name"`
		Action string `yaml:"action"`
	} `yaml:"keywords"`
}

// ParseYAML reads a YAML keyword file:
//
//	keywords:
//	  - name: print
//	    action: print
func ParseYAML(data []byte) ([]Entry, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse keywords: %w", err)
	}

	entries := make([]Entry, 0, len(f.Keywords))
	for i, k := range f.Keywords {
		if strings.TrimSpace(k.Name) == "" {
			return nil, fmt.Errorf("keywords[%d]: name is required", i)
		}
		raw := strings.TrimSpace(k.Action)
		entries = append(entries, Entry{Name: k.Name, Action: ParseAction(raw), Raw: raw})
	}
	return entries, nil
}

// ParsePairs reads one name=action definition per line. Blank lines and
// lines starting with '#' are skipped.
func ParsePairs(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, action, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected name=action, got %q", n, line)
		}
		raw := strings.TrimSpace(action)
		entries = append(entries, Entry{Name: name, Action: ParseAction(raw), Raw: raw})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
