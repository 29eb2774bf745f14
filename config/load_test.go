package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func noEnv(string) string { return "" }

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Match != "delimited" {
		t.Errorf("expected default match 'delimited', got %q", cfg.Match)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected default log output 'stderr', got %q", cfg.Logging.Output)
	}

	path, explicit := cfg.KeywordsPath()
	if path != DefaultKeywords || explicit {
		t.Errorf("KeywordsPath() = %q, %v", path, explicit)
	}
	if want := filepath.Join(os.TempDir(), ".vipl_history"); cfg.HistoryPath() != want {
		t.Errorf("HistoryPath() = %q, want %q", cfg.HistoryPath(), want)
	}
}

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "VIPL_HOME":
			return "/opt/vipl"
		case "VIPL_LEVEL":
			return "debug"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple substitution",
			input:    "keywords: ${VIPL_HOME}/keyword.xml",
			expected: "keywords: /opt/vipl/keyword.xml",
		},
		{
			name:     "with default (env set)",
			input:    "level: ${VIPL_LEVEL:-info}",
			expected: "level: debug",
		},
		{
			name:     "with default (env not set)",
			input:    "match: ${VIPL_MATCH:-prefix}",
			expected: "match: prefix",
		},
		{
			name:     "unset without default",
			input:    "history: ${VIPL_HISTORY}",
			expected: "history: ",
		},
		{
			name:     "no substitution needed",
			input:    "match: delimited",
			expected: "match: delimited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "vipl.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
keywords: ./keywords/vi.xml
match: prefix
repl:
  history: .history
  watch: true
logging:
  level: ${VIPL_LEVEL:-warn}
  output: logs/vipl.log
`)

	cfg, err := Load(path, noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Keywords != filepath.Join(dir, "keywords", "vi.xml") {
		t.Errorf("keywords not resolved against config dir: %q", cfg.Keywords)
	}
	if _, explicit := cfg.KeywordsPath(); !explicit {
		t.Error("expected keywords to be explicit")
	}
	if cfg.Match != "prefix" {
		t.Errorf("expected match 'prefix', got %q", cfg.Match)
	}
	if !cfg.REPL.Watch || cfg.HistoryPath() != filepath.Join(dir, ".history") {
		t.Errorf("unexpected repl config: %+v", cfg.REPL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level 'warn', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != filepath.Join(dir, "logs", "vipl.log") {
		t.Errorf("log output not resolved: %q", cfg.Logging.Output)
	}
	if cfg.BaseDir != dir {
		t.Errorf("expected base dir %q, got %q", dir, cfg.BaseDir)
	}
}

func TestLoadKeepsStreams(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "logging:\n  output: stdout\n")

	cfg, err := Load(path, noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("expected stdout, got %q", cfg.Logging.Output)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default level to survive, got %q", cfg.Logging.Level)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad level", "logging:\n  level: loud\n", "invalid log level"},
		{"bad match", "match: fuzzy\n", "unknown match mode"},
		{"bad yaml", "match: [unclosed\n", "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path, noEnv)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "match: delimited\n")

	got, err := resolveConfigPath(path, noEnv)
	if err != nil || got != path {
		t.Errorf("explicit: got %q, %v", got, err)
	}

	if _, err := resolveConfigPath(filepath.Join(dir, "missing.yaml"), noEnv); err == nil {
		t.Error("expected error for missing explicit config")
	}

	env := func(key string) string {
		if key == "VIPL_CONFIG" {
			return path
		}
		return ""
	}
	got, err = resolveConfigPath("", env)
	if err != nil || got != path {
		t.Errorf("VIPL_CONFIG: got %q, %v", got, err)
	}

	badEnv := func(key string) string {
		if key == "VIPL_CONFIG" {
			return filepath.Join(dir, "nope.yaml")
		}
		return ""
	}
	if _, err := resolveConfigPath("", badEnv); err == nil {
		t.Error("expected error for missing VIPL_CONFIG file")
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	empty := t.TempDir()
	if err := os.Chdir(empty); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	t.Setenv("HOME", empty)

	cfg, err := Load("", noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Path != "" || cfg.Match != "delimited" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}
