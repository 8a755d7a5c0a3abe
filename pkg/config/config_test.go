package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.Analysis.Parallelism != 1 {
		t.Errorf("Analysis.Parallelism = %d, want 1", cfg.Analysis.Parallelism)
	}
	if !cfg.Analysis.ValidateSchema {
		t.Error("Analysis.ValidateSchema should be true by default")
	}
	if len(cfg.Input.Extensions) != 3 {
		t.Errorf("Input.Extensions = %v, want 3 suffixes", cfg.Input.Extensions)
	}
	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reachable.toml")
	content := `
[analysis]
parallelism = 4
validate_schema = false

[input]
extensions = [".ir.json"]

[exclude]
dirs = ["vendor", "fixtures"]

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Analysis.Parallelism != 4 {
		t.Errorf("Analysis.Parallelism = %d, want 4", cfg.Analysis.Parallelism)
	}
	if cfg.Analysis.ValidateSchema {
		t.Error("Analysis.ValidateSchema should be false")
	}
	if len(cfg.Input.Extensions) == 0 || cfg.Input.Extensions[0] != ".ir.json" {
		t.Errorf("Input.Extensions = %v", cfg.Input.Extensions)
	}
	if len(cfg.Exclude.Dirs) < 2 || cfg.Exclude.Dirs[1] != "fixtures" {
		t.Errorf("Exclude.Dirs = %v", cfg.Exclude.Dirs)
	}
	// untouched sections keep defaults
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want default 24", cfg.Cache.TTL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reachable.yaml")
	content := `
analysis:
  max_document_size: 1024
cache:
  enabled: false
output:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Analysis.MaxDocumentSize != 1024 {
		t.Errorf("Analysis.MaxDocumentSize = %d, want 1024", cfg.Analysis.MaxDocumentSize)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reachable.json")
	content := `{"output": {"format": "toon", "color": false}, "cache": {"ttl": 2}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Format != "toon" || cfg.Output.Color {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Cache.TTL != 2 {
		t.Errorf("Cache.TTL = %d, want 2", cfg.Cache.TTL)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/reachable.toml"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative parallelism", "[analysis]\nparallelism = -1\n"},
		{"unknown format", "[output]\nformat = \"xml\"\n"},
		{"unknown level", "[log]\nlevel = \"loud\"\n"},
		{"malformed", "[analysis\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reachable.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestValidateRequiresExtensions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.Extensions = nil
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject an empty extension list")
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if got := Find(dir); got != "" {
		t.Errorf("Find() = %q on an empty dir", got)
	}

	nested := filepath.Join(dir, ".reachable")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(nested, "reachable.yaml")
	if err := os.WriteFile(want, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(dir); got != want {
		t.Errorf("Find() = %q, want %q", got, want)
	}

	top := filepath.Join(dir, "reachable.toml")
	if err := os.WriteFile(top, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(dir); got != top {
		t.Errorf("Find() = %q, want %q", got, top)
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := LoadOrDefault()
	if cfg.Analysis.Parallelism != 1 {
		t.Errorf("expected defaults, got parallelism %d", cfg.Analysis.Parallelism)
	}

	if err := os.WriteFile("reachable.toml", []byte("[analysis]\nparallelism = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg = LoadOrDefault()
	if cfg.Analysis.Parallelism != 8 {
		t.Errorf("Analysis.Parallelism = %d, want 8", cfg.Analysis.Parallelism)
	}
}

func TestIsDocument(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		path string
		want bool
	}{
		{"core.ir.yaml", true},
		{"dir/core.IR.JSON", true},
		{"core.ir.yml", true},
		{"core.yaml", false},
		{"core.rs", false},
	}
	for _, tt := range tests {
		if got := cfg.IsDocument(tt.path); got != tt.want {
			t.Errorf("IsDocument(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()
	sep := string(filepath.Separator)
	tests := []struct {
		path string
		want bool
	}{
		{"vendor" + sep + "a.ir.yaml", true},
		{"src" + sep + "target" + sep + "a.ir.yaml", true},
		{"scratch.tmp.ir.yaml", true},
		{"src" + sep + "a.ir.yaml", false},
		{"targets.ir.yaml", false},
	}
	for _, tt := range tests {
		if got := cfg.ShouldExclude(tt.path); got != tt.want {
			t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", slog.Level(-8)},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel should reject unknown names")
	}
}
