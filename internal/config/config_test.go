package config

import (
	"os"
	"path/filepath"
	"testing"

	"vela/internal/trace"
)

func TestLoadValidManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vela.toml")
	data := `
[package]
name = "demo"

[diagnostics]
warnings_as_errors = true

[limits]
max_generic_depth = 8

[trace]
level = "phase"
output = "-"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}
	if cfg.Package.Name != "demo" {
		t.Fatalf("Package.Name = %q, want %q", cfg.Package.Name, "demo")
	}
	if !cfg.Diagnostics.WarningsAsErrors {
		t.Fatalf("WarningsAsErrors = false, want true")
	}
	if cfg.Limits.MaxGenericDepth != 8 {
		t.Fatalf("MaxGenericDepth = %d, want 8", cfg.Limits.MaxGenericDepth)
	}
	if cfg.TraceLevel() != trace.LevelPhase {
		t.Fatalf("TraceLevel() = %v, want %v", cfg.TraceLevel(), trace.LevelPhase)
	}
}

func TestLoadMissingPackageName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vela.toml")
	if err := os.WriteFile(path, []byte("[limits]\nmax_generic_depth = 4\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load(%q) error = nil, want error for missing [package].name", path)
	}
}

func TestDefaultFillsMaxGenericDepth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vela.toml")
	if err := os.WriteFile(path, []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}
	if cfg.Limits.MaxGenericDepth != 64 {
		t.Fatalf("MaxGenericDepth = %d, want default 64", cfg.Limits.MaxGenericDepth)
	}
}
