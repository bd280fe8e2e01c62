package config_test

import (
	"os"
	"testing"

	"momtrack/internal/config"
	"momtrack/internal/domain"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.BasePath != "/api" {
		t.Fatalf("base path %q", cfg.Server.BasePath)
	}
	if cfg.DefaultPriority() != domain.PriorityMedium {
		t.Fatalf("default priority %s", cfg.DefaultPriority())
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := config.LoadOptional(t.TempDir())
	if err != nil {
		t.Fatalf("load optional: %v", err)
	}
	if cfg.Data.Dir == "" {
		t.Fatalf("missing file did not fall back to defaults")
	}
	if _, err := config.Load(t.TempDir()); err == nil {
		t.Fatalf("load without file should fail")
	}
}

func TestLoadFromWorkspace(t *testing.T) {
	dir := t.TempDir()
	yml := `
data:
  dir: /var/lib/momtrack
server:
  addr: 0.0.0.0:9000
tasks:
  default_priority: high
`
	if err := os.WriteFile(config.Path(dir), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Data.Dir != "/var/lib/momtrack" || cfg.Server.Addr != "0.0.0.0:9000" {
		t.Fatalf("loaded config: %+v", cfg)
	}
	if cfg.DefaultPriority() != domain.PriorityHigh {
		t.Fatalf("priority %s", cfg.DefaultPriority())
	}
	// unset fields keep their defaults
	if cfg.Server.BasePath != "/api" {
		t.Fatalf("base path %q", cfg.Server.BasePath)
	}
}

func TestValidateRejectsBadPriority(t *testing.T) {
	if _, err := config.FromYAML([]byte("tasks:\n  default_priority: urgent\n")); err == nil {
		t.Fatalf("bad priority accepted")
	}
}
