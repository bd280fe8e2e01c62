package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"momtrack/internal/domain"
)

// Config models momtrack.yml.
type Config struct {
	Data struct {
		Dir string `yaml:"dir"`
	} `yaml:"data"`
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Tasks struct {
		DefaultPriority string `yaml:"default_priority"`
	} `yaml:"tasks"`
}

// Load reads and validates config from the workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("config.data.dir is required")
	}
	if c.Tasks.DefaultPriority != "" && !domain.TaskPriority(c.Tasks.DefaultPriority).Valid() {
		return fmt.Errorf("config.tasks.default_priority %q is not a task priority", c.Tasks.DefaultPriority)
	}
	return nil
}

// DefaultPriority returns the priority new tasks take when none is given.
func (c *Config) DefaultPriority() domain.TaskPriority {
	if c.Tasks.DefaultPriority == "" {
		return domain.PriorityMedium
	}
	return domain.TaskPriority(c.Tasks.DefaultPriority)
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "momtrack.yml")
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	cfg.Data.Dir = filepath.Join(".momtrack", "data")
	cfg.Server.Addr = "127.0.0.1:8080"
	cfg.Server.BasePath = "/api"
	cfg.Tasks.DefaultPriority = string(domain.PriorityMedium)
	return &cfg
}
