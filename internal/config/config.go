package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DiffTool selects how unified diffs are produced
type DiffTool string

const (
	DiffAuto    DiffTool = "auto"
	DiffShell   DiffTool = "diff"
	DiffBuiltin DiffTool = "builtin"
)

const (
	// RegistryFile is the registry document name inside the dotfiles root
	RegistryFile = "config.json"
	// ContentDirName is the content store directory name inside the dotfiles root
	ContentDirName = "content"
)

// Config represents the complete dotsync configuration
type Config struct {
	Paths PathsConfig `yaml:"paths"`
	Sync  SyncConfig  `yaml:"sync"`
	Diff  DiffConfig  `yaml:"diff"`
	Auth  AuthConfig  `yaml:"auth"`

	// Home is the invoking user's home directory, read once at startup
	Home string `yaml:"-"`
}

// PathsConfig configures local filesystem paths
type PathsConfig struct {
	Root string `yaml:"root"`
}

// SyncConfig configures save/load side effects
type SyncConfig struct {
	AutoPush bool `yaml:"auto_push"`
	AutoPull bool `yaml:"auto_pull"`
}

// DiffConfig configures the diff collaborator
type DiffConfig struct {
	Tool      DiffTool `yaml:"tool"`
	Colorizer string   `yaml:"colorizer"`
}

// AuthConfig configures git authentication for push and pull
type AuthConfig struct {
	SSHKeyFile     string `yaml:"ssh_key_file"`
	HTTPSTokenFile string `yaml:"https_token_file"`
}

// DefaultPath returns the default config file location for home
func DefaultPath(home string) string {
	return filepath.Join(home, ".config", "dotsync", "config.yaml")
}

// Default returns a configuration with every field defaulted for home
func Default(home string) *Config {
	cfg := &Config{Home: home}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file. When optional is true a
// missing file yields the defaults instead of an error.
func Load(path, home string, optional bool) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			cfg := Default(home)
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid configuration: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Home = home

	cfg.expandEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// expandEnv expands environment variables and a leading ~ in path fields
func (c *Config) expandEnv() {
	c.Paths.Root = c.expandPath(c.Paths.Root)
	c.Auth.SSHKeyFile = c.expandPath(c.Auth.SSHKeyFile)
	c.Auth.HTTPSTokenFile = c.expandPath(c.Auth.HTTPSTokenFile)
	c.Diff.Colorizer = os.ExpandEnv(c.Diff.Colorizer)
}

func (c *Config) expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" {
		return c.Home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(c.Home, p[2:])
	}
	return p
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Paths.Root == "" {
		c.Paths.Root = filepath.Join(c.Home, ".dotfiles")
	}
	if c.Diff.Tool == "" {
		c.Diff.Tool = DiffAuto
	}
}

// SetRoot overrides the dotfiles root, expanding ~ and env vars
func (c *Config) SetRoot(root string) {
	c.Paths.Root = c.expandPath(root)
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("home directory is unknown")
	}
	if !filepath.IsAbs(c.Home) {
		return fmt.Errorf("home directory must be an absolute path: %s", c.Home)
	}

	if c.Paths.Root == "" {
		return fmt.Errorf("paths.root is required")
	}
	if !filepath.IsAbs(c.Paths.Root) {
		return fmt.Errorf("paths.root must be an absolute path: %s", c.Paths.Root)
	}

	switch c.Diff.Tool {
	case DiffAuto, DiffShell, DiffBuiltin:
		// valid
	default:
		return fmt.Errorf("invalid diff.tool: %s (must be auto, diff, or builtin)", c.Diff.Tool)
	}

	// Only one auth method may be configured
	if c.Auth.SSHKeyFile != "" && c.Auth.HTTPSTokenFile != "" {
		return fmt.Errorf("auth: only one of ssh_key_file or https_token_file may be set")
	}

	return nil
}

// RegistryPath returns the path to the registry document
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.Root, RegistryFile)
}

// ContentDir returns the content store directory
func (c *Config) ContentDir() string {
	return filepath.Join(c.Paths.Root, ContentDirName)
}

// AuthMethod returns a description of the configured auth method
func (c *Config) AuthMethod() string {
	if c.Auth.SSHKeyFile != "" {
		return "ssh"
	}
	if c.Auth.HTTPSTokenFile != "" {
		return "https"
	}
	return "none"
}
