package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	content := `
paths:
  root: "~/dots"

sync:
  auto_push: true
  auto_pull: true

diff:
  tool: builtin
  colorizer: ""

auth:
  ssh_key_file: "~/.ssh/id_ed25519"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath, home, false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Paths.Root != filepath.Join(home, "dots") {
		t.Errorf("expected root %s, got %s", filepath.Join(home, "dots"), cfg.Paths.Root)
	}
	if !cfg.Sync.AutoPush || !cfg.Sync.AutoPull {
		t.Errorf("expected auto push and pull enabled, got %+v", cfg.Sync)
	}
	if cfg.Diff.Tool != DiffBuiltin {
		t.Errorf("expected diff tool builtin, got %s", cfg.Diff.Tool)
	}
	if cfg.Auth.SSHKeyFile != filepath.Join(home, ".ssh", "id_ed25519") {
		t.Errorf("expected expanded ssh key path, got %s", cfg.Auth.SSHKeyFile)
	}
	if cfg.Home != home {
		t.Errorf("expected home %s, got %s", home, cfg.Home)
	}
}

func TestLoad_OptionalMissingFile(t *testing.T) {
	home := t.TempDir()

	cfg, err := Load(filepath.Join(home, "nope.yaml"), home, true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.Root != filepath.Join(home, ".dotfiles") {
		t.Errorf("expected default root, got %s", cfg.Paths.Root)
	}
	if cfg.Diff.Tool != DiffAuto {
		t.Errorf("expected default diff tool auto, got %s", cfg.Diff.Tool)
	}
}

func TestLoad_RequiredMissingFile(t *testing.T) {
	home := t.TempDir()

	if _, err := Load(filepath.Join(home, "nope.yaml"), home, false); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("paths: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath, home, false)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Home:  "/home/user",
				Paths: PathsConfig{Root: "/home/user/.dotfiles"},
				Diff:  DiffConfig{Tool: DiffAuto},
			},
			wantErr: false,
		},
		{
			name: "missing home",
			cfg: Config{
				Paths: PathsConfig{Root: "/home/user/.dotfiles"},
				Diff:  DiffConfig{Tool: DiffAuto},
			},
			wantErr: true,
		},
		{
			name: "relative root",
			cfg: Config{
				Home:  "/home/user",
				Paths: PathsConfig{Root: "dotfiles"},
				Diff:  DiffConfig{Tool: DiffAuto},
			},
			wantErr: true,
		},
		{
			name: "unknown diff tool",
			cfg: Config{
				Home:  "/home/user",
				Paths: PathsConfig{Root: "/home/user/.dotfiles"},
				Diff:  DiffConfig{Tool: "meld"},
			},
			wantErr: true,
		},
		{
			name: "two auth methods",
			cfg: Config{
				Home:  "/home/user",
				Paths: PathsConfig{Root: "/home/user/.dotfiles"},
				Diff:  DiffConfig{Tool: DiffShell},
				Auth:  AuthConfig{SSHKeyFile: "/key", HTTPSTokenFile: "/token"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := Default("/home/user")

	if got := cfg.RegistryPath(); got != "/home/user/.dotfiles/config.json" {
		t.Errorf("RegistryPath() = %s", got)
	}
	if got := cfg.ContentDir(); got != "/home/user/.dotfiles/content" {
		t.Errorf("ContentDir() = %s", got)
	}
	if got := DefaultPath("/home/user"); got != "/home/user/.config/dotsync/config.yaml" {
		t.Errorf("DefaultPath() = %s", got)
	}
}

func TestSetRoot(t *testing.T) {
	t.Setenv("DOTSYNC_TEST_ROOT", "/srv/dots")
	cfg := Default("/home/user")

	cfg.SetRoot("~/elsewhere")
	if cfg.Paths.Root != "/home/user/elsewhere" {
		t.Errorf("SetRoot(~/elsewhere) = %s", cfg.Paths.Root)
	}

	cfg.SetRoot("$DOTSYNC_TEST_ROOT")
	if cfg.Paths.Root != "/srv/dots" {
		t.Errorf("SetRoot($DOTSYNC_TEST_ROOT) = %s", cfg.Paths.Root)
	}
}

func TestAuthMethod(t *testing.T) {
	tests := []struct {
		name string
		auth AuthConfig
		want string
	}{
		{name: "none", auth: AuthConfig{}, want: "none"},
		{name: "ssh", auth: AuthConfig{SSHKeyFile: "/key"}, want: "ssh"},
		{name: "https", auth: AuthConfig{HTTPSTokenFile: "/token"}, want: "https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Auth: tt.auth}
			if got := cfg.AuthMethod(); got != tt.want {
				t.Errorf("AuthMethod() = %s, want %s", got, tt.want)
			}
		})
	}
}
