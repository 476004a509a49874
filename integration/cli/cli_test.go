//go:build integration

package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCLI(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	bin := buildBinary(ctx, t)
	remote := filepath.Join(t.TempDir(), "remote.git")

	laptop := NewMachine(t, "laptop", bin)
	desktop := NewMachine(t, "desktop", bin)

	laptop.Git(ctx, laptop.Home, "init", "--bare", remote)
	var branch string

	t.Run("A_InitAndRegister", func(t *testing.T) {
		out := laptop.MustExec(ctx, "", "init")
		if !strings.Contains(out, "initialized") {
			t.Errorf("unexpected init output: %s", out)
		}

		laptop.WriteFile(".bashrc", "X\n")
		laptop.WriteFile(".config/nvim/init.lua", "vim.o.number = true\n")
		laptop.MustExec(ctx, "", "register", "~/.bashrc")
		laptop.MustExec(ctx, "", "add", ".config/nvim/init.lua")

		list := laptop.MustExec(ctx, "", "list")
		if list != "~/.bashrc\n~/.config/nvim/init.lua\n" {
			t.Errorf("unexpected list output: %q", list)
		}

		data, err := os.ReadFile(filepath.Join(laptop.Root(), "config.json"))
		if err != nil {
			t.Fatal(err)
		}
		var doc struct {
			Entries []struct {
				Path string            `json:"path"`
				ID   string            `json:"id"`
				Tags map[string]string `json:"tags"`
			} `json:"entries"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("registry is not valid JSON: %v", err)
		}
		if len(doc.Entries) != 2 || doc.Entries[0].ID == "" {
			t.Fatalf("unexpected registry: %s", data)
		}
		blob := filepath.Join(laptop.Root(), "content", doc.Entries[0].ID)
		if content, err := os.ReadFile(blob); err != nil || string(content) != "X\n" {
			t.Errorf("expected content blob with X, got %q (%v)", content, err)
		}
	})

	t.Run("B_SaveAndPush", func(t *testing.T) {
		laptop.WriteFile(".bashrc", "Y\n")

		out := laptop.MustExec(ctx, "n\n", "save")
		if !strings.Contains(out, "Aborted.") {
			t.Errorf("expected abort, got: %s", out)
		}

		out = laptop.MustExec(ctx, "y\n", "save")
		if !strings.Contains(out, "saved ~/.bashrc") {
			t.Errorf("expected saved line, got: %s", out)
		}

		out = laptop.MustExec(ctx, "", "save", "--yes")
		if !strings.Contains(out, "Nothing to do!") {
			t.Errorf("second save should be a no-op, got: %s", out)
		}

		laptop.MustExec(ctx, "", "git", "remote", "add", "origin", remote)
		laptop.MustExec(ctx, "", "git", "push", "-u", "origin", "HEAD")
		branch = strings.TrimSpace(laptop.MustExec(ctx, "", "git", "rev-parse", "--abbrev-ref", "HEAD"))
	})

	t.Run("C_LoadOnSecondMachine", func(t *testing.T) {
		desktop.Git(ctx, desktop.Home, "clone", "-b", branch, remote, desktop.Root())

		out := desktop.MustExec(ctx, "", "load", "--dry-run")
		if !strings.Contains(out, "+ create") {
			t.Errorf("expected create preview, got: %s", out)
		}
		if desktop.FileExists(".bashrc") {
			t.Fatal("dry run must not copy")
		}

		desktop.MustExec(ctx, "", "load", "--yes")
		if got := desktop.ReadFile(".bashrc"); got != "Y\n" {
			t.Errorf("expected loaded .bashrc, got %q", got)
		}
		if got := desktop.ReadFile(".config/nvim/init.lua"); got != "vim.o.number = true\n" {
			t.Errorf("expected loaded init.lua, got %q", got)
		}
	})

	t.Run("D_TagsRestrictEntries", func(t *testing.T) {
		laptop.MustExec(ctx, "", "tag", "~/.bashrc", "os", "plan9")

		if list := laptop.MustExec(ctx, "", "list"); strings.Contains(list, ".bashrc") {
			t.Errorf("entry tagged for another os should be hidden: %s", list)
		}
		if list := laptop.MustExec(ctx, "", "list", "--all", "--tags"); !strings.Contains(list, "os='plan9'") {
			t.Errorf("expected tag in --all listing: %s", list)
		}

		laptop.WriteFile(".bashrc", "ignored\n")
		out := laptop.MustExec(ctx, "", "save", "--yes")
		if !strings.Contains(out, "Nothing to do!") {
			t.Errorf("inapplicable entry must not be saved: %s", out)
		}

		laptop.MustExec(ctx, "", "untag", "~/.bashrc", "os")
	})

	t.Run("E_DiffAndStatus", func(t *testing.T) {
		laptop.WriteFile(".bashrc", "Z\n")

		out := laptop.MustExec(ctx, "", "diff", "~/.bashrc")
		if !strings.Contains(out, "-Y") || !strings.Contains(out, "+Z") {
			t.Errorf("unexpected diff: %s", out)
		}

		out = laptop.MustExec(ctx, "", "status")
		if !strings.Contains(out, "modified") {
			t.Errorf("expected modified status: %s", out)
		}
	})

	t.Run("F_Unregister", func(t *testing.T) {
		laptop.MustExec(ctx, "", "rm", "~/.bashrc")
		if list := laptop.MustExec(ctx, "", "list"); strings.Contains(list, ".bashrc") {
			t.Errorf("entry should be gone: %s", list)
		}

		out := laptop.MustExec(ctx, "", "unregister", "~/.bashrc")
		if !strings.Contains(out, "Nothing to do!") {
			t.Errorf("expected nothing to do, got: %s", out)
		}
	})

	t.Run("G_Errors", func(t *testing.T) {
		_, stderr, code, err := laptop.Exec(ctx, "", "bogus")
		if err != nil {
			t.Fatal(err)
		}
		if code == 0 || !strings.Contains(stderr, "Usage:") {
			t.Errorf("invalid command should print usage and fail, code=%d stderr=%s", code, stderr)
		}

		_, stderr, code, err = laptop.Exec(ctx, "", "register", "~/.nope")
		if err != nil {
			t.Fatal(err)
		}
		if code == 0 || !strings.Contains(stderr, "path not found on system") {
			t.Errorf("expected path not found, code=%d stderr=%s", code, stderr)
		}

		_, _, code, err = laptop.Exec(ctx, "", "git", "rev-parse", "--verify", "--quiet", "no-such-ref")
		if err != nil {
			t.Fatal(err)
		}
		if code != 1 {
			t.Errorf("expected git's exit status 1, got %d", code)
		}
	})
}
