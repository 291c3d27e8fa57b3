package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hylla/taskify/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !cfg.Board.SeedDemo {
		t.Fatal("expected demo seeding enabled by default")
	}
	if !cfg.TaskFields.ShowPriority || !cfg.TaskFields.ShowDueDate {
		t.Fatal("expected priority/due_date enabled by default")
	}
	if cfg.TaskFields.ShowDescription {
		t.Fatal("expected description disabled by default")
	}
	if cfg.Server.APIEndpoint != "/api/v1" || cfg.Server.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected endpoints %#v", cfg.Server)
	}
	if !cfg.Confirm.Delete {
		t.Fatal("expected delete confirmation enabled by default")
	}
	if cfg.UI.MarkdownStyle != "dark" {
		t.Fatalf("unexpected markdown style %q", cfg.UI.MarkdownStyle)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTPBind != defaults.Server.HTTPBind {
		t.Fatalf("expected default bind, got %q", cfg.Server.HTTPBind)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[board]
seed_demo = false
columns = [
  { id = "done", title = "Shipped" },
  { id = "todo", title = "Backlog" },
  { id = "In-Progress", title = "Doing" },
]

[task_fields]
show_priority = true
show_due_date = false
show_description = true

[server]
http_bind = "0.0.0.0:9000"

[confirm]
delete = false

[ui]
markdown_style = "light"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Board.SeedDemo {
		t.Fatal("expected seed_demo disabled from config override")
	}
	statuses := cfg.Board.Statuses()
	if statuses[0] != domain.StatusDone || statuses[2] != domain.StatusInProgress {
		t.Fatalf("unexpected column order %v", statuses)
	}
	if cfg.Board.Columns[1].Title != "Backlog" {
		t.Fatalf("unexpected column title %q", cfg.Board.Columns[1].Title)
	}
	if cfg.TaskFields.ShowDueDate || !cfg.TaskFields.ShowDescription {
		t.Fatalf("unexpected task fields %#v", cfg.TaskFields)
	}
	if cfg.Server.HTTPBind != "0.0.0.0:9000" || cfg.Server.APIEndpoint != "/api/v1" {
		t.Fatalf("unexpected server config %#v", cfg.Server)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging level %q", cfg.Logging.Level)
	}
	if cfg.Confirm.Delete || cfg.UI.MarkdownStyle != "light" {
		t.Fatalf("unexpected confirm/ui config %#v %#v", cfg.Confirm, cfg.UI)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"missing column": `
[board]
columns = [{ id = "todo", title = "To Do" }, { id = "done", title = "Done" }]
`,
		"unknown column": `
[board]
columns = [{ id = "todo", title = "a" }, { id = "later", title = "b" }, { id = "done", title = "c" }]
`,
		"duplicate column": `
[board]
columns = [{ id = "todo", title = "a" }, { id = "todo", title = "b" }, { id = "done", title = "c" }]
`,
		"empty title": `
[board]
columns = [{ id = "todo", title = " " }, { id = "in-progress", title = "b" }, { id = "done", title = "c" }]
`,
		"bad endpoint": `
[server]
mcp_endpoint = "mcp"
`,
		"bad level": `
[logging]
level = "loud"
`,
		"bad markdown style": `
[ui]
markdown_style = "neon"
`,
		"bad toml": `[board`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default()); err == nil {
				t.Fatal("expected Load() error")
			}
		})
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	written, err := WriteDefault(target)
	if err != nil || !written {
		t.Fatalf("WriteDefault() = %v, %v", written, err)
	}
	cfg, err := Load(target, Config{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Board.Columns) != 3 || cfg.Server.HTTPBind != Default().Server.HTTPBind {
		t.Fatalf("unexpected round-trip config %#v", cfg)
	}
	written, err = WriteDefault(target)
	if err != nil || written {
		t.Fatalf("WriteDefault(existing) = %v, %v", written, err)
	}
}
