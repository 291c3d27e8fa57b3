package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hylla/taskify/internal/domain"
)

type Config struct {
	Board      BoardConfig      `toml:"board"`
	TaskFields TaskFieldsConfig `toml:"task_fields"`
	Server     ServerConfig     `toml:"server"`
	Confirm    ConfirmConfig    `toml:"confirm"`
	UI         UIConfig         `toml:"ui"`
	Logging    LoggingConfig    `toml:"logging"`
}

type BoardConfig struct {
	Columns  []ColumnConfig `toml:"columns"`
	SeedDemo bool           `toml:"seed_demo"`
}

type ColumnConfig struct {
	ID    string `toml:"id"`
	Title string `toml:"title"`
}

type TaskFieldsConfig struct {
	ShowPriority    bool `toml:"show_priority"`
	ShowDueDate     bool `toml:"show_due_date"`
	ShowDescription bool `toml:"show_description"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type ConfirmConfig struct {
	Delete bool `toml:"delete"`
}

type UIConfig struct {
	MarkdownStyle string `toml:"markdown_style"` // glamour standard style name
}

// markdownStyles lists the glamour standard styles accepted by ui.markdown_style.
var markdownStyles = []string{"ascii", "auto", "dark", "dracula", "light", "notty", "pink", "tokyo-night"}

type LoggingConfig struct {
	Level   string        `toml:"level"` // debug | info | warn | error
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func defaultColumns() []ColumnConfig {
	out := make([]ColumnConfig, 0, 3)
	for _, status := range domain.Statuses() {
		out = append(out, ColumnConfig{ID: string(status), Title: status.DefaultTitle()})
	}
	return out
}

func Default() Config {
	return Config{
		Board: BoardConfig{
			Columns:  defaultColumns(),
			SeedDemo: true,
		},
		TaskFields: TaskFieldsConfig{
			ShowPriority:    true,
			ShowDueDate:     true,
			ShowDescription: false,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:5437",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Confirm: ConfirmConfig{
			Delete: true,
		},
		UI: UIConfig{
			MarkdownStyle: "dark",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".taskify/log",
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Board.Columns) != len(domain.Statuses()) {
		return fmt.Errorf("board.columns must list each of %d statuses once, got %d", len(domain.Statuses()), len(c.Board.Columns))
	}
	seen := map[domain.Status]struct{}{}
	for idx, column := range c.Board.Columns {
		status, err := domain.ParseStatus(column.ID)
		if err != nil {
			return fmt.Errorf("board.columns[%d].id %q: %w", idx, column.ID, err)
		}
		if strings.TrimSpace(column.Title) == "" {
			return fmt.Errorf("board.columns[%d].title is required", idx)
		}
		if _, ok := seen[status]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, status)
		}
		seen[status] = struct{}{}
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		if !strings.HasPrefix(strings.TrimSpace(endpoint), "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}

	if style := strings.TrimSpace(c.UI.MarkdownStyle); style != "" && !slices.Contains(markdownStyles, style) {
		return fmt.Errorf("invalid ui.markdown_style: %q", c.UI.MarkdownStyle)
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev file logging is enabled")
	}

	return nil
}

// Statuses returns the configured column statuses in display order. Validate must pass first.
func (c BoardConfig) Statuses() []domain.Status {
	out := make([]domain.Status, 0, len(c.Columns))
	for _, column := range c.Columns {
		status, _ := domain.ParseStatus(column.ID)
		out = append(out, status)
	}
	return out
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteDefault writes the default configuration to path unless a file already exists.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	content, err := toml.Marshal(Default())
	if err != nil {
		return false, fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
