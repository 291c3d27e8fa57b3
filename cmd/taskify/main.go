package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	serveradapter "github.com/hylla/taskify/internal/adapters/server"
	servercommon "github.com/hylla/taskify/internal/adapters/server/common"
	"github.com/hylla/taskify/internal/app"
	"github.com/hylla/taskify/internal/config"
	"github.com/hylla/taskify/internal/platform"
	"github.com/hylla/taskify/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(ctx context.Context, m tea.Model) program {
	return tea.NewProgram(m, tea.WithContext(ctx))
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

// idGenerator and clock feed the board store.
var (
	idGenerator app.IDGenerator = uuid.NewString
	clock       app.Clock       = time.Now
)

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes it through fang.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	appName    string
	devMode    bool
	stdout     io.Writer
	stderr     io.Writer
}

// newRootCommand constructs the taskify command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TASKIFY_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := "taskify"
	if envApp := strings.TrimSpace(os.Getenv("TASKIFY_APP_NAME")); envApp != "" {
		defaultApp = envApp
	}

	root := &cobra.Command{
		Use:   "taskify",
		Short: "A kanban board for your terminal, with REST and MCP access",
		Long: "taskify keeps an in-memory kanban board with To Do, In Progress and Done columns.\n" +
			"Run it without a subcommand for the terminal board, or use serve to expose the\n" +
			"same board over HTTP and MCP.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runBoard(cmd.Context())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newServeCommand(opts),
		newExportCommand(opts),
		newPathsCommand(opts),
		newInitCommand(opts),
	)
	return root
}

// newServeCommand exposes the board over HTTP and MCP.
func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over REST and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runServe(cmd.Context(), httpBind, apiEndpoint, mcpEndpoint)
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP listen address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "HTTP API base endpoint (default from config)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP streamable HTTP endpoint (default from config)")
	return cmd
}

// newExportCommand writes a JSON snapshot of the startup board.
func newExportCommand(opts *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runExport(outPath)
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output file path ('-' for stdout, default the data dir export path)")
	return cmd
}

// newPathsCommand prints resolved runtime paths.
func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := opts.paths()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", opts.resolveConfigPath(paths))
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "export: %s\n", paths.ExportPath)
			return nil
		},
	}
}

// newInitCommand writes a default config file when none exists.
func newInitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := opts.paths()
			if err != nil {
				return err
			}
			configPath := opts.resolveConfigPath(paths)
			written, err := config.WriteDefault(configPath)
			if err != nil {
				return fmt.Errorf("write default config: %w", err)
			}
			if written {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "config already exists: %s\n", configPath)
			}
			return nil
		},
	}
}

// runtimeEnv is the resolved state shared by board, serve and export.
type runtimeEnv struct {
	configPath string
	exportPath string
	cfg        config.Config
	logger     *runtimeLogger
	store      *app.Store
}

// paths resolves platform paths for the selected app name and mode.
func (o *rootOptions) paths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
}

// resolveConfigPath applies flag, env, then platform precedence.
func (o *rootOptions) resolveConfigPath(paths platform.Paths) string {
	if path := strings.TrimSpace(o.configPath); path != "" {
		return path
	}
	if envPath := strings.TrimSpace(os.Getenv("TASKIFY_CONFIG")); envPath != "" {
		return envPath
	}
	return paths.ConfigPath
}

// bootstrap loads config, configures logging and builds the store.
func (o *rootOptions) bootstrap(command string) (*runtimeEnv, error) {
	paths, err := o.paths()
	if err != nil {
		return nil, err
	}
	configPath := o.resolveConfigPath(paths)
	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}

	logger, err := newRuntimeLogger(o.stderr, o.appName, o.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Runtime logs stay in the dev-file sink while the board owns the terminal.
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir)
	logger.Info("configuration loaded", "config_path", configPath, "log_level", cfg.Logging.Level, "seed_demo", cfg.Board.SeedDemo)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	store, err := newStore(cfg.Board, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	logger.Info("board ready", "tasks", store.Board().TaskCount())
	return &runtimeEnv{
		configPath: configPath,
		exportPath: paths.ExportPath,
		cfg:        cfg,
		logger:     logger,
		store:      store,
	}, nil
}

// close releases the log sinks.
func (e *runtimeEnv) close(stderr io.Writer) {
	if closeErr := e.logger.Close(); closeErr != nil && e.logger.shouldLogToSink(e.logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// newStore builds the board from config and seeds demo data when enabled.
func newStore(cfg config.BoardConfig, logger *runtimeLogger) (*app.Store, error) {
	templates := make([]app.ColumnTemplate, 0, len(cfg.Columns))
	for idx, status := range cfg.Statuses() {
		templates = append(templates, app.ColumnTemplate{ID: status, Title: cfg.Columns[idx].Title})
	}
	store, err := app.NewStore(idGenerator, clock, app.StoreConfig{
		Columns: templates,
		Observer: func(change app.Change) {
			logger.Debug("board changed",
				"op", change.Operation,
				"task_id", change.TaskID,
				"from", change.From,
				"to", change.To,
				"index", change.Index,
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create board store: %w", err)
	}
	if cfg.SeedDemo {
		seeded, err := store.Seed(app.DemoTasks(clock()))
		if err != nil {
			return nil, fmt.Errorf("seed demo tasks: %w", err)
		}
		logger.Debug("demo tasks seeded", "count", len(seeded))
	}
	return store, nil
}

// runBoard runs the terminal board.
func (o *rootOptions) runBoard(ctx context.Context) error {
	env, err := o.bootstrap("tui")
	if err != nil {
		return err
	}
	defer env.close(o.stderr)

	m := tui.NewModel(
		env.store,
		tui.WithTaskFieldConfig(tui.TaskFieldConfig{
			ShowPriority:    env.cfg.TaskFields.ShowPriority,
			ShowDueDate:     env.cfg.TaskFields.ShowDueDate,
			ShowDescription: env.cfg.TaskFields.ShowDescription,
		}),
		tui.WithConfirmConfig(tui.ConfirmConfig{Delete: env.cfg.Confirm.Delete}),
		tui.WithMarkdownStyle(env.cfg.UI.MarkdownStyle),
		tui.WithClock(clock),
	)
	env.logger.Info("starting tui program loop")
	if _, err := programFactory(ctx, m).Run(); err != nil {
		env.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	env.logger.Info("command flow complete", "command", "tui")
	return nil
}

// runServe runs the serve subcommand flow.
func (o *rootOptions) runServe(ctx context.Context, httpBind, apiEndpoint, mcpEndpoint string) error {
	env, err := o.bootstrap("serve")
	if err != nil {
		return err
	}
	defer env.close(o.stderr)

	cfg := serveradapter.Config{
		HTTPBind:      firstNonEmpty(httpBind, env.cfg.Server.HTTPBind),
		APIEndpoint:   firstNonEmpty(apiEndpoint, env.cfg.Server.APIEndpoint),
		MCPEndpoint:   firstNonEmpty(mcpEndpoint, env.cfg.Server.MCPEndpoint),
		ServerName:    o.appName,
		ServerVersion: version,
	}
	env.logger.Info("command flow start", "command", "serve", "http", cfg.HTTPBind)
	if err := serveCommandRunner(ctx, cfg, serveradapter.Dependencies{
		Board:  servercommon.NewAppServiceAdapter(env.store),
		Logger: env.logger.requestSink(),
	}); err != nil {
		env.logger.Error("command flow failed", "command", "serve", "err", err)
		return fmt.Errorf("run serve command: %w", err)
	}
	env.logger.Info("command flow complete", "command", "serve")
	return nil
}

// runExport writes the startup board snapshot as indented JSON.
func (o *rootOptions) runExport(outPath string) error {
	env, err := o.bootstrap("export")
	if err != nil {
		return err
	}
	defer env.close(o.stderr)

	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		outPath = env.exportPath
	}

	snap := env.store.ExportSnapshot()
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "-" {
		if _, err := o.stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	env.logger.Info("snapshot exported", "path", outPath, "tasks", snap.TaskCount())
	return nil
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
