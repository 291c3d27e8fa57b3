// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/taskify/internal/adapters/server/common"
	"github.com/hylla/taskify/internal/domain"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the board tools.
func NewHandler(cfg Config, board common.BoardService) (*Handler, error) {
	if board == nil {
		return nil, fmt.Errorf("board service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerQueryTools(mcpSrv, board)
	registerMutationTools(mcpSrv, board)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "taskify"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// statusValues lists the accepted status enum for tool schemas.
func statusValues() []string {
	out := make([]string, 0, 3)
	for _, status := range domain.Statuses() {
		out = append(out, string(status))
	}
	return out
}

// priorityValues lists the accepted priority enum for tool schemas.
func priorityValues() []string {
	out := make([]string, 0, 3)
	for _, priority := range domain.Priorities() {
		out = append(out, string(priority))
	}
	return out
}

// registerQueryTools registers read-only board tools.
func registerQueryTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"taskify.list_columns",
			mcp.WithDescription("List board columns with tasks, optionally filtered by search text, status, and priority."),
			mcp.WithString("search", mcp.Description("Case-insensitive substring matched against title and description")),
			mcp.WithString("status", mcp.Description("Only show tasks in this column"), mcp.Enum(statusValues()...)),
			mcp.WithString("priority", mcp.Description("Only show tasks with this priority"), mcp.Enum(priorityValues()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columns, err := board.ListColumns(ctx, common.ListColumnsRequest{
				Search:   req.GetString("search", ""),
				Status:   req.GetString("status", ""),
				Priority: req.GetString("priority", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"columns": columns,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_columns result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskify.get_task",
			mcp.WithDescription("Return one task by id."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			task, err := board.GetTask(ctx, taskID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode get_task result: %w", err)
			}
			return result, nil
		},
	)
}

// registerMutationTools registers tools that change the board.
func registerMutationTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"taskify.add_task",
			mcp.WithDescription("Create a task at the end of its status column."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Task description")),
			mcp.WithString("status", mcp.Description("Initial column (default todo)"), mcp.Enum(statusValues()...)),
			mcp.WithString("priority", mcp.Description("Priority (default medium)"), mcp.Enum(priorityValues()...)),
			mcp.WithString("due_at", mcp.Description("Optional RFC3339 timestamp or YYYY-MM-DD date")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args common.AddTaskRequest
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			task, err := board.AddTask(ctx, args)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode add_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskify.edit_task",
			mcp.WithDescription("Update the provided fields of one task. Omitted fields are left unchanged; a status change appends the task to the new column."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("title", mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Task description")),
			mcp.WithString("status", mcp.Description("Column to move the task to"), mcp.Enum(statusValues()...)),
			mcp.WithString("priority", mcp.Description("Priority"), mcp.Enum(priorityValues()...)),
			mcp.WithString("due_at", mcp.Description("RFC3339 timestamp or YYYY-MM-DD date; empty clears it")),
			mcp.WithBoolean("clear_due_at", mcp.Description("Remove the due date")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				TaskID string `json:"task_id"`
				common.EditTaskRequest
			}
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if strings.TrimSpace(args.TaskID) == "" {
				return mcp.NewToolResultError(`invalid_request: required argument "task_id" not found`), nil
			}
			edit := args.EditTaskRequest
			edit.TaskID = args.TaskID
			task, err := board.EditTask(ctx, edit)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode edit_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskify.delete_task",
			mcp.WithDescription("Delete one task."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			if err := board.DeleteTask(ctx, taskID); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"deleted": taskID,
			})
			if err != nil {
				return nil, fmt.Errorf("encode delete_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskify.move_task",
			mcp.WithDescription("Move one task to a column and position. Positions past the end append."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Destination column"), mcp.Enum(statusValues()...)),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Destination position, zero-based")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			index, err := req.RequireInt("index")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			moved, err := board.MoveTask(ctx, common.MoveTaskRequest{
				TaskID:   taskID,
				ColumnID: columnID,
				Index:    index,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(moved)
			if err != nil {
				return nil, fmt.Errorf("encode move_task result: %w", err)
			}
			return result, nil
		},
	)
}

// invalidRequestToolResult reports malformed tool arguments.
func invalidRequestToolResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("invalid_request: " + err.Error())
}

// toolResultFromError maps adapter errors into MCP tool error results.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
