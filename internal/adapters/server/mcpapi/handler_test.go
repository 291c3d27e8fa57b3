package mcpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hylla/taskify/internal/adapters/server/common"
	"github.com/hylla/taskify/internal/app"
)

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// newBoardService builds a store-backed board service with deterministic ids.
func newBoardService(t *testing.T) *common.AppServiceAdapter {
	t.Helper()
	seq := 0
	store, err := app.NewStore(func() string {
		seq++
		return fmt.Sprintf("t%d", seq)
	}, func() time.Time {
		return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	}, app.StoreConfig{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return common.NewAppServiceAdapter(store)
}

// newTestServer starts one MCP server and performs the initialize handshake.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler, err := NewHandler(Config{}, newBoardService(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	return server
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// callTool invokes one tool and returns the decoded result payload.
func callTool(t *testing.T, server *httptest.Server, id int, toolName string, arguments map[string]any) map[string]any {
	t.Helper()
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(id, toolName, arguments))
	if resp.Result == nil {
		t.Fatalf("%s returned no result", toolName)
	}
	return resp.Result
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()

	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// toolResultStructured decodes structuredContent as one map for stable assertions.
func toolResultStructured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	structured, ok := result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	return structured
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "taskify-test",
				"version": "1.0.0",
			},
		},
	}
}

// callToolResultText decodes the first textual content block from a CallToolResult.
func callToolResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatalf("result = nil, want non-nil")
	}
	if len(result.Content) == 0 {
		t.Fatalf("result content is empty")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] has unexpected type %T", result.Content[0])
	}
	return text.Text
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	handler, err := NewHandler(Config{}, newBoardService(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersBoardTools verifies tool discovery lists every board tool.
func TestHandlerRegistersBoardTools(t *testing.T) {
	server := newTestServer(t)
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, want := range []string{
		"taskify.list_columns",
		"taskify.get_task",
		"taskify.add_task",
		"taskify.edit_task",
		"taskify.delete_task",
		"taskify.move_task",
	} {
		if !slices.Contains(toolNames, want) {
			t.Fatalf("tool list missing %s: %#v", want, toolNames)
		}
	}
}

// TestHandlerBoardToolFlow verifies add, edit, move, list, and delete through tool calls.
func TestHandlerBoardToolFlow(t *testing.T) {
	server := newTestServer(t)

	added := toolResultStructured(t, callTool(t, server, 3, "taskify.add_task", map[string]any{
		"title":    "Write release notes",
		"priority": "high",
		"due_at":   "2026-03-01",
	}))
	if added["id"] != "t1" || added["status"] != "todo" || added["priority"] != "high" {
		t.Fatalf("unexpected add_task result %#v", added)
	}

	edited := toolResultStructured(t, callTool(t, server, 4, "taskify.edit_task", map[string]any{
		"task_id":      "t1",
		"description":  "include migration guide",
		"clear_due_at": true,
	}))
	if edited["description"] != "include migration guide" || edited["title"] != "Write release notes" {
		t.Fatalf("unexpected edit_task result %#v", edited)
	}
	if _, ok := edited["due_at"]; ok {
		t.Fatalf("expected due_at cleared, got %#v", edited["due_at"])
	}

	moved := toolResultStructured(t, callTool(t, server, 5, "taskify.move_task", map[string]any{
		"task_id":   "t1",
		"column_id": "in-progress",
		"index":     3,
	}))
	columns, ok := moved["columns"].([]any)
	if !ok || len(columns) != 3 {
		t.Fatalf("unexpected move_task result %#v", moved)
	}

	listed := toolResultStructured(t, callTool(t, server, 6, "taskify.list_columns", map[string]any{
		"search": "MIGRATION",
		"status": "in-progress",
	}))
	listedColumns, _ := listed["columns"].([]any)
	inProgress, _ := listedColumns[1].(map[string]any)
	tasks, _ := inProgress["tasks"].([]any)
	if len(tasks) != 1 {
		t.Fatalf("expected one filtered task, got %#v", listed)
	}

	got := toolResultStructured(t, callTool(t, server, 7, "taskify.get_task", map[string]any{"task_id": "t1"}))
	if got["status"] != "in-progress" {
		t.Fatalf("status = %v, want in-progress", got["status"])
	}

	deleted := toolResultStructured(t, callTool(t, server, 8, "taskify.delete_task", map[string]any{"task_id": "t1"}))
	if deleted["deleted"] != "t1" {
		t.Fatalf("unexpected delete_task result %#v", deleted)
	}
	missing := callTool(t, server, 9, "taskify.get_task", map[string]any{"task_id": "t1"})
	if isErr, _ := missing["isError"].(bool); !isErr {
		t.Fatalf("expected isError for deleted task, got %#v", missing)
	}
	if text := toolResultText(t, missing); !strings.HasPrefix(text, "not_found:") {
		t.Fatalf("text = %q, want not_found prefix", text)
	}
}

// TestHandlerToolCallErrorPaths verifies required-arg and mapped-service errors.
func TestHandlerToolCallErrorPaths(t *testing.T) {
	server := newTestServer(t)
	cases := []struct {
		name       string
		tool       string
		arguments  map[string]any
		wantPrefix string
	}{
		{name: "missing task id", tool: "taskify.get_task", arguments: map[string]any{}, wantPrefix: "invalid_request:"},
		{name: "blank title", tool: "taskify.add_task", arguments: map[string]any{"title": " "}, wantPrefix: "invalid_request:"},
		{name: "edit without id", tool: "taskify.edit_task", arguments: map[string]any{"title": "x"}, wantPrefix: "invalid_request:"},
		{name: "edit unknown", tool: "taskify.edit_task", arguments: map[string]any{"task_id": "nope", "title": "x"}, wantPrefix: "not_found:"},
		{name: "move unknown", tool: "taskify.move_task", arguments: map[string]any{"task_id": "nope", "column_id": "done", "index": 0}, wantPrefix: "not_found:"},
		{name: "move missing index", tool: "taskify.move_task", arguments: map[string]any{"task_id": "nope", "column_id": "done"}, wantPrefix: "invalid_request:"},
		{name: "bad filter", tool: "taskify.list_columns", arguments: map[string]any{"priority": "urgent"}, wantPrefix: "invalid_request:"},
	}
	for idx, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := callTool(t, server, 10+idx, tc.tool, tc.arguments)
			if isErr, _ := result["isError"].(bool); !isErr {
				t.Fatalf("isError = false, want true: %#v", result)
			}
			if text := toolResultText(t, result); !strings.HasPrefix(text, tc.wantPrefix) {
				t.Fatalf("text = %q, want prefix %q", text, tc.wantPrefix)
			}
		})
	}
}

// TestNewHandlerRequiresBoardService verifies dependency enforcement.
func TestNewHandlerRequiresBoardService(t *testing.T) {
	handler, err := NewHandler(Config{}, nil)
	if err == nil {
		t.Fatal("expected error for nil board service")
	}
	if handler != nil {
		t.Fatalf("handler = %#v, want nil", handler)
	}
}

// TestNormalizeConfig verifies defaults and endpoint path cleanup.
func TestNormalizeConfig(t *testing.T) {
	cases := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "defaults",
			in:   Config{},
			want: Config{ServerName: "taskify", ServerVersion: "dev", EndpointPath: "/mcp"},
		},
		{
			name: "trims and prefixes",
			in:   Config{ServerName: " board ", ServerVersion: " 1.2.3 ", EndpointPath: "tools/mcp/"},
			want: Config{ServerName: "board", ServerVersion: "1.2.3", EndpointPath: "/tools/mcp"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeConfig(tc.in); got != tc.want {
				t.Fatalf("normalizeConfig() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

// TestHandlerServeHTTPUnavailable verifies nil handlers fail closed.
func TestHandlerServeHTTPUnavailable(t *testing.T) {
	for name, handler := range map[string]*Handler{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(`{}`))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "mcp handler unavailable") {
				t.Fatalf("body = %q, want mcp handler unavailable", rec.Body.String())
			}
		})
	}
}

// TestToolResultFromErrorMapping verifies deterministic error-to-tool-result mapping.
func TestToolResultFromErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{name: "nil error", err: nil, wantPrefix: "unknown error"},
		{name: "invalid request", err: errors.Join(common.ErrInvalidRequest, errors.New("bad")), wantPrefix: "invalid_request:"},
		{name: "not found", err: errors.Join(common.ErrNotFound, errors.New("missing")), wantPrefix: "not_found:"},
		{name: "internal", err: errors.New("boom"), wantPrefix: "internal_error:"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			result := toolResultFromError(tt.err)
			if !result.IsError {
				t.Fatalf("IsError = false, want true")
			}
			if got := callToolResultText(t, result); !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("text = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}
}
