// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/hylla/taskify/internal/adapters/server/common"
)

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	board     common.BoardService
	validator *bodyValidator
	logger    *log.Logger
	router    *echo.Echo
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// columnsResponse wraps filtered columns.
type columnsResponse struct {
	Columns any `json:"columns"`
}

// NewHandler constructs one HTTP API adapter. A nil logger disables request logging.
func NewHandler(board common.BoardService, logger *log.Logger) (*Handler, error) {
	if board == nil {
		return nil, fmt.Errorf("board service is required")
	}
	validator, err := newBodyValidator()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		board:     board,
		validator: validator,
		logger:    logger,
		router:    echo.New(),
	}
	h.router.HideBanner = true
	h.router.HidePort = true
	h.router.HTTPErrorHandler = h.handleRouterError
	h.router.Use(h.requestLogger)

	h.router.GET("/columns", h.handleListColumns)
	h.router.GET("/board", h.handleBoard)
	h.router.POST("/tasks", h.handleAddTask)
	h.router.GET("/tasks/:id", h.handleGetTask)
	h.router.PATCH("/tasks/:id", h.handleEditTask)
	h.router.DELETE("/tasks/:id", h.handleDeleteTask)
	h.router.POST("/tasks/:id/move", h.handleMoveTask)
	h.router.POST("/drops", h.handleDrop)
	return h, nil
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// handleListColumns serves GET `/columns`.
func (h *Handler) handleListColumns(c echo.Context) error {
	columns, err := h.board.ListColumns(c.Request().Context(), common.ListColumnsRequest{
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
	})
	if err != nil {
		return writeErrorFrom(c, err)
	}
	return c.JSON(http.StatusOK, columnsResponse{Columns: columns})
}

// handleBoard serves GET `/board`.
func (h *Handler) handleBoard(c echo.Context) error {
	board, err := h.board.Board(c.Request().Context())
	if err != nil {
		return writeErrorFrom(c, err)
	}
	return c.JSON(http.StatusOK, board)
}

// handleAddTask serves POST `/tasks`.
func (h *Handler) handleAddTask(c echo.Context) error {
	var req common.AddTaskRequest
	if err := h.validator.decode(c.Request().Body, schemaAddTask, &req); err != nil {
		return writeErrorFrom(c, err)
	}
	task, err := h.board.AddTask(c.Request().Context(), req)
	if err != nil {
		return writeErrorFrom(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// handleGetTask serves GET `/tasks/{id}`.
func (h *Handler) handleGetTask(c echo.Context) error {
	task, err := h.board.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeErrorFrom(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// handleEditTask serves PATCH `/tasks/{id}`.
func (h *Handler) handleEditTask(c echo.Context) error {
	var req common.EditTaskRequest
	if err := h.validator.decode(c.Request().Body, schemaEditTask, &req); err != nil {
		return writeErrorFrom(c, err)
	}
	req.TaskID = c.Param("id")
	task, err := h.board.EditTask(c.Request().Context(), req)
	if err != nil {
		return writeErrorFrom(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// handleDeleteTask serves DELETE `/tasks/{id}`.
func (h *Handler) handleDeleteTask(c echo.Context) error {
	if err := h.board.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return writeErrorFrom(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleMoveTask serves POST `/tasks/{id}/move`.
func (h *Handler) handleMoveTask(c echo.Context) error {
	var req common.MoveTaskRequest
	if err := h.validator.decode(c.Request().Body, schemaMoveTask, &req); err != nil {
		return writeErrorFrom(c, err)
	}
	req.TaskID = c.Param("id")
	board, err := h.board.MoveTask(c.Request().Context(), req)
	if err != nil {
		return writeErrorFrom(c, err)
	}
	return c.JSON(http.StatusOK, board)
}

// handleDrop serves POST `/drops`. Ignored drops answer 204.
func (h *Handler) handleDrop(c echo.Context) error {
	var req common.DropRequest
	if err := h.validator.decode(c.Request().Body, schemaDrop, &req); err != nil {
		return writeErrorFrom(c, err)
	}
	result, err := h.board.ApplyDrop(c.Request().Context(), req)
	if err != nil {
		return writeErrorFrom(c, err)
	}
	if !result.Applied {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, result.Board)
}

// requestLogger logs one line per request when a logger is configured.
func (h *Handler) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if h.logger == nil {
			return err
		}
		status := c.Response().Status
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
		}
		fields := []any{
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		if status >= http.StatusInternalServerError {
			h.logger.Error("api request", fields...)
		} else {
			h.logger.Debug("api request", fields...)
		}
		return err
	}
}

// handleRouterError renders router-level failures (unknown routes, wrong methods) as envelopes.
func (h *Handler) handleRouterError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		_ = writeErrorFrom(c, err)
		return
	}
	switch httpErr.Code {
	case http.StatusNotFound:
		_ = writeJSONError(c, http.StatusNotFound, APIError{Code: "not_found", Message: "endpoint not found"})
	case http.StatusMethodNotAllowed:
		_ = writeJSONError(c, http.StatusMethodNotAllowed, APIError{Code: "method_not_allowed", Message: "method not allowed"})
	default:
		_ = writeJSONError(c, httpErr.Code, APIError{Code: "http_error", Message: fmt.Sprint(httpErr.Message)})
	}
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(c echo.Context, err error) error {
	switch {
	case err == nil:
		return writeJSONError(c, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		return writeJSONError(c, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		return writeJSONError(c, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		return writeJSONError(c, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeJSONError writes one structured error envelope.
func writeJSONError(c echo.Context, statusCode int, apiErr APIError) error {
	return c.JSON(statusCode, ErrorEnvelope{Error: apiErr})
}
