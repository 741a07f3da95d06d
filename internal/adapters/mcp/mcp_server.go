// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"sync"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

const (
	// ServerName is advertised to MCP clients.
	ServerName = "pomodoro"

	defaultActivityLimit = 20
	stateActivityLimit   = 5
	timeLayout           = "2006-01-02T15:04:05"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server        *server.MCPServer
	stateProvider ports.MCPStateProvider
	logger        hclog.Logger

	stdin  io.Reader
	stdout io.Writer

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewServer creates a new MCP server instance.
func NewServer(stateProvider ports.MCPStateProvider, version string, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &Server{
		stateProvider: stateProvider,
		logger:        logger.Named("mcp"),
		stdin:         os.Stdin,
		stdout:        os.Stdout,
	}

	s.server = server.NewMCPServer(
		ServerName,
		version,
		server.WithLogging(),
	)
	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_state",
			mcp.WithDescription("Get the timer state: clock, phase, running flag, tasks, session statistics and the latest events"),
		),
		s.handleGetState,
	)

	listTasksTool := mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List the study tasks, optionally filtered by fuzzy text, best match first"),
		mcp.WithString(
			"query",
			mcp.Description("Fuzzy text matched against task descriptions; empty lists every task in order"),
		),
	)
	s.server.AddTool(listTasksTool, s.handleListTasks)

	s.server.AddTool(
		mcp.NewTool(
			"toggle_start",
			mcp.WithDescription("Start the countdown if paused, pause it if running"),
		),
		s.handleToggleStart,
	)

	s.server.AddTool(
		mcp.NewTool(
			"reset_timer",
			mcp.WithDescription("Pause the countdown and refill it for a new focus block"),
		),
		s.handleResetTimer,
	)

	addTaskTool := mcp.NewTool(
		"add_task",
		mcp.WithDescription("Append a task to the study list"),
		mcp.WithString(
			"text",
			mcp.Required(),
			mcp.Description("Task description; surrounding whitespace is trimmed"),
		),
	)
	s.server.AddTool(addTaskTool, s.handleAddTask)

	toggleTaskTool := mcp.NewTool(
		"toggle_task",
		mcp.WithDescription("Mark a task done or not done. Checking a task off counts towards the session statistics"),
		mcp.WithNumber(
			"index",
			mcp.Description("1-based position of the task in the list"),
		),
		mcp.WithString(
			"query",
			mcp.Description("Fuzzy text matched against task descriptions when index is not given"),
		),
	)
	s.server.AddTool(toggleTaskTool, s.handleToggleTask)

	s.server.AddTool(
		mcp.NewTool(
			"clear_tasks",
			mcp.WithDescription("Remove every task from the list. Statistics are kept"),
		),
		s.handleClearTasks,
	)

	applyConfigTool := mcp.NewTool(
		"apply_config",
		mcp.WithDescription("Set new focus and rest lengths and restart the focus block"),
		mcp.WithNumber(
			"focus_minutes",
			mcp.Required(),
			mcp.Description("Focus block length in minutes"),
		),
		mcp.WithNumber(
			"rest_minutes",
			mcp.Required(),
			mcp.Description("Rest block length in minutes"),
		),
	)
	s.server.AddTool(applyConfigTool, s.handleApplyConfig)

	activityTool := mcp.NewTool(
		"get_activity",
		mcp.WithDescription("List recent timer and task events of this run, newest first"),
		mcp.WithNumber(
			"limit",
			mcp.Description("Maximum number of events (default: 20)"),
		),
	)
	s.server.AddTool(activityTool, s.handleGetActivity)
}

// Start serves MCP requests over stdio until ctx is cancelled or Stop is
// called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	stdio := server.NewStdioServer(s.server)
	stdio.SetErrorLogger(s.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}))

	s.logger.Info("serving on stdio")
	err := stdio.Listen(runCtx, s.stdin, s.stdout)
	if err != nil && runCtx.Err() != nil {
		return nil
	}
	return err
}

// Stop makes a running Start return. Called first, it makes Start return
// at once.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

// handleGetState handles the get_state tool.
func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.stateProvider.GetCurrentState(ctx, stateActivityLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get state: %v", err)), nil
	}

	result := snapshotData(state.Snapshot)
	result["recent_activity"] = eventsData(state.RecentActivity)
	return jsonResult(result)
}

// handleListTasks handles the list_tasks tool.
func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listed := s.stateProvider.ListTasks(request.GetString("query", ""))

	tasks := make([]map[string]interface{}, len(listed))
	for i, t := range listed {
		tasks[i] = taskData(t.Index, t.Task)
	}
	return jsonResult(map[string]interface{}{
		"tasks":       tasks,
		"total_count": len(tasks),
	})
}

// handleToggleStart handles the toggle_start tool.
func (s *Server) handleToggleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.stateProvider.ToggleStart(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle timer: %v", err)), nil
	}
	return jsonResult(timerData(snap))
}

// handleResetTimer handles the reset_timer tool.
func (s *Server) handleResetTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.stateProvider.ResetTimer(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to reset timer: %v", err)), nil
	}
	return jsonResult(timerData(snap))
}

// handleAddTask handles the add_task tool.
func (s *Server) handleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required: " + err.Error()), nil
	}

	idx, task, err := s.stateProvider.AddTask(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add task: %v", err)), nil
	}
	return jsonResult(taskData(idx, task))
}

// handleToggleTask handles the toggle_task tool.
func (s *Server) handleToggleTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := ""
	if idx := request.GetFloat("index", 0); idx != 0 {
		if !wholeNumber(idx) {
			return mcp.NewToolResultError(fmt.Sprintf("index must be a whole number, got %v", idx)), nil
		}
		ref = strconv.Itoa(int(idx))
	} else if q := request.GetString("query", ""); q != "" {
		ref = q
	}
	if ref == "" {
		return mcp.NewToolResultError("either index or query is required"), nil
	}

	idx, task, err := s.stateProvider.ToggleTask(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle task: %v", err)), nil
	}

	result := taskData(idx, task)
	result["tasks_completed"] = s.stateProvider.CurrentSnapshot().Session.Stats.TasksCompleted
	return jsonResult(result)
}

// handleClearTasks handles the clear_tasks tool.
func (s *Server) handleClearTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.stateProvider.ClearTasks(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear tasks: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{"removed": n})
}

// handleApplyConfig handles the apply_config tool.
func (s *Server) handleApplyConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	focus, err := request.RequireFloat("focus_minutes")
	if err != nil {
		return mcp.NewToolResultError("focus_minutes is required: " + err.Error()), nil
	}
	rest, err := request.RequireFloat("rest_minutes")
	if err != nil {
		return mcp.NewToolResultError("rest_minutes is required: " + err.Error()), nil
	}

	if !wholeNumber(focus) || !wholeNumber(rest) {
		return mcp.NewToolResultError(fmt.Sprintf("minutes must be whole numbers, got focus_minutes=%v rest_minutes=%v", focus, rest)), nil
	}

	snap, err := s.stateProvider.ApplyConfig(ctx, int(focus), int(rest))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to apply configuration: %v", err)), nil
	}
	return jsonResult(timerData(snap))
}

// handleGetActivity handles the get_activity tool.
func (s *Server) handleGetActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(request.GetFloat("limit", defaultActivityLimit))
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	entries, err := s.stateProvider.RecentActivity(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	events := eventsData(entries)
	return jsonResult(map[string]interface{}{
		"events":      events,
		"total_count": len(events),
	})
}

func eventsData(entries []ports.JournalEntry) []map[string]interface{} {
	events := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		event := map[string]interface{}{
			"id":          e.ID,
			"kind":        string(e.Kind),
			"phase":       string(e.Phase),
			"recorded_at": e.RecordedAt.Format(timeLayout),
		}
		if e.Detail != "" {
			event["detail"] = e.Detail
		}
		if e.GitBranch != "" {
			event["git_branch"] = e.GitBranch
		}
		events = append(events, event)
	}
	return events
}

// wholeNumber reports whether a JSON number has no fractional part and fits
// an int.
func wholeNumber(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32
}

func timerData(snap domain.Snapshot) map[string]interface{} {
	s := snap.Session
	return map[string]interface{}{
		"clock":             snap.Clock,
		"remaining_seconds": s.RemainingSeconds,
		"running":           s.Running,
		"status":            s.StatusLabel(),
		"phase":             string(s.Phase),
		"phase_label":       s.Phase.Label(),
		"progress":          snap.Progress,
	}
}

func snapshotData(snap domain.Snapshot) map[string]interface{} {
	s := snap.Session
	result := timerData(snap)
	result["session_id"] = s.ID
	result["focus_minutes"] = s.FocusDurationSeconds / 60
	result["rest_minutes"] = s.RestDurationSeconds / 60
	result["night_mode"] = s.NightMode

	tasks := make([]map[string]interface{}, len(s.Tasks))
	for i, t := range s.Tasks {
		tasks[i] = taskData(i, t)
	}
	result["tasks"] = tasks
	result["statistics"] = map[string]interface{}{
		"cycles_completed": s.Stats.CyclesCompleted,
		"minutes_studied":  s.Stats.MinutesStudied,
		"tasks_completed":  s.Stats.TasksCompleted,
	}
	return result
}

// taskData reports positions 1-based, matching toggle_task's index.
func taskData(idx int, t domain.Task) map[string]interface{} {
	return map[string]interface{}{
		"index":     idx + 1,
		"text":      t.Text,
		"completed": t.Completed,
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
