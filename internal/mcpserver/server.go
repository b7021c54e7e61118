// Package mcpserver exposes reminders and notes to LLM clients as MCP tools
// over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/deskmate/internal/apperr"
	"github.com/starford/deskmate/internal/dispatch"
	"github.com/starford/deskmate/internal/noteservice"
	"github.com/starford/deskmate/internal/reminder"
)

const helpURI = "deskmate://help"

// Server wraps the MCP server with deskmate tools.
type Server struct {
	mcp       *server.MCPServer
	reminders *reminder.Store
	notes     *noteservice.Service
}

// New creates an MCP server with every tool registered. Reminder firings
// are forwarded to connected clients as log notifications.
func New(reminders *reminder.Store, notes *noteservice.Service, version string) *Server {
	s := &Server{reminders: reminders, notes: notes}

	s.mcp = server.NewMCPServer(
		"deskmate",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithLogging(),
	)

	s.mcp.AddTool(mcp.NewTool("set_reminder",
		mcp.WithDescription("Schedule a reminder for a clock time today, or tomorrow if that time has passed. "+
			"Accepts 4pm, 4:30 pm, 16:00 and similar."),
		mcp.WithString("task", mcp.Required(), mcp.Description("What to be reminded about")),
		mcp.WithString("time", mcp.Required(), mcp.Description("Clock time, e.g. 4pm or 16:30")),
	), s.setReminder)

	s.mcp.AddTool(mcp.NewTool("list_reminders",
		mcp.WithDescription("List pending reminders in the order they were added."),
	), s.listReminders)

	s.mcp.AddTool(mcp.NewTool("cancel_reminder",
		mcp.WithDescription("Cancel the first reminder whose task matches, ignoring case."),
		mcp.WithString("task", mcp.Required(), mcp.Description("Task text of the reminder")),
	), s.cancelReminder)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note's body by its path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path as returned by search_notes or list_notes")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. The file name is derived from the title and the creation time."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note body")),
		mcp.WithString("type",
			mcp.Description("Note type; defaults to misc"),
			mcp.Enum("lectures", "assignments", "projects", "misc"),
		),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, newest first, optionally of one type."),
		mcp.WithString("type", mcp.Description("lectures, assignments, projects or misc; empty for all")),
	), s.listNotes)

	s.mcp.AddResource(
		mcp.NewResource(helpURI, "Help",
			mcp.WithResourceDescription("What the assistant understands, including supported time formats."),
			mcp.WithMIMEType("text/plain"),
		),
		s.readHelp,
	)

	reminders.Subscribe(s.forwardFired)
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) forwardFired(ev reminder.Event) {
	if ev.Kind != reminder.EventFired {
		return
	}
	s.mcp.SendNotificationToAllClients("notifications/message", map[string]any{
		"level":  "info",
		"logger": "deskmate.reminders",
		"data":   "Reminder: " + ev.Reminder.Task,
	})
}

func toolJSON(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) setReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := req.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	when, err := req.RequireString("time")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := s.reminders.Add(task, when)
	switch {
	case errors.Is(err, apperr.ErrInvalidTime):
		return mcp.NewToolResultError(fmt.Sprintf("could not understand the time %q; try 4pm, 2:30 pm or 16:00", when)), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("I'll remind you about %s at %s", r.Task, r.FireAt.Format("Mon 3:04 PM"))), nil
}

func (s *Server) listReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.reminders.List()
	if len(list) == 0 {
		return mcp.NewToolResultText("You don't have any reminders set."), nil
	}
	lines := make([]string, len(list))
	for i, r := range list {
		lines[i] = fmt.Sprintf("%s at %s", r.Task, r.FireAt.Format("Mon 3:04 PM"))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) cancelReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := req.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.reminders.Remove(task) {
		return mcp.NewToolResultError(fmt.Sprintf("no reminder for %q", task)), nil
	}
	return mcp.NewToolResultText("cancelled: " + task), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.notes.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(results), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := s.notes.GetContent(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError("not found: " + path), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.notes.CreateNote(ctx, title, content, req.GetString("type", "misc"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("created: " + path), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.notes.ListNotes(ctx, req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	paths := make([]string, len(items))
	for i, n := range items {
		paths[i] = n.Path
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readHelp(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      helpURI,
			MIMEType: "text/plain",
			Text:     dispatch.HelpText,
		},
	}, nil
}
