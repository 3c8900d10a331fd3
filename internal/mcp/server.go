package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"keepkoro/internal/notes"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with tools for board operations
func NewServer(svc *notes.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"KeepKoro",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Tool: list_notes - Everything on the board
	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List every note on the board, newest first, including checklist items."),
		),
		handleListNotes(svc),
	)

	// Tool: get_note - One note by ID
	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a specific note by its ID."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
		),
		handleGetNote(svc),
	)

	// Tool: add_note - Create a note at the top of the board
	s.AddTool(
		mcp.NewTool("add_note",
			mcp.WithDescription("Add a note to the top of the board. A title or content is required."),
			mcp.WithString("title",
				mcp.Description("Note title"),
			),
			mcp.WithString("content",
				mcp.Description("Note body (markdown)"),
			),
			mcp.WithString("color",
				mcp.Description("Background color from the palette (default #FFFFFF)"),
				mcp.Enum(paletteHexes()...),
			),
			mcp.WithBoolean("checklist",
				mcp.Description("Render the note as a checklist instead of free text"),
			),
		),
		handleAddNote(svc),
	)

	// Tool: delete_note
	s.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete a note by its ID."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
		),
		handleDeleteNote(svc),
	)

	// Tool: set_note_color
	s.AddTool(
		mcp.NewTool("set_note_color",
			mcp.WithDescription("Change the background color of a note."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
			mcp.WithString("color",
				mcp.Required(),
				mcp.Description("Background color from the palette"),
				mcp.Enum(paletteHexes()...),
			),
		),
		handleSetColor(svc),
	)

	// Tool: add_checklist_item
	s.AddTool(
		mcp.NewTool("add_checklist_item",
			mcp.WithDescription("Append an item to a note's checklist."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Item text"),
			),
		),
		handleAddItem(svc),
	)

	// Tool: toggle_checklist_item
	s.AddTool(
		mcp.NewTool("toggle_checklist_item",
			mcp.WithDescription("Mark a checklist item done, or not done if it already is."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
			mcp.WithString("item_id",
				mcp.Required(),
				mcp.Description("The checklist item ID"),
			),
		),
		handleToggleItem(svc),
	)

	// Tool: list_palette
	s.AddTool(
		mcp.NewTool("list_palette",
			mcp.WithDescription("List the colors a note can take."),
		),
		handleListPalette(),
	)

	return s
}

// NoteResult represents a note in tool responses
type NoteResult struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Color       string       `json:"color"`
	IsChecklist bool         `json:"isChecklist"`
	Items       []ItemResult `json:"items"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ItemResult represents a checklist item in tool responses
type ItemResult struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func handleListNotes(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(notesToResults(svc.List(ctx)))
	}
}

func handleGetNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.GetByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}

		return jsonResult(noteToResult(*note))
	}
}

func handleAddNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		note, err := svc.Create(ctx, notes.NewNote{
			Title:       req.GetString("title", ""),
			Content:     req.GetString("content", ""),
			Color:       req.GetString("color", ""),
			IsChecklist: req.GetBool("checklist", false),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to add note: %v", err)), nil
		}

		return jsonResult(noteToResult(*note))
	}
}

func handleDeleteNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		if err := svc.Delete(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete note: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("deleted note %s", id)), nil
	}
}

func handleSetColor(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		color, err := req.RequireString("color")
		if err != nil {
			return mcp.NewToolResultError("color is required"), nil
		}

		note, err := svc.SetColor(ctx, id, color)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to set color: %v", err)), nil
		}

		return jsonResult(noteToResult(*note))
	}
}

func handleAddItem(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError("text is required"), nil
		}

		note, err := svc.AddItem(ctx, id, text)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to add item: %v", err)), nil
		}

		return jsonResult(noteToResult(*note))
	}
}

func handleToggleItem(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		itemID, err := req.RequireString("item_id")
		if err != nil {
			return mcp.NewToolResultError("item_id is required"), nil
		}

		note, err := svc.ToggleItem(ctx, id, itemID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to toggle item: %v", err)), nil
		}

		return jsonResult(noteToResult(*note))
	}
}

func handleListPalette() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(notes.Palette())
	}
}

// Helper functions

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func noteToResult(note notes.Note) NoteResult {
	items := make([]ItemResult, len(note.Items))
	for i, it := range note.Items {
		items[i] = ItemResult{ID: it.ID, Text: it.Text, Completed: it.Completed}
	}
	return NoteResult{
		ID:          note.ID,
		Title:       note.Title,
		Content:     note.Content,
		Color:       note.Color,
		IsChecklist: note.IsChecklist,
		Items:       items,
		UpdatedAt:   note.UpdatedAt,
	}
}

func notesToResults(noteList []notes.Note) []NoteResult {
	results := make([]NoteResult, len(noteList))
	for i, note := range noteList {
		results[i] = noteToResult(note)
	}
	return results
}

func paletteHexes() []string {
	swatches := notes.Palette()
	hexes := make([]string, len(swatches))
	for i, s := range swatches {
		hexes[i] = s.Hex
	}
	return hexes
}
