package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"keepkoro/internal/notes"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult, dst any) {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), dst))
}

func TestNewServer(t *testing.T) {
	s := NewServer(notes.NewService(notes.NewBoard()))
	require.NotNil(t, s)
}

func TestTools_NoteLifecycle(t *testing.T) {
	svc := notes.NewService(notes.NewBoard())

	var created NoteResult
	decodeResult(t, call(t, handleAddNote(svc), map[string]any{
		"title":     "Work",
		"color":     "#FBBC04",
		"checklist": true,
	}), &created)
	assert.Equal(t, "Work", created.Title)
	assert.Equal(t, "#FBBC04", created.Color)
	assert.True(t, created.IsChecklist)

	var withItem NoteResult
	decodeResult(t, call(t, handleAddItem(svc), map[string]any{
		"id":   created.ID,
		"text": "Address comments in figma",
	}), &withItem)
	require.Len(t, withItem.Items, 1)

	var toggled NoteResult
	decodeResult(t, call(t, handleToggleItem(svc), map[string]any{
		"id":      created.ID,
		"item_id": withItem.Items[0].ID,
	}), &toggled)
	assert.True(t, toggled.Items[0].Completed)

	var recolored NoteResult
	decodeResult(t, call(t, handleSetColor(svc), map[string]any{
		"id":    created.ID,
		"color": "#a7ffeb",
	}), &recolored)
	assert.Equal(t, "#A7FFEB", recolored.Color)

	var fetched NoteResult
	decodeResult(t, call(t, handleGetNote(svc), map[string]any{"id": created.ID}), &fetched)
	assert.Equal(t, recolored, fetched)

	var list []NoteResult
	decodeResult(t, call(t, handleListNotes(svc), nil), &list)
	require.Len(t, list, 1)

	res := call(t, handleDeleteNote(svc), map[string]any{"id": created.ID})
	assert.False(t, res.IsError)
	assert.Empty(t, svc.List(context.Background()))
}

func TestTools_Errors(t *testing.T) {
	svc := notes.NewService(notes.NewBoard())

	tests := []struct {
		name string
		h    server.ToolHandlerFunc
		args map[string]any
	}{
		{"empty note", handleAddNote(svc), map[string]any{"title": "", "content": " "}},
		{"bad color", handleAddNote(svc), map[string]any{"title": "x", "color": "#010101"}},
		{"missing id", handleGetNote(svc), map[string]any{}},
		{"unknown note", handleGetNote(svc), map[string]any{"id": "nope"}},
		{"delete unknown", handleDeleteNote(svc), map[string]any{"id": "nope"}},
		{"item on unknown note", handleAddItem(svc), map[string]any{"id": "nope", "text": "x"}},
		{"missing item id", handleToggleItem(svc), map[string]any{"id": "nope"}},
		{"missing color", handleSetColor(svc), map[string]any{"id": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, tt.h, tt.args)
			assert.True(t, res.IsError)
		})
	}
	assert.Empty(t, svc.List(context.Background()))
}

func TestTools_NoteFieldsMatchAPI(t *testing.T) {
	svc := notes.NewService(notes.NewBoard())
	note, err := svc.Create(context.Background(), notes.NewNote{Title: "Life"})
	require.NoError(t, err)

	apiJSON, err := json.Marshal(note)
	require.NoError(t, err)
	var apiFields map[string]any
	require.NoError(t, json.Unmarshal(apiJSON, &apiFields))

	var toolFields map[string]any
	decodeResult(t, call(t, handleGetNote(svc), map[string]any{"id": note.ID}), &toolFields)

	assert.Contains(t, toolFields, "updated_at")
	assert.NotContains(t, toolFields, "updatedAt")
	for key := range toolFields {
		assert.Contains(t, apiFields, key)
	}
}

func TestTools_ListPalette(t *testing.T) {
	var swatches []notes.Swatch
	decodeResult(t, call(t, handleListPalette(), nil), &swatches)
	assert.Equal(t, notes.Palette(), swatches)
}
