package notes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"keepkoro/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	board *Board
	mux   *http.ServeMux
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	board := newTestBoard()
	h := NewHandler(NewService(board), slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	h.Register(mux)
	return &testApp{board: board, mux: mux}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	session.Middleware(a.mux).ServeHTTP(rec, req)
	return rec
}

func (a *testApp) api(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *testApp) form(path string, values url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return a.do(req)
}

func decodeNote(t *testing.T, rec *httptest.ResponseRecorder) Note {
	t.Helper()
	var n Note
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&n))
	return n
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

// --- JSON API ---

func TestAPI_CreateAndList(t *testing.T) {
	app := newTestApp(t)

	rec := app.api(http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = app.api(http.MethodPost, "/api/notes", `{"title":"Work","color":"#aecbfa","isChecklist":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeNote(t, rec)
	assert.Equal(t, "Work", created.Title)
	assert.Equal(t, "#AECBFA", created.Color)
	assert.True(t, created.IsChecklist)

	rec = app.api(http.MethodPost, "/api/notes", `{"content":"Life"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.api(http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Note
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "Life", list[0].Content)
	assert.Equal(t, created.ID, list[1].ID)
}

func TestAPI_CreateRejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"invalid json", `{`, "invalid JSON body"},
		{"empty note", `{"title":" ","content":""}`, ErrEmptyNote.Error()},
		{"bad color", `{"title":"x","color":"#123456"}`, ErrInvalidColor.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			rec := app.api(http.MethodPost, "/api/notes", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantErr, errorBody(t, rec))
			assert.Empty(t, app.board.List())
		})
	}
}

func TestAPI_GetAndDelete(t *testing.T) {
	app := newTestApp(t)
	note, err := app.board.Add(NewNote{Title: "doomed"})
	require.NoError(t, err)

	rec := app.api(http.MethodGet, "/api/notes/"+note.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, note.ID, decodeNote(t, rec).ID)

	rec = app.api(http.MethodDelete, "/api/notes/"+note.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.api(http.MethodDelete, "/api/notes/"+note.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrNoteNotFound.Error(), errorBody(t, rec))

	rec = app.api(http.MethodGet, "/api/notes/"+note.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_SetColor(t *testing.T) {
	app := newTestApp(t)
	note, _ := app.board.Add(NewNote{Title: "paint me"})

	rec := app.api(http.MethodPut, "/api/notes/"+note.ID+"/color", `{"color":"#FFF475"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#FFF475", decodeNote(t, rec).Color)

	rec = app.api(http.MethodPut, "/api/notes/"+note.ID+"/color", `{"color":"chartreuse"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.api(http.MethodPut, "/api/notes/missing/color", `{"color":"#FFF475"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ChecklistItems(t *testing.T) {
	app := newTestApp(t)
	note, _ := app.board.Add(NewNote{Title: "todo", IsChecklist: true})

	rec := app.api(http.MethodPost, "/api/notes/"+note.ID+"/items", `{"text":"Reply to Charles email"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	updated := decodeNote(t, rec)
	require.Len(t, updated.Items, 1)
	item := updated.Items[0]
	assert.False(t, item.Completed)

	rec = app.api(http.MethodPost, "/api/notes/"+note.ID+"/items", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrEmptyItem.Error(), errorBody(t, rec))

	rec = app.api(http.MethodPost, "/api/notes/"+note.ID+"/items/"+item.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeNote(t, rec).Items[0].Completed)

	rec = app.api(http.MethodPost, "/api/notes/"+note.ID+"/items/nope/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrItemNotFound.Error(), errorBody(t, rec))
}

func TestAPI_PaletteAndStats(t *testing.T) {
	app := newTestApp(t)
	note, _ := app.board.Add(NewNote{Title: "todo", IsChecklist: true})
	_, _ = app.board.AddItem(note.ID, "one")

	rec := app.api(http.MethodGet, "/api/palette", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var swatches []Swatch
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&swatches))
	assert.Len(t, swatches, 9)
	assert.Equal(t, DefaultColor, swatches[0].Hex)

	rec = app.api(http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notes":1,"items":1,"openItems":1}`, rec.Body.String())
}

// --- Web UI ---

func TestWeb_HomePage(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Simple Notes")
	assert.Contains(t, rec.Body.String(), `href="/notes"`)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWeb_NotesPage(t *testing.T) {
	app := newTestApp(t)
	_, _ = app.board.Add(NewNote{Title: "Groceries", Content: "**milk**"})

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "Nicolas"})
	rec := app.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "KeepKoro")
	assert.Contains(t, body, "Howdy Nicolas.")
	assert.Contains(t, body, "Groceries")
	assert.Contains(t, body, "<strong>milk</strong>")
	assert.Contains(t, body, "Jun 17, 2024")
}

func TestWeb_SubmitNote(t *testing.T) {
	t.Run("plain post redirects", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.form("/notes", url.Values{
			"title":     {"Work"},
			"content":   {""},
			"color":     {"#CCFF90"},
			"checklist": {"true"},
		}, false)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/notes", rec.Header().Get("Location"))
		list := app.board.List()
		require.Len(t, list, 1)
		assert.Equal(t, "#CCFF90", list[0].Color)
		assert.True(t, list[0].IsChecklist)
	})

	t.Run("htmx post gets the board fragment", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.form("/notes", url.Values{"title": {"Life"}}, true)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, `<main id="board"`))
		assert.NotContains(t, body, "<html")
		assert.Contains(t, body, "Life")
	})

	t.Run("empty note is silently ignored", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.form("/notes", url.Values{"title": {"  "}, "content": {""}}, false)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Empty(t, app.board.List())
	})
}

func TestWeb_NoteActions(t *testing.T) {
	app := newTestApp(t)
	note, _ := app.board.Add(NewNote{Title: "todo", IsChecklist: true})
	keep, _ := app.board.Add(NewNote{Title: "keep"})

	rec := app.form("/notes/"+note.ID+"/items", url.Values{"text": {"Solar panel appt"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Solar panel appt")
	assert.Contains(t, rec.Body.String(), "You have 1 ongoing task")

	got, _ := app.board.Get(note.ID)
	require.Len(t, got.Items, 1)

	rec = app.form("/notes/"+note.ID+"/items/"+got.Items[0].ID+"/toggle", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have no ongoing tasks")

	rec = app.form("/notes/"+note.ID+"/color", url.Values{"color": {"#D7AEFB"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	got, _ = app.board.Get(note.ID)
	assert.Equal(t, "#D7AEFB", got.Color)

	rec = app.form("/notes/"+note.ID+"/delete", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	list := app.board.List()
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	rec = app.form("/notes/"+note.ID+"/delete", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, app.board.List(), 1)
}

func TestWeb_OngoingTasksCountChecklistsOnly(t *testing.T) {
	app := newTestApp(t)
	list, _ := app.board.Add(NewNote{Title: "todo", IsChecklist: true})
	_, _ = app.board.AddItem(list.ID, "visible")
	text, _ := app.board.Add(NewNote{Title: "prose"})
	_, _ = app.board.AddItem(text.ID, "hidden")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/notes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "You have 1 ongoing task<")
	assert.NotContains(t, body, "hidden")
}

func TestWeb_NoteContentKeepsTypedMarkup(t *testing.T) {
	app := newTestApp(t)
	_, _ = app.board.Add(NewNote{Title: "layout", Content: "use <div> tags"})

	rec := app.do(httptest.NewRequest(http.MethodGet, "/notes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "use &lt;div&gt; tags")
}
