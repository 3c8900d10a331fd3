package notes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"keepkoro/internal/session"
	"keepkoro/views/components"
	"keepkoro/views/models"
	"keepkoro/views/pages"

	"github.com/a-h/templ"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the web UI and the JSON API on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	// REST API endpoints
	mux.HandleFunc("GET /api/notes", h.ListNotes)
	mux.HandleFunc("POST /api/notes", h.CreateNote)
	mux.HandleFunc("GET /api/notes/{id}", h.GetNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.DeleteNote)
	mux.HandleFunc("PUT /api/notes/{id}/color", h.SetColor)
	mux.HandleFunc("POST /api/notes/{id}/items", h.AddItem)
	mux.HandleFunc("POST /api/notes/{id}/items/{itemID}/toggle", h.ToggleItem)
	mux.HandleFunc("GET /api/palette", h.ListPalette)
	mux.HandleFunc("GET /api/stats", h.GetStats)

	// HTMX Web UI
	mux.HandleFunc("GET /", h.HomePage)
	mux.HandleFunc("GET /notes", h.NotesPage)
	mux.HandleFunc("POST /notes", h.SubmitNote)
	mux.HandleFunc("POST /notes/{id}/delete", h.SubmitDelete)
	mux.HandleFunc("POST /notes/{id}/color", h.SubmitColor)
	mux.HandleFunc("POST /notes/{id}/items", h.SubmitItem)
	mux.HandleFunc("POST /notes/{id}/items/{itemID}/toggle", h.SubmitToggle)
}

// --- REST API Handlers ---

// ListNotes handles GET /api/notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.svc.List(r.Context()), http.StatusOK)
}

// CreateNote handles POST /api/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input NewNote
	if !h.decode(w, r, &input) {
		return
	}

	note, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.apiError(w, "create note", err)
		return
	}

	h.jsonResponse(w, note, http.StatusCreated)
}

// GetNote handles GET /api/notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.apiError(w, "get note", err)
		return
	}

	h.jsonResponse(w, note, http.StatusOK)
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.apiError(w, "delete note", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetColor handles PUT /api/notes/{id}/color
func (h *Handler) SetColor(w http.ResponseWriter, r *http.Request) {
	var input ColorInput
	if !h.decode(w, r, &input) {
		return
	}

	note, err := h.svc.SetColor(r.Context(), r.PathValue("id"), input.Color)
	if err != nil {
		h.apiError(w, "set color", err)
		return
	}

	h.jsonResponse(w, note, http.StatusOK)
}

// AddItem handles POST /api/notes/{id}/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var input ItemInput
	if !h.decode(w, r, &input) {
		return
	}

	note, err := h.svc.AddItem(r.Context(), r.PathValue("id"), input.Text)
	if err != nil {
		h.apiError(w, "add item", err)
		return
	}

	h.jsonResponse(w, note, http.StatusCreated)
}

// ToggleItem handles POST /api/notes/{id}/items/{itemID}/toggle
func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.ToggleItem(r.Context(), r.PathValue("id"), r.PathValue("itemID"))
	if err != nil {
		h.apiError(w, "toggle item", err)
		return
	}

	h.jsonResponse(w, note, http.StatusOK)
}

// ListPalette handles GET /api/palette
func (h *Handler) ListPalette(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, Palette(), http.StatusOK)
}

// GetStats handles GET /api/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.svc.Stats(r.Context()), http.StatusOK)
}

// --- Helper methods ---

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// apiError maps board errors onto HTTP statuses.
func (h *Handler) apiError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNoteNotFound):
		h.jsonError(w, ErrNoteNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, ErrItemNotFound):
		h.jsonError(w, ErrItemNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEmptyNote), errors.Is(err, ErrEmptyItem), errors.Is(err, ErrInvalidColor):
		h.log.Debug("rejected "+op, "error", err)
		h.jsonError(w, rootMessage(err), http.StatusBadRequest)
	default:
		h.log.Error("failed to "+op, "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{ErrEmptyNote, ErrEmptyItem, ErrInvalidColor} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// --- View model converters ---

func (h *Handler) notesToViews(notes []Note) []models.NoteView {
	views := make([]models.NoteView, len(notes))
	for i, note := range notes {
		items := make([]models.ItemView, len(note.Items))
		for j, it := range note.Items {
			items[j] = models.ItemView{ID: it.ID, Text: it.Text, Completed: it.Completed}
		}
		views[i] = models.NoteView{
			ID:          note.ID,
			Title:       note.Title,
			Content:     note.Content,
			Color:       note.Color,
			UpdatedAt:   note.UpdatedAt,
			IsChecklist: note.IsChecklist,
			Items:       items,
		}
		if !note.IsChecklist {
			views[i].HTML = h.svc.RenderMarkdown(note.Content)
		}
	}
	return views
}

func paletteToViews(swatches []Swatch) []models.SwatchView {
	views := make([]models.SwatchView, len(swatches))
	for i, s := range swatches {
		views[i] = models.SwatchView{Name: s.Name, Hex: s.Hex}
	}
	return views
}

func (h *Handler) boardView(r *http.Request) models.BoardView {
	list := h.svc.List(r.Context())
	open := 0
	for _, n := range list {
		if n.IsChecklist {
			open += n.OpenItems()
		}
	}
	return models.BoardView{
		Greeting:  session.FromContext(r.Context()).Name,
		OpenItems: open,
		Notes:     h.notesToViews(list),
		Palette:   paletteToViews(Palette()),
	}
}

// --- HTMX Web Handlers ---

// HomePage handles GET /
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	h.render(w, r, "landing page", pages.LandingPage())
}

// NotesPage handles GET /notes
func (h *Handler) NotesPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "notes page", pages.NotesPage(h.boardView(r)))
}

// SubmitNote handles POST /notes
func (h *Handler) SubmitNote(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	checklist, _ := strconv.ParseBool(r.PostFormValue("checklist"))
	_, err := h.svc.Create(r.Context(), NewNote{
		Title:       r.PostFormValue("title"),
		Content:     r.PostFormValue("content"),
		Color:       r.PostFormValue("color"),
		IsChecklist: checklist || r.PostFormValue("checklist") == "on",
	})
	h.afterSubmit(w, r, "add note", err)
}

// SubmitDelete handles POST /notes/{id}/delete
func (h *Handler) SubmitDelete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), r.PathValue("id"))
	h.afterSubmit(w, r, "delete note", err)
}

// SubmitColor handles POST /notes/{id}/color
func (h *Handler) SubmitColor(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	_, err := h.svc.SetColor(r.Context(), r.PathValue("id"), r.PostFormValue("color"))
	h.afterSubmit(w, r, "set color", err)
}

// SubmitItem handles POST /notes/{id}/items
func (h *Handler) SubmitItem(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	_, err := h.svc.AddItem(r.Context(), r.PathValue("id"), r.PostFormValue("text"))
	h.afterSubmit(w, r, "add item", err)
}

// SubmitToggle handles POST /notes/{id}/items/{itemID}/toggle
func (h *Handler) SubmitToggle(w http.ResponseWriter, r *http.Request) {
	_, err := h.svc.ToggleItem(r.Context(), r.PathValue("id"), r.PathValue("itemID"))
	h.afterSubmit(w, r, "toggle item", err)
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

// afterSubmit answers a form post. Rejected actions are not surfaced to the
// user: the board is shown again exactly as it is.
func (h *Handler) afterSubmit(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err != nil {
		h.log.Debug("ignored "+op, "error", err)
	}

	if r.Header.Get("HX-Request") == "true" {
		h.render(w, r, "board fragment", components.Board(h.boardView(r)))
		return
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, what string, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.log.Error("failed to render "+what, "error", err)
	}
}
