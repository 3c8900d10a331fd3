package notes

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrItemNotFound = errors.New("checklist item not found")
	ErrEmptyNote    = errors.New("title or content is required")
	ErrEmptyItem    = errors.New("item text is required")
	ErrInvalidColor = errors.New("color is not in the palette")
)

// Board is the in-memory note collection. Every mutation swaps in a
// freshly built slice, so slices handed out by List are never written to.
type Board struct {
	mu    sync.RWMutex
	notes []Note

	now   func() time.Time
	newID func() string
}

// BoardOption configures a Board
type BoardOption func(*Board)

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) { b.now = now }
}

// WithIDGenerator overrides how note and item IDs are minted.
func WithIDGenerator(gen func() string) BoardOption {
	return func(b *Board) { b.newID = gen }
}

func NewBoard(opts ...BoardOption) *Board {
	b := &Board{
		notes: []Note{},
		now:   time.Now,
		newID: newObjectID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ObjectIDs are timestamp-prefixed and carry a process-wide counter, so
// back-to-back creations in the same second still get distinct IDs.
func newObjectID() string {
	return primitive.NewObjectID().Hex()
}

// Add prepends a new note. A note with neither title nor content is rejected.
func (b *Board) Add(in NewNote) (Note, error) {
	if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.Content) == "" {
		return Note{}, ErrEmptyNote
	}
	color, err := NormalizeColor(in.Color)
	if err != nil {
		return Note{}, err
	}

	note := Note{
		ID:          b.newID(),
		Title:       in.Title,
		Content:     in.Content,
		Items:       []NoteItem{},
		Color:       color,
		UpdatedAt:   b.now(),
		IsChecklist: in.IsChecklist,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	next := make([]Note, 0, len(b.notes)+1)
	next = append(next, note)
	next = append(next, b.notes...)
	b.notes = next
	return note, nil
}

// Delete removes a note by ID
func (b *Board) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return ErrNoteNotFound
	}

	next := make([]Note, 0, len(b.notes)-1)
	next = append(next, b.notes[:idx]...)
	next = append(next, b.notes[idx+1:]...)
	b.notes = next
	return nil
}

// SetColor changes the background of one note.
func (b *Board) SetColor(id, color string) (Note, error) {
	if strings.TrimSpace(color) == "" {
		return Note{}, ErrInvalidColor
	}
	c, err := NormalizeColor(color)
	if err != nil {
		return Note{}, err
	}
	return b.replace(id, func(n Note) (Note, error) {
		n.Color = c
		return n, nil
	})
}

// ToggleItem flips the completed flag of one checklist item.
func (b *Board) ToggleItem(noteID, itemID string) (Note, error) {
	return b.replace(noteID, func(n Note) (Note, error) {
		items := make([]NoteItem, len(n.Items))
		copy(items, n.Items)
		for i := range items {
			if items[i].ID == itemID {
				items[i].Completed = !items[i].Completed
				n.Items = items
				return n, nil
			}
		}
		return Note{}, ErrItemNotFound
	})
}

// AddItem appends a checklist item to one note. Blank text is rejected.
func (b *Board) AddItem(noteID, text string) (Note, error) {
	if strings.TrimSpace(text) == "" {
		return Note{}, ErrEmptyItem
	}
	item := NoteItem{ID: b.newID(), Text: text}
	return b.replace(noteID, func(n Note) (Note, error) {
		items := make([]NoteItem, 0, len(n.Items)+1)
		items = append(items, n.Items...)
		n.Items = append(items, item)
		return n, nil
	})
}

// List returns the notes, most recent first.
func (b *Board) List() []Note {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.notes
}

// Get retrieves a note by its ID
func (b *Board) Get(id string) (Note, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return Note{}, ErrNoteNotFound
	}
	return b.notes[idx], nil
}

// Stats counts notes and checklist items
func (b *Board) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Stats{Notes: len(b.notes)}
	for _, n := range b.notes {
		s.Items += len(n.Items)
		s.OpenItems += n.OpenItems()
	}
	return s
}

// replace swaps the note with the given ID for fn's result. The board is
// left untouched when fn fails.
func (b *Board) replace(id string, fn func(Note) (Note, error)) (Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return Note{}, ErrNoteNotFound
	}

	updated, err := fn(b.notes[idx])
	if err != nil {
		return Note{}, err
	}

	next := make([]Note, len(b.notes))
	copy(next, b.notes)
	next[idx] = updated
	b.notes = next
	return updated, nil
}

func (b *Board) indexOf(id string) int {
	for i, n := range b.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
