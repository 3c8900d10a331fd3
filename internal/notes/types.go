package notes

import (
	"time"
)

// Note is a single card on the board, holding free text or a checklist.
type Note struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"` // markdown
	Items       []NoteItem `json:"items"`
	Color       string     `json:"color"`
	UpdatedAt   time.Time  `json:"updated_at"`
	IsChecklist bool       `json:"isChecklist"`
}

// NoteItem is a checklist entry owned by its parent note
type NoteItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NewNote is the input for adding a note
type NewNote struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Color       string `json:"color"`
	IsChecklist bool   `json:"isChecklist"`
}

// ColorInput is the input for recoloring a note
type ColorInput struct {
	Color string `json:"color"`
}

// ItemInput is the input for appending a checklist item
type ItemInput struct {
	Text string `json:"text"`
}

// Stats summarizes the board
type Stats struct {
	Notes     int `json:"notes"`
	Items     int `json:"items"`
	OpenItems int `json:"openItems"`
}

// OpenItems counts checklist items not yet completed.
func (n Note) OpenItems() int {
	open := 0
	for _, it := range n.Items {
		if !it.Completed {
			open++
		}
	}
	return open
}
