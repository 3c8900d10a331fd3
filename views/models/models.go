package models

import "time"

// NoteView represents a note for template rendering
type NoteView struct {
	ID          string
	Title       string
	Content     string
	HTML        string // rendered markdown of Content
	Color       string
	UpdatedAt   time.Time
	IsChecklist bool
	Items       []ItemView
}

// ItemView represents a checklist item for template rendering
type ItemView struct {
	ID        string
	Text      string
	Completed bool
}

// SwatchView is a palette color
type SwatchView struct {
	Name string
	Hex  string
}

// BoardView carries everything the notes page needs
type BoardView struct {
	Greeting  string // empty for anonymous sessions
	OpenItems int
	Notes     []NoteView
	Palette   []SwatchView
}
