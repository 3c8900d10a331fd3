package notes

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 17, 9, 0, 0, 0, time.UTC)

func newTestBoard() *Board {
	n := 0
	return NewBoard(
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return "id" + strconv.Itoa(n)
		}),
	)
}

func TestBoard_Add(t *testing.T) {
	t.Run("prepends newest first", func(t *testing.T) {
		b := newTestBoard()

		first, err := b.Add(NewNote{Title: "first"})
		require.NoError(t, err)
		second, err := b.Add(NewNote{Content: "second"})
		require.NoError(t, err)

		list := b.List()
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
	})

	t.Run("fills defaults", func(t *testing.T) {
		b := newTestBoard()

		note, err := b.Add(NewNote{Title: "groceries", IsChecklist: true})
		require.NoError(t, err)

		assert.Equal(t, "id1", note.ID)
		assert.Equal(t, DefaultColor, note.Color)
		assert.Equal(t, fixedNow, note.UpdatedAt)
		assert.True(t, note.IsChecklist)
		assert.NotNil(t, note.Items)
		assert.Empty(t, note.Items)
	})

	t.Run("keeps text as typed", func(t *testing.T) {
		b := newTestBoard()

		note, err := b.Add(NewNote{Title: "  padded ", Content: "\n body"})
		require.NoError(t, err)
		assert.Equal(t, "  padded ", note.Title)
		assert.Equal(t, "\n body", note.Content)
	})

	t.Run("rejects blank title and content", func(t *testing.T) {
		b := newTestBoard()
		_, err := b.Add(NewNote{Title: "keep"})
		require.NoError(t, err)
		before := b.List()

		_, err = b.Add(NewNote{Title: "   ", Content: "\t\n"})
		assert.ErrorIs(t, err, ErrEmptyNote)
		assert.Equal(t, before, b.List())
	})

	t.Run("normalizes color", func(t *testing.T) {
		b := newTestBoard()

		note, err := b.Add(NewNote{Title: "x", Color: "#f28b82"})
		require.NoError(t, err)
		assert.Equal(t, "#F28B82", note.Color)
	})

	t.Run("rejects off-palette color", func(t *testing.T) {
		b := newTestBoard()

		_, err := b.Add(NewNote{Title: "x", Color: "#000000"})
		assert.ErrorIs(t, err, ErrInvalidColor)
		assert.Empty(t, b.List())
	})
}

func TestBoard_Delete(t *testing.T) {
	b := newTestBoard()
	a, _ := b.Add(NewNote{Title: "a"})
	m, _ := b.Add(NewNote{Title: "m"})
	z, _ := b.Add(NewNote{Title: "z"})

	require.NoError(t, b.Delete(m.ID))

	list := b.List()
	require.Len(t, list, 2)
	assert.Equal(t, z.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	assert.ErrorIs(t, b.Delete(m.ID), ErrNoteNotFound)
	assert.Len(t, b.List(), 2)
}

func TestBoard_SetColor(t *testing.T) {
	b := newTestBoard()
	target, _ := b.Add(NewNote{Title: "target"})
	other, _ := b.Add(NewNote{Title: "other"})

	updated, err := b.SetColor(target.ID, "#cbf0f8")
	require.NoError(t, err)
	assert.Equal(t, "#CBF0F8", updated.Color)

	want := target
	want.Color = "#CBF0F8"
	got, err := b.Get(target.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	untouched, err := b.Get(other.ID)
	require.NoError(t, err)
	assert.Equal(t, other, untouched)

	_, err = b.SetColor(target.ID, "")
	assert.ErrorIs(t, err, ErrInvalidColor)
	_, err = b.SetColor(target.ID, "red")
	assert.ErrorIs(t, err, ErrInvalidColor)
	_, err = b.SetColor("missing", "#FFFFFF")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestBoard_AddItem(t *testing.T) {
	b := newTestBoard()
	list, _ := b.Add(NewNote{Title: "todo", IsChecklist: true})
	other, _ := b.Add(NewNote{Title: "other", IsChecklist: true})

	updated, err := b.AddItem(list.ID, "milk")
	require.NoError(t, err)
	updated, err = b.AddItem(list.ID, "eggs")
	require.NoError(t, err)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, "milk", updated.Items[0].Text)
	assert.Equal(t, "eggs", updated.Items[1].Text)
	assert.False(t, updated.Items[1].Completed)
	assert.NotEqual(t, updated.Items[0].ID, updated.Items[1].ID)

	got, _ := b.Get(other.ID)
	assert.Empty(t, got.Items)

	_, err = b.AddItem(list.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyItem)
	got, _ = b.Get(list.ID)
	assert.Len(t, got.Items, 2)

	_, err = b.AddItem("missing", "bread")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestBoard_AddItem_FreeTextNote(t *testing.T) {
	b := newTestBoard()
	note, _ := b.Add(NewNote{Content: "plain"})

	updated, err := b.AddItem(note.ID, "hidden")
	require.NoError(t, err)
	assert.False(t, updated.IsChecklist)
	assert.Len(t, updated.Items, 1)
}

func TestBoard_ToggleItem(t *testing.T) {
	b := newTestBoard()
	note, _ := b.Add(NewNote{Title: "todo", IsChecklist: true})
	note, _ = b.AddItem(note.ID, "one")
	note, _ = b.AddItem(note.ID, "two")
	first, second := note.Items[0], note.Items[1]

	toggled, err := b.ToggleItem(note.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Items[1].Completed)
	assert.Equal(t, first, toggled.Items[0])

	toggled, err = b.ToggleItem(note.ID, second.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Items[1].Completed)

	_, err = b.ToggleItem(note.ID, "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = b.ToggleItem("nope", first.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestBoard_SnapshotsAreStable(t *testing.T) {
	b := newTestBoard()
	note, _ := b.Add(NewNote{Title: "todo", IsChecklist: true})
	note, _ = b.AddItem(note.ID, "one")

	snapshot := b.List()

	_, err := b.ToggleItem(note.ID, note.Items[0].ID)
	require.NoError(t, err)
	_, err = b.SetColor(note.ID, "#D7AEFB")
	require.NoError(t, err)
	_, err = b.Add(NewNote{Title: "later"})
	require.NoError(t, err)

	require.Len(t, snapshot, 1)
	assert.False(t, snapshot[0].Items[0].Completed)
	assert.Equal(t, DefaultColor, snapshot[0].Color)
}

func TestBoard_Stats(t *testing.T) {
	b := newTestBoard()
	note, _ := b.Add(NewNote{Title: "todo", IsChecklist: true})
	note, _ = b.AddItem(note.ID, "one")
	note, _ = b.AddItem(note.ID, "two")
	_, _ = b.ToggleItem(note.ID, note.Items[0].ID)
	_, _ = b.Add(NewNote{Content: "text"})

	assert.Equal(t, Stats{Notes: 2, Items: 2, OpenItems: 1}, b.Stats())
}

func TestBoard_DefaultIDsAreUnique(t *testing.T) {
	b := NewBoard()
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		note, err := b.Add(NewNote{Title: "burst"})
		require.NoError(t, err)
		require.False(t, seen[note.ID], "duplicate id %s", note.ID)
		seen[note.ID] = true
	}
}
