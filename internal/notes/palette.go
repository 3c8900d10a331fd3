package notes

import "strings"

// DefaultColor is the background of a note created without a color.
const DefaultColor = "#FFFFFF"

// Swatch is one selectable note background
type Swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var palette = []Swatch{
	{Name: "Default", Hex: "#FFFFFF"},
	{Name: "Red", Hex: "#F28B82"},
	{Name: "Orange", Hex: "#FBBC04"},
	{Name: "Yellow", Hex: "#FFF475"},
	{Name: "Green", Hex: "#CCFF90"},
	{Name: "Teal", Hex: "#A7FFEB"},
	{Name: "Blue", Hex: "#CBF0F8"},
	{Name: "Dark blue", Hex: "#AECBFA"},
	{Name: "Purple", Hex: "#D7AEFB"},
}

// Palette returns a copy of the selectable colors in display order.
func Palette() []Swatch {
	out := make([]Swatch, len(palette))
	copy(out, palette)
	return out
}

// NormalizeColor maps a user supplied color onto its palette entry.
// Empty input yields DefaultColor.
func NormalizeColor(color string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(color))
	if c == "" {
		return DefaultColor, nil
	}
	for _, s := range palette {
		if s.Hex == c {
			return s.Hex, nil
		}
	}
	return "", ErrInvalidColor
}
