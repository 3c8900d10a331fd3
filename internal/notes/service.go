package notes

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type Service struct {
	board *Board
	md    goldmark.Markdown
}

func NewService(board *Board) *Service {
	return &Service{
		board: board,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				renderer.WithNodeRenderers(util.Prioritized(literalHTMLRenderer{}, 100)),
			),
		),
	}
}

// Create adds a note to the top of the board
func (s *Service) Create(ctx context.Context, input NewNote) (*Note, error) {
	note, err := s.board.Add(input)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// GetByID retrieves a note by ID
func (s *Service) GetByID(ctx context.Context, id string) (*Note, error) {
	note, err := s.board.Get(id)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// List returns every note, newest first
func (s *Service) List(ctx context.Context) []Note {
	return s.board.List()
}

// Delete removes a note by ID
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.board.Delete(id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return nil
}

// SetColor recolors a note
func (s *Service) SetColor(ctx context.Context, id, color string) (*Note, error) {
	note, err := s.board.SetColor(id, color)
	if err != nil {
		return nil, fmt.Errorf("set color of note %s: %w", id, err)
	}
	return &note, nil
}

// AddItem appends a checklist item to a note
func (s *Service) AddItem(ctx context.Context, noteID, text string) (*Note, error) {
	note, err := s.board.AddItem(noteID, text)
	if err != nil {
		return nil, fmt.Errorf("add item to note %s: %w", noteID, err)
	}
	return &note, nil
}

// ToggleItem flips a checklist item's completed flag
func (s *Service) ToggleItem(ctx context.Context, noteID, itemID string) (*Note, error) {
	note, err := s.board.ToggleItem(noteID, itemID)
	if err != nil {
		return nil, fmt.Errorf("toggle item %s of note %s: %w", itemID, noteID, err)
	}
	return &note, nil
}

// Stats summarizes the board
func (s *Service) Stats(ctx context.Context) Stats {
	return s.board.Stats()
}

// RenderMarkdown converts markdown content to HTML. Anything that parses as
// raw HTML comes out as visible text.
func (s *Service) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return html.EscapeString(content)
	}
	return buf.String()
}

// literalHTMLRenderer replaces goldmark's raw HTML handling, which drops the
// markup, with one that writes the source escaped.
type literalHTMLRenderer struct{}

func (r literalHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
}

func (r literalHTMLRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.RawHTML)
	for i := 0; i < n.Segments.Len(); i++ {
		segment := n.Segments.At(i)
		_, _ = w.Write(util.EscapeHTML(segment.Value(source)))
	}
	return ast.WalkSkipChildren, nil
}

func (r literalHTMLRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.HTMLBlock)
	var text []byte
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		text = append(text, line.Value(source)...)
	}
	if n.HasClosure() {
		text = append(text, n.ClosureLine.Value(source)...)
	}
	text = bytes.TrimRight(text, "\r\n")

	_, _ = w.WriteString("<p>")
	_, _ = w.Write(bytes.ReplaceAll(util.EscapeHTML(text), []byte("\n"), []byte("<br>\n")))
	_, _ = w.WriteString("</p>\n")
	return ast.WalkSkipChildren, nil
}
