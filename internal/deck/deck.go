// Package deck holds the in-memory presentation object model the pipeline
// mutates: slides, shapes, text frames, paragraphs and styled runs. Geometry
// is kept in EMU (914,400 per inch), the native unit of the file format.
package deck

// EMU conversions.
const (
	EMUPerInch  = 914400
	EMUPerPoint = 12700
)

// Color is a run color: either an explicit RGB value ("FF0000") or a theme
// slot reference. Exactly one of RGB/Theme is meaningful; Theme is active
// when RGB is empty.
type Color struct {
	RGB        string
	Theme      int
	Brightness *float64
}

// IsTheme reports whether the color references a theme slot rather than an
// explicit RGB value.
func (c Color) IsTheme() bool {
	return c.RGB == ""
}

// Font carries the run-level character properties the pipeline preserves.
// SizePt is nil when the run inherits its size.
type Font struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	SizePt    *float64
	Color     *Color
}

// Run is a maximal span of paragraph text sharing one style.
type Run struct {
	Text string
	Font Font
}

// Paragraph is an ordered run sequence. Reconstruction replaces Runs
// wholesale (build new slice, swap in) and marks the paragraph Dirty so the
// file writer knows to re-serialize it.
type Paragraph struct {
	Runs  []Run
	Dirty bool
}

// Text returns the concatenated run text.
func (p *Paragraph) Text() string {
	var s string
	for _, r := range p.Runs {
		s += r.Text
	}
	return s
}

// Replace swaps in a new run slice and marks the paragraph dirty.
func (p *Paragraph) Replace(runs []Run) {
	p.Runs = runs
	p.Dirty = true
}

// TextFrame is the text container of a shape or table cell.
type TextFrame struct {
	Paragraphs []*Paragraph
	WordWrap   bool
	DirtyWrap  bool
}

// Box is a positioned rectangle in EMU. For group members the coordinates
// are local to the group.
type Box struct {
	Left, Top, Width, Height int64
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() int64 { return b.Left + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() int64 { return b.Top + b.Height }

// Shape is the closed union over the three shape variants the pipeline
// understands. Walker and layout dispatch exhaustively on the concrete type.
type Shape interface {
	Bounds() Box
}

// TextShape is a plain text box.
type TextShape struct {
	Box       Box
	Frame     *TextFrame
	DirtyGeom bool
}

func (s *TextShape) Bounds() Box { return s.Box }

// SetWidth widens the shape and marks its geometry dirty.
func (s *TextShape) SetWidth(w int64) {
	s.Box.Width = w
	s.DirtyGeom = true
}

// TableCell is one cell of a table grid; Box is the cell's own extent
// (column width by row height).
type TableCell struct {
	Box   Box
	Frame *TextFrame
}

// TableShape is a table; Cells is row-major.
type TableShape struct {
	Box   Box
	Cells [][]*TableCell
}

func (s *TableShape) Bounds() Box { return s.Box }

// GroupShape holds child shapes with group-local coordinates.
type GroupShape struct {
	Box      Box
	Children []Shape
}

func (s *GroupShape) Bounds() Box { return s.Box }

// Slide is an ordered shape list in z-order.
type Slide struct {
	Shapes []Shape
}

// Presentation is the root of the model. SlideWidth/SlideHeight come from
// the deck's slide-size declaration.
type Presentation struct {
	Slides      []*Slide
	SlideWidth  int64
	SlideHeight int64
}
