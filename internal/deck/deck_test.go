package deck

import "testing"

func TestParagraphText(t *testing.T) {
	p := &Paragraph{Runs: []Run{
		{Text: "Hello "},
		{Text: "world", Font: Font{Bold: true}},
		{Text: "\n"},
		{Text: "again"},
	}}
	if got := p.Text(); got != "Hello world\nagain" {
		t.Errorf("Text() = %q", got)
	}
}

func TestReplaceMarksDirty(t *testing.T) {
	p := &Paragraph{Runs: []Run{{Text: "old"}}}
	p.Replace([]Run{{Text: "new"}})
	if !p.Dirty {
		t.Error("Replace should mark the paragraph dirty")
	}
	if p.Text() != "new" {
		t.Errorf("Text() = %q, want new", p.Text())
	}
}

func TestSetWidthMarksGeometry(t *testing.T) {
	s := &TextShape{Box: Box{Left: 10, Top: 20, Width: 30, Height: 40}}
	s.SetWidth(50)
	if s.Box.Width != 50 || !s.DirtyGeom {
		t.Errorf("SetWidth: box = %+v, dirty = %v", s.Box, s.DirtyGeom)
	}
	if s.Box.Left != 10 || s.Box.Height != 40 {
		t.Errorf("SetWidth must only change width: %+v", s.Box)
	}
}

func TestBoxEdges(t *testing.T) {
	b := Box{Left: 100, Top: 200, Width: 300, Height: 400}
	if b.Right() != 400 || b.Bottom() != 600 {
		t.Errorf("Right/Bottom = %d/%d, want 400/600", b.Right(), b.Bottom())
	}
}

func TestColorIsTheme(t *testing.T) {
	if (Color{RGB: "FF0000"}).IsTheme() {
		t.Error("rgb color reported as theme")
	}
	if !(Color{Theme: 5}).IsTheme() {
		t.Error("theme color not reported as theme")
	}
}
