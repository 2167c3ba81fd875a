package orchestrator

import (
	"testing"

	"github.com/believeitmyway/SlideTrans/internal/deck"
	"github.com/believeitmyway/SlideTrans/internal/layout"
	"github.com/believeitmyway/SlideTrans/internal/walker"
)

func seedFor(p *deck.Paragraph, ctx walker.Context) walker.Seed {
	return walker.Seed{Paragraph: p, Context: ctx}
}

func TestReconstruct_ReplacesRuns(t *testing.T) {
	p := &deck.Paragraph{Runs: []deck.Run{{Text: "old"}}}

	ok := Reconstruct(seedFor(p, walker.Standard), "<b>new</b> text")
	if !ok {
		t.Fatal("expected success")
	}
	if !p.Dirty {
		t.Error("reconstructed paragraph must be dirty")
	}
	if len(p.Runs) != 2 || p.Runs[0].Text != "new" || !p.Runs[0].Font.Bold {
		t.Errorf("runs = %+v", p.Runs)
	}
	if p.Runs[1].Text != " text" || p.Runs[1].Font.Bold {
		t.Errorf("runs = %+v", p.Runs)
	}
}

func TestReconstruct_EmptyDecodeKeepsOriginal(t *testing.T) {
	p := &deck.Paragraph{Runs: []deck.Run{{Text: "original"}}}

	if Reconstruct(seedFor(p, walker.Standard), "") {
		t.Error("empty translation must report failure")
	}
	if p.Dirty || p.Text() != "original" {
		t.Errorf("paragraph changed: %+v", p)
	}
}

func TestReconstruct_ConstrainedPreShrink(t *testing.T) {
	size := 20.0
	p := &deck.Paragraph{Runs: []deck.Run{{Text: "ab", Font: deck.Font{SizePt: &size}}}}

	// Same style, twice the narrow-glyph count: estimated width doubles,
	// so the pre-shrink ratio is 0.5.
	ok := Reconstruct(seedFor(p, walker.Constrained), `<sz v="20">abcd</sz>`)
	if !ok {
		t.Fatal("expected success")
	}
	got := *p.Runs[0].Font.SizePt
	if got < 9.9 || got > 10.1 {
		t.Errorf("pre-shrunk size = %v, want ~10", got)
	}
}

func TestReconstruct_ConstrainedNeverUpscales(t *testing.T) {
	size := 20.0
	p := &deck.Paragraph{Runs: []deck.Run{{Text: "long original text", Font: deck.Font{SizePt: &size}}}}

	ok := Reconstruct(seedFor(p, walker.Constrained), `<sz v="20">ok</sz>`)
	if !ok {
		t.Fatal("expected success")
	}
	if got := *p.Runs[0].Font.SizePt; got != 20 {
		t.Errorf("size = %v, shorter translations must not upscale", got)
	}
}

func TestReconstruct_PreShrinkFloor(t *testing.T) {
	size := 8.0
	p := &deck.Paragraph{Runs: []deck.Run{{Text: "a", Font: deck.Font{SizePt: &size}}}}

	ok := Reconstruct(seedFor(p, walker.Constrained),
		`<sz v="8">aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa</sz>`)
	if !ok {
		t.Fatal("expected success")
	}
	if got := *p.Runs[0].Font.SizePt; got != layout.MinFontPt {
		t.Errorf("size = %v, want floor %v", got, layout.MinFontPt)
	}
}

func TestReconstruct_StandardSkipsPreShrink(t *testing.T) {
	size := 20.0
	p := &deck.Paragraph{Runs: []deck.Run{{Text: "ab", Font: deck.Font{SizePt: &size}}}}

	ok := Reconstruct(seedFor(p, walker.Standard), `<sz v="20">abcdefgh</sz>`)
	if !ok {
		t.Fatal("expected success")
	}
	if got := *p.Runs[0].Font.SizePt; got != 20 {
		t.Errorf("standard context must not pre-shrink, size = %v", got)
	}
}
