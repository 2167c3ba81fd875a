// Package walker enumerates the text-bearing nodes of a slide and tags each
// paragraph with its structural context. Top-level text frames are
// "standard" (eligible for box widening later); anything reached through a
// table or group is "constrained" and can only be fitted by shrinking.
package walker

import (
	"strings"

	"github.com/believeitmyway/SlideTrans/internal/deck"
	"github.com/believeitmyway/SlideTrans/internal/markup"
)

// Context classifies a paragraph by the structure it sits in.
type Context int

const (
	Standard Context = iota
	Constrained
)

func (c Context) String() string {
	if c == Constrained {
		return "constrained"
	}
	return "standard"
}

// Seed is one translatable paragraph: the paragraph itself, its encoded
// markup, the raw rune count before translation, and the context.
type Seed struct {
	Paragraph *deck.Paragraph
	Markup    string
	RawLen    int
	Context   Context
}

// WalkSlide walks every shape of a slide and returns seeds in document
// order. The walk is pure: it builds and returns its result rather than
// appending to shared state.
func WalkSlide(slide *deck.Slide) []Seed {
	var seeds []Seed
	for _, shape := range slide.Shapes {
		seeds = append(seeds, Walk(shape, Standard)...)
	}
	return seeds
}

// Walk dispatches on the shape variant. Group members and table cells are
// always constrained regardless of the incoming context.
func Walk(shape deck.Shape, ctx Context) []Seed {
	switch s := shape.(type) {
	case *deck.GroupShape:
		var seeds []Seed
		for _, child := range s.Children {
			seeds = append(seeds, Walk(child, Constrained)...)
		}
		return seeds
	case *deck.TableShape:
		var seeds []Seed
		for _, row := range s.Cells {
			for _, cell := range row {
				if cell == nil || cell.Frame == nil {
					continue
				}
				seeds = append(seeds, frameSeeds(cell.Frame, Constrained)...)
			}
		}
		return seeds
	case *deck.TextShape:
		if s.Frame == nil {
			return nil
		}
		return frameSeeds(s.Frame, ctx)
	default:
		return nil
	}
}

func frameSeeds(frame *deck.TextFrame, ctx Context) []Seed {
	var seeds []Seed
	for _, para := range frame.Paragraphs {
		text := para.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		seeds = append(seeds, Seed{
			Paragraph: para,
			Markup:    markup.Encode(para.Runs),
			RawLen:    len([]rune(text)),
			Context:   ctx,
		})
	}
	return seeds
}
