package layout

import (
	"github.com/believeitmyway/SlideTrans/internal/deck"
)

// AdjustPresentation runs the reflow pass over every slide: widen top-level
// text boxes into free space, then shrink fonts wherever the estimate still
// overflows. Table cells and group members are fitted against their own
// fixed boxes and never widened.
func AdjustPresentation(pres *deck.Presentation) {
	for _, slide := range pres.Slides {
		AdjustSlide(slide, pres.SlideWidth)
	}
}

// AdjustSlide fits every shape of one slide.
func AdjustSlide(slide *deck.Slide, slideWidth int64) {
	for _, shape := range slide.Shapes {
		switch s := shape.(type) {
		case *deck.TextShape:
			if s.Frame == nil {
				continue
			}
			Widen(s, slide.Shapes, slideWidth)
			FitFrame(s.Frame, s.Box.Width, s.Box.Height)
		case *deck.TableShape:
			for _, row := range s.Cells {
				for _, cell := range row {
					if cell == nil {
						continue
					}
					FitFrame(cell.Frame, cell.Box.Width, cell.Box.Height)
				}
			}
		case *deck.GroupShape:
			adjustGroup(s)
		}
	}
}

// adjustGroup fits group members against their own boxes. Member coordinates
// are group-local and possibly transformed, so collision-based widening is
// not attempted inside groups.
func adjustGroup(group *deck.GroupShape) {
	for _, child := range group.Children {
		switch s := child.(type) {
		case *deck.TextShape:
			FitFrame(s.Frame, s.Box.Width, s.Box.Height)
		case *deck.TableShape:
			for _, row := range s.Cells {
				for _, cell := range row {
					if cell == nil {
						continue
					}
					FitFrame(cell.Frame, cell.Box.Width, cell.Box.Height)
				}
			}
		case *deck.GroupShape:
			adjustGroup(s)
		}
	}
}

// Widen grows a text shape rightward up to the nearest obstruction: the
// minimum left edge of any sibling that starts at or beyond the shape's
// right edge and overlaps its vertical span (open-interval test), or the
// slide's right edge when unobstructed. A margin is kept before the
// obstruction. The shape is never shrunk.
func Widen(shape *deck.TextShape, siblings []deck.Shape, slideWidth int64) {
	box := shape.Box
	if box.Width <= 0 || box.Height <= 0 {
		return
	}

	maxRight := slideWidth
	for _, other := range siblings {
		if other == deck.Shape(shape) {
			continue
		}
		ob := other.Bounds()
		if ob.Left < box.Right() {
			continue
		}
		// Open-interval vertical overlap.
		if ob.Bottom() <= box.Top || ob.Top >= box.Bottom() {
			continue
		}
		if ob.Left < maxRight {
			maxRight = ob.Left
		}
	}

	newWidth := maxRight - box.Left - widenMarginEMU
	if newWidth > box.Width {
		shape.SetWidth(newWidth)
	}
}
