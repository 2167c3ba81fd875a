// Package layout is the post-translation reflow pass: translated text is
// usually longer than the original, so text boxes are widened into free
// horizontal space and font sizes are shrunk until the estimated wrapped
// height fits the box again.
//
// The engine estimates, never measures, glyph widths. The constants below
// are coarse tunables, not precision: codepoints above 255 are treated as
// full-width (CJK), everything else as a narrow Latin glyph.
package layout

import (
	"math"

	"github.com/believeitmyway/SlideTrans/internal/deck"
	"github.com/believeitmyway/SlideTrans/internal/markup"
)

const (
	// narrowFactor and wideFactor approximate glyph advance as a fraction
	// of the font size.
	narrowFactor = 0.55
	wideFactor   = 1.0

	// lineHeightFactor approximates line height from the largest font size.
	lineHeightFactor = 1.2

	// safetyMargin backs off both the usable line width and the computed
	// shrink factor to absorb estimation error.
	safetyMargin = 0.95

	// NominalFontPt substitutes for runs with no explicit size.
	NominalFontPt = 18.0

	// MinFontPt is the shrink floor.
	MinFontPt = 6.0

	// widenMarginEMU is the gap left between a widened box and its
	// obstruction (0.1 inch).
	widenMarginEMU = deck.EMUPerInch / 10
)

// RuneWidthPt returns the estimated rendered width of one rune at the given
// font size in points.
func RuneWidthPt(r rune, sizePt float64) float64 {
	if r > 255 {
		return sizePt * wideFactor
	}
	return sizePt * narrowFactor
}

// TextWidthEMU estimates the linear (unwrapped) width of a run sequence in
// EMU. Explicit line-break sentinels contribute nothing.
func TextWidthEMU(runs []deck.Run) float64 {
	var w float64
	for _, run := range runs {
		size := NominalFontPt
		if run.Font.SizePt != nil {
			size = *run.Font.SizePt
		}
		if run.Text == markup.LineBreak {
			continue
		}
		for _, r := range run.Text {
			if r == '\n' {
				continue
			}
			w += RuneWidthPt(r, size) * deck.EMUPerPoint
		}
	}
	return w
}

// segmentWidthsEMU estimates the linear width of each hard-break-separated
// segment of a paragraph.
func segmentWidthsEMU(p *deck.Paragraph) []float64 {
	widths := []float64{0}
	for _, run := range p.Runs {
		size := NominalFontPt
		if run.Font.SizePt != nil {
			size = *run.Font.SizePt
		}
		for _, r := range run.Text {
			if r == '\n' {
				widths = append(widths, 0)
				continue
			}
			widths[len(widths)-1] += RuneWidthPt(r, size) * deck.EMUPerPoint
		}
	}
	return widths
}

// estimateLines returns the estimated wrapped line count of a paragraph in a
// box availWidth EMU wide. An empty paragraph still occupies one line.
func estimateLines(p *deck.Paragraph, availWidth float64) int {
	usable := availWidth * safetyMargin
	lines := 0
	for _, w := range segmentWidthsEMU(p) {
		n := 1
		if usable > 0 && w > usable {
			n = int(math.Ceil(w / usable))
		}
		lines += n
	}
	if lines < 1 {
		lines = 1
	}
	return lines
}

// maxFontPt returns the largest effective font size in a frame.
func maxFontPt(frame *deck.TextFrame) float64 {
	max := 0.0
	for _, p := range frame.Paragraphs {
		for _, run := range p.Runs {
			size := NominalFontPt
			if run.Font.SizePt != nil {
				size = *run.Font.SizePt
			}
			if size > max {
				max = size
			}
		}
	}
	if max == 0 {
		max = NominalFontPt
	}
	return max
}

// EstimateHeightEMU estimates the rendered height of a frame wrapped into
// the given width.
func EstimateHeightEMU(frame *deck.TextFrame, availWidth float64) float64 {
	lines := 0
	for _, p := range frame.Paragraphs {
		lines += estimateLines(p, availWidth)
	}
	return float64(lines) * maxFontPt(frame) * lineHeightFactor * deck.EMUPerPoint
}

// FitFrame shrinks the frame's font sizes until its estimated height fits
// the box. Estimated height scales with the square of a uniform font scale
// (smaller glyphs are shorter AND wrap into fewer lines), so the scale is
// sqrt(available/estimated), backed off by the safety margin. Font sizes
// floor at MinFontPt. Zero or negative geometry skips the frame entirely.
func FitFrame(frame *deck.TextFrame, availWidth, availHeight int64) {
	if frame == nil || availWidth <= 0 || availHeight <= 0 {
		return
	}

	// The height estimate assumes wrapping, so every fitted frame gets
	// wrapping enabled even when nothing needs to shrink.
	if !frame.WordWrap {
		frame.WordWrap = true
		frame.DirtyWrap = true
	}

	est := EstimateHeightEMU(frame, float64(availWidth))
	if est <= float64(availHeight) {
		return
	}

	k := math.Sqrt(float64(availHeight)/est) * safetyMargin
	ScaleFonts(frame, k)
}

// ScaleFonts multiplies every run's font size by k, substituting the nominal
// size for runs without one and flooring at MinFontPt. No-op for k >= 1.
func ScaleFonts(frame *deck.TextFrame, k float64) {
	if k >= 1 {
		return
	}
	for _, p := range frame.Paragraphs {
		changed := false
		for i := range p.Runs {
			size := NominalFontPt
			if p.Runs[i].Font.SizePt != nil {
				size = *p.Runs[i].Font.SizePt
			}
			scaled := size * k
			if scaled < MinFontPt {
				scaled = MinFontPt
			}
			p.Runs[i].Font.SizePt = &scaled
			changed = true
		}
		if changed {
			p.Dirty = true
		}
	}
}
