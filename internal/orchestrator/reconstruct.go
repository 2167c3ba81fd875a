package orchestrator

import (
	"github.com/believeitmyway/SlideTrans/internal/deck"
	"github.com/believeitmyway/SlideTrans/internal/layout"
	"github.com/believeitmyway/SlideTrans/internal/markup"
	"github.com/believeitmyway/SlideTrans/internal/walker"
)

// Reconstruct decodes a translation and swaps the paragraph's run list for
// the decoded one. A decode that yields no runs leaves the paragraph
// untouched and reports false so the original text survives.
//
// Constrained paragraphs (tables, groups) have no widening fallback later,
// so they are pre-shrunk here: every run's font size is scaled by the ratio
// of the original to the translated estimated width, capped at 1 (never
// upscaled) and floored at the minimum font size.
func Reconstruct(seed walker.Seed, translation string) bool {
	runs := markup.Decode(translation)
	if len(runs) == 0 {
		return false
	}

	if seed.Context == walker.Constrained {
		preShrink(seed.Paragraph.Runs, runs)
	}

	seed.Paragraph.Replace(runs)
	return true
}

func preShrink(original, translated []deck.Run) {
	origW := layout.TextWidthEMU(original)
	newW := layout.TextWidthEMU(translated)
	if newW <= 0 || origW <= 0 {
		return
	}

	ratio := origW / newW
	if ratio >= 1 {
		return
	}

	for i := range translated {
		size := layout.NominalFontPt
		if translated[i].Font.SizePt != nil {
			size = *translated[i].Font.SizePt
		}
		scaled := size * ratio
		if scaled < layout.MinFontPt {
			scaled = layout.MinFontPt
		}
		translated[i].Font.SizePt = &scaled
	}
}
