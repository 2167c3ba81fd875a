// Package detector guesses the language of deck text. The translate
// command uses it to warn when the text in a file does not look like the
// configured source language, which usually means the expansion ratio and
// prompts are tuned for the wrong direction.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/believeitmyway/SlideTrans/internal/deck"
	"github.com/believeitmyway/SlideTrans/internal/walker"
)

// sampleLimit caps how much text is fed to the classifier. Language
// identification converges long before a full deck's worth of text.
const sampleLimit = 2000

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// VerifySource samples text from the presentation and checks it against the
// configured source language. It returns the detected language name and
// whether it matches; ok is false when the deck holds too little text to
// classify.
func (d *Detector) VerifySource(pres *deck.Presentation, sourceLanguage string) (detected string, match, ok bool) {
	var sample strings.Builder
	for _, slide := range pres.Slides {
		for _, seed := range walker.WalkSlide(slide) {
			sample.WriteString(seed.Paragraph.Text())
			sample.WriteString("\n")
			if sample.Len() >= sampleLimit {
				break
			}
		}
		if sample.Len() >= sampleLimit {
			break
		}
	}

	lang, found := d.Detect(strings.TrimSpace(sample.String()))
	if !found {
		return "", false, false
	}
	name := lang.String()
	return name, strings.EqualFold(name, sourceLanguage), true
}
