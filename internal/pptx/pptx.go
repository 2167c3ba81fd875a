// Package pptx opens and saves .pptx files for the pipeline. A .pptx is a
// zip of XML parts; this wrapper parses the text-bearing subset of each
// slide part (shapes, tables, groups, paragraphs, run properties) into the
// deck model, remembering the byte span every paragraph and transform
// occupies in the original XML. Saving splices re-serialized XML back into
// those spans and copies everything else through byte-identical, so markup
// the wrapper does not model (pictures, charts, animations) survives
// untouched.
//
// Only the character properties the pipeline preserves (bold, italic,
// underline, strikethrough, size, solid color) are carried per run;
// rebuilding a paragraph drops other run-level properties, matching the
// behavior of reconstruction itself.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/believeitmyway/SlideTrans/internal/deck"
)

// Document pairs the parsed deck model with the raw parts needed to write
// the file back.
type Document struct {
	Presentation *deck.Presentation

	entries []zipEntry
	slides  []*slidePart
}

type zipEntry struct {
	name string
	data []byte
}

// span is a half-open byte range in a slide part's XML.
type span struct {
	start, end int64
}

// slidePart links one slide XML part to the splices save-time may apply.
type slidePart struct {
	entryIndex int
	slide      *deck.Slide

	paras  []*paraSpan
	geoms  []*geomSpan
	bodies []*bodySpan
}

// paraSpan records where a paragraph sits in the XML and the property
// blocks that must be preserved verbatim when it is rebuilt.
type paraSpan struct {
	para   *deck.Paragraph
	at     span
	pPrRaw []byte
	endRaw []byte
}

// geomSpan records the <a:ext> element of a top-level text shape.
type geomSpan struct {
	shape *deck.TextShape
	at    span
}

// bodySpan records the <a:bodyPr> start tag of a text frame.
type bodySpan struct {
	frame *deck.TextFrame
	at    span
}

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Open reads a .pptx file into the deck model.
func Open(filename string) (*Document, error) {
	r, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer r.Close()

	doc := &Document{Presentation: &deck.Presentation{}}

	type slideRef struct {
		num   int
		index int
	}
	var refs []slideRef

	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		doc.entries = append(doc.entries, zipEntry{name: f.Name, data: data})

		name := path.Clean(f.Name)
		if m := slidePartRe.FindStringSubmatch(name); m != nil {
			num, _ := strconv.Atoi(m[1])
			refs = append(refs, slideRef{num: num, index: len(doc.entries) - 1})
		}
		if name == "ppt/presentation.xml" {
			w, h := parseSlideSize(data)
			doc.Presentation.SlideWidth = w
			doc.Presentation.SlideHeight = h
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].num < refs[j].num })

	for _, ref := range refs {
		part, err := parseSlide(doc.entries[ref.index].data)
		if err != nil {
			// A slide the parser cannot handle is carried through unchanged.
			fmt.Fprintf(os.Stderr, "skipping unparseable %s: %v\n", doc.entries[ref.index].name, err)
			part = &slidePart{slide: &deck.Slide{}}
		}
		part.entryIndex = ref.index
		doc.slides = append(doc.slides, part)
		doc.Presentation.Slides = append(doc.Presentation.Slides, part.slide)
	}

	return doc, nil
}

// Save writes the document to filename, splicing dirty paragraphs, widened
// geometry and word-wrap changes into their recorded spans.
func (d *Document) Save(filename string) error {
	out := make([][]byte, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.data
	}
	for _, part := range d.slides {
		out[part.entryIndex] = part.apply(d.entries[part.entryIndex].data)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, e := range d.entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("failed to create zip entry %s: %w", e.name, err)
		}
		if _, err := w.Write(out[i]); err != nil {
			return fmt.Errorf("failed to write zip entry %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// apply splices all dirty regions of one slide part, working from the back
// of the file so earlier spans stay valid.
func (p *slidePart) apply(data []byte) []byte {
	type splice struct {
		at  span
		out []byte
	}
	var splices []splice

	for _, ps := range p.paras {
		if ps.para.Dirty {
			splices = append(splices, splice{at: ps.at, out: writeParagraph(ps)})
		}
	}
	for _, gs := range p.geoms {
		if gs.shape.DirtyGeom {
			splices = append(splices, splice{at: gs.at, out: writeExt(gs.shape.Box)})
		}
	}
	for _, bs := range p.bodies {
		if bs.frame.DirtyWrap && bs.frame.WordWrap {
			splices = append(splices, splice{at: bs.at, out: setWrapAttr(data[bs.at.start:bs.at.end])})
		}
	}

	if len(splices) == 0 {
		return data
	}

	sort.Slice(splices, func(i, j int) bool { return splices[i].at.start > splices[j].at.start })

	result := data
	for _, s := range splices {
		var b []byte
		b = append(b, result[:s.at.start]...)
		b = append(b, s.out...)
		b = append(b, result[s.at.end:]...)
		result = b
	}
	return result
}

// setWrapAttr rewrites a <a:bodyPr ...> start tag so wrap="square".
func setWrapAttr(tag []byte) []byte {
	s := string(tag)
	if wrapAttrRe.MatchString(s) {
		return []byte(wrapAttrRe.ReplaceAllString(s, `wrap="square"`))
	}
	if strings.HasSuffix(s, "/>") {
		return []byte(strings.TrimSuffix(s, "/>") + ` wrap="square"/>`)
	}
	if strings.HasSuffix(s, ">") {
		return []byte(strings.TrimSuffix(s, ">") + ` wrap="square">`)
	}
	return tag
}

var wrapAttrRe = regexp.MustCompile(`wrap="[^"]*"`)
