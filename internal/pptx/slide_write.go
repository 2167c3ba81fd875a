package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/believeitmyway/SlideTrans/internal/deck"
)

// schemeNames maps theme-color slots to schemeClr values. Slot numbers
// follow the Office theme-color enumeration so decks round-trip against
// files produced by other tooling.
var schemeNames = map[int]string{
	1:  "dk1",
	2:  "lt1",
	3:  "dk2",
	4:  "lt2",
	5:  "accent1",
	6:  "accent2",
	7:  "accent3",
	8:  "accent4",
	9:  "accent5",
	10: "accent6",
	11: "hlink",
	12: "folHlink",
	13: "tx1",
	14: "bg1",
	15: "tx2",
	16: "bg2",
}

var schemeSlots = func() map[string]int {
	m := make(map[string]int, len(schemeNames))
	for slot, name := range schemeNames {
		m[name] = slot
	}
	return m
}()

func schemeSlot(name string) (int, bool) {
	slot, ok := schemeSlots[name]
	return slot, ok
}

// writeParagraph serializes a rebuilt paragraph. The original pPr and
// endParaRPr blocks are spliced back verbatim so alignment, bullets and
// spacing survive the text replacement.
func writeParagraph(ps *paraSpan) []byte {
	var b bytes.Buffer
	b.WriteString("<a:p>")
	b.Write(ps.pPrRaw)
	for _, run := range ps.para.Runs {
		writeRun(&b, run)
	}
	b.Write(ps.endRaw)
	b.WriteString("</a:p>")
	return b.Bytes()
}

func writeRun(b *bytes.Buffer, run deck.Run) {
	segments := strings.Split(run.Text, "\n")
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("<a:br/>")
		}
		if seg == "" {
			continue
		}
		b.WriteString("<a:r>")
		writeRunProps(b, run.Font)
		b.WriteString("<a:t>")
		xml.EscapeText(b, []byte(seg))
		b.WriteString("</a:t></a:r>")
	}
}

func writeRunProps(b *bytes.Buffer, font deck.Font) {
	var attrs bytes.Buffer
	if font.SizePt != nil {
		fmt.Fprintf(&attrs, ` sz="%d"`, int(math.Round(*font.SizePt*100)))
	}
	if font.Bold {
		attrs.WriteString(` b="1"`)
	}
	if font.Italic {
		attrs.WriteString(` i="1"`)
	}
	if font.Underline {
		attrs.WriteString(` u="sng"`)
	}
	if font.Strike {
		attrs.WriteString(` strike="sngStrike"`)
	}

	if font.Color == nil {
		if attrs.Len() == 0 {
			return
		}
		fmt.Fprintf(b, "<a:rPr%s/>", attrs.String())
		return
	}

	fmt.Fprintf(b, "<a:rPr%s><a:solidFill>", attrs.String())
	writeColor(b, font.Color)
	b.WriteString("</a:solidFill></a:rPr>")
}

func writeColor(b *bytes.Buffer, c *deck.Color) {
	if !c.IsTheme() {
		fmt.Fprintf(b, `<a:srgbClr val="%s"/>`, strings.ToUpper(c.RGB))
		return
	}
	name, ok := schemeNames[c.Theme]
	if !ok {
		name = "tx1"
	}
	if c.Brightness == nil || *c.Brightness == 0 {
		fmt.Fprintf(b, `<a:schemeClr val="%s"/>`, name)
		return
	}
	off := int(math.Round(*c.Brightness * 100000))
	fmt.Fprintf(b, `<a:schemeClr val="%s"><a:lumMod val="%d"/><a:lumOff val="%d"/></a:schemeClr>`,
		name, 100000-off, off)
}

func writeExt(box deck.Box) []byte {
	return []byte(fmt.Sprintf(`<a:ext cx="%d" cy="%d"/>`, box.Width, box.Height))
}
