// Package markup is the tagged-string codec that carries per-run text styling
// through a plain-text translation call. Encode serializes a styled run
// sequence to a compact tagged string; Decode tolerantly parses a (possibly
// model-mangled) tagged string back into styled runs.
//
// The grammar is deliberately small:
//
//	<b> <i> <u> <s>          bold / italic / underline / strikethrough
//	<sz v="12">              explicit font size in points
//	<c v="#RRGGBB">          explicit RGB color
//	<c v="theme:4:0.40">     theme color slot, optional brightness
//	<sp/>                    preserved leading/trailing whitespace
//	<br/>                    hard line break inside a run
//
// Instruction-following models routinely trim incidental whitespace and
// mangle literal newlines, so whitespace at run edges and embedded breaks
// travel as explicit tokens rather than as characters.
package markup

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/believeitmyway/SlideTrans/internal/deck"
)

// LineBreak is the canonical sentinel a decoded <br/> token carries as its
// run text. The file writer turns it back into a hard break element.
const LineBreak = "\n"

var attrRe = regexp.MustCompile(`v\s*=\s*"([^"]*)"|v\s*=\s*'([^']*)'`)

// Encode serializes runs into tagged markup. Consecutive runs concatenate
// with no paragraph-level wrapper. Runs of leading/trailing whitespace are
// emitted as <sp/> tokens and embedded newlines as <br/> so both survive a
// round trip through a whitespace-trimming model.
func Encode(runs []deck.Run) string {
	var b strings.Builder
	for _, r := range runs {
		encodeRun(&b, r)
	}
	return b.String()
}

func encodeRun(b *strings.Builder, r deck.Run) {
	if r.Text == "" {
		return
	}

	lead, core, trail := splitEdgeSpace(r.Text)

	var open, close string
	// Innermost first: b/i/u/s hug the text, then size, color outermost.
	if r.Font.Strike {
		open, close = open+"<s>", "</s>"+close
	}
	if r.Font.Underline {
		open, close = "<u>"+open, close+"</u>"
	}
	if r.Font.Italic {
		open, close = "<i>"+open, close+"</i>"
	}
	if r.Font.Bold {
		open, close = "<b>"+open, close+"</b>"
	}
	if r.Font.SizePt != nil {
		tag := `<sz v="` + formatFloat(*r.Font.SizePt) + `">`
		open, close = tag+open, close+"</sz>"
	}
	if r.Font.Color != nil {
		tag := `<c v="` + formatColor(*r.Font.Color) + `">`
		open, close = tag+open, close+"</c>"
	}

	b.WriteString(open)
	if lead != "" {
		b.WriteString("<sp/>")
	}
	b.WriteString(encodeText(core))
	if trail != "" {
		b.WriteString("<sp/>")
	}
	b.WriteString(close)
}

// splitEdgeSpace splits text into its leading whitespace, core and trailing
// whitespace. A whole-whitespace text goes entirely to lead.
func splitEdgeSpace(text string) (lead, core, trail string) {
	core = strings.TrimLeft(text, " \t")
	lead = text[:len(text)-len(core)]
	trimmed := strings.TrimRight(core, " \t")
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

func encodeText(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if b.Len() > 0 {
			b.WriteString("<br/>")
		}
		b.WriteString(html.EscapeString(line))
	}
	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatColor(c deck.Color) string {
	if !c.IsTheme() {
		return "#" + strings.ToUpper(c.RGB)
	}
	s := "theme:" + strconv.Itoa(c.Theme)
	if c.Brightness != nil {
		s += ":" + strconv.FormatFloat(*c.Brightness, 'f', 2, 64)
	}
	return s
}

// Decode parses markup back into a styled run sequence. The input has passed
// through a generative model and is treated as adversarial: unknown tags are
// style no-ops, unclosed tags are closed implicitly at end of input, stray
// close tags are ignored, and a missing '>' turns the remainder into plain
// text. Decode never fails; an empty result signals the caller to fall back
// to the original text.
func Decode(s string) []deck.Run {
	p := decoder{}
	rest := s
	for rest != "" {
		lt := strings.IndexByte(rest, '<')
		if lt < 0 {
			p.text(rest)
			break
		}
		if lt > 0 {
			p.text(rest[:lt])
			rest = rest[lt:]
		}
		gt := strings.IndexByte(rest, '>')
		if gt < 0 {
			// No closing bracket anywhere: the model broke the tag.
			p.text(rest)
			break
		}
		p.tag(rest[1:gt])
		rest = rest[gt+1:]
	}
	return p.runs
}

type decoder struct {
	runs    []deck.Run
	current deck.Font
	stack   []deck.Font
	// mergeable is true when the last emitted run came from plain text and
	// may absorb adjacent same-style text. <sp/> and <br/> runs always stand
	// alone.
	mergeable bool
}

func (p *decoder) text(raw string) {
	t := html.UnescapeString(raw)
	if t == "" {
		return
	}
	if p.mergeable && len(p.runs) > 0 && sameFont(p.runs[len(p.runs)-1].Font, p.current) {
		p.runs[len(p.runs)-1].Text += t
		return
	}
	p.runs = append(p.runs, deck.Run{Text: t, Font: p.current})
	p.mergeable = true
}

func (p *decoder) token(text string) {
	p.runs = append(p.runs, deck.Run{Text: text, Font: p.current})
	p.mergeable = false
}

func (p *decoder) tag(body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}

	closing := strings.HasPrefix(body, "/")
	body = strings.TrimPrefix(body, "/")
	selfClosed := strings.HasSuffix(body, "/")
	body = strings.TrimSuffix(body, "/")

	name := body
	if i := strings.IndexAny(body, " \t"); i >= 0 {
		name = body[:i]
	}
	name = strings.ToLower(name)

	switch name {
	case "sp":
		if !closing {
			p.token(" ")
		}
		return
	case "br":
		if !closing {
			p.token(LineBreak)
		}
		return
	}

	if closing {
		// Pop back to the enclosing style; a stray close is a no-op.
		if n := len(p.stack); n > 0 {
			p.current = p.stack[n-1]
			p.stack = p.stack[:n-1]
		}
		return
	}
	if selfClosed {
		return
	}

	p.stack = append(p.stack, p.current)
	switch name {
	case "b", "strong":
		p.current.Bold = true
	case "i", "em":
		p.current.Italic = true
	case "u":
		p.current.Underline = true
	case "s", "strike", "del":
		p.current.Strike = true
	case "sz":
		if v, ok := tagValue(body); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				p.current.SizePt = &f
			}
		}
	case "c":
		if v, ok := tagValue(body); ok {
			if c := parseColor(v); c != nil {
				p.current.Color = c
			}
		}
	default:
		// Unknown tag: style no-op, but keep the stack balanced so its
		// close tag pops what we pushed.
	}
}

func tagValue(body string) (string, bool) {
	m := attrRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	v := m[1]
	if v == "" {
		v = m[2]
	}
	return html.UnescapeString(strings.TrimSpace(v)), v != ""
}

func parseColor(v string) *deck.Color {
	v = strings.TrimSpace(v)
	if hex, ok := strings.CutPrefix(v, "#"); ok {
		hex = strings.ToUpper(hex)
		if len(hex) != 6 {
			return nil
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return nil
		}
		return &deck.Color{RGB: hex}
	}
	if rest, ok := strings.CutPrefix(v, "theme:"); ok {
		parts := strings.SplitN(rest, ":", 2)
		id, err := strconv.Atoi(parts[0])
		if err != nil || id < 0 {
			return nil
		}
		c := &deck.Color{Theme: id}
		if len(parts) == 2 {
			if b, err := strconv.ParseFloat(parts[1], 64); err == nil {
				c.Brightness = &b
			}
		}
		return c
	}
	return nil
}

func sameFont(a, b deck.Font) bool {
	if a.Bold != b.Bold || a.Italic != b.Italic || a.Underline != b.Underline || a.Strike != b.Strike {
		return false
	}
	if (a.SizePt == nil) != (b.SizePt == nil) {
		return false
	}
	if a.SizePt != nil && *a.SizePt != *b.SizePt {
		return false
	}
	if (a.Color == nil) != (b.Color == nil) {
		return false
	}
	if a.Color != nil {
		ca, cb := *a.Color, *b.Color
		if ca.RGB != cb.RGB || ca.Theme != cb.Theme {
			return false
		}
		if (ca.Brightness == nil) != (cb.Brightness == nil) {
			return false
		}
		if ca.Brightness != nil && *ca.Brightness != *cb.Brightness {
			return false
		}
	}
	return true
}

// SameFont reports whether two fonts are style-equivalent. Exposed for the
// reconstruction step's run handling.
func SameFont(a, b deck.Font) bool { return sameFont(a, b) }
