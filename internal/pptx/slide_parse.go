package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/believeitmyway/SlideTrans/internal/deck"
)

// slideParser walks one slide part's XML token stream, building deck shapes
// and recording the byte span of every element save-time may rewrite.
type slideParser struct {
	dec  *xml.Decoder
	data []byte
	part *slidePart
	// prev is the input offset before the last token: the token itself
	// occupies [prev, dec.InputOffset()).
	prev int64
}

func parseSlide(data []byte) (*slidePart, error) {
	part := &slidePart{slide: &deck.Slide{}}
	p := &slideParser{
		dec:  xml.NewDecoder(bytes.NewReader(data)),
		data: data,
		part: part,
	}

	for {
		tok, err := p.token()
		if err == io.EOF {
			return part, nil
		}
		if err != nil {
			return nil, fmt.Errorf("malformed slide xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if shape, err := p.parseShapeElement(start, true); err != nil {
			return nil, err
		} else if shape != nil {
			part.slide.Shapes = append(part.slide.Shapes, shape)
		}
	}
}

func (p *slideParser) token() (xml.Token, error) {
	p.prev = p.dec.InputOffset()
	return p.dec.Token()
}

// parseShapeElement dispatches a spTree child. Non-shape elements return
// (nil, nil) without consuming anything; shape elements are consumed fully.
// Pictures and frame-less graphic frames become frame-less text shapes so
// the reflow pass still sees them as collision obstacles.
func (p *slideParser) parseShapeElement(start xml.StartElement, topLevel bool) (deck.Shape, error) {
	switch start.Name.Local {
	case "sp":
		return p.parseSp(start, topLevel)
	case "graphicFrame":
		return p.parseGraphicFrame(start)
	case "pic", "cxnSp":
		box, err := p.parseBoxOnly(start)
		if err != nil {
			return nil, err
		}
		return &deck.TextShape{Box: box}, nil
	case "grpSp":
		return p.parseGroup(start)
	}
	return nil, nil
}

// parseSp consumes a <p:sp> element.
func (p *slideParser) parseSp(start xml.StartElement, topLevel bool) (deck.Shape, error) {
	shape := &deck.TextShape{}
	var extAt span
	depth := 1

	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "off":
				if hasAttr(t, "x") {
					shape.Box.Left = attrInt64(t, "x")
					shape.Box.Top = attrInt64(t, "y")
				}
			case "ext":
				// extLst also carries a:ext elements; only the xfrm one
				// has extents.
				if hasAttr(t, "cx") {
					shape.Box.Width = attrInt64(t, "cx")
					shape.Box.Height = attrInt64(t, "cy")
					// Consume the whole element so the recorded span covers
					// a separate end tag as well as the self-closed form.
					extStart := p.prev
					if err := p.dec.Skip(); err != nil {
						return nil, err
					}
					extAt = span{extStart, p.dec.InputOffset()}
					continue
				}
			case "txBody":
				frame, err := p.parseTxBody(t)
				if err != nil {
					return nil, err
				}
				shape.Frame = frame
				continue // parseTxBody consumed the matching end
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	if topLevel && shape.Frame != nil && extAt.end > extAt.start {
		p.part.geoms = append(p.part.geoms, &geomSpan{shape: shape, at: extAt})
	}
	return shape, nil
}

// parseBoxOnly consumes any element, keeping just its first off/ext pair.
func (p *slideParser) parseBoxOnly(xml.StartElement) (deck.Box, error) {
	var box deck.Box
	seen := false
	depth := 1

	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return box, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "off":
				if !seen && hasAttr(t, "x") {
					box.Left = attrInt64(t, "x")
					box.Top = attrInt64(t, "y")
				}
			case "ext":
				if !seen && hasAttr(t, "cx") {
					box.Width = attrInt64(t, "cx")
					box.Height = attrInt64(t, "cy")
					seen = true
				}
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return box, nil
}

// parseGroup consumes a <p:grpSp>. Child coordinates stay group-local.
func (p *slideParser) parseGroup(xml.StartElement) (deck.Shape, error) {
	group := &deck.GroupShape{}
	depth := 1
	inGrpSpPr := 0

	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if inGrpSpPr > 0 {
				switch t.Name.Local {
				case "off":
					if hasAttr(t, "x") {
						group.Box.Left = attrInt64(t, "x")
						group.Box.Top = attrInt64(t, "y")
					}
				case "ext":
					if hasAttr(t, "cx") {
						group.Box.Width = attrInt64(t, "cx")
						group.Box.Height = attrInt64(t, "cy")
					}
				}
				inGrpSpPr++
				depth++
				continue
			}
			if t.Name.Local == "grpSpPr" {
				inGrpSpPr = 1
				depth++
				continue
			}
			if shape, err := p.parseShapeElement(t, false); err != nil {
				return nil, err
			} else if shape != nil {
				group.Children = append(group.Children, shape)
				continue // consumed
			}
			depth++
		case xml.EndElement:
			if inGrpSpPr > 0 {
				inGrpSpPr--
			}
			depth--
		}
	}
	return group, nil
}

// parseGraphicFrame consumes a <p:graphicFrame>, returning a table shape
// when it holds one and a frame-less obstacle otherwise.
func (p *slideParser) parseGraphicFrame(xml.StartElement) (deck.Shape, error) {
	var box deck.Box
	var table *deck.TableShape
	depth := 1

	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "off":
				if hasAttr(t, "x") {
					box.Left = attrInt64(t, "x")
					box.Top = attrInt64(t, "y")
				}
			case "ext":
				if hasAttr(t, "cx") {
					box.Width = attrInt64(t, "cx")
					box.Height = attrInt64(t, "cy")
				}
			case "tbl":
				tbl, err := p.parseTable(t)
				if err != nil {
					return nil, err
				}
				table = tbl
				continue // consumed
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	if table == nil {
		return &deck.TextShape{Box: box}, nil
	}
	table.Box = box
	layoutCells(table)
	return table, nil
}

// parseTable consumes an <a:tbl>.
func (p *slideParser) parseTable(xml.StartElement) (*deck.TableShape, error) {
	table := &deck.TableShape{}
	var colWidths []int64
	var row []*deck.TableCell
	var rowHeights []int64
	depth := 1

	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "gridCol":
				colWidths = append(colWidths, attrInt64(t, "w"))
			case "tr":
				row = nil
				rowHeights = append(rowHeights, attrInt64(t, "h"))
			case "tc":
				cell, err := p.parseCell(t)
				if err != nil {
					return nil, err
				}
				row = append(row, cell)
				continue // consumed
			}
			depth++
		case xml.EndElement:
			if t.Name.Local == "tr" {
				table.Cells = append(table.Cells, row)
				row = nil
			}
			depth--
		}
	}

	// Size cells from the grid; positions are filled in by layoutCells once
	// the table box is known.
	for r, cells := range table.Cells {
		for c, cell := range cells {
			if cell == nil {
				continue
			}
			if c < len(colWidths) {
				cell.Box.Width = colWidths[c]
			}
			if r < len(rowHeights) {
				cell.Box.Height = rowHeights[r]
			}
		}
	}
	return table, nil
}

// layoutCells assigns slide-absolute cell origins from the table origin and
// the accumulated column/row sizes.
func layoutCells(table *deck.TableShape) {
	top := table.Box.Top
	for _, row := range table.Cells {
		left := table.Box.Left
		var rowH int64
		for _, cell := range row {
			if cell == nil {
				continue
			}
			cell.Box.Left = left
			cell.Box.Top = top
			left += cell.Box.Width
			if cell.Box.Height > rowH {
				rowH = cell.Box.Height
			}
		}
		top += rowH
	}
}

// parseCell consumes an <a:tc>.
func (p *slideParser) parseCell(xml.StartElement) (*deck.TableCell, error) {
	cell := &deck.TableCell{}
	depth := 1

	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "txBody" {
				frame, err := p.parseTxBody(t)
				if err != nil {
					return nil, err
				}
				cell.Frame = frame
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return cell, nil
}

// parseTxBody consumes a txBody element, recording paragraph spans and the
// bodyPr start tag for the word-wrap splice.
func (p *slideParser) parseTxBody(xml.StartElement) (*deck.TextFrame, error) {
	frame := &deck.TextFrame{WordWrap: true}
	depth := 1

	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "bodyPr":
				frame.WordWrap = attrString(t, "wrap") != "none"
				p.part.bodies = append(p.part.bodies, &bodySpan{
					frame: frame,
					at:    span{p.prev, p.dec.InputOffset()},
				})
			case "p":
				para, err := p.parseParagraph()
				if err != nil {
					return nil, err
				}
				frame.Paragraphs = append(frame.Paragraphs, para)
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return frame, nil
}

// parseParagraph consumes an <a:p>, capturing its span plus the raw pPr and
// endParaRPr blocks that must survive a rebuild verbatim.
func (p *slideParser) parseParagraph() (*deck.Paragraph, error) {
	ps := &paraSpan{para: &deck.Paragraph{}}
	ps.at.start = p.prev
	depth := 1

	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				raw, err := p.rawElement()
				if err != nil {
					return nil, err
				}
				ps.pPrRaw = raw
				continue
			case "endParaRPr":
				raw, err := p.rawElement()
				if err != nil {
					return nil, err
				}
				ps.endRaw = raw
				continue
			case "r", "fld":
				run, err := p.parseRun()
				if err != nil {
					return nil, err
				}
				ps.para.Runs = append(ps.para.Runs, run)
				continue
			case "br":
				ps.para.Runs = append(ps.para.Runs, deck.Run{Text: "\n"})
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	ps.at.end = p.dec.InputOffset()
	p.part.paras = append(p.part.paras, ps)
	return ps.para, nil
}

// rawElement consumes the element whose start tag was just read and returns
// its raw bytes, start tag included.
func (p *slideParser) rawElement() ([]byte, error) {
	start := p.prev
	if err := p.dec.Skip(); err != nil {
		return nil, err
	}
	return p.data[start:p.dec.InputOffset()], nil
}

// parseRun consumes an <a:r> (or <a:fld>, whose literal text is kept).
func (p *slideParser) parseRun() (deck.Run, error) {
	var run deck.Run
	depth := 1
	inText := false

	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return run, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				font, err := p.parseRunProps(t)
				if err != nil {
					return run, err
				}
				run.Font = font
				continue
			case "t":
				inText = true
			}
			depth++
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			depth--
		case xml.CharData:
			if inText {
				run.Text += string(t)
			}
		}
	}
	return run, nil
}

// parseRunProps consumes an <a:rPr>, mapping the preserved character
// properties into a deck.Font. Size is stored in hundredths of a point in
// the file format.
func (p *slideParser) parseRunProps(start xml.StartElement) (deck.Font, error) {
	var font deck.Font

	if attrString(start, "b") == "1" {
		font.Bold = true
	}
	if attrString(start, "i") == "1" {
		font.Italic = true
	}
	if u := attrString(start, "u"); u != "" && u != "none" {
		font.Underline = true
	}
	if s := attrString(start, "strike"); s != "" && s != "noStrike" {
		font.Strike = true
	}
	if sz := attrString(start, "sz"); sz != "" {
		if v, err := strconv.ParseFloat(sz, 64); err == nil && v > 0 {
			pt := v / 100
			font.SizePt = &pt
		}
	}

	depth := 1
	inFill := 0
	for depth > 0 {
		tok, err := p.token()
		if err != nil {
			return font, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "solidFill":
				// Only a direct child of rPr sets the text color; fills
				// nested under ln or highlight do not.
				if depth == 1 {
					inFill = 1
				}
			case "srgbClr":
				if inFill > 0 && font.Color == nil {
					font.Color = &deck.Color{RGB: attrString(t, "val")}
				}
			case "schemeClr":
				if inFill > 0 && font.Color == nil {
					if slot, ok := schemeSlot(attrString(t, "val")); ok {
						font.Color = &deck.Color{Theme: slot, RGB: ""}
					}
				}
			case "lumOff":
				if inFill > 0 && font.Color != nil && font.Color.IsTheme() {
					if v, err := strconv.ParseFloat(attrString(t, "val"), 64); err == nil {
						b := v / 100000
						font.Color.Brightness = &b
					}
				}
			}
			depth++
		case xml.EndElement:
			depth--
			if inFill >= depth {
				inFill = 0
			}
		}
	}
	return font, nil
}

func hasAttr(el xml.StartElement, name string) bool {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

func attrString(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrInt64(el xml.StartElement, name string) int64 {
	v, _ := strconv.ParseInt(attrString(el, name), 10, 64)
	return v
}

// parseSlideSize extracts the deck dimensions from presentation.xml.
func parseSlideSize(data []byte) (w, h int64) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return w, h
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "sldSz" {
			return attrInt64(start, "cx"), attrInt64(start, "cy")
		}
	}
}
