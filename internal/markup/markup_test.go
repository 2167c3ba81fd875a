package markup

import (
	"strings"
	"testing"

	"github.com/believeitmyway/SlideTrans/internal/deck"
)

func pt(f float64) *float64 { return &f }

func TestEncode_StyleNesting(t *testing.T) {
	runs := []deck.Run{
		{Text: "Hi", Font: deck.Font{
			Bold:   true,
			Italic: true,
			SizePt: pt(12),
			Color:  &deck.Color{RGB: "FF0000"},
		}},
	}

	got := Encode(runs)
	want := `<c v="#FF0000"><sz v="12"><b><i>Hi</i></b></sz></c>`
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

func TestEncode_EscapesReservedCharacters(t *testing.T) {
	got := Encode([]deck.Run{{Text: "a < b & c"}})
	if strings.Contains(got, "< ") {
		t.Errorf("unescaped '<' in %q", got)
	}
	decoded := Decode(got)
	if len(decoded) != 1 || decoded[0].Text != "a < b & c" {
		t.Errorf("round trip of reserved characters = %+v", decoded)
	}
}

func TestEncode_LineBreakToken(t *testing.T) {
	got := Encode([]deck.Run{{Text: "one\ntwo"}})
	if got != "one<br/>two" {
		t.Errorf("Encode = %q, want %q", got, "one<br/>two")
	}
	if strings.Contains(got, "\n") {
		t.Error("literal newline leaked into markup")
	}
}

func TestEncode_SpacePreservation(t *testing.T) {
	got := Encode([]deck.Run{{Text: " Hello ", Font: deck.Font{Bold: true}}})
	if strings.Count(got, "<sp/>") != 2 {
		t.Fatalf("expected two <sp/> tokens, got %q", got)
	}

	runs := Decode(got)
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d: %+v", len(runs), runs)
	}
	if runs[0].Text != " " || runs[1].Text != "Hello" || runs[2].Text != " " {
		t.Errorf("run texts = %q %q %q", runs[0].Text, runs[1].Text, runs[2].Text)
	}
	if !runs[1].Font.Bold {
		t.Error("expected bold to survive the round trip")
	}
}

func TestDecode_UnclosedTag(t *testing.T) {
	runs := Decode("<b>Unclosed")
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Text != "Unclosed" || !runs[0].Font.Bold {
		t.Errorf("got %+v", runs[0])
	}
}

func TestDecode_SizeAndBold(t *testing.T) {
	runs := Decode(`<sz v="12"><b>BoldText</b></sz>`)
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.Text != "BoldText" || !r.Font.Bold {
		t.Errorf("got %+v", r)
	}
	if r.Font.SizePt == nil || *r.Font.SizePt != 12 {
		t.Errorf("size = %v, want 12", r.Font.SizePt)
	}
}

func TestDecode_StrayCloseTag(t *testing.T) {
	runs := Decode("</b>plain</i>")
	if len(runs) != 1 || runs[0].Text != "plain" {
		t.Fatalf("got %+v", runs)
	}
	if runs[0].Font.Bold || runs[0].Font.Italic {
		t.Error("stray close tags must not alter style")
	}
}

func TestDecode_UnknownTagIsStyleNoop(t *testing.T) {
	runs := Decode("<blink>hey</blink> there")
	if len(runs) != 1 || runs[0].Text != "hey there" {
		t.Fatalf("got %+v", runs)
	}
	if runs[0].Font != (deck.Font{}) {
		t.Errorf("unknown tag changed style: %+v", runs[0].Font)
	}
}

func TestDecode_MissingBracket(t *testing.T) {
	runs := Decode("text <b broken")
	var total string
	for _, r := range runs {
		total += r.Text
	}
	if total == "" {
		t.Error("decode of a broken tag must not drop everything")
	}
}

func TestDecode_ThemeColor(t *testing.T) {
	runs := Decode(`<c v="theme:4:0.40">x</c>`)
	if len(runs) != 1 || runs[0].Font.Color == nil {
		t.Fatalf("got %+v", runs)
	}
	c := runs[0].Font.Color
	if !c.IsTheme() || c.Theme != 4 {
		t.Errorf("color = %+v", c)
	}
	if c.Brightness == nil || *c.Brightness != 0.40 {
		t.Errorf("brightness = %v", c.Brightness)
	}
}

func TestDecode_Empty(t *testing.T) {
	if runs := Decode(""); len(runs) != 0 {
		t.Errorf("decode of empty string = %+v", runs)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := [][]deck.Run{
		{{Text: "plain"}},
		{{Text: "bold", Font: deck.Font{Bold: true}}, {Text: " plain"}},
		{{Text: "multi\nline", Font: deck.Font{Italic: true, Underline: true}}},
		{{Text: "sized", Font: deck.Font{SizePt: pt(24.5)}}},
		{{Text: "red", Font: deck.Font{Color: &deck.Color{RGB: "FF0000"}}},
			{Text: "theme", Font: deck.Font{Color: &deck.Color{Theme: 2}}}},
		{{Text: "struck", Font: deck.Font{Strike: true, Bold: true}}},
	}

	for _, runs := range cases {
		decoded := Decode(Encode(runs))

		var wantText, gotText string
		for _, r := range runs {
			wantText += r.Text
		}
		for _, r := range decoded {
			gotText += r.Text
		}
		if gotText != wantText {
			t.Errorf("round trip text = %q, want %q", gotText, wantText)
			continue
		}

		// Per-character style must match against the source runs.
		pos := 0
		for _, want := range runs {
			for range want.Text {
				got := styleAt(decoded, pos)
				if got == nil || !SameFont(*got, want.Font) {
					t.Errorf("style mismatch at rune %d of %q", pos, wantText)
				}
				pos++
			}
		}
	}
}

// styleAt returns the font governing the rune at offset pos of the
// concatenated run text.
func styleAt(runs []deck.Run, pos int) *deck.Font {
	for i := range runs {
		n := len([]rune(runs[i].Text))
		if pos < n {
			return &runs[i].Font
		}
		pos -= n
	}
	return nil
}
