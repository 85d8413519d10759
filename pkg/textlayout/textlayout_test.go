package textlayout

import (
	"strings"
	"testing"
)

func TestCharacterBudgets(t *testing.T) {
	// 228px content width at 8.0px/glyph bold and 6.5px/glyph regular.
	if LabelMaxChars != 28 {
		t.Errorf("LabelMaxChars = %d, want 28", LabelMaxChars)
	}
	if ImpactMaxChars != 35 {
		t.Errorf("ImpactMaxChars = %d, want 35", ImpactMaxChars)
	}
}

func TestWrapEmpty(t *testing.T) {
	if lines := Wrap("", 20); lines != nil {
		t.Errorf("expected no lines for empty input, got %v", lines)
	}
	if lines := Wrap("   ", 20); lines != nil {
		t.Errorf("expected no lines for whitespace input, got %v", lines)
	}
}

func TestWrapSingleLine(t *testing.T) {
	lines := Wrap("No CTA Button", LabelMaxChars)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %v", len(lines), lines)
	}
	if lines[0] != "No CTA Button" {
		t.Errorf("unexpected line content: %q", lines[0])
	}
}

func TestWrapRespectsLimit(t *testing.T) {
	text := "Your hero section is missing a clear call to action above the fold"
	lines := Wrap(text, 28)
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %v", lines)
	}
	for i, line := range lines {
		if len([]rune(line)) > 28 {
			t.Errorf("line %d exceeds limit: %q (%d chars)", i, line, len([]rune(line)))
		}
	}
	// No words lost.
	joined := strings.Join(lines, " ")
	if joined != text {
		t.Errorf("wrap lost content:\nwant %q\ngot  %q", text, joined)
	}
}

func TestWrapTruncatesLongWord(t *testing.T) {
	word := strings.Repeat("x", 50)
	lines := Wrap(word, 20)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %v", lines)
	}
	if !strings.HasSuffix(lines[0], "…") {
		t.Errorf("expected ellipsis suffix, got %q", lines[0])
	}
	if len([]rune(lines[0])) != 20 {
		t.Errorf("expected truncation to 20 runes, got %d", len([]rune(lines[0])))
	}
}

func TestCardHeightFormula(t *testing.T) {
	// Label only.
	got := CardHeight(2, 0)
	want := 2*CardPadding + 2*LabelLineHeight
	if got != want {
		t.Errorf("label-only height = %v, want %v", got, want)
	}

	// Label plus impact block.
	got = CardHeight(1, 2)
	want = 2*CardPadding + LabelLineHeight + ImpactGap + 2*ImpactLineHeight
	if got != want {
		t.Errorf("label+impact height = %v, want %v", got, want)
	}
}

func TestLayoutFixedWidth(t *testing.T) {
	short := Layout("Short", "")
	long := Layout(strings.Repeat("long label words ", 5), "costs you signups every day")

	if short.Width != CardWidth || long.Width != CardWidth {
		t.Errorf("card width must be constant: %v vs %v", short.Width, long.Width)
	}
	if long.Height <= short.Height {
		t.Errorf("longer label should grow card height: %v <= %v", long.Height, short.Height)
	}
}

func TestLayoutSeventyCharLabel(t *testing.T) {
	label := strings.Repeat("abcde ", 11) + "fghi" // 70 chars
	l := Layout(label, "")
	if len(l.LabelLines) < 2 {
		t.Fatalf("expected multi-line wrap for 70-char label, got %v", l.LabelLines)
	}
	if l.Height != CardHeight(len(l.LabelLines), 0) {
		t.Errorf("height %v does not match line count %d", l.Height, len(l.LabelLines))
	}
}

func TestLayoutEmptyLabel(t *testing.T) {
	l := Layout("", "impact text")
	if len(l.LabelLines) != 0 {
		t.Errorf("empty label should produce no label lines, got %v", l.LabelLines)
	}
}
