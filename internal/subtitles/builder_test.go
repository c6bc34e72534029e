package subtitles

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bobarin/scenecast/internal/models"
)

func TestFromNarrativeSplitsSentences(t *testing.T) {
	doc := FromNarrative("One. Two!", 900, Resolve("default"))

	if len(doc.Events) != 2 {
		t.Fatalf("event count = %d, want 2", len(doc.Events))
	}

	first, second := doc.Events[0], doc.Events[1]
	if first.Text != "One." || second.Text != "Two!" {
		t.Errorf("texts = %q, %q; want trimmed sentences", first.Text, second.Text)
	}
	if first.StartMs != 0 {
		t.Errorf("first start = %d, want 0", first.StartMs)
	}
	if first.EndMs != second.StartMs {
		t.Errorf("spans not contiguous: %d vs %d", first.EndMs, second.StartMs)
	}

	// "One." is 4 of 9 characters, so it gets 4/9 of the duration.
	if want := 400; first.EndMs != want {
		t.Errorf("first end = %d, want %d", first.EndMs, want)
	}

	// Allocation is proportional, so the last span ends exactly at the
	// requested duration.
	if second.EndMs != 900 {
		t.Errorf("last end = %d, want 900", second.EndMs)
	}
}

func TestFromNarrativeCoversFullDuration(t *testing.T) {
	// 14 characters over 1000ms does not divide evenly; rounding must keep
	// spans contiguous and land the last one on the full duration.
	doc := FromNarrative("Ab. Cde. Fghi.", 1000, Resolve("default"))

	if len(doc.Events) != 3 {
		t.Fatalf("event count = %d, want 3", len(doc.Events))
	}
	for i := 1; i < len(doc.Events); i++ {
		if doc.Events[i-1].EndMs != doc.Events[i].StartMs {
			t.Errorf("spans not contiguous at %d: %d vs %d", i, doc.Events[i-1].EndMs, doc.Events[i].StartMs)
		}
	}
	if last := doc.Events[2].EndMs; last != 1000 {
		t.Errorf("last end = %d, want 1000", last)
	}
}

func TestFromNarrativeWithoutTerminator(t *testing.T) {
	doc := FromNarrative("no punctuation here", 2000, Resolve("default"))

	if len(doc.Events) != 1 {
		t.Fatalf("event count = %d, want 1", len(doc.Events))
	}
	ev := doc.Events[0]
	if ev.StartMs != 0 || ev.EndMs != 2000 {
		t.Errorf("span = [%d,%d], want [0,2000]", ev.StartMs, ev.EndMs)
	}
	if ev.Text != "no punctuation here" {
		t.Errorf("text = %q", ev.Text)
	}
}

func TestFromNarrativeEmpty(t *testing.T) {
	if doc := FromNarrative("", 3000, Resolve("default")); !doc.IsEmpty() {
		t.Errorf("empty text produced %d events", len(doc.Events))
	}
	if doc := FromNarrative("   ", 3000, Resolve("default")); !doc.IsEmpty() {
		t.Errorf("blank text produced %d events", len(doc.Events))
	}
	if doc := FromNarrative("hello", 0, Resolve("default")); !doc.IsEmpty() {
		t.Errorf("zero duration produced %d events", len(doc.Events))
	}
}

func TestGroupSentences(t *testing.T) {
	words := []models.Word{
		{Text: "First", StartMs: 0, EndMs: 300},
		{Text: "one.", StartMs: 350, EndMs: 700},
		{Text: "Then", StartMs: 900, EndMs: 1200},
		{Text: "a", StartMs: 1250, EndMs: 1300},
		// 800ms of silence before the next word closes this group too.
		{Text: "pause", StartMs: 2100, EndMs: 2500},
		{Text: "tail", StartMs: 2600, EndMs: 2900},
	}

	groups := groupSentences(words)
	if len(groups) != 3 {
		t.Fatalf("group count = %d, want 3", len(groups))
	}

	wantLens := []int{2, 2, 2}
	total := 0
	for i, g := range groups {
		if len(g) != wantLens[i] {
			t.Errorf("group %d has %d words, want %d", i, len(g), wantLens[i])
		}
		total += len(g)
	}
	if total != len(words) {
		t.Errorf("grouping dropped words: %d of %d", total, len(words))
	}
	if groups[1][0].Text != "Then" || groups[2][0].Text != "pause" {
		t.Errorf("group boundaries wrong: %+v", groups)
	}
}

func TestFromTranscriptWordEvents(t *testing.T) {
	words := []models.Word{
		{Text: "Hi", StartMs: 0, EndMs: 500},
		{Text: "there", StartMs: 600, EndMs: 1100},
		{Text: "friend!", StartMs: 1100, EndMs: 1400},
	}
	style := Resolve("default")

	doc := FromTranscript(words, style, ModeWordEvents)

	// One background event plus one overlay per word.
	if len(doc.Events) != 4 {
		t.Fatalf("event count = %d, want 4", len(doc.Events))
	}

	bg := doc.Events[0]
	if bg.Layer != 0 || bg.StartMs != 0 || bg.EndMs != 1400 {
		t.Errorf("background = layer %d [%d,%d], want layer 0 [0,1400]", bg.Layer, bg.StartMs, bg.EndMs)
	}
	if bg.Text != "Hi there friend!" {
		t.Errorf("background text = %q", bg.Text)
	}
	if strings.Contains(bg.Text, `{\`) {
		t.Errorf("background text carries markup: %q", bg.Text)
	}

	for i, word := range words {
		ev := doc.Events[i+1]
		if ev.Layer != 1 {
			t.Errorf("word %d layer = %d, want 1", i, ev.Layer)
		}
		if ev.StartMs != word.StartMs || ev.EndMs != word.EndMs {
			t.Errorf("word %d span = [%d,%d], want [%d,%d]", i, ev.StartMs, ev.EndMs, word.StartMs, word.EndMs)
		}
		if !strings.Contains(ev.Text, `{\c&H00FFFF&}`) {
			t.Errorf("word %d missing highlight color switch: %q", i, ev.Text)
		}
		if !strings.Contains(ev.Text, word.Text) {
			t.Errorf("word %d text missing %q: %q", i, word.Text, ev.Text)
		}
		// Stripping markup must give back the full sentence.
		if plain := stripMarkup(ev.Text); plain != bg.Text {
			t.Errorf("word %d plain text = %q, want %q", i, plain, bg.Text)
		}
	}

	// Default preset animates with pop.
	if !strings.Contains(doc.Events[1].Text, `\fscx115`) {
		t.Errorf("pop animation missing: %q", doc.Events[1].Text)
	}
}

func TestFromTranscriptRepeatedWords(t *testing.T) {
	words := []models.Word{
		{Text: "go", StartMs: 0, EndMs: 200},
		{Text: "go", StartMs: 250, EndMs: 450},
		{Text: "go.", StartMs: 500, EndMs: 700},
	}
	style := Resolve("minimal")
	style.Animation = AnimationNone

	doc := FromTranscript(words, style, ModeWordEvents)
	if len(doc.Events) != 4 {
		t.Fatalf("event count = %d, want 4", len(doc.Events))
	}

	// The second occurrence must be the highlighted one, not the first.
	second := doc.Events[2].Text
	if !strings.HasPrefix(second, "go {") {
		t.Errorf("second event should leave the first occurrence plain: %q", second)
	}
	third := doc.Events[3].Text
	if !strings.HasPrefix(third, "go go {") {
		t.Errorf("third event should leave both earlier occurrences plain: %q", third)
	}
}

func TestFromTranscriptKaraoke(t *testing.T) {
	words := []models.Word{
		{Text: "Slow", StartMs: 1000, EndMs: 1400},
		{Text: "fade", StartMs: 1450, EndMs: 1900},
		{Text: "in.", StartMs: 1950, EndMs: 2300},
	}
	style := Resolve("default")
	style.Animation = AnimationFade

	if ModeFor(style) != ModeKaraoke {
		t.Fatalf("fade animation should select karaoke mode")
	}

	doc := FromTranscript(words, style, ModeKaraoke)
	if len(doc.Events) != 1 {
		t.Fatalf("event count = %d, want 1", len(doc.Events))
	}

	ev := doc.Events[0]
	if ev.StartMs != 1000 {
		t.Errorf("start = %d, want sentence start 1000", ev.StartMs)
	}
	if ev.EndMs != 2300+sentencePadMs {
		t.Errorf("end = %d, want padded %d", ev.EndMs, 2300+sentencePadMs)
	}

	// Transition times are relative to the sentence start.
	if !strings.Contains(ev.Text, `\t(0,400,`) {
		t.Errorf("first word ramp missing or not rebased: %q", ev.Text)
	}
	if !strings.Contains(ev.Text, `\t(950,1300,`) {
		t.Errorf("last word ramp missing or not rebased: %q", ev.Text)
	}
	if !strings.Contains(ev.Text, `\alpha&H60&`) {
		t.Errorf("fade base alpha missing: %q", ev.Text)
	}
	if stripMarkup(ev.Text) != "Slow fade in." {
		t.Errorf("plain text = %q", stripMarkup(ev.Text))
	}
}

func TestFromTranscriptKaraokeLineWrap(t *testing.T) {
	var words []models.Word
	start := 0
	for i := 0; i < 12; i++ {
		words = append(words, models.Word{Text: "word", StartMs: start, EndMs: start + 200})
		start += 250
	}

	style := Resolve("default")
	style.Animation = AnimationScale

	doc := FromTranscript(words, style, ModeKaraoke)
	if len(doc.Events) != 1 {
		t.Fatalf("event count = %d, want 1", len(doc.Events))
	}

	lines := strings.Split(doc.Events[0].Text, `\N`)
	if len(lines) < 2 {
		t.Fatalf("12 words of 4 chars should wrap, got %d line(s)", len(lines))
	}
	for i, line := range lines {
		if plain := stripMarkup(line); len(plain) > maxLineChars {
			t.Errorf("line %d has %d plain chars: %q", i, len(plain), plain)
		}
	}
}

func TestFromTranscriptKaraokeUntimedToken(t *testing.T) {
	words := []models.Word{
		{Text: "Real", StartMs: 0, EndMs: 300},
		{Text: "-", StartMs: 300, EndMs: 300},
		{Text: "words.", StartMs: 350, EndMs: 700},
	}

	doc := FromTranscript(words, Resolve("default"), ModeKaraoke)
	if len(doc.Events) != 1 {
		t.Fatalf("event count = %d, want 1", len(doc.Events))
	}

	text := doc.Events[0].Text
	if !strings.Contains(text, `\alpha&H80&}-`) {
		t.Errorf("untimed token should render dimmed: %q", text)
	}
	if stripMarkup(text) != "Real - words." {
		t.Errorf("plain text = %q", stripMarkup(text))
	}
}

func TestFromTranscriptEmpty(t *testing.T) {
	doc := FromTranscript(nil, Resolve("default"), ModeWordEvents)
	if !doc.IsEmpty() {
		t.Errorf("no words produced %d events", len(doc.Events))
	}
	if len(doc.Styles) != 2 {
		t.Errorf("style count = %d, want Default and Highlight", len(doc.Styles))
	}
}

func TestRenderReproducible(t *testing.T) {
	words := []models.Word{
		{Text: "Same", StartMs: 0, EndMs: 400},
		{Text: "bytes.", StartMs: 450, EndMs: 900},
	}

	a := FromTranscript(words, Resolve("youtuber"), ModeWordEvents).Render()
	b := FromTranscript(words, Resolve("youtuber"), ModeWordEvents).Render()
	if !bytes.Equal(a, b) {
		t.Fatal("identical inputs rendered different bytes")
	}

	script := string(a)
	for _, want := range []string{
		"[Script Info]",
		"PlayResX: 1280",
		"PlayResY: 720",
		"[V4+ Styles]",
		"Style: Default,Impact,42,&H0000FFFF,",
		"Style: Highlight,Impact,42,&H00FFFFFF,",
		"[Events]",
		"Dialogue: 0,0:00:00.00,0:00:00.90,Default,,0,0,0,,Same bytes.",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("rendered script missing %q", want)
		}
	}
}

// stripMarkup removes {...} override blocks, leaving the plain line text.
func stripMarkup(s string) string {
	var sb strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
