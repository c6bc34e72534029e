package subtitles

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/bobarin/scenecast/internal/models"
)

// ---------------------------------------------------------------------------
// Subtitle document builders
//
// Two entry points produce the same Document shape:
//   - FromNarrative: plain text spread proportionally over a known duration,
//     one event per sentence, no word highlighting.
//   - FromTranscript: word-level timestamps grouped into sentences, with the
//     currently spoken word highlighted either through per-word overlay
//     events (word-events mode) or through a single sentence event whose
//     markup animates each word in place (karaoke mode).
// ---------------------------------------------------------------------------

const (
	// A silence longer than this between consecutive words closes the
	// current sentence group.
	sentenceGapMs = 500

	// Trailing pad on karaoke sentence events so the last word's animation
	// finishes on screen.
	sentencePadMs = 500

	// Maximum characters per rendered line in karaoke mode.
	maxLineChars = 30

	// Settle tail after a word's own span for highlight ramps.
	settleTailMs = 200
)

// sentencePattern captures runs of text up to and including terminal
// punctuation.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// HighlightMode selects how word-level highlighting is emitted.
type HighlightMode int

const (
	// ModeWordEvents emits one background sentence event plus one overlay
	// event per word, the overlay recoloring the current word inline.
	ModeWordEvents HighlightMode = iota

	// ModeKaraoke emits a single event per sentence whose markup sequences
	// per-word transitions at offsets relative to the sentence start.
	ModeKaraoke
)

// ModeFor picks the highlight mode suited to the style's animation. Fade and
// scale only exist as relative transitions, so they force karaoke mode.
func ModeFor(style Style) HighlightMode {
	if style.Animation == AnimationFade || style.Animation == AnimationScale {
		return ModeKaraoke
	}
	return ModeWordEvents
}

// FromNarrative builds a subtitle document from plain narrative text and a
// target duration. The text is split on sentence-terminal punctuation (the
// whole text counts as one sentence when none is found) and screen time is
// allocated proportionally to character count, spans laid end-to-end from 0.
// Empty text yields an empty document, not an error.
func FromNarrative(text string, durationMs int, style Style) *Document {
	doc := &Document{Styles: []NamedStyle{{Name: "Default", Style: style}}}

	if strings.TrimSpace(text) == "" || durationMs <= 0 {
		return doc
	}

	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	perCharMs := float64(durationMs) / float64(len([]rune(text)))

	// Rounding keeps adjacent spans contiguous and lets the last span land
	// on the requested duration instead of one short of it.
	start := 0.0
	for _, sentence := range sentences {
		end := start + float64(len([]rune(sentence)))*perCharMs

		if display := strings.TrimSpace(sentence); display != "" {
			doc.Events = append(doc.Events, Event{
				Layer:   0,
				StartMs: int(math.Round(start)),
				EndMs:   int(math.Round(end)),
				Style:   "Default",
				Text:    display,
			})
		}

		start = end
	}

	return doc
}

// FromTranscript builds a subtitle document from a time-stamped word
// sequence. Words are grouped into sentences on terminal punctuation or on a
// silence gap; each group becomes one highlighted sentence. An empty word
// sequence yields an empty document rather than an error.
func FromTranscript(words []models.Word, style Style, mode HighlightMode) *Document {
	doc := &Document{Styles: []NamedStyle{
		{Name: "Default", Style: style},
		{Name: "Highlight", Style: style},
	}}

	if len(words) == 0 {
		return doc
	}

	for _, group := range groupSentences(words) {
		if mode == ModeKaraoke {
			appendKaraokeSentence(doc, group, style)
		} else {
			appendWordEventSentence(doc, group, style)
		}
	}

	return doc
}

// groupSentences splits the word sequence into sentence groups. A group
// closes when a word ends in terminal punctuation or when the gap to the
// next word's start exceeds sentenceGapMs. Every word lands in exactly one
// group, in input order.
func groupSentences(words []models.Word) [][]models.Word {
	var sentences [][]models.Word
	var current []models.Word

	for i, word := range words {
		current = append(current, word)

		terminal := strings.HasSuffix(word.Text, ".") ||
			strings.HasSuffix(word.Text, "!") ||
			strings.HasSuffix(word.Text, "?")
		longGap := i+1 < len(words) && words[i+1].StartMs-word.EndMs > sentenceGapMs

		if terminal || longGap {
			sentences = append(sentences, current)
			current = nil
		}
	}

	if len(current) > 0 {
		sentences = append(sentences, current)
	}

	return sentences
}

// appendWordEventSentence emits the word-events form of one sentence: a
// layer-0 background event spanning the whole sentence plus a layer-1 event
// per word carrying the full sentence text with only the current word
// recolored and animated.
func appendWordEventSentence(doc *Document, group []models.Word, style Style) {
	sentence := joinWords(group)

	doc.Events = append(doc.Events, Event{
		Layer:   0,
		StartMs: group[0].StartMs,
		EndMs:   group[len(group)-1].EndMs,
		Style:   "Default",
		Text:    sentence,
	})

	highlight := inlineColor(style.HighlightColor)
	primary := inlineColor(style.PrimaryColor)

	// Search from a moving offset so repeated words highlight their own
	// occurrence, not the first one.
	searchFrom := 0
	for _, word := range group {
		idx := strings.Index(sentence[searchFrom:], word.Text)
		if idx < 0 {
			continue // the background event still shows the word
		}
		idx += searchFrom
		searchFrom = idx + len(word.Text)

		text := fmt.Sprintf("%s{\\c%s}%s%s{\\c%s}%s",
			sentence[:idx],
			highlight,
			animationTags(style),
			word.Text,
			primary,
			sentence[idx+len(word.Text):],
		)

		doc.Events = append(doc.Events, Event{
			Layer:   1,
			StartMs: word.StartMs,
			EndMs:   word.EndMs,
			Style:   "Default",
			Text:    text,
		})
	}
}

// animationTags returns the transform markup for a highlighted word in
// word-events mode. Times are relative to the word event's own start.
func animationTags(style Style) string {
	switch style.Animation {
	case AnimationPop:
		// Scale up, then settle back.
		return `{\t(0,60,\fscx115\fscy115)\t(60,120,\fscx100\fscy100)}`
	case AnimationGlow:
		// Outline-color and shadow-alpha pulse.
		return `{\t(0,120,\3c&H00FFFF&\4a&H00&)\t(120,240,\3c&H000000&\4a&H80&)}`
	case AnimationSlide:
		// Drift toward the resting position of the current alignment.
		switch style.Alignment {
		case AlignCenter:
			return `{\move(640,380,640,360)}`
		case AlignTop:
			return `{\move(640,80,640,50)}`
		default:
			return `{\move(640,680,640,650)}`
		}
	default:
		return ""
	}
}

// appendKaraokeSentence emits the karaoke form of one sentence: a single
// layer-0 event, end-padded so the final word's ramp completes, with the
// sentence rewrapped into lines of at most maxLineChars characters and each
// word prefixed by its own color/alpha/scale transitions at offsets relative
// to the sentence start.
func appendKaraokeSentence(doc *Document, group []models.Word, style Style) {
	start := group[0].StartMs
	end := group[len(group)-1].EndMs + sentencePadMs

	var lines []string
	var tokens []string
	lineLen := 0

	flush := func() {
		if len(tokens) > 0 {
			lines = append(lines, strings.Join(tokens, " "))
			tokens = nil
			lineLen = 0
		}
	}

	for _, word := range group {
		plainLen := len([]rune(word.Text))
		if lineLen > 0 && lineLen+1+plainLen > maxLineChars {
			flush()
		}
		tokens = append(tokens, karaokeToken(word, start, style))
		if lineLen > 0 {
			lineLen++
		}
		lineLen += plainLen
	}
	flush()

	doc.Events = append(doc.Events, Event{
		Layer:   0,
		StartMs: start,
		EndMs:   end,
		Style:   "Default",
		Text:    strings.Join(lines, `\N`),
	})
}

// karaokeToken renders one word with its relative-time transitions. Each
// token restates its base color and alpha so a word's transitions never
// bleed into the rest of the line.
func karaokeToken(word models.Word, sentenceStartMs int, style Style) string {
	primary := inlineColor(style.PrimaryColor)

	// Untimed residual tokens (whitespace artifacts and the like) stay in
	// the line, dimmed, so reconstruction is lossless.
	if word.EndMs <= word.StartMs {
		return fmt.Sprintf(`{\c%s\alpha&H80&}%s`, primary, word.Text)
	}

	highlight := inlineColor(style.HighlightColor)
	t0 := word.StartMs - sentenceStartMs
	t1 := word.EndMs - sentenceStartMs

	switch style.Animation {
	case AnimationFade:
		return fmt.Sprintf(`{\c%s\alpha&H60&\t(%d,%d,\alpha&H00&\c%s)\t(%d,%d,\c%s)}%s`,
			primary, t0, t1, highlight, t1, t1+settleTailMs, primary, word.Text)
	case AnimationScale:
		return fmt.Sprintf(`{\c%s\alpha&H00&\fscx100\fscy100\t(%d,%d,\fscx115\fscy115\c%s)\t(%d,%d,\fscx100\fscy100\c%s)}%s`,
			primary, t0, t1, highlight, t1, t1+settleTailMs, primary, word.Text)
	default:
		return fmt.Sprintf(`{\c%s\alpha&H00&\t(%d,%d,\c%s)\t(%d,%d,\c%s)}%s`,
			primary, t0, t0+60, highlight, t1, t1+settleTailMs, primary, word.Text)
	}
}

// joinWords reassembles a sentence group's plain text.
func joinWords(group []models.Word) string {
	parts := make([]string, len(group))
	for i, w := range group {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// inlineColor converts a style color (&HAABBGGRR) to the inline override
// form (&HBBGGRR&) used by \c tags.
func inlineColor(assColor string) string {
	if len(assColor) == 10 && strings.HasPrefix(assColor, "&H") {
		return "&H" + assColor[4:] + "&"
	}
	return assColor
}
