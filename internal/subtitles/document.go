package subtitles

import (
	"fmt"
	"strings"
)

// Canvas the script is authored against. Burned-in subtitles are scaled by
// the renderer, so a single logical resolution keeps event markup (notably
// \move coordinates) stable across orientations.
const (
	playResX = 1280
	playResY = 720
)

// Event is one timed Dialogue line. Layer 0 carries the full-sentence
// background text; layer 1 carries a single highlighted-word overlay.
type Event struct {
	Layer   int
	StartMs int
	EndMs   int
	Style   string
	Text    string
}

// NamedStyle pairs a resolved style with the name events reference it by.
type NamedStyle struct {
	Name  string
	Style Style
}

// Document is a complete ASS subtitle script: style header plus an ordered
// event list. Write-once; Render produces the exact byte stream handed to
// the burn-in step, reproducible for identical inputs.
type Document struct {
	Styles []NamedStyle
	Events []Event
}

// IsEmpty reports whether the document carries no events. An empty document
// means "no subtitles", which is never an error.
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.Events) == 0
}

// Render serializes the document to the ASS textual form.
func (d *Document) Render() []byte {
	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	sb.WriteString("; Generated subtitle script\n")
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("WrapStyle: 0\n")
	sb.WriteString("ScaledBorderAndShadow: yes\n")
	sb.WriteString("YCbCr Matrix: TV.601\n")
	sb.WriteString(fmt.Sprintf("PlayResX: %d\n", playResX))
	sb.WriteString(fmt.Sprintf("PlayResY: %d\n", playResY))
	sb.WriteString("\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	for _, ns := range d.Styles {
		sb.WriteString(formatStyleLine(ns.Name, ns.Style))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, ev := range d.Events {
		sb.WriteString(fmt.Sprintf(
			"Dialogue: %d,%s,%s,%s,,0,0,0,,%s\n",
			ev.Layer,
			FormatTimestamp(ev.StartMs),
			FormatTimestamp(ev.EndMs),
			ev.Style,
			ev.Text,
		))
	}

	return []byte(sb.String())
}

// formatStyleLine renders one V4+ style definition. The name decides which
// color is used as PrimaryColour: the Highlight style shows the highlight
// color, everything else the primary.
func formatStyleLine(name string, s Style) string {
	primary := s.PrimaryColor
	if name == "Highlight" {
		primary = s.HighlightColor
	}

	bold := 0
	if s.Bold {
		bold = -1 // ASS boolean: -1 is true
	}

	return fmt.Sprintf(
		"Style: %s,%s,%d,%s,&H000000FF,%s,%s,%d,0,0,0,100,100,0,0,1,%d,%d,%d,10,10,10,1",
		name, s.FontName, s.FontSize, primary,
		s.OutlineColor, s.BackColor, bold,
		s.Outline, s.Shadow, int(s.Alignment),
	)
}
