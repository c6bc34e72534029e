package subtitles

import (
	"strings"

	"github.com/bobarin/scenecast/internal/models"
)

// Animation is the per-word highlight effect written into the event markup.
type Animation string

const (
	AnimationNone  Animation = ""
	AnimationPop   Animation = "pop"   // scale up then settle
	AnimationGlow  Animation = "glow"  // outline-color/alpha pulse
	AnimationSlide Animation = "slide" // positional move keyed to alignment
	AnimationFade  Animation = "fade"  // alpha ramp (karaoke mode only)
	AnimationScale Animation = "scale" // scale ramp (karaoke mode only)
)

// Alignment is the ASS numpad alignment code for the subtitle block.
type Alignment int

const (
	AlignBottom Alignment = 2
	AlignCenter Alignment = 5
	AlignTop    Alignment = 8
)

// Style is a fully resolved subtitle style. Colors are in the ASS
// &HAABBGGRR form (alpha, blue, green, red).
type Style struct {
	FontName       string
	FontSize       int
	PrimaryColor   string
	HighlightColor string
	OutlineColor   string
	BackColor      string
	Bold           bool
	Outline        int
	Shadow         int
	Alignment      Alignment
	Animation      Animation
}

// presets is the fixed catalog of named subtitle styles.
var presets = map[string]Style{
	"default": {
		FontName:       "Roboto Bold",
		FontSize:       30,
		PrimaryColor:   "&H00FFFFFF", // white
		HighlightColor: "&H0000FFFF", // yellow
		OutlineColor:   "&H00000000",
		BackColor:      "&H80000000",
		Bold:           true,
		Outline:        2,
		Shadow:         1,
		Animation:      AnimationPop,
	},
	"retro": {
		FontName:       "Arial Black",
		FontSize:       36,
		PrimaryColor:   "&H000000FF", // red
		HighlightColor: "&H00FFFFFF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H80000000",
		Bold:           true,
		Outline:        2,
		Shadow:         1,
		Animation:      AnimationPop,
	},
	"neon": {
		FontName:       "Impact",
		FontSize:       32,
		PrimaryColor:   "&H00FF8000", // neon blue
		HighlightColor: "&H00FFFFFF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H00000000",
		Bold:           true,
		Outline:        2,
		Shadow:         3,
		Animation:      AnimationGlow,
	},
	"minimal": {
		FontName:       "Arial",
		FontSize:       28,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H000080FF", // orange
		OutlineColor:   "&H00000000",
		BackColor:      "&H00000000",
		Bold:           false,
		Outline:        1,
		Shadow:         0,
		Animation:      AnimationSlide,
	},
	"modern": {
		FontName:       "Segoe UI",
		FontSize:       30,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H0000FFFF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H40000000",
		Bold:           true,
		Outline:        1,
		Shadow:         1,
		Animation:      AnimationPop,
	},
	"subtle": {
		FontName:       "Calibri",
		FontSize:       24,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H00CCCCCC", // light gray
		OutlineColor:   "&H00000000",
		BackColor:      "&H00000000",
		Bold:           false,
		Outline:        1,
		Shadow:         0,
		Animation:      AnimationSlide,
	},
	"emoji": {
		FontName:       "Segoe UI Emoji",
		FontSize:       30,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H0000FFFF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H00000000",
		Bold:           true,
		Outline:        2,
		Shadow:         1,
		Animation:      AnimationPop,
	},
	"tiktok": {
		FontName:       "Segoe UI Black",
		FontSize:       36,
		PrimaryColor:   "&H008080FF", // pink
		HighlightColor: "&H000000FF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H80000000",
		Bold:           true,
		Outline:        2,
		Shadow:         1,
		Animation:      AnimationPop,
	},
	"youtuber": {
		FontName:       "Impact",
		FontSize:       42,
		PrimaryColor:   "&H0000FFFF", // yellow
		HighlightColor: "&H00FFFFFF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H80000000",
		Bold:           true,
		Outline:        3,
		Shadow:         3,
		Animation:      AnimationGlow,
	},
	"movie": {
		FontName:       "Times New Roman",
		FontSize:       38,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H0000FFFF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H80000000",
		Bold:           true,
		Outline:        1,
		Shadow:         3,
		Animation:      AnimationPop,
	},
	"capcut": {
		FontName:       "Montserrat Bold",
		FontSize:       40,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H000080FF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H60000000",
		Bold:           true,
		Outline:        2,
		Shadow:         1,
		Animation:      AnimationPop,
	},
	"capcut_neon": {
		FontName:       "Montserrat ExtraBold",
		FontSize:       38,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H0000FFFF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H40000000",
		Bold:           true,
		Outline:        2,
		Shadow:         2,
		Animation:      AnimationGlow,
	},
	"capcut_minimal": {
		FontName:       "Roboto",
		FontSize:       36,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H000080FF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H00000000",
		Bold:           true,
		Outline:        1,
		Shadow:         0,
		Animation:      AnimationSlide,
	},
}

// AlignmentFor maps a position name to its ASS alignment code. Unknown or
// empty positions fall back to bottom.
func AlignmentFor(position string) Alignment {
	switch strings.ToLower(position) {
	case "top":
		return AlignTop
	case "center":
		return AlignCenter
	default:
		return AlignBottom
	}
}

// Resolve returns the named preset with the given partial overrides applied
// in order, each later set winning field-by-field over earlier ones.
// An unknown preset name falls back to the default preset, never an error.
func Resolve(name string, overrides ...*models.StyleOverrides) Style {
	style, ok := presets[name]
	if !ok {
		style = presets["default"]
	}
	style.Alignment = AlignBottom

	for _, o := range overrides {
		applyOverrides(&style, o)
	}

	return style
}

// applyOverrides merges one partial override record into the style.
// Absent (zero) fields keep the current value.
func applyOverrides(style *Style, o *models.StyleOverrides) {
	if o == nil {
		return
	}
	if o.FontName != "" {
		style.FontName = o.FontName
	}
	if o.FontSize > 0 {
		style.FontSize = o.FontSize
	}
	if o.Color != "" {
		style.PrimaryColor = o.Color
	}
	if o.HighlightColor != "" {
		style.HighlightColor = o.HighlightColor
	}
	if o.OutlineColor != "" {
		style.OutlineColor = o.OutlineColor
	}
	if o.BackgroundColor != "" {
		style.BackColor = o.BackgroundColor
	}
	if o.Animation != "" {
		style.Animation = Animation(o.Animation)
	}
	if o.Position != "" {
		style.Alignment = AlignmentFor(o.Position)
	}
}

// PresetNames returns the catalog's style names, for validation and docs.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
