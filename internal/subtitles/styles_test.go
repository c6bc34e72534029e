package subtitles

import (
	"testing"

	"github.com/bobarin/scenecast/internal/models"
)

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	got := Resolve("no-such-style")
	want := Resolve("default")

	if got != want {
		t.Errorf("unknown preset resolved to %+v, want default %+v", got, want)
	}
	if got.FontName != "Roboto Bold" {
		t.Errorf("default font = %q, want Roboto Bold", got.FontName)
	}
	if got.Alignment != AlignBottom {
		t.Errorf("default alignment = %d, want bottom", got.Alignment)
	}
}

func TestResolveOverridePrecedence(t *testing.T) {
	global := &models.StyleOverrides{
		FontSize: 44,
		Color:    "&H0000FF00",
		Position: "top",
	}
	scene := &models.StyleOverrides{
		Color:     "&H00FF0000",
		Animation: "glow",
	}

	got := Resolve("tiktok", global, scene)

	// Untouched fields keep the preset value.
	if got.FontName != "Segoe UI Black" {
		t.Errorf("font = %q, want preset Segoe UI Black", got.FontName)
	}
	// Fields only the global overrides set come from there.
	if got.FontSize != 44 {
		t.Errorf("font size = %d, want global override 44", got.FontSize)
	}
	if got.Alignment != AlignTop {
		t.Errorf("alignment = %d, want top from global position", got.Alignment)
	}
	// Fields both set: the scene-level record wins.
	if got.PrimaryColor != "&H00FF0000" {
		t.Errorf("primary = %q, want scene override", got.PrimaryColor)
	}
	if got.Animation != AnimationGlow {
		t.Errorf("animation = %q, want scene override glow", got.Animation)
	}
}

func TestResolveNilOverridesIgnored(t *testing.T) {
	got := Resolve("movie", nil, nil)
	want := Resolve("movie")
	if got != want {
		t.Errorf("nil overrides changed the style: %+v vs %+v", got, want)
	}
}

func TestAlignmentFor(t *testing.T) {
	cases := []struct {
		position string
		want     Alignment
	}{
		{"bottom", AlignBottom},
		{"center", AlignCenter},
		{"top", AlignTop},
		{"TOP", AlignTop},
		{"", AlignBottom},
		{"sideways", AlignBottom},
	}
	for _, tc := range cases {
		if got := AlignmentFor(tc.position); got != tc.want {
			t.Errorf("AlignmentFor(%q) = %d, want %d", tc.position, got, tc.want)
		}
	}
}

func TestPresetCatalog(t *testing.T) {
	names := PresetNames()
	if len(names) != 13 {
		t.Fatalf("preset count = %d, want 13", len(names))
	}

	for _, name := range names {
		style := Resolve(name)
		if style.FontName == "" || style.FontSize <= 0 {
			t.Errorf("preset %q is missing font data: %+v", name, style)
		}
		if len(style.PrimaryColor) != 10 || len(style.HighlightColor) != 10 {
			t.Errorf("preset %q has malformed colors: %+v", name, style)
		}
	}
}
