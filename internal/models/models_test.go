package models

import (
	"encoding/json"
	"testing"
)

func TestProcessStatusTerminal(t *testing.T) {
	cases := []struct {
		status ProcessStatus
		want   bool
	}{
		{ProcessStatusQueued, false},
		{ProcessStatusProcessing, false},
		{ProcessStatusCompleted, true},
		{ProcessStatusFailed, true},
	}
	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.want {
			t.Errorf("%s.Terminal() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestOrientationValid(t *testing.T) {
	if !OrientationLandscape.Valid() || !OrientationPortrait.Valid() {
		t.Error("known orientations should be valid")
	}
	if Orientation("diagonal").Valid() || Orientation("").Valid() {
		t.Error("unknown orientations should be invalid")
	}
}

func TestJSONBValueAndScan(t *testing.T) {
	original := JSONB{"error": "boom", "scenes_count": float64(3)}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var scanned JSONB
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if scanned["error"] != "boom" || scanned["scenes_count"] != float64(3) {
		t.Errorf("round trip = %+v", scanned)
	}
}

func TestJSONBScanNil(t *testing.T) {
	var j JSONB
	if err := j.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if j != nil {
		t.Errorf("scan of nil should leave nil map, got %+v", j)
	}
}

func TestSceneJSONTags(t *testing.T) {
	raw := `{
		"scene_number": 2,
		"text": "Hello there.",
		"audio_url": "https://cdn.example.com/a.mp3",
		"image_url": "https://cdn.example.com/i.jpg",
		"duration": 4.5,
		"subtitle_style": "tiktok",
		"subtitle_options": {"font_size": 40, "highlight_color": "&H0000FFFF"}
	}`

	var scene Scene
	if err := json.Unmarshal([]byte(raw), &scene); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if scene.SceneNumber != 2 || scene.Duration != 4.5 || scene.SubtitleStyle != "tiktok" {
		t.Errorf("scene = %+v", scene)
	}
	if scene.SubtitleOptions == nil || scene.SubtitleOptions.FontSize != 40 {
		t.Errorf("subtitle options = %+v", scene.SubtitleOptions)
	}
}

func TestWordJSONTags(t *testing.T) {
	raw := `{"text": "hello", "start": 120, "end": 480}`

	var word Word
	if err := json.Unmarshal([]byte(raw), &word); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if word.Text != "hello" || word.StartMs != 120 || word.EndMs != 480 {
		t.Errorf("word = %+v", word)
	}
}

func TestGenerateVideoRequestDefaultsAbsent(t *testing.T) {
	raw := `{"scenes": [{"scene_number": 1, "image_url": "https://i", "audio_url": "https://a"}]}`

	var req GenerateVideoRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.BackgroundVolume != nil {
		t.Error("absent background_volume should stay nil so the default applies downstream")
	}
	if req.Orientation != "" {
		t.Errorf("orientation = %q, want empty", req.Orientation)
	}
}
