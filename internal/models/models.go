package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Enums
type ProcessStatus string

const (
	ProcessStatusQueued     ProcessStatus = "queued"
	ProcessStatusProcessing ProcessStatus = "processing"
	ProcessStatusCompleted  ProcessStatus = "completed"
	ProcessStatusFailed     ProcessStatus = "failed"
)

// Terminal reports whether the status is final. Terminal statuses are never
// overwritten by later updates.
func (s ProcessStatus) Terminal() bool {
	return s == ProcessStatusCompleted || s == ProcessStatusFailed
}

type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// Valid reports whether the orientation is one of the accepted values.
func (o Orientation) Valid() bool {
	return o == OrientationLandscape || o == OrientationPortrait
}

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Models

// Scene is one image+audio(+text) unit contributing one segment to the
// final video. Scene order in the request defines final video order.
type Scene struct {
	SceneNumber     int             `json:"scene_number"`
	Text            string          `json:"text,omitempty"`
	NarrativeText   string          `json:"narrative_text,omitempty"`
	AudioURL        string          `json:"audio_url,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	Duration        float64         `json:"duration,omitempty"` // seconds; probed from audio when zero
	Orientation     Orientation     `json:"orientation,omitempty"`
	SubtitleStyle   string          `json:"subtitle_style,omitempty"`
	SubtitleOptions *StyleOverrides `json:"subtitle_options,omitempty"`
}

// StyleOverrides is a partial subtitle style record. Absent fields keep the
// preset value; present fields win over the preset and, at scene level, over
// the request-global overrides.
type StyleOverrides struct {
	StyleName       string `json:"style_name,omitempty"`
	FontName        string `json:"font_name,omitempty"`
	FontSize        int    `json:"font_size,omitempty"`
	Color           string `json:"color,omitempty"`
	HighlightColor  string `json:"highlight_color,omitempty"`
	OutlineColor    string `json:"outline_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	Animation       string `json:"animation,omitempty"`
	Position        string `json:"position,omitempty"` // top, center, bottom
}

// Word is one transcribed token with its span in milliseconds.
type Word struct {
	Text    string `json:"text"`
	StartMs int    `json:"start"`
	EndMs   int    `json:"end"`
}

// Utterance groups words the way some transcription providers return them.
type Utterance struct {
	Words []Word `json:"words"`
}

// Transcript is the time-stamped word sequence for one audio track. Either
// Words or Utterances is populated depending on the provider; AllWords
// flattens to the single ordered sequence the subtitle builder consumes.
type Transcript struct {
	Text       string      `json:"text,omitempty"`
	Words      []Word      `json:"words,omitempty"`
	Utterances []Utterance `json:"utterances,omitempty"`
}

// AllWords returns the flattened, ordered word sequence.
func (t *Transcript) AllWords() []Word {
	if t == nil {
		return nil
	}
	if len(t.Utterances) > 0 {
		var words []Word
		for _, u := range t.Utterances {
			words = append(words, u.Words...)
		}
		return words
	}
	return t.Words
}

// ProcessRecord is the externally visible state of one render request.
type ProcessRecord struct {
	ProcessID string        `json:"process_id"`
	Status    ProcessStatus `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
	Details   JSONB         `json:"details,omitempty"`
}

// Video is the persisted record of one composed output.
type Video struct {
	ProcessID   string      `json:"process_id"`
	OutputPath  string      `json:"output_path"`
	Orientation Orientation `json:"orientation"`
	ScenesCount int         `json:"scenes_count"`
	VideoURL    *string     `json:"video_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// DTOs for API requests/responses

type GenerateVideoRequest struct {
	Scenes           []Scene         `json:"scenes"`
	BgAudioURL       string          `json:"bg_audio_url,omitempty"`
	BackgroundVolume *float64        `json:"background_volume,omitempty"` // 0..1, default 0.1
	Orientation      Orientation     `json:"orientation,omitempty"`       // default landscape
	SubtitleStyle    string          `json:"subtitle_style,omitempty"`
	SubtitlePosition string          `json:"subtitle_position,omitempty"`
	SubtitleOptions  *StyleOverrides `json:"subtitle_options,omitempty"`
	WebhookURL       string          `json:"webhook_url,omitempty"`
}

type GenerateVideoResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	ProcessID string        `json:"process_id"`
	Status    ProcessStatus `json:"status"`
}

type StatusResponse struct {
	Success   bool          `json:"success"`
	ProcessID string        `json:"process_id"`
	Status    ProcessStatus `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
	Details   JSONB         `json:"details,omitempty"`
}

type VideoURLResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}
