package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/bobarin/scenecast/internal/models"
	"github.com/bobarin/scenecast/internal/queue"
	"github.com/bobarin/scenecast/internal/subtitles"
	"github.com/bobarin/scenecast/internal/transcribe"
)

type statusWrite struct {
	processID string
	status    models.ProcessStatus
	details   models.JSONB
}

type fakeStore struct {
	writes []statusWrite
}

func (f *fakeStore) UpsertProcessStatus(ctx context.Context, processID string, status models.ProcessStatus, details models.JSONB) error {
	f.writes = append(f.writes, statusWrite{processID, status, details})
	return nil
}

func (f *fakeStore) CreateVideo(ctx context.Context, video *models.Video) error { return nil }

func (f *fakeStore) UpdateVideoURL(ctx context.Context, processID, videoURL string) error {
	return nil
}

func TestHandleRenderVideoMissingRequest(t *testing.T) {
	store := &fakeStore{}
	w := &Worker{db: store}

	job := &queue.Job{ID: uuid.New(), Type: "render_video", ProcessID: "proc-1"}
	err := w.handleRenderVideo(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for a job without a request")
	}

	// The process must end up in a terminal state, not stay queued.
	if len(store.writes) != 1 {
		t.Fatalf("status writes = %d, want 1", len(store.writes))
	}
	last := store.writes[0]
	if last.processID != "proc-1" || last.status != models.ProcessStatusFailed {
		t.Errorf("recorded %s/%s, want proc-1/%s", last.processID, last.status, models.ProcessStatusFailed)
	}
	if _, ok := last.details["error"]; !ok {
		t.Error("failed status carries no error detail")
	}
}

func TestResolveSceneStyle(t *testing.T) {
	req := &models.GenerateVideoRequest{
		SubtitleStyle:    "tiktok",
		SubtitlePosition: "top",
		SubtitleOptions:  &models.StyleOverrides{FontSize: 48},
	}

	t.Run("request defaults apply", func(t *testing.T) {
		style := resolveSceneStyle(req, models.Scene{})
		if style.FontName != "Segoe UI Black" {
			t.Errorf("font = %q, want tiktok preset font", style.FontName)
		}
		if style.FontSize != 48 {
			t.Errorf("size = %d, want request override 48", style.FontSize)
		}
		if style.Alignment != subtitles.AlignTop {
			t.Errorf("alignment = %d, want top from subtitle_position", style.Alignment)
		}
	})

	t.Run("scene style name wins", func(t *testing.T) {
		style := resolveSceneStyle(req, models.Scene{SubtitleStyle: "movie"})
		if style.FontName != "Times New Roman" {
			t.Errorf("font = %q, want movie preset font", style.FontName)
		}
		// Request-level overrides still apply on top of the scene preset.
		if style.FontSize != 48 {
			t.Errorf("size = %d, want request override 48", style.FontSize)
		}
	})

	t.Run("scene overrides beat request overrides", func(t *testing.T) {
		style := resolveSceneStyle(req, models.Scene{
			SubtitleOptions: &models.StyleOverrides{FontSize: 20, Position: "center"},
		})
		if style.FontSize != 20 {
			t.Errorf("size = %d, want scene override 20", style.FontSize)
		}
		if style.Alignment != subtitles.AlignCenter {
			t.Errorf("alignment = %d, want center from scene override", style.Alignment)
		}
	})

	t.Run("everything empty falls back to default", func(t *testing.T) {
		style := resolveSceneStyle(&models.GenerateVideoRequest{}, models.Scene{})
		if style.FontName != "Roboto Bold" {
			t.Errorf("font = %q, want default preset font", style.FontName)
		}
		if style.Alignment != subtitles.AlignBottom {
			t.Errorf("alignment = %d, want bottom", style.Alignment)
		}
	})

	t.Run("style name via overrides record", func(t *testing.T) {
		style := resolveSceneStyle(&models.GenerateVideoRequest{
			SubtitleOptions: &models.StyleOverrides{StyleName: "neon"},
		}, models.Scene{})
		if style.FontName != "Impact" {
			t.Errorf("font = %q, want neon preset font", style.FontName)
		}
	})
}

func TestNarrativeText(t *testing.T) {
	if got := narrativeText(models.Scene{NarrativeText: "display", Text: "spoken"}); got != "display" {
		t.Errorf("got %q, want narrative text preferred", got)
	}
	if got := narrativeText(models.Scene{Text: "spoken"}); got != "spoken" {
		t.Errorf("got %q, want spoken text fallback", got)
	}
	if got := narrativeText(models.Scene{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

type fakeTranscriber struct {
	calls      int
	transcript *models.Transcript
	err        error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (*models.Transcript, error) {
	f.calls++
	return f.transcript, f.err
}

func TestTranscribeCached(t *testing.T) {
	fake := &fakeTranscriber{
		transcript: &models.Transcript{Words: []models.Word{{Text: "hi", StartMs: 0, EndMs: 300}}},
	}
	w := &Worker{transcriber: fake, cache: transcribe.NewCache()}

	for i := 0; i < 3; i++ {
		got, err := w.transcribeCached(context.Background(), "https://cdn.example.com/a.mp3", "/tmp/a.mp3")
		if err != nil {
			t.Fatalf("transcribeCached: %v", err)
		}
		if got != fake.transcript {
			t.Fatalf("unexpected transcript %+v", got)
		}
	}
	if fake.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cache hit on repeats)", fake.calls)
	}

	// A different URL misses the cache.
	if _, err := w.transcribeCached(context.Background(), "https://cdn.example.com/b.mp3", "/tmp/b.mp3"); err != nil {
		t.Fatal(err)
	}
	if fake.calls != 2 {
		t.Errorf("provider called %d times, want 2", fake.calls)
	}
}

func TestTranscribeCachedErrorNotCached(t *testing.T) {
	fake := &fakeTranscriber{err: errors.New("provider down")}
	w := &Worker{transcriber: fake, cache: transcribe.NewCache()}

	for i := 0; i < 2; i++ {
		if _, err := w.transcribeCached(context.Background(), "https://cdn.example.com/a.mp3", "/tmp/a.mp3"); err == nil {
			t.Fatal("expected error")
		}
	}
	if fake.calls != 2 {
		t.Errorf("provider called %d times, want 2 (failures are retried, not cached)", fake.calls)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "x", "y"); got != "x" {
		t.Errorf("got %q", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Errorf("got %q", got)
	}
}
