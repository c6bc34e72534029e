package worker

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/bobarin/scenecast/internal/ffmpeg"
	"github.com/bobarin/scenecast/internal/models"
	"github.com/bobarin/scenecast/internal/subtitles"
)

// renderScene turns one scene into an encoded clip: base render, subtitle
// document, burn-in. Subtitle problems degrade the clip, never fail it; only
// base rendering errors propagate.
func (w *Worker) renderScene(ctx context.Context, req *models.GenerateVideoRequest, scene models.Scene, index int, assets sceneAssets, workDir string) (ffmpeg.Clip, error) {
	durationSec := scene.Duration
	if durationSec <= 0 {
		if assets.audioPath == "" {
			return ffmpeg.Clip{}, fmt.Errorf("scene %d has neither duration nor audio", index)
		}
		probed, err := w.ffmpeg.ProbeDuration(ctx, assets.audioPath)
		if err != nil {
			return ffmpeg.Clip{}, fmt.Errorf("scene %d duration probe failed: %w", index, err)
		}
		durationSec = probed
	}

	orientation := scene.Orientation
	if orientation == "" {
		orientation = req.Orientation
	}
	if orientation == "" {
		orientation = models.OrientationLandscape
	}

	basePath := fmt.Sprintf("%s/clip_%d_base.mp4", workDir, index)
	if assets.audioPath == "" {
		if err := w.ffmpeg.RenderSilentClip(ctx, assets.imagePath, basePath, durationSec, orientation); err != nil {
			return ffmpeg.Clip{}, fmt.Errorf("scene %d render failed: %w", index, err)
		}
	} else {
		if err := w.ffmpeg.RenderImageClip(ctx, assets.imagePath, assets.audioPath, basePath, durationSec, orientation); err != nil {
			return ffmpeg.Clip{}, fmt.Errorf("scene %d render failed: %w", index, err)
		}
	}

	doc := w.buildSubtitleDocument(ctx, req, scene, assets, durationSec)
	if doc.IsEmpty() {
		return ffmpeg.Clip{Path: basePath, DurationSec: durationSec}, nil
	}

	assPath := fmt.Sprintf("%s/subtitles_%d.ass", workDir, index)
	if err := os.WriteFile(assPath, doc.Render(), 0644); err != nil {
		log.Printf("[Worker] Scene %d: failed to write subtitle file (%v), using unsubtitled clip", index, err)
		return ffmpeg.Clip{Path: basePath, DurationSec: durationSec}, nil
	}

	finalPath := fmt.Sprintf("%s/clip_%d.mp4", workDir, index)
	if err := w.ffmpeg.BurnSubtitles(ctx, basePath, assPath, finalPath); err != nil {
		// Burn failures degrade to the unsubtitled clip.
		log.Printf("[Worker] Scene %d: subtitle burn failed (%v), using unsubtitled clip", index, err)
		return ffmpeg.Clip{Path: basePath, DurationSec: durationSec}, nil
	}

	return ffmpeg.Clip{Path: finalPath, DurationSec: durationSec}, nil
}

// buildSubtitleDocument resolves the scene's style and produces its subtitle
// document. Preference order: word-timed subtitles from transcription, then
// narrative text spread over the scene, then none.
func (w *Worker) buildSubtitleDocument(ctx context.Context, req *models.GenerateVideoRequest, scene models.Scene, assets sceneAssets, durationSec float64) *subtitles.Document {
	style := resolveSceneStyle(req, scene)
	durationMs := int(durationSec * 1000)

	if w.transcriber != nil && scene.AudioURL != "" && assets.audioPath != "" {
		transcript, err := w.transcribeCached(ctx, scene.AudioURL, assets.audioPath)
		if err != nil {
			log.Printf("[Worker] Transcription of %s failed (%v), falling back to narrative text", scene.AudioURL, err)
		} else if words := transcript.AllWords(); len(words) > 0 {
			return subtitles.FromTranscript(words, style, subtitles.ModeFor(style))
		}
	}

	if text := narrativeText(scene); text != "" {
		return subtitles.FromNarrative(text, durationMs, style)
	}
	return &subtitles.Document{}
}

// transcribeCached memoizes transcripts by source audio URL so scenes that
// share a narration track transcribe once.
func (w *Worker) transcribeCached(ctx context.Context, audioURL, audioPath string) (*models.Transcript, error) {
	if cached, ok := w.cache.Get(audioURL); ok {
		return cached, nil
	}

	transcript, err := w.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	w.cache.Put(audioURL, transcript)
	return transcript, nil
}

// narrativeText picks the display text for the no-transcription fallback.
func narrativeText(scene models.Scene) string {
	if scene.NarrativeText != "" {
		return scene.NarrativeText
	}
	return scene.Text
}

// resolveSceneStyle merges the style layers for one scene: preset, then
// request-level overrides, then scene-level overrides.
func resolveSceneStyle(req *models.GenerateVideoRequest, scene models.Scene) subtitles.Style {
	styleName := firstNonEmpty(
		scene.SubtitleStyle,
		overrideStyleName(scene.SubtitleOptions),
		req.SubtitleStyle,
		overrideStyleName(req.SubtitleOptions),
		"default",
	)

	global := req.SubtitleOptions
	if req.SubtitlePosition != "" && (global == nil || global.Position == "") {
		merged := models.StyleOverrides{Position: req.SubtitlePosition}
		if global != nil {
			merged = *global
			merged.Position = req.SubtitlePosition
		}
		global = &merged
	}

	return subtitles.Resolve(styleName, global, scene.SubtitleOptions)
}

func overrideStyleName(o *models.StyleOverrides) string {
	if o == nil {
		return ""
	}
	return o.StyleName
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
