package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ErrNothingToCompose is returned when composition is requested with zero
// clips.
var ErrNothingToCompose = errors.New("no clips to compose")

// TransitionDuration is the cross-fade overlap between adjacent clips in
// seconds. Each transition shortens the total by this much.
const TransitionDuration = 0.5

// Clip is one rendered scene segment entering composition, in final order.
type Clip struct {
	Path        string
	DurationSec float64
}

// TotalDuration returns the expected duration of the composed video: the sum
// of clip durations minus one transition overlap per join.
func TotalDuration(clips []Clip) float64 {
	var total float64
	for _, c := range clips {
		total += c.DurationSec
	}
	if n := len(clips); n > 1 {
		total -= TransitionDuration * float64(n-1)
	}
	return total
}

// Compose joins the clips into the final video with cross-fade transitions,
// optionally mixing a background audio track under the narration at the
// given volume. If the cross-fade path fails, one plain-concatenation
// fallback is attempted; the fallback has hard cuts and no background track.
func (s *Service) Compose(ctx context.Context, clips []Clip, bgAudioPath string, bgVolume float64, outputPath string) error {
	if len(clips) == 0 {
		return ErrNothingToCompose
	}

	if len(clips) == 1 && bgAudioPath == "" {
		// Nothing to join or mix: stream-copy the single clip.
		args := []string{"-i", clips[0].Path, "-c", "copy", "-movflags", "+faststart", "-y", outputPath}
		if err := s.run(ctx, "ffmpeg", args...); err != nil {
			return fmt.Errorf("ffmpeg single clip copy failed: %w", err)
		}
		return nil
	}

	if err := s.composeCrossfade(ctx, clips, bgAudioPath, bgVolume, outputPath); err != nil {
		log.Printf("[Compose] Crossfade composition failed (%v), falling back to plain concatenation", err)
		if fbErr := s.composeConcat(ctx, clips, outputPath); fbErr != nil {
			return fmt.Errorf("crossfade composition failed: %v; concat fallback failed: %w", err, fbErr)
		}
		log.Printf("[Compose] Concatenation fallback succeeded for %s", outputPath)
	}
	return nil
}

// composeCrossfade is the primary path: an xfade/acrossfade chain joining
// adjacent clips with a half-second overlap, plus an optional background
// audio mix.
func (s *Service) composeCrossfade(ctx context.Context, clips []Clip, bgAudioPath string, bgVolume float64, outputPath string) error {
	var g Graph

	videoLabel := "0:v"
	audioLabel := "0:a"

	// Each xfade starts where the accumulated output would end, minus the
	// overlap consumed by the transitions so far.
	elapsed := clips[0].DurationSec
	for i := 1; i < len(clips); i++ {
		offset := elapsed - TransitionDuration*float64(i)

		vOut := fmt.Sprintf("v%d", i)
		g.Node(
			fmt.Sprintf("xfade=transition=fade:duration=%s:offset=%s",
				formatSeconds(TransitionDuration), formatSeconds(offset)),
			[]string{videoLabel, fmt.Sprintf("%d:v", i)},
			vOut,
		)
		videoLabel = vOut

		aOut := fmt.Sprintf("a%d", i)
		g.Node(
			fmt.Sprintf("acrossfade=d=%s", formatSeconds(TransitionDuration)),
			[]string{audioLabel, fmt.Sprintf("%d:a", i)},
			aOut,
		)
		audioLabel = aOut

		elapsed += clips[i].DurationSec
	}

	args := []string{}
	for _, c := range clips {
		args = append(args, "-i", c.Path)
	}

	if bgAudioPath != "" {
		if bgVolume < 0 {
			bgVolume = 0
		}
		if bgVolume > 1 {
			bgVolume = 1
		}
		args = append(args, "-i", bgAudioPath)

		mixed := "amixed"
		g.Node(
			fmt.Sprintf("amix=inputs=2:duration=longest:weights=%g %g", 1-bgVolume, bgVolume),
			[]string{audioLabel, fmt.Sprintf("%d:a", len(clips))},
			mixed,
		)
		audioLabel = mixed
	}

	if err := g.Validate(); err != nil {
		return fmt.Errorf("composition filter graph invalid: %w", err)
	}

	videoMap := videoLabel
	if !strings.Contains(videoMap, ":") {
		videoMap = "[" + videoMap + "]"
	}
	audioMap := audioLabel
	if !strings.Contains(audioMap, ":") {
		audioMap = "[" + audioMap + "]"
	}

	args = append(args,
		"-filter_complex", g.Render(),
		"-map", videoMap,
		"-map", audioMap,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
	)
	if bgAudioPath != "" {
		// The mix runs for the longest input; cut the file at video end so a
		// long background track cannot trail past the last scene.
		args = append(args, "-shortest")
	}
	args = append(args, "-y", outputPath)

	if err := s.run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg crossfade composition failed: %w", err)
	}
	return nil
}

// composeConcat is the fallback path: the concat demuxer with stream-copied
// video. It requires uniformly encoded clips, which the scene renderer
// guarantees.
func (s *Service) composeConcat(ctx context.Context, clips []Clip, outputPath string) error {
	listPath := filepath.Join(filepath.Dir(outputPath), "concat_list.txt")

	var sb strings.Builder
	for _, c := range clips {
		sb.WriteString(fmt.Sprintf("file '%s'\n", strings.ReplaceAll(c.Path, "'", `'\''`)))
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}

	if err := s.run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}
	return nil
}
