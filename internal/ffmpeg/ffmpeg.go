// Package ffmpeg wraps the ffmpeg/ffprobe binaries for scene clip rendering
// and final video composition.
package ffmpeg

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bobarin/scenecast/internal/models"
)

// Output resolution per orientation, 16:9 or 9:16.
const (
	landscapeWidth  = 1280
	landscapeHeight = 720
	portraitWidth   = 720
	portraitHeight  = 1280
)

type runFunc func(ctx context.Context, name string, args ...string) error
type captureFunc func(ctx context.Context, name string, args ...string) (string, error)

// Service shells out to ffmpeg and ffprobe. The exec functions are swappable
// so argument construction and fallback behavior are testable without the
// binaries installed.
type Service struct {
	tempDir string
	run     runFunc
	capture captureFunc
}

// NewService creates the service and its temp directory.
func NewService(tempDir string) *Service {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		panic(fmt.Sprintf("failed to create temp dir: %v", err))
	}

	return &Service{
		tempDir: tempDir,
		run:     runCommand,
		capture: captureCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func captureCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	return string(out), err
}

// TempPath joins path elements under the service temp directory.
func (s *Service) TempPath(elem ...string) string {
	return filepath.Join(append([]string{s.tempDir}, elem...)...)
}

// ProbeDuration returns the media duration in seconds via ffprobe.
func (s *Service) ProbeDuration(ctx context.Context, mediaPath string) (float64, error) {
	out, err := s.capture(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", mediaPath, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparseable duration %q for %s: %w", strings.TrimSpace(out), mediaPath, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("ffprobe returned non-positive duration %f for %s", duration, mediaPath)
	}
	return duration, nil
}

// Resolution returns the output width and height for an orientation.
// Anything but portrait renders landscape.
func Resolution(orientation models.Orientation) (int, int) {
	if orientation == models.OrientationPortrait {
		return portraitWidth, portraitHeight
	}
	return landscapeWidth, landscapeHeight
}

// RenderImageClip renders a still image plus narration audio into one video
// clip of the given duration. The image is scaled to fit the orientation's
// frame and letterboxed when aspect ratios differ.
func (s *Service) RenderImageClip(ctx context.Context, imagePath, audioPath, outputPath string, durationSec float64, orientation models.Orientation) error {
	width, height := Resolution(orientation)
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		width, height, width, height,
	)

	args := []string{
		"-loop", "1",
		"-t", formatSeconds(durationSec),
		"-i", imagePath,
		"-i", audioPath,
		"-vf", vf,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}

	if err := s.run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg render clip failed: %w", err)
	}
	return nil
}

// RenderSilentClip renders a still image into a video clip with a silent
// audio track, so silent scenes concatenate cleanly with narrated ones.
func (s *Service) RenderSilentClip(ctx context.Context, imagePath, outputPath string, durationSec float64, orientation models.Orientation) error {
	width, height := Resolution(orientation)
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		width, height, width, height,
	)

	args := []string{
		"-loop", "1",
		"-t", formatSeconds(durationSec),
		"-i", imagePath,
		"-f", "lavfi",
		"-t", formatSeconds(durationSec),
		"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
		"-vf", vf,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}

	if err := s.run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg render silent clip failed: %w", err)
	}
	return nil
}

// BurnSubtitles re-encodes the clip video with the ASS script burned in,
// copying the audio stream untouched.
func (s *Service) BurnSubtitles(ctx context.Context, inputPath, subtitlePath, outputPath string) error {
	log.Printf("[FFmpeg] Burning in subtitles from %s", subtitlePath)

	args := []string{
		"-i", inputPath,
		"-vf", fmt.Sprintf("ass='%s'", escapeFilterPath(subtitlePath)),
		"-c:v", "libx264",
		"-c:a", "copy",
		"-y",
		outputPath,
	}

	if err := s.run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg subtitle burn failed: %w", err)
	}
	return nil
}

// escapeFilterPath escapes special characters in file paths for FFmpeg
// filter syntax. Filter strings treat colons, backslashes, and single quotes
// specially.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "'\\''")
	return path
}

// formatSeconds renders a duration for the command line without float noise.
func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64)
}
