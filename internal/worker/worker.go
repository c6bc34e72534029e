// Package worker consumes render jobs and drives a request through download,
// per-scene rendering, composition, and publication.
package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bobarin/scenecast/internal/db"
	"github.com/bobarin/scenecast/internal/fetch"
	"github.com/bobarin/scenecast/internal/ffmpeg"
	"github.com/bobarin/scenecast/internal/models"
	"github.com/bobarin/scenecast/internal/pool"
	"github.com/bobarin/scenecast/internal/queue"
	"github.com/bobarin/scenecast/internal/storage"
	"github.com/bobarin/scenecast/internal/transcribe"
	"github.com/bobarin/scenecast/internal/webhook"
)

// processStore is the slice of the database the worker writes to. *db.DB
// satisfies it.
type processStore interface {
	UpsertProcessStatus(ctx context.Context, processID string, status models.ProcessStatus, details models.JSONB) error
	CreateVideo(ctx context.Context, video *models.Video) error
	UpdateVideoURL(ctx context.Context, processID, videoURL string) error
}

type Worker struct {
	db          processStore
	queue       *queue.Queue
	storage     *storage.Service
	fetcher     *fetch.Downloader
	transcriber transcribe.Transcriber // nil: word-level subtitles disabled
	cache       *transcribe.Cache
	ffmpeg      *ffmpeg.Service
	notifier    *webhook.Notifier

	downloadConcurrency int
	renderConcurrency   int
}

func New(
	database *db.DB,
	q *queue.Queue,
	stor *storage.Service,
	fetcher *fetch.Downloader,
	transcriber transcribe.Transcriber,
	cache *transcribe.Cache,
	ffmpegSvc *ffmpeg.Service,
	notifier *webhook.Notifier,
	downloadConcurrency, renderConcurrency int,
) *Worker {
	if cache == nil {
		cache = transcribe.NewCache()
	}
	if downloadConcurrency <= 0 {
		downloadConcurrency = 5
	}
	if renderConcurrency <= 0 {
		renderConcurrency = 3
	}

	return &Worker{
		db:                  database,
		queue:               q,
		storage:             stor,
		fetcher:             fetcher,
		transcriber:         transcriber,
		cache:               cache,
		ffmpeg:              ffmpegSvc,
		notifier:            notifier,
		downloadConcurrency: downloadConcurrency,
		renderConcurrency:   renderConcurrency,
	}
}

// Start begins processing render jobs until the context is canceled.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx, queue.QueueRenderVideo, w.handleRenderVideo)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context, queueName string, handler func(context.Context, *queue.Job) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, queueName, 5*time.Second)
			if err != nil {
				log.Printf("Error dequeuing from %s: %v", queueName, err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing job %s (type: %s, process: %s)", job.ID, job.Type, job.ProcessID)

			if err := handler(ctx, job); err != nil {
				log.Printf("Job %s failed: %v", job.ID, err)
			} else {
				log.Printf("Job %s completed successfully", job.ID)
			}
		}
	}
}

// handleRenderVideo renders one queued request end to end and records the
// outcome. Any failure marks the process failed; scene order is always
// preserved in the output.
func (w *Worker) handleRenderVideo(ctx context.Context, job *queue.Job) error {
	processID := job.ProcessID
	if job.Request == nil {
		// Still a terminal outcome: the process must not stay queued.
		return w.failProcess(ctx, processID, fmt.Errorf("job %s carries no request", job.ID))
	}

	if err := w.db.UpsertProcessStatus(ctx, processID, models.ProcessStatusProcessing, models.JSONB{
		"started_at": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("[Worker] Failed to mark process %s processing: %v", processID, err)
	}

	workDir := w.ffmpeg.TempPath(processID)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return w.failProcess(ctx, processID, fmt.Errorf("failed to create work dir: %w", err))
	}
	defer func() {
		// Best effort: leftovers in temp are harmless.
		if err := os.RemoveAll(workDir); err != nil {
			log.Printf("[Worker] Failed to clean up %s: %v", workDir, err)
		}
	}()

	videoURL, err := w.renderVideo(ctx, processID, job.Request, workDir)
	if err != nil {
		return w.failProcess(ctx, processID, err)
	}

	if err := w.db.UpsertProcessStatus(ctx, processID, models.ProcessStatusCompleted, models.JSONB{
		"video_url":    videoURL,
		"scenes_count": len(job.Request.Scenes),
	}); err != nil {
		log.Printf("[Worker] Failed to mark process %s completed: %v", processID, err)
	}

	w.notifier.NotifyCompletion(ctx, job.Request.WebhookURL, processID, videoURL)
	return nil
}

func (w *Worker) failProcess(ctx context.Context, processID string, err error) error {
	if dbErr := w.db.UpsertProcessStatus(ctx, processID, models.ProcessStatusFailed, models.JSONB{
		"error": err.Error(),
	}); dbErr != nil {
		log.Printf("[Worker] Failed to mark process %s failed: %v", processID, dbErr)
	}
	return err
}

// sceneAssets are the local paths of one scene's downloaded inputs.
type sceneAssets struct {
	audioPath string // empty when the scene has no narration
	imagePath string
}

// renderVideo is the pipeline body: download, render scenes, compose,
// publish. It returns the signed URL of the published video.
func (w *Worker) renderVideo(ctx context.Context, processID string, req *models.GenerateVideoRequest, workDir string) (string, error) {
	scenes := req.Scenes

	// Phase 1: download all remote assets with bounded parallelism.
	assets, bgAudioPath, err := w.downloadAssets(ctx, req, workDir)
	if err != nil {
		return "", fmt.Errorf("asset download failed: %w", err)
	}
	log.Printf("[Worker] Process %s: downloaded assets for %d scene(s)", processID, len(scenes))

	// Phase 2: render each scene to a clip, bounded, order preserved by the
	// pool's index alignment.
	tasks := make([]pool.Task[ffmpeg.Clip], len(scenes))
	for i := range scenes {
		i := i
		tasks[i] = func(ctx context.Context) (ffmpeg.Clip, error) {
			return w.renderScene(ctx, req, scenes[i], i, assets[i], workDir)
		}
	}

	clips, err := pool.Run(ctx, w.renderConcurrency, tasks)
	if err != nil {
		return "", fmt.Errorf("scene rendering failed: %w", err)
	}

	// Phase 3: compose the final video.
	outputPath := w.ffmpeg.TempPath(processID, "final.mp4")

	bgVolume := 0.1
	if req.BackgroundVolume != nil {
		bgVolume = *req.BackgroundVolume
	}

	if err := w.ffmpeg.Compose(ctx, clips, bgAudioPath, bgVolume, outputPath); err != nil {
		return "", fmt.Errorf("composition failed: %w", err)
	}
	log.Printf("[Worker] Process %s: composed %d clip(s), expected duration %.1fs",
		processID, len(clips), ffmpeg.TotalDuration(clips))

	// Phase 4: record and publish.
	orientation := req.Orientation
	if orientation == "" {
		orientation = models.OrientationLandscape
	}
	video := &models.Video{
		ProcessID:   processID,
		OutputPath:  outputPath,
		Orientation: orientation,
		ScenesCount: len(scenes),
	}
	if err := w.db.CreateVideo(ctx, video); err != nil {
		return "", err
	}

	key, err := w.storage.PublishFile(ctx, processID, outputPath)
	if err != nil {
		return "", fmt.Errorf("publish failed: %w", err)
	}

	videoURL, err := w.storage.SignedURL(ctx, key, storage.DefaultSignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign video URL: %w", err)
	}

	if err := w.db.UpdateVideoURL(ctx, processID, videoURL); err != nil {
		log.Printf("[Worker] Failed to store video URL for %s: %v", processID, err)
	}

	return videoURL, nil
}

// downloadAssets fetches every scene's audio and image, plus the optional
// background track, with bounded parallelism. Results are keyed by scene
// index.
func (w *Worker) downloadAssets(ctx context.Context, req *models.GenerateVideoRequest, workDir string) ([]sceneAssets, string, error) {
	assets := make([]sceneAssets, len(req.Scenes))

	type download struct {
		url  string
		dest string
	}
	var downloads []download

	for i, scene := range req.Scenes {
		assets[i].imagePath = fmt.Sprintf("%s/image_%d.jpg", workDir, i)
		downloads = append(downloads, download{scene.ImageURL, assets[i].imagePath})

		if scene.AudioURL != "" {
			assets[i].audioPath = fmt.Sprintf("%s/audio_%d.mp3", workDir, i)
			downloads = append(downloads, download{scene.AudioURL, assets[i].audioPath})
		}
	}

	bgAudioPath := ""
	if req.BgAudioURL != "" {
		bgAudioPath = fmt.Sprintf("%s/background.mp3", workDir)
		downloads = append(downloads, download{req.BgAudioURL, bgAudioPath})
	}

	tasks := make([]pool.Task[struct{}], len(downloads))
	for i, dl := range downloads {
		dl := dl
		tasks[i] = func(ctx context.Context) (struct{}, error) {
			return struct{}{}, w.fetcher.Download(ctx, dl.url, dl.dest)
		}
	}

	if _, err := pool.Run(ctx, w.downloadConcurrency, tasks); err != nil {
		return nil, "", err
	}
	return assets, bgAudioPath, nil
}
