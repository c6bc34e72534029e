package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobarin/scenecast/internal/api"
	"github.com/bobarin/scenecast/internal/config"
	"github.com/bobarin/scenecast/internal/db"
	"github.com/bobarin/scenecast/internal/fetch"
	"github.com/bobarin/scenecast/internal/ffmpeg"
	"github.com/bobarin/scenecast/internal/queue"
	"github.com/bobarin/scenecast/internal/storage"
	"github.com/bobarin/scenecast/internal/transcribe"
	"github.com/bobarin/scenecast/internal/webhook"
	"github.com/bobarin/scenecast/internal/worker"
)

func main() {
	log.Println("Starting Scenecast API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to Redis queue
	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	// Initialize object storage
	stor, err := storage.NewService(context.Background(), storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Initialized object storage (bucket: %s)", cfg.S3Bucket)

	// Create API handler
	handler := api.NewHandler(database, q, stor)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		ffmpegSvc := ffmpeg.NewService(cfg.TempDir)
		fetcher := fetch.NewDownloader()
		notifier := webhook.NewNotifier()

		// Transcription provider — AssemblyAI preferred, Whisper as fallback.
		// Without either key, subtitles use narrative-text timing instead.
		var transcriber transcribe.Transcriber
		switch {
		case cfg.AssemblyAIKey != "":
			transcriber = transcribe.NewAssemblyAIService(cfg.AssemblyAIKey)
			log.Println("Transcription provider: AssemblyAI")
		case cfg.OpenAIKey != "":
			transcriber = transcribe.NewWhisperService(cfg.OpenAIKey)
			log.Println("Transcription provider: OpenAI Whisper")
		default:
			log.Println("No transcription key set — word-level subtitles disabled")
		}

		w := worker.New(
			database, q, stor,
			fetcher, transcriber, transcribe.NewCache(),
			ffmpegSvc, notifier,
			cfg.DownloadConcurrency, cfg.RenderConcurrency,
		)

		// Start worker in background
		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
