package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bobarin/scenecast/internal/db"
	"github.com/bobarin/scenecast/internal/models"
	"github.com/bobarin/scenecast/internal/queue"
	"github.com/bobarin/scenecast/internal/storage"
	"github.com/bobarin/scenecast/internal/subtitles"
)

type Handler struct {
	db      *db.DB
	queue   *queue.Queue
	storage *storage.Service
}

func NewHandler(database *db.DB, q *queue.Queue, stor *storage.Service) *Handler {
	return &Handler{
		db:      database,
		queue:   q,
		storage: stor,
	}
}

// GenerateVideo handles POST /v1/generate-video. The request is validated,
// recorded as queued, and handed to the worker; rendering happens
// asynchronously and the response carries the process ID to poll.
func (h *Handler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validateRequest(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Set defaults
	if req.Orientation == "" {
		req.Orientation = models.OrientationLandscape
	}
	if req.BackgroundVolume == nil {
		v := 0.1
		req.BackgroundVolume = &v
	}

	processID := uuid.New().String()

	if err := h.db.UpsertProcessStatus(r.Context(), processID, models.ProcessStatusQueued, models.JSONB{
		"scenes_count": len(req.Scenes),
	}); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to record process")
		return
	}

	if err := h.queue.EnqueueRenderVideo(r.Context(), processID, &req); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, models.GenerateVideoResponse{
		Success:   true,
		Message:   "Video generation queued",
		ProcessID: processID,
		Status:    models.ProcessStatusQueued,
	})
}

func validateRequest(req *models.GenerateVideoRequest) error {
	if len(req.Scenes) == 0 {
		return fmt.Errorf("at least one scene is required")
	}
	for i, scene := range req.Scenes {
		if scene.ImageURL == "" {
			return fmt.Errorf("scene %d is missing image_url", i)
		}
		if scene.AudioURL == "" && scene.Duration <= 0 {
			return fmt.Errorf("scene %d needs audio_url or a positive duration", i)
		}
	}
	if req.Orientation != "" && !req.Orientation.Valid() {
		return fmt.Errorf("orientation must be landscape or portrait")
	}
	if v := req.BackgroundVolume; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("background_volume must be between 0 and 1")
	}
	return nil
}

// GetStatus handles GET /v1/status/{processId}
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	processID := chi.URLParam(r, "processId")

	rec, err := h.db.GetProcessStatus(r.Context(), processID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Process not found")
		return
	}

	respondJSON(w, http.StatusOK, models.StatusResponse{
		Success:   true,
		ProcessID: rec.ProcessID,
		Status:    rec.Status,
		UpdatedAt: rec.UpdatedAt,
		Details:   rec.Details,
	})
}

// ListStatuses handles GET /v1/statuses
func (h *Handler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.db.ListProcessStatuses(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list processes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"processes": records,
	})
}

// GetVideoURL handles GET /v1/video-url/{processId}. A fresh signed link is
// issued on every call, since previously handed-out links expire.
func (h *Handler) GetVideoURL(w http.ResponseWriter, r *http.Request) {
	processID := chi.URLParam(r, "processId")

	video, err := h.db.GetVideo(r.Context(), processID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Video not found")
		return
	}

	key := storage.ObjectKey(video.ProcessID, video.OutputPath)
	url, err := h.storage.SignedURL(r.Context(), key, storage.DefaultSignedURLExpiry)
	if err != nil {
		// Fall back to the URL recorded at publish time, if any.
		if video.VideoURL != nil && *video.VideoURL != "" {
			respondJSON(w, http.StatusOK, models.VideoURLResponse{Success: true, URL: *video.VideoURL})
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to sign video URL")
		return
	}

	respondJSON(w, http.StatusOK, models.VideoURLResponse{Success: true, URL: url})
}

// ListSubtitleStyles handles GET /v1/subtitle-styles
func (h *Handler) ListSubtitleStyles(w http.ResponseWriter, r *http.Request) {
	names := subtitles.PresetNames()
	sort.Strings(names)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"styles":  names,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
