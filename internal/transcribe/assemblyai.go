package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/bobarin/scenecast/internal/models"
)

const (
	assemblyAIBaseURL = "https://api.assemblyai.com/v2"

	// Polling cadence and ceiling for transcript completion. 150 attempts at
	// 2s covers a 5 minute job, far beyond any single scene narration.
	assemblyAIPollInterval = 2 * time.Second
	assemblyAIMaxPolls     = 150
)

// AssemblyAIService transcribes audio through the AssemblyAI REST API:
// upload the file, create a transcript job, poll until it settles.
type AssemblyAIService struct {
	apiKey  string
	baseURL string
	client  *http.Client

	// pollInterval is shortened in tests.
	pollInterval time.Duration
}

// NewAssemblyAIService creates an AssemblyAI-backed transcriber.
func NewAssemblyAIService(apiKey string) *AssemblyAIService {
	return &AssemblyAIService{
		apiKey:       apiKey,
		baseURL:      assemblyAIBaseURL,
		client:       &http.Client{Timeout: 60 * time.Second},
		pollInterval: assemblyAIPollInterval,
	}
}

type assemblyAIUploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type assemblyAITranscriptRequest struct {
	AudioURL     string `json:"audio_url"`
	Punctuate    bool   `json:"punctuate"`
	FormatText   bool   `json:"format_text"`
	Disfluencies bool   `json:"disfluencies"`
}

type assemblyAITranscriptResponse struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Error  string        `json:"error,omitempty"`
	Text   string        `json:"text,omitempty"`
	Words  []models.Word `json:"words,omitempty"`
}

// Transcribe uploads the local audio file and polls the transcript job to
// completion.
func (s *AssemblyAIService) Transcribe(ctx context.Context, audioPath string) (*models.Transcript, error) {
	uploadURL, err := s.upload(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio: %w", err)
	}

	transcriptID, err := s.createTranscript(ctx, uploadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript: %w", err)
	}

	log.Printf("[AssemblyAI] Transcript %s created, polling for completion", transcriptID)
	return s.poll(ctx, transcriptID)
}

func (s *AssemblyAIService) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", audioPath, err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload returned status %d: %s", resp.StatusCode, string(body))
	}

	var uploadResp assemblyAIUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploadResp.UploadURL == "" {
		return "", fmt.Errorf("upload response carried no upload_url")
	}
	return uploadResp.UploadURL, nil
}

func (s *AssemblyAIService) createTranscript(ctx context.Context, audioURL string) (string, error) {
	payload, err := json.Marshal(assemblyAITranscriptRequest{
		AudioURL:     audioURL,
		Punctuate:    true,
		FormatText:   true,
		Disfluencies: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcript request returned status %d: %s", resp.StatusCode, string(body))
	}

	var created assemblyAITranscriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode transcript response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("transcript response carried no id")
	}
	return created.ID, nil
}

func (s *AssemblyAIService) poll(ctx context.Context, transcriptID string) (*models.Transcript, error) {
	for attempt := 0; attempt < assemblyAIMaxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.pollInterval):
		}

		status, err := s.getTranscript(ctx, transcriptID)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "completed":
			return &models.Transcript{
				Text:  status.Text,
				Words: status.Words,
			}, nil
		case "error":
			return nil, fmt.Errorf("transcription failed: %s", status.Error)
		}
		// queued or processing: keep polling
	}

	return nil, fmt.Errorf("transcript %s did not complete within %d polls", transcriptID, assemblyAIMaxPolls)
}

func (s *AssemblyAIService) getTranscript(ctx context.Context, transcriptID string) (*assemblyAITranscriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/transcript/"+transcriptID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcript poll returned status %d: %s", resp.StatusCode, string(body))
	}

	var status assemblyAITranscriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode transcript status: %w", err)
	}
	return &status, nil
}
