// Package webhook delivers completion callbacks to caller-supplied URLs.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Notifier posts completion payloads. Delivery is best effort: the video is
// already published when the webhook fires, so a failed callback is logged
// and never fails the process.
type Notifier struct {
	client *http.Client
}

func NewNotifier() *Notifier {
	return &Notifier{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type completionPayload struct {
	ProcessID string `json:"process_id"`
	VideoURL  string `json:"video_url"`
}

// NotifyCompletion posts the published video URL to the webhook, if one was
// given.
func (n *Notifier) NotifyCompletion(ctx context.Context, webhookURL, processID, videoURL string) {
	if webhookURL == "" {
		return
	}

	if err := n.post(ctx, webhookURL, completionPayload{ProcessID: processID, VideoURL: videoURL}); err != nil {
		log.Printf("[Webhook] Delivery to %s failed for process %s: %v", webhookURL, processID, err)
		return
	}
	log.Printf("[Webhook] Delivered completion for process %s", processID)
}

func (n *Notifier) post(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
