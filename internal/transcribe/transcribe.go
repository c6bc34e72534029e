// Package transcribe turns narration audio into word-level timestamps.
package transcribe

import (
	"context"
	"sync"

	"github.com/bobarin/scenecast/internal/models"
)

// Transcriber produces a word-timestamped transcript for a local audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*models.Transcript, error)
}

// Cache memoizes transcripts across scenes of one process. Scenes frequently
// reuse the same narration track, so the key is the source audio URL, not the
// local path.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*models.Transcript
}

// NewCache returns an empty transcript cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*models.Transcript)}
}

// Get returns the cached transcript for the audio URL, if any.
func (c *Cache) Get(audioURL string) (*models.Transcript, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.entries[audioURL]
	return t, ok
}

// Put stores the transcript for the audio URL. Nil transcripts are not
// stored; a failed transcription should be retried, not remembered.
func (c *Cache) Put(audioURL string, t *models.Transcript) {
	if t == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[audioURL] = t
}

// Len reports how many transcripts are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
