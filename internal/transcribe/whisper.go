package transcribe

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bobarin/scenecast/internal/models"
)

// WhisperService transcribes audio with OpenAI's Whisper API, requesting
// word-level timestamps. Whisper reports times in seconds, which are
// converted to the millisecond form the subtitle builder expects.
type WhisperService struct {
	client *openai.Client
}

// NewWhisperService creates a Whisper-backed transcriber.
func NewWhisperService(apiKey string) *WhisperService {
	return &WhisperService{client: openai.NewClient(apiKey)}
}

// Transcribe sends the local audio file to Whisper and converts the verbose
// response into the common transcript form.
func (s *WhisperService) Transcribe(ctx context.Context, audioPath string) (*models.Transcript, error) {
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	words := make([]models.Word, 0, len(resp.Words))
	for _, w := range resp.Words {
		words = append(words, models.Word{
			Text:    w.Word,
			StartMs: int(w.Start * 1000),
			EndMs:   int(w.End * 1000),
		})
	}

	return &models.Transcript{
		Text:  resp.Text,
		Words: words,
	}, nil
}
