package transcribe

import (
	"context"
	"fmt"
)

// Disabled returns an ITranscriber for deployments without a transcription
// API key. Every call fails with ErrTranscription.
func Disabled() ITranscriber {
	return disabledTranscriber{}
}

type disabledTranscriber struct{}

func (disabledTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return "", fmt.Errorf("%w: transcription is not configured", ErrTranscription)
}
