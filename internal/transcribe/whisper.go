// Package transcribe calls the speech-to-text API for single audio files.
package transcribe

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const transcriptionPrompt = "This is an audio recording. Please transcribe accurately with proper punctuation."

// Whisper transcribes audio files through the OpenAI audio API. One call per
// file; files must already be under the API's payload ceiling.
type Whisper struct {
	client   *openai.Client
	model    string
	language string
	log      *logrus.Entry
}

// NewWhisper wires a transcriber. model defaults to whisper-1 and language
// may be empty for auto-detection.
func NewWhisper(client *openai.Client, model, language string, log *logrus.Entry) *Whisper {
	if model == "" {
		model = openai.Whisper1
	}
	return &Whisper{client: client, model: model, language: language, log: log}
}

func (w *Whisper) Transcribe(ctx context.Context, audioFile string) (string, error) {
	req := openai.AudioRequest{
		Model:       w.model,
		FilePath:    audioFile,
		Language:    w.language,
		Temperature: 0,
		Prompt:      transcriptionPrompt,
	}

	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription error: %w", err)
	}

	w.log.WithField("file", audioFile).Debug("transcribed audio file")
	return resp.Text, nil
}
