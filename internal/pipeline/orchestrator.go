package pipeline

import (
	"context"
	"fmt"
	"strings"

	"audiopipe/internal/artifact"
)

// ChunkResult is one segment's transcription outcome.
type ChunkResult struct {
	Index int
	Text  string
}

// transcribeAll submits every item to the transcriber strictly in index
// order. The first failure aborts the run: remaining segments are not
// attempted and partial text is discarded. Progress notifications are
// best-effort and never fail the run.
func (p *Pipeline) transcribeAll(ctx context.Context, items []*artifact.Artifact) (string, error) {
	results := make([]ChunkResult, 0, len(items))

	for i, item := range items {
		text, err := p.transcriber.Transcribe(ctx, item.Path)
		if err != nil {
			return "", transcribeError(i, err)
		}

		p.notifyProgress(ctx, fmt.Sprintf("transcribing segment %d/%d", i+1, len(items)))
		results = append(results, ChunkResult{Index: i, Text: text})

		if p.metrics != nil {
			p.metrics.ChunksTranscribed.Inc()
		}
	}

	return mergeChunks(results), nil
}

// mergeChunks concatenates chunk texts in index order with exactly one blank
// line between adjacent chunks.
func mergeChunks(results []ChunkResult) string {
	parts := make([]string, len(results))
	for _, r := range results {
		parts[r.Index] = r.Text
	}
	return strings.Join(parts, "\n\n")
}

func (p *Pipeline) notifyProgress(ctx context.Context, message string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, message); err != nil {
		p.log.WithError(err).Warn("progress notification dropped")
	}
}
