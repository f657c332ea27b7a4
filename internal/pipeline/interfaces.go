package pipeline

import (
	"context"
	"time"
)

// Transcoder is the external audio tooling the pipeline shells out to.
// Implemented by audio.FFmpeg; tests substitute MockTranscoder.
type Transcoder interface {
	// Compress re-encodes in to the fixed low-bandwidth speech profile at out.
	Compress(ctx context.Context, in, out string) error
	// Probe returns the total duration of the file at path.
	Probe(ctx context.Context, path string) (time.Duration, error)
	// Slice writes the [start, start+dur) span of in to out.
	Slice(ctx context.Context, in, out string, start, dur time.Duration) error
}

// Transcriber converts one audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioFile string) (string, error)
}

// Notifier delivers a progress or failure message. Delivery is best-effort;
// callers log returned errors and move on.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
