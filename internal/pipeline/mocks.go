package pipeline

import (
	"context"
	"time"
)

type MockTranscoder struct {
	CompressFunc func(ctx context.Context, in, out string) error
	ProbeFunc    func(ctx context.Context, path string) (time.Duration, error)
	SliceFunc    func(ctx context.Context, in, out string, start, dur time.Duration) error
}

func (m *MockTranscoder) Compress(ctx context.Context, in, out string) error {
	return m.CompressFunc(ctx, in, out)
}

func (m *MockTranscoder) Probe(ctx context.Context, path string) (time.Duration, error) {
	return m.ProbeFunc(ctx, path)
}

func (m *MockTranscoder) Slice(ctx context.Context, in, out string, start, dur time.Duration) error {
	return m.SliceFunc(ctx, in, out, start, dur)
}

type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audioFile string) (string, error)
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioFile string) (string, error) {
	return m.TranscribeFunc(ctx, audioFile)
}

type MockNotifier struct {
	NotifyFunc func(ctx context.Context, message string) error
}

func (m *MockNotifier) Notify(ctx context.Context, message string) error {
	return m.NotifyFunc(ctx, message)
}
