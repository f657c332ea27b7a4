package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"audiopipe/internal/artifact"
)

func newTestPipeline(t *testing.T, transcoder Transcoder, transcriber Transcriber, notifier Notifier) *Pipeline {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cfg := Config{
		Thresholds:    testThresholds,
		ChunkDuration: 10 * time.Minute,
		WorkDir:       t.TempDir(),
	}
	return New(cfg, transcoder, transcriber, notifier, logrus.NewEntry(log), nil)
}

// writeSparse creates a file reporting the given size without occupying it.
func writeSparse(t *testing.T, path string, size int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("Failed to truncate %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close %s: %v", path, err)
	}
}

// assertWorkDirClean fails if any run left artifacts behind.
func assertWorkDirClean(t *testing.T, p *Pipeline) {
	t.Helper()
	entries, err := os.ReadDir(p.cfg.WorkDir)
	if err != nil {
		t.Fatalf("Failed to read work dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected clean work dir after run, found %v", names)
	}
}

func countingNotifier(messages *[]string) *MockNotifier {
	return &MockNotifier{
		NotifyFunc: func(ctx context.Context, message string) error {
			*messages = append(*messages, message)
			return nil
		},
	}
}

// Scenario A: a 15 MiB file takes the direct path — one transcription call,
// no compression.
func TestRunDirectPlan(t *testing.T) {
	ctx := context.Background()

	compressCalls := 0
	transcoder := &MockTranscoder{
		CompressFunc: func(ctx context.Context, in, out string) error {
			compressCalls++
			return nil
		},
	}
	transcribeCalls := 0
	transcriber := &MockTranscriber{
		TranscribeFunc: func(ctx context.Context, audioFile string) (string, error) {
			transcribeCalls++
			return "the whole recording", nil
		},
	}

	p := newTestPipeline(t, transcoder, transcriber, nil)
	src := artifact.NewOriginal("meeting.wav", 15<<20)

	res, err := p.Run(ctx, src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Plan.Kind != PlanDirect {
		t.Errorf("Expected direct plan, got %v", res.Plan.Kind)
	}
	if transcribeCalls != 1 {
		t.Errorf("Expected exactly one transcription call, got %d", transcribeCalls)
	}
	if compressCalls != 0 {
		t.Errorf("Expected zero compression calls, got %d", compressCalls)
	}
	if res.Text != "the whole recording" {
		t.Errorf("Unexpected merged text %q", res.Text)
	}
	assertWorkDirClean(t, p)
}

// Scenario B: 22 MiB input compressed down to 9 MiB — compress, no split,
// one transcription call.
func TestRunCompressPlan(t *testing.T) {
	ctx := context.Background()

	transcoder := &MockTranscoder{
		CompressFunc: func(ctx context.Context, in, out string) error {
			writeSparse(t, out, 9<<20)
			return nil
		},
	}
	transcribeCalls := 0
	transcriber := &MockTranscriber{
		TranscribeFunc: func(ctx context.Context, audioFile string) (string, error) {
			transcribeCalls++
			if !strings.HasSuffix(audioFile, "compressed.mp3") {
				t.Errorf("Expected the compressed artifact to be transcribed, got %s", audioFile)
			}
			return "compressed transcript", nil
		},
	}

	p := newTestPipeline(t, transcoder, transcriber, nil)
	src := artifact.NewOriginal("meeting.m4a", 22<<20)

	res, err := p.Run(ctx, src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Plan.Kind != PlanCompress {
		t.Errorf("Expected compress plan, got %v", res.Plan.Kind)
	}
	if transcribeCalls != 1 {
		t.Errorf("Expected exactly one transcription call, got %d", transcribeCalls)
	}
	assertWorkDirClean(t, p)
}

// Scenario C: compression leaves 27 MiB and 25 minutes of audio — the plan
// escalates, three segments of 10/10/5 minutes are transcribed in order, and
// the merged text has two separator boundaries.
func TestRunCompressAndSplitPlan(t *testing.T) {
	ctx := context.Background()

	var sliced []time.Duration
	transcoder := &MockTranscoder{
		CompressFunc: func(ctx context.Context, in, out string) error {
			writeSparse(t, out, 27<<20)
			return nil
		},
		ProbeFunc: func(ctx context.Context, path string) (time.Duration, error) {
			return 25 * time.Minute, nil
		},
		SliceFunc: func(ctx context.Context, in, out string, start, dur time.Duration) error {
			sliced = append(sliced, dur)
			writeSparse(t, out, 1<<20)
			return nil
		},
	}

	var transcribed []string
	transcriber := &MockTranscriber{
		TranscribeFunc: func(ctx context.Context, audioFile string) (string, error) {
			transcribed = append(transcribed, audioFile)
			return "part " + audioFile[len(audioFile)-7:], nil
		},
	}

	p := newTestPipeline(t, transcoder, transcriber, nil)
	src := artifact.NewOriginal("meeting.m4a", 22<<20)

	res, err := p.Run(ctx, src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Plan.Kind != PlanCompressAndSplit {
		t.Errorf("Expected compress+split plan, got %v", res.Plan.Kind)
	}

	wantDurations := []time.Duration{10 * time.Minute, 10 * time.Minute, 5 * time.Minute}
	if len(sliced) != len(wantDurations) {
		t.Fatalf("Expected %d segments, got %d", len(wantDurations), len(sliced))
	}
	for i, want := range wantDurations {
		if sliced[i] != want {
			t.Errorf("Segment %d: expected duration %v, got %v", i, want, sliced[i])
		}
	}

	if len(transcribed) != 3 {
		t.Fatalf("Expected 3 transcription calls, got %d", len(transcribed))
	}
	for i := 1; i < len(transcribed); i++ {
		if transcribed[i-1] >= transcribed[i] {
			t.Errorf("Segments transcribed out of order: %v", transcribed)
		}
	}

	if got := strings.Count(res.Text, "\n\n"); got != 2 {
		t.Errorf("Expected 2 separator boundaries in merged text, got %d", got)
	}
	if res.Chunks != 3 {
		t.Errorf("Expected 3 chunks in result, got %d", res.Chunks)
	}
	assertWorkDirClean(t, p)
}

// Scenario D: segment 1 fails — the run aborts before segment 2, exactly one
// failure notification goes out, and every artifact is released.
func TestRunAbortsAndCleansUpOnChunkFailure(t *testing.T) {
	ctx := context.Background()

	transcoder := &MockTranscoder{
		CompressFunc: func(ctx context.Context, in, out string) error {
			writeSparse(t, out, 27<<20)
			return nil
		},
		ProbeFunc: func(ctx context.Context, path string) (time.Duration, error) {
			return 25 * time.Minute, nil
		},
		SliceFunc: func(ctx context.Context, in, out string, start, dur time.Duration) error {
			writeSparse(t, out, 1<<20)
			return nil
		},
	}

	calls := 0
	transcriber := &MockTranscriber{
		TranscribeFunc: func(ctx context.Context, audioFile string) (string, error) {
			calls++
			if calls == 2 {
				return "", errors.New("rate limited")
			}
			return "ok", nil
		},
	}

	var messages []string
	p := newTestPipeline(t, transcoder, transcriber, countingNotifier(&messages))
	src := artifact.NewOriginal("meeting.m4a", 22<<20)

	_, err := p.Run(ctx, src)
	if err == nil {
		t.Fatal("Expected the run to fail")
	}
	if !errors.Is(err, ErrChunkTranscription) {
		t.Errorf("Expected ErrChunkTranscription, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected run to abort before segment 2, got %d calls", calls)
	}

	failures := 0
	for _, m := range messages {
		if strings.Contains(m, "failed") {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("Expected exactly one failure notification, got %d in %v", failures, messages)
	}
	assertWorkDirClean(t, p)
}

// Forced failures at each stage must still leave the work dir clean.
func TestRunCleansUpOnEveryFailurePath(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name       string
		transcoder *MockTranscoder
		size       int64
		wantErr    error
	}{
		{
			name: "compressor crashes",
			transcoder: &MockTranscoder{
				CompressFunc: func(ctx context.Context, in, out string) error {
					return errors.New("ffmpeg exited with status 1")
				},
			},
			size:    22 << 20,
			wantErr: ErrCompression,
		},
		{
			name: "compressor writes empty output",
			transcoder: &MockTranscoder{
				CompressFunc: func(ctx context.Context, in, out string) error {
					writeSparse(t, out, 0)
					return nil
				},
			},
			size:    22 << 20,
			wantErr: ErrCompression,
		},
		{
			name: "probe fails",
			transcoder: &MockTranscoder{
				CompressFunc: func(ctx context.Context, in, out string) error {
					writeSparse(t, out, 27<<20)
					return nil
				},
				ProbeFunc: func(ctx context.Context, path string) (time.Duration, error) {
					return 0, errors.New("corrupt container")
				},
			},
			size:    22 << 20,
			wantErr: ErrSplit,
		},
		{
			name: "slice fails",
			transcoder: &MockTranscoder{
				CompressFunc: func(ctx context.Context, in, out string) error {
					writeSparse(t, out, 27<<20)
					return nil
				},
				ProbeFunc: func(ctx context.Context, path string) (time.Duration, error) {
					return 25 * time.Minute, nil
				},
				SliceFunc: func(ctx context.Context, in, out string, start, dur time.Duration) error {
					if start > 0 {
						return errors.New("ffmpeg exited with status 1")
					}
					writeSparse(t, out, 1<<20)
					return nil
				},
			},
			size:    22 << 20,
			wantErr: ErrSplit,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transcriber := &MockTranscriber{
				TranscribeFunc: func(ctx context.Context, audioFile string) (string, error) {
					return "ok", nil
				},
			}

			var messages []string
			p := newTestPipeline(t, tc.transcoder, transcriber, countingNotifier(&messages))

			_, err := p.Run(ctx, artifact.NewOriginal("meeting.m4a", tc.size))
			if err == nil {
				t.Fatal("Expected the run to fail")
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
			if len(messages) != 1 {
				t.Errorf("Expected exactly one failure notification, got %v", messages)
			}
			assertWorkDirClean(t, p)
		})
	}
}
