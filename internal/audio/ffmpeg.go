// Package audio wraps the external ffmpeg and ffprobe executables used to
// re-encode, probe and slice audio files. The binaries are invoked with a
// fixed argument profile; their absence or failure is surfaced to the caller
// and treated as fatal there.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Speech profile applied to every re-encode: mono, 16 kHz, 64 kbps MP3.
var profileArgs = []string{"-ac", "1", "-ar", "16000", "-b:a", "64k"}

// FFmpeg shells out to ffmpeg/ffprobe. The zero value is not usable; call
// NewFFmpeg.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

func NewFFmpeg() *FFmpeg {
	return &FFmpeg{ffmpegPath: "ffmpeg", ffprobePath: "ffprobe"}
}

// Compress re-encodes in to the speech profile at out.
func (f *FFmpeg) Compress(ctx context.Context, in, out string) error {
	args := append([]string{"-y", "-i", in}, profileArgs...)
	args = append(args, out)

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w\nstderr: %s", err, stderr.String())
	}
	return nil
}

// Probe returns the container duration of the file at path.
func (f *FFmpeg) Probe(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbeDuration(string(output))
}

// Slice writes the [start, start+dur) span of in to out, re-encoded with the
// same speech profile so segment boundaries never land mid-frame.
func (f *FFmpeg) Slice(ctx context.Context, in, out string, start, dur time.Duration) error {
	args := []string{
		"-y", "-i", in,
		"-ss", fmt.Sprintf("%.3f", start.Seconds()),
		"-t", fmt.Sprintf("%.3f", dur.Seconds()),
	}
	args = append(args, profileArgs...)
	args = append(args, out)

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w\nstderr: %s", err, stderr.String())
	}
	return nil
}

func parseProbeDuration(raw string) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe duration %q: %w", trimmed, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
