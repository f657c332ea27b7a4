package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"audiopipe/internal/artifact"
)

// span is one segment's position within the source artifact.
type span struct {
	start time.Duration
	dur   time.Duration
}

// segmentSpans divides total into ceil(total/chunk) contiguous spans. Every
// span but the last lasts exactly chunk; the last takes the remainder and is
// never zero — when total divides evenly the final span absorbs a full chunk
// instead of adding an empty one.
func segmentSpans(total, chunk time.Duration) []span {
	count := int(total / chunk)
	rem := total % chunk
	if rem > 0 {
		count++
	} else {
		rem = chunk
	}

	spans := make([]span, count)
	for i := 0; i < count; i++ {
		spans[i] = span{start: time.Duration(i) * chunk, dur: chunk}
	}
	spans[count-1].dur = rem
	return spans
}

// split divides src into fixed-duration segment artifacts, probing the total
// duration first when it is not already known. Each segment is registered as
// it is produced so an aborted split leaks nothing.
func (p *Pipeline) split(ctx context.Context, reg *artifact.Registry, src *artifact.Artifact) ([]*artifact.Artifact, error) {
	if src.Duration <= 0 {
		dur, err := p.transcoder.Probe(ctx, src.Path)
		if err != nil {
			return nil, splitError(fmt.Errorf("probing duration: %w", err))
		}
		if dur <= 0 {
			return nil, splitError(fmt.Errorf("probe reported non-positive duration %v for %s", dur, src.Path))
		}
		src.Duration = dur
	}

	spans := segmentSpans(src.Duration, p.cfg.ChunkDuration)
	segments := make([]*artifact.Artifact, 0, len(spans))

	for i, s := range spans {
		out := filepath.Join(reg.Dir(), fmt.Sprintf("segment_%03d.mp3", i))
		if err := p.transcoder.Slice(ctx, src.Path, out, s.start, s.dur); err != nil {
			return nil, splitError(fmt.Errorf("slicing segment %d: %w", i, err))
		}

		seg := &artifact.Artifact{
			Path:     out,
			Duration: s.dur,
			Stage:    artifact.StageSegment,
			Index:    i,
		}
		if info, err := os.Stat(out); err == nil {
			seg.Size = info.Size()
		}
		reg.Register(seg)
		segments = append(segments, seg)
	}

	if p.metrics != nil {
		p.metrics.SegmentsProduced.Add(float64(len(segments)))
	}
	p.log.WithFields(logrus.Fields{
		"segments":       len(segments),
		"chunk_duration": p.cfg.ChunkDuration,
		"total_duration": src.Duration,
	}).Info("split artifact into segments")
	return segments, nil
}
