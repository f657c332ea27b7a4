package artifact

import (
	"fmt"
	"time"
)

// Stage identifies where in the preprocessing pipeline an artifact was produced.
type Stage int

const (
	StageOriginal Stage = iota
	StageCompressed
	StageSegment
)

func (s Stage) String() string {
	switch s {
	case StageOriginal:
		return "original"
	case StageCompressed:
		return "compressed"
	case StageSegment:
		return "segment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Artifact is a handle to an audio file on disk plus its known metadata.
// Size is zero until measured and Duration is zero until probed.
type Artifact struct {
	Path     string
	Size     int64
	Duration time.Duration
	Stage    Stage
	Index    int // segment position, -1 for non-segment artifacts
}

// NewOriginal wraps a source file the caller already owns.
func NewOriginal(path string, size int64) *Artifact {
	return &Artifact{Path: path, Size: size, Stage: StageOriginal, Index: -1}
}
