package pipeline

import (
	"fmt"
	"os"

	"audiopipe/internal/artifact"
)

// PlanKind is the preprocessing route chosen for one source artifact.
type PlanKind int

const (
	// PlanDirect submits the artifact to the transcriber as-is.
	PlanDirect PlanKind = iota
	// PlanCompress re-encodes the artifact to the low-bandwidth speech profile first.
	PlanCompress
	// PlanCompressAndSplit re-encodes and then divides the result into
	// fixed-duration segments. Chosen only after compression, when the
	// compressed artifact still exceeds the split trigger.
	PlanCompressAndSplit
)

func (k PlanKind) String() string {
	switch k {
	case PlanDirect:
		return "direct"
	case PlanCompress:
		return "compress"
	case PlanCompressAndSplit:
		return "compress+split"
	default:
		return fmt.Sprintf("plan(%d)", int(k))
	}
}

// Thresholds are the byte-size boundaries driving classification.
// DirectMax is inclusive: a file exactly at the boundary takes the direct path.
type Thresholds struct {
	DirectMax                int64
	CompressTrigger          int64
	PostCompressSplitTrigger int64
}

// Plan is the classification decision for one run. It is computed once from
// the original artifact's size and never mutated; escalation after
// compression produces a new Plan value.
type Plan struct {
	Kind       PlanKind
	Thresholds Thresholds
}

// Classify picks the processing plan from the original artifact's byte size,
// stat-ing the file when the size is not already known.
func Classify(src *artifact.Artifact, t Thresholds) (Plan, error) {
	size := src.Size
	if size <= 0 {
		info, err := os.Stat(src.Path)
		if err != nil {
			return Plan{}, classifyError(err)
		}
		size = info.Size()
		if size == 0 {
			return Plan{}, classifyError(fmt.Errorf("source %s is empty", src.Path))
		}
		src.Size = size
	}

	if size <= t.DirectMax {
		return Plan{Kind: PlanDirect, Thresholds: t}, nil
	}
	return Plan{Kind: PlanCompress, Thresholds: t}, nil
}

// Escalate re-evaluates a compress plan against the measured post-compression
// size. A compressed artifact still above the split trigger must be segmented.
func (p Plan) Escalate(compressedSize int64) Plan {
	if p.Kind == PlanCompress && compressedSize > p.Thresholds.PostCompressSplitTrigger {
		return Plan{Kind: PlanCompressAndSplit, Thresholds: p.Thresholds}
	}
	return p
}
