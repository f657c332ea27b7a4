package pipeline

import (
	"errors"
	"path/filepath"
	"testing"

	"audiopipe/internal/artifact"
)

var testThresholds = Thresholds{
	DirectMax:                20 << 20,
	CompressTrigger:          20 << 20,
	PostCompressSplitTrigger: 25 << 20,
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		name string
		size int64
		want PlanKind
	}{
		{"well under direct max", 15 << 20, PlanDirect},
		{"exactly direct max", 20 << 20, PlanDirect},
		{"one byte over direct max", 20<<20 + 1, PlanCompress},
		{"well over direct max", 22 << 20, PlanCompress},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := artifact.NewOriginal("recording.m4a", tc.size)
			plan, err := Classify(src, testThresholds)
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if plan.Kind != tc.want {
				t.Errorf("Expected plan %v for size %d, got %v", tc.want, tc.size, plan.Kind)
			}
		})
	}
}

func TestClassifyUnreadableSource(t *testing.T) {
	src := artifact.NewOriginal(filepath.Join(t.TempDir(), "missing.m4a"), 0)
	_, err := Classify(src, testThresholds)
	if err == nil {
		t.Fatal("Expected an error for a source with unknown size")
	}
	if !errors.Is(err, ErrUnreadableSource) {
		t.Errorf("Expected ErrUnreadableSource, got %v", err)
	}

	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("Expected a *StageError, got %T", err)
	}
	if !se.Fatal() {
		t.Error("Expected classification failure to be fatal")
	}
}

func TestEscalateAfterCompression(t *testing.T) {
	plan := Plan{Kind: PlanCompress, Thresholds: testThresholds}

	if got := plan.Escalate(9 << 20); got.Kind != PlanCompress {
		t.Errorf("Expected compress plan to survive a 9 MiB result, got %v", got.Kind)
	}
	if got := plan.Escalate(25 << 20); got.Kind != PlanCompress {
		t.Errorf("Expected no escalation exactly at the split trigger, got %v", got.Kind)
	}
	if got := plan.Escalate(27 << 20); got.Kind != PlanCompressAndSplit {
		t.Errorf("Expected escalation to compress+split for a 27 MiB result, got %v", got.Kind)
	}

	// A direct plan never escalates regardless of the size it is handed.
	direct := Plan{Kind: PlanDirect, Thresholds: testThresholds}
	if got := direct.Escalate(30 << 20); got.Kind != PlanDirect {
		t.Errorf("Expected direct plan to stay direct, got %v", got.Kind)
	}
}
