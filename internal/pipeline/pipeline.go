// Package pipeline implements the adaptive preprocessing decision engine:
// size classification, conditional re-encoding, conditional fixed-duration
// splitting, sequential chunk transcription with merging, and the cleanup and
// failure-reporting discipline wrapping every run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"audiopipe/internal/artifact"
	"audiopipe/internal/metrics"
)

// Config carries the decision thresholds and working directory for runs.
type Config struct {
	Thresholds    Thresholds
	ChunkDuration time.Duration
	WorkDir       string
}

// Pipeline prepares one audio artifact at a time for transcription. All
// collaborators are injected so tests can substitute fakes.
type Pipeline struct {
	cfg         Config
	transcoder  Transcoder
	transcriber Transcriber
	notifier    Notifier
	log         *logrus.Entry
	metrics     *metrics.Metrics
}

// New wires a pipeline. metrics may be nil.
func New(cfg Config, transcoder Transcoder, transcriber Transcriber, notifier Notifier, log *logrus.Entry, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		transcoder:  transcoder,
		transcriber: transcriber,
		notifier:    notifier,
		log:         log,
		metrics:     m,
	}
}

// Result is a completed run's output.
type Result struct {
	Text   string
	Plan   Plan
	Chunks int
}

// Run classifies src, compresses and splits it as the plan requires,
// transcribes every resulting artifact in order and merges the texts. Every
// temporary artifact created along the way is released before Run returns, on
// success and on every failure path, and fatal errors are reported to the
// notifier before they propagate. Run does not take ownership of src's file.
func (p *Pipeline) Run(ctx context.Context, src *artifact.Artifact) (res Result, err error) {
	runID := uuid.NewString()
	dir := filepath.Join(p.cfg.WorkDir, "run_"+runID)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return Result{}, fmt.Errorf("creating run directory: %w", mkErr)
	}

	log := p.log.WithField("run_id", runID)
	reg := artifact.NewRegistry(log, dir)

	start := time.Now()
	if p.metrics != nil {
		p.metrics.RunsStarted.Inc()
		p.metrics.ActiveRuns.Inc()
	}

	defer func() {
		reg.ReleaseAll()
		if p.metrics != nil {
			p.metrics.ActiveRuns.Dec()
			p.metrics.RunDuration.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			p.reportFailure(ctx, err)
			if p.metrics != nil {
				p.metrics.RunsFailed.WithLabelValues(stageOf(err)).Inc()
			}
			log.WithError(err).Error("run failed")
		} else if p.metrics != nil {
			p.metrics.RunsSucceeded.Inc()
		}
	}()

	plan, err := Classify(src, p.cfg.Thresholds)
	if err != nil {
		return Result{}, err
	}
	log.WithFields(logrus.Fields{
		"size_bytes": src.Size,
		"plan":       plan.Kind.String(),
	}).Info("classified source artifact")

	items := []*artifact.Artifact{src}
	if plan.Kind != PlanDirect {
		compressed, cErr := p.compress(ctx, reg, src)
		if cErr != nil {
			return Result{}, cErr
		}

		plan = plan.Escalate(compressed.Size)
		items = []*artifact.Artifact{compressed}

		if plan.Kind == PlanCompressAndSplit {
			segments, sErr := p.split(ctx, reg, compressed)
			if sErr != nil {
				return Result{}, sErr
			}
			items = segments
		}
	}

	text, tErr := p.transcribeAll(ctx, items)
	if tErr != nil {
		return Result{}, tErr
	}

	log.WithField("chunks", len(items)).Info("run complete")
	return Result{Text: text, Plan: plan, Chunks: len(items)}, nil
}

// reportFailure pushes a failure message to the notifier before the error
// propagates to the caller. Notifier failures are swallowed: the original
// error always wins.
func (p *Pipeline) reportFailure(ctx context.Context, err error) {
	message := fmt.Sprintf("transcription failed at %s stage: %v", stageOf(err), err)
	if p.notifier == nil {
		return
	}
	if nErr := p.notifier.Notify(ctx, message); nErr != nil {
		p.log.WithError(nErr).Warn("failure notification dropped")
	}
}

func stageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "pipeline"
}
