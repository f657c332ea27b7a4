// Package worker watches the bucket's audio prefix and runs the full
// transcription job for every new recording: download, preprocessing
// pipeline, formatting, upload, note record and notifications.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"audiopipe/internal/artifact"
	"audiopipe/internal/metrics"
	"audiopipe/internal/notes"
	"audiopipe/internal/pipeline"
	"audiopipe/internal/storage"
)

// llmAllowance pads the processing-time estimate to cover formatting and
// title generation.
const llmAllowance = 20 * time.Second

// estimateRate is the assumed end-to-end transcription throughput.
const estimateRate = 10 << 20 // bytes per second

// Runner is the preprocessing pipeline contract; satisfied by
// *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, src *artifact.Artifact) (pipeline.Result, error)
}

// Formatter produces the final text and its title.
type Formatter interface {
	Format(ctx context.Context, rawTranscript string) (string, error)
	Title(ctx context.Context, text string) (string, error)
}

// NoteStore records finished transcriptions; may be absent.
type NoteStore interface {
	Insert(note notes.Note) error
}

// Config carries the watch loop and key layout settings.
type Config struct {
	Prefix       string
	Interval     time.Duration
	OutputPrefix string
	WorkDir      string
}

// Worker processes recordings one at a time.
type Worker struct {
	cfg       Config
	store     storage.Store
	runner    Runner
	formatter Formatter
	notesDB   NoteStore
	notifier  pipeline.Notifier
	log       *logrus.Entry
	metrics   *metrics.Metrics

	seen map[string]bool
}

// New wires a worker. notesDB, notifier and m may be nil.
func New(cfg Config, store storage.Store, runner Runner, formatter Formatter, notesDB NoteStore, notifier pipeline.Notifier, log *logrus.Entry, m *metrics.Metrics) *Worker {
	return &Worker{
		cfg:       cfg,
		store:     store,
		runner:    runner,
		formatter: formatter,
		notesDB:   notesDB,
		notifier:  notifier,
		log:       log,
		metrics:   m,
		seen:      make(map[string]bool),
	}
}

// Watch polls the audio prefix until ctx is cancelled, processing every
// object it has not seen before. Per-object failures are logged and do not
// stop the loop.
func (w *Worker) Watch(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.log.WithFields(logrus.Fields{
		"prefix":   w.cfg.Prefix,
		"interval": w.cfg.Interval,
	}).Info("watching for new recordings")

	for {
		w.processNew(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Worker) processNew(ctx context.Context) {
	objects, err := w.store.List(ctx, w.cfg.Prefix)
	if err != nil {
		w.log.WithError(err).Error("listing bucket failed")
		return
	}

	for _, obj := range objects {
		if w.seen[obj.Key] {
			continue
		}
		// Marked before processing so a poison object is attempted once, not
		// on every tick.
		w.seen[obj.Key] = true

		if err := w.Process(ctx, obj.Key); err != nil {
			w.log.WithError(err).WithField("key", obj.Key).Error("processing failed")
		}
	}
}

// Process runs the complete job for one recording.
func (w *Worker) Process(ctx context.Context, key string) error {
	log := w.log.WithField("key", key)
	if w.metrics != nil {
		w.metrics.ObjectsProcessed.Inc()
	}

	w.notify(ctx, fmt.Sprintf("Transcribing %s", key))

	size, err := w.store.Head(ctx, key)
	if err != nil {
		return fmt.Errorf("sizing %s: %w", key, err)
	}
	w.notify(ctx, fmt.Sprintf("Estimated time to transcribe: %.1f minutes", estimateMinutes(size)))

	download := filepath.Join(w.cfg.WorkDir, fmt.Sprintf("download_%d%s", time.Now().UnixNano(), filepath.Ext(key)))
	if err := w.store.Fetch(ctx, key, download); err != nil {
		return fmt.Errorf("downloading %s: %w", key, err)
	}
	defer func() {
		if err := os.Remove(download); err != nil && !os.IsNotExist(err) {
			log.WithError(err).Warn("failed to remove downloaded file")
		}
	}()
	log.WithField("size_bytes", size).Info("downloaded recording")

	res, err := w.runner.Run(ctx, artifact.NewOriginal(download, size))
	if err != nil {
		// The pipeline already notified and released its artifacts.
		return err
	}
	w.notify(ctx, fmt.Sprintf("File: %s. Transcribed audio to raw text.", filepath.Base(key)))

	formatted, err := w.formatter.Format(ctx, res.Text)
	if err != nil {
		return fmt.Errorf("formatting transcript for %s: %w", key, err)
	}
	title, err := w.formatter.Title(ctx, formatted)
	if err != nil {
		return fmt.Errorf("generating title for %s: %w", key, err)
	}

	outputKey := w.outputKey(title)
	if err := w.store.Put(ctx, outputKey, strings.NewReader(formatted), "text/plain"); err != nil {
		return fmt.Errorf("uploading transcript for %s: %w", key, err)
	}
	if w.metrics != nil {
		w.metrics.OutputsWritten.Inc()
	}
	log.WithField("output_key", outputKey).Info("transcript uploaded")

	if w.notesDB != nil {
		note := notes.Note{
			SourceKey: key,
			OutputKey: outputKey,
			Title:     title,
			Plan:      res.Plan.Kind.String(),
			Segments:  res.Chunks,
		}
		// The transcript is already stored; a note failure is not worth
		// failing the job over.
		if err := w.notesDB.Insert(note); err != nil {
			log.WithError(err).Warn("failed to record note")
		}
	}

	w.notify(ctx, fmt.Sprintf("File: %s. Transcription ready at %s", filepath.Base(outputKey), outputKey))
	return nil
}

func (w *Worker) outputKey(title string) string {
	stamp := time.Now().Format("2006-01-02_15-04-05")
	return fmt.Sprintf("%s%s_%s.txt", w.cfg.OutputPrefix, stamp, title)
}

func (w *Worker) notify(ctx context.Context, message string) {
	if w.notifier == nil {
		return
	}
	if err := w.notifier.Notify(ctx, message); err != nil {
		w.log.WithError(err).Warn("notification dropped")
	}
}

func estimateMinutes(sizeBytes int64) float64 {
	transcription := time.Duration(sizeBytes/estimateRate) * time.Second
	return (transcription + llmAllowance).Minutes()
}
