package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds for the preprocessing pipeline. Each is matchable with
// errors.Is against a *StageError.
var (
	// ErrUnreadableSource indicates the source artifact's size could not be determined.
	ErrUnreadableSource = errors.New("unreadable source")

	// ErrCompression indicates the external transcoder failed or produced unusable output.
	ErrCompression = errors.New("compression failed")

	// ErrSplit indicates the artifact could not be divided into segments.
	ErrSplit = errors.New("split failed")

	// ErrChunkTranscription indicates one segment's transcription call failed.
	ErrChunkTranscription = errors.New("chunk transcription failed")

	// ErrCleanup indicates an artifact could not be deleted during release.
	// Unlike every other kind it is never fatal; the registry logs it and
	// carries on.
	ErrCleanup = errors.New("cleanup failed")
)

// Stage names used in errors, logs and failure notifications.
const (
	stageClassify   = "classify"
	stageCompress   = "compress"
	stageSplit      = "split"
	stageTranscribe = "transcribe"
)

// StageError is a pipeline failure tagged with the stage it surfaced from and
// one of the taxonomy kinds above. Index is the failing segment for
// transcription errors and -1 otherwise.
type StageError struct {
	Stage string
	Kind  error
	Index int
	Err   error
}

func (e *StageError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %v (segment %d): %v", e.Stage, e.Kind, e.Index, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Is(target error) bool { return target == e.Kind }

// Fatal reports whether the error aborts the run. Every taxonomy kind except
// cleanup does; cleanup problems are logged and never escalated.
func (e *StageError) Fatal() bool { return e.Kind != ErrCleanup }

func classifyError(err error) *StageError {
	return &StageError{Stage: stageClassify, Kind: ErrUnreadableSource, Index: -1, Err: err}
}

func compressError(err error) *StageError {
	return &StageError{Stage: stageCompress, Kind: ErrCompression, Index: -1, Err: err}
}

func splitError(err error) *StageError {
	return &StageError{Stage: stageSplit, Kind: ErrSplit, Index: -1, Err: err}
}

func transcribeError(index int, err error) *StageError {
	return &StageError{Stage: stageTranscribe, Kind: ErrChunkTranscription, Index: index, Err: err}
}
