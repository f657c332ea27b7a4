package artifact

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Registry tracks every temporary artifact created during one pipeline run
// and removes them exactly once. A registry is owned by a single run and is
// never shared, so it carries no locking.
type Registry struct {
	log       *logrus.Entry
	dir       string
	artifacts []*Artifact
}

// NewRegistry creates a registry for a run whose temporary files live under
// dir. The directory itself is removed after the last artifact is released.
func NewRegistry(log *logrus.Entry, dir string) *Registry {
	return &Registry{log: log, dir: dir}
}

// Dir returns the run's temporary namespace.
func (r *Registry) Dir() string {
	return r.dir
}

// Register records an artifact for removal at the end of the run. Artifacts
// must be registered at creation time, before any operation that can fail.
func (r *Registry) Register(a *Artifact) {
	r.artifacts = append(r.artifacts, a)
	r.log.WithFields(logrus.Fields{
		"path":  a.Path,
		"stage": a.Stage.String(),
	}).Debug("registered artifact")
}

// Len reports how many artifacts are still registered.
func (r *Registry) Len() int {
	return len(r.artifacts)
}

// ReleaseAll deletes every registered artifact and then the run directory.
// A failed deletion is logged as a warning and does not stop the release of
// the remaining artifacts. Calling ReleaseAll on an already-empty registry is
// a no-op, so it is safe to invoke on every exit path.
func (r *Registry) ReleaseAll() {
	for _, a := range r.artifacts {
		if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
			r.log.WithError(err).WithField("path", a.Path).Warn("failed to remove artifact")
		}
	}
	r.artifacts = nil

	if r.dir != "" {
		if err := os.RemoveAll(r.dir); err != nil {
			r.log.WithError(err).WithField("dir", r.dir).Warn("failed to remove run directory")
		}
		r.dir = ""
	}
}
