package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"audiopipe/internal/artifact"
)

// compress re-encodes src to the fixed speech profile and registers the
// output. The input artifact is left in place; the registry decides lifetimes.
func (p *Pipeline) compress(ctx context.Context, reg *artifact.Registry, src *artifact.Artifact) (*artifact.Artifact, error) {
	out := filepath.Join(reg.Dir(), "compressed.mp3")

	if err := p.transcoder.Compress(ctx, src.Path, out); err != nil {
		return nil, compressError(err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, compressError(fmt.Errorf("transcoder produced no readable output: %w", err))
	}
	if info.Size() == 0 {
		return nil, compressError(fmt.Errorf("transcoder produced empty output at %s", out))
	}

	compressed := &artifact.Artifact{
		Path:  out,
		Size:  info.Size(),
		Stage: artifact.StageCompressed,
		Index: -1,
	}
	reg.Register(compressed)

	if p.metrics != nil {
		p.metrics.Compressions.Inc()
	}
	p.log.WithField("size_bytes", compressed.Size).Info("compressed source artifact")
	return compressed, nil
}
