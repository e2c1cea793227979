package compute

import (
	"context"
	"image"

	"go.uber.org/zap"
)

// Evaluator fills a full-viewport image with the heatmap for u.
type Evaluator interface {
	Name() string
	// Available reports whether Evaluate can run. An unavailable evaluator
	// returns core.ErrEvaluatorUnavailable from Evaluate.
	Available() bool
	Evaluate(ctx context.Context, dst *image.RGBA, u *Uniforms) error
	Cleanup()
}

// AutoSelect prefers the GL evaluator when a context is current and the
// shader program builds, and falls back to the CPU evaluator otherwise.
func AutoSelect(glReady bool, log *zap.Logger) Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	if glReady {
		g := NewGLEvaluator(log)
		if err := g.Init(); err != nil {
			log.Warn("gl evaluator unavailable, using cpu", zap.Error(err))
		} else {
			log.Info("gl evaluator ready", zap.String("renderer", g.Renderer()))
			return g
		}
	}
	return NewCPUEvaluator()
}
