package compute

import (
	"context"
	"image"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"gonum.org/v1/gonum/spatial/r2"
)

// minRowsPerBand keeps small images on the calling goroutine.
const minRowsPerBand = 16

// CPUEvaluator runs Shade for every pixel center, one row band per core.
type CPUEvaluator struct{}

func NewCPUEvaluator() *CPUEvaluator { return &CPUEvaluator{} }

func (c *CPUEvaluator) Name() string    { return "cpu" }
func (c *CPUEvaluator) Available() bool { return true }
func (c *CPUEvaluator) Cleanup()        {}

func (c *CPUEvaluator) Evaluate(ctx context.Context, dst *image.RGBA, u *Uniforms) error {
	clear(dst.Pix)
	if u.Empty() {
		return nil
	}
	b := dst.Rect
	return core.ParallelRows(ctx, b.Dy(), minRowsPerBand, func(ctx context.Context, start, end int) error {
		for y := start; y < end; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < b.Dx(); x++ {
				wp := u.View.ScreenToWorld(r2.Vec{X: float64(x) + .5, Y: float64(y) + .5})
				c := Shade(u, wp)
				a := uint32(c.A)
				i := 4 * x
				row[i] = uint8(uint32(c.R) * a / 255)
				row[i+1] = uint8(uint32(c.G) * a / 255)
				row[i+2] = uint8(uint32(c.B) * a / 255)
				row[i+3] = c.A
			}
		}
		return nil
	})
}
