package render

import (
	"github.com/semo00000/champ-electrostatique/internal/cache"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/fieldlines"
	"github.com/semo00000/champ-electrostatique/internal/raster"
	"github.com/semo00000/champ-electrostatique/internal/surface"
)

func (o *Orchestrator) registerLayers() {
	o.cache.Register(cache.FieldLines, BuildFieldLines)
	o.cache.Register(cache.Equipotentials, BuildEquipotentials)
	o.cache.Register(cache.Vectors, BuildVectors)
	o.cache.Register(cache.Landscape, BuildLandscape)
}

// BuildFieldLines traces every seeded line and keeps the screen paths for
// the flow animation.
func BuildFieldLines(dst *surface.Surface, in *cache.Inputs) (cache.Artifacts, error) {
	if len(in.Charges) == 0 {
		return cache.Artifacts{}, core.ErrEmptyScene
	}
	p := fieldlines.DefaultParams(in.View.VisibleRect(), in.FieldSteps)
	traces := fieldlines.TraceAll(in.Charges, p, in.Density)

	dir := -1
	for _, c := range in.Charges {
		if c.Q > 0 {
			dir = 1
			break
		}
	}
	paths := raster.ScreenPaths(in.View, traces)
	dirs := make([]int, len(paths))
	for i := range dirs {
		dirs[i] = dir
	}
	raster.PaintFieldLines(dst, paths, dirs)
	return cache.Artifacts{Paths: paths, Dirs: dirs}, nil
}

func BuildEquipotentials(dst *surface.Surface, in *cache.Inputs) (cache.Artifacts, error) {
	if len(in.Charges) == 0 {
		return cache.Artifacts{}, core.ErrEmptyScene
	}
	g := raster.SamplePotential(in.View, raster.CellSize(in.Quality), in.Charges)
	raster.PaintEquipotentials(dst, raster.Equipotentials(g, raster.Levels()))
	return cache.Artifacts{}, nil
}

func BuildVectors(dst *surface.Surface, in *cache.Inputs) (cache.Artifacts, error) {
	if len(in.Charges) == 0 {
		return cache.Artifacts{}, core.ErrEmptyScene
	}
	raster.PaintVectors(dst, raster.VectorGrid(in.View, in.ArrowGrid, in.Charges))
	return cache.Artifacts{}, nil
}

func BuildLandscape(dst *surface.Surface, in *cache.Inputs) (cache.Artifacts, error) {
	if len(in.Charges) == 0 {
		return cache.Artifacts{}, core.ErrEmptyScene
	}
	raster.PaintLandscape(dst, raster.BuildLandscape(in.View, in.Quality, in.Charges), in.Charges)
	return cache.Artifacts{}, nil
}
