package cache

import (
	"fmt"

	"github.com/semo00000/champ-electrostatique/internal/surface"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// Layer names a cached raster.
type Layer string

const (
	FieldLines     Layer = "fieldlines"
	Equipotentials Layer = "equipotentials"
	Vectors        Layer = "vectors"
	Landscape      Layer = "landscape"
)

// Layers lists the cached layers in build order.
var Layers = []Layer{FieldLines, Equipotentials, Vectors, Landscape}

// Artifacts carries by-products of a build that later stages reuse.
type Artifacts struct {
	// Paths are the screen-space field lines, used by the flow animation.
	Paths [][]r2.Vec
	// Dirs holds the trace direction of each path.
	Dirs []int
}

// BuildFunc paints one layer onto a cleared surface.
type BuildFunc func(dst *surface.Surface, in *Inputs) (Artifacts, error)

type entry struct {
	surf      *surface.Surface
	build     BuildFunc
	key       Key
	valid     bool
	regens    int
	artifacts Artifacts
}

// Manager owns one surface per layer. It is not safe for concurrent use;
// the render loop calls it once per frame.
type Manager struct {
	log     *zap.Logger
	entries map[Layer]*entry
	current Key
}

func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log.Named("cache"), entries: make(map[Layer]*entry)}
}

// Register installs the builder for a layer.
func (m *Manager) Register(l Layer, fn BuildFunc) {
	e, ok := m.entries[l]
	if !ok {
		e = &entry{surf: surface.New(1, 1)}
		m.entries[l] = e
	}
	e.build = fn
	e.valid = false
}

// InvalidateIfStale recomputes the key and rebuilds every enabled layer whose
// stored key differs. Disabled layers keep their stale surface until they are
// enabled again. It returns the layers rebuilt.
func (m *Manager) InvalidateIfStale(in Inputs, enabled func(Layer) bool) []Layer {
	key := NewKey(in)
	if key != m.current {
		m.log.Debug("cache key changed", zap.String("key", key.Short()))
		m.current = key
	}

	var rebuilt []Layer
	for _, l := range Layers {
		e, ok := m.entries[l]
		if !ok || e.build == nil || (e.valid && e.key == key) {
			continue
		}
		if enabled != nil && !enabled(l) {
			continue
		}
		e.surf.Resize(in.View.Width, in.View.Height)
		art, err := e.build(e.surf, &in)
		if err != nil {
			// Keep the key so a failing builder does not rerun every frame.
			m.log.Warn("layer build failed", zap.String("layer", string(l)), zap.Error(err))
			e.surf.Clear()
			art = Artifacts{}
		}
		e.key, e.valid, e.artifacts = key, true, art
		e.regens++
		rebuilt = append(rebuilt, l)
	}
	if len(rebuilt) > 0 {
		m.log.Debug("layers rebuilt", zap.Any("layers", rebuilt), zap.String("key", key.Short()))
	}
	return rebuilt
}

// Layer returns the surface of l and whether it matches the current key.
func (m *Manager) Layer(l Layer) (*surface.Surface, bool) {
	e, ok := m.entries[l]
	if !ok {
		return nil, false
	}
	return e.surf, e.valid && e.key == m.current
}

// Artifacts returns the by-products of the last build of l.
func (m *Manager) Artifacts(l Layer) Artifacts {
	if e, ok := m.entries[l]; ok {
		return e.artifacts
	}
	return Artifacts{}
}

// MarkDirty forces every layer to rebuild on the next check.
func (m *Manager) MarkDirty() {
	for _, e := range m.entries {
		e.valid = false
	}
}

// Regenerations counts builds of l since registration.
func (m *Manager) Regenerations(l Layer) int {
	if e, ok := m.entries[l]; ok {
		return e.regens
	}
	return 0
}

// Key is the key from the last InvalidateIfStale.
func (m *Manager) Key() Key { return m.current }

func (m *Manager) String() string {
	return fmt.Sprintf("cache{key=%s layers=%d}", m.current.Short(), len(m.entries))
}
