package scene

import (
	"fmt"
	"strings"

	"github.com/semo00000/champ-electrostatique/internal/core"
)

// Toggles are the visualization switches read by the orchestrator each frame.
type Toggles struct {
	FieldLines     bool             `json:"field_lines" yaml:"field_lines"`
	Vectors        bool             `json:"vectors" yaml:"vectors"`
	Equipotentials bool             `json:"equipotentials" yaml:"equipotentials"`
	Particles      bool             `json:"particles" yaml:"particles"`
	Arcs           bool             `json:"arcs" yaml:"arcs"`
	Bloom          bool             `json:"bloom" yaml:"bloom"`
	Forces         bool             `json:"forces" yaml:"forces"`
	Landscape      bool             `json:"landscape" yaml:"landscape"`
	Superposition  bool             `json:"superposition" yaml:"superposition"`
	Mirror         bool             `json:"mirror" yaml:"mirror"`
	Snap           bool             `json:"snap" yaml:"snap"`
	FieldFlow      bool             `json:"field_flow" yaml:"field_flow"`
	Chromatic      bool             `json:"chromatic" yaml:"chromatic"`
	Heatmap        core.HeatmapMode `json:"heatmap" yaml:"heatmap"`
}

// DefaultToggles returns the start-up switches for a quality tier. Particles,
// arcs and bloom start off where the tier cannot afford them.
func DefaultToggles(tier int) Toggles {
	return Toggles{
		FieldLines: true,
		Particles:  tier > 0,
		Arcs:       tier >= 1,
		Bloom:      tier > 0,
		FieldFlow:  true,
	}
}

// Toggle names accepted by Set, in display order.
var toggleNames = []string{
	"field_lines", "vectors", "equipotentials", "particles", "arcs", "bloom",
	"forces", "landscape", "superposition", "mirror", "snap", "field_flow", "chromatic",
}

func (t *Toggles) field(name string) *bool {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "_")) {
	case "field_lines", "fieldlines":
		return &t.FieldLines
	case "vectors":
		return &t.Vectors
	case "equipotentials", "equipotential":
		return &t.Equipotentials
	case "particles":
		return &t.Particles
	case "arcs":
		return &t.Arcs
	case "bloom":
		return &t.Bloom
	case "forces":
		return &t.Forces
	case "landscape":
		return &t.Landscape
	case "superposition":
		return &t.Superposition
	case "mirror":
		return &t.Mirror
	case "snap":
		return &t.Snap
	case "field_flow", "fieldflow":
		return &t.FieldFlow
	case "chromatic":
		return &t.Chromatic
	}
	return nil
}

// Get reads a boolean toggle by name.
func (t Toggles) Get(name string) (bool, error) {
	f := t.field(name)
	if f == nil {
		return false, fmt.Errorf("%w: unknown toggle %q", core.ErrInvalidSettings, name)
	}
	return *f, nil
}

// Set writes a boolean toggle by name.
func (t *Toggles) Set(name string, on bool) error {
	f := t.field(name)
	if f == nil {
		return fmt.Errorf("%w: unknown toggle %q", core.ErrInvalidSettings, name)
	}
	*f = on
	return nil
}

// ToggleNames lists the names accepted by Get and Set.
func ToggleNames() []string {
	return append([]string(nil), toggleNames...)
}

// Settings are the numeric knobs feeding the governor and the rasterizers.
type Settings struct {
	Density   int     `json:"density" yaml:"density"`
	Particles int     `json:"particles" yaml:"particles"`
	ArrowGrid int     `json:"arrow_grid" yaml:"arrow_grid"`
	Speed     float64 `json:"speed" yaml:"speed"`
	Quality   int     `json:"quality" yaml:"quality"`
	AutoAdapt bool    `json:"auto_adapt" yaml:"auto_adapt"`
}

// Validate rejects values no component can work with.
func (s Settings) Validate() error {
	switch {
	case s.Density < 1 || s.Density > 60:
		return fmt.Errorf("%w: density %d not in [1,60]", core.ErrInvalidSettings, s.Density)
	case s.Particles < 0 || s.Particles > 5000:
		return fmt.Errorf("%w: particles %d not in [0,5000]", core.ErrInvalidSettings, s.Particles)
	case s.ArrowGrid < 4 || s.ArrowGrid > 64:
		return fmt.Errorf("%w: arrow grid %d not in [4,64]", core.ErrInvalidSettings, s.ArrowGrid)
	case s.Speed <= 0 || s.Speed > 10:
		return fmt.Errorf("%w: speed %g not in (0,10]", core.ErrInvalidSettings, s.Speed)
	case s.Quality < 0 || s.Quality > 3:
		return fmt.Errorf("%w: quality %d", core.ErrTierOutOfRange, s.Quality)
	}
	return nil
}

// Tool is the active pointer tool.
type Tool int

const (
	ToolPointer Tool = iota
	ToolPositive
	ToolNegative
	ToolTestCharge
	ToolProbe
	ToolGauss
	ToolWork
	ToolFreeCharge
)

var toolNames = [...]string{"pointer", "positive", "negative", "testcharge", "probe", "gauss", "work", "freecharge"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool accepts a tool name.
func ParseTool(s string) (Tool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range toolNames {
		if n == s {
			return Tool(i), nil
		}
	}
	return ToolPointer, fmt.Errorf("%w: tool %q", core.ErrInvalidSettings, s)
}
