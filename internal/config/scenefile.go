package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/scene"
)

type ViewConfig struct {
	PanX float64 `yaml:"pan_x"`
	PanY float64 `yaml:"pan_y"`
	Zoom float64 `yaml:"zoom"`
}

// SceneFile is the on-disk form of a charge arrangement.
type SceneFile struct {
	Charges []core.Charge `yaml:"charges"`
	View    ViewConfig    `yaml:"view"`
	Heatmap string        `yaml:"heatmap,omitempty"`
}

func LoadScene(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := &SceneFile{View: ViewConfig{Zoom: 1}}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, c := range f.Charges {
		if c.Q == 0 {
			return nil, fmt.Errorf("%w: charge %d has q = 0", core.ErrInvalidSettings, i)
		}
	}
	if f.View.Zoom <= 0 {
		f.View.Zoom = 1
	}
	if f.Heatmap != "" {
		if _, err := core.ParseHeatmapMode(f.Heatmap); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func SaveScene(path string, f *SceneFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CaptureScene snapshots the charges, view and heatmap of sc.
func CaptureScene(sc *scene.Scene) *SceneFile {
	v := sc.View()
	cs := sc.Charges()
	for i := range cs {
		cs[i].ID = ""
	}
	return &SceneFile{
		Charges: cs,
		View:    ViewConfig{PanX: v.Pan.X, PanY: v.Pan.Y, Zoom: v.Zoom},
		Heatmap: sc.Toggles().Heatmap.String(),
	}
}

// Apply replaces the charges of sc and restores the saved view and heatmap.
func (f *SceneFile) Apply(sc *scene.Scene) {
	sc.ReplaceCharges(f.Charges)
	v := sc.View()
	v.Pan = r2.Vec{X: f.View.PanX, Y: f.View.PanY}
	v.Zoom = f.View.Zoom
	sc.SetView(v)
	if m, err := core.ParseHeatmapMode(f.Heatmap); err == nil && f.Heatmap != "" {
		sc.SetHeatmap(m)
	}
}

// PresetScene wraps a preset in a scene file with the default view.
func PresetScene(p Preset, seed int64) *SceneFile {
	return &SceneFile{Charges: p.Charges(seed), View: ViewConfig{Zoom: 1}}
}
