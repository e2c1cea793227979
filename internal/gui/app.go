// Package gui is the desktop host: a raylib window that shows the frames
// composed by the render orchestrator and maps mouse and keyboard input onto
// scene commands.
package gui

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/compute"
	"github.com/semo00000/champ-electrostatique/internal/config"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/export"
	"github.com/semo00000/champ-electrostatique/internal/perf"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/render"
	"github.com/semo00000/champ-electrostatique/internal/scene"
	"github.com/semo00000/champ-electrostatique/internal/storage"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

var (
	ColPanel   = rl.NewColor(7, 10, 20, 200)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(70, 70, 80, 255)
	ColWarn    = rl.NewColor(255, 120, 90, 255)
)

const (
	zoomStep      = 1.1
	chargeStep    = 0.5
	statusTimeout = 3 * time.Second
)

// Options configure a window session.
type Options struct {
	Settings *config.Settings
	Preset   string
	Seed     int64
	// Scene, when set, replaces the preset.
	Scene *config.SceneFile
	Store *storage.Store
	Log   *zap.Logger
}

type App struct {
	log   *zap.Logger
	scene *scene.Scene
	gov   *perf.Governor
	orch  *render.Orchestrator
	store *storage.Store
	hw    perf.Hardware

	presets []string
	preset  int
	seed    int64

	// scale is frame pixels per screen pixel, capped by the tier's DPR.
	scale  float64
	tex    rl.Texture2D
	texW   int
	texH   int
	pixels []color.RGBA
	font   rl.Font

	dragID    string
	dragging  bool
	gaussDrag bool
	selected  string
	showHelp  bool

	status    string
	statusAt  time.Time
	lastErr   error
	telemetry []float64
}

// initWindow opens a resizable window at the configured size.
func initWindow(w, h int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w), int32(h), "champ électrostatique")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont prefers Liberation Mono and falls back to the raylib default.
func loadFont() rl.Font {
	const path = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	if _, err := os.Stat(path); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(path, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(ctx context.Context, opt Options) error {
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("gui")
	st := opt.Settings

	initWindow(st.Width, st.Height)
	defer rl.CloseWindow()

	// The raylib context is current on this thread, so GL loads here.
	eval := compute.AutoSelect(rl.IsWindowReady(), log)
	hw := perf.Detect(compute.RendererString())
	tier := st.ResolveQuality(hw.Tier)
	log.Info("hardware detected",
		zap.String("cpu", hw.CPUBrand),
		zap.String("renderer", hw.Renderer),
		zap.Int("detected_tier", hw.Tier),
		zap.Int("tier", tier),
		zap.String("evaluator", eval.Name()))

	app, err := NewApp(opt, tier, hw, eval, log)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.RunLoop(ctx)
}

// NewApp builds the scene, governor and orchestrator. The window must be
// open.
func NewApp(opt Options, tier int, hw perf.Hardware, eval compute.Evaluator, log *zap.Logger) (*App, error) {
	st := opt.Settings
	sc := scene.New(st.Width, st.Height, tier)
	if err := sc.SetSettings(st.Scene(tier)); err != nil {
		return nil, fmt.Errorf("applying settings: %w", err)
	}
	sc.SetHeatmap(st.HeatmapMode())

	gov := perf.NewGovernor(tier, perf.DefaultThresholds(), log)
	orch := render.New(sc, gov, eval, log)
	orch.SetSeed(opt.Seed)

	a := &App{
		log:       log,
		scene:     sc,
		gov:       gov,
		orch:      orch,
		store:     opt.Store,
		hw:        hw,
		presets:   config.ListPresets(),
		seed:      opt.Seed,
		font:      loadFont(),
		telemetry: make([]float64, 0, telemetryLen),
	}
	if opt.Scene != nil {
		opt.Scene.Apply(sc)
		a.preset = -1
	} else {
		for i, n := range a.presets {
			if n == opt.Preset {
				a.preset = i
			}
		}
		a.loadPreset()
	}
	return a, nil
}

func (a *App) Close() {
	if a.texW > 0 {
		rl.UnloadTexture(a.tex)
	}
	a.orch.Close()
}

func (a *App) RunLoop(ctx context.Context) error {
	for !rl.WindowShouldClose() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if quit := a.Update(); quit {
			return nil
		}
		if err := a.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) loadPreset() {
	if a.preset < 0 {
		a.preset = 0
	}
	p, err := config.GetPreset(a.presets[a.preset])
	if err != nil {
		a.setStatus(err.Error())
		return
	}
	a.scene.ReplaceCharges(p.Charges(a.seed))
	a.selected = ""
	a.orch.Select("")
	a.setStatus("preset " + p.Name)
}

func (a *App) setStatus(s string) {
	a.status, a.statusAt = s, time.Now()
}

func (a *App) fail(err error) {
	if err == nil {
		return
	}
	a.lastErr = err
	a.setStatus(err.Error())
	a.log.Debug("command rejected", zap.Error(err))
}

// Update applies one frame of input. It reports true when the user quits.
func (a *App) Update() bool {
	a.applyScale(float64(rl.GetWindowScaleDPI().X))
	if w, h := rl.GetScreenWidth(), rl.GetScreenHeight(); w > 0 && h > 0 {
		a.scene.Resize(int(float64(w)*a.scale), int(float64(h)*a.scale))
	}
	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
	if rl.IsKeyPressed(rl.KeyQ) && !ctrl {
		return true
	}
	a.handleKeys(ctrl)
	a.handleMouse()
	return false
}

// applyScale renders frames at the display scale capped by the current
// tier, keeping the world size of the view.
func (a *App) applyScale(dpi float64) {
	scale := a.gov.Profile().RenderScale(dpi)
	if scale == a.scale {
		return
	}
	v := a.scene.View()
	ppu := v.PixelsPerUnit
	if ppu == 0 {
		ppu = view.DefaultPixelsPerUnit
	}
	want := view.DefaultPixelsPerUnit * scale
	v.Pan = r2.Scale(want/ppu, v.Pan)
	v.PixelsPerUnit = want
	a.scene.SetView(v)
	a.log.Debug("render scale", zap.Float64("dpi", dpi), zap.Float64("scale", scale))
	a.scale = scale
}

var toolKeys = map[int32]scene.Tool{
	rl.KeyOne:   scene.ToolPointer,
	rl.KeyTwo:   scene.ToolPositive,
	rl.KeyThree: scene.ToolNegative,
	rl.KeyFour:  scene.ToolTestCharge,
	rl.KeyFive:  scene.ToolProbe,
	rl.KeySix:   scene.ToolGauss,
	rl.KeySeven: scene.ToolWork,
	rl.KeyEight: scene.ToolFreeCharge,
}

var toggleKeys = map[int32]string{
	rl.KeyF: "field_lines",
	rl.KeyV: "vectors",
	rl.KeyE: "equipotentials",
	rl.KeyP: "particles",
	rl.KeyA: "arcs",
	rl.KeyB: "bloom",
	rl.KeyO: "forces",
	rl.KeyL: "landscape",
	rl.KeyU: "superposition",
	rl.KeyM: "mirror",
	rl.KeyG: "snap",
	rl.KeyW: "field_flow",
	rl.KeyC: "chromatic",
}

func (a *App) handleKeys(ctrl bool) {
	switch {
	case ctrl && rl.IsKeyPressed(rl.KeyZ):
		a.fail(a.scene.Undo())
		return
	case ctrl && rl.IsKeyPressed(rl.KeyY):
		a.fail(a.scene.Redo())
		return
	case ctrl && rl.IsKeyPressed(rl.KeyS):
		a.saveSession()
		return
	}

	for k, t := range toolKeys {
		if rl.IsKeyPressed(k) {
			a.scene.SetTool(t)
			a.setStatus("tool " + t.String())
		}
	}
	for k, name := range toggleKeys {
		if rl.IsKeyPressed(k) {
			on, _ := a.scene.Toggles().Get(name)
			a.fail(a.scene.SetToggle(name, !on))
		}
	}

	if rl.IsKeyPressed(rl.KeyH) {
		m := (a.scene.Toggles().Heatmap + 1) % core.HeatmapMode(len(core.HeatmapModes()))
		a.scene.SetHeatmap(m)
		a.setStatus("heatmap " + m.String())
	}
	if rl.IsKeyPressed(rl.KeyN) {
		step := 1
		if rl.IsKeyDown(rl.KeyLeftShift) {
			step = len(a.presets) - 1
		}
		a.preset = (max(a.preset, 0) + step) % len(a.presets)
		a.loadPreset()
	}
	if rl.IsKeyPressed(rl.KeyQ) && ctrl {
		st := a.scene.Settings()
		st.Quality = (st.Quality + 1) % (perf.MaxTier + 1)
		a.fail(a.scene.SetSettings(st))
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		st := a.scene.Settings()
		st.AutoAdapt = !st.AutoAdapt
		a.fail(a.scene.SetSettings(st))
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.scene.ResetView()
	}
	if rl.IsKeyPressed(rl.KeyX) {
		a.orch.TestCharges().Clear()
		a.orch.Free().Remove()
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		a.showHelp = !a.showHelp
	}
	if rl.IsKeyPressed(rl.KeyF12) {
		a.screenshot()
	}

	if a.selected == "" {
		return
	}
	switch {
	case rl.IsKeyPressed(rl.KeyDelete), rl.IsKeyPressed(rl.KeyBackspace):
		a.fail(a.scene.RemoveCharge(a.selected))
		a.selectCharge("")
	case rl.IsKeyPressed(rl.KeyK):
		if c, ok := a.scene.Charge(a.selected); ok {
			a.fail(a.scene.LockCharge(a.selected, !c.Locked))
		}
	case rl.IsKeyPressed(rl.KeyUp), rl.IsKeyPressed(rl.KeyDown):
		if c, ok := a.scene.Charge(a.selected); ok {
			d := chargeStep
			if rl.IsKeyPressed(rl.KeyDown) {
				d = -d
			}
			q := c.Q + d
			if q == 0 {
				q += d
			}
			a.fail(a.scene.SetChargeValue(a.selected, q))
		}
	}
}

func (a *App) selectCharge(id string) {
	a.selected = id
	a.orch.Select(id)
}

func (a *App) handleMouse() {
	mp := rl.GetMousePosition()
	screen := r2.Scale(a.scale, r2.Vec{X: float64(mp.X), Y: float64(mp.Y)})
	world := a.scene.ScreenToWorld(screen)
	a.orch.SetCursor(a.scene.View().ScreenToWorld(screen))

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		f := zoomStep
		if wheel < 0 {
			f = 1 / zoomStep
		}
		a.scene.ZoomAt(screen, f)
	}
	if rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		d := rl.GetMouseDelta()
		a.scene.PanBy(float64(d.X)*a.scale, float64(d.Y)*a.scale)
	}
	if rl.IsMouseButtonPressed(rl.MouseRightButton) {
		if id, ok := a.scene.HitTest(screen); ok {
			a.fail(a.scene.RemoveCharge(id))
			if id == a.selected {
				a.selectCharge("")
			}
		}
	}

	switch a.scene.Tool() {
	case scene.ToolPointer:
		a.pointer(screen, world)
	case scene.ToolPositive, scene.ToolNegative:
		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			q := 1.0
			if a.scene.Tool() == scene.ToolNegative {
				q = -1
			}
			a.selectCharge(a.scene.AddCharge(world.X, world.Y, q))
		}
	case scene.ToolTestCharge:
		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			a.orch.TestCharges().Add(world)
		}
	case scene.ToolProbe:
		if rl.IsMouseButtonDown(rl.MouseLeftButton) {
			a.scene.SetProbe(world)
		}
	case scene.ToolGauss:
		a.gauss(world)
	case scene.ToolWork:
		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			a.scene.WorkClick(world)
		}
	case scene.ToolFreeCharge:
		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			a.orch.Free().Place(world)
		}
	}
}

// pointer selects and drags charges. A drag is one undo step.
func (a *App) pointer(screen, world r2.Vec) {
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		id, ok := a.scene.HitTest(screen)
		a.selectCharge(id)
		a.dragID, a.dragging = id, ok
	}
	if a.dragging && rl.IsMouseButtonDown(rl.MouseLeftButton) {
		if err := a.scene.MoveCharge(a.dragID, world.X, world.Y); err != nil {
			a.fail(err)
			a.dragging = false
		}
	}
	if a.dragging && rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		a.scene.Commit()
		a.dragging = false
	}
}

// gauss places the surface centre on press and sets the radius while
// dragging.
func (a *App) gauss(world r2.Vec) {
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		a.scene.SetGauss(world, physics.MinRadius)
		a.gaussDrag = true
	}
	if a.gaussDrag && rl.IsMouseButtonDown(rl.MouseLeftButton) {
		if g, ok := a.scene.Gauss(); ok {
			a.scene.SetGauss(g.Center, max(physics.MinRadius, r2.Norm(r2.Sub(world, g.Center))))
		}
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		a.gaussDrag = false
	}
}

func (a *App) saveSession() {
	if a.store == nil {
		a.setStatus("no session store configured")
		return
	}
	name := "session"
	if a.preset >= 0 {
		name = a.presets[a.preset]
	}
	cs := a.scene.Effective()
	rows, err := export.SampleLine(r2.Vec{X: -2}, r2.Vec{X: 2}, export.LineSamples, cs)
	if err != nil {
		a.fail(err)
		return
	}
	id, err := a.store.Save(storage.Session{
		Name:    name,
		Charges: a.scene.Charges(),
		Quality: a.gov.Tier(),
		Heatmap: a.scene.Toggles().Heatmap,
		Samples: rows,
	}, physics.SystemEnergy(cs))
	if err != nil {
		a.fail(err)
		return
	}
	a.log.Info("session saved", zap.String("id", id))
	a.setStatus("saved " + id)
}

func (a *App) screenshot() {
	name := fmt.Sprintf("champ_%d.png", time.Now().Unix())
	if a.store != nil {
		name = filepath.Join(a.store.Dir(), name)
	}
	f, err := os.Create(name)
	if err != nil {
		a.fail(err)
		return
	}
	defer f.Close()
	if err := export.WritePNG(f, a.orch.Image()); err != nil {
		a.fail(err)
		return
	}
	a.setStatus("wrote " + name)
}
