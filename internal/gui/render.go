package gui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/perf"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/scene"
)

const telemetryLen = 200

// Draw renders one frame through the orchestrator and presents it with the
// HUD on top.
func (a *App) Draw(ctx context.Context) error {
	img, err := a.orch.Render(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("render: %w", err)
	}
	a.upload(img)
	a.recordTelemetry()

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(7, 10, 20, 255))
	src := rl.NewRectangle(0, 0, float32(a.texW), float32(a.texH))
	dst := rl.NewRectangle(0, 0, float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	rl.DrawTexturePro(a.tex, src, dst, rl.NewVector2(0, 0), 0, rl.White)
	a.DrawHUD()
	if a.showHelp {
		a.drawHelp()
	}
	rl.EndDrawing()
	return nil
}

// upload copies the frame into the window texture, reallocating it when the
// viewport size changes.
func (a *App) upload(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	if w != a.texW || h != a.texH {
		if a.texW > 0 {
			rl.UnloadTexture(a.tex)
		}
		a.tex = rl.LoadTextureFromImage(rl.NewImageFromImage(img))
		a.texW, a.texH = w, h
		a.pixels = make([]color.RGBA, w*h)
		a.log.Debug("texture resized", zap.Int("width", w), zap.Int("height", h))
		return
	}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			a.pixels[y*w+x] = color.RGBA{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]}
		}
	}
	rl.UpdateTexture(a.tex, a.pixels)
}

func (a *App) recordTelemetry() {
	if len(a.telemetry) >= telemetryLen {
		a.telemetry = a.telemetry[1:]
	}
	a.telemetry = append(a.telemetry, float64(rl.GetFrameTime()*1000))
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawHUD() {
	w := int(rl.GetScreenWidth())
	h := int(rl.GetScreenHeight())
	st := a.orch.Stats()

	rl.DrawRectangle(16, 16, 330, 150, ColPanel)
	a.drawText("champ électrostatique", 28, 24, 20, ColSelect)
	name := "file"
	if a.preset >= 0 {
		name = a.presets[a.preset]
	}
	a.drawText(":: "+name, 28, 48, 14, ColText)

	mode := "auto"
	if !a.scene.Settings().AutoAdapt {
		mode = "manual"
	}
	a.drawText(fmt.Sprintf("tier %d %s (%s)  %s", st.Tier, perf.TierName(st.Tier), mode, st.Evaluator), 28, 70, 14, ColAccent)
	a.drawText(fmt.Sprintf("tool %s  heatmap %s", a.scene.Tool(), a.scene.Toggles().Heatmap), 28, 90, 14, ColAccent)

	cs := a.scene.Charges()
	eff := a.scene.Effective()
	a.drawText(fmt.Sprintf("%d charges  Q=%+.1f µC  U=%s", len(cs), core.TotalCharge(cs), physics.FormatSI(physics.SystemEnergy(cs), "J")), 28, 110, 14, ColText)
	if sel, ok := a.scene.Charge(a.selected); ok {
		lock := ""
		if sel.Locked {
			lock = " locked"
		}
		a.drawText(fmt.Sprintf("selected %+.1f µC at (%.2f, %.2f)%s", sel.Q, sel.X, sel.Y, lock), 28, 130, 14, ColSelect)
	}

	a.drawReadouts(w, eff)
	a.DrawTelemetry(h)

	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 28, h-30, 14, ColTextDim)
	budget := ColTextDim
	if st.OverBudget {
		budget = ColWarn
	}
	a.drawText(fmt.Sprintf("%.1f ms", float64(st.Elapsed)/float64(time.Millisecond)), 110, h-30, 14, budget)
	if st.HookErrors > 0 {
		a.drawText(fmt.Sprintf("%d hook errors", st.HookErrors), 200, h-30, 14, ColWarn)
	}
	if a.status != "" && time.Since(a.statusAt) < statusTimeout {
		a.drawText(a.status, 28, h-54, 14, ColAccent)
	}
	a.drawText("[1-8] TOOLS  [H] HEATMAP  [N] PRESET  [CTRL+Z/Y] UNDO/REDO  [F1] HELP  [Q] QUIT", w-720, h-30, 14, ColTextDim)
}

// drawReadouts shows the numbers behind the tool overlays.
func (a *App) drawReadouts(w int, eff []core.Charge) {
	x, y := w-330, 24
	line := func(s string) {
		a.drawText(s, x, y, 14, ColAccent)
		y += 18
	}
	switch a.scene.Tool() {
	case scene.ToolProbe:
		if s, ok := a.scene.ProbeSample(); ok {
			line("V  " + physics.FormatSI(s.Potential, "V"))
			line("|E| " + physics.FormatSI(s.Magnitude, "V/m"))
		}
	case scene.ToolGauss:
		if g, ok := a.scene.GaussResult(a.gov.Profile().GaussN); ok {
			line(fmt.Sprintf("flux  %.4g N·m²/C", g.Flux))
			line(fmt.Sprintf("Q/ε0  %.4g N·m²/C", g.EnclosedOverEps0))
			line(fmt.Sprintf("Qenc  %+.2f µC  err %.2f%%", g.Enclosed, g.ErrorPct))
		}
	case scene.ToolWork:
		if r, ok := a.scene.WorkResult(); ok {
			line("ΔV " + physics.FormatSI(r.DeltaV, "V"))
			line("W  " + physics.FormatSI(r.Work, "J"))
		}
	case scene.ToolFreeCharge:
		if free := a.orch.Free(); free.Active() {
			e := free.Energy(eff)
			line("K  " + physics.FormatSI(e.Kinetic, "J"))
			line("U  " + physics.FormatSI(e.Potential, "J"))
			line("E  " + physics.FormatSI(e.Total, "J"))
			line(fmt.Sprintf("t  %.2f s", free.Elapsed()))
		}
	}
	if c, ok := physics.Capacitor(a.scene.Charges()); ok {
		line(fmt.Sprintf("plates d=%.2f  ΔV %s", c.Separation, physics.FormatSI(c.DeltaV, "V")))
		line("E gap " + physics.FormatSI(c.Field, "V/m"))
	}
	if a.scene.Toggles().Mirror {
		line("grounded plane y=0")
	}
}

// DrawTelemetry plots recent frame times against the 60 and 30 fps lines.
func (a *App) DrawTelemetry(h int) {
	if len(a.telemetry) < 2 {
		return
	}
	rectX, rectY := 28, h-140
	width, height := 300, 60
	const top = 50.0 // ms

	rl.DrawRectangle(int32(rectX-8), int32(rectY-8), int32(width+16), int32(height+16), ColPanel)
	for _, ms := range []float64{1000.0 / 60, 1000.0 / 30} {
		py := float32(rectY+height) - float32(ms/top)*float32(height)
		rl.DrawLine(int32(rectX), int32(py), int32(rectX+width), int32(py), ColTextDim)
	}

	points := make([]rl.Vector2, len(a.telemetry))
	for i, v := range a.telemetry {
		px := float32(rectX) + float32(i)/float32(telemetryLen)*float32(width)
		py := float32(rectY+height) - float32(min(v, top)/top)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}
	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("%.1f ms", a.telemetry[len(a.telemetry)-1]), rectX+width+14, rectY+height-10, 14, ColText)
}

func (a *App) drawHelp() {
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	rl.DrawRectangle(w/2-300, h/2-200, 600, 400, rl.NewColor(7, 10, 20, 235))
	y := int(h/2 - 180)
	for _, l := range helpLines {
		a.drawText(l, int(w/2-280), y, 16, ColAccent)
		y += 22
	}
}

var helpLines = []string{
	"1 pointer  2 +q  3 -q  4 test  5 probe  6 gauss  7 work  8 free",
	"left drag   move charge (pointer) / gauss radius",
	"right click delete charge     middle drag  pan",
	"wheel       zoom              R  reset view",
	"up / down   change q of the selection by 0.5",
	"K lock   DEL delete   X clear test and free charges",
	"F lines  V vectors  E equipotentials  L landscape",
	"P particles  A arcs  B bloom  O forces  U superposition",
	"M mirror  G snap  W field flow  C chromatic  H heatmap",
	"N / shift+N preset   TAB auto quality   CTRL+Q tier",
	"CTRL+Z undo  CTRL+Y redo  CTRL+S save  F12 png",
}
