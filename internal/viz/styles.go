package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/semo00000/champ-electrostatique/internal/export"
)

var (
	canvasStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8ff")).Padding(0, 1)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(panelWidth)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00e5ff"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff006e"))
	graphStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// GradientText colours each rune along a blend from start to end.
func GradientText(text string, start, end colorful.Color) string {
	rs := []rune(text)
	if len(rs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range rs {
		t := 0.0
		if len(rs) > 1 {
			t = float64(i) / float64(len(rs)-1)
		}
		c := start.BlendLab(end, t).Clamped()
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return b.String()
}

// SparklineChart renders the last width values as block characters coloured
// against the thresholds lo and hi.
func SparklineChart(values []float64, width int, lo, hi float64) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	top := hi * 1.2
	var b strings.Builder
	for _, v := range values {
		idx := int(v / top * float64(len(chars)-1))
		idx = max(0, min(len(chars)-1, idx))
		s := string(chars[idx])
		switch {
		case v >= hi:
			b.WriteString(SparkHigh.Render(s))
		case v >= lo:
			b.WriteString(SparkMid.Render(s))
		default:
			b.WriteString(SparkLow.Render(s))
		}
	}
	return b.String()
}

// ProfileChart plots potential (kV) and field magnitude (kV/m) along a
// sampled line.
func ProfileChart(rows []export.Row, width, height int) string {
	if len(rows) < 2 {
		return ""
	}
	v := make([]float64, len(rows))
	e := make([]float64, len(rows))
	for i, r := range rows {
		v[i], e[i] = r.Potential/1e3, r.Magnitude/1e3
	}
	pv := asciigraph.Plot(v, asciigraph.Height(height), asciigraph.Width(width),
		asciigraph.Caption("V (kV)"), asciigraph.SeriesColors(asciigraph.Cyan))
	pe := asciigraph.Plot(e, asciigraph.Height(height), asciigraph.Width(width),
		asciigraph.Caption("|E| (kV/m)"), asciigraph.SeriesColors(asciigraph.Magenta))
	return pv + "\n\n" + pe
}

// FPSChart plots a frame-rate trace with the governor thresholds.
func FPSChart(fps []float64, width, height int, lo, hi float64) string {
	if len(fps) < 2 {
		return ""
	}
	low := make([]float64, len(fps))
	high := make([]float64, len(fps))
	for i := range fps {
		low[i], high[i] = lo, hi
	}
	return asciigraph.PlotMany([][]float64{fps, low, high},
		asciigraph.Height(height), asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red, asciigraph.Yellow),
		asciigraph.Caption(fmt.Sprintf("fps (drop < %.0f, raise > %.0f)", lo, hi)))
}
