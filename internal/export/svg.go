package export

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/colormap"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/fieldlines"
	"github.com/semo00000/champ-electrostatique/internal/raster"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

// SVGOptions selects what goes into a vector export.
type SVGOptions struct {
	Density        float64
	FieldSteps     int
	Equipotentials bool
	CellSize       float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Density: 16, FieldSteps: 600, Equipotentials: true, CellSize: 12}
}

func hexOf(r, g, b uint8) string { return fmt.Sprintf("#%02x%02x%02x", r, g, b) }

// SceneSVG draws field lines, equipotentials and charges for the viewport t.
func SceneSVG(w io.Writer, charges []core.Charge, t view.Transform, opt SVGOptions) error {
	width, height := t.Width, t.Height
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#070a14"/>
`, width, height, width, height)

	if len(charges) > 0 && opt.Equipotentials {
		cell := opt.CellSize
		if cell <= 0 {
			cell = 12
		}
		g := raster.SamplePotential(t, cell, charges)
		sb.WriteString(`<g fill="none" stroke-width="1">` + "\n")
		for _, c := range raster.Equipotentials(g, raster.Levels()) {
			if len(c.Segments) == 0 {
				continue
			}
			col := colormap.Equipotential(c.Level)
			fmt.Fprintf(&sb, `<path stroke="%s" stroke-opacity="%.2f" d="`, hexOf(col.R, col.G, col.B), float64(col.A)/255)
			for _, s := range c.Segments {
				fmt.Fprintf(&sb, "M%.1f,%.1f L%.1f,%.1f ", s.A.X, s.A.Y, s.B.X, s.B.Y)
			}
			sb.WriteString("\"/>\n")
		}
		sb.WriteString("</g>\n")
	}

	if len(charges) > 0 {
		p := fieldlines.DefaultParams(t.VisibleRect(), opt.FieldSteps)
		paths := raster.ScreenPaths(t, fieldlines.TraceAll(charges, p, opt.Density))
		fl := colormap.FieldLine
		fmt.Fprintf(&sb, `<g fill="none" stroke="%s" stroke-opacity="%.2f" stroke-width="1.2">`+"\n",
			hexOf(fl.R, fl.G, fl.B), float64(fl.A)/255)
		for _, path := range paths {
			writePath(&sb, path)
		}
		sb.WriteString("</g>\n")
	}

	r := 14.0
	for _, c := range charges {
		p := t.WorldToScreen(c.Pos())
		col := colormap.ChargeColor(c.Q).Hex()
		sign := "+"
		if c.Q < 0 {
			sign = "−"
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.0f" fill="%s"/>
<text x="%.1f" y="%.1f" fill="#ffffff" font-family="monospace" font-size="14" text-anchor="middle">%s</text>
`, p.X, p.Y, r, col, p.X, p.Y+5, sign)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writePath(sb *strings.Builder, pts []r2.Vec) {
	if len(pts) < 2 {
		return
	}
	sb.WriteString(`<path d="M`)
	for i, p := range pts {
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", p.X, p.Y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", p.X, p.Y)
		}
	}
	sb.WriteString("\"/>\n")
}

// ProfileSVG plots potential along a sampled line, normalised to the box.
func ProfileSVG(rows []Row, width, height int, stroke string) string {
	if len(rows) < 2 {
		return ""
	}
	s := Summarize(rows)
	lo, hi := s.MinPotential, s.MaxPotential
	if hi == lo {
		hi = lo + 1
	}
	span := rows[len(rows)-1].Distance
	if span == 0 {
		span = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`, width, height, width, height, stroke)
	for i, r := range rows {
		x := r.Distance / span * float64(width)
		y := float64(height) - (r.Potential-lo)/(hi-lo)*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
