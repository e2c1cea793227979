package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/compute"
	"github.com/semo00000/champ-electrostatique/internal/config"
	"github.com/semo00000/champ-electrostatique/internal/export"
	"github.com/semo00000/champ-electrostatique/internal/observability"
	"github.com/semo00000/champ-electrostatique/internal/perf"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/render"
	"github.com/semo00000/champ-electrostatique/internal/scene"
	"github.com/semo00000/champ-electrostatique/internal/storage"
	"github.com/semo00000/champ-electrostatique/internal/viz"
)

const defaultPreset = "dipole"

// headlessStep is the fixed frame interval of offline renders.
const headlessStep = time.Second / 60

var toggles []string

func presetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultPreset
}

// parsePoint reads "x,y" in world units.
func parsePoint(s string) (r2.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return r2.Vec{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("point %q: %w", s, err)
	}
	return r2.Vec{X: x, Y: y}, nil
}

// buildScene loads --scene or the named preset into a fresh scene at the
// configured viewport, with the requested toggles switched on.
func buildScene(name string, tier int) (*scene.Scene, error) {
	sc := scene.New(settings.Width, settings.Height, tier)
	if err := sc.SetSettings(settings.Scene(tier)); err != nil {
		return nil, err
	}
	sc.SetHeatmap(settings.HeatmapMode())
	if sceneFile != "" {
		f, err := config.LoadScene(sceneFile)
		if err != nil {
			return nil, err
		}
		f.Apply(sc)
	} else {
		p, err := config.GetPreset(name)
		if err != nil {
			return nil, err
		}
		sc.ReplaceCharges(p.Charges(seed))
	}
	for _, t := range toggles {
		if err := sc.SetToggle(t, true); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func sessionName(args []string) string {
	if sceneFile != "" {
		return strings.TrimSuffix(filepath.Base(sceneFile), filepath.Ext(sceneFile))
	}
	return presetArg(args)
}

// outputFile opens path for writing, or stdout for "" and "-".
func outputFile(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// headlessTier is the configured tier, or the top tier when detection is
// requested since offline renders have no frame budget to protect.
func headlessTier() int {
	return settings.ResolveQuality(perf.MaxTier)
}

// renderScene runs frames through a CPU-backed orchestrator with a fixed
// clock so particles and arcs settle deterministically.
func renderScene(ctx context.Context, sc *scene.Scene, frames int, log *zap.Logger) (*image.RGBA, render.Stats, error) {
	gov := perf.NewGovernor(sc.Settings().Quality, perf.DefaultThresholds(), log)
	gov.SetAuto(false)
	orch := render.New(sc, gov, compute.NewCPUEvaluator(), log)
	defer orch.Close()
	orch.SetSeed(seed)
	orch.SetBudget(time.Hour)

	now := time.Unix(0, 0)
	orch.SetClock(func() time.Time { return now })

	var img *image.RGBA
	for i := 0; i < max(1, frames); i++ {
		now = now.Add(headlessStep)
		var err error
		if img, err = orch.Render(ctx); err != nil {
			return nil, render.Stats{}, err
		}
	}
	return img, orch.Stats(), nil
}

func writePNGFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newRenderCmd() *cobra.Command {
	var (
		out    string
		dir    string
		all    bool
		frames int
	)
	cmd := &cobra.Command{
		Use:   "render [preset]",
		Short: "render a preset or scene file to PNG without a window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := observability.GetLogger()
			if !all {
				name := sessionName(args)
				sc, err := buildScene(presetArg(args), headlessTier())
				if err != nil {
					return err
				}
				img, st, err := renderScene(cmd.Context(), sc, frames, log)
				if err != nil {
					return err
				}
				if out == "" {
					out = name + ".png"
				}
				if err := writePNGFile(out, img); err != nil {
					return err
				}
				fmt.Printf("%s  %s  stages=%s\n", out, st.Elapsed, strings.Join(st.Stages, ","))
				return nil
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			names := config.ListPresets()
			paths := make([]string, len(names))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, name := range names {
				g.Go(func() error {
					sc, err := buildScene(name, headlessTier())
					if err != nil {
						return err
					}
					img, _, err := renderScene(ctx, sc, frames, log.With(zap.String("preset", name)))
					if err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
					paths[i] = filepath.Join(dir, name+".png")
					return writePNGFile(paths[i], img)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <preset>.png)")
	cmd.Flags().StringVar(&dir, "dir", "renders", "output directory for --all")
	cmd.Flags().BoolVar(&all, "all", false, "render every preset in parallel")
	cmd.Flags().IntVar(&frames, "frames", 30, "frames to run before capturing")
	cmd.Flags().StringSliceVar(&toggles, "on", nil, "toggles to switch on (vectors, equipotentials, landscape, mirror, ...)")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var (
		from, to string
		n        int
		nx, ny   int
		format   string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "sample potential and field to CSV or JSON",
	}
	write := func(rows []export.Row, doc export.Document) error {
		w, err := outputFile(out)
		if err != nil {
			return err
		}
		defer w.Close()
		switch format {
		case "csv":
			return export.WriteCSV(w, rows)
		case "json":
			return export.WriteJSON(w, doc)
		}
		return fmt.Errorf("unknown format %q", format)
	}

	lineCmd := &cobra.Command{
		Use:   "line [preset]",
		Short: "sample along a segment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parsePoint(from)
			if err != nil {
				return err
			}
			b, err := parsePoint(to)
			if err != nil {
				return err
			}
			sc, err := buildScene(presetArg(args), headlessTier())
			if err != nil {
				return err
			}
			cs := sc.Effective()
			rows, err := export.SampleLine(a, b, n, cs)
			if err != nil {
				return err
			}
			return write(rows, export.NewLineDocument(cs, rows))
		},
	}
	lineCmd.Flags().StringVar(&from, "from", "-2,0", "start point x,y")
	lineCmd.Flags().StringVar(&to, "to", "2,0", "end point x,y")
	lineCmd.Flags().IntVar(&n, "n", export.LineSamples, "number of samples")

	gridCmd := &cobra.Command{
		Use:   "grid [preset]",
		Short: "sample a grid over the visible region",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := buildScene(presetArg(args), headlessTier())
			if err != nil {
				return err
			}
			cs := sc.Effective()
			g, err := export.SampleGrid(cmd.Context(), sc.View().VisibleRect(), nx, ny, cs)
			if err != nil {
				return err
			}
			return write(g.Rows, export.NewGridDocument(cs, g))
		},
	}
	gridCmd.Flags().IntVar(&nx, "nx", 64, "columns")
	gridCmd.Flags().IntVar(&ny, "ny", 40, "rows")

	for _, c := range []*cobra.Command{lineCmd, gridCmd} {
		c.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
		c.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
		c.Flags().StringSliceVar(&toggles, "on", nil, "toggles to switch on (mirror adds image charges)")
	}
	cmd.AddCommand(lineCmd, gridCmd)
	return cmd
}

func newProfileCmd() *cobra.Command {
	var (
		from, to      string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "profile [preset]",
		Short: "plot V and |E| along a line in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parsePoint(from)
			if err != nil {
				return err
			}
			b, err := parsePoint(to)
			if err != nil {
				return err
			}
			sc, err := buildScene(presetArg(args), headlessTier())
			if err != nil {
				return err
			}
			rows, err := export.SampleLine(a, b, export.LineSamples, sc.Effective())
			if err != nil {
				return err
			}
			fmt.Println(viz.ProfileChart(rows, width, height))
			s := export.Summarize(rows)
			fmt.Printf("\nV in [%s, %s]  max |E| %s\n",
				physics.FormatSI(s.MinPotential, "V"), physics.FormatSI(s.MaxPotential, "V"), physics.FormatSI(s.MaxField, "V/m"))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "-2,0", "start point x,y")
	cmd.Flags().StringVar(&to, "to", "2,0", "end point x,y")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 10, "plot height")
	return cmd
}

func newSVGCmd() *cobra.Command {
	var out string
	opt := export.DefaultSVGOptions()
	cmd := &cobra.Command{
		Use:   "svg [preset]",
		Short: "write field lines and equipotentials as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := buildScene(presetArg(args), headlessTier())
			if err != nil {
				return err
			}
			if out == "" {
				out = sessionName(args) + ".svg"
			}
			w, err := outputFile(out)
			if err != nil {
				return err
			}
			defer w.Close()
			return export.SceneSVG(w, sc.Effective(), sc.View(), opt)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <preset>.svg, - for stdout)")
	cmd.Flags().IntVar(&opt.Density, "density", opt.Density, "field lines per unit charge")
	cmd.Flags().IntVar(&opt.FieldSteps, "steps", opt.FieldSteps, "integration step budget per line")
	cmd.Flags().BoolVar(&opt.Equipotentials, "equipotentials", opt.Equipotentials, "draw equipotential contours")
	cmd.Flags().StringSliceVar(&toggles, "on", nil, "toggles to switch on (mirror adds image charges)")
	return cmd
}

func newChargesCmd() *cobra.Command {
	var csvOut bool
	cmd := &cobra.Command{
		Use:   "charges [preset]",
		Short: "print the charge table with field and net force at each charge",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := buildScene(presetArg(args), headlessTier())
			if err != nil {
				return err
			}
			if csvOut {
				return export.WriteChargesCSV(os.Stdout, sc.Charges())
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tX\tY\tQ (µC)\t|E|\tFORCE\tLOCKED")
			for i, r := range export.ChargeTable(sc.Charges()) {
				fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%+.2f\t%s\t%s\t%v\n",
					i+1, r.X, r.Y, r.Q, physics.FormatSI(r.Field, "V/m"), physics.FormatSI(r.NetForce, "N"), r.Locked)
			}
			fmt.Fprintf(w, "\nenergy\t%s\n", physics.FormatSI(physics.SystemEnergy(sc.Charges()), "J"))
			if c, ok := physics.Capacitor(sc.Charges()); ok {
				fmt.Fprintf(w, "plates\td=%.2f\tΔV %s\tE %s\n", c.Separation,
					physics.FormatSI(c.DeltaV, "V"), physics.FormatSI(c.Field, "V/m"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&csvOut, "csv", false, "write CSV instead of a table")
	return cmd
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [preset]",
		Short: "field-line viewer in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier := headlessTier()
			sc, err := buildScene(presetArg(args), tier)
			if err != nil {
				return err
			}
			gov := perf.NewGovernor(tier, perf.DefaultThresholds(), observability.GetLogger())
			m := viz.NewViewer(sc, gov, presetArg(args), seed)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

func newSaveCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "save [preset]",
		Short: "store a preset or scene file as a session with a line profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parsePoint(from)
			if err != nil {
				return err
			}
			b, err := parsePoint(to)
			if err != nil {
				return err
			}
			tier := headlessTier()
			sc, err := buildScene(presetArg(args), tier)
			if err != nil {
				return err
			}
			rows, err := export.SampleLine(a, b, export.LineSamples, sc.Effective())
			if err != nil {
				return err
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			id, err := st.Save(storage.Session{
				Name:    sessionName(args),
				Charges: sc.Charges(),
				Quality: tier,
				Heatmap: sc.Toggles().Heatmap,
				Samples: rows,
			}, physics.SystemEnergy(sc.Charges()))
			if err != nil {
				return err
			}
			observability.GetLogger().Info("session saved", zap.String("id", id))
			fmt.Println(id)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "-2,0", "profile start x,y")
	cmd.Flags().StringVar(&to, "to", "2,0", "profile end x,y")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			runs, err := st.List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no sessions found")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTIME\tCHARGES\tQ (µC)\tENERGY\tTIER")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%+.1f\t%s\t%d\n",
					r.ID, r.Name, r.Timestamp.Format("2006-01-02 15:04:05"),
					r.Charges, r.TotalCharge, physics.FormatSI(r.Energy, "J"), r.Quality)
			}
			return w.Flush()
		},
	}
}

// newShowCmd prints a stored session's metadata, or plots its profile.
func newShowCmd() *cobra.Command {
	var plot bool
	cmd := &cobra.Command{
		Use:   "show [session_id]",
		Short: "print a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			if !plot {
				enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(meta)
			}
			rows, err := st.LoadSamples(args[0])
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return fmt.Errorf("session %s has no samples", meta.ID)
			}
			fmt.Println(viz.ProfileChart(rows, 80, 10))
			return nil
		},
	}
	cmd.Flags().BoolVar(&plot, "plot", false, "plot the stored line profile")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list the charge presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				p, _ := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d charges\t%s\n", name, len(p.Charges(seed)), p.Description)
			}
			return w.Flush()
		},
	}
}

func newHWCmd() *cobra.Command {
	var (
		renderer string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "hw",
		Short: "show detected hardware and the quality tier it maps to",
		RunE: func(cmd *cobra.Command, args []string) error {
			hw := perf.Detect(renderer)
			tier := settings.ResolveQuality(hw.Tier)
			if asJSON {
				enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					perf.Hardware
					Selected int          `json:"selected_tier"`
					Profile  perf.Profile `json:"profile"`
				}{hw, tier, perf.ForTier(tier)})
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "cpu\t%s (%s)\n", hw.CPUBrand, hw.CPUVendor)
			fmt.Fprintf(w, "cores\t%d\n", hw.Cores)
			fmt.Fprintf(w, "memory\t%.1f GB\n", hw.MemoryGB)
			fmt.Fprintf(w, "renderer\t%q\n", hw.Renderer)
			fmt.Fprintf(w, "gpu\t%s %s tier %d\n", hw.GPU.Vendor, hw.GPU.Model, hw.GPU.Tier)
			fmt.Fprintf(w, "cpu tier\t%d\n", hw.CPUTier)
			fmt.Fprintf(w, "detected tier\t%d (%s)\n", hw.Tier, perf.TierName(hw.Tier))
			fmt.Fprintf(w, "selected tier\t%d (%s)\n", tier, perf.TierName(tier))
			p := perf.ForTier(tier)
			fmt.Fprintf(w, "profile\tparticles %d, field steps %d, gpu charges %d, bloom 1/%d\n",
				p.Particles, p.FieldSteps, p.GPUCharges, p.BloomDiv)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&renderer, "renderer", "", "GL renderer string to classify (no window is opened)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
