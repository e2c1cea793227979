package export

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

func dipole() []core.Charge {
	return []core.Charge{
		{ID: "a", X: -.5, Y: 0, Q: 1},
		{ID: "b", X: .5, Y: 0, Q: -1},
	}
}

func TestSampleLine(t *testing.T) {
	rows, err := SampleLine(r2.Vec{X: -2}, r2.Vec{X: 2}, LineSamples, dipole())
	require.NoError(t, err)
	require.Len(t, rows, LineSamples)

	assert.InDelta(t, -2, rows[0].X, 1e-12)
	assert.InDelta(t, 2, rows[len(rows)-1].X, 1e-12)
	assert.InDelta(t, 0, rows[0].Distance, 1e-12)
	assert.InDelta(t, 4, rows[len(rows)-1].Distance, 1e-12)

	want := physics.SampleAt(r2.Vec{X: rows[10].X}, dipole())
	assert.InDelta(t, want.Potential, rows[10].Potential, 1e-9)
	assert.InDelta(t, want.Magnitude, rows[10].Magnitude, 1e-9)

	_, err = SampleLine(r2.Vec{}, r2.Vec{X: 1}, 1, dipole())
	assert.Error(t, err)
}

func TestSampleLineOnBisectorIsEquipotential(t *testing.T) {
	rows, err := SampleLine(r2.Vec{Y: -2}, r2.Vec{Y: 2}, 21, dipole())
	require.NoError(t, err)
	for _, r := range rows {
		assert.InDelta(t, 0, r.Potential, 1e-6, "y=%.2f", r.Y)
	}
}

func TestSampleGrid(t *testing.T) {
	r := view.Rect{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}
	g, err := SampleGrid(context.Background(), r, 17, 33, dipole())
	require.NoError(t, err)
	require.Len(t, g.Rows, 17*33)

	tl, br := g.At(0, 0), g.At(16, 32)
	assert.Equal(t, r2.Vec{X: -1, Y: 1}, r2.Vec{X: tl.X, Y: tl.Y})
	assert.Equal(t, r2.Vec{X: 1, Y: -1}, r2.Vec{X: br.X, Y: br.Y})

	mid := g.At(8, 16)
	s := physics.SampleAt(r2.Vec{X: mid.X, Y: mid.Y}, dipole())
	assert.InDelta(t, s.Magnitude, mid.Magnitude, 1e-9)
}

func TestSampleGridRejectsBadInput(t *testing.T) {
	r := view.Rect{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}
	_, err := SampleGrid(context.Background(), r, 1, 4, dipole())
	assert.Error(t, err)
	_, err = SampleGrid(context.Background(), view.Rect{}, 4, 4, dipole())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = SampleGrid(ctx, r, 4, 64, dipole())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	rows := []Row{{Potential: -3, Magnitude: 1}, {Potential: 5, Magnitude: 3}}
	assert.Equal(t, Summary{Count: 2, MinPotential: -3, MaxPotential: 5, MeanField: 2, MaxField: 3}, Summarize(rows))
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestChargeTable(t *testing.T) {
	tab := ChargeTable(dipole())
	require.Len(t, tab, 2)
	assert.InDelta(t, physics.K*physics.MicroCoulomb, tab[0].Field, 1)
	assert.InDelta(t, physics.K*1e-12, tab[0].NetForce, 1e-9)
	assert.InDelta(t, tab[0].NetForce, tab[1].NetForce, 1e-12)
}

func TestCSVRoundTrip(t *testing.T) {
	rows, err := SampleLine(r2.Vec{X: -1, Y: 1}, r2.Vec{X: 1, Y: 1}, 9, dipole())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), "distance,x,y,potential,ex,ey,magnitude\n"))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(rows, back, cmpopts.EquateApprox(1e-7, 1e-9)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestChargesCSV(t *testing.T) {
	in := dipole()
	in[1].Locked = true
	var buf bytes.Buffer
	require.NoError(t, WriteChargesCSV(&buf, in))

	back, err := ReadChargesCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, back)

	_, err = ReadChargesCSV(strings.NewReader("id,x\nq,1\n"))
	assert.Error(t, err)
}

func TestJSONDocument(t *testing.T) {
	rows, err := SampleLine(r2.Vec{X: -1}, r2.Vec{X: 1}, 5, dipole())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewLineDocument(dipole(), rows)))
	assert.Contains(t, buf.String(), `"kind": "line"`)

	doc, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Len(t, doc.Samples, 5)
	assert.Len(t, doc.Charges, 2)
	assert.Nil(t, doc.Grid)
	assert.Equal(t, 5, doc.Summary.Count)
}

func TestSceneSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SceneSVG(&buf, dipole(), view.New(400, 300), DefaultSVGOptions()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 2, strings.Count(out, "<circle"))
	assert.Contains(t, out, "<path")
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))

	buf.Reset()
	require.NoError(t, SceneSVG(&buf, nil, view.New(100, 100), DefaultSVGOptions()))
	assert.NotContains(t, buf.String(), "<path")
}

func TestProfileSVG(t *testing.T) {
	rows, err := SampleLine(r2.Vec{X: -2}, r2.Vec{X: 2}, 20, dipole())
	require.NoError(t, err)
	out := ProfileSVG(rows, 300, 100, "#00e5ff")
	assert.Equal(t, 19, strings.Count(out, " L"))
	assert.Empty(t, ProfileSVG(rows[:1], 300, 100, "#fff"))
}

func TestWritePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, img))
	back, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), back.Bounds())
}
