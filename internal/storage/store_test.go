package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/export"
)

func session(t *testing.T) Session {
	t.Helper()
	cs := []core.Charge{{ID: "p", X: -1, Q: 2}, {ID: "n", X: 1, Q: -1, Locked: true}}
	rows, err := export.SampleLine(r2.Vec{X: -2}, r2.Vec{X: 2}, 12, cs)
	require.NoError(t, err)
	return Session{Name: "dipole", Charges: cs, Quality: 2, Heatmap: core.HeatmapPotential, Samples: rows}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	sess := session(t)
	id, err := st.Save(sess, -0.5)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	for _, f := range []string{metadataFile, chargesFile, samplesFile} {
		_, err := os.Stat(filepath.Join(st.Dir(), id, f))
		assert.NoError(t, err, f)
	}

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "dipole", meta.Name)
	assert.Equal(t, 2, meta.Charges)
	assert.Equal(t, 1.0, meta.TotalCharge)
	assert.Equal(t, "potential", meta.Heatmap)
	assert.Equal(t, -0.5, meta.Energy)
	assert.Equal(t, 12, meta.Samples)

	cs, err := st.LoadCharges(id)
	require.NoError(t, err)
	assert.Equal(t, sess.Charges, cs)

	rows, err := st.LoadSamples(id)
	require.NoError(t, err)
	assert.Len(t, rows, 12)
}

func TestSaveWithoutSamples(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	sess := session(t)
	sess.Samples = nil
	sess.Name = ""

	id, err := st.Save(sess, 0)
	require.NoError(t, err)

	rows, err := st.LoadSamples(id)
	require.NoError(t, err)
	assert.Nil(t, rows)

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "session", meta.Name)
}

func TestListNewestFirst(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	st.now = func() time.Time { step++; return base.Add(time.Duration(step) * time.Minute) }

	first, err := st.Save(session(t), 0)
	require.NoError(t, err)
	second, err := st.Save(session(t), 0)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, os.Mkdir(filepath.Join(st.Dir(), "junk"), 0755))

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.Error(t, err)
}
