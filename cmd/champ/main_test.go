package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/export"
	"github.com/semo00000/champ-electrostatique/internal/storage"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	toggles, sceneFile, cfgFile, storeDir = nil, "", "", ""
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" -1.5, 2 ")
	require.NoError(t, err)
	assert.Equal(t, r2.Vec{X: -1.5, Y: 2}, p)

	for _, bad := range []string{"", "1", "1,2,3", "a,1", "1,b"} {
		_, err := parsePoint(bad)
		assert.Error(t, err, bad)
	}
}

func TestPresetArg(t *testing.T) {
	assert.Equal(t, defaultPreset, presetArg(nil))
	assert.Equal(t, "ring", presetArg([]string{"ring"}))
}

func TestRootRegistersCommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"gui", "render", "sample", "profile", "svg", "charges", "tui", "save", "list", "show", "presets", "hw"} {
		assert.Contains(t, names, want)
	}
}

func TestRenderWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dipole.png")
	t.Setenv("CHAMP_WIDTH", "160")
	t.Setenv("CHAMP_HEIGHT", "120")
	require.NoError(t, execute(t, "render", "dipole", "--frames", "2", "--quality", "0", "-o", out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderUnknownPreset(t *testing.T) {
	t.Setenv("CHAMP_WIDTH", "160")
	t.Setenv("CHAMP_HEIGHT", "120")
	err := execute(t, "render", "nope", "-o", filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}

func TestSampleLineCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "line.csv")
	require.NoError(t, execute(t, "sample", "line", "dipole", "--n", "11", "--from", "-1,0.5", "--to", "1,0.5", "-o", out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := export.ReadCSV(f)
	require.NoError(t, err)
	require.Len(t, rows, 11)
	assert.InDelta(t, 0, rows[5].Potential, 1e-6, "bisector of a dipole is at zero potential")
}

func TestSampleRejectsFormat(t *testing.T) {
	err := execute(t, "sample", "line", "--format", "xml", "-o", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}

func TestSaveAndList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, execute(t, "save", "triangle", "--store", dir))

	runs, err := storage.New(dir).List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "triangle", runs[0].Name)
	assert.Equal(t, 3, runs[0].Charges)
	assert.Equal(t, export.LineSamples, runs[0].Samples)

	require.NoError(t, execute(t, "list", "--store", dir))
	require.NoError(t, execute(t, "show", runs[0].ID, "--store", dir))
	assert.Error(t, execute(t, "show", "missing", "--store", dir))
}

func TestInvalidQualityFlag(t *testing.T) {
	assert.Error(t, execute(t, "presets", "--quality", "7"))
}
