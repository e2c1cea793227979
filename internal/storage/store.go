// Package storage keeps saved sessions on disk, one directory per save.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/export"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	metadataFile = "metadata.json"
	chargesFile  = "charges.csv"
	samplesFile  = "samples.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// Session is what gets saved: the charge set, the render settings it was
// viewed with and an optional line profile.
type Session struct {
	Name    string
	Charges []core.Charge
	Quality int
	Heatmap core.HeatmapMode
	Samples []export.Row
}

type SessionMetadata struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Timestamp   time.Time      `json:"timestamp"`
	Quality     int            `json:"quality"`
	Heatmap     string         `json:"heatmap"`
	Charges     int            `json:"charges"`
	TotalCharge float64        `json:"total_charge"`
	Energy      float64        `json:"energy"`
	Samples     int            `json:"samples"`
	Summary     export.Summary `json:"summary"`
}

func (s *Store) Save(sess Session, energy float64) (string, error) {
	if sess.Name == "" {
		sess.Name = "session"
	}
	ts := s.now()
	runID := fmt.Sprintf("%s_%d_%s", sess.Name, ts.Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := SessionMetadata{
		ID:          runID,
		Name:        sess.Name,
		Timestamp:   ts,
		Quality:     sess.Quality,
		Heatmap:     sess.Heatmap.String(),
		Charges:     len(sess.Charges),
		TotalCharge: core.TotalCharge(sess.Charges),
		Energy:      energy,
		Samples:     len(sess.Samples),
		Summary:     export.Summarize(sess.Samples),
	}
	if err := writeFile(filepath.Join(runDir, metadataFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, chargesFile), func(f *os.File) error {
		return export.WriteChargesCSV(f, sess.Charges)
	}); err != nil {
		return "", err
	}

	if len(sess.Samples) == 0 {
		return runID, nil
	}
	if err := writeFile(filepath.Join(runDir, samplesFile), func(f *os.File) error {
		return export.WriteCSV(f, sess.Samples)
	}); err != nil {
		return "", err
	}
	return runID, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// List returns every readable session, newest first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]SessionMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadCharges(runID string) ([]core.Charge, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, chargesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return export.ReadChargesCSV(f)
}

// LoadSamples returns the saved line profile, or nothing if the session was
// saved without one.
func (s *Store) LoadSamples(runID string) ([]export.Row, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return export.ReadCSV(f)
}
