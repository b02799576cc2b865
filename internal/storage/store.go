package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	energyFile   = "energy.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Nodes     int                `json:"nodes"`
	Settled   bool               `json:"settled"`
	Params    map[string]float64 `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding the metadata and both CSV tables and
// returns the run id.
func (s *Store) Save(meta RunMetadata, rec *Recorder) (string, error) {
	now := time.Now()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = now
	}
	meta.ID = fmt.Sprintf("%s_%d", meta.Scenario, now.UnixMilli())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	if err := writeCSV(filepath.Join(runDir, framesFile), rec.Frames); err != nil {
		return "", fmt.Errorf("writing frames: %w", err)
	}
	if err := writeCSV(filepath.Join(runDir, energyFile), rec.Energy); err != nil {
		return "", fmt.Errorf("writing energy: %w", err)
	}

	return meta.ID, nil
}

func writeCSV[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&rows, f)
}

func readCSV[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []T
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, err
	}
	return rows, nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
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

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]FrameRow, error) {
	return readCSV[FrameRow](filepath.Join(s.baseDir, runID, framesFile))
}

func (s *Store) LoadEnergy(runID string) ([]EnergyRow, error) {
	return readCSV[EnergyRow](filepath.Join(s.baseDir, runID, energyFile))
}
