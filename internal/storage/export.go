package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Frames []FrameRow  `json:"frames"`
	Energy []EnergyRow `json:"energy"`
}

// ExportJSON writes a stored run as a single JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	energy, err := s.LoadEnergy(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: *meta, Frames: frames, Energy: energy})
}

func (s *Store) ExportJSONFile(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.ExportJSON(file, runID)
}
