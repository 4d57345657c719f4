package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/massim/internal/dynamo"
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// WriteCSV writes one row per frame: time followed by p{i}_x, p{i}_y, p{i}_z.
func WriteCSV(out io.Writer, frames []dynamo.Frame) error {
	w := csv.NewWriter(out)
	if len(frames) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"time"}
	for i := range frames[0].Positions {
		header = append(header, fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i), fmt.Sprintf("p%d_z", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range frames {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(f.Time))
		for _, p := range f.Positions {
			row = append(row, formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type ExportData struct {
	Scenario string             `json:"scenario"`
	Preset   string             `json:"preset,omitempty"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Links    []dynamo.Link      `json:"links"`
	Frames   [][][3]float64     `json:"frames"`
	Metrics  map[string]float64 `json:"metrics"`
}

// NewExportData flattens frames into JSON-friendly arrays. Links are taken
// from the first frame.
func NewExportData(meta RunMetadata, frames []dynamo.Frame) ExportData {
	data := ExportData{
		Scenario: meta.Scenario,
		Preset:   meta.Preset,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Steps:    len(frames),
		Times:    make([]float64, len(frames)),
		Frames:   make([][][3]float64, len(frames)),
		Metrics:  meta.Metrics,
	}
	if len(frames) > 0 {
		data.Links = frames[0].Links
	}
	for i, f := range frames {
		data.Times[i] = f.Time
		data.Frames[i] = make([][3]float64, len(f.Positions))
		for j, p := range f.Positions {
			data.Frames[i][j] = [3]float64{p.X, p.Y, p.Z}
		}
	}
	return data
}

func WriteJSON(out io.Writer, meta RunMetadata, frames []dynamo.Frame) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, frames))
}
