package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

func testFrames() []dynamo.Frame {
	return []dynamo.Frame{
		{Time: 0, Positions: []r3.Vector{{X: 1}, {Y: 2}}, Links: []dynamo.Link{{A: 0, B: 1}}},
		{Step: 1, Time: 0.01, Positions: []r3.Vector{{X: 1.5}, {Y: 1.9, Z: -0.25}}, Links: []dynamo.Link{{A: 0, B: 1}}},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{
		Scenario: "volume",
		Preset:   "drop",
		Seed:     42,
		Dt:       0.01,
		Duration: 1,
		Metrics:  map[string]float64{"kinetic_energy": 1.5},
	}, testFrames())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "volume_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "volume" || meta.Preset != "drop" {
		t.Errorf("expected volume/drop, got %s/%s", meta.Scenario, meta.Preset)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Particles != 2 || meta.Frames != 2 {
		t.Errorf("expected 2 particles and 2 frames, got %d and %d", meta.Particles, meta.Frames)
	}
	if meta.Metrics["kinetic_energy"] != 1.5 {
		t.Errorf("expected kinetic_energy 1.5, got %f", meta.Metrics["kinetic_energy"])
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if got := frames[1].Positions[1]; !dynamo.VecEq(got, r3.Vector{Y: 1.9, Z: -0.25}) {
		t.Errorf("unexpected position %v", got)
	}
	if frames[1].Time != 0.01 {
		t.Errorf("expected time 0.01, got %f", frames[1].Time)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for _, scenario := range []string{"volume", "curve"} {
		if _, err := st.Save(RunMetadata{Scenario: scenario}, testFrames()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Scenario != "volume" {
		t.Errorf("expected oldest run first, got %s", runs[0].Scenario)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "missing")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save(RunMetadata{Scenario: "curve"}, testFrames())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "positions.csv"} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadFramesRejectsRaggedRows(t *testing.T) {
	dir := t.TempDir()
	runDir := filepath.Join(dir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := "time,p0_x,p0_y,p0_z\n0,1,2\n"
	if err := os.WriteFile(filepath.Join(runDir, "positions.csv"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(dir).LoadFrames("bad"); err == nil {
		t.Error("expected error for ragged row")
	}
}

func TestWriteCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testFrames()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "time,p0_x,p0_y,p0_z,p1_x,p1_y,p1_z" {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{Scenario: "curve", Dt: 0.01, Duration: 0.01}
	if err := WriteJSON(&buf, meta, testFrames()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data.Steps != 2 || len(data.Frames) != 2 || len(data.Links) != 1 {
		t.Errorf("unexpected export %+v", data)
	}
	if data.Frames[1][0] != [3]float64{1.5, 0, 0} {
		t.Errorf("unexpected position %v", data.Frames[1][0])
	}
}
