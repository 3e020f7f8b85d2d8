package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/celestia/internal/config"
	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/physics"
	"github.com/san-kum/celestia/internal/sim"
)

func testResult() *sim.Result {
	a := sim.BodyState{ID: 1, Name: "A", Position: dynamo.V(-10, 0, 0), Velocity: dynamo.V(5, 0, 0), Mass: 10, Radius: 3}
	b := sim.BodyState{ID: 2, Name: "B", Position: dynamo.V(10, 0, 0), Velocity: dynamo.V(-5, 0, 0), Mass: 5, Radius: 3}
	m := sim.BodyState{ID: 3, Name: "Merged-A", Kind: physics.KindMerged, Velocity: dynamo.V(5.0/3, 0, 0), Mass: 15, Radius: 3.78}
	return &sim.Result{
		Mode: "custom",
		Samples: []sim.Sample{
			{Time: 0, Bodies: []sim.BodyState{a, b}},
			{Time: 2, Bodies: []sim.BodyState{m}},
		},
		Events: []sim.Event{
			{Kind: sim.EventMerged, Time: 1.5, BodyID: 3},
			{Kind: sim.EventDisposed, Time: 1.45, BodyID: 1},
		},
		Metrics:    map[string]float64{"total_mass": 15},
		TicksTaken: 120,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42
	runID, err := st.Save("two_body", cfg, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "two_body" || meta.Mode != "custom" {
		t.Errorf("unexpected scenario/mode %s/%s", meta.Scenario, meta.Mode)
	}
	if meta.Seed != 42 || meta.Ticks != 120 || meta.Events != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["total_mass"] != 15 {
		t.Errorf("expected total_mass 15, got %f", meta.Metrics["total_mass"])
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if len(samples[0].Bodies) != 2 || samples[0].Bodies[1].Name != "B" {
		t.Errorf("first sample = %+v", samples[0])
	}
	if got := samples[1].Bodies[0]; got.Mass != 15 || got.ID != 3 {
		t.Errorf("merged body = %+v", got)
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		t.Fatalf("load events failed: %v", err)
	}
	if len(events) != 2 || events[0].Kind != sim.EventMerged || events[0].BodyID != 3 {
		t.Errorf("events = %+v", events)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	st.Init()

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg := config.DefaultConfig()
	st.Save("a", cfg, testResult())
	st.Save("b", cfg, testResult())
	os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, "two_body", config.DefaultConfig(), testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["scenario"] != "two_body" || decoded["ticks"].(float64) != 120 {
		t.Errorf("unexpected export header: %v", decoded)
	}
	events := decoded["events"].([]any)
	if events[0].(map[string]any)["kind"] != "merged" {
		t.Errorf("events should carry kind names, got %v", events[0])
	}
}
