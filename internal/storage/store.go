package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/celestia/internal/config"
	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/sim"
)

const (
	metadataFile = "metadata.json"
	bodiesFile   = "bodies.csv"
	eventsFile   = "events.json"
)

var bodiesHeader = []string{"time", "id", "name", "kind", "x", "y", "z", "vx", "vy", "vz", "mass", "radius"}

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
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Mode       string             `json:"mode"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	G          float64            `json:"g"`
	Ticks      int                `json:"ticks"`
	Impact     bool               `json:"impact"`
	Events     int                `json:"events"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json, bodies.csv with one row
// per body per sample, and events.json.
func (s *Store) Save(scenarioName string, cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", scenarioName, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   scenarioName,
		Mode:       result.Mode,
		Timestamp:  now,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		G:          cfg.Physics.G,
		Ticks:      result.TicksTaken,
		Impact:     result.Impact,
		Events:     len(result.Events),
		Metrics:    result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	events := result.Events
	if events == nil {
		events = []sim.Event{}
	}
	if err := writeJSON(filepath.Join(runDir, eventsFile), events); err != nil {
		return "", err
	}

	if err := writeBodies(filepath.Join(runDir, bodiesFile), result.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeBodies(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(bodiesHeader); err != nil {
		return err
	}

	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, sample := range samples {
		for _, b := range sample.Bodies {
			row := []string{
				num(sample.Time),
				strconv.FormatUint(b.ID, 10),
				b.Name,
				b.Kind.String(),
				num(b.Position.X), num(b.Position.Y), num(b.Position.Z),
				num(b.Velocity.X), num(b.Velocity.Y), num(b.Velocity.Z),
				num(b.Mass),
				num(b.Radius),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

func (s *Store) LoadEvents(runID string) ([]sim.Event, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Kind   string      `json:"kind"`
		Time   float64     `json:"time"`
		BodyID uint64      `json:"body_id"`
		At     dynamo.Vec3 `json:"at"`
		Impact bool        `json:"impact"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	kinds := map[string]sim.EventKind{}
	for k := sim.EventMerged; k <= sim.EventPhaseChanged; k++ {
		kinds[k.String()] = k
	}
	events := make([]sim.Event, 0, len(raw))
	for _, r := range raw {
		k, ok := kinds[r.Kind]
		if !ok {
			continue
		}
		events = append(events, sim.Event{Kind: k, Time: r.Time, BodyID: r.BodyID, At: r.At, Impact: r.Impact})
	}
	return events, nil
}

// LoadSamples reads bodies.csv back into samples grouped by time.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, bodiesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(bodiesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0)
	for _, record := range records[1:] {
		vals := make([]float64, 0, 9)
		bad := false
		for _, field := range append([]string{record[0]}, record[4:]...) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				bad = true
				break
			}
			vals = append(vals, v)
		}
		id, err := strconv.ParseUint(record[1], 10, 64)
		if bad || err != nil {
			continue
		}

		t := vals[0]
		if len(samples) == 0 || samples[len(samples)-1].Time != t {
			samples = append(samples, sim.Sample{Time: t})
		}
		last := &samples[len(samples)-1]
		last.Bodies = append(last.Bodies, sim.BodyState{
			ID:       id,
			Name:     record[2],
			Position: dynamo.V(vals[1], vals[2], vals[3]),
			Velocity: dynamo.V(vals[4], vals[5], vals[6]),
			Mass:     vals[7],
			Radius:   vals[8],
		})
	}
	return samples, nil
}
