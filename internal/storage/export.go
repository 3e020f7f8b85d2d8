package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/celestia/internal/config"
	"github.com/san-kum/celestia/internal/sim"
)

type ExportData struct {
	Scenario   string             `json:"scenario"`
	Mode       string             `json:"mode"`
	Integrator string             `json:"integrator"`
	G          float64            `json:"g"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Ticks      int                `json:"ticks"`
	Impact     bool               `json:"impact"`
	Samples    []sim.Sample       `json:"samples"`
	Events     []sim.Event        `json:"events"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewExportData(scenarioName string, cfg *config.Config, result *sim.Result) ExportData {
	return ExportData{
		Scenario:   scenarioName,
		Mode:       result.Mode,
		Integrator: cfg.Integrator,
		G:          cfg.Physics.G,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Ticks:      result.TicksTaken,
		Impact:     result.Impact,
		Samples:    result.Samples,
		Events:     result.Events,
		Metrics:    result.Metrics,
	}
}

// ExportJSON writes the full run, samples included, as indented JSON.
func ExportJSON(w io.Writer, scenarioName string, cfg *config.Config, result *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(scenarioName, cfg, result))
}
