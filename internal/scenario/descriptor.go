package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSize = 5.0
	DefaultMass = 1.0
)

// Descriptor is the scenario data handed over by the scenario generator.
type Descriptor struct {
	ScenarioType   string       `json:"scenarioType" yaml:"scenarioType"`
	Objects        []ObjectSpec `json:"objects,omitempty" yaml:"objects,omitempty"`
	CameraPosition *dynamo.Vec3 `json:"cameraPosition,omitempty" yaml:"cameraPosition,omitempty"`
}

// ObjectSpec describes one body. Unset numeric fields fall back to defaults.
type ObjectSpec struct {
	Name       string       `json:"name" yaml:"name"`
	TextureKey string       `json:"textureKey,omitempty" yaml:"textureKey,omitempty"`
	Size       *float64     `json:"size,omitempty" yaml:"size,omitempty"`
	Mass       *float64     `json:"mass,omitempty" yaml:"mass,omitempty"`
	Position   *dynamo.Vec3 `json:"position,omitempty" yaml:"position,omitempty"`
	Velocity   *dynamo.Vec3 `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	IsStar     *bool        `json:"isStar,omitempty" yaml:"isStar,omitempty"`
}

// ParseDescriptor decodes a JSON or YAML descriptor and validates it.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	unmarshal := yaml.Unmarshal
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		// model replies are JSON, often tab-indented, which YAML rejects
		unmarshal = json.Unmarshal
	}
	if err := unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode descriptor: %v: %w", err, dynamo.ErrInvalidScenario)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDescriptor(data)
}

// Mode resolves the scenario mode. Any object named like the impactor forces
// giant_impact regardless of the declared type.
// An empty type is still rejected.
func (d *Descriptor) Mode() (Mode, error) {
	if strings.TrimSpace(d.ScenarioType) != "" && d.HasImpactor() {
		return ModeGiantImpact, nil
	}
	m, err := ParseMode(d.ScenarioType)
	if err != nil {
		return m, &dynamo.ScenarioError{Index: -1, Field: "scenarioType", Wrapped: err}
	}
	return m, nil
}

func (d *Descriptor) HasImpactor() bool {
	for _, o := range d.Objects {
		if isImpactorName(o.Name) {
			return true
		}
	}
	return false
}

// Validate checks the descriptor without building anything.
func (d *Descriptor) Validate() error {
	if _, err := d.Mode(); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidScenario, err)
	}
	for i, o := range d.Objects {
		if err := o.validate(i); err != nil {
			return fmt.Errorf("%w: %w", dynamo.ErrInvalidScenario, err)
		}
	}
	if d.CameraPosition != nil && !d.CameraPosition.IsFinite() {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidScenario,
			&dynamo.ScenarioError{Index: -1, Field: "cameraPosition", Wrapped: dynamo.ErrInvalidBody})
	}
	return nil
}

func (o ObjectSpec) validate(i int) error {
	positive := func(field string, v *float64) error {
		if v != nil && (!(*v > 0) || math.IsInf(*v, 0)) {
			return &dynamo.ScenarioError{Index: i, Field: field, Wrapped: dynamo.ErrInvalidBody}
		}
		return nil
	}
	if err := positive("size", o.Size); err != nil {
		return err
	}
	if err := positive("mass", o.Mass); err != nil {
		return err
	}
	if o.Position != nil && !o.Position.IsFinite() {
		return &dynamo.ScenarioError{Index: i, Field: "position", Wrapped: dynamo.ErrInvalidBody}
	}
	if o.Velocity != nil && !o.Velocity.IsFinite() {
		return &dynamo.ScenarioError{Index: i, Field: "velocity", Wrapped: dynamo.ErrInvalidBody}
	}
	return nil
}

// BodySpec converts the object to physics parameters, applying defaults.
func (o ObjectSpec) BodySpec() physics.BodySpec {
	spec := physics.BodySpec{
		Name:       o.Name,
		TextureKey: o.TextureKey,
		Radius:     DefaultSize,
		Mass:       DefaultMass,
		IsStar:     strings.EqualFold(o.TextureKey, "sun"),
	}
	if o.Size != nil {
		spec.Radius = *o.Size
	}
	if o.Mass != nil {
		spec.Mass = *o.Mass
	}
	if o.Position != nil {
		spec.Position = *o.Position
	}
	if o.Velocity != nil {
		spec.Velocity = *o.Velocity
	}
	if o.IsStar != nil {
		spec.IsStar = *o.IsStar
	}
	return spec
}

// Object is a shorthand constructor used by builders and presets.
func Object(name, texture string, size, mass float64) ObjectSpec {
	return ObjectSpec{Name: name, TextureKey: texture, Size: &size, Mass: &mass}
}

func (o ObjectSpec) At(pos, vel dynamo.Vec3) ObjectSpec {
	o.Position = &pos
	o.Velocity = &vel
	return o
}

func (o ObjectSpec) mass() float64 {
	if o.Mass != nil {
		return *o.Mass
	}
	return DefaultMass
}

func isImpactorName(name string) bool {
	return strings.Contains(strings.ToLower(name), physics.ImpactorTag)
}
