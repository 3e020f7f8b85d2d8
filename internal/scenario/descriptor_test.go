package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/celestia/internal/dynamo"
)

func TestParseDescriptor_JSON(t *testing.T) {
	data := []byte(`{
	"scenarioType": "Collision",
	"objects": [
		{"name": "Earth", "textureKey": "Earth", "size": 5, "mass": 10,
		 "position": {"x": -10, "y": 0, "z": 0}, "velocity": {"x": 5, "y": 0, "z": 0}},
		{"name": "Sun", "textureKey": "sun"}
	],
	"cameraPosition": {"x": 0, "y": 30, "z": 80}
}`)
	d, err := ParseDescriptor(data)
	if err != nil {
		t.Fatal(err)
	}
	m, err := d.Mode()
	if err != nil || m != ModeCollision {
		t.Fatalf("Mode() = %v, %v", m, err)
	}
	if len(d.Objects) != 2 {
		t.Fatalf("got %d objects", len(d.Objects))
	}

	earth := d.Objects[0].BodySpec()
	if earth.Radius != 5 || earth.Mass != 10 || earth.Position.X != -10 || earth.Velocity.X != 5 {
		t.Errorf("earth spec = %+v", earth)
	}
	sun := d.Objects[1].BodySpec()
	if sun.Radius != DefaultSize || sun.Mass != DefaultMass || !sun.IsStar {
		t.Errorf("sun spec = %+v", sun)
	}
	if d.CameraPosition == nil || d.CameraPosition.Z != 80 {
		t.Errorf("camera = %v", d.CameraPosition)
	}
}

func TestParseDescriptor_YAML(t *testing.T) {
	data := []byte(`
scenarioType: custom
objects:
  - name: Rock
    size: 2
    isStar: true
    position: {x: 1, y: 2, z: 3}
`)
	d, err := ParseDescriptor(data)
	if err != nil {
		t.Fatal(err)
	}
	spec := d.Objects[0].BodySpec()
	if !spec.IsStar || spec.Position != dynamo.V(1, 2, 3) || spec.Radius != 2 {
		t.Errorf("spec = %+v", spec)
	}
}

func TestDescriptor_ImpactorOverridesMode(t *testing.T) {
	d, err := ParseDescriptor([]byte(`{"scenarioType": "orbit", "objects": [{"name": "Earth"}, {"name": "THEIA-2"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if m, _ := d.Mode(); m != ModeGiantImpact {
		t.Errorf("Mode() = %v, want giant_impact", m)
	}

	d, err = ParseDescriptor([]byte(`{"scenarioType": "moon_formation", "objects": [{"name": "Earth", "mass": 100}, {"name": "Theia", "mass": 18}]}`))
	if err != nil {
		t.Fatalf("unrecognised type with an impactor: %v", err)
	}
	if m, _ := d.Mode(); m != ModeGiantImpact {
		t.Errorf("Mode() = %v, want giant_impact", m)
	}

	_, err = ParseDescriptor([]byte(`{"scenarioType": "  ", "objects": [{"name": "Theia"}]}`))
	if !errors.Is(err, dynamo.ErrUnknownMode) {
		t.Errorf("blank type with an impactor: error = %v, want ErrUnknownMode", err)
	}
}

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
		index int
	}{
		{"missing type", `{"objects": []}`, "scenarioType", -1},
		{"unknown type", `{"scenarioType": "wormhole"}`, "scenarioType", -1},
		{"zero size", `{"scenarioType": "custom", "objects": [{"name": "a", "size": 0}]}`, "size", 0},
		{"negative mass", `{"scenarioType": "custom", "objects": [{"name": "a"}, {"name": "b", "mass": -1}]}`, "mass", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescriptor([]byte(tt.data))
			if !errors.Is(err, dynamo.ErrInvalidScenario) {
				t.Fatalf("error = %v, want ErrInvalidScenario", err)
			}
			var se *dynamo.ScenarioError
			if !errors.As(err, &se) {
				t.Fatalf("error %v carries no ScenarioError", err)
			}
			if se.Field != tt.field || se.Index != tt.index {
				t.Errorf("ScenarioError = %+v, want %s at %d", se, tt.field, tt.index)
			}
		})
	}
}

func TestParseDescriptor_Malformed(t *testing.T) {
	if _, err := ParseDescriptor([]byte(`{"scenarioType": `)); !errors.Is(err, dynamo.ErrInvalidScenario) {
		t.Errorf("error = %v, want ErrInvalidScenario", err)
	}
}

func TestLoadDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("scenarioType: planet_birth\n"), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadDescriptor(path)
	if err != nil {
		t.Fatal(err)
	}
	if m, _ := d.Mode(); m != ModePlanetBirth {
		t.Errorf("Mode() = %v", m)
	}
}
