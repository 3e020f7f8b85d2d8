package scenario

import (
	"errors"
	"testing"

	"github.com/san-kum/celestia/internal/dynamo"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		tag  string
		want Mode
	}{
		{"collision", ModeCollision},
		{"  Orbit ", ModeOrbit},
		{"SOLAR_SYSTEM", ModeOrbit},
		{"solar_eclipse", ModeSolarEclipse},
		{"lunar_eclipse", ModeLunarEclipse},
		{"planet_birth", ModePlanetBirth},
		{"giant_impact", ModeGiantImpact},
		{"custom", ModeCustom},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.tag)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", tt.tag, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestParseMode_Unknown(t *testing.T) {
	for _, tag := range []string{"", "   ", "supernova"} {
		if _, err := ParseMode(tag); !errors.Is(err, dynamo.ErrUnknownMode) {
			t.Errorf("ParseMode(%q) error = %v, want ErrUnknownMode", tag, err)
		}
	}
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
}

func TestPolicyTable(t *testing.T) {
	if ModeCollision.Policy().Gravity || ModePlanetBirth.Policy().Gravity {
		t.Error("collision and planet_birth must not apply gravity")
	}
	if ModeCollision.Policy().StarImmune {
		t.Error("stars are not immune in collision mode")
	}
	for _, m := range []Mode{ModeSolarEclipse, ModeLunarEclipse} {
		p := m.Policy()
		if p.Collisions || !p.Triggerable {
			t.Errorf("%v policy = %+v", m, p)
		}
	}
	gi := ModeGiantImpact.Policy()
	if !gi.Deformation || !gi.Cinematic || !gi.SingleMerge {
		t.Errorf("giant_impact policy = %+v", gi)
	}
	for _, m := range Modes() {
		if m != ModeGiantImpact && (m.Policy().Deformation || m.Policy().Cinematic) {
			t.Errorf("%v should not deform or play the cinematic", m)
		}
	}
}
