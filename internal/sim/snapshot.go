package sim

import (
	"github.com/san-kum/celestia/internal/cinematic"
	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/physics"
)

// BodyState is the render-facing copy of a live body.
type BodyState struct {
	ID              uint64       `json:"id"`
	Name            string       `json:"name"`
	TextureKey      string       `json:"texture_key"`
	Kind            physics.Kind `json:"kind"`
	Position        dynamo.Vec3  `json:"position"`
	Velocity        dynamo.Vec3  `json:"velocity"`
	Orientation     dynamo.Quat  `json:"orientation"`
	Mass            float64      `json:"mass"`
	Radius          float64      `json:"radius"`
	Scale           float64      `json:"scale"`
	Deform          float64      `json:"deform"`
	DeformDirection dynamo.Vec3  `json:"deform_direction"`
	IsStar          bool         `json:"is_star"`
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	Clock     float64          `json:"clock"`
	Mode      string           `json:"mode"`
	Bodies    []BodyState      `json:"bodies"`
	Camera    cinematic.Camera `json:"camera"`
	TimeScale float64          `json:"time_scale"`
	Phase     cinematic.Phase  `json:"phase"`
	Following uint64           `json:"following,omitempty"`
}

func NewBodyState(b *physics.Body) BodyState {
	return BodyState{
		ID:              b.ID,
		Name:            b.Name,
		TextureKey:      b.TextureKey,
		Kind:            b.Kind,
		Position:        b.Position,
		Velocity:        b.Velocity,
		Orientation:     b.Orientation,
		Mass:            b.Mass,
		Radius:          b.Radius,
		Scale:           b.GrowthScale,
		Deform:          b.DeformAmount,
		DeformDirection: b.DeformDirection,
		IsStar:          b.IsStar,
	}
}

func (s *Session) Snapshot() Snapshot {
	live := s.world.Live()
	bodies := make([]BodyState, len(live))
	for i, b := range live {
		bodies[i] = NewBodyState(b)
	}
	return Snapshot{
		Clock:     s.clock,
		Mode:      s.mode.String(),
		Bodies:    bodies,
		Camera:    s.camera,
		TimeScale: s.director.TimeScale(),
		Phase:     s.director.Phase(),
		Following: s.followID,
	}
}

// Find returns the body state with the given ID.
func (s Snapshot) Find(id uint64) (BodyState, bool) {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyState{}, false
}
