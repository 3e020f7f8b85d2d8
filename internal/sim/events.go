package sim

import (
	"fmt"

	"github.com/san-kum/celestia/internal/cinematic"
	"github.com/san-kum/celestia/internal/dynamo"
)

type EventKind int

const (
	EventMerged EventKind = iota
	EventDisposed
	EventDestroyed
	EventSpawned
	EventPhaseChanged
)

var eventNames = [...]string{"merged", "disposed", "destroyed", "spawned", "phase_changed"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Event is something the renderer may want to react to. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind   EventKind       `json:"kind"`
	Time   float64         `json:"time"`
	BodyID uint64          `json:"body_id,omitempty"`
	At     dynamo.Vec3     `json:"at"`
	Impact bool            `json:"impact,omitempty"`
	Phase  cinematic.Phase `json:"phase,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case EventMerged:
		return fmt.Sprintf("%.2fs merged #%d impact=%v", e.Time, e.BodyID, e.Impact)
	case EventPhaseChanged:
		return fmt.Sprintf("%.2fs phase %s", e.Time, e.Phase)
	default:
		return fmt.Sprintf("%.2fs %s #%d", e.Time, e.Kind, e.BodyID)
	}
}
