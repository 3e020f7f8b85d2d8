package sim

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/san-kum/celestia/internal/cinematic"
	"github.com/san-kum/celestia/internal/config"
	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/integrators"
	"github.com/san-kum/celestia/internal/physics"
	"github.com/san-kum/celestia/internal/scenario"
)

// Session drives one scenario at a time. It is not safe for concurrent use;
// call Tick once per frame from a single goroutine.
type Session struct {
	cfg      *config.Config
	log      *log.Logger
	registry *scenario.Registry

	world    *physics.World
	resolver *physics.Resolver
	deformer *physics.Deformer
	director *cinematic.Director
	camera   cinematic.Camera
	schedule *Schedule

	desc   *scenario.Descriptor
	setup  *scenario.Setup
	mode   scenario.Mode
	policy scenario.Policy
	rules  physics.CollisionRules

	clock      float64
	generation uint64
	impact     bool
	followID   uint64
	events     []Event
}

// TickReport summarizes one Tick.
type TickReport struct {
	Steps     int
	Merges    int
	Spawned   int
	Disposed  int
	Destroyed int
}

// NewSession builds an empty session. A nil logger discards output.
func NewSession(cfg *config.Config, logger *log.Logger) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stepper, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	world := physics.NewWorld(cfg.Physics.G, stepper)
	world.Gravity = cfg.Physics.Gravity

	return &Session{
		cfg:      cfg,
		log:      logger,
		registry: scenario.NewRegistry(),
		world:    world,
		resolver: physics.NewResolver(cfg.Physics.CollisionFactor),
		deformer: &physics.Deformer{Reach: cfg.Physics.DeformReach, Contact: cfg.Physics.DeformContact},
		director: cinematic.NewDirector(cfg.Cinematic.ImpactorSpeed),
		schedule: NewSchedule(),
	}, nil
}

// Load resets the session and builds desc into it. On failure the world is
// left empty.
func (s *Session) Load(desc *scenario.Descriptor) error {
	s.Reset()

	env := scenario.Env{G: s.world.G, Rand: rand.New(rand.NewSource(s.cfg.Seed))}
	setup, err := s.registry.Build(desc, env)
	if err != nil {
		s.log.Warn("scenario rejected", "err", err)
		return err
	}

	s.desc = desc
	s.setup = setup
	s.mode = setup.Mode
	s.policy = setup.Mode.Policy()
	s.rules = physics.CollisionRules{StarImmune: s.policy.StarImmune, SingleMerge: s.policy.SingleMerge}

	for _, b := range setup.Bodies {
		s.world.Add(b)
	}
	s.camera = cinematic.Camera{Position: setup.View.Position, Target: setup.View.LookAt}

	if s.policy.Cinematic {
		// the impactor may be the heaviest body; aim at the chosen target then
		target := s.world.Dominant()
		if target == nil || target == setup.Impactor {
			target = setup.Target
		}
		s.director.Start(setup.Impactor, target)
		s.log.Debug("cinematic started", "impactor", setup.Impactor)
	}

	s.log.Info("scenario loaded", "mode", s.mode, "bodies", s.world.Len(), "generation", s.generation)
	return nil
}

// Reload rebuilds the last loaded descriptor from scratch.
func (s *Session) Reload() error {
	if s.desc == nil {
		return fmt.Errorf("nothing loaded: %w", dynamo.ErrInvalidScenario)
	}
	return s.Load(s.desc)
}

// Reset disposes of every body, cancels pending spawns and idles the director.
func (s *Session) Reset() {
	s.world.Clear()
	s.generation++
	s.schedule.Clear()
	s.director.Reset()
	s.setup = nil
	s.mode = scenario.ModeCustom
	s.policy = scenario.Policy{}
	s.rules = physics.CollisionRules{}
	s.impact = false
	s.followID = 0
	s.clock = 0
	s.events = nil
}

// substepCap is the configured cap, raised while the impact plays.
func (s *Session) substepCap() int {
	limit := s.cfg.Physics.MaxSubsteps
	if s.director.Playing() && s.director.Phase() == cinematic.PhaseImpact {
		limit = max(limit, s.cfg.Cinematic.ImpactSubsteps)
	}
	return limit
}

// Tick advances the session by rawDelta seconds of wall time.
func (s *Session) Tick(rawDelta float64) TickReport {
	var report TickReport
	s.events = s.events[:0]
	if rawDelta <= 0 {
		return report
	}
	s.clock += rawDelta

	report.Spawned = s.drainSpawns()

	if s.policy.Gravity {
		s.world.ApplyGravity()
	}

	if s.policy.Collisions {
		merges, destroyed := s.collide()
		report.Merges, report.Destroyed = merges, destroyed
	}

	scaled := rawDelta * s.director.TimeScale()
	report.Steps = s.world.Step(s.cfg.Physics.FixedDt, scaled, s.substepCap())

	for _, b := range s.world.Live() {
		b.Update()
	}
	for _, b := range s.world.Sweep() {
		s.emit(Event{Kind: EventDisposed, BodyID: b.ID, At: b.Position})
		if b.ID == s.followID {
			s.followID = 0
		}
		report.Disposed++
	}

	if s.policy.Deformation {
		s.deformer.Apply(s.world.Live())
	}

	if s.director.Advance(rawDelta, &s.camera) {
		s.emit(Event{Kind: EventPhaseChanged, Phase: s.director.Phase()})
		s.log.Debug("cinematic phase", "phase", s.director.Phase(), "elapsed", s.director.Elapsed())
	}

	if s.followID != 0 && !s.director.Playing() {
		if b := s.world.Find(s.followID); b != nil && !b.IsDead() {
			cinematic.Follow(&s.camera, b.Position)
		}
	}
	return report
}

func (s *Session) drainSpawns() int {
	due, stale := s.schedule.Due(s.clock, s.generation)
	if stale > 0 {
		s.log.Debug("discarded stale spawns", "count", stale)
	}
	for _, sp := range due {
		id := s.world.Add(sp.Body)
		s.emit(Event{Kind: EventSpawned, BodyID: id, At: sp.Body.Position})
		s.emit(Event{Kind: EventMerged, BodyID: id, At: sp.Body.Position, Impact: sp.Merge.Impact})
		s.log.Info("merged", "a", sp.Merge.A.Name, "b", sp.Merge.B.Name, "into", sp.Body)
	}
	return len(due)
}

func (s *Session) collide() (merges, destroyed int) {
	out := s.resolver.Resolve(s.world.Live(), s.rules)

	for _, b := range out.Destroyed {
		s.emit(Event{Kind: EventDestroyed, BodyID: b.ID, At: b.Position})
		s.log.Debug("destroyed against star", "body", b)
	}

	for _, m := range out.Merges {
		body, err := physics.NewBody(m.Spec())
		if err != nil {
			// inputs were valid, so only overflow gets here
			s.log.Error("merge product rejected", "a", m.A, "b", m.B, "err", err)
			continue
		}
		s.schedule.Push(&Spawn{
			DueAt:      s.clock + s.cfg.Physics.MergeDelay,
			Generation: s.generation,
			Body:       body,
			Merge:      m,
		})
		if s.rules.SingleMerge {
			s.rules.Latched = true
		}
		if m.Impact && !s.impact {
			s.impact = true
			s.log.Info("giant impact", "a", m.A.Name, "b", m.B.Name)
		}
	}
	return len(out.Merges), len(out.Destroyed)
}

func (s *Session) emit(e Event) {
	e.Time = s.clock
	s.events = append(s.events, e)
}

// Trigger runs the scenario's scripted action, such as starting an eclipse.
func (s *Session) Trigger() error {
	if !s.policy.Triggerable || s.setup == nil || s.setup.Trigger == nil {
		return fmt.Errorf("%s: %w", s.mode, dynamo.ErrNotTriggerable)
	}
	view, ok := s.setup.Trigger()
	if !ok {
		return fmt.Errorf("%s: trigger bodies gone: %w", s.mode, dynamo.ErrNotTriggerable)
	}
	s.followID = 0
	s.camera = cinematic.Camera{Position: view.Position, Target: view.LookAt}
	s.log.Info("triggered", "mode", s.mode)
	return nil
}

// Follow makes the free camera track a live body.
func (s *Session) Follow(id uint64) error {
	b := s.world.Find(id)
	if b == nil || b.IsDead() {
		return fmt.Errorf("follow #%d: %w", id, dynamo.ErrInvalidBody)
	}
	s.followID = id
	return nil
}

func (s *Session) Unfollow() { s.followID = 0 }

// Following returns the followed body ID, or 0.
func (s *Session) Following() uint64 { return s.followID }

// Events returns the events emitted by the last Tick. The slice is reused by
// the next Tick.
func (s *Session) Events() []Event { return s.events }

// Accounted returns live bodies plus merge products still waiting to spawn.
// Conserved quantities are summed over this set.
func (s *Session) Accounted() []*physics.Body {
	return append(s.world.Live(), s.schedule.Pending(s.generation)...)
}

func (s *Session) Mode() scenario.Mode              { return s.mode }
func (s *Session) Policy() scenario.Policy          { return s.policy }
func (s *Session) Camera() cinematic.Camera         { return s.camera }
func (s *Session) Director() *cinematic.Director    { return s.director }
func (s *Session) World() *physics.World            { return s.world }
func (s *Session) Clock() float64                   { return s.clock }
func (s *Session) ImpactHappened() bool             { return s.impact }
func (s *Session) PendingSpawns() int               { return s.schedule.Len() }
func (s *Session) Config() *config.Config           { return s.cfg }
func (s *Session) Descriptor() *scenario.Descriptor { return s.desc }
