package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/celestia/internal/cinematic"
	"github.com/san-kum/celestia/internal/config"
	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/metrics"
	"github.com/san-kum/celestia/internal/physics"
	"github.com/san-kum/celestia/internal/scenario"
	"github.com/san-kum/celestia/internal/sim"
)

const frame = 1.0 / 60

func newSession(mutate func(*config.Config)) *sim.Session {
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := sim.NewSession(cfg, nil)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func zeroG(cfg *config.Config) { cfg.Physics.G = 0 }

func twoBody() *scenario.Descriptor {
	return &scenario.Descriptor{ScenarioType: "custom", Objects: []scenario.ObjectSpec{
		scenario.Object("A", "Earth", 3, 10).At(dynamo.V(-10, 0, 0), dynamo.V(5, 0, 0)),
		scenario.Object("B", "Mars", 3, 5).At(dynamo.V(10, 0, 0), dynamo.V(-5, 0, 0)),
	}}
}

func preset(name string) *scenario.Descriptor {
	d, err := scenario.Preset(name)
	Expect(err).NotTo(HaveOccurred())
	return d
}

// tickUntil ticks until cond holds or limit seconds of wall time pass.
func tickUntil(s *sim.Session, limit float64, cond func(sim.TickReport) bool) bool {
	for t := 0.0; t < limit; t += frame {
		if cond(s.Tick(frame)) {
			return true
		}
	}
	return false
}

func kinds(events []sim.Event) []sim.EventKind {
	out := make([]sim.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

var _ = Describe("Session", func() {
	Describe("NewSession", func() {
		It("rejects an invalid configuration", func() {
			cfg := config.DefaultConfig()
			cfg.Physics.MaxSubsteps = 0
			_, err := sim.NewSession(cfg, nil)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})
	})

	Describe("two-body merge", func() {
		It("conserves mass, momentum and volume end to end", func() {
			s := newSession(zeroG)
			Expect(s.Load(twoBody())).To(Succeed())

			merged := tickUntil(s, 5, func(r sim.TickReport) bool { return r.Merges > 0 })
			Expect(merged).To(BeTrue())
			Expect(s.World().Live()).To(BeEmpty())
			Expect(s.PendingSpawns()).To(Equal(1))

			var spawned *sim.Event
			tickUntil(s, 1, func(sim.TickReport) bool {
				for _, e := range s.Events() {
					if e.Kind == sim.EventMerged {
						ev := e
						spawned = &ev
						return true
					}
				}
				return false
			})
			Expect(spawned).NotTo(BeNil())
			Expect(spawned.Impact).To(BeFalse())

			live := s.World().Live()
			Expect(live).To(HaveLen(1))
			b := live[0]
			Expect(b.ID).To(Equal(spawned.BodyID))
			Expect(b.Name).To(Equal("Merged-A"))
			Expect(b.Kind).To(Equal(physics.KindMerged))
			Expect(b.Mass).To(BeNumerically("~", 15, 1e-12))
			Expect(b.Radius).To(BeNumerically("~", math.Cbrt(54), 1e-12))
			Expect(b.Velocity.X).To(BeNumerically("~", 5.0/3, 1e-9))

			// the centre of mass keeps moving at 5/3 while the spawn waits
			com := -10.0/3 + 5.0/3*s.World().Time()
			Expect(b.Position.X).To(BeNumerically("~", com, 5.0/3*0.1))
		})

		It("waits the merge delay before spawning", func() {
			s := newSession(func(c *config.Config) {
				zeroG(c)
				c.Physics.MergeDelay = 0.5
			})
			Expect(s.Load(twoBody())).To(Succeed())
			Expect(tickUntil(s, 5, func(r sim.TickReport) bool { return r.Merges > 0 })).To(BeTrue())

			mergedAt := s.Clock()
			tickUntil(s, 2, func(r sim.TickReport) bool { return r.Spawned > 0 })
			Expect(s.Clock() - mergedAt).To(BeNumerically(">=", 0.5-1e-9))
		})

		It("counts pending products in the conserved totals", func() {
			s := newSession(zeroG)
			Expect(s.Load(twoBody())).To(Succeed())
			tickUntil(s, 5, func(r sim.TickReport) bool { return r.Merges > 0 })
			Expect(metrics.TotalMass(s.Accounted())).To(BeNumerically("~", 15, 1e-12))
		})
	})

	Describe("Reset", func() {
		It("leaves no bodies and an idle director", func() {
			s := newSession(nil)
			Expect(s.Load(preset("giant_impact"))).To(Succeed())
			Expect(s.Director().Playing()).To(BeTrue())
			for i := 0; i < 30; i++ {
				s.Tick(frame)
			}

			s.Reset()
			Expect(s.World().Len()).To(Equal(0))
			Expect(s.PendingSpawns()).To(Equal(0))
			Expect(s.Director().Playing()).To(BeFalse())
			Expect(s.Director().TimeScale()).To(Equal(1.0))
			Expect(s.ImpactHappened()).To(BeFalse())
			Expect(s.Snapshot().Bodies).To(BeEmpty())
		})

		It("discards spawns scheduled by the previous scenario", func() {
			s := newSession(zeroG)
			Expect(s.Load(twoBody())).To(Succeed())
			tickUntil(s, 5, func(r sim.TickReport) bool { return r.Merges > 0 })
			Expect(s.PendingSpawns()).To(Equal(1))

			Expect(s.Load(preset("collision"))).To(Succeed())
			for i := 0; i < 10; i++ {
				r := s.Tick(frame)
				Expect(r.Spawned).To(BeZero())
				Expect(kinds(s.Events())).NotTo(ContainElement(sim.EventMerged))
			}
			Expect(s.World().Live()).To(HaveLen(2))
		})

		It("leaves the world empty when a load fails", func() {
			s := newSession(nil)
			Expect(s.Load(preset("collision"))).To(Succeed())

			err := s.Load(&scenario.Descriptor{ScenarioType: "wormhole"})
			Expect(errors.Is(err, dynamo.ErrInvalidScenario)).To(BeTrue())
			Expect(s.World().Len()).To(Equal(0))
		})
	})

	Describe("planet_birth", func() {
		It("never applies gravity", func() {
			s := newSession(nil)
			Expect(s.Load(preset("planet_birth"))).To(Succeed())
			Expect(s.Policy().Gravity).To(BeFalse())

			for i := 0; i < 60; i++ {
				s.Tick(frame)
				for _, b := range s.World().Live() {
					Expect(b.Velocity).To(Equal(dynamo.Vec3{}))
				}
			}
		})

		It("grows bodies to full size", func() {
			s := newSession(nil)
			Expect(s.Load(preset("planet_birth"))).To(Succeed())
			for i := 0; i < physics.DefaultMaxAge; i++ {
				s.Tick(frame)
			}
			for _, b := range s.Snapshot().Bodies {
				if b.Kind == physics.KindNatural {
					Expect(b.Scale).To(Equal(1.0))
				}
			}
		})
	})

	Describe("collisions", func() {
		It("merges a body at most once when three overlap", func() {
			s := newSession(zeroG)
			Expect(s.Load(&scenario.Descriptor{ScenarioType: "custom", Objects: []scenario.ObjectSpec{
				scenario.Object("A", "Earth", 3, 1).At(dynamo.Vec3{}, dynamo.Vec3{}),
				scenario.Object("B", "Earth", 3, 1).At(dynamo.V(1, 0, 0), dynamo.Vec3{}),
				scenario.Object("C", "Earth", 3, 1).At(dynamo.V(0, 1, 0), dynamo.Vec3{}),
			}})).To(Succeed())

			r := s.Tick(frame)
			Expect(r.Merges).To(Equal(1))
			live := s.World().Live()
			Expect(live).To(HaveLen(1))
			Expect(live[0].Name).To(Equal("C"))
		})

		It("destroys a body that hits an immune star", func() {
			s := newSession(zeroG)
			Expect(s.Load(&scenario.Descriptor{ScenarioType: "custom", Objects: []scenario.ObjectSpec{
				scenario.Object("Sun", "Sun", 6, 500).At(dynamo.Vec3{}, dynamo.Vec3{}),
				scenario.Object("Rock", "Moon", 1, 1).At(dynamo.V(3, 0, 0), dynamo.Vec3{}),
			}})).To(Succeed())

			r := s.Tick(frame)
			Expect(r.Destroyed).To(Equal(1))
			Expect(r.Merges).To(BeZero())
			Expect(kinds(s.Events())).To(ContainElements(sim.EventDestroyed, sim.EventDisposed))
			Expect(s.World().Live()).To(HaveLen(1))
			Expect(s.World().Live()[0].IsStar).To(BeTrue())
		})

		It("ignores collisions in eclipse scenes", func() {
			s := newSession(nil)
			Expect(s.Load(preset("solar_eclipse"))).To(Succeed())
			Expect(s.Trigger()).To(Succeed())
			for i := 0; i < 120; i++ {
				Expect(s.Tick(frame).Merges).To(BeZero())
			}
			Expect(s.World().Live()).To(HaveLen(3))
		})
	})

	Describe("giant impact", func() {
		It("produces exactly one molten body and plays the timeline", func() {
			s := newSession(nil)
			Expect(s.Load(preset("giant_impact"))).To(Succeed())
			Expect(s.Mode()).To(Equal(scenario.ModeGiantImpact))

			var phases []sim.Event
			for i := 0; i < 40*60; i++ {
				s.Tick(frame)
				for _, e := range s.Events() {
					if e.Kind == sim.EventPhaseChanged {
						phases = append(phases, e)
					}
				}
			}

			Expect(s.ImpactHappened()).To(BeTrue())
			live := s.World().Live()
			Expect(live).To(HaveLen(1))
			Expect(live[0].Name).To(Equal(physics.MoltenName))
			Expect(live[0].Kind).To(Equal(physics.KindMolten))
			Expect(live[0].Mass).To(BeNumerically("~", 118, 1e-9))
			Expect(phases).To(HaveLen(2))
			Expect(s.Director().TimeScale()).To(Equal(0.5))
		})

		It("aims a heavier impactor at the target", func() {
			s := newSession(nil)
			desc := &scenario.Descriptor{ScenarioType: "giant_impact", Objects: []scenario.ObjectSpec{
				scenario.Object("Earth", "Earth", 5, 10).At(dynamo.Vec3{}, dynamo.Vec3{}),
				scenario.Object("Theia", "Mars", 8, 50).At(dynamo.V(100, 0, 0), dynamo.Vec3{}),
			}}
			Expect(s.Load(desc)).To(Succeed())

			var theia *physics.Body
			for _, b := range s.World().Live() {
				if b.Name == "Theia" {
					theia = b
				}
			}
			Expect(theia).NotTo(BeNil())
			Expect(theia.Velocity.X).To(BeNumerically("~", -config.DefaultImpactorSpeed, 1e-9))
			Expect(theia.Velocity.Y).To(BeNumerically("~", 0, 1e-9))
			Expect(theia.Velocity.Z).To(BeNumerically("~", 0, 1e-9))
		})

		It("allows more substeps during the impact phase", func() {
			s := newSession(nil)
			Expect(s.Load(preset("giant_impact"))).To(Succeed())
			Expect(s.Tick(1).Steps).To(Equal(config.DefaultMaxSubsteps))

			for i := 0; i < 10*60 && s.Director().Phase() != cinematic.PhaseImpact; i++ {
				s.Tick(frame)
			}
			Expect(s.Director().Phase()).To(Equal(cinematic.PhaseImpact))
			Expect(s.Tick(1).Steps).To(Equal(config.DefaultImpactSubsteps))
		})

		It("slows the simulation during the approach", func() {
			s := newSession(nil)
			Expect(s.Load(preset("giant_impact"))).To(Succeed())
			for i := 0; i < 60; i++ {
				s.Tick(frame)
			}
			Expect(s.World().Time()).To(BeNumerically("<", 0.75))
			Expect(s.Snapshot().TimeScale).To(Equal(0.7))
		})
	})

	Describe("Trigger", func() {
		It("is refused outside eclipse scenes", func() {
			s := newSession(nil)
			Expect(s.Load(preset("collision"))).To(Succeed())
			Expect(errors.Is(s.Trigger(), dynamo.ErrNotTriggerable)).To(BeTrue())
		})

		It("moves the camera to the earth for a lunar eclipse", func() {
			s := newSession(nil)
			Expect(s.Load(preset("lunar_eclipse"))).To(Succeed())
			Expect(s.Trigger()).To(Succeed())
			Expect(s.Camera().Position).To(Equal(dynamo.V(0, 0, -6)))
		})
	})

	Describe("Follow", func() {
		It("clears the follow when the body dies", func() {
			s := newSession(zeroG)
			Expect(s.Load(twoBody())).To(Succeed())
			id := s.World().Live()[0].ID
			Expect(s.Follow(id)).To(Succeed())

			before := s.Camera().Target
			s.Tick(frame)
			Expect(s.Camera().Target).NotTo(Equal(before))

			tickUntil(s, 5, func(r sim.TickReport) bool { return r.Merges > 0 })
			Expect(s.Following()).To(BeZero())
		})

		It("rejects unknown bodies", func() {
			s := newSession(nil)
			Expect(s.Load(preset("collision"))).To(Succeed())
			Expect(errors.Is(s.Follow(999), dynamo.ErrInvalidBody)).To(BeTrue())
		})
	})
})
