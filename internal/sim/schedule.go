package sim

import (
	"container/heap"

	"github.com/san-kum/celestia/internal/physics"
)

// Spawn is a body waiting to join the world once the session clock reaches
// DueAt. Generation ties it to the scenario that produced it.
type Spawn struct {
	DueAt      float64
	Generation uint64
	Body       *physics.Body
	Merge      physics.Merge

	seq uint64
}

type spawnHeap []*Spawn

func (h spawnHeap) Len() int { return len(h) }
func (h spawnHeap) Less(i, j int) bool {
	if h[i].DueAt != h[j].DueAt {
		return h[i].DueAt < h[j].DueAt
	}
	return h[i].seq < h[j].seq
}
func (h spawnHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *spawnHeap) Push(x any)   { *h = append(*h, x.(*Spawn)) }
func (h *spawnHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}

// Schedule orders deferred spawns by due time, then by insertion.
type Schedule struct {
	entries spawnHeap
	seq     uint64
}

func NewSchedule() *Schedule {
	return &Schedule{}
}

func (s *Schedule) Push(sp *Spawn) {
	s.seq++
	sp.seq = s.seq
	heap.Push(&s.entries, sp)
}

// Due pops every entry due at clock. Entries from other generations are
// dropped and reported separately.
func (s *Schedule) Due(clock float64, generation uint64) (due []*Spawn, stale int) {
	for len(s.entries) > 0 && s.entries[0].DueAt <= clock {
		sp := heap.Pop(&s.entries).(*Spawn)
		if sp.Generation != generation {
			stale++
			continue
		}
		due = append(due, sp)
	}
	return due, stale
}

// Pending returns the bodies still waiting for the given generation.
func (s *Schedule) Pending(generation uint64) []*physics.Body {
	var out []*physics.Body
	for _, sp := range s.entries {
		if sp.Generation == generation {
			out = append(out, sp.Body)
		}
	}
	return out
}

func (s *Schedule) Len() int { return len(s.entries) }

func (s *Schedule) Clear() {
	s.entries = nil
}
