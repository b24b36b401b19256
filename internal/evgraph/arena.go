// Package evgraph models the reconstructed event graph: a cyclic directed
// graph of EventNodes addressed by index rather than by pointer, so the
// weak "previous" back-link used during construction can never keep a dead
// node alive and never participates in equality.
package evgraph

// NodeID encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits: generation increments on erase so a stale
// handle is detectable instead of silently resolving to reused storage.
type NodeID uint64

const NilNode NodeID = 0

func newNodeID(index, generation uint32) NodeID {
	return NodeID(uint64(generation)<<32 | uint64(index))
}

func (id NodeID) index() uint32      { return uint32(id) }
func (id NodeID) generation() uint32 { return uint32(id >> 32) }
func (id NodeID) IsNil() bool        { return id == NilNode }

// Arena owns all EventNode storage for one merge pass (one zone). Nodes are
// never physically removed during a pass: erase bumps the slot's generation
// and clears its payload, so any leftover reference becomes provably stale
// rather than aliasing reused storage.
type Arena struct {
	slots       []EventNode
	generations []uint32
	alive       []bool
}

func NewArena() *Arena {
	return &Arena{
		slots:       make([]EventNode, 0, 64),
		generations: make([]uint32, 0, 64),
		alive:       make([]bool, 0, 64),
	}
}

// New allocates a node, assigns its id, and stores it. Generations start
// at 1, not 0: slot 0's first allocation would otherwise encode to the
// same uint64 as NilNode, making its own id indistinguishable from nil.
func (a *Arena) New(n EventNode) NodeID {
	idx := uint32(len(a.slots))
	a.slots = append(a.slots, n)
	a.generations = append(a.generations, 1)
	a.alive = append(a.alive, true)
	id := newNodeID(idx, 1)
	a.slots[idx].ID = id
	return id
}

// Get returns a pointer to the live node for id, or nil if id is stale or
// erased.
func (a *Arena) Get(id NodeID) *EventNode {
	if id.IsNil() {
		return nil
	}
	idx := id.index()
	if int(idx) >= len(a.slots) {
		return nil
	}
	if a.generations[idx] != id.generation() || !a.alive[idx] {
		return nil
	}
	return &a.slots[idx]
}

// Erase invalidates a slot. Callers must have already rewritten every
// reference to id before calling this (the merge passes in package merge
// guarantee that).
func (a *Arena) Erase(id NodeID) {
	idx := id.index()
	if int(idx) >= len(a.slots) || a.generations[idx] != id.generation() {
		return
	}
	a.alive[idx] = false
	a.generations[idx]++
	a.slots[idx] = EventNode{}
}

// Alive reports whether id still resolves to live storage.
func (a *Arena) Alive(id NodeID) bool {
	return a.Get(id) != nil
}

// Len returns the number of slots ever allocated (including erased ones).
func (a *Arena) Len() int { return len(a.slots) }

// Ids returns the ids of every currently live node, in allocation order.
func (a *Arena) Ids() []NodeID {
	out := make([]NodeID, 0, len(a.slots))
	for i, alive := range a.alive {
		if alive {
			out = append(out, newNodeID(uint32(i), a.generations[i]))
		}
	}
	return out
}
