package visit

import (
	"github.com/l1jgo/zonerecon/internal/decode"
	"github.com/l1jgo/zonerecon/internal/evgraph"
	"github.com/l1jgo/zonerecon/internal/zone"
)

// StaleTriggerWindow is the packet-count staleness guard: a trigger that
// fired more than this many packets before a zone change is dropped
// silently.
const StaleTriggerWindow = 10

// Instance is the per-visit state the Event Builder mutates while walking
// one capture's packet stream within a single zone visit. A visit begins
// on a ZoneChange into a different zone id and ends on the next such
// ZoneChange or capture EOF; a CharacterData packet does not open one.
type Instance struct {
	Arena  *evgraph.Arena
	ZoneID uint32

	// Entities references this visit has seen, by wire entity id — not the
	// zone-level dedup map, which lives on *zone.Zone itself.
	Entities map[int32]*zone.Entity

	// PlayerEntityID is the wire entity id CharacterData assigned to this
	// visit's own character, once seen.
	PlayerEntityID int32

	trigger triggerRing
	seq     int

	ChainHead    evgraph.NodeID
	ChainCurrent evgraph.NodeID
	ChainLast    evgraph.NodeID

	EventResponse      int32
	HasResponse        bool
	LastEventPacketSeq int

	FlagShadow map[decode.FlagKind][]byte
	LNCShadow  int16

	EventsInvalid bool

	// LastFlushed* records the most recently completed chain's tail, so a
	// zone change with no pending trigger can still graft a synthetic
	// ZoneChange onto it within the staleness window.
	LastFlushedNode         evgraph.NodeID
	LastFlushedResponseKey  int32
	LastFlushedSeq          int
}

// NewInstance starts a fresh visit into zoneID, sharing the given arena
// (the arena is per-zone merge scope, not per-visit: nodes created here
// are later folded by package merge alongside every other visit's chain).
func NewInstance(arena *evgraph.Arena, zoneID uint32) *Instance {
	return &Instance{
		Arena:      arena,
		ZoneID:     zoneID,
		Entities:   make(map[int32]*zone.Entity),
		FlagShadow: make(map[decode.FlagKind][]byte),
	}
}

// NextSeq advances and returns the monotonic packet sequence counter this
// visit uses for trigger staleness and the synthetic zone-change graft
// window.
func (in *Instance) NextSeq() int {
	in.seq++
	return in.seq
}

// Seq returns the current packet sequence without advancing it.
func (in *Instance) Seq() int { return in.seq }

// CaptureTrigger records an Interaction or SpotTriggered packet as the
// pending trigger.
func (in *Instance) CaptureTrigger(op decode.Opcode, rec decode.Record) {
	in.trigger.capture(PacketTrigger{Opcode: op, Record: rec, Seq: in.seq, Valid: true})
}

// InvalidatePendingTrigger marks whichever trigger is pending as invalid,
// called when a skill-completion packet arrives.
func (in *Instance) InvalidatePendingTrigger() {
	in.trigger.invalidatePending()
}

// PendingTrigger returns the most recent valid trigger and whether it is
// within the staleness window of the current packet.
func (in *Instance) PendingTrigger() (PacketTrigger, bool) {
	t, ok := in.trigger.Pending()
	if !ok {
		return PacketTrigger{}, false
	}
	if in.seq-t.Seq > StaleTriggerWindow {
		return PacketTrigger{}, false // advisory: silently dropped
	}
	return t, true
}

// ConsumeTrigger marks t as used so it cannot bind to a second zone change.
func (in *Instance) ConsumeTrigger(t PacketTrigger) {
	in.trigger.consume(t)
}

// MarkInvalid sets EventsInvalid; entity spawns and zone connections are
// unaffected. Only this visit's event chain is discarded at
// post-processing time.
func (in *Instance) MarkInvalid() {
	in.EventsInvalid = true
}
