// Package visit holds per-visit Instance State: the entity-id map, pending
// trigger pair, running event chain pointers, and shadow bitmaps a single
// zone visit accumulates between a ZoneChange in and the ZoneChange (or
// capture end) that closes it out.
package visit

import "github.com/l1jgo/zonerecon/internal/decode"

// PacketTrigger is a remembered client-to-server packet (Interaction or
// SpotTriggered) that might bind to the next zone change.
type PacketTrigger struct {
	Opcode decode.Opcode
	Record decode.Record
	Seq    int
	Valid  bool
}

// triggerRing keeps at most the last and second-to-last trigger: some
// servers flush a zone-change acknowledgement one packet after the event
// actually ended, so the trigger that bound it can be one step behind.
type triggerRing struct {
	last, secondLast PacketTrigger
}

func (r *triggerRing) capture(t PacketTrigger) {
	r.secondLast = r.last
	r.last = t
}

// invalidatePending marks whichever trigger is still pending as invalid.
// Used when a skill completion arrives, so a stale trigger is never
// mis-attributed to a later side effect.
func (r *triggerRing) invalidatePending() {
	if r.last.Valid {
		r.last.Valid = false
		return
	}
	r.secondLast.Valid = false
}

// Pending returns the most recent still-valid trigger, preferring last
// over secondLast, and whether one exists.
func (r *triggerRing) Pending() (PacketTrigger, bool) {
	if r.last.Valid {
		return r.last, true
	}
	if r.secondLast.Valid {
		return r.secondLast, true
	}
	return PacketTrigger{}, false
}

// Consume invalidates the trigger returned by Pending, so it cannot bind
// twice.
func (r *triggerRing) consume(t PacketTrigger) {
	if r.last.Seq == t.Seq {
		r.last.Valid = false
	}
	if r.secondLast.Seq == t.Seq {
		r.secondLast.Valid = false
	}
}
