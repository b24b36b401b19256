package build

import (
	"github.com/l1jgo/zonerecon/internal/decode"
	"github.com/l1jgo/zonerecon/internal/evgraph"
	"github.com/l1jgo/zonerecon/internal/visit"
)

// bindTrigger implements binding a visit to a trigger: when a zone
// change occurs while a trigger is still pending, attach the prepared
// ZoneChange action from the live connection table to either the
// interacted NPC or the triggered spot, and drain that connection from
// the live table. With no trigger pending, graft a synthetic ZoneChange
// onto the most recently completed chain if it ended within the
// staleness window.
func (b *Builder) bindTrigger(r decode.ZoneChangeRecord) {
	if trig, ok := b.cur.PendingTrigger(); ok {
		b.bindPendingTrigger(trig, r)
		return
	}
	b.graftSyntheticZoneChange(r)
}

func (b *Builder) bindPendingTrigger(trig visit.PacketTrigger, r decode.ZoneChangeRecord) {
	action, found := b.curZone.Connections[r.ZoneID]
	if !found {
		return // advisory: no matching prepared connection, becomes an "unknown spot" at emit time
	}
	if action.DestRot == 0 {
		action.DestRot = r.Rot
	}
	switch trig.Opcode {
	case decode.OpInteraction:
		ir := trig.Record.(decode.InteractionRecord)
		if e, ok := b.cur.Entities[ir.EntityID]; ok && len(e.Actions) == 0 {
			e.Actions = append(e.Actions, action)
		}
	case decode.OpSpotTriggered:
		sr := trig.Record.(decode.SpotTriggeredRecord)
		spot := b.curZone.GetOrCreateSpot(sr.SpotID)
		spot.Actions = append(spot.Actions, action)
	}
	b.cur.ConsumeTrigger(trig)
	delete(b.curZone.Connections, r.ZoneID)
}

func (b *Builder) graftSyntheticZoneChange(r decode.ZoneChangeRecord) {
	if b.cur.LastFlushedNode.IsNil() {
		return
	}
	if b.cur.Seq()-b.cur.LastFlushedSeq > visit.StaleTriggerWindow {
		return
	}
	arena := b.cur.Arena
	node := arena.NewPerformActions()
	arena.Get(node).PerformActions.Actions = []evgraph.Action{
		evgraph.ZoneChangeAction{ZoneID: r.ZoneID, DestX: r.X, DestY: r.Y, DestRot: r.Rot, MapID: r.DynamicMapID},
	}
	b.wire(arena, b.cur.LastFlushedNode, b.cur.LastFlushedResponseKey, node)
}
