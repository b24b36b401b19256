// Package zone holds the reconstructed Zone aggregate: its entities,
// spots, and connection tables.
package zone

import (
	"math"

	"github.com/l1jgo/zonerecon/internal/evgraph"
)

// EntityKind distinguishes the three addressable object variants: NPCs,
// interactive objects, and bazaar markers.
type EntityKind int

const (
	EntityNPC EntityKind = iota
	EntityObject
	EntityBazaar
)

// quantize floor-rounds a coordinate for equality: entity de-duplication
// always compares floor(x)/floor(y)/floor(rot).
func quantize(v float32) int32 {
	return int32(math.Floor(float64(v)))
}

// Entity is an addressable object living in a zone: an NPC, an interactive
// Object, or a Bazaar marker. Its action list starts empty and is
// populated only when the Emitter attaches an event start (a StartEvent
// action) or the Event Builder binds a zone change (a ZoneChange action).
type Entity struct {
	Kind EntityKind
	ID   int32 // template id (NPC id / object id); unused for Bazaar
	X, Y, Rot int32 // quantized

	ObjectState uint8           // Object only
	Markets     []uint32        // Bazaar only: aggregated market ids
	Name        string          // resolved from zonedata at emit time, not decode time

	Actions []evgraph.Action
}

// entityKey identifies an Entity for de-duplication: NPCs/Objects compare
// (id, quantized position); Bazaars compare position alone.
type entityKey struct {
	id        int32
	x, y, rot int32
	bazaar    bool
}

func npcObjectKey(id int32, x, y, rot float32) entityKey {
	return entityKey{id: id, x: quantize(x), y: quantize(y), rot: quantize(rot)}
}

func bazaarKey(x, y, rot float32) entityKey {
	return entityKey{x: quantize(x), y: quantize(y), rot: quantize(rot), bazaar: true}
}
