package zone

import "github.com/l1jgo/zonerecon/internal/evgraph"

// Spot is a zone-local trigger point addressed by id (from a SpotTriggered
// packet), carrying the action list attached once a binding occurs.
type Spot struct {
	ID      uint32
	Actions []evgraph.Action
}

// Zone is the reconstructed aggregate for one zone id: its entities, its
// spots, and its connection tables. AllConnections is immutable once
// RegisterZone builds it; Connections is the live, mutable copy the Event
// Builder drains as triggers bind.
type Zone struct {
	ID           uint32
	DynamicMapID uint32
	StartX       float32
	StartY       float32
	StartRot     float32

	npcsByKey    map[entityKey]*Entity
	objectsByKey map[entityKey]*Entity
	bazaarsByKey map[entityKey]*Entity

	NPCs    []*Entity
	Objects []*Entity
	Bazaars []*Entity

	Spots map[uint32]*Spot

	AllConnections map[uint32]evgraph.ZoneChangeAction
	Connections    map[uint32]evgraph.ZoneChangeAction
}

func newZone(id uint32) *Zone {
	return &Zone{
		ID:             id,
		npcsByKey:      make(map[entityKey]*Entity),
		objectsByKey:   make(map[entityKey]*Entity),
		bazaarsByKey:   make(map[entityKey]*Entity),
		Spots:          make(map[uint32]*Spot),
		AllConnections: make(map[uint32]evgraph.ZoneChangeAction),
		Connections:    make(map[uint32]evgraph.ZoneChangeAction),
	}
}

// GetOrCreateHNPC returns the existing NPC entity at (id, floor(x,y,rot))
// or creates one.
func (z *Zone) GetOrCreateHNPC(id int32, x, y, rot float32) *Entity {
	k := npcObjectKey(id, x, y, rot)
	if e, ok := z.npcsByKey[k]; ok {
		return e
	}
	e := &Entity{Kind: EntityNPC, ID: id, X: k.x, Y: k.y, Rot: k.rot}
	z.npcsByKey[k] = e
	z.NPCs = append(z.NPCs, e)
	return e
}

// GetOrCreateONPC returns the existing object entity at (id, floor(x,y,rot))
// or creates one.
func (z *Zone) GetOrCreateONPC(id int32, x, y, rot float32, state uint8) *Entity {
	k := npcObjectKey(id, x, y, rot)
	if e, ok := z.objectsByKey[k]; ok {
		return e
	}
	e := &Entity{Kind: EntityObject, ID: id, X: k.x, Y: k.y, Rot: k.rot, ObjectState: state}
	z.objectsByKey[k] = e
	z.Objects = append(z.Objects, e)
	return e
}

// GetOrCreateBazaar returns the existing bazaar entity at floor(x,y,rot)
// (position alone, no id) or creates one.
func (z *Zone) GetOrCreateBazaar(x, y, rot float32, marketID uint32) *Entity {
	k := bazaarKey(x, y, rot)
	e, ok := z.bazaarsByKey[k]
	if !ok {
		e = &Entity{Kind: EntityBazaar, X: k.x, Y: k.y, Rot: k.rot}
		z.bazaarsByKey[k] = e
		z.Bazaars = append(z.Bazaars, e)
	}
	for _, m := range e.Markets {
		if m == marketID {
			return e
		}
	}
	e.Markets = append(e.Markets, marketID)
	return e
}

// GetOrCreateSpot returns the zone-local spot with the given id, creating
// it empty if this is the first reference.
func (z *Zone) GetOrCreateSpot(id uint32) *Spot {
	if s, ok := z.Spots[id]; ok {
		return s
	}
	s := &Spot{ID: id}
	z.Spots[id] = s
	return s
}

// FindEntity resolves an evgraph.Source identity (id + already-quantized
// position) back to the Entity it was built from, checking NPCs then
// Objects. Used by the Emitter to decide where a root event's StartEvent
// action (or unmapped fallback) attaches.
func (z *Zone) FindEntity(id, x, y, rot int32) (*Entity, bool) {
	k := entityKey{id: id, x: x, y: y, rot: rot}
	if e, ok := z.npcsByKey[k]; ok {
		return e, true
	}
	if e, ok := z.objectsByKey[k]; ok {
		return e, true
	}
	return nil, false
}
