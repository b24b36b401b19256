package zone

import (
	"github.com/l1jgo/zonerecon/internal/evgraph"
	"github.com/l1jgo/zonerecon/internal/zonedata"
)

// Registry owns every Zone seen across all captures and consults the
// static data store to synthesize connection tables on first registration.
type Registry struct {
	store zonedata.Store
	zones map[uint32]*Zone
}

func NewRegistry(store zonedata.Store) *Registry {
	return &Registry{store: store, zones: make(map[uint32]*Zone)}
}

// RegisterZone returns the Zone for zoneID, creating and populating its
// connection tables on first use. dynamicMapID is taken from the observed
// ZoneChange packet when the static ZoneData entry is absent.
func (r *Registry) RegisterZone(zoneID, dynamicMapID uint32) *Zone {
	if z, ok := r.zones[zoneID]; ok {
		return z
	}
	z := newZone(zoneID)
	z.DynamicMapID = dynamicMapID
	if zd, ok := r.store.GetZoneData(zoneID); ok {
		z.DynamicMapID = zd.DynamicMapID
		z.StartX, z.StartY, z.StartRot = zd.StartX, zd.StartY, zd.StartRot
	}
	r.zones[zoneID] = z
	r.buildConnections(z)
	return z
}

// buildConnections walks zoneID's own relation entry; for each connected
// peer it locates the peer's back-link to zoneID and reads the peer's
// source coordinates as the destination to synthesize a ZoneChange action
// for the live connection table.
func (r *Registry) buildConnections(z *Zone) {
	rel, ok := r.store.GetZoneRelationData(z.ID)
	if !ok {
		return // static data unavailable: no connection actions synthesized
	}
	for peerID := range rel.Connections {
		peerRel, ok := r.store.GetZoneRelationData(peerID)
		if !ok {
			continue
		}
		back, ok := peerRel.Connections[z.ID]
		if !ok {
			continue // peer has no back-link; nothing to synthesize
		}
		var mapID uint32
		if pzd, ok := r.store.GetZoneData(peerID); ok {
			mapID = pzd.DynamicMapID
		}
		action := evgraph.ZoneChangeAction{
			ZoneID:  peerID,
			DestX:   back.SrcX,
			DestY:   back.SrcY,
			DestRot: back.SrcRot,
			MapID:   mapID,
		}
		z.AllConnections[peerID] = action
		z.Connections[peerID] = action
	}
}

// Get returns the Zone for zoneID if it has been registered.
func (r *Registry) Get(zoneID uint32) (*Zone, bool) {
	z, ok := r.zones[zoneID]
	return z, ok
}

// Zones returns every registered zone.
func (r *Registry) Zones() map[uint32]*Zone {
	return r.zones
}

// ResolveHNPCName returns the static name for an NPC template id, if known.
func (r *Registry) ResolveHNPCName(id int32) (string, bool) {
	d, ok := r.store.GetHNPCData(id)
	if !ok {
		return "", false
	}
	return d.Name, true
}

// ResolveONPCName returns the static name for an object template id, if known.
func (r *Registry) ResolveONPCName(id int32) (string, bool) {
	d, ok := r.store.GetONPCData(id)
	if !ok {
		return "", false
	}
	return d.Name, true
}
