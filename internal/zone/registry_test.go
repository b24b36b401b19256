package zone

import (
	"testing"

	"github.com/l1jgo/zonerecon/internal/zonedata"
)

type fakeStore struct {
	hnpcs     map[int32]*zonedata.HNPCData
	onpcs     map[int32]*zonedata.ONPCData
	zones     map[uint32]*zonedata.ZoneData
	relations map[uint32]*zonedata.ZoneRelationData
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hnpcs:     make(map[int32]*zonedata.HNPCData),
		onpcs:     make(map[int32]*zonedata.ONPCData),
		zones:     make(map[uint32]*zonedata.ZoneData),
		relations: make(map[uint32]*zonedata.ZoneRelationData),
	}
}

func (s *fakeStore) GetHNPCData(id int32) (*zonedata.HNPCData, bool) {
	v, ok := s.hnpcs[id]
	return v, ok
}

func (s *fakeStore) GetONPCData(id int32) (*zonedata.ONPCData, bool) {
	v, ok := s.onpcs[id]
	return v, ok
}

func (s *fakeStore) GetZoneData(id uint32) (*zonedata.ZoneData, bool) {
	v, ok := s.zones[id]
	return v, ok
}

func (s *fakeStore) GetZoneRelationData(id uint32) (*zonedata.ZoneRelationData, bool) {
	v, ok := s.relations[id]
	return v, ok
}

func TestRegisterZoneSynthesizesBackLinkedConnections(t *testing.T) {
	store := newFakeStore()
	store.zones[1] = &zonedata.ZoneData{ZoneID: 1, DynamicMapID: 4}
	store.zones[2] = &zonedata.ZoneData{ZoneID: 2, DynamicMapID: 9}
	store.relations[1] = &zonedata.ZoneRelationData{
		ZoneID: 1,
		Connections: map[uint32]zonedata.ZoneConnection{
			2: {To: 2, SrcX: 10, SrcY: 20, SrcRot: 1},
		},
	}
	store.relations[2] = &zonedata.ZoneRelationData{
		ZoneID: 2,
		Connections: map[uint32]zonedata.ZoneConnection{
			1: {To: 1, SrcX: 300, SrcY: 400, SrcRot: 2},
		},
	}

	reg := NewRegistry(store)
	z1 := reg.RegisterZone(1, 0)

	conn, ok := z1.AllConnections[2]
	if !ok {
		t.Fatal("expected zone 1 to have a connection entry to zone 2")
	}
	if conn.DestX != 300 || conn.DestY != 400 || conn.DestRot != 2 {
		t.Errorf("expected destination coordinates from zone 2's back-link, got %+v", conn)
	}
	if conn.MapID != 9 {
		t.Errorf("expected destination map id 9, got %d", conn.MapID)
	}
	if _, ok := z1.Connections[2]; !ok {
		t.Error("expected the live connection table to also start with this entry")
	}
}

func TestRegisterZoneDegradesGracefullyWithoutRelationData(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)
	z := reg.RegisterZone(5, 1)
	if len(z.AllConnections) != 0 {
		t.Errorf("expected no synthesized connections when static data is absent, got %d", len(z.AllConnections))
	}
}

func TestRegisterZoneIsIdempotent(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)
	z1 := reg.RegisterZone(1, 4)
	z2 := reg.RegisterZone(1, 4)
	if z1 != z2 {
		t.Error("expected RegisterZone to return the same Zone on repeat calls")
	}
}

func TestEntityDeduplicationByQuantizedPosition(t *testing.T) {
	z := newZone(1)
	a := z.GetOrCreateHNPC(100, 10.9, 20.1, 0)
	b := z.GetOrCreateHNPC(100, 10.99, 20.99, 0.5)
	if a != b {
		t.Error("expected two spawns with the same (id, floor(x), floor(y), floor(rot)) to yield the same entity")
	}
	c := z.GetOrCreateHNPC(100, 11.0, 20.1, 0)
	if a == c {
		t.Error("expected a spawn crossing an integer boundary to yield a distinct entity")
	}
}

func TestBazaarDeduplicationByPositionAlone(t *testing.T) {
	z := newZone(1)
	a := z.GetOrCreateBazaar(1.0, 2.0, 0, 500)
	b := z.GetOrCreateBazaar(1.2, 2.4, 0, 501)
	if a != b {
		t.Error("expected bazaars at the same quantized position to share one entity regardless of market id")
	}
	if len(a.Markets) != 2 {
		t.Errorf("expected both market ids aggregated onto the shared bazaar, got %v", a.Markets)
	}
}
