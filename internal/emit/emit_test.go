package emit

import (
	"regexp"
	"testing"

	"github.com/l1jgo/zonerecon/internal/evgraph"
	"github.com/l1jgo/zonerecon/internal/zone"
	"github.com/l1jgo/zonerecon/internal/zonedata"
)

type fakeStore struct{}

func (fakeStore) GetHNPCData(int32) (*zonedata.HNPCData, bool)                  { return nil, false }
func (fakeStore) GetONPCData(int32) (*zonedata.ONPCData, bool)                  { return nil, false }
func (fakeStore) GetZoneData(uint32) (*zonedata.ZoneData, bool)                 { return nil, false }
func (fakeStore) GetZoneRelationData(uint32) (*zonedata.ZoneRelationData, bool) { return nil, false }

var eventIDPattern = regexp.MustCompile(`^Z\d+_(NM|EX|ML|PR|SC|ME|DR|PA)\d{3}$`)

func TestZoneAssignsUniqueFormattedIDsAndAttachesStart(t *testing.T) {
	arena := evgraph.NewArena()
	src := evgraph.Source{Present: true, EntityID: 10, X: 0, Y: 0, Rot: 0}

	root := arena.NewNPCMessage(src)
	n := arena.Get(root)
	n.NPCMessage.MessageIDs = []int32{42}
	n.NPCMessage.Unknowns = []int32{0}

	z := newTestZoneWithEntity(t, 10, 0, 0, 0)

	res := Zone(arena, z, []evgraph.NodeID{root})

	if len(res.Events) != 1 {
		t.Fatalf("expected exactly one emitted event, got %d", len(res.Events))
	}
	ev := res.Events[0]
	if !eventIDPattern.MatchString(ev.ID) {
		t.Errorf("event id %q does not match the required format", ev.ID)
	}
	if len(res.Unmapped) != 0 {
		t.Errorf("expected no unmapped events, got %d", len(res.Unmapped))
	}

	e, ok := z.FindEntity(10, 0, 0, 0)
	if !ok {
		t.Fatal("expected the NPC entity to resolve")
	}
	if len(e.Actions) != 1 {
		t.Fatalf("expected the NPC to have exactly one action, got %d", len(e.Actions))
	}
	start, ok := e.Actions[0].(evgraph.StartEventAction)
	if !ok {
		t.Fatalf("expected a StartEventAction, got %+v", e.Actions[0])
	}
	if start.EventID != ev.ID {
		t.Errorf("expected the StartEvent to reference %q, got %q", ev.ID, start.EventID)
	}
}

func TestZoneFilesSecondRootAsUnmappedAgainstFirstStart(t *testing.T) {
	arena := evgraph.NewArena()
	src := evgraph.Source{Present: true, EntityID: 10, X: 0, Y: 0, Rot: 0}

	root1 := arena.NewNPCMessage(src)
	arena.Get(root1).NPCMessage.MessageIDs = []int32{1}
	root2 := arena.NewNPCMessage(src)
	arena.Get(root2).NPCMessage.MessageIDs = []int32{2}

	z := newTestZoneWithEntity(t, 10, 0, 0, 0)

	res := Zone(arena, z, []evgraph.NodeID{root1, root2})

	if len(res.Unmapped) != 1 {
		t.Fatalf("expected exactly one unmapped event, got %d", len(res.Unmapped))
	}
	e, _ := z.FindEntity(10, 0, 0, 0)
	start := e.Actions[0].(evgraph.StartEventAction)
	if res.Unmapped[0].ConditionID != start.EventID {
		t.Errorf("expected the unmapped condition to reference the first start %q, got %q", start.EventID, res.Unmapped[0].ConditionID)
	}
}

func TestZoneAssignsUniqueIDsAcrossMultipleNodes(t *testing.T) {
	arena := evgraph.NewArena()
	src := evgraph.Source{Present: true, EntityID: 10}

	root := arena.NewNPCMessage(src)
	arena.Get(root).NPCMessage.MessageIDs = []int32{1}
	next := arena.NewNPCMessage(src)
	arena.Get(next).NPCMessage.MessageIDs = []int32{2}
	arena.Get(root).Next[0] = next

	z := newTestZoneWithEntity(t, 10, 0, 0, 0)
	res := Zone(arena, z, []evgraph.NodeID{root})

	if len(res.Events) != 2 {
		t.Fatalf("expected two emitted events, got %d", len(res.Events))
	}
	seen := make(map[string]bool)
	for _, ev := range res.Events {
		if seen[ev.ID] {
			t.Errorf("duplicate event id %q", ev.ID)
		}
		seen[ev.ID] = true
		if !eventIDPattern.MatchString(ev.ID) {
			t.Errorf("event id %q does not match the required format", ev.ID)
		}
	}
	if res.Events[0].NextID != res.Events[1].ID {
		t.Errorf("expected the root's NextID to reference the second event's id")
	}
}

func newTestZoneWithEntity(t *testing.T, id, x, y, rot int32) *zone.Zone {
	t.Helper()
	reg := zone.NewRegistry(fakeStore{})
	z := reg.RegisterZone(1, 0)
	z.GetOrCreateHNPC(id, float32(x), float32(y), float32(rot))
	return z
}
