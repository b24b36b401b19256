package build

import (
	"encoding/binary"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/zonerecon/internal/capture"
	"github.com/l1jgo/zonerecon/internal/decode"
	"github.com/l1jgo/zonerecon/internal/evgraph"
	"github.com/l1jgo/zonerecon/internal/zone"
	"github.com/l1jgo/zonerecon/internal/zonedata"
)

// emptyStore is a zonedata.Store with nothing in it: every lookup reports
// not-found, matching the "static data unavailable" degraded path.
type emptyStore struct{}

func (emptyStore) GetHNPCData(int32) (*zonedata.HNPCData, bool)                { return nil, false }
func (emptyStore) GetONPCData(int32) (*zonedata.ONPCData, bool)                { return nil, false }
func (emptyStore) GetZoneData(uint32) (*zonedata.ZoneData, bool)               { return nil, false }
func (emptyStore) GetZoneRelationData(uint32) (*zonedata.ZoneRelationData, bool) { return nil, false }

// sliceSource is an in-memory capture.Source for feeding hand-built frames
// to the Builder without needing a real capture file.
type sliceSource struct {
	path   string
	frames []capture.Frame
	i      int
}

func (s *sliceSource) Path() string { return s.path }

func (s *sliceSource) Next() (capture.Frame, error) {
	if s.i >= len(s.frames) {
		return capture.Frame{}, capture.ErrEOF
	}
	f := s.frames[s.i]
	s.i++
	return f, nil
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func leF32(v float32) []byte {
	return le32(math.Float32bits(v))
}

func concat(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func frame(op decode.Opcode, body []byte) capture.Frame {
	return capture.Frame{Opcode: byte(op), Body: body}
}

func newTestBuilder() (*Builder, *zone.Registry) {
	reg := zone.NewRegistry(emptyStore{})
	return New(reg, make(map[uint32]*evgraph.Arena), zap.NewNop()), reg
}

func TestScenarioSingleNPCHello(t *testing.T) {
	b, reg := newTestBuilder()

	frames := []capture.Frame{
		frame(decode.OpZoneChange, concat(le32(1), le32(0), leF32(0), leF32(0), leF32(0), le32(0))),
		frame(decode.OpNPCSpawn, concat(le32(10), le32(100), le32(0), le32(1), leF32(0), leF32(0), leF32(0), []byte{0, 0})),
		frame(decode.OpInteraction, le32(10)),
		frame(decode.OpNPCMessage, concat(le32(10), le32(42), le32(0))),
		frame(decode.OpEventResponse, le32(0)),
		frame(decode.OpEventEnd, nil),
	}
	src := &sliceSource{path: "scenario1.cap", frames: frames}

	chains, err := b.Process(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chains) != 1 {
		t.Fatalf("expected exactly one completed chain, got %d", len(chains))
	}

	z, ok := reg.Get(1)
	if !ok {
		t.Fatal("expected zone 1 to be registered")
	}
	if len(z.NPCs) != 1 || z.NPCs[0].ID != 100 {
		t.Fatalf("expected zone 1 to contain one NPC with template id 100, got %+v", z.NPCs)
	}

	arena := b.arenas[1]
	root := arena.Get(chains[0].Root)
	if root == nil || root.Kind != evgraph.KindNPCMessage {
		t.Fatalf("expected the chain root to be an NPCMessage node, got %+v", root)
	}
	if len(root.NPCMessage.MessageIDs) != 1 || root.NPCMessage.MessageIDs[0] != 42 {
		t.Errorf("expected a single message id 42, got %+v", root.NPCMessage.MessageIDs)
	}
}

func TestScenarioTwoIdenticalRunsMerge(t *testing.T) {
	b, reg := newTestBuilder()

	run := func() []capture.Frame {
		return []capture.Frame{
			frame(decode.OpZoneChange, concat(le32(1), le32(0), leF32(0), leF32(0), leF32(0), le32(0))),
			frame(decode.OpNPCSpawn, concat(le32(10), le32(100), le32(0), le32(1), leF32(0), leF32(0), leF32(0), []byte{0, 0})),
			frame(decode.OpInteraction, le32(10)),
			frame(decode.OpNPCMessage, concat(le32(10), le32(42), le32(0))),
			frame(decode.OpEventResponse, le32(0)),
			frame(decode.OpEventEnd, nil),
		}
	}
	var frames []capture.Frame
	frames = append(frames, run()...)
	frames = append(frames, run()...)
	src := &sliceSource{path: "scenario2.cap", frames: frames}

	chains, err := b.Process(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chains) != 2 {
		t.Fatalf("expected two chain roots (one per visit-local trigger), got %d", len(chains))
	}

	z, _ := reg.Get(1)
	if len(z.NPCs) != 1 {
		t.Fatalf("expected the two spawns to dedup into one NPC entity, got %d", len(z.NPCs))
	}
}

func TestAnomalyUnknownSourceInvalidatesVisit(t *testing.T) {
	b, _ := newTestBuilder()

	frames := []capture.Frame{
		frame(decode.OpZoneChange, concat(le32(1), le32(0), leF32(0), leF32(0), leF32(0), le32(0))),
		frame(decode.OpNPCMessage, concat(le32(999), le32(1), le32(0))), // unknown source entity
		frame(decode.OpEventEnd, nil),
	}
	src := &sliceSource{path: "anomaly.cap", frames: frames}

	chains, err := b.Process(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chains) != 0 {
		t.Errorf("expected the chain to be discarded when eventsInvalid is set, got %d chains", len(chains))
	}
}

func TestMapFlagIllegalClearInvalidatesVisit(t *testing.T) {
	b, reg := newTestBuilder()

	frames := []capture.Frame{
		frame(decode.OpZoneChange, concat(le32(1), le32(0), leF32(0), leF32(0), leF32(0), le32(0))),
		frame(decode.OpNPCSpawn, concat(le32(10), le32(100), le32(0), le32(1), leF32(0), leF32(0), leF32(0), []byte{0, 0})),
		frame(decode.OpMapFlag, concat(le32(0)[:2], []byte{0x08})), // set bit 3
		frame(decode.OpInteraction, le32(10)),
		frame(decode.OpNPCMessage, concat(le32(10), le32(42), le32(0))),
		frame(decode.OpMapFlag, concat(le32(0)[:2], []byte{0x00})), // clear bit 3: illegal
		frame(decode.OpEventEnd, nil),
	}
	src := &sliceSource{path: "mapflag.cap", frames: frames}

	chains, err := b.Process(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chains) != 0 {
		t.Errorf("expected the event chain to be discarded after an illegal MAP-flag clear, got %d chains", len(chains))
	}

	z, _ := reg.Get(1)
	if len(z.NPCs) != 1 {
		t.Error("expected the NPC spawn to survive the invalidated visit")
	}
}
