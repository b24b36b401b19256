package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/zonerecon/internal/capture"
	"github.com/l1jgo/zonerecon/internal/decode"
	"github.com/l1jgo/zonerecon/internal/xmlout"
	"github.com/l1jgo/zonerecon/internal/zone"
	"github.com/l1jgo/zonerecon/internal/zonedata"
)

type fakeStore struct{}

func (fakeStore) GetHNPCData(int32) (*zonedata.HNPCData, bool)                  { return nil, false }
func (fakeStore) GetONPCData(int32) (*zonedata.ONPCData, bool)                  { return nil, false }
func (fakeStore) GetZoneData(uint32) (*zonedata.ZoneData, bool)                 { return nil, false }
func (fakeStore) GetZoneRelationData(uint32) (*zonedata.ZoneRelationData, bool) { return nil, false }

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func leF32(v float32) []byte { return le32(math.Float32bits(v)) }

func concat(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func writeCaptureFile(t *testing.T, path string, frames [][2]any) {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range frames {
		op := f[0].(decode.Opcode)
		body := f[1].([]byte)
		length := uint32(2 + len(body))
		binary.Write(&buf, binary.LittleEndian, length)
		buf.WriteByte(byte(capture.ServerToClient))
		buf.WriteByte(byte(op))
		buf.Write(body)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write capture file: %v", err)
	}
}

// TestRunProducesZoneAndEventXML drives the whole pipeline end to end over
// a single-NPC hello scenario and checks both output files land on disk
// with the expected content.
func TestRunProducesZoneAndEventXML(t *testing.T) {
	dir := t.TempDir()
	capPath := filepath.Join(dir, "scenario1.cap")
	writeCaptureFile(t, capPath, [][2]any{
		{decode.OpZoneChange, concat(le32(1), le32(0), leF32(0), leF32(0), leF32(0), le32(0))},
		{decode.OpNPCSpawn, concat(le32(10), le32(100), le32(0), le32(1), leF32(0), leF32(0), leF32(0), []byte{0, 0})},
		{decode.OpInteraction, le32(10)},
		{decode.OpNPCMessage, concat(le32(10), le32(42), le32(0))},
		{decode.OpEventResponse, le32(0)},
		{decode.OpEventEnd, nil},
	})

	outDir := filepath.Join(dir, "out")
	reg := zone.NewRegistry(fakeStore{})
	p := New(reg, xmlout.NewEncoder(), zap.NewNop(), 2, outDir)

	if err := p.Run(context.Background(), []string{capPath}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	zoneXML, err := os.ReadFile(filepath.Join(outDir, "zone-1.xml"))
	if err != nil {
		t.Fatalf("read zone-1.xml: %v", err)
	}
	if !strings.Contains(string(zoneXML), `templateId="100"`) {
		t.Errorf("expected the spawned NPC in zone-1.xml, got:\n%s", zoneXML)
	}
	if !strings.Contains(string(zoneXML), "startEvent") {
		t.Errorf("expected a StartEvent action on the NPC, got:\n%s", zoneXML)
	}

	eventsXML, err := os.ReadFile(filepath.Join(outDir, "zone_events-1.xml"))
	if err != nil {
		t.Fatalf("read zone_events-1.xml: %v", err)
	}
	if !strings.Contains(string(eventsXML), `id="Z1_NM001"`) {
		t.Errorf("expected event id Z1_NM001 in zone_events-1.xml, got:\n%s", eventsXML)
	}
}
