package zonedata

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestYAMLStoreLoadAndLookup(t *testing.T) {
	dir := t.TempDir()
	hnpcPath := writeTempFile(t, dir, "hnpc_list.yaml", `
hnpcs:
  - id: 100
    name: Town Guard
`)
	onpcPath := writeTempFile(t, dir, "onpc_list.yaml", `
onpcs:
  - id: 200
    name: Storage Chest
`)
	zonePath := writeTempFile(t, dir, "zone_list.yaml", `
zones:
  - zone_id: 1
    dynamic_map_id: 4
    start_x: 32000
    start_y: 32000
    start_rot: 0
`)
	relPath := writeTempFile(t, dir, "zone_relation_list.yaml", `
zone_relations:
  - zone_id: 1
    connections:
      - to: 2
        src_x: 100
        src_y: 200
        src_rot: 1
  - zone_id: 2
    connections:
      - to: 1
        src_x: 300
        src_y: 400
        src_rot: 2
`)

	store, err := Load(hnpcPath, onpcPath, zonePath, relPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h, ok := store.GetHNPCData(100); !ok || h.Name != "Town Guard" {
		t.Errorf("expected HNPC 100 = Town Guard, got %+v ok=%v", h, ok)
	}
	if o, ok := store.GetONPCData(200); !ok || o.Name != "Storage Chest" {
		t.Errorf("expected ONPC 200 = Storage Chest, got %+v ok=%v", o, ok)
	}
	if z, ok := store.GetZoneData(1); !ok || z.DynamicMapID != 4 {
		t.Errorf("expected zone 1 dynamic map id 4, got %+v ok=%v", z, ok)
	}
	if _, ok := store.GetHNPCData(999); ok {
		t.Error("expected lookup of an unknown HNPC id to report ok=false")
	}

	rel, ok := store.GetZoneRelationData(2)
	if !ok {
		t.Fatal("expected zone 2's relation data to be present")
	}
	conn, ok := rel.Connections[1]
	if !ok || conn.SrcX != 300 {
		t.Errorf("expected zone 2's back-link to zone 1 at src_x=300, got %+v ok=%v", conn, ok)
	}
}

func TestYAMLStoreLoadFailsLoudlyOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.yaml"))
	if err == nil {
		t.Error("expected Load to fail when a source file does not exist")
	}
}
