package zonedata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type hnpcListFile struct {
	HNPCs []hnpcEntry `yaml:"hnpcs"`
}

type hnpcEntry struct {
	ID   int32  `yaml:"id"`
	Name string `yaml:"name"`
}

type onpcListFile struct {
	ONPCs []onpcEntry `yaml:"onpcs"`
}

type onpcEntry struct {
	ID   int32  `yaml:"id"`
	Name string `yaml:"name"`
}

type zoneListFile struct {
	Zones []zoneEntry `yaml:"zones"`
}

type zoneEntry struct {
	ZoneID       uint32  `yaml:"zone_id"`
	DynamicMapID uint32  `yaml:"dynamic_map_id"`
	StartX       float32 `yaml:"start_x"`
	StartY       float32 `yaml:"start_y"`
	StartRot     float32 `yaml:"start_rot"`
}

type zoneRelationListFile struct {
	Relations []zoneRelationEntry `yaml:"zone_relations"`
}

type zoneRelationEntry struct {
	ZoneID      uint32                  `yaml:"zone_id"`
	Connections []zoneConnectionEntry   `yaml:"connections"`
}

type zoneConnectionEntry struct {
	To     uint32  `yaml:"to"`
	SrcX   float32 `yaml:"src_x"`
	SrcY   float32 `yaml:"src_y"`
	SrcRot float32 `yaml:"src_rot"`
}

// YAMLStore is the concrete Store backing cmd/zonerecon: one loader per
// table, each reading a file, unmarshaling it, and indexing entries by id.
type YAMLStore struct {
	hnpcs     map[int32]*HNPCData
	onpcs     map[int32]*ONPCData
	zones     map[uint32]*ZoneData
	relations map[uint32]*ZoneRelationData
}

// Load reads all four static tables from the given paths. Any load
// failure here is fatal: the caller should abort startup rather than
// degrade gracefully.
func Load(hnpcPath, onpcPath, zonePath, zoneRelationPath string) (*YAMLStore, error) {
	s := &YAMLStore{
		hnpcs:     make(map[int32]*HNPCData),
		onpcs:     make(map[int32]*ONPCData),
		zones:     make(map[uint32]*ZoneData),
		relations: make(map[uint32]*ZoneRelationData),
	}
	if err := s.loadHNPCData(hnpcPath); err != nil {
		return nil, fmt.Errorf("load hnpc data: %w", err)
	}
	if err := s.loadONPCData(onpcPath); err != nil {
		return nil, fmt.Errorf("load onpc data: %w", err)
	}
	if err := s.loadZoneData(zonePath); err != nil {
		return nil, fmt.Errorf("load zone data: %w", err)
	}
	if err := s.loadZoneRelationData(zoneRelationPath); err != nil {
		return nil, fmt.Errorf("load zone relation data: %w", err)
	}
	return s, nil
}

func (s *YAMLStore) loadHNPCData(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f hnpcListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return err
	}
	for _, e := range f.HNPCs {
		e := e
		s.hnpcs[e.ID] = &HNPCData{ID: e.ID, Name: e.Name}
	}
	return nil
}

func (s *YAMLStore) loadONPCData(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f onpcListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return err
	}
	for _, e := range f.ONPCs {
		e := e
		s.onpcs[e.ID] = &ONPCData{ID: e.ID, Name: e.Name}
	}
	return nil
}

func (s *YAMLStore) loadZoneData(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f zoneListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return err
	}
	for _, e := range f.Zones {
		e := e
		s.zones[e.ZoneID] = &ZoneData{
			ZoneID:       e.ZoneID,
			DynamicMapID: e.DynamicMapID,
			StartX:       e.StartX,
			StartY:       e.StartY,
			StartRot:     e.StartRot,
		}
	}
	return nil
}

func (s *YAMLStore) loadZoneRelationData(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f zoneRelationListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return err
	}
	for _, e := range f.Relations {
		rel := &ZoneRelationData{ZoneID: e.ZoneID, Connections: make(map[uint32]ZoneConnection, len(e.Connections))}
		for _, c := range e.Connections {
			rel.Connections[c.To] = ZoneConnection{To: c.To, SrcX: c.SrcX, SrcY: c.SrcY, SrcRot: c.SrcRot}
		}
		s.relations[e.ZoneID] = rel
	}
	return nil
}

func (s *YAMLStore) GetHNPCData(id int32) (*HNPCData, bool) {
	v, ok := s.hnpcs[id]
	return v, ok
}

func (s *YAMLStore) GetONPCData(id int32) (*ONPCData, bool) {
	v, ok := s.onpcs[id]
	return v, ok
}

func (s *YAMLStore) GetZoneData(zoneID uint32) (*ZoneData, bool) {
	v, ok := s.zones[zoneID]
	return v, ok
}

func (s *YAMLStore) GetZoneRelationData(zoneID uint32) (*ZoneRelationData, bool) {
	v, ok := s.relations[zoneID]
	return v, ok
}
