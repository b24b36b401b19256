// Package xmlout is the XML serializer: a narrow interface plus a
// standard-library-backed default implementation, invoked once per zone
// at the end of the pipeline.
package xmlout

import (
	"encoding/xml"
	"io"
)

// ZoneWriter persists the two documents one zone produces. No example repo
// in the retrieval pack imports a third-party XML library, so the default
// Encoder below is grounded on the standard library's encoding/xml.
type ZoneWriter interface {
	WriteZone(w io.Writer, z ZoneDocument) error
	WriteEvents(w io.Writer, e EventsDocument) error
}

// Encoder is the default ZoneWriter, serializing with xml.MarshalIndent.
type Encoder struct{}

func NewEncoder() Encoder { return Encoder{} }

func (Encoder) WriteZone(w io.Writer, z ZoneDocument) error {
	return encode(w, z)
}

func (Encoder) WriteEvents(w io.Writer, e EventsDocument) error {
	return encode(w, e)
}

func encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ZoneDocument is zone-<zoneId>.xml: the Zone aggregate.
type ZoneDocument struct {
	XMLName xml.Name   `xml:"zone"`
	ID      uint32      `xml:"id,attr"`
	NPCs    []NPC       `xml:"npcs>npc"`
	Objects []Object    `xml:"objects>object"`
	Bazaars []Bazaar    `xml:"bazaars>bazaar"`
	Spots   []Spot      `xml:"spots>spot"`
}

// NameComment renders as an XML comment written as the first child inside
// the element it annotates (encoding/xml emits comment fields as element
// content); it is not placed before the element's start tag.
type NPC struct {
	NameComment xml.Comment `xml:",comment"`
	TemplateID  int32       `xml:"templateId,attr"`
	X           int32       `xml:"x,attr"`
	Y           int32       `xml:"y,attr"`
	Rot         int32       `xml:"rot,attr"`
	Actions     []ActionXML `xml:"action,omitempty"`
}

type Object struct {
	NameComment xml.Comment `xml:",comment"`
	TemplateID  int32       `xml:"templateId,attr"`
	X           int32       `xml:"x,attr"`
	Y           int32       `xml:"y,attr"`
	Rot         int32       `xml:"rot,attr"`
	State       uint8       `xml:"state,attr"`
	Actions     []ActionXML `xml:"action,omitempty"`
}

type Bazaar struct {
	X       int32    `xml:"x,attr"`
	Y       int32    `xml:"y,attr"`
	Rot     int32    `xml:"rot,attr"`
	Markets []uint32 `xml:"market"`
}

// Spot is a zone-local trigger point; ConditionID is "unknown" for any
// connection the Event Builder never saw a trigger bind to.
type Spot struct {
	ID          uint32      `xml:"id,attr"`
	ConditionID string      `xml:"conditionId,attr,omitempty"`
	Actions     []ActionXML `xml:"action,omitempty"`
}

// ActionXML is the persisted form of an evgraph.Action: one element with a
// kind attribute and whichever fields that kind carries, left as loose
// attributes rather than one struct type per action (the action set is
// closed and small; this keeps the serializer from needing a type switch
// of its own beyond the one already in internal/xmlout/convert.go).
type ActionXML struct {
	Kind    string `xml:"kind,attr"`
	Field1  string `xml:"f1,attr,omitempty"`
	Field2  string `xml:"f2,attr,omitempty"`
	Field3  string `xml:"f3,attr,omitempty"`
	Field4  string `xml:"f4,attr,omitempty"`
	Field5  string `xml:"f5,attr,omitempty"`
}

// EventsDocument is zone_events-<zoneId>.xml: root <objects> of mapped
// events plus an <unmapped> subtree for orphans.
type EventsDocument struct {
	XMLName  xml.Name      `xml:"objects"`
	ZoneID   uint32        `xml:"zoneId,attr"`
	Events   []EventXML    `xml:"event"`
	Unmapped []UnmappedXML `xml:"unmapped>event"`
}

type EventXML struct {
	ID       string         `xml:"id,attr"`
	Kind     string         `xml:"kind,attr"`
	Messages []int32        `xml:"message,omitempty"`
	NextID   string         `xml:"nextId,attr,omitempty"`
	Branches []BranchXML    `xml:"branch,omitempty"`
	Choices  []ChoiceXML    `xml:"choice,omitempty"`
	Actions  []ActionXML    `xml:"action,omitempty"`
}

type ChoiceXML struct {
	MessageID int32       `xml:"messageId,attr"`
	NextID    string      `xml:"nextId,attr,omitempty"`
	Branches  []BranchXML `xml:"branch,omitempty"`
}

type BranchXML struct {
	ConditionID string `xml:"conditionId,attr"`
	NextID      string `xml:"nextId,attr"`
}

type UnmappedXML struct {
	ConditionID string   `xml:"conditionId,attr"`
	Event       EventXML `xml:"event"`
}
