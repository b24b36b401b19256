// dumpzone prints a zone_events-<id>.xml file as an indented tree, walking
// nextId/branch/choice references starting from every root event (an event
// no other event points at).
package main

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
)

type eventsDoc struct {
	ZoneID   uint32        `xml:"zoneId,attr"`
	Events   []eventXML    `xml:"event"`
	Unmapped []unmappedXML `xml:"unmapped>event"`
}

type eventXML struct {
	ID       string      `xml:"id,attr"`
	Kind     string      `xml:"kind,attr"`
	Messages []int32     `xml:"message"`
	NextID   string      `xml:"nextId,attr"`
	Branches []branchXML `xml:"branch"`
	Choices  []choiceXML `xml:"choice"`
}

type choiceXML struct {
	MessageID int32       `xml:"messageId,attr"`
	NextID    string      `xml:"nextId,attr"`
	Branches  []branchXML `xml:"branch"`
}

type branchXML struct {
	ConditionID string `xml:"conditionId,attr"`
	NextID      string `xml:"nextId,attr"`
}

type unmappedXML struct {
	ConditionID string   `xml:"conditionId,attr"`
	Event       eventXML `xml:"event"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: dumpzone <zone_events-N.xml>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var doc eventsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		fmt.Fprintln(os.Stderr, "parse:", err)
		os.Exit(1)
	}

	byID := make(map[string]eventXML, len(doc.Events))
	referenced := make(map[string]bool, len(doc.Events))
	for _, ev := range doc.Events {
		byID[ev.ID] = ev
	}
	for _, ev := range doc.Events {
		for _, id := range outgoing(ev) {
			referenced[id] = true
		}
	}

	var roots []string
	for _, ev := range doc.Events {
		if !referenced[ev.ID] {
			roots = append(roots, ev.ID)
		}
	}
	sort.Strings(roots)

	fmt.Printf("zone %d: %d events, %d root(s), %d unmapped\n\n", doc.ZoneID, len(doc.Events), len(roots), len(doc.Unmapped))

	seen := make(map[string]bool)
	for _, id := range roots {
		printTree(byID, id, 0, seen)
	}

	if len(doc.Unmapped) > 0 {
		fmt.Println("\nunmapped:")
		for _, u := range doc.Unmapped {
			fmt.Printf("  [%s] condition=%s\n", u.Event.ID, u.ConditionID)
			printTree(byID, u.Event.ID, 2, seen)
		}
	}
}

func outgoing(ev eventXML) []string {
	var ids []string
	if ev.NextID != "" {
		ids = append(ids, ev.NextID)
	}
	for _, b := range ev.Branches {
		if b.NextID != "" {
			ids = append(ids, b.NextID)
		}
	}
	for _, c := range ev.Choices {
		if c.NextID != "" {
			ids = append(ids, c.NextID)
		}
		for _, b := range c.Branches {
			if b.NextID != "" {
				ids = append(ids, b.NextID)
			}
		}
	}
	return ids
}

func printTree(byID map[string]eventXML, id string, depth int, seen map[string]bool) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	ev, ok := byID[id]
	if !ok {
		fmt.Printf("%s%s (unresolved)\n", indent, id)
		return
	}
	if seen[id] {
		fmt.Printf("%s%s [%s] (visited)\n", indent, id, ev.Kind)
		return
	}
	seen[id] = true

	fmt.Printf("%s%s [%s]", indent, id, ev.Kind)
	if len(ev.Messages) > 0 {
		fmt.Printf(" messages=%v", ev.Messages)
	}
	fmt.Println()

	if ev.NextID != "" {
		printTree(byID, ev.NextID, depth+1, seen)
	}
	for _, b := range ev.Branches {
		fmt.Printf("%s  branch %s:\n", indent, b.ConditionID)
		printTree(byID, b.NextID, depth+2, seen)
	}
	for i, c := range ev.Choices {
		fmt.Printf("%s  choice %d (message=%d):\n", indent, i, c.MessageID)
		if c.NextID != "" {
			printTree(byID, c.NextID, depth+2, seen)
		}
		for _, b := range c.Branches {
			fmt.Printf("%s    branch %s:\n", indent, b.ConditionID)
			printTree(byID, b.NextID, depth+3, seen)
		}
	}
}
