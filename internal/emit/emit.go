// Package emit implements the Emitter: assigns stable, zone-scoped event
// ids to every merged node, substitutes those ids into next/branch edges,
// and decides where each root event attaches.
package emit

import (
	"fmt"
	"sort"

	"github.com/l1jgo/zonerecon/internal/evgraph"
	"github.com/l1jgo/zonerecon/internal/zone"
)

// unknownCondition is the placeholder condition id assigned to any branch
// or connection this repo cannot name a trigger for.
const unknownCondition = "unknown"

// BranchRecord is an alternative continuation under the same response key,
// persisted with a placeholder condition until a human supplies the real
// one.
type BranchRecord struct {
	ConditionID string
	NextID      string
}

// Event is one merged node with its id assigned and every outgoing edge
// resolved to an id string. Non-Prompt kinds use NextID/Branches (a single
// continuation); Prompt attaches one continuation per choice instead.
type Event struct {
	ID   string
	Node *evgraph.EventNode

	NextID   string
	Branches []BranchRecord

	ChoiceNextIDs  []string
	ChoiceBranches [][]BranchRecord
}

// UnmappedEvent is a root event that could not become a StartEvent: it
// has no source entity, its entity cannot be resolved, or that entity's
// action list already holds an action (an earlier root's StartEvent or a
// bound ZoneChange).
type UnmappedEvent struct {
	Event       *Event
	ConditionID string
}

// Result is everything the Emitter produced for one zone, ready for
// internal/xmlout to serialize.
type Result struct {
	ZoneID             uint32
	Events             []*Event // every event, in assigned-id order
	Unmapped           []UnmappedEvent
	UnboundConnections []evgraph.ZoneChangeAction
}

// Zone assigns ids to every node reachable from roots, wires every edge by
// id, attaches each root to its source entity (or files it as unmapped),
// and reports any zone connection nobody ever bound.
func Zone(arena *evgraph.Arena, z *zone.Zone, roots []evgraph.NodeID) *Result {
	order := flatten(arena, roots)

	ids := make(map[evgraph.NodeID]string, len(order))
	counters := make(map[evgraph.Kind]int)
	for _, id := range order {
		n := arena.Get(id)
		counters[n.Kind]++
		ids[id] = fmt.Sprintf("Z%d_%s%03d", z.ID, n.Kind.Prefix(), counters[n.Kind])
	}

	events := make([]*Event, 0, len(order))
	byID := make(map[evgraph.NodeID]*Event, len(order))
	for _, id := range order {
		n := arena.Get(id)
		ev := &Event{ID: ids[id], Node: n}
		if n.Kind == evgraph.KindPrompt {
			ev.ChoiceNextIDs = make([]string, len(n.Prompt.Choices))
			ev.ChoiceBranches = make([][]BranchRecord, len(n.Prompt.Choices))
			for i := range n.Prompt.Choices {
				if nx, ok := n.Next[int32(i)]; ok {
					ev.ChoiceNextIDs[i] = ids[nx]
				}
				ev.ChoiceBranches[i] = branchesFor(ids, n.NextBranch[int32(i)])
			}
		} else {
			if nx, ok := n.Next[0]; ok {
				ev.NextID = ids[nx]
			}
			ev.Branches = branchesFor(ids, n.NextBranch[0])
		}
		events = append(events, ev)
		byID[id] = ev
	}

	result := &Result{ZoneID: z.ID, Events: events}

	for _, r := range roots {
		n := arena.Get(r)
		ev := byID[r]
		if n == nil || ev == nil {
			continue
		}
		attachRoot(z, n, ev, result)
	}

	for _, conn := range z.Connections {
		result.UnboundConnections = append(result.UnboundConnections, conn)
	}

	return result
}

func branchesFor(ids map[evgraph.NodeID]string, branches []evgraph.NodeID) []BranchRecord {
	if len(branches) == 0 {
		return nil
	}
	out := make([]BranchRecord, 0, len(branches))
	for _, b := range branches {
		out = append(out, BranchRecord{ConditionID: unknownCondition, NextID: ids[b]})
	}
	return out
}

// attachRoot resolves a root event's source entity and either claims its
// empty action list with a StartEvent action, or files the root as
// unmapped against the entity's first StartEvent ("unknown" when the
// entity's actions hold no StartEvent or the entity is unresolved).
func attachRoot(z *zone.Zone, n *evgraph.EventNode, ev *Event, result *Result) {
	if !n.Source.Present {
		result.Unmapped = append(result.Unmapped, UnmappedEvent{Event: ev, ConditionID: unknownCondition})
		return
	}
	e, ok := z.FindEntity(n.Source.EntityID, n.Source.X, n.Source.Y, n.Source.Rot)
	if !ok {
		result.Unmapped = append(result.Unmapped, UnmappedEvent{Event: ev, ConditionID: unknownCondition})
		return
	}
	if len(e.Actions) == 0 {
		e.Actions = append(e.Actions, evgraph.StartEventAction{EventID: ev.ID})
		return
	}
	cond := unknownCondition
	for _, a := range e.Actions {
		if s, ok := a.(evgraph.StartEventAction); ok {
			cond = s.EventID
			break
		}
	}
	result.Unmapped = append(result.Unmapped, UnmappedEvent{Event: ev, ConditionID: cond})
}

// flatten walks every root depth-first via Next then NextBranch, in
// sorted key order, assigning discovery order (root chains first) so ids
// are assigned deterministically.
func flatten(arena *evgraph.Arena, roots []evgraph.NodeID) []evgraph.NodeID {
	visited := make(map[evgraph.NodeID]bool)
	var order []evgraph.NodeID
	var walk func(id evgraph.NodeID)
	walk = func(id evgraph.NodeID) {
		if id.IsNil() || visited[id] {
			return
		}
		n := arena.Get(id)
		if n == nil {
			return
		}
		visited[id] = true
		order = append(order, id)
		for _, k := range sortedKeys(n.Next) {
			walk(n.Next[k])
		}
		for _, k := range sortedBranchKeys(n.NextBranch) {
			for _, b := range n.NextBranch[k] {
				walk(b)
			}
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return order
}

func sortedKeys(m map[int32]evgraph.NodeID) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedBranchKeys(m map[int32][]evgraph.NodeID) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
