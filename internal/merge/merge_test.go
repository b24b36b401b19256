package merge

import (
	"testing"
	"time"

	"github.com/l1jgo/zonerecon/internal/build"
	"github.com/l1jgo/zonerecon/internal/evgraph"
)

func npcMsgNode(arena *evgraph.Arena, src evgraph.Source, msgID int32) evgraph.NodeID {
	id := arena.NewNPCMessage(src)
	n := arena.Get(id)
	n.NPCMessage.MessageIDs = []int32{msgID}
	n.NPCMessage.Unknowns = []int32{0}
	return id
}

func promptNode(arena *evgraph.Arena, src evgraph.Source, msgID int32, choiceMsgIDs ...int32) evgraph.NodeID {
	id := arena.NewPrompt(src)
	n := arena.Get(id)
	n.Prompt.MessageID = msgID
	for _, c := range choiceMsgIDs {
		n.Prompt.Choices = append(n.Prompt.Choices, evgraph.PromptChoice{MessageID: c})
	}
	return id
}

// TestZoneMergesIdenticalChains checks that two separately-built chains
// with identical payloads collapse into one node whose mergeCount records
// the extra observation.
func TestZoneMergesIdenticalChains(t *testing.T) {
	arena := evgraph.NewArena()
	src := evgraph.Source{Present: true, EntityID: 10}

	root1 := npcMsgNode(arena, src, 42)
	root2 := npcMsgNode(arena, src, 42)

	chains := []build.Chain{{ZoneID: 1, Root: root1}, {ZoneID: 1, Root: root2}}
	roots := Zone(arena, chains)

	if len(roots) != 1 {
		t.Fatalf("expected the two identical chains to collapse to one root, got %d", len(roots))
	}
	n := arena.Get(roots[0])
	if n.MergeCount != 1 {
		t.Errorf("expected mergeCount 1 (two observations, one extra), got %d", n.MergeCount)
	}
}

// TestZonePreservesDistinctBranches checks that a shared Prompt root with
// two runs taking different response keys keeps
// both continuations; a third run re-taking a key with a genuinely
// different outcome records a NextBranch alternative instead of silently
// overwriting it.
func TestZonePreservesDistinctBranches(t *testing.T) {
	arena := evgraph.NewArena()
	src := evgraph.Source{Present: true, EntityID: 10}

	p1 := promptNode(arena, src, 5, 50, 51)
	nm60 := npcMsgNode(arena, src, 60)
	arena.Get(p1).Next[0] = nm60

	p2 := promptNode(arena, src, 5, 50, 51)
	nm61 := npcMsgNode(arena, src, 61)
	arena.Get(p2).Next[1] = nm61

	p3 := promptNode(arena, src, 5, 50, 51)
	nm70 := npcMsgNode(arena, src, 70)
	arena.Get(p3).Next[0] = nm70

	chains := []build.Chain{
		{ZoneID: 1, Root: p1},
		{ZoneID: 1, Root: p2},
		{ZoneID: 1, Root: p3},
	}
	roots := Zone(arena, chains)

	if len(roots) != 1 {
		t.Fatalf("expected all three prompt roots to collapse into one, got %d", len(roots))
	}
	root := arena.Get(roots[0])
	if root.Kind != evgraph.KindPrompt {
		t.Fatalf("expected the surviving root to be a Prompt node, got %+v", root)
	}

	next0, ok := root.Next[0]
	if !ok {
		t.Fatal("expected response key 0 to still be wired")
	}
	next1, ok := root.Next[1]
	if !ok {
		t.Fatal("expected response key 1 to still be wired")
	}
	if !arena.Alive(next0) || !arena.Alive(next1) {
		t.Fatal("expected both canonical continuations to still be live")
	}

	branches := root.NextBranch[0]
	if len(branches) != 1 {
		t.Fatalf("expected exactly one alternative branch under key 0, got %d", len(branches))
	}
	if !arena.Alive(branches[0]) {
		t.Error("expected the alternative branch node to still be live")
	}
}

// TestZoneTerminatesOnSelfLoop checks that a node whose own continuation
// loops back to itself does not send the merge pass into infinite
// recursion, and that the loop survives the collapse.
func TestZoneTerminatesOnSelfLoop(t *testing.T) {
	arena := evgraph.NewArena()
	src := evgraph.Source{Present: true, EntityID: 10}

	p1 := promptNode(arena, src, 9, 90)
	arena.Get(p1).Next[0] = p1 // direct self-loop

	p2 := promptNode(arena, src, 9, 90)
	arena.Get(p2).Next[0] = p2 // an independently observed, equivalent self-loop

	done := make(chan []evgraph.NodeID, 1)
	go func() {
		chains := []build.Chain{{ZoneID: 1, Root: p1}, {ZoneID: 1, Root: p2}}
		done <- Zone(arena, chains)
	}()

	select {
	case roots := <-done:
		if len(roots) != 1 {
			t.Fatalf("expected the two looping prompts to collapse to one root, got %d", len(roots))
		}
		n := arena.Get(roots[0])
		if n.Next[0] != roots[0] {
			t.Errorf("expected the self-loop to still point at the surviving root, got %v (root %v)", n.Next[0], roots[0])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Zone did not terminate on a self-looping graph")
	}
}
