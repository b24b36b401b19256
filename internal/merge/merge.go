// Package merge implements the Graph Merger: a fixed-point structural
// collapse, run once per zone over every chain the Event Builder produced
// across every capture touching that zone.
package merge

import (
	"sort"

	"github.com/l1jgo/zonerecon/internal/build"
	"github.com/l1jgo/zonerecon/internal/evgraph"
)

// Zone flattens every chain depth-first (root chains first, so they win
// priority), repeatedly collapses flat-equivalent nodes and canonicalizes
// branch alternatives until a full pass produces no erasure, then returns
// the surviving root nodes sorted by (source entity id, descending
// mergeCount) for stable emission.
func Zone(arena *evgraph.Arena, chains []build.Chain) []evgraph.NodeID {
	redirect := make(map[evgraph.NodeID]evgraph.NodeID)
	order := flatten(arena, chains)

	for {
		changed := collapseEquivalent(arena, order, redirect)
		if canonicalizeBranches(arena, order) {
			changed = true
		}
		if !changed {
			break
		}
	}

	resolve := func(id evgraph.NodeID) evgraph.NodeID {
		for {
			r, ok := redirect[id]
			if !ok {
				return id
			}
			id = r
		}
	}

	seen := make(map[evgraph.NodeID]bool)
	var roots []evgraph.NodeID
	for _, c := range chains {
		r := resolve(c.Root)
		if arena.Get(r) == nil || seen[r] {
			continue
		}
		seen[r] = true
		roots = append(roots, r)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		ni, nj := arena.Get(roots[i]), arena.Get(roots[j])
		if ni.Source.EntityID != nj.Source.EntityID {
			return ni.Source.EntityID < nj.Source.EntityID
		}
		return ni.MergeCount > nj.MergeCount
	})
	return roots
}

// flatten walks every chain depth-first via Next then NextBranch, in
// sorted key order for determinism, collecting every reachable node once
// (root chains first, in the order they were produced, so they win
// priority in the collapse pass below).
func flatten(arena *evgraph.Arena, chains []build.Chain) []evgraph.NodeID {
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
		for _, k := range sortedInt32Keys(n.Next) {
			walk(n.Next[k])
		}
		for _, k := range sortedInt32Keys32(n.NextBranch) {
			for _, b := range n.NextBranch[k] {
				walk(b)
			}
		}
	}
	for _, c := range chains {
		walk(c.Root)
	}
	return order
}

func sortedInt32Keys(m map[int32]evgraph.NodeID) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedInt32Keys32(m map[int32][]evgraph.NodeID) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
