package merge

import (
	"sort"

	"github.com/l1jgo/zonerecon/internal/evgraph"
)

// canonicalizeBranches, for every surviving node and every response key it
// has seen, collects the current Next target plus every NextBranch
// alternative under that key, folds any of those that are themselves
// flat-equivalent into one another, then promotes the most-observed
// survivor to Next and demotes the rest to NextBranch. Reports whether
// anything changed.
func canonicalizeBranches(arena *evgraph.Arena, order []evgraph.NodeID) bool {
	changed := false
	redirect := make(map[evgraph.NodeID]evgraph.NodeID)

	for _, id := range order {
		if !arena.Alive(id) {
			continue
		}
		n := arena.Get(id)
		keys := make(map[int32]bool)
		for k := range n.Next {
			keys[k] = true
		}
		for k := range n.NextBranch {
			keys[k] = true
		}

		for key := range keys {
			n := arena.Get(id) // re-fetch: earlier keys in this loop may have erased/moved nodes
			var candidates []evgraph.NodeID
			if v, ok := n.Next[key]; ok && arena.Alive(v) {
				candidates = append(candidates, v)
			}
			for _, b := range n.NextBranch[key] {
				if arena.Alive(b) {
					candidates = append(candidates, b)
				}
			}
			if len(candidates) == 0 {
				continue
			}

			deduped := dedupeCandidates(arena, order, candidates, redirect)
			if len(deduped) != len(candidates) {
				changed = true
			}

			sort.SliceStable(deduped, func(a, b int) bool {
				na, nb := arena.Get(deduped[a]), arena.Get(deduped[b])
				return na.MergeCount > nb.MergeCount
			})

			if len(deduped) == 0 {
				continue
			}
			if cur, ok := n.Next[key]; !ok || cur != deduped[0] {
				n.Next[key] = deduped[0]
				changed = true
			}
			rest := deduped[1:]
			if len(rest) == 0 {
				delete(n.NextBranch, key)
			} else {
				n.NextBranch[key] = rest
			}
		}
	}
	return changed
}

// dedupeCandidates merges any pairwise flat-equivalent candidates in place
// (earlier entries win) and returns the surviving, distinct node ids.
func dedupeCandidates(arena *evgraph.Arena, order []evgraph.NodeID, candidates []evgraph.NodeID, redirect map[evgraph.NodeID]evgraph.NodeID) []evgraph.NodeID {
	var out []evgraph.NodeID
	for _, c := range candidates {
		if !arena.Alive(c) {
			continue
		}
		dup := false
		for i, o := range out {
			if o == c {
				dup = true
				break
			}
			if evgraph.Equivalent(arena, o, c, false) {
				mergeNodes(arena, order, o, c, redirect)
				out[i] = o
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}
