package merge

import "github.com/l1jgo/zonerecon/internal/evgraph"

// collapseEquivalent scans every pair in order once, merging the later node
// of any flat-equivalent pair into the earlier one (earlier wins priority,
// per flatten's root-chains-first ordering), and reports whether it merged
// anything.
func collapseEquivalent(arena *evgraph.Arena, order []evgraph.NodeID, redirect map[evgraph.NodeID]evgraph.NodeID) bool {
	changed := false
	for i := 0; i < len(order); i++ {
		if !arena.Alive(order[i]) {
			continue
		}
		for k := i + 1; k < len(order); k++ {
			if !arena.Alive(order[k]) || order[i] == order[k] {
				continue
			}
			if !evgraph.Equivalent(arena, order[i], order[k], false) {
				continue
			}
			mergeNodes(arena, order, order[i], order[k], redirect)
			changed = true
		}
	}
	return changed
}

// mergeNodes folds src into dst: src's own edges are migrated into dst
// first (so no branch is silently discarded), every other node's reference
// to src is rewritten to dst, dst's mergeCount absorbs src's observations,
// and src is erased.
func mergeNodes(arena *evgraph.Arena, order []evgraph.NodeID, dst, src evgraph.NodeID, redirect map[evgraph.NodeID]evgraph.NodeID) {
	if dst == src {
		return
	}
	dn := arena.Get(dst)
	sn := arena.Get(src)
	if dn == nil || sn == nil {
		return
	}

	migrateInto(arena, order, redirect, dst, src)

	// dn/sn pointers may have been invalidated by a recursive merge inside
	// migrateInto if it erased and reallocated slot storage; re-fetch.
	dn = arena.Get(dst)
	sn = arena.Get(src)
	if dn == nil || sn == nil {
		return
	}

	rewriteReferences(arena, order, src, dst)
	dn.MergeCount += sn.MergeCount + 1
	redirect[src] = dst
	arena.Erase(src)
}

// migrateInto copies src's Next/NextBranch entries into dst before src is
// erased: entries dst lacks are adopted directly, entries that conflict
// but are themselves flat-equivalent are folded recursively, and anything
// else becomes (or joins) a branch alternative under the same key.
func migrateInto(arena *evgraph.Arena, order []evgraph.NodeID, redirect map[evgraph.NodeID]evgraph.NodeID, dst, src evgraph.NodeID) {
	dn := arena.Get(dst)
	sn := arena.Get(src)
	if dn == nil || sn == nil {
		return
	}

	for key, sVal := range sn.Next {
		dVal, ok := dn.Next[key]
		if !ok {
			dn.Next[key] = sVal
			continue
		}
		if dVal == sVal || sVal == src || sVal == dst {
			// A self- or back-reference to one of the two nodes being
			// merged resolves on its own once rewriteReferences repoints
			// every remaining src reference at dst; recursing here would
			// just re-enter this same merge.
			continue
		}
		if evgraph.Equivalent(arena, dVal, sVal, false) {
			mergeNodes(arena, order, dVal, sVal, redirect)
			dn = arena.Get(dst)
			continue
		}
		if !hasEquivalentBranch(arena, dn.NextBranch[key], sVal) {
			dn.NextBranch[key] = append(dn.NextBranch[key], sVal)
		}
	}

	for key, branches := range sn.NextBranch {
		for _, b := range branches {
			if b == src || b == dst {
				continue
			}
			if !arena.Alive(b) {
				continue
			}
			if nv, ok := dn.Next[key]; ok && nv != b && evgraph.Equivalent(arena, nv, b, false) {
				mergeNodes(arena, order, nv, b, redirect)
				dn = arena.Get(dst)
				continue
			}
			if !hasEquivalentBranch(arena, dn.NextBranch[key], b) {
				dn.NextBranch[key] = append(dn.NextBranch[key], b)
			}
		}
	}
}

func hasEquivalentBranch(arena *evgraph.Arena, branches []evgraph.NodeID, candidate evgraph.NodeID) bool {
	for _, b := range branches {
		if b == candidate || evgraph.Equivalent(arena, b, candidate, false) {
			return true
		}
	}
	return false
}

// rewriteReferences replaces every occurrence of `from` with `to` across
// every still-live node's Next and NextBranch maps.
func rewriteReferences(arena *evgraph.Arena, order []evgraph.NodeID, from, to evgraph.NodeID) {
	for _, id := range order {
		if id == from || !arena.Alive(id) {
			continue
		}
		n := arena.Get(id)
		if n == nil {
			continue
		}
		for key, v := range n.Next {
			if v == from {
				n.Next[key] = to
			}
		}
		for key, branches := range n.NextBranch {
			out := branches[:0]
			for _, b := range branches {
				if b == from {
					b = to
				}
				out = append(out, b)
			}
			n.NextBranch[key] = out
		}
	}
}
