package build

import "github.com/l1jgo/zonerecon/internal/evgraph"

// backMerge implements loop detection: once the chain is at
// least 3 nodes deep, walk backwards from the current node's
// grand-predecessor looking for a structural match with the freshly wired
// node. On a match, rewire the edge that pointed at the new node to point
// at the ancestor instead, fold mergeCount, erase the new node, and
// continue the chain from the ancestor.
func backMerge(arena *evgraph.Arena, last, current evgraph.NodeID) evgraph.NodeID {
	if last.IsNil() {
		return current
	}
	lastNode := arena.Get(last)
	if lastNode == nil {
		return current
	}
	ancestor := lastNode.Previous
	for !ancestor.IsNil() {
		if ancestor == current {
			break
		}
		if evgraph.Equivalent(arena, ancestor, current, false) {
			for k, v := range lastNode.Next {
				if v == current {
					lastNode.Next[k] = ancestor
				}
			}
			for k, branches := range lastNode.NextBranch {
				for i, v := range branches {
					if v == current {
						lastNode.NextBranch[k][i] = ancestor
					}
				}
			}
			an := arena.Get(ancestor)
			cn := arena.Get(current)
			if an != nil && cn != nil {
				an.MergeCount += cn.MergeCount + 1
			}
			arena.Erase(current)
			return ancestor
		}
		anNode := arena.Get(ancestor)
		if anNode == nil {
			break
		}
		ancestor = anNode.Previous
	}
	return current
}
