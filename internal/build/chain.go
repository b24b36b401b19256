package build

import "github.com/l1jgo/zonerecon/internal/evgraph"

// Chain is one completed per-visit dialogue chain: the root EventNode a
// trigger produced, scoped to one zone. Package merge flattens every
// Chain for a zone (root chains first) before running its fixed-point
// collapse passes.
type Chain struct {
	ZoneID uint32
	Root   evgraph.NodeID
}
