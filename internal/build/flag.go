package build

import (
	"github.com/l1jgo/zonerecon/internal/decode"
	"github.com/l1jgo/zonerecon/internal/evgraph"
)

// onFlag implements flag diffing: XOR the new bitmap against
// the shadow, emit one UpdateFlag action per changed bit (remove=true for
// cleared bits), forbid MAP-flag clears, then replace the shadow.
func (b *Builder) onFlag(r decode.FlagRecord) {
	if b.cur == nil {
		return
	}
	old := b.cur.FlagShadow[r.Kind]
	flagType := flagTypeFor(r.Kind)

	n := len(r.Bitmap)
	if len(old) > n {
		n = len(old)
	}
	for i := 0; i < n; i++ {
		var ob, nb byte
		if i < len(old) {
			ob = old[i]
		}
		if i < len(r.Bitmap) {
			nb = r.Bitmap[i]
		}
		diff := ob ^ nb
		if diff == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			mask := byte(1) << uint(bit)
			if diff&mask == 0 {
				continue
			}
			id := uint16(i*8 + bit)
			removed := ob&mask != 0 && nb&mask == 0
			if removed && r.Kind == decode.FlagKindMap {
				b.cur.MarkInvalid() // MAP-flag clears are forbidden
				continue
			}
			b.appendAction(evgraph.UpdateFlagAction{FlagType: flagType, ID: id, Remove: removed})
		}
	}
	shadow := make([]byte, len(r.Bitmap))
	copy(shadow, r.Bitmap)
	b.cur.FlagShadow[r.Kind] = shadow
}

func flagTypeFor(k decode.FlagKind) evgraph.FlagType {
	switch k {
	case decode.FlagKindMap:
		return evgraph.FlagMap
	case decode.FlagKindUnion:
		return evgraph.FlagUnion
	default:
		return evgraph.FlagValuable
	}
}

// onLNCPoints emits an UpdateLNC action carrying only the delta, and only
// when the value actually changed.
func (b *Builder) onLNCPoints(r decode.LNCPointsRecord) {
	if b.cur == nil {
		return
	}
	if r.Delta == b.cur.LNCShadow {
		return
	}
	delta := r.Delta - b.cur.LNCShadow
	b.cur.LNCShadow = r.Delta
	b.appendAction(evgraph.UpdateLNCAction{Value: delta})
}
