// Package decode turns a framed capture packet into a tagged semantic
// Record. Every decode function is pure and stateless: it only validates the
// body length and pulls fields out in wire order.
package decode

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/japanese"
)

// Reader reads little-endian fields from a packet body (the opcode byte has
// already been stripped by the capture layer; see internal/capture.Frame).
type Reader struct {
	data []byte
	off  int
}

func NewReader(body []byte) *Reader {
	return &Reader{data: body}
}

// Len reports the number of bytes in the body, matching §6's "body size"
// table exactly (it does not count the opcode byte).
func (r *Reader) Len() int { return len(r.data) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) U8() uint8 {
	v := r.data[r.off]
	r.off++
	return v
}

func (r *Reader) S8() int8 { return int8(r.U8()) }

func (r *Reader) U16() uint16 {
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *Reader) S16() int16 { return int16(r.U16()) }

func (r *Reader) U32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *Reader) S32() int32 { return int32(r.U32()) }

func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

func (r *Reader) Skip(n int) {
	r.off += n
}

func (r *Reader) Bytes(n int) []byte {
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}

// String reads a u16-prefixed CP932 (Shift-JIS) string, generalizing the
// teacher's ReadS/ms950ToUTF8 (MS950/Big5) pattern to this domain's wire
// encoding: an ASCII-only payload takes the same fast path that skips the
// decoder entirely.
func (r *Reader) String() string {
	n := int(r.U16())
	raw := r.Bytes(n)
	return cp932ToUTF8(raw)
}

func cp932ToUTF8(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	allASCII := true
	for _, b := range raw {
		if b >= 0x80 {
			allASCII = false
			break
		}
	}
	if allASCII {
		return string(raw)
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
