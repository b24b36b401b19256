package decode

import "fmt"

// ErrBadLength is the decode-fatal error per spec: a packet body whose size
// disagrees with the §6 wire-format table. The pipeline abandons the
// offending capture and drops its event chains; Zone Registry changes
// made by the capture's earlier packets remain.
type ErrBadLength struct {
	Opcode   byte
	Name     string
	Expected string // human-readable constraint, e.g. "== 24" or ">= 4"
	Actual   int
}

func (e *ErrBadLength) Error() string {
	return fmt.Sprintf("decode: %s (opcode 0x%02x): body size %d violates %s", e.Name, e.Opcode, e.Actual, e.Expected)
}

func badLength(opcode byte, name, expected string, actual int) error {
	return &ErrBadLength{Opcode: opcode, Name: name, Expected: expected, Actual: actual}
}
