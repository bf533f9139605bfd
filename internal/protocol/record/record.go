package record

import (
	"github.com/danmuck/tracectl/internal/protocol/payload"
)

// Kind identifies one control-record variant on the wire. The envelope
// carries it so the receiving side can dispatch to the matching decoder.
type Kind uint16

const (
	KindSyscallRule    Kind = 1
	KindSnapshotOutput Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindSyscallRule:
		return "syscall-rule"
	case KindSnapshotOutput:
		return "snapshot-output"
	default:
		return "unknown"
	}
}

// Record is one control object that can cross the client/daemon boundary.
//
// WireSize returns the exact byte count EncodeTo will append, so callers
// can preallocate or batch heterogeneous records into one sink. EncodeTo
// never mutates the record and never emits derived local-only state.
type Record interface {
	Kind() Kind
	WireSize() int
	EncodeTo(buf *payload.Buffer) error
}
