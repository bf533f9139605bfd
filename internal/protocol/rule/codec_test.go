package rule

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/tracectl/internal/protocol/payload"
	"github.com/danmuck/tracectl/internal/protocol/record"
	"github.com/danmuck/tracectl/internal/testutil/testlog"
)

func encodeRule(t *testing.T, r *Syscall) []byte {
	t.Helper()
	buf := payload.NewBuffer(0)
	if err := r.EncodeTo(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf.Len() != r.WireSize() {
		t.Fatalf("wire size mismatch: encoded %d, WireSize %d", buf.Len(), r.WireSize())
	}
	return buf.Bytes()
}

func TestSyscallRoundTrip(t *testing.T) {
	testlog.Start(t)
	in := &Syscall{Site: EmissionSiteEntryExit, Pattern: "read*"}
	in.SetFilter("count > 4096")

	wire := encodeRule(t, in)
	out, consumed, err := DecodeSyscall(payload.NewView(wire))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != len(wire) {
		t.Fatalf("consumed %d of %d bytes", consumed, len(wire))
	}
	if !out.Equal(in) {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", out, in)
	}
}

func TestSyscallEntryOpenNoFilterWireBytes(t *testing.T) {
	testlog.Start(t)
	in := &Syscall{Site: EmissionSiteEntry, Pattern: "open*"}

	wire := encodeRule(t, in)
	want := []byte{
		0, 0, 0, 0, // entry
		0, 0, 0, 6, // "open*" + terminator
		0, 0, 0, 1, // absent filter: lone terminator
		'o', 'p', 'e', 'n', '*', 0,
		0,
	}
	if !bytes.Equal(wire, want) {
		t.Fatalf("wire bytes mismatch:\n got=%v\nwant=%v", wire, want)
	}

	out, consumed, err := DecodeSyscall(payload.NewView(wire))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != 19 {
		t.Fatalf("expected 19 bytes consumed, got %d", consumed)
	}
	if !out.Equal(in) {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", out, in)
	}
}

func TestSyscallAbsentFilterStaysAbsent(t *testing.T) {
	testlog.Start(t)
	in := &Syscall{Site: EmissionSiteExit, Pattern: "close"}

	out, _, err := DecodeSyscall(payload.NewView(encodeRule(t, in)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.HasFilter() {
		t.Fatalf("expected absent filter, got %q", out.FilterExpression)
	}
}

func TestSyscallLengthSelfConsistency(t *testing.T) {
	testlog.Start(t)
	in := &Syscall{Site: EmissionSiteEntry, Pattern: "openat", FilterExpression: "flags == 0"}
	wire := encodeRule(t, in)

	_, consumed, err := DecodeSyscall(payload.NewView(wire))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != len(wire) {
		t.Fatalf("consumed %d of %d bytes", consumed, len(wire))
	}

	// A view over exactly the consumed bytes must decode identically.
	again, n, err := DecodeSyscall(payload.NewView(wire[:consumed]))
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if n != consumed || !again.Equal(in) {
		t.Fatalf("re-decode mismatch: n=%d rule=%+v", n, again)
	}
}

func TestSyscallTruncationSafety(t *testing.T) {
	testlog.Start(t)
	in := &Syscall{Site: EmissionSiteEntry, Pattern: "open*", FilterExpression: "ret >= 0"}
	wire := encodeRule(t, in)

	for cut := 1; cut <= len(wire); cut++ {
		_, _, err := DecodeSyscall(payload.NewView(wire[:len(wire)-cut]))
		if err == nil {
			t.Fatalf("truncation by %d bytes decoded successfully", cut)
		}
		if !errors.Is(err, record.ErrMalformedRecord) && !errors.Is(err, record.ErrUnknownEnumValue) {
			t.Fatalf("truncation by %d bytes: unexpected error %v", cut, err)
		}
	}
}

func TestSyscallUnknownEmissionSite(t *testing.T) {
	testlog.Start(t)
	wire := encodeRule(t, &Syscall{Site: EmissionSiteEntry, Pattern: "open"})
	wire[3] = 99

	_, _, err := DecodeSyscall(payload.NewView(wire))
	if !errors.Is(err, record.ErrUnknownEnumValue) {
		t.Fatalf("expected ErrUnknownEnumValue, got %v", err)
	}
}

func TestSyscallZeroPatternLengthIsMalformed(t *testing.T) {
	testlog.Start(t)
	wire := []byte{
		0, 0, 0, 0,
		0, 0, 0, 0, // pattern_len = 0
		0, 0, 0, 1,
		0,
	}
	_, _, err := DecodeSyscall(payload.NewView(wire))
	if !errors.Is(err, record.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestSyscallZeroFilterLengthIsMalformed(t *testing.T) {
	testlog.Start(t)
	wire := []byte{
		0, 0, 0, 0,
		0, 0, 0, 2,
		0, 0, 0, 0, // filter_len = 0: the length always counts a terminator
		'a', 0,
	}
	_, _, err := DecodeSyscall(payload.NewView(wire))
	if !errors.Is(err, record.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestSyscallMissingTerminatorIsMalformed(t *testing.T) {
	testlog.Start(t)
	wire := encodeRule(t, &Syscall{Site: EmissionSiteEntry, Pattern: "open"})
	// Overwrite the pattern terminator with a printable byte.
	wire[12+4] = 'x'

	_, _, err := DecodeSyscall(payload.NewView(wire))
	if !errors.Is(err, record.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestSyscallEmbeddedZeroByteIsMalformed(t *testing.T) {
	testlog.Start(t)
	wire := encodeRule(t, &Syscall{Site: EmissionSiteEntry, Pattern: "open"})
	// Zero byte inside the claimed pattern text.
	wire[12+1] = 0

	_, _, err := DecodeSyscall(payload.NewView(wire))
	if !errors.Is(err, record.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestCompiledSyscallBytecodeNeverEncoded(t *testing.T) {
	testlog.Start(t)
	compiled := CompiledSyscall{
		Rule:     Syscall{Site: EmissionSiteEntry, Pattern: "open*", FilterExpression: "fd == 1"},
		Bytecode: []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}

	wire := encodeRule(t, &compiled.Rule)
	if bytes.Contains(wire, compiled.Bytecode) {
		t.Fatalf("bytecode leaked onto the wire")
	}
	if len(wire) != compiled.Rule.WireSize() {
		t.Fatalf("wire size includes local-only state")
	}
}
