package rule

import (
	"fmt"

	"github.com/danmuck/tracectl/internal/protocol/payload"
	"github.com/danmuck/tracectl/internal/protocol/record"
)

// Wire layout: u32 emission site, u32 pattern length, u32 filter
// expression length, then the pattern and filter expression bytes, each
// zero-terminated. Both lengths count the terminator. A filter length of
// exactly 1 (a lone terminator) means the filter is absent; length 0 is
// malformed. The pattern can never be absent, so its minimum length is 2.
const headerSize = 12

func (r *Syscall) Kind() record.Kind {
	return record.KindSyscallRule
}

// WireSize returns the exact encoded size of the rule.
func (r *Syscall) WireSize() int {
	return headerSize +
		record.TerminatedStringSize(r.Pattern) +
		record.TerminatedStringSize(r.FilterExpression)
}

// EncodeTo appends the rule's wire representation to buf. An absent
// filter expression encodes as a single terminator byte.
func (r *Syscall) EncodeTo(buf *payload.Buffer) error {
	if err := buf.AppendUint32(uint32(r.Site)); err != nil {
		return err
	}
	if err := buf.AppendUint32(uint32(record.TerminatedStringSize(r.Pattern))); err != nil {
		return err
	}
	if err := buf.AppendUint32(uint32(record.TerminatedStringSize(r.FilterExpression))); err != nil {
		return err
	}
	if err := buf.AppendTerminatedString(r.Pattern); err != nil {
		return err
	}
	return buf.AppendTerminatedString(r.FilterExpression)
}

// DecodeSyscall consumes exactly one syscall rule record from view and
// returns it with the number of bytes consumed. On failure no rule is
// returned and the view position is unspecified.
func DecodeSyscall(view *payload.View) (*Syscall, int, error) {
	rawSite, err := view.Uint32()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: emission site: %v", record.ErrMalformedRecord, err)
	}
	site := EmissionSite(rawSite)
	if !site.valid() {
		return nil, 0, fmt.Errorf("%w: emission site %d", record.ErrUnknownEnumValue, rawSite)
	}

	patternLen, err := view.Uint32()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: pattern length: %v", record.ErrMalformedRecord, err)
	}
	filterLen, err := view.Uint32()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: filter length: %v", record.ErrMalformedRecord, err)
	}
	if patternLen == 0 {
		return nil, 0, fmt.Errorf("%w: zero pattern length", record.ErrMalformedRecord)
	}
	if filterLen == 0 {
		return nil, 0, fmt.Errorf("%w: zero filter length", record.ErrMalformedRecord)
	}

	rawPattern, err := view.Bytes(int(patternLen))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: pattern: %v", record.ErrMalformedRecord, err)
	}
	pattern, err := record.TerminatedString(rawPattern)
	if err != nil {
		return nil, 0, fmt.Errorf("pattern: %w", err)
	}
	if pattern == "" {
		return nil, 0, fmt.Errorf("%w: empty pattern", record.ErrMalformedRecord)
	}

	rawFilter, err := view.Bytes(int(filterLen))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: filter expression: %v", record.ErrMalformedRecord, err)
	}
	filter, err := record.TerminatedString(rawFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("filter expression: %w", err)
	}

	r := &Syscall{Site: site, Pattern: pattern, FilterExpression: filter}
	consumed := headerSize + int(patternLen) + int(filterLen)
	return r, consumed, nil
}
