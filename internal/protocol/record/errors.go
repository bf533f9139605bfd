package record

import "errors"

var (
	// ErrMalformedRecord covers any length or field inconsistency: short
	// buffer, missing or misplaced terminator, self-described length
	// mismatch. Terminal for the record; the cursor position afterwards
	// is unspecified, so callers discard the stream rather than resync.
	ErrMalformedRecord = errors.New("record: malformed record")

	// ErrUnknownEnumValue reports a tag field outside the known set.
	// Distinct from ErrMalformedRecord so callers can tell peer version
	// skew apart from corruption.
	ErrUnknownEnumValue = errors.New("record: unknown enum value")
)
