package record

import (
	"bytes"
	"fmt"
)

// TerminatedString validates a length-prefixed string field and strips its
// terminator. The record layouts prefix each string with a length that
// counts the trailing zero byte, so raw must be non-empty, end with a zero
// byte, and contain no zero byte before the final one.
func TerminatedString(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: zero-length string field", ErrMalformedRecord)
	}
	if raw[len(raw)-1] != 0 {
		return "", fmt.Errorf("%w: string field missing terminator", ErrMalformedRecord)
	}
	text := raw[:len(raw)-1]
	if bytes.IndexByte(text, 0) >= 0 {
		return "", fmt.Errorf("%w: embedded zero byte in string field", ErrMalformedRecord)
	}
	return string(text), nil
}

// TerminatedStringSize returns the wire size of s under the layout above.
func TerminatedStringSize(s string) int {
	return len(s) + 1
}
