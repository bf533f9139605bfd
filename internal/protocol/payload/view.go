package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrShortView = errors.New("payload: short view")

// View is a bounds-checked sequential reader over an immutable byte range.
// It borrows the underlying slice for the duration of one decode; callers
// must not mutate the slice while a View over it is in use.
type View struct {
	data []byte
	off  int
}

// NewView wraps data in a cursor positioned at its first byte.
func NewView(data []byte) *View {
	return &View{data: data}
}

// Remaining returns the number of unread bytes.
func (v *View) Remaining() int {
	return len(v.data) - v.off
}

// Consumed returns the number of bytes read so far.
func (v *View) Consumed() int {
	return v.off
}

// Bytes takes the next n bytes as a fresh copy.
func (v *View) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative take %d", ErrShortView, n)
	}
	if v.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortView, n, v.Remaining())
	}
	out := make([]byte, n)
	copy(out, v.data[v.off:v.off+n])
	v.off += n
	return out, nil
}

// Uint32 takes the next 4 bytes as a big-endian unsigned integer.
func (v *View) Uint32() (uint32, error) {
	if v.Remaining() < 4 {
		return 0, fmt.Errorf("%w: need 4 bytes, have %d", ErrShortView, v.Remaining())
	}
	val := binary.BigEndian.Uint32(v.data[v.off : v.off+4])
	v.off += 4
	return val, nil
}

// Uint64 takes the next 8 bytes as a big-endian unsigned integer.
func (v *View) Uint64() (uint64, error) {
	if v.Remaining() < 8 {
		return 0, fmt.Errorf("%w: need 8 bytes, have %d", ErrShortView, v.Remaining())
	}
	val := binary.BigEndian.Uint64(v.data[v.off : v.off+8])
	v.off += 8
	return val, nil
}
