package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DefaultSinkLimit bounds buffer growth when no explicit limit is given.
const DefaultSinkLimit = 8 * 1024 * 1024

var ErrSinkLimit = errors.New("payload: sink limit exceeded")

// Buffer is an appendable byte sink with a hard growth limit. Encoders
// write records into it; the transport layer owns draining it.
type Buffer struct {
	data  []byte
	limit int
}

// NewBuffer creates an empty sink that refuses to grow past limit bytes.
// A non-positive limit selects DefaultSinkLimit.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultSinkLimit
	}
	return &Buffer{limit: limit}
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the accumulated bytes. The slice is owned by the buffer
// and valid until the next append.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) grow(n int) error {
	if len(b.data)+n > b.limit {
		return fmt.Errorf("%w: %d+%d > %d", ErrSinkLimit, len(b.data), n, b.limit)
	}
	return nil
}

// AppendBytes appends p verbatim.
func (b *Buffer) AppendBytes(p []byte) error {
	if err := b.grow(len(p)); err != nil {
		return err
	}
	b.data = append(b.data, p...)
	return nil
}

// AppendUint32 appends v in big-endian order.
func (b *Buffer) AppendUint32(v uint32) error {
	if err := b.grow(4); err != nil {
		return err
	}
	b.data = binary.BigEndian.AppendUint32(b.data, v)
	return nil
}

// AppendUint64 appends v in big-endian order.
func (b *Buffer) AppendUint64(v uint64) error {
	if err := b.grow(8); err != nil {
		return err
	}
	b.data = binary.BigEndian.AppendUint64(b.data, v)
	return nil
}

// AppendTerminatedString appends s followed by a single zero byte.
func (b *Buffer) AppendTerminatedString(s string) error {
	if err := b.grow(len(s) + 1); err != nil {
		return err
	}
	b.data = append(b.data, s...)
	b.data = append(b.data, 0)
	return nil
}
