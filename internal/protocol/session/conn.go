package session

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/danmuck/tracectl/internal/protocol/frame"
	"github.com/danmuck/tracectl/internal/protocol/payload"
	"github.com/danmuck/tracectl/internal/protocol/record"
	"github.com/danmuck/tracectl/internal/protocol/rule"
	"github.com/danmuck/tracectl/internal/protocol/snapshot"
)

var ErrUnknownRecordKind = errors.New("session: unknown record kind")

// Conn carries control records over a byte stream. Each record travels in
// one envelope; the reader verifies the record's self-described length
// against the envelope before handing it to the caller.
type Conn struct {
	mu  sync.Mutex
	rw  io.ReadWriter
	cfg Config
	seq uint64
}

// NewConn wraps rw. If rw is a net.Conn, the configured read and write
// timeouts are applied per record.
func NewConn(rw io.ReadWriter, cfg Config) *Conn {
	return &Conn{rw: rw, cfg: cfg}
}

// WriteRecord encodes rec and sends it in one envelope.
func (c *Conn) WriteRecord(rec record.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf := payload.NewBuffer(int(c.cfg.Limits.MaxRecordBytes))
	if err := rec.EncodeTo(buf); err != nil {
		return fmt.Errorf("encode %s: %w", rec.Kind(), err)
	}
	c.seq++
	c.setDeadline(c.cfg.WriteTimeout, (net.Conn).SetWriteDeadline)
	return frame.WriteEnvelope(c.rw, rec.Kind(), c.seq, buf.Bytes(), c.cfg.Limits)
}

// ReadRecord receives one envelope and decodes the record it carries.
// The decoded object is freshly owned by the caller.
func (c *Conn) ReadRecord() (record.Record, frame.Header, error) {
	c.setDeadline(c.cfg.ReadTimeout, (net.Conn).SetReadDeadline)
	h, body, err := frame.ReadEnvelope(c.rw, c.cfg.Limits)
	if err != nil {
		return nil, frame.Header{}, err
	}
	rec, err := DecodeRecord(h.Kind, body)
	if err != nil {
		// The envelope itself was sound; hand its header back so callers
		// can attribute the failure to the claimed record kind.
		return nil, h, err
	}
	return rec, h, nil
}

// DecodeRecord dispatches on the envelope kind and decodes one record
// from body, requiring the record to account for every body byte.
func DecodeRecord(kind record.Kind, body []byte) (record.Record, error) {
	view := payload.NewView(body)

	var (
		rec      record.Record
		consumed int
		err      error
	)
	switch kind {
	case record.KindSyscallRule:
		rec, consumed, err = decodeSyscall(view)
	case record.KindSnapshotOutput:
		rec, consumed, err = decodeOutput(view)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownRecordKind, uint16(kind))
	}
	if err != nil {
		return nil, err
	}
	if consumed != len(body) {
		return nil, fmt.Errorf("%w: record consumed %d of %d envelope bytes",
			record.ErrMalformedRecord, consumed, len(body))
	}
	return rec, nil
}

func decodeSyscall(view *payload.View) (record.Record, int, error) {
	r, n, err := rule.DecodeSyscall(view)
	if err != nil {
		return nil, 0, err
	}
	return r, n, nil
}

func decodeOutput(view *payload.View) (record.Record, int, error) {
	o, n, err := snapshot.DecodeOutput(view)
	if err != nil {
		return nil, 0, err
	}
	return o, n, nil
}

func (c *Conn) setDeadline(timeout time.Duration, set func(net.Conn, time.Time) error) {
	if timeout <= 0 {
		return
	}
	nc, ok := c.rw.(net.Conn)
	if !ok {
		return
	}
	_ = set(nc, time.Now().Add(timeout))
}
