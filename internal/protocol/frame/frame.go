package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/tracectl/internal/protocol/record"
)

const (
	Magic          uint32 = 0x54524343 // "TRCC"
	Version        uint16 = 1
	FixedHeaderLen        = 20
)

var (
	ErrShortHeader        = errors.New("frame: short fixed header")
	ErrInvalidMagic       = errors.New("frame: invalid magic")
	ErrUnsupportedVersion = errors.New("frame: unsupported version")
	ErrRecordTooLarge     = errors.New("frame: record too large")
	ErrShortRecord        = errors.New("frame: short record body")
)

// Header is the fixed wire envelope carried before every record.
type Header struct {
	Magic     uint32
	Version   uint16
	Kind      record.Kind
	Sequence  uint64
	RecordLen uint32
}

// Limits constrains envelope decode/encode memory use.
type Limits struct {
	MaxRecordBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxRecordBytes: 1024 * 1024}
}

// WriteEnvelope writes one record body framed by a fixed header.
func WriteEnvelope(w io.Writer, kind record.Kind, sequence uint64, body []byte, limits Limits) error {
	if uint64(len(body)) > uint64(limits.MaxRecordBytes) {
		return fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(body))
	}
	h := Header{
		Magic:     Magic,
		Version:   Version,
		Kind:      kind,
		Sequence:  sequence,
		RecordLen: uint32(len(body)),
	}
	if _, err := w.Write(EncodeHeader(h)); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

// ReadEnvelope reads one framed record body from the stream.
func ReadEnvelope(r io.Reader, limits Limits) (Header, []byte, error) {
	var fixed [FixedHeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Header{}, nil, ErrShortHeader
		}
		return Header{}, nil, err
	}

	h := DecodeHeader(fixed[:])
	if h.Magic != Magic {
		return Header{}, nil, ErrInvalidMagic
	}
	if h.Version != Version {
		return Header{}, nil, ErrUnsupportedVersion
	}
	if h.RecordLen > limits.MaxRecordBytes {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, h.RecordLen)
	}

	body := make([]byte, h.RecordLen)
	if h.RecordLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return Header{}, nil, ErrShortRecord
		}
	}
	return h, body, nil
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, FixedHeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	binary.BigEndian.PutUint16(buf[4:6], h.Version)
	binary.BigEndian.PutUint16(buf[6:8], uint16(h.Kind))
	binary.BigEndian.PutUint64(buf[8:16], h.Sequence)
	binary.BigEndian.PutUint32(buf[16:20], h.RecordLen)
	return buf
}

func DecodeHeader(b []byte) Header {
	return Header{
		Magic:     binary.BigEndian.Uint32(b[0:4]),
		Version:   binary.BigEndian.Uint16(b[4:6]),
		Kind:      record.Kind(binary.BigEndian.Uint16(b[6:8])),
		Sequence:  binary.BigEndian.Uint64(b[8:16]),
		RecordLen: binary.BigEndian.Uint32(b[16:20]),
	}
}
