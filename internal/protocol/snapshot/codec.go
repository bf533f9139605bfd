package snapshot

import (
	"fmt"

	"github.com/danmuck/tracectl/internal/protocol/payload"
	"github.com/danmuck/tracectl/internal/protocol/record"
)

// Wire layout: u32 name length, u32 data locator length, u32 control
// locator length, u64 max size, then name, data locator, and control
// locator bytes, each zero-terminated. Lengths count the terminator. A
// control locator length of exactly 1 means the output has none. The
// registry-assigned ID never crosses the wire.
const headerSize = 20

func (o *Output) Kind() record.Kind {
	return record.KindSnapshotOutput
}

// WireSize returns the exact encoded size of the output.
func (o *Output) WireSize() int {
	return headerSize +
		record.TerminatedStringSize(o.Name) +
		record.TerminatedStringSize(o.DataURL) +
		record.TerminatedStringSize(o.CtrlURL)
}

// EncodeTo appends the output's wire representation to buf.
func (o *Output) EncodeTo(buf *payload.Buffer) error {
	if err := buf.AppendUint32(uint32(record.TerminatedStringSize(o.Name))); err != nil {
		return err
	}
	if err := buf.AppendUint32(uint32(record.TerminatedStringSize(o.DataURL))); err != nil {
		return err
	}
	if err := buf.AppendUint32(uint32(record.TerminatedStringSize(o.CtrlURL))); err != nil {
		return err
	}
	if err := buf.AppendUint64(o.MaxSize); err != nil {
		return err
	}
	if err := buf.AppendTerminatedString(o.Name); err != nil {
		return err
	}
	if err := buf.AppendTerminatedString(o.DataURL); err != nil {
		return err
	}
	return buf.AppendTerminatedString(o.CtrlURL)
}

// DecodeOutput consumes exactly one snapshot output record from view and
// returns it with the number of bytes consumed. It guarantees memory-safe,
// length-consistent extraction only; callers that need domain validity run
// Validate on the result.
func DecodeOutput(view *payload.View) (*Output, int, error) {
	nameLen, err := view.Uint32()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: name length: %v", record.ErrMalformedRecord, err)
	}
	dataLen, err := view.Uint32()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: data locator length: %v", record.ErrMalformedRecord, err)
	}
	ctrlLen, err := view.Uint32()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: control locator length: %v", record.ErrMalformedRecord, err)
	}
	maxSize, err := view.Uint64()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: max size: %v", record.ErrMalformedRecord, err)
	}
	if nameLen == 0 || dataLen == 0 || ctrlLen == 0 {
		return nil, 0, fmt.Errorf("%w: zero string length", record.ErrMalformedRecord)
	}

	rawName, err := view.Bytes(int(nameLen))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: name: %v", record.ErrMalformedRecord, err)
	}
	name, err := record.TerminatedString(rawName)
	if err != nil {
		return nil, 0, fmt.Errorf("name: %w", err)
	}

	rawData, err := view.Bytes(int(dataLen))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: data locator: %v", record.ErrMalformedRecord, err)
	}
	dataURL, err := record.TerminatedString(rawData)
	if err != nil {
		return nil, 0, fmt.Errorf("data locator: %w", err)
	}

	rawCtrl, err := view.Bytes(int(ctrlLen))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: control locator: %v", record.ErrMalformedRecord, err)
	}
	ctrlURL, err := record.TerminatedString(rawCtrl)
	if err != nil {
		return nil, 0, fmt.Errorf("control locator: %w", err)
	}

	o := &Output{Name: name, DataURL: dataURL, CtrlURL: ctrlURL, MaxSize: maxSize}
	consumed := headerSize + int(nameLen) + int(dataLen) + int(ctrlLen)
	return o, consumed, nil
}
