/*
 * picochan - trace bufferset: a ring of variable-length trace records
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

// Package trace implements the trace bufferset shared by every other
// picochan component: a small ring of fixed-size buffers, each packed
// with variable-length records, with an optional notification when the
// ring switches to its next buffer so a consumer can drain the one just
// vacated before the ring wraps back around to it.
package trace

import (
	"encoding/binary"
	"sync"
)

// Magic distinguishes which side of the link produced a bufferset, so
// an offline decoder can pick the right RecordType interpretation.
const (
	MagicCSS uint32 = 0x70437353 // "pCsS" read big-endian, CSS side
	MagicCU  uint32 = 0x70437553 // CU side
)

// HeaderSize is the on-wire size in bytes of a persisted bufferset
// header, not counting the buffers it points at.
const HeaderSize = 32

// RecordHeaderSize is the on-wire size of a single trace record's
// header, before its data bytes.
const RecordHeaderSize = 8

// maxRecordSize bounds a single record (header + data) the same way the
// 8-bit size field in RecordHeader does.
const maxRecordSize = 252

// Header is the persisted, fixed-size header of a bufferset. It does
// not include the buffers themselves.
type Header struct {
	CurrentBufferNum uint32
	CurrentBufferPos uint32
	IRQNum           int16
	Enable           bool
	Magic            uint32
	BufferSize       uint32
	NumBuffers       uint16
}

// MarshalBinary encodes the header to its 32-byte wire form.
func (h Header) MarshalBinary() []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], h.CurrentBufferNum)
	binary.LittleEndian.PutUint32(b[4:8], h.CurrentBufferPos)
	binary.LittleEndian.PutUint16(b[8:10], uint16(h.IRQNum))
	if h.Enable {
		b[10] = 1
	}
	binary.LittleEndian.PutUint32(b[12:16], h.Magic)
	binary.LittleEndian.PutUint32(b[16:20], h.BufferSize)
	binary.LittleEndian.PutUint16(b[20:22], h.NumBuffers)
	return b
}

// RecordTimestamp is the 48-bit microseconds-since-boot timestamp
// carried by every trace record, stored as three little-endian 16-bit
// chunks on the wire to avoid an 8-byte field for a 6-byte quantity.
type RecordTimestamp uint64

// MarshalBinary encodes the timestamp as three little-endian uint16s.
func (t RecordTimestamp) MarshalBinary() [6]byte {
	var b [6]byte
	binary.LittleEndian.PutUint16(b[0:2], uint16(t))
	binary.LittleEndian.PutUint16(b[2:4], uint16(t>>16))
	binary.LittleEndian.PutUint16(b[4:6], uint16(t>>32))
	return b
}

// RecordHeader is the 8-byte header prefixed to every trace record.
type RecordHeader struct {
	Timestamp RecordTimestamp
	Size      uint8 // header + data, rounded up to a 4-byte boundary
	RecType   RecordType
}

// MarshalBinary encodes the record header to its 8-byte wire form.
func (h RecordHeader) MarshalBinary() []byte {
	b := make([]byte, RecordHeaderSize)
	ts := h.Timestamp.MarshalBinary()
	copy(b[0:6], ts[:])
	b[6] = h.Size
	b[7] = byte(h.RecType)
	return b
}

// Bufferset is a ring of NumBuffers fixed-size buffers, each filled
// with back-to-back trace records until full, at which point the ring
// advances to the next buffer and Notify (if set) is called so a
// consumer can archive the buffer just vacated.
type Bufferset struct {
	mu      sync.Mutex
	Header  Header
	Buffers [][]byte

	// Notify is called with the buffer index just switched away from,
	// in place of the original's IRQ-raise. It stands in for real
	// hardware IRQ delivery; nil disables notification regardless of
	// Header.IRQNum.
	Notify func(vacatedBuffer int)
}

// NewBufferset allocates a bufferset with numBuffers buffers of
// bufferSize bytes each, all zeroed, disabled until SetEnable(true) is
// called.
func NewBufferset(magic uint32, bufferSize uint32, numBuffers uint16) *Bufferset {
	bs := &Bufferset{
		Header: Header{
			Magic:      magic,
			BufferSize: bufferSize,
			NumBuffers: numBuffers,
			IRQNum:     -1,
		},
		Buffers: make([][]byte, numBuffers),
	}
	for i := range bs.Buffers {
		bs.Buffers[i] = make([]byte, bufferSize)
	}
	return bs
}

// SetEnable enables or disables tracing, returning the previous value.
// The transition itself is traced, but only the enabling transition
// actually produces a record: Write checks the new Enable value, so
// disabling suppresses its own announcement.
func (bs *Bufferset) SetEnable(enable bool) bool {
	bs.mu.Lock()
	old := bs.Header.Enable
	bs.Header.Enable = enable
	bs.mu.Unlock()
	if old == enable {
		return old
	}
	if enable {
		bs.Write(RTTraceEnable, 0, []byte{1})
	} else {
		bs.Write(RTTraceEnable, 0, []byte{0})
	}
	return old
}

// switchToNextBufferLocked advances the ring and notifies, leaving the
// new buffer's write position at startPos. Caller holds bs.mu.
func (bs *Bufferset) switchToNextBufferLocked(startPos uint32) {
	vacated := int(bs.Header.CurrentBufferNum)
	bs.Header.CurrentBufferNum = (bs.Header.CurrentBufferNum + 1) % uint32(bs.Header.NumBuffers)
	bs.Header.CurrentBufferPos = startPos
	if bs.Notify != nil {
		bs.Notify(vacated)
	}
}

// SwitchToNextBuffer forces the ring to move on to its next buffer,
// e.g. to flush a partially-filled buffer on demand.
func (bs *Bufferset) SwitchToNextBuffer() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.switchToNextBufferLocked(0)
}

// Write appends a trace record of the given type and timestamp with
// data as its trailing bytes, rounding the record up to a 4-byte
// boundary and switching buffers if it doesn't fit in the current one.
// It is a no-op when tracing is disabled.
func (bs *Bufferset) Write(rt RecordType, ts RecordTimestamp, data []byte) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if !bs.Header.Enable {
		return
	}
	if RecordHeaderSize+len(data) > maxRecordSize {
		panic("trace: record too large")
	}

	size := RecordHeaderSize + len(data)
	size = (size + 3) &^ 3

	buf := bs.Buffers[bs.Header.CurrentBufferNum]
	pos := bs.Header.CurrentBufferPos
	endpos := pos + uint32(size)
	if endpos > uint32(len(buf)) {
		bs.switchToNextBufferLocked(uint32(size))
		buf = bs.Buffers[bs.Header.CurrentBufferNum]
		pos = 0
	} else {
		bs.Header.CurrentBufferPos = endpos
	}

	h := RecordHeader{Timestamp: ts, Size: uint8(size), RecType: rt}
	copy(buf[pos:], h.MarshalBinary())
	copy(buf[pos+RecordHeaderSize:], data)
}
