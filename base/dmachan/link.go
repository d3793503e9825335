/*
 * picochan - dmachan link abstraction
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

// Package dmachan implements the point-to-point byte link between a CSS
// and a CU: a 4-byte command buffer phase followed by an optional data
// phase, carried over one of several backends (core-to-core memory,
// UART, or a PIO-clocked bit lane on the original hardware; here,
// in-process loopback and an io.ReadWriter-based stream).
package dmachan

import "github.com/mbeattie/picochan/base/trace"

// CmdbufSize is the fixed size in bytes of a wire packet's command
// buffer phase.
const CmdbufSize = 4

// IRQState is the triplet every link operation reports: whether a real
// completion was raised, whether it was instead forced (memchan's
// software doorbell rather than genuine DMA completion), and whether
// the operation that produced this state is now complete.
type IRQState struct {
	Raised   bool
	Forced   bool
	Complete bool
}

// Memory is a flat simulated address space a link backend reads and
// writes through, standing in for the physical memory a real DMA engine
// would address directly.
type Memory interface {
	At(addr uint32, count uint32) []byte
}

// FlatMemory is a Memory backed by a single contiguous byte slice,
// sufficient for loopback testing and the demo command.
type FlatMemory []byte

// At returns the count-byte window starting at addr.
func (m FlatMemory) At(addr uint32, count uint32) []byte {
	return m[addr : addr+count]
}

// TxBackend is the source-side operations a link backend must provide.
type TxBackend interface {
	StartSrcCmdbuf(tx *TxChannel)
	WriteSrcReset(tx *TxChannel)
	StartSrcData(tx *TxChannel, srcAddr uint32, count uint32)
	HandleTxIRQ(tx *TxChannel) IRQState
}

// RxBackend is the destination-side operations a link backend must
// provide.
type RxBackend interface {
	StartDstCmdbuf(rx *RxChannel)
	StartDstReset(rx *RxChannel)
	StartDstData(rx *RxChannel, dstAddr uint32, count uint32)
	StartDstDiscard(rx *RxChannel, count uint32)
	PrepDstDataSrcZeroes(rx *RxChannel, dstAddr uint32, count uint32)
	HandleRxIRQ(rx *RxChannel) IRQState
}

// TxChannel is the source endpoint of a dmachan link: a 4-byte command
// buffer plus whatever backend actually moves the bytes.
type TxChannel struct {
	Cmdbuf  [4]byte
	Backend TxBackend
	Mem     Memory
	Trace   *trace.Bufferset
	Traced  bool
}

// StartSrcCmdbuf transmits the current contents of Cmdbuf.
func (tx *TxChannel) StartSrcCmdbuf() {
	tx.Backend.StartSrcCmdbuf(tx)
}

// WriteSrcReset sends the out-of-band link reset byte.
func (tx *TxChannel) WriteSrcReset() {
	tx.Backend.WriteSrcReset(tx)
}

// StartSrcData transmits count bytes from Mem starting at srcAddr. It
// satisfies txsm.DataStarter.
func (tx *TxChannel) StartSrcData(srcAddr uint32, count uint32) {
	tx.Backend.StartSrcData(tx, srcAddr, count)
}

// HandleTxIRQ services a tx completion notification (real or forced)
// from the backend.
func (tx *TxChannel) HandleTxIRQ() IRQState {
	return tx.Backend.HandleTxIRQ(tx)
}

// RxChannel is the destination endpoint of a dmachan link.
type RxChannel struct {
	Cmdbuf  [4]byte
	Backend RxBackend
	Mem     Memory
	Trace   *trace.Bufferset
	Traced  bool
}

// StartDstCmdbuf arms the channel to receive the next 4-byte command
// buffer into Cmdbuf.
func (rx *RxChannel) StartDstCmdbuf() {
	rx.Backend.StartDstCmdbuf(rx)
}

// StartDstReset arms the channel to receive (and discard) a link reset.
func (rx *RxChannel) StartDstReset() {
	rx.Backend.StartDstReset(rx)
}

// StartDstData arms the channel to receive count bytes into Mem at
// dstAddr.
func (rx *RxChannel) StartDstData(dstAddr uint32, count uint32) {
	rx.Backend.StartDstData(rx, dstAddr, count)
}

// StartDstDiscard arms the channel to receive and drop count bytes,
// used when a CCW's Skip flag means the bytes have nowhere to land.
func (rx *RxChannel) StartDstDiscard(count uint32) {
	rx.Backend.StartDstDiscard(rx, count)
}

// PrepDstDataSrcZeroes arms the channel to synthesise count zero bytes
// into Mem at dstAddr without waiting on the peer at all, used when the
// peer's Data packet carried FlagSkip (no bytes actually sent).
func (rx *RxChannel) PrepDstDataSrcZeroes(dstAddr uint32, count uint32) {
	rx.Backend.PrepDstDataSrcZeroes(rx, dstAddr, count)
}

// HandleRxIRQ services an rx completion notification from the backend.
func (rx *RxChannel) HandleRxIRQ() IRQState {
	return rx.Backend.HandleRxIRQ(rx)
}
