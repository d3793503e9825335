/*
 * picochan - memchan: core-to-core memory dmachan backend
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package dmachan

import (
	"sync"

	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/base/trace"
)

// MemSrcState is the state of a memchan tx endpoint.
type MemSrcState uint8

const (
	MemSrcIdle MemSrcState = iota
	MemSrcCmdBuf
	MemSrcData
)

// MemDstState is the state of a memchan rx endpoint.
type MemDstState uint8

const (
	MemDstIdle MemDstState = iota
	MemDstCmdBuf
	MemDstData
	MemDstDiscard
)

// memTx and memRx hold the per-endpoint state that a real DMA channel
// pair would hold in hardware registers: whichever side's operation
// arrives second at a rendezvous (cmdbuf or data) performs the actual
// byte move and wakes the side that arrived first by forcing its IRQ.
type memTx struct {
	mu   *sync.Mutex
	peer *memRx
	ch   *TxChannel

	state        MemSrcState
	pendingAddr  uint32
	pendingCount uint32
	raised       bool // this endpoint's own operation just completed
	forced       bool // the peer woke us without a matching real completion
}

type memRx struct {
	mu   *sync.Mutex
	peer *memTx
	ch   *RxChannel

	state        MemDstState
	pendingAddr  uint32
	pendingCount uint32
	raised       bool
	forced       bool
	resetPending bool
}

// NewMemChan builds one direction of a core-to-core memory link: a
// TxChannel on the sending core and an RxChannel on the receiving core,
// sharing mem as their simulated address space and lock as the process-
// wide memchan spinlock both directions of a channel pair must share.
func NewMemChan(mem Memory, lock *sync.Mutex) (*TxChannel, *RxChannel) {
	mtx := &memTx{mu: lock}
	mrx := &memRx{mu: lock}
	mtx.peer = mrx
	mrx.peer = mtx

	txch := &TxChannel{Backend: mtx, Mem: mem}
	rxch := &RxChannel{Backend: mrx, Mem: mem}
	mtx.ch = txch
	mrx.ch = rxch
	return txch, rxch
}

func traceTx(tx *TxChannel, rt trace.RecordType, data []byte) {
	if tx.Traced && tx.Trace != nil {
		tx.Trace.Write(rt, 0, data)
	}
}

func traceRx(rx *RxChannel, rt trace.RecordType, data []byte) {
	if rx.Traced && rx.Trace != nil {
		rx.Trace.Write(rt, 0, data)
	}
}

func (m *memTx) StartSrcCmdbuf(tx *TxChannel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	traceTx(tx, trace.RTDmachanSrcCmdbufMem, []byte{byte(m.peer.state)})

	switch m.peer.state {
	case MemDstIdle:
		m.state = MemSrcCmdBuf
	case MemDstCmdBuf:
		m.peer.ch.Cmdbuf = tx.Cmdbuf
		m.peer.state = MemDstIdle
		m.raised = true
		m.peer.forced = true
	default:
		panic("dmachan: StartSrcCmdbuf: unexpected rx state")
	}
}

// WriteSrcReset bypasses the cmdbuf/data rendezvous entirely: the reset
// byte is always written immediately, and the peer is woken to notice
// it regardless of what it was doing.
func (m *memTx) WriteSrcReset(tx *TxChannel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	traceTx(tx, trace.RTDmachanSrcResetRemote, nil)
	m.raised = true
	m.peer.resetPending = true
	m.peer.forced = true
}

func (m *memTx) StartSrcData(tx *TxChannel, srcAddr uint32, count uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	traceTx(tx, trace.RTDmachanSrcDataMem, nil)

	switch m.peer.state {
	case MemDstIdle, MemDstCmdBuf:
		m.state = MemSrcData
		m.pendingAddr = srcAddr
		m.pendingCount = count
	case MemDstData:
		copy(m.peer.ch.Mem.At(m.peer.pendingAddr, count), tx.Mem.At(srcAddr, count))
		m.peer.state = MemDstIdle
		m.raised = true
		m.peer.forced = true
	case MemDstDiscard:
		m.peer.state = MemDstIdle
		m.raised = true
		m.peer.forced = true
	default:
		panic("dmachan: StartSrcData: unexpected rx state")
	}
}

func (m *memTx) HandleTxIRQ(tx *TxChannel) IRQState {
	m.mu.Lock()
	defer m.mu.Unlock()

	raised, forced := m.raised, m.forced
	m.raised, m.forced = false, false
	complete := raised || forced
	if complete {
		m.state = MemSrcIdle
	}
	return IRQState{Raised: raised, Forced: forced, Complete: complete}
}

func (m *memRx) StartDstCmdbuf(rx *RxChannel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	traceRx(rx, trace.RTDmachanDstCmdbufMem, []byte{byte(m.peer.state)})

	switch m.peer.state {
	case MemSrcIdle:
		m.state = MemDstCmdBuf
	case MemSrcCmdBuf:
		rx.Cmdbuf = m.peer.ch.Cmdbuf
		m.peer.state = MemSrcIdle
		m.raised = true
		m.peer.forced = true
	default:
		panic("dmachan: StartDstCmdbuf: unexpected tx state")
	}
}

func (m *memRx) StartDstReset(rx *RxChannel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	traceRx(rx, trace.RTDmachanDstResetMem, nil)
	if m.resetPending {
		m.resetPending = false
		m.raised = true
	}
}

func (m *memRx) StartDstData(rx *RxChannel, dstAddr uint32, count uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	traceRx(rx, trace.RTDmachanDstDataMem, nil)

	switch m.peer.state {
	case MemSrcIdle:
		m.state = MemDstData
		m.pendingAddr = dstAddr
		m.pendingCount = count
	case MemSrcData:
		copy(rx.Mem.At(dstAddr, count), m.peer.ch.Mem.At(m.peer.pendingAddr, count))
		m.peer.state = MemSrcIdle
		m.raised = true
		m.peer.forced = true
	default:
		panic("dmachan: StartDstData: unexpected tx state")
	}
}

func (m *memRx) StartDstDiscard(rx *RxChannel, count uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	traceRx(rx, trace.RTDmachanDstDiscardMem, nil)

	switch m.peer.state {
	case MemSrcIdle:
		m.state = MemDstDiscard
		m.pendingCount = count
	case MemSrcData:
		m.peer.state = MemSrcIdle
		m.raised = true
		m.peer.forced = true
	default:
		panic("dmachan: StartDstDiscard: unexpected tx state")
	}
}

// PrepDstDataSrcZeroes is purely local: it never rendezvous with the tx
// peer, since there is no corresponding tx-side data phase for it (the
// peer's chop carried FlagSkip, meaning no bytes were ever sent).
func (m *memRx) PrepDstDataSrcZeroes(rx *RxChannel, dstAddr uint32, count uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	traceRx(rx, trace.RTDmachanDstDataMem, []byte{1})
	buf := rx.Mem.At(dstAddr, count)
	for i := range buf {
		buf[i] = 0
	}
	m.raised = true
}

func (m *memRx) HandleRxIRQ(rx *RxChannel) IRQState {
	m.mu.Lock()
	defer m.mu.Unlock()

	raised, forced := m.raised, m.forced
	m.raised, m.forced = false, false
	complete := raised || forced
	if complete {
		m.state = MemDstIdle
	}
	return IRQState{Raised: raised, Forced: forced, Complete: complete}
}

// ResetByte is re-exported from proto for convenience of backends that
// bypass normal packet framing.
const ResetByte = proto.ResetByte
