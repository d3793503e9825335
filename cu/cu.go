/*
 * picochan - control unit
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package cu

import (
	"github.com/mbeattie/picochan/base/dmachan"
	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/base/trace"
	"github.com/mbeattie/picochan/base/txsm"
)

// CU is one control unit's state: its device table, the link to its
// CSS peer, and the tx-pending sequencer driving outgoing packets.
type CU struct {
	CUNum proto.CUNum

	Tx *dmachan.TxChannel
	Rx *dmachan.RxChannel

	devibs [256]Devib
	txsm   txsm.TxSM
	txHead *proto.UnitAddr // nil: queue empty

	rxPhase rxPhase
	rxUA    proto.UnitAddr

	Trace *trace.Bufferset
}

// rxPhase tracks which half of an rx operation the next rx-channel
// completion corresponds to: the 4-byte cmdbuf, or a data transfer a
// cmdbuf dispatch armed.
type rxPhase uint8

const (
	rxPhaseCmdbuf rxPhase = iota
	rxPhaseData
)

// NewCU builds a CU with numDevices devibs at unit addresses 0..n-1,
// each using the default reject callback.
func NewCU(cunum proto.CUNum, numDevices int, tx *dmachan.TxChannel, rx *dmachan.RxChannel) *CU {
	c := &CU{CUNum: cunum, Tx: tx, Rx: rx}
	for i := 0; i < numDevices && i < 256; i++ {
		ua := proto.UnitAddr(i)
		c.devibs[ua] = NewDevib(ua)
	}
	return c
}

// Devib returns the devib for ua.
func (c *CU) Devib(ua proto.UnitAddr) *Devib {
	return &c.devibs[ua]
}

// ConfigureDevice registers cb at the first free callback-table slot and
// makes that slot ua's callback.
func (c *CU) ConfigureDevice(ua proto.UnitAddr, cb Callback) {
	idx := RegisterUnusedDevibCallback(cb)
	c.devibs[ua].Cbindex = idx
}

// Start arms the rx channel to receive its first cmdbuf and begins the
// CU's reactor loop bookkeeping. Driving HandleRxIRQ/HandleTxIRQ in
// response to the link's actual completions is the caller's job (the
// event-driven reactor), matching the single-threaded cooperative
// scheduling model: the CU itself never spawns a goroutine.
func (c *CU) Start() {
	c.Rx.StartDstCmdbuf()
}

func (c *CU) trace(rt trace.RecordType, data []byte) {
	if c.Trace != nil {
		c.Trace.Write(rt, 0, data)
	}
}
