/*
 * picochan - CU-side per-device state (devib)
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

// Package cu implements the control-unit side of a picochan channel: the
// per-device devib table, the tx command queue, and the rx/tx packet
// dispatch that drives a device's registered callback.
package cu

import (
	"github.com/mbeattie/picochan/base/proto"
)

// Flags is the devib status-bits field.
type Flags uint8

const (
	FlagStarted        Flags = 0x01 // a Start has been seen and not yet ended
	FlagCmdWrite       Flags = 0x02 // the current CCW command is a write
	FlagRxDataRequired Flags = 0x04 // still waiting on bytes before the callback runs
	FlagTxCallback     Flags = 0x08 // invoke the callback again once the queued tx completes
	FlagTraced         Flags = 0x10
	FlagStopping       Flags = 0x20 // CU is shutting this device down
)

// Has reports whether all bits of want are set.
func (f Flags) Has(want Flags) bool { return f&want == want }

// CallbackReason says why a devib's callback was invoked.
type CallbackReason uint8

const (
	ReasonStart      CallbackReason = iota // Start chop received (or immediate write landed)
	ReasonData                             // Data chop received, no callback pending on it
	ReasonRoom                             // Room chop received, advertised window updated
	ReasonTxComplete                       // a previously queued tx command has now gone out
)

// Callback is a device's handler, invoked by the CU's rx/tx dispatch.
// index 0 (DefaultCallback) rejects anything it's asked to handle;
// index 255 (NoOpCallback) does nothing, used for devibs the CU
// allocates but that have no device code attached.
type Callback func(c *CU, ua proto.UnitAddr, reason CallbackReason)

const (
	DefaultCallbackIndex uint8 = 0
	NoOpCallbackIndex    uint8 = 255
)

// callbackTable is the process-wide table every devib's Cbindex
// selects into. It is shared by every CU in the process, matching the
// callback-registration table's process-wide scope.
var callbackTable [256]Callback

func init() {
	callbackTable[DefaultCallbackIndex] = defaultCallback
	callbackTable[NoOpCallbackIndex] = func(*CU, proto.UnitAddr, CallbackReason) {}
}

func defaultCallback(c *CU, ua proto.UnitAddr, reason CallbackReason) {
	if reason == ReasonTxComplete {
		return
	}
	d := c.Devib(ua)
	d.Sense = proto.Sense{Flags: proto.SenseCommandReject}
	c.QueueUpdateStatus(ua, proto.DevsChannelEnd|proto.DevsDeviceEnd|proto.DevsUnitCheck, 0)
}

// RegisterDevibCallback installs cb at the given table index. index must
// not already be occupied; callers that don't care which index they get
// should use RegisterUnusedDevibCallback instead.
func RegisterDevibCallback(index uint8, cb Callback) {
	if callbackTable[index] != nil {
		panic("cu: devib callback index already registered")
	}
	callbackTable[index] = cb
}

// RegisterUnusedDevibCallback installs cb at the first free index in
// [1, 254] and returns that index. It panics if the table is full.
func RegisterUnusedDevibCallback(cb Callback) uint8 {
	for i := 1; i < int(NoOpCallbackIndex); i++ {
		if callbackTable[i] == nil {
			callbackTable[i] = cb
			return uint8(i)
		}
	}
	panic("cu: devib callback table full")
}

// Devib is the per-device state the CU keeps for one unit address.
type Devib struct {
	UA      proto.UnitAddr
	Next    proto.UnitAddr // tx-queue link; Next == UA means "not queued"
	Cbindex uint8
	Size    uint16 // CSS-announced window for the current CCW
	Op      proto.ChopCmd
	Flags   Flags
	Payload proto.Payload
	Addr    uint32
	Sense   proto.Sense
}

// NewDevib returns a devib for unit address ua, not on the tx queue,
// using the default reject callback until the device registers its own.
func NewDevib(ua proto.UnitAddr) Devib {
	return Devib{UA: ua, Next: ua, Cbindex: DefaultCallbackIndex}
}

// Queued reports whether the devib is currently on the tx command
// queue. Next == UA is overloaded: it means "never queued" for a fresh
// devib, but it is also exactly what the queue's current tail looks
// like (nothing has been appended after it yet), so Queued is only
// authoritative for non-tail entries. Authoritative membership,
// including for the tail, is whatever the CU's own queue traversal
// says.
func (d *Devib) Queued() bool { return d.Next != d.UA }

func (d *Devib) callback() Callback {
	return callbackTable[d.Cbindex]
}
