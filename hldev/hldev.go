/*
 * picochan - hldev: segment-crossing send/receive helper for devib callbacks
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

// Package hldev wraps a cu.Devib's raw Start/Data/Room callback
// sequence with a small state machine that hides CCW-segment
// boundaries: a device can ask for size bytes to be received or sent
// without itself looping over however many Data/Room round trips the
// CSS's advertised window requires.
package hldev

import (
	"github.com/mbeattie/picochan/base/bsize"
	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/cu"
)

// State is where a Config sits in its segment-crossing send/receive.
type State uint8

const (
	StateIdle State = iota
	StateStarted
	StateReceiving
	StateSending
	StateSendingFinal
	StateEnding
)

// Reason says why a registered command handler was invoked.
type Reason uint8

const (
	ReasonReady    Reason = iota // Start arrived; handler should call Receive/SendFinal/SendRespond
	ReasonReceived               // a Data segment landed while Receiving
)

// Handler reacts to one reason for one CCW command byte.
type Handler func(h *Config, reason Reason)

// Config is the hldev state for one CU devib, installed as that
// devib's callback.
type Config struct {
	c        *cu.CU
	ua       proto.UnitAddr
	state    State
	addr     uint32
	remaining uint16

	dispatch map[uint8]Handler
}

// Configure installs hldev as ua's devib callback and returns the
// handle device code drives. Register command handlers with Command
// before any Start can arrive.
func Configure(c *cu.CU, ua proto.UnitAddr) *Config {
	h := &Config{c: c, ua: ua, dispatch: make(map[uint8]Handler)}
	idx := cu.RegisterUnusedDevibCallback(func(_ *cu.CU, _ proto.UnitAddr, reason cu.CallbackReason) {
		h.onEvent(reason)
	})
	c.Devib(ua).Cbindex = idx
	return h
}

// Command registers fn as the handler for CCW command byte ccwCmd.
func (h *Config) Command(ccwCmd uint8, fn Handler) {
	h.dispatch[ccwCmd] = fn
}

func (h *Config) onEvent(reason cu.CallbackReason) {
	d := h.c.Devib(h.ua)
	switch reason {
	case cu.ReasonStart:
		h.state = StateStarted
		fn, ok := h.dispatch[d.Payload.P0]
		if !ok {
			h.c.SetSense(h.ua, proto.Sense{Flags: proto.SenseCommandReject})
			h.c.QueueUpdateStatus(h.ua, proto.DevsChannelEnd|proto.DevsDeviceEnd|proto.DevsUnitCheck, 0)
			return
		}
		fn(h, ReasonReady)
	case cu.ReasonRoom:
		if h.state == StateSending || h.state == StateSendingFinal {
			h.continueSend()
		}
	case cu.ReasonData:
		if h.state == StateReceiving {
			if fn, ok := h.dispatch[d.Payload.P0]; ok {
				fn(h, ReasonReceived)
			}
		}
	}
}

// Receive arms dst as the landing address for the next write bytes the
// CU receives for this device, and remembers size as the total this
// device is expecting across however many segments it takes. Immediate
// bytes that come with a Start have already landed at the previously
// armed address by the time that Start's handler runs.
func (h *Config) Receive(dst uint32, size uint16) {
	h.state = StateReceiving
	h.addr = dst
	h.remaining = size
	h.c.SetReceiveAddr(h.ua, dst)
}

// NoteReceived advances the receive cursor by n bytes, called by a
// ReasonReceived handler once it knows how many bytes the just-landed
// segment carried.
func (h *Config) NoteReceived(n uint16) {
	h.addr += uint32(n)
	if n >= h.remaining {
		h.remaining = 0
	} else {
		h.remaining -= n
	}
}

// SendFinal streams size bytes from src to the CSS across as many Data
// segments as its advertised window requires, asking for a Room reply
// after every segment but the last.
func (h *Config) SendFinal(src uint32, size uint16) {
	h.state = StateSendingFinal
	h.addr = src
	h.remaining = size
	h.continueSend()
}

// SendRespond behaves like SendFinal but asks for a Room reply after
// every segment including the last, for a device that doesn't yet know
// this is its final chunk.
func (h *Config) SendRespond(src uint32, size uint16) {
	h.state = StateSending
	h.addr = src
	h.remaining = size
	h.continueSend()
}

func (h *Config) continueSend() {
	if h.remaining == 0 {
		h.state = StateEnding
		return
	}

	window := h.c.AdvertisedWindow(h.ua)
	if window == 0 {
		h.c.QueueRequestRead(h.ua, h.remaining)
		return
	}

	n := h.remaining
	if n > window {
		n = window
	}
	if n > bsize.MaxValue {
		n = bsize.MaxValue
	}

	final := h.state == StateSendingFinal && n == h.remaining
	h.c.QueueDataCommand(h.ua, h.addr, n, !final, false)
	h.addr += uint32(n)
	h.remaining -= n
}

// Remaining reports how many bytes are left in the current
// Receive/SendFinal/SendRespond span.
func (h *Config) Remaining() uint16 { return h.remaining }

// Done reports whether the current span has fully landed or sent.
func (h *Config) Done() bool { return h.remaining == 0 }

// End sends ChannelEnd|DeviceEnd (OR'd with any extra status, e.g.
// UnitCheck on an error path) and returns the helper to Idle.
func (h *Config) End(extra proto.DevStatus) {
	h.state = StateIdle
	h.c.QueueUpdateStatus(h.ua, proto.DevsChannelEnd|proto.DevsDeviceEnd|extra, 0)
}
