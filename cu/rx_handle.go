/*
 * picochan - CU rx dispatch: reacting to packets from the CSS
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package cu

import (
	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/base/trace"
)

// HandleRxIRQ drives the CU's rx side on an rx-channel completion. It
// dispatches a freshly-arrived cmdbuf, or finishes a data phase a
// previous cmdbuf dispatch armed.
func (c *CU) HandleRxIRQ() {
	st := c.Rx.HandleRxIRQ()
	if !st.Complete {
		return
	}

	switch c.rxPhase {
	case rxPhaseCmdbuf:
		pkt := proto.ParsePacket(c.Rx.Cmdbuf)
		c.trace(trace.RTCURxStart, c.Rx.Cmdbuf[:])
		c.dispatchRxCmdbuf(pkt)
	case rxPhaseData:
		c.finishRxData()
	}
}

func (c *CU) dispatchRxCmdbuf(pkt proto.Packet) {
	d := c.Devib(pkt.UnitAddr)
	switch pkt.Chop.Cmd() {
	case proto.ChopStart:
		c.handleRxStart(d, pkt)
	case proto.ChopData:
		c.handleRxDataCmd(d, pkt)
	case proto.ChopRoom:
		c.handleRxRoom(d, pkt)
	default:
		c.rearmCmdbuf()
	}
}

// handleRxStart processes an incoming Start command. A spurious second
// Start before the first was ever ended simply resets Started rather
// than rejecting outright. A write-type CCW with immediate bytes kicks
// off the rx-data phase directly, at whatever address the device's
// callback last left in devib.Addr, deferring the Start callback until
// those bytes land; a read-type CCW (or a write with no immediate
// bytes) invokes the callback right away so the device can start
// sending.
func (c *CU) handleRxStart(d *Devib, pkt proto.Packet) {
	d.Flags &^= FlagStarted
	d.Sense = proto.None
	d.Payload = pkt.Payload()

	ccw := proto.CCW{Cmd: pkt.P0}
	immLen := pkt.DecodeEsizePayload()

	if ccw.IsWrite() {
		d.Flags |= FlagCmdWrite
	} else {
		d.Flags &^= FlagCmdWrite
	}
	d.Flags |= FlagStarted

	if ccw.IsWrite() && immLen > 0 {
		d.Flags |= FlagRxDataRequired
		c.armRxData(pkt.UnitAddr, immLen, false)
		return
	}

	d.callback()(c, pkt.UnitAddr, ReasonStart)
	c.rearmCmdbuf()
}

// handleRxDataCmd processes a Data command: the CSS is sending (or, if
// Skip is set, announcing the implicit zeroing of) the next segment of
// a write-type CCW's bytes.
func (c *CU) handleRxDataCmd(d *Devib, pkt proto.Packet) {
	count := pkt.Count()
	skip := pkt.Chop.Has(proto.FlagSkip)
	c.armRxData(pkt.UnitAddr, count, skip)
}

// handleRxRoom processes a Room command: the CSS is reporting how many
// bytes of window it has free for this device's next send.
func (c *CU) handleRxRoom(d *Devib, pkt proto.Packet) {
	d.Size = pkt.Count()
	d.callback()(c, pkt.UnitAddr, ReasonRoom)
	c.rearmCmdbuf()
}

// armRxData starts receiving count bytes for ua, routing them to
// devib.Addr, or zero-filling locally without touching the link at all
// if skip is set (the peer's Data command carried FlagSkip).
func (c *CU) armRxData(ua proto.UnitAddr, count uint16, skip bool) {
	d := c.Devib(ua)
	c.rxPhase = rxPhaseData
	c.rxUA = ua

	if skip {
		c.Rx.PrepDstDataSrcZeroes(d.Addr, uint32(count))
	} else {
		c.Rx.StartDstData(d.Addr, uint32(count))
	}
}

// finishRxData completes the data phase armed by armRxData: the Start
// callback that was deferred waiting on immediate write bytes fires
// here (reason Start); any other data phase fires reason Data.
func (c *CU) finishRxData() {
	ua := c.rxUA
	d := c.Devib(ua)
	c.trace(trace.RTCURxData, nil)

	reason := ReasonData
	if d.Flags.Has(FlagRxDataRequired) {
		d.Flags &^= FlagRxDataRequired
		reason = ReasonStart
	}
	d.callback()(c, ua, reason)
	c.rearmCmdbuf()
}

func (c *CU) rearmCmdbuf() {
	c.rxPhase = rxPhaseCmdbuf
	c.Rx.StartDstCmdbuf()
}
