/*
 * picochan - CSS rx dispatch: reacting to packets from the CU
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package css

import (
	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/base/trace"
)

// HandleRxIRQ drives the path's rx side on an rx-channel completion: it
// dispatches a freshly-arrived cmdbuf, or finishes a data phase a
// previous cmdbuf dispatch armed.
func (chp *CHP) HandleRxIRQ() {
	st := chp.Rx.HandleRxIRQ()
	if !st.Complete {
		return
	}

	switch chp.rxPhase {
	case rxPhaseCmdbuf:
		pkt := proto.ParsePacket(chp.Rx.Cmdbuf)
		chp.trace(trace.RTCSSInterruption, chp.Rx.Cmdbuf[:])
		chp.dispatchRxCmdbuf(pkt)
	case rxPhaseData:
		chp.finishRxData()
	}
}

func (chp *CHP) dispatchRxCmdbuf(pkt proto.Packet) {
	switch pkt.Chop.Cmd() {
	case proto.ChopUpdateStatus:
		chp.handleRxUpdateStatus(pkt.UnitAddr, pkt)
	case proto.ChopData:
		chp.handleRxDataCmd(pkt.UnitAddr, pkt)
	case proto.ChopRequestRead:
		chp.handleRxRequestRead(pkt.UnitAddr, pkt)
	default:
		chp.rearmCmdbuf()
	}
}

// handleRxUpdateStatus processes a status report from the CU. DeviceEnd
// always ends the current function (normally, or by chaining into the
// next CCW); a lone ChannelEnd means the channel side of a write has
// finished but the device hasn't yet, so there's nothing more to do
// until DeviceEnd follows; Unit Check/Exception arriving mid-flight
// ends the function immediately regardless of DeviceEnd.
func (chp *CHP) handleRxUpdateStatus(ua proto.UnitAddr, pkt proto.Packet) {
	devs := pkt.Payload().DevStatusDevs()

	switch {
	case devs.Has(proto.DevsDeviceEnd):
		normal := devs&^(proto.DevsChannelEnd|proto.DevsDeviceEnd|proto.DevsStatusModifier) == 0
		chp.endOfProgram(ua, devs, normal)
	case devs.Any(proto.DevsUnitCheck | proto.DevsUnitException):
		chp.finishProgram(ua, devs)
	}
	chp.rearmCmdbuf()
}

// handleRxDataCmd arms the data phase for a read-type CCW's next
// segment arriving from the device. Skip is not used on this side of
// the link: a device announcing zero bytes would do so as an
// UpdateStatus, not a Data command with nothing behind it.
func (chp *CHP) handleRxDataCmd(ua proto.UnitAddr, pkt proto.Packet) {
	count := pkt.Count()
	s := chp.schib(ua)

	chp.rxResponseRequired = pkt.Chop.Has(proto.FlagResponseRequired)
	chp.rxDataCount = count
	chp.rxPhase = rxPhaseData
	chp.Rx.StartDstData(s.MDA.DataAddr, uint32(count))
}

// handleRxRequestRead answers a device's request to send with however
// much of the CCW's residual count is still outstanding, capped at
// what the device asked for.
func (chp *CHP) handleRxRequestRead(ua proto.UnitAddr, pkt proto.Packet) {
	want := pkt.Count()
	s := chp.schib(ua)
	if remaining := s.SCSW.Count; want > remaining {
		want = remaining
	}
	chp.sendRoom(ua, want)
	chp.rearmCmdbuf()
}

// finishRxData completes a read-type data phase: it advances the
// data pointer and residual count, optionally acks with Room, then
// waits for whatever the device sends next (more Data, or the
// terminating UpdateStatus).
func (chp *CHP) finishRxData() {
	ua := *chp.rxUA
	s := chp.schib(ua)
	n := chp.rxDataCount

	s.MDA.DataAddr += uint32(n)
	if n <= s.SCSW.Count {
		s.SCSW.Count -= n
	} else {
		s.SCSW.Count = 0
	}
	chp.trace(trace.RTCSSSCHIBStore, nil)

	if chp.rxResponseRequired {
		chp.sendRoom(ua, s.SCSW.Count)
	}
	chp.rearmCmdbuf()
}

func (chp *CHP) rearmCmdbuf() {
	chp.rxPhase = rxPhaseCmdbuf
	chp.Rx.StartDstCmdbuf()
}
