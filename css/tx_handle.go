/*
 * picochan - CSS tx dispatch: building and sending outgoing packets
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package css

import (
	"github.com/mbeattie/picochan/base/bsize"
	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/base/trace"
	"github.com/mbeattie/picochan/base/txsm"
)

// tryStartNext pops the next queued program off the function list and
// dispatches its first CCW, if the path is idle. A path only ever runs
// one subchannel's CCW chain at a time; further sch_start calls queue
// behind whatever is already running.
func (chp *CHP) tryStartNext() {
	if chp.txActive || chp.rxUA != nil {
		return
	}
	ua, ok := chp.popFuncList()
	if !ok {
		return
	}
	chp.beginProgram(ua)
}

// beginProgram fetches a freshly-started (or resumed) subchannel's
// first CCW and dispatches it, or fails the program outright if that
// fetch itself was a program check.
func (chp *CHP) beginProgram(ua proto.UnitAddr) {
	s := chp.schib(ua)

	var ccw proto.CCW
	var ok bool
	if s.SCSW.CtrlFlags.Has(proto.ACResumePending) {
		ccw, ok = chp.fetchResume(s)
	} else {
		ccw, ok = chp.fetchFirst(s)
	}
	if !ok {
		chp.finishProgram(ua, 0)
		return
	}
	chp.dispatchCCW(ua, ccw)
}

// dispatchCCW sends a Start command for the CCW just fetched and, for a
// write-type CCW, streams its data immediately behind the command
// packet rather than waiting for a separate Data exchange.
func (chp *CHP) dispatchCCW(ua proto.UnitAddr, ccw proto.CCW) {
	s := chp.schib(ua)
	s.SCSW.CtrlFlags = (s.SCSW.CtrlFlags &^ (proto.ACStartPending | proto.ACResumePending)) |
		proto.ACSubchannelActive | proto.ACDeviceActive
	s.SCSW.Devs = uint8(ccw.Flags)
	s.SCSW.Count = ccw.Count
	s.MDA.DataAddr = ccw.Addr

	chp.rxUA = &ua
	chp.rxPhase = rxPhaseCmdbuf
	chp.txActive = true

	immLen := uint16(0)
	if ccw.IsWrite() && ccw.Count > 0 {
		if ccw.Count > bsize.MaxValue {
			panic("css: dispatchCCW: write CCW count exceeds encodable immediate length")
		}
		immLen = ccw.Count
	}

	pkt := proto.MakePacket(proto.MakeChop(proto.ChopStart, 0), ua, proto.MakeStartPayload(ccw.Cmd, immLen))
	chp.Tx.Cmdbuf = pkt.Bytes()
	chp.trace(trace.RTCSSFunctionStart, chp.Tx.Cmdbuf[:])
	chp.Tx.StartSrcCmdbuf()

	if immLen > 0 {
		chp.txsm.SetPending(ccw.Addr, immLen)
	}
}

// sendRoom advertises count bytes of window to the device for its
// current read-type send. The path is always idle on the tx side by
// the time a Room reply is due, since Start/Data and their replies
// alternate strictly on a single in-flight program.
func (chp *CHP) sendRoom(ua proto.UnitAddr, count uint16) {
	chp.txActive = true
	pkt := proto.MakeCountPacket(proto.MakeChop(proto.ChopRoom, 0), ua, count)
	chp.Tx.Cmdbuf = pkt.Bytes()
	chp.trace(trace.RTCSSFunctionStart, chp.Tx.Cmdbuf[:])
	chp.Tx.StartSrcCmdbuf()
}

// HandleTxIRQ drives the path's tx side on a tx-channel completion: it
// runs the tx-pending sequencer, which may kick off the data phase of
// an immediate write that must complete on a later call.
func (chp *CHP) HandleTxIRQ() {
	st := chp.Tx.HandleTxIRQ()
	if !st.Complete {
		return
	}
	if res := txsm.Run(&chp.txsm, chp.Tx); res == txsm.Acted {
		return
	}
	chp.txActive = false
}
