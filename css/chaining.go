/*
 * picochan - end-of-segment and end-of-program chaining
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package css

import "github.com/mbeattie/picochan/base/proto"

// endOfProgram decides whether the CCW just completed chains into the
// next one (command chaining: Chain Command set and status was
// normal), or whether the subchannel's function has actually ended.
// Status Modifier on a chained completion skips the conditional-branch
// CCW (the architected "skip one CCW" behaviour).
func (chp *CHP) endOfProgram(ua proto.UnitAddr, devs proto.DevStatus, normal bool) {
	s := chp.schib(ua)
	cur := proto.CCW{Flags: proto.CCWFlags(s.SCSW.Devs)}

	if normal && cur.Has(proto.FlagCD|proto.FlagS) {
		s.SCSW.Schs |= proto.SchsProgramCheck
		chp.finishProgram(ua, devs)
		return
	}

	if normal && cur.Has(proto.FlagS) {
		chp.suspendProgram(ua)
		return
	}

	if normal && cur.Has(proto.FlagCC) {
		if devs.Has(proto.DevsStatusModifier) {
			s.SCSW.CCWAddr += 8
		}
		ccw, ok := chp.fetchChain(s)
		if ok {
			if ccw.Has(proto.FlagPCI) {
				chp.postIntermediate(ua)
			}
			chp.dispatchCCW(ua, ccw)
			return
		}
	}
	chp.finishProgram(ua, devs)
}

// suspendProgram parks a SCHIB whose just-completed CCW carried the
// Suspend flag: the function halts mid-chain rather than retiring, and
// an Intermediate status-pending notification fires so user code learns
// of the pause. Only sch_resume moves it again; fetchResume re-fetches
// this same CCW from scsw.ccw_addr-8 when that happens.
func (chp *CHP) suspendProgram(ua proto.UnitAddr) {
	s := chp.schib(ua)
	s.SCSW.CtrlFlags = s.SCSW.CtrlFlags&^proto.ACMask | proto.ACSuspended | proto.SCIntermediate
	s.SCSW.Devs = 0

	if chp.cssRef != nil {
		chp.cssRef.setStatusPending(chp, ua)
	}
	chp.rxUA = nil
	chp.tryStartNext()
}

// finishProgram retires the currently active function: the SCHIB
// becomes status-pending and the path picks up whatever is next on the
// function list.
func (chp *CHP) finishProgram(ua proto.UnitAddr, devs proto.DevStatus) {
	s := chp.schib(ua)
	s.SCSW.CtrlFlags &^= proto.FCMask | proto.ACMask
	s.SCSW.CtrlFlags |= proto.SCPrimary | proto.SCSecondary
	s.SCSW.Devs = uint8(devs)

	if chp.cssRef != nil {
		chp.cssRef.setStatusPending(chp, ua)
	}
	chp.rxUA = nil
	chp.tryStartNext()
}

// postIntermediate surfaces a PCI notification for ua without
// disturbing the SCHIB's live function-in-progress state: it is a
// direct, synchronous callback invocation rather than a second trip
// through the ISC queue, since the real queued status for this
// function is still to come.
func (chp *CHP) postIntermediate(ua proto.UnitAddr) {
	if chp.cssRef == nil || chp.cssRef.ioCallback == nil {
		return
	}
	s := chp.schib(ua)
	scsw := s.SCSW
	scsw.CtrlFlags |= proto.SCIntermediate
	scsw.Devs = 0
	chp.cssRef.ioCallback(chp.sid(ua), s.PMCW.Intparm, scsw)
}
