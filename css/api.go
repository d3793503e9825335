/*
 * picochan - sch_start/resume/test/modify/cancel/store API
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package css

import "github.com/mbeattie/picochan/base/proto"

// CC is a subchannel API condition code.
type CC uint8

const (
	CC0 CC = 0 // success
	CC1 CC = 1 // status pending
	CC2 CC = 2 // function in progress
	CC3 CC = 3 // not enabled, or sid unknown
)

// SchStart begins a CCW chain at ccwAddr on sid. CC1 means the caller
// must collect sid's pending status (SchTest) before a new function can
// start; CC2 means one is already running.
func (c *CSS) SchStart(sid proto.SID, ccwAddr uint32) CC {
	chp, ua, ok := c.resolve(sid)
	if !ok {
		return CC3
	}
	s := chp.schib(ua)
	if !s.PMCW.IsEnabled() {
		return CC3
	}
	if s.IsStatusPending() {
		return CC1
	}
	if s.HasFunctionInProgress() {
		return CC2
	}

	s.SCSW.CCWAddr = ccwAddr
	s.SCSW.CtrlFlags |= proto.FCStart | proto.ACStartPending

	chp.pushFuncList(ua)
	chp.tryStartNext()
	return CC0
}

// SchResume continues a CCW whose Suspend flag parked it. Only a
// subchannel sitting in ACSuspended is eligible.
func (c *CSS) SchResume(sid proto.SID) CC {
	chp, ua, ok := c.resolve(sid)
	if !ok {
		return CC3
	}
	s := chp.schib(ua)
	if s.IsStatusPending() {
		return CC1
	}
	if !s.SCSW.CtrlFlags.Has(proto.ACSuspended) {
		return CC2
	}

	s.SCSW.CtrlFlags = s.SCSW.CtrlFlags&^proto.ACSuspended | proto.ACResumePending
	chp.pushFuncList(ua)
	chp.tryStartNext()
	return CC0
}

// SchTest collects and clears sid's pending status, returning its
// SCSW. The subchannel goes back to Idle regardless of where in its
// ISC list it was sitting.
func (c *CSS) SchTest(sid proto.SID) (proto.SCSW, CC) {
	s := c.schib(sid)
	if s == nil {
		return proto.SCSW{}, CC3
	}
	if !s.IsStatusPending() {
		return proto.SCSW{}, CC1
	}

	out := s.SCSW
	c.removeFromISC(s.PMCW.ISC(), sid)
	s.SCSW.CtrlFlags = 0
	return out, CC0
}

// SchModify updates sid's intparm and its five modifiable PMCW flag
// bits (ISC, Enabled, Traced). It is refused while status is pending
// or a function is in progress.
func (c *CSS) SchModify(sid proto.SID, pmcw proto.PMCW) CC {
	s := c.schib(sid)
	if s == nil {
		return CC3
	}
	if s.IsStatusPending() {
		return CC1
	}
	if s.HasFunctionInProgress() {
		return CC2
	}

	s.PMCW.Intparm = pmcw.Intparm
	s.PMCW.Flags = s.PMCW.Flags&^proto.ModifyMask | pmcw.Flags&proto.ModifyMask
	return CC0
}

// SchCancel withdraws a Start function that has not yet gone active:
// one of Start-Pending, Resume-Pending or Suspended must be set, and
// Subchannel Active must not be, or there is nothing left to cancel.
func (c *CSS) SchCancel(sid proto.SID) CC {
	chp, ua, ok := c.resolve(sid)
	if !ok {
		return CC3
	}
	s := chp.schib(ua)

	if !s.SCSW.CtrlFlags.Has(proto.FCStart) || s.SCSW.CtrlFlags.Has(proto.ACSubchannelActive) {
		return CC2
	}
	switch s.SCSW.CtrlFlags & (proto.ACStartPending | proto.ACResumePending | proto.ACSuspended) {
	case proto.ACStartPending, proto.ACResumePending, proto.ACSuspended:
	default:
		return CC2
	}

	if chp.queued(ua) {
		chp.removeFromFuncList(ua)
	}
	s.SCSW.CtrlFlags &^= proto.FCMask | proto.ACMask
	return CC0
}

// SchStore returns a snapshot of sid's whole SCHIB.
func (c *CSS) SchStore(sid proto.SID) (proto.SCHIB, CC) {
	s := c.schib(sid)
	if s == nil {
		return proto.SCHIB{}, CC3
	}
	return *s, CC0
}

// removeFromISC splices sid out of ISC list isc from wherever it sits,
// used by SchTest which may be given a sid that is not its list's
// current head. Mirrors CHP.removeFromFuncList's head/tail promotion
// for the same self-pointing-sentinel reason.
func (c *CSS) removeFromISC(isc uint8, sid proto.SID) {
	s := c.schib(sid)
	prev, next := s.MDA.PrevSID, s.MDA.NextSID
	wasHead, wasTail := prev == sid, next == sid

	switch {
	case wasHead && wasTail:
		if c.iscHead[isc] != nil && *c.iscHead[isc] == sid {
			c.iscHead[isc] = nil
			c.iscTail[isc] = nil
		}
	case wasHead:
		c.schib(next).MDA.PrevSID = next
		if c.iscHead[isc] != nil && *c.iscHead[isc] == sid {
			c.iscHead[isc] = &next
		}
	case wasTail:
		c.schib(prev).MDA.NextSID = prev
		if c.iscTail[isc] != nil && *c.iscTail[isc] == sid {
			c.iscTail[isc] = &prev
		}
	default:
		c.schib(prev).MDA.NextSID = next
		c.schib(next).MDA.PrevSID = prev
	}
	s.MDA.NextSID, s.MDA.PrevSID = sid, sid
}
