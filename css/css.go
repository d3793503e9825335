/*
 * picochan - channel subsystem
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package css

import "github.com/mbeattie/picochan/base/proto"

// NumISC is the number of Interrupt Service Classes; ISC 0 is highest
// priority.
const NumISC = 8

// IOCallback is invoked once per status-pending SCHIB drained by
// DrainPendingInterruptions, carrying the collected SCSW and whatever
// intparm its PMCW held.
type IOCallback func(sid proto.SID, intparm uint32, scsw proto.SCSW)

// CSS is a channel subsystem: a set of channel paths sharing one ISC
// dispatch namespace. SIDs are unique CSS-wide; each CHP owns a
// contiguous sub-range of them.
type CSS struct {
	chps []*CHP

	ioCallback    IOCallback
	iscEnableMask uint8
	iscHead       [NumISC]*proto.SID
	iscTail       [NumISC]*proto.SID
}

// NewCSS builds an empty CSS. Call Start to install the I/O callback
// and enabled ISC mask.
func NewCSS() *CSS {
	return &CSS{}
}

// Start installs cb as the callback DrainPendingInterruptions invokes,
// and enables the given ISC numbers.
func (c *CSS) Start(cb IOCallback, enabledISCs ...uint8) {
	c.ioCallback = cb
	for _, isc := range enabledISCs {
		c.SetISCEnabled(isc, true)
	}
}

// SetISCEnabled gates whether ISC number isc is eligible for
// DrainPendingInterruptions to surface; it does not affect whether
// SCHIBs still queue onto that ISC's list.
func (c *CSS) SetISCEnabled(isc uint8, enabled bool) {
	if enabled {
		c.iscEnableMask |= 1 << isc
	} else {
		c.iscEnableMask &^= 1 << isc
	}
}

// ClaimCHP registers chp with the CSS so its SIDs resolve through
// sch_start and friends.
func (c *CSS) ClaimCHP(chp *CHP) {
	chp.cssRef = c
	c.chps = append(c.chps, chp)
}

// resolve finds the CHP owning sid and its unit address on that path.
func (c *CSS) resolve(sid proto.SID) (*CHP, proto.UnitAddr, bool) {
	for _, chp := range c.chps {
		if chp.contains(sid) {
			return chp, proto.UnitAddr(sid - chp.FirstSID), true
		}
	}
	return nil, 0, false
}

// schib resolves sid directly to its SCHIB, or nil if sid is unknown.
func (c *CSS) schib(sid proto.SID) *proto.SCHIB {
	chp, ua, ok := c.resolve(sid)
	if !ok {
		return nil
	}
	return chp.schib(ua)
}

// pushISC appends sid to the tail of ISC list isc.
func (c *CSS) pushISC(isc uint8, sid proto.SID) {
	s := c.schib(sid)
	s.MDA.NextSID, s.MDA.PrevSID = sid, sid

	if c.iscHead[isc] == nil {
		head := sid
		c.iscHead[isc] = &head
		c.iscTail[isc] = &head
		return
	}

	tailSID := *c.iscTail[isc]
	tail := c.schib(tailSID)
	tail.MDA.NextSID = sid
	s.MDA.PrevSID = tailSID
	c.iscTail[isc] = &sid
}

// popISC removes and returns the head of ISC list isc.
func (c *CSS) popISC(isc uint8) (proto.SID, bool) {
	if c.iscHead[isc] == nil {
		return 0, false
	}
	head := *c.iscHead[isc]
	s := c.schib(head)
	next := s.MDA.NextSID
	s.MDA.NextSID, s.MDA.PrevSID = head, head

	if next == head {
		c.iscHead[isc] = nil
		c.iscTail[isc] = nil
	} else {
		c.schib(next).MDA.PrevSID = next
		c.iscHead[isc] = &next
	}
	return head, true
}

// DrainPendingInterruptions walks every enabled, non-empty ISC list in
// priority order (0 highest) and fires the I/O callback for each head
// SCHIB it removes, clearing its status-pending bit as it goes. It
// corresponds to the I/O IRQ handler draining all enabled+pending ISCs
// in one pass.
func (c *CSS) DrainPendingInterruptions() int {
	n := 0
	for isc := uint8(0); isc < NumISC; isc++ {
		if c.iscEnableMask&(1<<isc) == 0 {
			continue
		}
		for {
			sid, ok := c.popISC(isc)
			if !ok {
				break
			}
			s := c.schib(sid)
			s.SCSW.CtrlFlags &^= proto.SCPending
			if c.ioCallback != nil {
				c.ioCallback(sid, s.PMCW.Intparm, s.SCSW)
			}
			n++
		}
	}
	return n
}

// TestPendingInterruption implements test_pending_interruption: it
// returns the single highest-priority pending SCHIB, if any, without
// draining the rest of that ISC's list.
func (c *CSS) TestPendingInterruption() (sid proto.SID, intparm uint32, isc uint8, cc uint8) {
	for i := uint8(0); i < NumISC; i++ {
		if c.iscEnableMask&(1<<i) == 0 {
			continue
		}
		got, ok := c.popISC(i)
		if !ok {
			continue
		}
		s := c.schib(got)
		s.SCSW.CtrlFlags &^= proto.SCPending
		return got, s.PMCW.Intparm, i, 1
	}
	return 0, 0, 0, 0
}

// setStatusPending pushes sid onto its PMCW's ISC list and marks it
// status-pending; called once a SCHIB's terminal (or intermediate)
// status has been collected from the wire.
func (c *CSS) setStatusPending(chp *CHP, ua proto.UnitAddr) {
	s := chp.schib(ua)
	s.SCSW.CtrlFlags |= proto.SCPending
	c.pushISC(s.PMCW.ISC(), chp.sid(ua))
}
