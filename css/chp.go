/*
 * picochan - channel path
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

// Package css implements the channel-subsystem side of a picochan link:
// subchannels (SCHIB), CCW fetch and chaining, the start/resume/test/
// modify/cancel/store API, ISC dispatch, and the tx/rx packet dispatch
// that drives them over a channel path's dmachan.
package css

import (
	"github.com/mbeattie/picochan/base/dmachan"
	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/base/trace"
	"github.com/mbeattie/picochan/base/txsm"
)

// CHP is one channel path: a dmachan link to a CU's mirrored link, its
// own tx-pending sequencer, and the SCHIBs for the devices reachable
// over it.
type CHP struct {
	ChpID    proto.ChpID
	FirstSID proto.SID
	Schibs   []proto.SCHIB // indexed by UnitAddr, len == NumDevices

	Tx *dmachan.TxChannel
	Rx *dmachan.RxChannel

	txsm     txsm.TxSM
	funcHead *proto.UnitAddr // function list (Start/Resume-pending, not yet sent); nil = empty
	txActive bool            // a packet (and any immediate data) is being sent; cleared on tx completion

	rxPhase            rxPhase
	rxUA               *proto.UnitAddr // unit address whose CCW chain is currently active, or nil
	rxDataCount        uint16          // bytes armed by the data phase currently in flight
	rxResponseRequired bool            // the in-flight read-type send wants a Room reply

	cssRef *CSS // the CSS this path was claimed by, for ISC push and io_callback

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

// NewCHP allocates a CHP with numDevices SCHIBs at the given sid range,
// all Idle and not yet enabled.
func NewCHP(chpid proto.ChpID, firstSID proto.SID, numDevices int, tx *dmachan.TxChannel, rx *dmachan.RxChannel) *CHP {
	chp := &CHP{ChpID: chpid, FirstSID: firstSID, Tx: tx, Rx: rx}
	chp.Schibs = make([]proto.SCHIB, numDevices)
	for i := range chp.Schibs {
		ua := proto.UnitAddr(i)
		sid := firstSID + proto.SID(i)
		chp.Schibs[i].PMCW = proto.PMCW{ChpID: chpid, UnitAddr: ua}
		chp.Schibs[i].MDA = proto.MDA{PrevUA: ua, NextUA: ua, PrevSID: sid, NextSID: sid}
	}
	return chp
}

// sid returns the SID of the schib at index ua on this path.
func (chp *CHP) sid(ua proto.UnitAddr) proto.SID {
	return chp.FirstSID + proto.SID(ua)
}

// schib returns the SCHIB at unit address ua.
func (chp *CHP) schib(ua proto.UnitAddr) *proto.SCHIB {
	return &chp.Schibs[ua]
}

// contains reports whether sid falls within this path's allocated range.
func (chp *CHP) contains(sid proto.SID) bool {
	return sid >= chp.FirstSID && sid < chp.FirstSID+proto.SID(len(chp.Schibs))
}

// Start arms the rx channel for its first cmdbuf. Driving HandleRxIRQ/
// HandleTxIRQ off the link's actual completions is the caller's job.
func (chp *CHP) Start() {
	chp.Rx.StartDstCmdbuf()
}

func (chp *CHP) trace(rt trace.RecordType, data []byte) {
	if chp.Trace != nil {
		chp.Trace.Write(rt, 0, data)
	}
}

// pushFuncList appends ua to the tail of the function list and reports
// whether the list was empty beforehand.
func (chp *CHP) pushFuncList(ua proto.UnitAddr) (wasEmpty bool) {
	m := &chp.schib(ua).MDA
	m.NextUA, m.PrevUA = ua, ua

	if chp.funcHead == nil {
		head := ua
		chp.funcHead = &head
		return true
	}

	tailUA := *chp.funcHead
	for {
		tailM := &chp.schib(tailUA).MDA
		if tailM.NextUA == tailUA {
			break
		}
		tailUA = tailM.NextUA
	}
	tailM := &chp.schib(tailUA).MDA
	tailM.NextUA = ua
	m.PrevUA = tailUA
	return false
}

// popFuncList removes and returns the head of the function list.
func (chp *CHP) popFuncList() (proto.UnitAddr, bool) {
	if chp.funcHead == nil {
		return 0, false
	}
	head := *chp.funcHead
	m := &chp.schib(head).MDA
	next := m.NextUA
	m.NextUA, m.PrevUA = head, head

	if next == head {
		chp.funcHead = nil
	} else {
		nextM := &chp.schib(next).MDA
		nextM.PrevUA = next
		chp.funcHead = &next
	}
	return head, true
}

// removeFromFuncList splices ua out of the function list from wherever
// it sits, used by sch_cancel which may target a queued (not head)
// entry. Both ends of the list are self-pointing sentinels, so removing
// the head or tail requires promoting its neighbour to the same
// sentinel convention rather than copying the removed node's links.
func (chp *CHP) removeFromFuncList(ua proto.UnitAddr) {
	m := &chp.schib(ua).MDA
	prev, next := m.PrevUA, m.NextUA
	wasHead, wasTail := prev == ua, next == ua

	switch {
	case wasHead && wasTail:
		if chp.funcHead != nil && *chp.funcHead == ua {
			chp.funcHead = nil
		}
	case wasHead:
		chp.schib(next).MDA.PrevUA = next
		if chp.funcHead != nil && *chp.funcHead == ua {
			chp.funcHead = &next
		}
	case wasTail:
		chp.schib(prev).MDA.NextUA = prev
	default:
		chp.schib(prev).MDA.NextUA = next
		chp.schib(next).MDA.PrevUA = prev
	}
	m.NextUA, m.PrevUA = ua, ua
}

// queued reports whether ua's schib sits on the function list.
func (chp *CHP) queued(ua proto.UnitAddr) bool {
	if chp.funcHead != nil && *chp.funcHead == ua {
		return true
	}
	m := chp.schib(ua).MDA
	return m.NextUA != ua || m.PrevUA != ua
}
