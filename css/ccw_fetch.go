/*
 * picochan - CCW fetch and the chaining algorithm
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package css

import "github.com/mbeattie/picochan/base/proto"

// fetchCCW reads the 8-byte CCW at addr out of the path's memory.
// Count and address are little-endian; the cmd/flags bytes are not
// endian-sensitive at all.
func (chp *CHP) fetchCCW(addr uint32) proto.CCW {
	b := chp.Tx.Mem.At(addr, 8)
	return proto.CCW{
		Cmd:   b[0],
		Flags: proto.CCWFlags(b[1]),
		Count: uint16(b[2]) | uint16(b[3])<<8,
		Addr:  uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24,
	}
}

func setWriteIndicator(f proto.CtrlFlags, ccw proto.CCW) proto.CtrlFlags {
	if ccw.IsWrite() {
		return f | proto.CtrlWrite
	}
	return f &^ proto.CtrlWrite
}

// fetchFirst fetches the CCW sch_start was given, at scsw.ccw_addr, and
// advances ccw_addr past it. An initial TIC is a program check, not a
// branch.
func (chp *CHP) fetchFirst(s *proto.SCHIB) (proto.CCW, bool) {
	addr := s.SCSW.CCWAddr
	ccw := chp.fetchCCW(addr)
	if ccw.IsTIC() {
		s.SCSW.Schs |= proto.SchsProgramCheck
		return ccw, false
	}
	s.SCSW.CCWAddr = addr + 8
	s.SCSW.CtrlFlags = setWriteIndicator(s.SCSW.CtrlFlags, ccw)
	return ccw, true
}

// fetchResume re-fetches the CCW at scsw.ccw_addr-8 for sch_resume,
// without advancing ccw_addr (the suspended CCW itself resumes, it
// isn't replaced). A TIC there is likewise a program check.
func (chp *CHP) fetchResume(s *proto.SCHIB) (proto.CCW, bool) {
	addr := s.SCSW.CCWAddr - 8
	ccw := chp.fetchCCW(addr)
	if ccw.IsTIC() {
		s.SCSW.Schs |= proto.SchsProgramCheck
		return ccw, false
	}
	s.SCSW.CtrlFlags = setWriteIndicator(s.SCSW.CtrlFlags, ccw)
	return ccw, true
}

// fetchChain fetches the next CCW in a command chain at scsw.ccw_addr,
// following at most one TIC. A second consecutive TIC is a program
// check rather than an infinite branch.
func (chp *CHP) fetchChain(s *proto.SCHIB) (proto.CCW, bool) {
	addr := s.SCSW.CCWAddr
	ccw := chp.fetchCCW(addr)
	addr += 8

	if ccw.IsTIC() {
		addr = ccw.Addr
		ccw = chp.fetchCCW(addr)
		addr += 8
		if ccw.IsTIC() {
			s.SCSW.Schs |= proto.SchsProgramCheck
			return ccw, false
		}
	}

	s.SCSW.CCWAddr = addr
	s.SCSW.CtrlFlags = setWriteIndicator(s.SCSW.CtrlFlags, ccw)
	return ccw, true
}
