/*
 * picochan - cardkb: poll-driven keyboard-style input device
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

// Package cardkb is an example hldev-backed device: it polls a byte
// source (typically an I²C keyboard module) on a fixed cadence into a
// double-buffered ring, and flushes the active buffer through hldev
// once a caller-supplied readiness criterion is met.
package cardkb

import (
	"time"

	"github.com/mbeattie/picochan/base/dmachan"
	"github.com/mbeattie/picochan/hldev"
)

// Source abstracts a polled byte source such as an I²C register read.
// ReadByte returns ok == false when nothing is currently available.
type Source interface {
	ReadByte() (b byte, ok bool)
}

// Criteria describes when an armed buffer is ready to flush.
type Criteria struct {
	MinBytes uint16        // flush once this many bytes have accumulated (0 disables)
	Deadline time.Duration // flush this long after arming regardless of count (0 disables)
	EOLByte  byte          // flush as soon as this byte is seen
	WantEOL  bool
}

// Poller drives the double buffer from Source on each Tick and flushes
// through an hldev.Config once armed and ready.
type Poller struct {
	src Source
	mem dmachan.Memory

	scratchAddr uint32
	scratchSize uint32

	buf    [2][]byte
	active int

	h        *hldev.Config
	criteria Criteria
	armedAt  time.Time
	armed    bool
	sawEOL   bool
}

// NewPoller returns a Poller reading from src, using [scratchAddr,
// scratchAddr+scratchSize) of mem as the staging area hldev.SendFinal
// transmits from.
func NewPoller(src Source, mem dmachan.Memory, scratchAddr, scratchSize uint32) *Poller {
	return &Poller{
		src:         src,
		mem:         mem,
		scratchAddr: scratchAddr,
		scratchSize: scratchSize,
	}
}

// Arm tells the Poller that h's device has issued a Start and wants the
// active buffer flushed through h.SendFinal once crit is satisfied.
func (p *Poller) Arm(h *hldev.Config, crit Criteria) {
	p.h = h
	p.criteria = crit
	p.armedAt = time.Now()
	p.armed = true
	p.sawEOL = false
}

// Tick drains whatever bytes Source currently has ready, then flushes
// the active buffer if armed and the readiness criterion now holds.
// It should be called from a periodic timer/ticker on the CU's core.
func (p *Poller) Tick() {
	for {
		b, ok := p.src.ReadByte()
		if !ok {
			break
		}
		p.buf[p.active] = append(p.buf[p.active], b)
		if p.criteria.WantEOL && b == p.criteria.EOLByte {
			p.sawEOL = true
		}
	}

	if p.armed && p.ready() {
		p.flush()
	}
}

func (p *Poller) ready() bool {
	if p.sawEOL {
		return true
	}
	buf := p.buf[p.active]
	if p.criteria.MinBytes > 0 && uint16(len(buf)) >= p.criteria.MinBytes {
		return true
	}
	if p.criteria.Deadline > 0 && time.Since(p.armedAt) >= p.criteria.Deadline {
		return true
	}
	return false
}

// flush copies the active buffer into the shared scratch area and
// hands it to hldev, then swaps to the other buffer for the next span.
func (p *Poller) flush() {
	buf := p.buf[p.active]
	n := uint32(len(buf))
	if n > p.scratchSize {
		n = p.scratchSize
	}
	copy(p.mem.At(p.scratchAddr, n), buf[:n])

	p.active ^= 1
	p.buf[p.active] = p.buf[p.active][:0]
	p.armed = false
	p.sawEOL = false

	p.h.SendFinal(p.scratchAddr, uint16(n))
}

// Pending reports how many bytes the active buffer currently holds,
// for diagnostics.
func (p *Poller) Pending() int {
	return len(p.buf[p.active])
}
