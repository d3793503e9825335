/*
 * picochan - tx pending state machine
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

// Package txsm implements the two-step "send a command packet, then
// optionally stream the data that follows it" sequencer shared by the
// CSS and CU engines.
package txsm

// State is one of the three states of a tx pending sequencer.
type State uint8

const (
	Idle State = iota
	Pending
	Sending
)

// RunResult reports what Run did.
type RunResult uint8

const (
	NoOp RunResult = iota
	Acted
	Finished
)

// DataStarter is the subset of a dmachan tx channel that Run needs to
// kick off a data transfer. It is satisfied by *dmachan.TxChannel.
type DataStarter interface {
	StartSrcData(addr uint32, count uint32)
}

// TxSM is the tx pending state machine: a command completion that has
// data queued behind it transitions Idle->Pending->Sending->Idle.
type TxSM struct {
	state State
	addr  uint32
	count uint16
}

// State returns the current state.
func (x *TxSM) State() State {
	return x.state
}

// Busy reports whether the sequencer has unfinished business (Pending or
// Sending); it is not Idle.
func (x *TxSM) Busy() bool {
	return x.state != Idle
}

// SetPending records (addr, count) for the next Run to pick up. Callers
// must be in Idle state (which Run guarantees by the time a new command
// packet is ready to go out).
func (x *TxSM) SetPending(addr uint32, count uint16) {
	x.addr = addr
	x.count = count
	x.state = Pending
}

// Run advances the state machine on a tx completion from the link. It
// returns NoOp if there was nothing pending (a bare command's completion),
// Acted if it just launched the data DMA, and Finished once that data
// transfer has completed.
func Run(x *TxSM, tx DataStarter) RunResult {
	switch x.state {
	case Sending:
		x.state = Idle
		return Finished
	case Pending:
		x.state = Sending
		tx.StartSrcData(x.addr, uint32(x.count))
		return Acted
	default:
		return NoOp
	}
}
