/*
 * picochan - CHP construction over the three dmachan backends
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package css

import (
	"sync"

	"github.com/mbeattie/picochan/base/dmachan"
	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/base/trace"
)

// ConfigureMemchan builds a CHP whose link to its CU peer is a
// core-to-core shared-memory rendezvous, and returns the mirrored
// TxChannel/RxChannel pair the CU side should be built from.
func ConfigureMemchan(chpid proto.ChpID, firstSID proto.SID, numDevices int, mem dmachan.FlatMemory, lock *sync.Mutex) (chp *CHP, peerTx *dmachan.TxChannel, peerRx *dmachan.RxChannel) {
	cssTx, cuRx := dmachan.NewMemChan(mem, lock)
	cuTx, cssRx := dmachan.NewMemChan(mem, lock)
	chp = NewCHP(chpid, firstSID, numDevices, cssTx, cssRx)
	return chp, cuTx, cuRx
}

// ConfigureUARTchan builds a CHP whose link rides a UART-style byte
// stream; conn is whatever opened, framed serial port the board
// bring-up code handed over.
func ConfigureUARTchan(chpid proto.ChpID, firstSID proto.SID, numDevices int, conn dmachan.StreamConn, mem dmachan.Memory) *CHP {
	tx := dmachan.NewStreamTx(conn)
	rx := dmachan.NewStreamRx(conn)
	tx.Mem, rx.Mem = mem, mem
	return NewCHP(chpid, firstSID, numDevices, tx, rx)
}

// ConfigurePIOchan builds a CHP whose link rides a PIO-clocked bit
// lane; conn adapts the board's PIO FIFO to a byte stream. The wire
// framing is identical to ConfigureUARTchan's; only the underlying
// byte transport differs.
func ConfigurePIOchan(chpid proto.ChpID, firstSID proto.SID, numDevices int, conn dmachan.StreamConn, mem dmachan.Memory) *CHP {
	return ConfigureUARTchan(chpid, firstSID, numDevices, conn, mem)
}

// SetTrace attaches (or detaches, passing nil) a trace bufferset to the
// path, toggling the Traced bit on every SCHIB it owns to match.
func (chp *CHP) SetTrace(bs *trace.Bufferset) {
	chp.Trace = bs
	chp.Tx.Trace, chp.Rx.Trace = bs, bs
	for i := range chp.Schibs {
		if bs != nil {
			chp.Schibs[i].PMCW.Flags |= proto.Traced
		} else {
			chp.Schibs[i].PMCW.Flags &^= proto.Traced
		}
	}
}
