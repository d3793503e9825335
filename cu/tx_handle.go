/*
 * picochan - CU tx dispatch: building and sending outgoing packets
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package cu

import (
	"github.com/mbeattie/picochan/base/bsize"
	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/base/trace"
	"github.com/mbeattie/picochan/base/txsm"
)

// QueueUpdateStatus builds an UpdateStatus command for ua and queues it
// (sending immediately if the tx side is otherwise idle). esize is the
// device's own advertised window for its next read/write, bsize-encoded
// before transmission. DeviceEnd in devs also clears the devib's Started
// flag.
func (c *CU) QueueUpdateStatus(ua proto.UnitAddr, devs proto.DevStatus, esize uint16) {
	d := c.Devib(ua)
	if esize > bsize.MaxValue {
		panic("cu: QueueUpdateStatus: esize exceeds encodable range")
	}
	if devs.Has(proto.DevsDeviceEnd) {
		d.Flags &^= FlagStarted
	}

	d.Op = proto.ChopUpdateStatus
	d.Payload = proto.MakeDevStatusPayload(devs, bsize.Encode(esize))
	c.enqueue(ua)
}

// QueueDataCommand builds a Data command sending count bytes from addr
// and queues it. responseRequired asks the CSS to reply with a Room
// packet once it has consumed the data; skip sends a Data command with
// no payload bytes, telling the CSS to treat them as implicit zeroes.
func (c *CU) QueueDataCommand(ua proto.UnitAddr, addr uint32, count uint16, responseRequired bool, skip bool) {
	d := c.Devib(ua)
	if d.Flags.Has(FlagCmdWrite) {
		panic("cu: QueueDataCommand: device is mid command-write")
	}
	if count > d.Size {
		panic("cu: QueueDataCommand: count exceeds advertised window")
	}
	if c.txsm.Busy() {
		panic("cu: QueueDataCommand: tx sequencer is already busy")
	}

	d.Op = proto.ChopData
	d.Addr = addr
	var flags proto.ChopFlags
	if responseRequired {
		flags |= proto.FlagResponseRequired
	}
	if skip {
		flags |= proto.FlagSkip
	}
	d.Payload = proto.MakeCountPayload(count)
	d.Flags |= flagsFromChop(flags)

	c.enqueue(ua)
	if !skip {
		c.txsm.SetPending(addr, count)
	}
}

// QueueRequestRead builds a RequestRead command for ua and queues it.
func (c *CU) QueueRequestRead(ua proto.UnitAddr, count uint16) {
	d := c.Devib(ua)
	d.Op = proto.ChopRequestRead
	d.Payload = proto.MakeCountPayload(count)
	c.enqueue(ua)
}

// flagsFromChop stashes a command's chop flags into the devib flags
// byte between building the packet and actually sending it; the only
// bit tx_handle cares about later is whether Skip was set.
func flagsFromChop(f proto.ChopFlags) Flags {
	var out Flags
	if f&proto.FlagSkip != 0 {
		out |= pendingSkip
	}
	return out
}

const pendingSkip Flags = 0x40 // scratch bit: this queued Data command carries FlagSkip

func (c *CU) enqueue(ua proto.UnitAddr) {
	wasEmpty := c.pushTxList(ua)
	if wasEmpty {
		c.sendPacket(ua)
	}
}

// makePacket builds the wire packet for ua's currently pending Op.
func (c *CU) makePacket(ua proto.UnitAddr) proto.Packet {
	d := c.Devib(ua)
	var flags proto.ChopFlags
	if d.Flags.Has(pendingSkip) {
		flags |= proto.FlagSkip
	}
	chop := proto.MakeChop(d.Op, flags)
	return proto.MakePacket(chop, ua, d.Payload)
}

// sendPacket transmits ua's pending command packet over the tx
// cmdbuf channel.
func (c *CU) sendPacket(ua proto.UnitAddr) {
	pkt := c.makePacket(ua)
	c.Tx.Cmdbuf = pkt.Bytes()
	c.trace(trace.RTCUTxMakePacket, c.Tx.Cmdbuf[:])
	c.Tx.StartSrcCmdbuf()
}

// HandleTxIRQ drives the CU's tx side on a tx-channel completion: it
// runs the tx-pending sequencer (which may kick off a data DMA that
// must complete on a later call), and once a command's entire sequence
// has finished, pops the queue and invokes the callback if one was
// waiting on this completion.
func (c *CU) HandleTxIRQ() {
	st := c.Tx.HandleTxIRQ()
	if !st.Complete {
		return
	}

	if res := txsm.Run(&c.txsm, c.Tx); res == txsm.Acted {
		return // data phase launched; wait for its own completion
	}

	ua, ok := c.popTxList()
	if !ok {
		return
	}
	d := c.Devib(ua)
	d.Flags &^= pendingSkip
	if d.Flags.Has(FlagTxCallback) {
		d.Flags &^= FlagTxCallback
		d.callback()(c, ua, ReasonTxComplete)
	}
	c.tryTxNextCommand()
}
