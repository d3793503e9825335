/*
 * picochan - CU tx command queue
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package cu

import "github.com/mbeattie/picochan/base/proto"

// pushTxList appends ua to the tail of the tx command queue and reports
// whether the queue was empty beforehand (in which case the caller must
// kick off sending immediately, since there is no tx-complete
// interrupt to do it for them).
func (c *CU) pushTxList(ua proto.UnitAddr) (wasEmpty bool) {
	d := c.Devib(ua)
	d.Next = ua // mark as tail: not-on-list sentinel until linked below

	if c.txHead == nil {
		head := ua
		c.txHead = &head
		return true
	}

	tail := c.Devib(*c.txHead)
	for tail.Next != tail.UA {
		tail = c.Devib(tail.Next)
	}
	tail.Next = ua
	return false
}

// popTxList removes and returns the head of the tx command queue, or
// (0, false) if it is empty.
func (c *CU) popTxList() (proto.UnitAddr, bool) {
	if c.txHead == nil {
		return 0, false
	}
	head := *c.txHead
	d := c.Devib(head)
	next := d.Next
	d.Next = head // removed: self-pointing sentinel

	if next == head {
		c.txHead = nil
	} else {
		c.txHead = &next
	}
	return head, true
}

// tryTxNextCommand sends the head of the tx queue, if any, by building
// and transmitting its packet over the cmdbuf channel.
func (c *CU) tryTxNextCommand() {
	if c.txHead == nil {
		return
	}
	c.sendPacket(*c.txHead)
}
