/*
 * picochan - device-facing CU API
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package cu

import "github.com/mbeattie/picochan/base/proto"

// SetReceiveAddr records addr as where the next incoming write bytes
// for ua should land. A device must keep this current before its
// Start callback can be invoked for a write-type CCW with immediate
// data, since the CU arms the read using whatever address is already
// there.
func (c *CU) SetReceiveAddr(ua proto.UnitAddr, addr uint32) {
	c.Devib(ua).Addr = addr
}

// AdvertisedWindow returns the CSS-announced window size for ua's
// current CCW, as last reported by a Room command.
func (c *CU) AdvertisedWindow(ua proto.UnitAddr) uint16 {
	return c.Devib(ua).Size
}

// Sense returns ua's current sense block.
func (c *CU) Sense(ua proto.UnitAddr) proto.Sense {
	return c.Devib(ua).Sense
}

// SetSense records sense in ua's devib, where Sense reads it back. It
// is not sent over the link: QueueUpdateStatus transmits only the
// device-status byte and window.
func (c *CU) SetSense(ua proto.UnitAddr, sense proto.Sense) {
	c.Devib(ua).Sense = sense
}

// WantTxCallback asks for the device's callback to be invoked again
// (with ReasonTxComplete) once the currently queued command for ua has
// gone out over the link.
func (c *CU) WantTxCallback(ua proto.UnitAddr) {
	c.Devib(ua).Flags |= FlagTxCallback
}

// IsStopping reports whether the CU is shutting ua's device down.
func (c *CU) IsStopping(ua proto.UnitAddr) bool {
	return c.Devib(ua).Flags.Has(FlagStopping)
}
