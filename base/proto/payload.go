/*
 * picochan - packet payload interpretations
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package proto

import "github.com/mbeattie/picochan/base/bsize"

// Payload is the two payload bytes of a packet, before a command-specific
// interpretation is applied.
type Payload struct {
	P0, P1 uint8
}

// MakeCountPayload encodes n as the big-endian count payload used by
// Room, Data and RequestRead packets. Counts are the one field in the
// whole wire protocol carried big-endian, a holdover from their
// architected 16-bit origin.
func MakeCountPayload(n uint16) Payload {
	return Payload{P0: uint8(n >> 8), P1: uint8(n)}
}

// Count decodes a big-endian count payload.
func (p Payload) Count() uint16 {
	return uint16(p.P0)<<8 | uint16(p.P1)
}

// MakeDevStatusPayload encodes an UpdateStatus payload: a device-status
// byte plus a bsize-encoded advertised window.
func MakeDevStatusPayload(devs DevStatus, esize bsize.Size) Payload {
	return Payload{P0: uint8(devs), P1: uint8(esize)}
}

// DevStatusDevs extracts the device-status byte of an UpdateStatus
// payload.
func (p Payload) DevStatusDevs() DevStatus {
	return DevStatus(p.P0)
}

// DevStatusEsize extracts the bsize-encoded advertised window of an
// UpdateStatus payload.
func (p Payload) DevStatusEsize() bsize.Size {
	return bsize.Size(p.P1)
}

// DecodeEsize decodes the bsize-encoded window carried in P1, used by
// both the Start payload (immediate-write length) and the UpdateStatus
// payload (advertised window).
func (p Payload) DecodeEsize() uint16 {
	return bsize.Decode(bsize.Size(p.P1))
}

// MakeStartPayload encodes a Start payload: the CCW command byte plus a
// bsize-encoded immediate-write length (0 if none).
func MakeStartPayload(ccwCmd uint8, immediateLen uint16) Payload {
	return Payload{P0: ccwCmd, P1: uint8(bsize.Encode(immediateLen))}
}
