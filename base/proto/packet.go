/*
 * picochan - 4-byte wire packet
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package proto

import "github.com/mbeattie/picochan/base/bsize"

// Packet is the 4-byte command packet exchanged over a dmachan link. It
// has no endianness concerns of its own: each field is a single byte.
type Packet struct {
	Chop     Chop
	UnitAddr UnitAddr
	P0, P1   uint8
}

// MakePacket builds a packet from a chop byte, unit address and payload.
func MakePacket(chop Chop, ua UnitAddr, p Payload) Packet {
	return Packet{Chop: chop, UnitAddr: ua, P0: p.P0, P1: p.P1}
}

// MakeCountPacket builds a packet whose payload is a big-endian count.
func MakeCountPacket(chop Chop, ua UnitAddr, count uint16) Packet {
	return MakePacket(chop, ua, MakeCountPayload(count))
}

// MakeEsizePacket builds a packet whose payload carries a bsize-encoded
// size in P1 and leaves P0 at zero.
func MakeEsizePacket(chop Chop, ua UnitAddr, size uint16) Packet {
	return Packet{Chop: chop, UnitAddr: ua, P1: uint8(bsize.Encode(size))}
}

// Payload extracts the payload bytes of the packet.
func (p Packet) Payload() Payload {
	return Payload{P0: p.P0, P1: p.P1}
}

// Count decodes the packet's payload as a big-endian count, valid for
// Room, Data and RequestRead packets.
func (p Packet) Count() uint16 {
	return p.Payload().Count()
}

// DecodeEsizePayload decodes the packet's P1 byte as a bsize-encoded
// size.
func (p Packet) DecodeEsizePayload() uint16 {
	return bsize.Decode(bsize.Size(p.P1))
}

// Bytes serialises the packet to its 4-byte wire form.
func (p Packet) Bytes() [4]byte {
	return [4]byte{byte(p.Chop), byte(p.UnitAddr), p.P0, p.P1}
}

// ParsePacket reconstructs a packet from its 4-byte wire form.
func ParsePacket(b [4]byte) Packet {
	return Packet{
		Chop:     Chop(b[0]),
		UnitAddr: UnitAddr(b[1]),
		P0:       b[2],
		P1:       b[3],
	}
}

// ResetByte is the single distinguished byte value sent outside any
// packet framing to signal a link reset. Its particular value is a
// convention both peers must agree on; it has no other significance.
const ResetByte byte = 0x5a
