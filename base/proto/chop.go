/*
 * picochan - channel operation (chop) command and flag bits
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package proto

// ChopCmd is the 4-bit command occupying the low nibble of a Chop byte.
type ChopCmd uint8

const (
	ChopStart         ChopCmd = 0
	ChopRoom          ChopCmd = 1
	ChopData          ChopCmd = 2
	ChopUpdateStatus  ChopCmd = 3
	ChopRequestRead   ChopCmd = 4
	cmdMask                   = 0x0f
)

// ChopFlags is the 4-bit flags field occupying the high nibble of a Chop
// byte. The same bit carries different meaning depending on command and
// direction: on a CSS->CU Data packet, 0x40 means End (final segment); on
// a CU->CSS Data packet, 0x40 means ResponseRequired.
type ChopFlags uint8

const (
	FlagSkip             ChopFlags = 0x80 // Data: no bytes follow / implicit zeroes
	FlagEnd              ChopFlags = 0x40 // Data CSS->CU: final segment
	FlagResponseRequired ChopFlags = 0x40 // Data CU->CSS: reply with Room wanted
	FlagStop             ChopFlags = 0x20 // Data CSS->CU: error terminator
	flagMask                       = 0xf0
)

// Chop is the single command+flags byte of a packet.
type Chop uint8

// MakeChop packs a command and flags into a Chop byte.
func MakeChop(cmd ChopCmd, flags ChopFlags) Chop {
	return Chop(uint8(cmd)&cmdMask | uint8(flags)&flagMask)
}

// Cmd extracts the 4-bit command.
func (c Chop) Cmd() ChopCmd {
	return ChopCmd(c & cmdMask)
}

// Flags extracts the 4-bit flags field.
func (c Chop) Flags() ChopFlags {
	return ChopFlags(c & flagMask)
}

// Has reports whether all bits of want are set in the flags field.
func (c Chop) Has(want ChopFlags) bool {
	return ChopFlags(c)&want == want
}
