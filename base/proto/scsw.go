/*
 * picochan - subchannel status word layout
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package proto

// CtrlFlags is the 16-bit Function Control / Activity Control / Status
// Control / Write-indicator field of an SCSW.
type CtrlFlags uint16

const (
	CtrlWrite CtrlFlags = 0x8000 // current CCW is Write-type

	FCMask  CtrlFlags = 0x7000
	FCStart CtrlFlags = 0x4000
	FCHalt  CtrlFlags = 0x2000
	FCClear CtrlFlags = 0x1000

	ACMask             CtrlFlags = 0x0fe0
	ACResumePending    CtrlFlags = 0x0800
	ACStartPending     CtrlFlags = 0x0400
	ACHaltPending      CtrlFlags = 0x0200
	ACClearPending     CtrlFlags = 0x0100
	ACSubchannelActive CtrlFlags = 0x0080
	ACDeviceActive     CtrlFlags = 0x0040
	ACSuspended        CtrlFlags = 0x0020

	SCMask         CtrlFlags = 0x001f
	SCAlert        CtrlFlags = 0x0010
	SCIntermediate CtrlFlags = 0x0008
	SCPrimary      CtrlFlags = 0x0004
	SCSecondary    CtrlFlags = 0x0002
	SCPending      CtrlFlags = 0x0001
)

// Has reports whether all bits of want are set.
func (c CtrlFlags) Has(want CtrlFlags) bool {
	return c&want == want
}

// Any reports whether any bit of want is set.
func (c CtrlFlags) Any(want CtrlFlags) bool {
	return c&want != 0
}

// Schs is the one-byte subchannel error-status field of an SCSW.
type Schs uint8

const (
	SchsPCI                   Schs = 0x80
	SchsIncorrectLength       Schs = 0x40
	SchsProgramCheck          Schs = 0x20
	SchsProtectionCheck       Schs = 0x10
	SchsChannelDataCheck      Schs = 0x08
	SchsChannelControlCheck   Schs = 0x04
	SchsInterfaceControlCheck Schs = 0x02
	SchsChainingCheck         Schs = 0x01
)

// SCSW is the 12-byte Subchannel Status Word.
type SCSW struct {
	UnusedFlags uint8
	UserFlags   uint8
	CtrlFlags   CtrlFlags
	CCWAddr     uint32
	// Devs holds device-status bits once status-pending; while
	// status-pending is clear it instead scratches the flags byte of
	// the CCW currently in flight.
	Devs  uint8
	Schs  Schs
	Count uint16
}
