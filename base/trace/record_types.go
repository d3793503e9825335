/*
 * picochan - trace record type enumeration
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package trace

// RecordType identifies what a trace record's data bytes contain. CSS
// and CU share one enumeration; a decoder picks the right field layout
// from the record type together with the bufferset's Magic.
type RecordType uint8

const (
	RTTraceEnable RecordType = iota

	// dmachan link trace points.
	RTDmachanDstCmdbufRemote
	RTDmachanDstCmdbufMem
	RTDmachanDstResetRemote
	RTDmachanDstResetMem
	RTDmachanDstDataRemote
	RTDmachanDstDataMem
	RTDmachanDstDiscardRemote
	RTDmachanDstDiscardMem
	RTDmachanSrcCmdbufRemote
	RTDmachanSrcCmdbufMem
	RTDmachanSrcResetRemote
	RTDmachanSrcDataRemote
	RTDmachanSrcDataMem
	RTDmachanMemchanTxCmd
	RTDmachanMemchanRxCmd
	RTDmachanForceIRQ
	RTDmachanDMAIRQ
	RTDmachanPiochanInit

	// CSS trace points.
	RTCSSCUIRQ
	RTCSSFunctionStart
	RTCSSSCHIBStore
	RTCSSInterruption

	// CU trace points.
	RTCUInit
	RTCUIRQ
	RTCURxStart
	RTCURxData
	RTCURxRoom
	RTCUTxMakePacket
	RTCUTxComplete

	// hldev helper trace points.
	RTHldevConfigInit
	RTHldevStart
	RTHldevReceiving
	RTHldevReceive
	RTHldevReceiveThen
	RTHldevSending
	RTHldevSend
	RTHldevSendThen
	RTHldevSendFinal
	RTHldevSendFinalThen
	RTHldevDevibCallback
	RTHldevEnd
)
