/*
 * picochan - stream-based dmachan backend (UART and PIO bit-lane links)
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package dmachan

import (
	"io"
	"sync"

	"github.com/mbeattie/picochan/base/trace"
)

// StreamConn is the byte-stream a stream backend carries a link over.
// A UART link satisfies this with e.g. a *serial.Port opened 8N1 even
// parity with RTS/CTS flow control; a PIO-clocked bit-lane link
// satisfies it with whatever program-specific adapter turns PIO FIFO
// words into a byte stream. Baud configuration, PIO program loading
// and pin assignment are board bring-up concerns and live outside this
// package entirely.
type StreamConn interface {
	io.Reader
	io.Writer
}

// StreamTx is a dmachan tx endpoint that writes its cmdbuf and data
// phases directly onto a StreamConn, completing synchronously: there is
// no second core to race against, so every StreamTx operation reports
// Raised (a genuine, not forced, completion) as soon as the bytes are
// queued for write.
type StreamTx struct {
	mu   sync.Mutex
	conn StreamConn
	done bool
}

// NewStreamTx wraps conn as a tx endpoint.
func NewStreamTx(conn StreamConn) *TxChannel {
	return &TxChannel{Backend: &StreamTx{conn: conn}}
}

func (s *StreamTx) StartSrcCmdbuf(tx *TxChannel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	traceTx(tx, trace.RTDmachanSrcCmdbufRemote, tx.Cmdbuf[:])
	_, err := s.conn.Write(tx.Cmdbuf[:])
	s.done = err == nil
}

func (s *StreamTx) WriteSrcReset(tx *TxChannel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Write([]byte{ResetByte})
	s.done = err == nil
}

func (s *StreamTx) StartSrcData(tx *TxChannel, srcAddr uint32, count uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Write(tx.Mem.At(srcAddr, count))
	s.done = err == nil
}

func (s *StreamTx) HandleTxIRQ(tx *TxChannel) IRQState {
	s.mu.Lock()
	defer s.mu.Unlock()
	complete := s.done
	s.done = false
	return IRQState{Raised: complete, Complete: complete}
}

// StreamRx is the receive side of a StreamConn-backed link. Since a
// real UART/PIO read blocks until bytes arrive, reads happen on a
// background goroutine per armed operation; HandleRxIRQ polls a done
// channel without blocking, mirroring a real interrupt handler checking
// a hardware completion flag.
type StreamRx struct {
	mu   sync.Mutex
	conn StreamConn
	done chan struct{}
	err  error
}

// NewStreamRx wraps conn as an rx endpoint.
func NewStreamRx(conn StreamConn) *RxChannel {
	return &RxChannel{Backend: &StreamRx{conn: conn}}
}

func (s *StreamRx) armRead(buf []byte) {
	s.mu.Lock()
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		_, err := io.ReadFull(s.conn, buf)
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(done)
	}()
}

func (s *StreamRx) StartDstCmdbuf(rx *RxChannel) {
	s.armRead(rx.Cmdbuf[:])
}

func (s *StreamRx) StartDstReset(rx *RxChannel) {
	s.armRead(make([]byte, 1))
}

func (s *StreamRx) StartDstData(rx *RxChannel, dstAddr uint32, count uint32) {
	s.armRead(rx.Mem.At(dstAddr, count))
}

func (s *StreamRx) StartDstDiscard(rx *RxChannel, count uint32) {
	s.armRead(make([]byte, count))
}

// PrepDstDataSrcZeroes never touches the stream: the peer sent no
// bytes for this segment, so the zero fill happens immediately.
func (s *StreamRx) PrepDstDataSrcZeroes(rx *RxChannel, dstAddr uint32, count uint32) {
	buf := rx.Mem.At(dstAddr, count)
	for i := range buf {
		buf[i] = 0
	}
	s.mu.Lock()
	s.done = make(chan struct{})
	close(s.done)
	s.mu.Unlock()
}

// HandleRxIRQ reports Complete once the armed read has finished,
// without blocking if it hasn't.
func (s *StreamRx) HandleRxIRQ(rx *RxChannel) IRQState {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return IRQState{}
	}
	select {
	case <-done:
		s.mu.Lock()
		s.done = nil
		s.mu.Unlock()
		return IRQState{Raised: true, Complete: true}
	default:
		return IRQState{}
	}
}
