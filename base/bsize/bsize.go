/*
 * picochan - bsize window-size codec
 *
 * Copyright 2026, Picochan Contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package bsize implements the lossy 8-bit encoding of a 16-bit buffer
// window size used to advertise read/write room in a single wire-protocol
// payload byte.
package bsize

// Size is the 8-bit encoded form of a 16-bit window size.
type Size uint8

// Zero is the encoding of a window size of 0.
const Zero Size = 0

const (
	flagMask  = 0xc0
	bandBand0 = 0x00
	bandBand1 = 0x40
	bandBand2 = 0x80
	bandBand3 = 0xc0

	// MaxValue is the largest size value that Encode can represent
	// (losslessly or otherwise) without returning the overflow sentinel.
	MaxValue = 4736

	// Overflow is returned by Encode for n > MaxValue.
	Overflow Size = 0xff
)

// Decode expands an 8-bit encoded Size back to its (possibly rounded down)
// 16-bit value.
func Decode(e Size) uint16 {
	n := uint16(e) & 0x3f
	switch uint8(e) & flagMask {
	case bandBand0:
		return n
	case bandBand1:
		return (n + 32) << 1
	case bandBand2:
		return (n + 24) << 3
	default: // bandBand3
		return (n + 11) << 6
	}
}

// Encode picks the smallest band that contains n and returns its encoded
// form. n > MaxValue encodes to Overflow.
func Encode(n uint16) Size {
	e, _ := EncodeExact(n)
	return e
}

// EncodeExact behaves like Encode but also reports whether the round trip
// through Decode reproduces n exactly.
func EncodeExact(n uint16) (Size, bool) {
	switch {
	case n <= 63:
		return Size(n), true
	case n <= 191:
		e := Size(((n >> 1) - 32) | 0x40)
		return e, n&1 == 0
	case n <= 703:
		e := Size(((n >> 3) - 24) | 0x80)
		return e, n&7 == 0
	case n <= MaxValue:
		e := Size(((n >> 6) - 11) | 0xc0)
		return e, n&0x3f == 0
	default:
		return Overflow, false
	}
}
