package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbeattie/picochan/base/trace"
)

func TestWriteNoOpWhenDisabled(t *testing.T) {
	bs := trace.NewBufferset(trace.MagicCSS, 64, 2)
	bs.Write(trace.RTCSSCUIRQ, 1, []byte{1, 2, 3})
	assert.Equal(t, uint32(0), bs.Header.CurrentBufferPos)
}

func TestWriteAppendsAndAligns(t *testing.T) {
	bs := trace.NewBufferset(trace.MagicCU, 64, 2)
	bs.SetEnable(true)

	// SetEnable(true) itself wrote a record: header(8) + 1 byte data,
	// rounded up to 12.
	assert.Equal(t, uint32(12), bs.Header.CurrentBufferPos)

	bs.Write(trace.RTCUIRQ, 2, []byte{0xaa, 0xbb, 0xcc})
	// header(8) + 3 bytes = 11, rounded up to 12: total 24.
	assert.Equal(t, uint32(24), bs.Header.CurrentBufferPos)

	rec := bs.Buffers[0][12:]
	assert.Equal(t, byte(trace.RTCUIRQ), rec[7])
	assert.Equal(t, byte(0xaa), rec[8])
}

func TestWriteSwitchesBufferOnOverflowAndNotifies(t *testing.T) {
	bs := trace.NewBufferset(trace.MagicCSS, 16, 3)
	bs.SetEnable(true) // consumes 12 of 16 bytes in buffer 0

	var vacated = -1
	bs.Notify = func(n int) { vacated = n }

	// This record (8+8=16, rounds to 16) does not fit in the 4 bytes
	// left in buffer 0, so it forces a switch to buffer 1.
	bs.Write(trace.RTCSSFunctionStart, 3, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	assert.Equal(t, uint32(1), bs.Header.CurrentBufferNum)
	assert.Equal(t, 0, vacated)
	assert.Equal(t, uint32(16), bs.Header.CurrentBufferPos)
}

func TestSwitchToNextBufferWraps(t *testing.T) {
	bs := trace.NewBufferset(trace.MagicCU, 16, 2)
	bs.SwitchToNextBuffer()
	assert.Equal(t, uint32(1), bs.Header.CurrentBufferNum)
	bs.SwitchToNextBuffer()
	assert.Equal(t, uint32(0), bs.Header.CurrentBufferNum)
}

func TestHeaderMarshalBinarySize(t *testing.T) {
	h := trace.Header{Magic: trace.MagicCSS, BufferSize: 1024, NumBuffers: 2, IRQNum: -1}
	b := h.MarshalBinary()
	assert.Len(t, b, trace.HeaderSize)
}
