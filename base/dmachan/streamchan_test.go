package dmachan_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mbeattie/picochan/base/dmachan"
)

func TestStreamChanCmdbufRoundTrip(t *testing.T) {
	connA, connB := net.Pipe()
	defer connA.Close()
	defer connB.Close()

	tx := dmachan.NewStreamTx(connA)
	rx := dmachan.NewStreamRx(connB)

	rx.StartDstCmdbuf()

	tx.Cmdbuf = [4]byte{0x01, 0x02, 0x03, 0x04}
	tx.StartSrcCmdbuf()

	assert.Eventually(t, func() bool {
		return rx.HandleRxIRQ().Complete
	}, time.Second, time.Millisecond)

	assert.Equal(t, [4]byte{0x01, 0x02, 0x03, 0x04}, rx.Cmdbuf)

	assert.Eventually(t, func() bool {
		return tx.HandleTxIRQ().Complete
	}, time.Second, time.Millisecond)
}

func TestStreamChanDataTransfer(t *testing.T) {
	connA, connB := net.Pipe()
	defer connA.Close()
	defer connB.Close()

	srcMem := make(dmachan.FlatMemory, 16)
	copy(srcMem[0:4], []byte("ping"))
	dstMem := make(dmachan.FlatMemory, 16)

	tx := dmachan.NewStreamTx(connA)
	tx.Mem = srcMem
	rx := dmachan.NewStreamRx(connB)
	rx.Mem = dstMem

	rx.StartDstData(8, 4)
	tx.StartSrcData(0, 4)

	assert.Eventually(t, func() bool {
		return rx.HandleRxIRQ().Complete
	}, time.Second, time.Millisecond)

	assert.Equal(t, []byte("ping"), []byte(dstMem[8:12]))
}

func TestStreamChanPrepDstDataSrcZeroesIsImmediate(t *testing.T) {
	_, connB := net.Pipe()
	defer connB.Close()

	mem := make(dmachan.FlatMemory, 8)
	for i := range mem {
		mem[i] = 0xff
	}
	rx := dmachan.NewStreamRx(connB)
	rx.Mem = mem

	rx.PrepDstDataSrcZeroes(0, 4)
	st := rx.HandleRxIRQ()
	assert.True(t, st.Complete)
	assert.Equal(t, []byte{0, 0, 0, 0}, []byte(mem[0:4]))
}
