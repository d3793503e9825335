package dmachan_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbeattie/picochan/base/dmachan"
)

func TestMemChanCmdbufFirstArriverWaits(t *testing.T) {
	mem := make(dmachan.FlatMemory, 16)
	var lock sync.Mutex
	tx, _ := dmachan.NewMemChan(mem, &lock)

	tx.Cmdbuf = [4]byte{1, 2, 3, 4}
	tx.StartSrcCmdbuf()

	// No rx arrival yet: tx must not report completion.
	st := tx.HandleTxIRQ()
	assert.False(t, st.Complete)
}

func TestMemChanCmdbufSecondArriverCompletesBoth(t *testing.T) {
	mem := make(dmachan.FlatMemory, 16)
	var lock sync.Mutex
	tx, rx := dmachan.NewMemChan(mem, &lock)

	tx.Cmdbuf = [4]byte{9, 8, 7, 6}
	tx.StartSrcCmdbuf() // first arriver: waits

	rx.StartDstCmdbuf() // second arriver: does the copy, wakes tx

	assert.Equal(t, [4]byte{9, 8, 7, 6}, rx.Cmdbuf)

	rxSt := rx.HandleRxIRQ()
	assert.True(t, rxSt.Complete)
	assert.True(t, rxSt.Raised)
	assert.False(t, rxSt.Forced)

	txSt := tx.HandleTxIRQ()
	assert.True(t, txSt.Complete)
	assert.True(t, txSt.Forced)
}

func TestMemChanDataTransferMovesBytes(t *testing.T) {
	mem := make(dmachan.FlatMemory, 64)
	copy(mem[0:8], []byte("deadbeef"))
	var lock sync.Mutex
	tx, rx := dmachan.NewMemChan(mem, &lock)

	rx.StartDstData(32, 8) // first arriver: waits
	tx.StartSrcData(0, 8)  // second arriver: does the copy

	assert.Equal(t, []byte("deadbeef"), []byte(mem[32:40]))

	txSt := tx.HandleTxIRQ()
	assert.True(t, txSt.Complete)

	rxSt := rx.HandleRxIRQ()
	assert.True(t, rxSt.Complete)
	assert.True(t, rxSt.Forced)
}

func TestMemChanDiscardConsumesDataSilently(t *testing.T) {
	mem := make(dmachan.FlatMemory, 64)
	copy(mem[0:4], []byte("xxxx"))
	var lock sync.Mutex
	tx, rx := dmachan.NewMemChan(mem, &lock)

	rx.StartDstDiscard(4)
	tx.StartSrcData(0, 4)

	txSt := tx.HandleTxIRQ()
	assert.True(t, txSt.Complete)
	rxSt := rx.HandleRxIRQ()
	assert.True(t, rxSt.Complete)
}

func TestMemChanPrepDstDataSrcZeroesIsLocal(t *testing.T) {
	mem := make(dmachan.FlatMemory, 16)
	for i := range mem {
		mem[i] = 0xff
	}
	var lock sync.Mutex
	_, rx := dmachan.NewMemChan(mem, &lock)

	rx.PrepDstDataSrcZeroes(4, 4)
	assert.Equal(t, []byte{0, 0, 0, 0}, []byte(mem[4:8]))

	st := rx.HandleRxIRQ()
	assert.True(t, st.Complete)
	assert.True(t, st.Raised)
	assert.False(t, st.Forced)
}

func TestMemChanResetWakesPeer(t *testing.T) {
	mem := make(dmachan.FlatMemory, 4)
	var lock sync.Mutex
	tx, rx := dmachan.NewMemChan(mem, &lock)

	tx.WriteSrcReset()
	rx.StartDstReset()

	st := rx.HandleRxIRQ()
	assert.True(t, st.Complete)
}
