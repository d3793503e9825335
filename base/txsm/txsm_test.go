package txsm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbeattie/picochan/base/txsm"
)

type fakeStarter struct {
	addr  uint32
	count uint32
	calls int
}

func (f *fakeStarter) StartSrcData(addr uint32, count uint32) {
	f.addr = addr
	f.count = count
	f.calls++
}

func TestRunNoOpWhenIdle(t *testing.T) {
	var x txsm.TxSM
	f := &fakeStarter{}

	assert.Equal(t, txsm.NoOp, txsm.Run(&x, f))
	assert.Equal(t, 0, f.calls)
	assert.False(t, x.Busy())
}

func TestRunBareCommandReportsNoOp(t *testing.T) {
	// A tx completion with nothing set pending: a command-only packet
	// (e.g. Room, RequestRead) has no trailing data phase, so Run
	// reports NoOp and the sequencer stays Idle.
	var x txsm.TxSM
	f := &fakeStarter{}

	assert.Equal(t, txsm.NoOp, txsm.Run(&x, f))
	assert.Equal(t, txsm.Idle, x.State())
}

func TestSetPendingThenRunStartsDataAndFinishes(t *testing.T) {
	var x txsm.TxSM
	f := &fakeStarter{}

	x.SetPending(0x1000, 64)
	assert.Equal(t, txsm.Pending, x.State())
	assert.True(t, x.Busy())

	res := txsm.Run(&x, f)
	assert.Equal(t, txsm.Acted, res)
	assert.Equal(t, txsm.Sending, x.State())
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, uint32(0x1000), f.addr)
	assert.Equal(t, uint32(64), f.count)

	res = txsm.Run(&x, f)
	assert.Equal(t, txsm.Finished, res)
	assert.Equal(t, txsm.Idle, x.State())
	assert.False(t, x.Busy())
	assert.Equal(t, 1, f.calls)
}
