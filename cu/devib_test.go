package cu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeattie/picochan/base/proto"
)

func TestFlagsHas(t *testing.T) {
	f := FlagStarted | FlagCmdWrite
	assert.True(t, f.Has(FlagStarted))
	assert.True(t, f.Has(FlagCmdWrite))
	assert.False(t, f.Has(FlagTraced))
	assert.True(t, f.Has(FlagStarted|FlagCmdWrite))
}

func TestNewDevibNotQueued(t *testing.T) {
	d := NewDevib(5)
	assert.Equal(t, proto.UnitAddr(5), d.UA)
	assert.False(t, d.Queued())
	assert.Equal(t, DefaultCallbackIndex, d.Cbindex)
}

func TestQueuedTracksNextLink(t *testing.T) {
	d := NewDevib(3)
	d.Next = 7
	assert.True(t, d.Queued())
	d.Next = 3
	assert.False(t, d.Queued())
}

func TestDefaultCallbackRejectsAndStatuses(t *testing.T) {
	c, _, _ := newLoopbackCU(9, 4)
	ua := proto.UnitAddr(1)

	defaultCallback(c, ua, ReasonStart)

	d := c.Devib(ua)
	assert.True(t, d.Sense.Flags.Has(proto.SenseCommandReject))
	require.NotNil(t, c.txHead)
	assert.Equal(t, ua, *c.txHead)
}

func TestDefaultCallbackIgnoresTxComplete(t *testing.T) {
	c := NewCU(9, 4, nil, nil)
	ua := proto.UnitAddr(2)

	defaultCallback(c, ua, ReasonTxComplete)

	d := c.Devib(ua)
	assert.Equal(t, proto.None, d.Sense)
	assert.Nil(t, c.txHead)
}

func TestRegisterDevibCallbackPanicsOnOccupiedIndex(t *testing.T) {
	idx := RegisterUnusedDevibCallback(func(*CU, proto.UnitAddr, CallbackReason) {})
	assert.Panics(t, func() {
		RegisterDevibCallback(idx, func(*CU, proto.UnitAddr, CallbackReason) {})
	})
}
