package cu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbeattie/picochan/base/proto"
)

func TestPushPopTxListSingle(t *testing.T) {
	c := NewCU(1, 4, nil, nil)

	wasEmpty := c.pushTxList(2)
	assert.True(t, wasEmpty)

	ua, ok := c.popTxList()
	assert.True(t, ok)
	assert.Equal(t, proto.UnitAddr(2), ua)
	assert.False(t, c.Devib(2).Queued())

	_, ok = c.popTxList()
	assert.False(t, ok)
}

func TestPushTxListOrderFIFO(t *testing.T) {
	c := NewCU(1, 4, nil, nil)

	wasEmpty := c.pushTxList(0)
	assert.True(t, wasEmpty)
	wasEmpty = c.pushTxList(1)
	assert.False(t, wasEmpty)
	wasEmpty = c.pushTxList(3)
	assert.False(t, wasEmpty)

	assert.True(t, c.Devib(0).Queued())
	assert.True(t, c.Devib(1).Queued())
	// Devib(3) is the current tail: Queued() is ambiguous with "never
	// queued" for exactly this position, so it isn't asserted here.

	for _, want := range []proto.UnitAddr{0, 1, 3} {
		ua, ok := c.popTxList()
		assert.True(t, ok)
		assert.Equal(t, want, ua)
	}
	_, ok := c.popTxList()
	assert.False(t, ok)
}
