package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeattie/picochan/base/proto"
)

func TestPushPopFuncListSingle(t *testing.T) {
	chp := NewCHP(0, 0, 4, nil, nil)

	wasEmpty := chp.pushFuncList(2)
	assert.True(t, wasEmpty)

	ua, ok := chp.popFuncList()
	assert.True(t, ok)
	assert.Equal(t, proto.UnitAddr(2), ua)
	assert.False(t, chp.queued(2))

	_, ok = chp.popFuncList()
	assert.False(t, ok)
}

func TestPushFuncListOrderFIFO(t *testing.T) {
	chp := NewCHP(0, 0, 4, nil, nil)

	chp.pushFuncList(0)
	chp.pushFuncList(1)
	chp.pushFuncList(3)

	for _, want := range []proto.UnitAddr{0, 1, 3} {
		ua, ok := chp.popFuncList()
		require.True(t, ok)
		assert.Equal(t, want, ua)
	}
	_, ok := chp.popFuncList()
	assert.False(t, ok)
}

func TestRemoveFromFuncListHead(t *testing.T) {
	chp := NewCHP(0, 0, 4, nil, nil)
	chp.pushFuncList(0)
	chp.pushFuncList(1)
	chp.pushFuncList(2)

	chp.removeFromFuncList(0)

	require.NotNil(t, chp.funcHead)
	assert.Equal(t, proto.UnitAddr(1), *chp.funcHead)
	assert.False(t, chp.queued(0))

	for _, want := range []proto.UnitAddr{1, 2} {
		ua, ok := chp.popFuncList()
		require.True(t, ok)
		assert.Equal(t, want, ua)
	}
}

func TestRemoveFromFuncListTail(t *testing.T) {
	chp := NewCHP(0, 0, 4, nil, nil)
	chp.pushFuncList(0)
	chp.pushFuncList(1)
	chp.pushFuncList(2)

	chp.removeFromFuncList(2)
	assert.False(t, chp.queued(2))

	for _, want := range []proto.UnitAddr{0, 1} {
		ua, ok := chp.popFuncList()
		require.True(t, ok)
		assert.Equal(t, want, ua)
	}
	_, ok := chp.popFuncList()
	assert.False(t, ok)
}

func TestRemoveFromFuncListMiddle(t *testing.T) {
	chp := NewCHP(0, 0, 4, nil, nil)
	chp.pushFuncList(0)
	chp.pushFuncList(1)
	chp.pushFuncList(2)

	chp.removeFromFuncList(1)
	assert.False(t, chp.queued(1))

	for _, want := range []proto.UnitAddr{0, 2} {
		ua, ok := chp.popFuncList()
		require.True(t, ok)
		assert.Equal(t, want, ua)
	}
}

func TestRemoveFromFuncListSoleElement(t *testing.T) {
	chp := NewCHP(0, 0, 4, nil, nil)
	chp.pushFuncList(1)

	chp.removeFromFuncList(1)

	assert.Nil(t, chp.funcHead)
	_, ok := chp.popFuncList()
	assert.False(t, ok)
}

func TestRemoveFromFuncListNotQueuedIsNoOp(t *testing.T) {
	chp := NewCHP(0, 0, 4, nil, nil)
	chp.pushFuncList(0)

	// ua 3 was never pushed; removing it must not disturb the real list.
	chp.removeFromFuncList(3)

	ua, ok := chp.popFuncList()
	require.True(t, ok)
	assert.Equal(t, proto.UnitAddr(0), ua)
}

func TestContainsRange(t *testing.T) {
	chp := NewCHP(0, 100, 4, nil, nil)
	assert.True(t, chp.contains(100))
	assert.True(t, chp.contains(103))
	assert.False(t, chp.contains(99))
	assert.False(t, chp.contains(104))
}
