package cu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeattie/picochan/base/dmachan"
	"github.com/mbeattie/picochan/base/proto"
)

// deliverCmdbuf pushes pkt into c's rx channel as if it had just arrived
// over the link, and runs the CU's rx dispatch on it.
func deliverCmdbuf(c *CU, remoteTx *dmachan.TxChannel, pkt proto.Packet) {
	remoteTx.Cmdbuf = pkt.Bytes()
	remoteTx.StartSrcCmdbuf()
	c.HandleRxIRQ()
}

func TestHandleRxStartReadTypeInvokesCallbackImmediately(t *testing.T) {
	c, remoteTx, _ := newLoopbackCU(1, 4)
	c.Start()
	ua := proto.UnitAddr(0)

	var gotReason CallbackReason
	idx := RegisterUnusedDevibCallback(func(c *CU, ua proto.UnitAddr, reason CallbackReason) {
		gotReason = reason
	})
	c.Devib(ua).Cbindex = idx

	pkt := proto.MakePacket(proto.MakeChop(proto.ChopStart, 0), ua, proto.MakeStartPayload(0 /* read cmd, even */, 0))
	deliverCmdbuf(c, remoteTx, pkt)

	assert.Equal(t, ReasonStart, gotReason)
	assert.True(t, c.Devib(ua).Flags.Has(FlagStarted))
	assert.False(t, c.Devib(ua).Flags.Has(FlagCmdWrite))
}

func TestHandleRxStartWriteWithImmediateBytesDefersCallback(t *testing.T) {
	c, remoteTx, _ := newLoopbackCU(1, 4)
	c.Start()
	ua := proto.UnitAddr(1)
	addr := uint32(200)
	c.SetReceiveAddr(ua, addr)

	var called int
	var gotReason CallbackReason
	idx := RegisterUnusedDevibCallback(func(c *CU, ua proto.UnitAddr, reason CallbackReason) {
		called++
		gotReason = reason
	})
	c.Devib(ua).Cbindex = idx

	immLen := uint16(4)
	pkt := proto.MakePacket(proto.MakeChop(proto.ChopStart, 0), ua, proto.MakeStartPayload(1 /* write cmd, odd */, immLen))
	remoteTx.Cmdbuf = pkt.Bytes()
	remoteTx.StartSrcCmdbuf()
	c.HandleRxIRQ()

	// callback deferred: data phase armed, not yet fired
	assert.Equal(t, 0, called)
	assert.True(t, c.Devib(ua).Flags.Has(FlagRxDataRequired))
	assert.True(t, c.Devib(ua).Flags.Has(FlagCmdWrite))

	payload := []byte{1, 2, 3, 4}
	srcAddr := uint32(900)
	copy(remoteTx.Mem.At(srcAddr, uint32(len(payload))), payload)
	remoteTx.StartSrcData(srcAddr, uint32(len(payload)))
	c.HandleRxIRQ()

	require.Equal(t, 1, called)
	assert.Equal(t, ReasonStart, gotReason)
	assert.False(t, c.Devib(ua).Flags.Has(FlagRxDataRequired))
	assert.Equal(t, payload, c.Rx.Mem.At(addr, uint32(len(payload))))
}

func TestHandleRxDataCmdArmsDataPhase(t *testing.T) {
	c, remoteTx, _ := newLoopbackCU(1, 4)
	c.Start()
	ua := proto.UnitAddr(2)
	addr := uint32(300)
	c.SetReceiveAddr(ua, addr)

	pkt := proto.MakeCountPacket(proto.MakeChop(proto.ChopData, 0), ua, 2)
	deliverCmdbuf(c, remoteTx, pkt)

	payload := []byte{7, 8}
	srcAddr := uint32(910)
	copy(remoteTx.Mem.At(srcAddr, uint32(len(payload))), payload)
	remoteTx.StartSrcData(srcAddr, uint32(len(payload)))
	c.HandleRxIRQ()

	assert.Equal(t, payload, c.Rx.Mem.At(addr, uint32(len(payload))))
}

func TestHandleRxDataCmdSkipZeroesLocallyWithoutLink(t *testing.T) {
	c, remoteTx, _ := newLoopbackCU(1, 4)
	c.Start()
	ua := proto.UnitAddr(3)
	addr := uint32(400)
	c.SetReceiveAddr(ua, addr)
	for i := range c.Rx.Mem.At(addr, 4) {
		c.Rx.Mem.At(addr, 4)[i] = 0xff
	}

	pkt := proto.MakeCountPacket(proto.MakeChop(proto.ChopData, proto.FlagSkip), ua, 4)
	remoteTx.Cmdbuf = pkt.Bytes()
	remoteTx.StartSrcCmdbuf()
	c.HandleRxIRQ()

	assert.Equal(t, []byte{0, 0, 0, 0}, c.Rx.Mem.At(addr, 4))
}

func TestHandleRxRoomUpdatesSizeAndInvokesCallback(t *testing.T) {
	c, remoteTx, _ := newLoopbackCU(1, 4)
	c.Start()
	ua := proto.UnitAddr(0)

	var gotReason CallbackReason
	idx := RegisterUnusedDevibCallback(func(c *CU, ua proto.UnitAddr, reason CallbackReason) {
		gotReason = reason
	})
	c.Devib(ua).Cbindex = idx

	pkt := proto.MakeCountPacket(proto.MakeChop(proto.ChopRoom, 0), ua, 256)
	deliverCmdbuf(c, remoteTx, pkt)

	assert.Equal(t, ReasonRoom, gotReason)
	assert.Equal(t, uint16(256), c.AdvertisedWindow(ua))
}
