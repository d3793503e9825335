package css

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeattie/picochan/base/dmachan"
	"github.com/mbeattie/picochan/base/proto"
)

func TestSchModifyConditionCodes(t *testing.T) {
	c := newTestCSS(1, 2)
	sid := proto.SID(0)

	assert.Equal(t, CC3, c.SchModify(99, proto.PMCW{}))

	cc := c.SchModify(sid, proto.PMCW{Intparm: 0xbeef, Flags: proto.Enabled | 3})
	require.Equal(t, CC0, cc)
	s := c.schib(sid)
	assert.Equal(t, uint32(0xbeef), s.PMCW.Intparm)
	assert.Equal(t, uint8(3), s.PMCW.ISC())
	assert.True(t, s.PMCW.IsEnabled())

	s.SCSW.CtrlFlags |= proto.SCPending
	assert.Equal(t, CC1, c.SchModify(sid, proto.PMCW{}))
	s.SCSW.CtrlFlags = 0

	s.SCSW.CtrlFlags |= proto.FCStart
	assert.Equal(t, CC2, c.SchModify(sid, proto.PMCW{}))
}

func TestSchCancelConditionCodes(t *testing.T) {
	c := newTestCSS(1, 2)
	chp := c.chps[0]
	sid := proto.SID(0)

	assert.Equal(t, CC3, c.SchCancel(99))

	// Idle: no function running at all.
	assert.Equal(t, CC2, c.SchCancel(sid))

	// Subchannel already active: too late to cancel.
	s := c.schib(sid)
	s.SCSW.CtrlFlags = proto.FCStart | proto.ACSubchannelActive | proto.ACDeviceActive
	assert.Equal(t, CC2, c.SchCancel(sid))

	for _, ac := range []proto.CtrlFlags{proto.ACStartPending, proto.ACResumePending, proto.ACSuspended} {
		s.SCSW.CtrlFlags = proto.FCStart | ac
		chp.pushFuncList(proto.UnitAddr(sid))
		cc := c.SchCancel(sid)
		require.Equal(t, CC0, cc)
		assert.Equal(t, proto.CtrlFlags(0), s.SCSW.CtrlFlags)
		assert.False(t, chp.queued(proto.UnitAddr(sid)))
	}
}

func TestSchStoreReturnsSnapshot(t *testing.T) {
	c := newTestCSS(1, 2)
	sid := proto.SID(1)

	_, cc := c.SchStore(99)
	assert.Equal(t, CC3, cc)

	c.schib(sid).PMCW.Intparm = 0xcafe
	out, cc := c.SchStore(sid)
	require.Equal(t, CC0, cc)
	assert.Equal(t, uint32(0xcafe), out.PMCW.Intparm)
}

func TestSchResumeConditionCodes(t *testing.T) {
	// SchResume's success path re-dispatches through tryStartNext, which
	// needs a real Tx/Rx pair behind the CHP to fetch the resumed CCW
	// from, unlike the other API calls tested above.
	mem := make(dmachan.FlatMemory, 4096)
	var lock sync.Mutex
	chp, _, _ := ConfigureMemchan(0, 0, 1, mem, &lock)
	c := NewCSS()
	c.ClaimCHP(chp)
	sid := proto.SID(0)

	assert.Equal(t, CC3, c.SchResume(99))

	// Not suspended: nothing to resume.
	assert.Equal(t, CC2, c.SchResume(sid))

	s := c.schib(sid)
	s.SCSW.CtrlFlags |= proto.SCPending
	assert.Equal(t, CC1, c.SchResume(sid))
	s.SCSW.CtrlFlags = 0

	s.SCSW.CCWAddr = 8 // fetchResume re-reads ccw_addr-8
	s.SCSW.CtrlFlags = proto.FCStart | proto.ACSuspended
	cc := c.SchResume(sid)
	require.Equal(t, CC0, cc)
	assert.True(t, s.SCSW.CtrlFlags.Has(proto.ACSubchannelActive))
	assert.False(t, s.SCSW.CtrlFlags.Has(proto.ACSuspended | proto.ACResumePending))
}
