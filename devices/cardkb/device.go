package cardkb

import (
	"time"

	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/cu"
	"github.com/mbeattie/picochan/hldev"
)

// CmdRead is the CCW command byte a channel program uses to read a
// span of accumulated keyboard bytes. It must be even (Read-type).
const CmdRead uint8 = 2

// Attach registers ua's devib on c as a cardkb device backed by src,
// returning the Poller the caller must Tick() periodically. Every Read
// CCW arms the poller with crit and flushes once it's satisfied.
func Attach(c *cu.CU, ua proto.UnitAddr, src Source, scratchAddr, scratchSize uint32, crit Criteria) *Poller {
	p := NewPoller(src, c.Tx.Mem, scratchAddr, scratchSize)

	h := hldev.Configure(c, ua)
	h.Command(CmdRead, func(h *hldev.Config, reason hldev.Reason) {
		if reason != hldev.ReasonReady {
			return
		}
		p.Arm(h, crit)
	})

	return p
}

// DefaultCriteria flushes on a newline byte, or 200ms after the poller
// is armed, whichever comes first, matching a typical line-oriented
// keyboard input device.
func DefaultCriteria() Criteria {
	return Criteria{
		Deadline: 200 * time.Millisecond,
		EOLByte:  '\n',
		WantEOL:  true,
	}
}
