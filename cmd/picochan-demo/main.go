/*
 * picochan - demo CLI: hosted rehearsal of a CSS/CU memchan link
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/mbeattie/picochan/base/dmachan"
	"github.com/mbeattie/picochan/base/proto"
	"github.com/mbeattie/picochan/config/devconfig"
	"github.com/mbeattie/picochan/css"
	"github.com/mbeattie/picochan/cu"
	"github.com/mbeattie/picochan/devices/cardkb"
	logger "github.com/mbeattie/picochan/util/logger"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "picochan.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Enable debug logging")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	if *optDebug {
		programLevel.Set(slog.LevelDebug)
	}
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, optDebug))
	slog.SetDefault(Logger)

	Logger.Info("picochan-demo started")

	cfg, err := devconfig.Load(*optConfig)
	if err != nil {
		Logger.Error("loading configuration", "error", err.Error())
		os.Exit(1)
	}
	if len(cfg.CHPs) == 0 {
		Logger.Error("configuration names no channel paths")
		os.Exit(1)
	}

	// Only the first CHP is brought up: this binary exists to rehearse
	// the CSS/CU split on one host process, not to multiplex real
	// hardware backends (those need a real board).
	chpCfg := cfg.CHPs[0]
	if chpCfg.Backend != "memchan" {
		Logger.Error("demo binary only drives a memchan CHP", "backend", chpCfg.Backend)
		os.Exit(1)
	}

	mem := make(dmachan.FlatMemory, 1<<16)
	var lock sync.Mutex

	chp, cuTx, cuRx := css.ConfigureMemchan(0, chpCfg.FirstSID, chpCfg.NumDevices, mem, &lock)
	sys := css.NewCSS()
	sys.ClaimCHP(chp)
	sys.Start(func(sid proto.SID, intparm uint32, scsw proto.SCSW) {
		Logger.Info("status pending", "sid", sid, "intparm", intparm, "devs", scsw.Devs, "schs", scsw.Schs)
	}, 0, 1, 2, 3, 4, 5, 6, 7)

	c := cu.NewCU(1, chpCfg.NumDevices, cuTx, cuRx)

	var pollers []*cardkb.Poller
	for _, dev := range chpCfg.Devices {
		chp.Schibs[dev.UA].PMCW.Flags |= proto.Enabled
		switch dev.Model {
		case "cardkb":
			p := cardkb.Attach(c, dev.UA, newStdinSource(), uint32(0x1000)+uint32(dev.UA)*256, 256, cardkb.DefaultCriteria())
			pollers = append(pollers, p)
		default:
			Logger.Warn("no demo binding for model, device left unattached", "model", dev.Model, "ua", dev.UA)
		}
	}

	chp.Start()
	c.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-sigChan:
			Logger.Info("got quit signal")
			break loop
		case <-ticker.C:
			chp.HandleTxIRQ()
			chp.HandleRxIRQ()
			c.HandleTxIRQ()
			c.HandleRxIRQ()
			for _, p := range pollers {
				p.Tick()
			}
			sys.DrainPendingInterruptions()
		}
	}

	Logger.Info("shutting down")
}

// stdinSource adapts os.Stdin to cardkb.Source: a reader goroutine
// feeds a buffered channel, matching the teacher's own
// goroutine-reads-stdin-into-a-channel shape, and ReadByte drains it
// non-blockingly so Tick never stalls waiting on keyboard input.
type stdinSource struct {
	ch chan byte
}

func newStdinSource() *stdinSource {
	s := &stdinSource{ch: make(chan byte, 256)}
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := os.Stdin.Read(buf)
			for i := 0; i < n; i++ {
				s.ch <- buf[i]
			}
			if err != nil {
				return
			}
		}
	}()
	return s
}

func (s *stdinSource) ReadByte() (byte, bool) {
	select {
	case b := <-s.ch:
		return b, true
	default:
		return 0, false
	}
}
