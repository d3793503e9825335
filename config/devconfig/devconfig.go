/*
 * picochan - devconfig: line-oriented channel-path/device config file
 *
 * Copyright 2026, Picochan Contributors
 * SPDX-License-Identifier: MIT
 */

// Package devconfig parses a small config file naming the channel
// paths a demo or firmware bring-up should configure and the devices
// attached to each.
//
// File format:
//
//	'#' starts a comment, rest of line ignored.
//	chp <backend> <firstsid> <numdevices> [arg=value]
//	dev <ua> <model> [option=value ...]
//
// A dev line attaches to the most recently seen chp line. backend is
// one of "memchan", "uart", "pio"; uart and pio require an "arg="
// giving the port path or PIO channel number.
package devconfig

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mbeattie/picochan/base/proto"
)

// DeviceConfig names one device attached to a CHP.
type DeviceConfig struct {
	UA      proto.UnitAddr
	Model   string
	Options map[string]string
}

// CHPConfig names one channel path and its devices.
type CHPConfig struct {
	Backend    string // "memchan", "uart", "pio"
	Arg        string // port path or pio channel number
	FirstSID   proto.SID
	NumDevices int
	Devices    []DeviceConfig
}

// Config is a fully parsed config file.
type Config struct {
	CHPs []CHPConfig
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a config file from r.
func Parse(r io.Reader) (*Config, error) {
	cfg := &Config{}
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := stripComment(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "chp":
			chp, err := parseCHP(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			cfg.CHPs = append(cfg.CHPs, *chp)

		case "dev":
			if len(cfg.CHPs) == 0 {
				return nil, fmt.Errorf("line %d: dev line before any chp line", lineNum)
			}
			dev, err := parseDev(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			last := &cfg.CHPs[len(cfg.CHPs)-1]
			last.Devices = append(last.Devices, *dev)

		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", lineNum, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}

func parseCHP(fields []string) (*CHPConfig, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("chp requires backend, firstsid, numdevices")
	}
	backend := strings.ToLower(fields[0])
	if backend != "memchan" && backend != "uart" && backend != "pio" {
		return nil, fmt.Errorf("unknown chp backend %q", backend)
	}

	sid, err := strconv.ParseUint(fields[1], 0, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid firstsid %q: %w", fields[1], err)
	}
	numDev, err := strconv.ParseUint(fields[2], 0, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid numdevices %q: %w", fields[2], err)
	}

	chp := &CHPConfig{
		Backend:    backend,
		FirstSID:   proto.SID(sid),
		NumDevices: int(numDev),
	}

	for _, kv := range fields[3:] {
		k, v, ok := splitOption(kv)
		if ok && k == "arg" {
			chp.Arg = v
		}
	}
	if (backend == "uart" || backend == "pio") && chp.Arg == "" {
		return nil, fmt.Errorf("backend %q requires arg=", backend)
	}
	return chp, nil
}

func parseDev(fields []string) (*DeviceConfig, error) {
	if len(fields) < 2 {
		return nil, fmt.Errorf("dev requires unit address and model")
	}
	ua, err := strconv.ParseUint(fields[0], 0, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid unit address %q: %w", fields[0], err)
	}

	dev := &DeviceConfig{
		UA:      proto.UnitAddr(ua),
		Model:   fields[1],
		Options: map[string]string{},
	}
	for _, kv := range fields[2:] {
		k, v, ok := splitOption(kv)
		if !ok {
			return nil, fmt.Errorf("malformed option %q, want key=value", kv)
		}
		dev.Options[k] = v
	}
	return dev, nil
}

func splitOption(kv string) (key, value string, ok bool) {
	i := strings.IndexByte(kv, '=')
	if i < 0 {
		return "", "", false
	}
	return kv[:i], kv[i+1:], true
}
