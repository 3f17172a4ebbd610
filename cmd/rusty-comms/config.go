/*
 * MIT License
 *
 * Copyright (c) 2026 rusty-comms authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"github.com/redhat-performance/rusty-comms/internal/config"
	"github.com/redhat-performance/rusty-comms/internal/idur"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// parseMechanisms expands the repeated -m/--mechanism values into an
// ordered, deduplicated mechanism list, with "all" expanding to
// config.All().
func parseMechanisms(values []string) ([]config.Mechanism, error) {
	seen := make(map[config.Mechanism]bool)
	var out []config.Mechanism

	add := func(m config.Mechanism) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}

	for _, v := range values {
		if v == "all" {
			for _, m := range config.All() {
				add(m)
			}
			continue
		}
		m := config.Mechanism(v)
		if !m.Valid() {
			return nil, ierrs.ConfigInvalid.Newf("unknown mechanism %q", v)
		}
		add(m)
	}

	if len(out) == 0 {
		return nil, ierrs.ConfigInvalid.Newf("at least one mechanism must be selected")
	}
	return out, nil
}

// parseTermination resolves the mutually exclusive -i/--msg-count and
// -d/--duration flags into a config.Termination, defaulting to a fixed
// 10000-message count when the operator gave neither.
func parseTermination(msgCountSet, durationSet bool, msgCount uint64, durationStr string) (config.Termination, error) {
	if msgCountSet && durationSet {
		return config.Termination{}, ierrs.ConfigInvalid.Newf("--msg-count and --duration are mutually exclusive")
	}
	if durationSet {
		d, err := idur.Parse(durationStr)
		if err != nil {
			return config.Termination{}, ierrs.ConfigInvalid.Newf("invalid --duration %q: %v", durationStr, err)
		}
		return config.Termination{Duration: d}, nil
	}
	if msgCountSet {
		return config.Termination{Count: msgCount}, nil
	}
	return config.Termination{Count: 10000}, nil
}

// resolveDirections applies the --one-way/--no-one-way and
// --round-trip/--no-round-trip toggle pairs: the "no-" flag always wins
// when both members of a pair are given.
func resolveDirections(oneWay, noOneWay, roundTrip, noRoundTrip bool) (bool, bool) {
	ow := oneWay && !noOneWay
	rt := roundTrip && !noRoundTrip
	return ow, rt
}

// buildConfigs turns f into one config.TestConfig per selected mechanism,
// layering the parsed flags over config.Defaults and validating each.
// msgCountChanged/durationChanged report whether the operator actually
// passed -i/-d, since both flags carry zero values indistinguishable from
// "unset" otherwise.
func buildConfigs(f *cliFlags, msgCountChanged, durationChanged bool) ([]config.TestConfig, error) {
	mechanisms, err := parseMechanisms(f.mechanisms)
	if err != nil {
		return nil, err
	}

	term, err := parseTermination(msgCountChanged, durationChanged, f.msgCount, f.duration)
	if err != nil {
		return nil, err
	}

	oneWay, roundTrip := resolveDirections(f.oneWay, f.noOneWay, f.roundTrip, f.noRoundTrip)

	var sendDelay idur.Duration
	if f.sendDelay != "" {
		sendDelay, err = idur.Parse(f.sendDelay)
		if err != nil {
			return nil, ierrs.ConfigInvalid.Newf("invalid --send-delay %q: %v", f.sendDelay, err)
		}
	}

	mode := config.Mode(f.mode)
	switch mode {
	case config.InProcess, config.Host, config.Client:
	default:
		return nil, ierrs.ConfigInvalid.Newf("unknown --mode %q", f.mode)
	}

	ipcPath := f.ipcPath
	if ipcPath == "" {
		ipcPath = defaultIPCPath()
	}

	configs := make([]config.TestConfig, 0, len(mechanisms))
	for _, m := range mechanisms {
		c := config.Defaults(m)
		c.Mode = mode
		c.MessageSize = f.messageSize
		c.Warmup = f.warmup
		c.Termination = term
		c.Concurrency = f.concurrency
		c.OneWay = oneWay
		c.RoundTrip = roundTrip
		c.SendDelay = sendDelay
		c.Percentiles = append([]float64(nil), f.percentiles...)
		c.BufferSize = f.bufferSize
		c.IPCPath = ipcPath
		c.ShmName = f.shmName
		c.Host = f.host
		c.Port = f.port
		c.PMQPriority = f.pmqPriority
		c.IncludeFirstMessage = f.includeFirstMessage
		c.ContinueOnError = f.continueOnError
		c.ServerAffinity = f.serverAffinity
		c.ClientAffinity = f.clientAffinity

		if err := c.Validate(); err != nil {
			return nil, ierrs.ConfigInvalid.Newf("mechanism %s: %v", m, err)
		}
		configs = append(configs, c)
	}

	return configs, nil
}
