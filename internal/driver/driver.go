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

// Package driver orchestrates one mechanism's test run: building the
// transport, running warmup/canary/measurement across the enabled
// directions and workers, and assembling the result the aggregator prints
// or serializes.
package driver

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/redhat-performance/rusty-comms/internal/config"
	"github.com/redhat-performance/rusty-comms/internal/coordinator"
	"github.com/redhat-performance/rusty-comms/internal/histogram"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/latency"
	"github.com/redhat-performance/rusty-comms/internal/logging"
	"github.com/redhat-performance/rusty-comms/internal/result"
	"github.com/redhat-performance/rusty-comms/internal/transport"
	"github.com/redhat-performance/rusty-comms/internal/transport/pmq"
	"github.com/redhat-performance/rusty-comms/internal/transport/shm"
	"github.com/redhat-performance/rusty-comms/internal/transport/tcp"
	"github.com/redhat-performance/rusty-comms/internal/transport/uds"
)

// Options carries the parts of a run the caller owns rather than the
// config: a streaming sink to feed a live JSON/CSV writer, if one was
// requested.
type Options struct {
	Sink *latency.Sink
}

// Run executes cfg (both enabled directions, InProcess or Host mode) and
// returns its assembled result. Callers that loop over multiple mechanisms
// do the continue-on-error handling themselves; Run always reports exactly
// what happened to this one TestConfig.
func Run(ctx context.Context, cfg config.TestConfig, log logging.Logger, opts Options) result.TestResult {
	cfg, warned := cfg.Normalize()
	if warned && log != nil {
		log.Warnf("%s forces concurrency to 1", cfg.Mechanism)
	}

	res := result.TestResult{
		Mechanism:  cfg.Mechanism,
		TestConfig: cfg,
		StartTime:  time.Now(),
	}

	var rr roleResult
	var err error
	if cfg.Mode == config.Host {
		rr, err = runHost(ctx, cfg, log)
	} else {
		rr, err = runInProcessAll(ctx, cfg, log, opts)
	}

	res.EndTime = time.Now()
	if err != nil {
		res.Status = result.Failed
		res.FailureReason = err.Error()
		return res
	}

	res.OneWayResults = rr.OneWay
	res.RoundTripResults = rr.RoundTrip
	res.Status = result.Completed
	res.Summary = buildSummary(res, opts)
	return res
}

// roleResult is the pair of per-direction outcomes a Client-mode
// counterpart reports back to its Host over stdout, and also what the
// InProcess/Host runners above build up locally.
type roleResult struct {
	OneWay    *result.DirectionResult `json:"one_way,omitempty"`
	RoundTrip *result.DirectionResult `json:"round_trip,omitempty"`
}

func effectiveConcurrency(cfg config.TestConfig) int {
	switch cfg.Mechanism {
	case config.SHM, config.PMQ:
		return 1
	default:
		return cfg.Concurrency
	}
}

func deadlineFor(cfg config.TestConfig) time.Time {
	if cfg.Termination.Duration <= 0 {
		return time.Time{}
	}
	return time.Now().Add(cfg.Termination.Duration.Time())
}

// waitWorkers waits for wg, the way a normal run completes. If ctx is
// cancelled first, the workers get one grace window to unwind after their
// transport closes; a worker still running
// past that window is reported as ierrs.WorkersNotJoined rather than
// blocking the caller forever.
func waitWorkers(ctx context.Context, wg *sync.WaitGroup, grace time.Duration) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	select {
	case <-done:
		return nil
	case <-time.After(grace):
		return ierrs.WorkersNotJoined.Newf("workers did not join within %s of cancellation", grace)
	}
}

// pmqMaxMsgSize is the whole-envelope size a pmq message must hold: the
// fixed header plus the configured payload (a pmq datagram carries one
// envelope.Encode result with no extra framing).
func pmqMaxMsgSize(cfg config.TestConfig) int {
	return 33 + cfg.MessageSize
}

// pmqDepth derives a queue depth from BufferSize, clamped to the default
// Linux msg_max (10) an unprivileged mq_open is allowed without raising
// /proc/sys/fs/mqueue/msg_max.
func pmqDepth(cfg config.TestConfig) int {
	n := cfg.BufferSize / pmqMaxMsgSize(cfg)
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}
	return n
}

func buildServer(cfg config.TestConfig, roundTrip bool) (transport.Server, error) {
	switch cfg.Mechanism {
	case config.UDS:
		return uds.NewServer(cfg.IPCPath)
	case config.TCP:
		return tcp.NewServer(cfg.Host, cfg.Port)
	case config.SHM:
		return shm.NewServer(shm.Config{Name: cfg.ShmName, BufferSize: cfg.BufferSize, RoundTrip: roundTrip})
	case config.PMQ:
		return pmq.NewServer(pmq.Config{
			Name:       cfg.PMQName,
			Depth:      pmqDepth(cfg),
			MaxMsgSize: pmqMaxMsgSize(cfg),
			Priority:   uint(cfg.PMQPriority),
			RoundTrip:  roundTrip,
		})
	default:
		return nil, ierrs.ConfigInvalid.Newf("unsupported mechanism %q", cfg.Mechanism)
	}
}

func buildDialer(cfg config.TestConfig, roundTrip bool) (transport.Dialer, error) {
	switch cfg.Mechanism {
	case config.UDS:
		return uds.NewDialer(cfg.IPCPath), nil
	case config.TCP:
		return tcp.NewDialer(cfg.Host, cfg.Port), nil
	case config.SHM:
		return shm.NewDialer(shm.Config{Name: cfg.ShmName, BufferSize: cfg.BufferSize, RoundTrip: roundTrip}), nil
	case config.PMQ:
		return pmq.NewDialer(pmq.Config{
			Name:       cfg.PMQName,
			Depth:      pmqDepth(cfg),
			MaxMsgSize: pmqMaxMsgSize(cfg),
			Priority:   uint(cfg.PMQPriority),
			RoundTrip:  roundTrip,
		}), nil
	default:
		return nil, ierrs.ConfigInvalid.Newf("unsupported mechanism %q", cfg.Mechanism)
	}
}

func buildDirectionResult(hist *histogram.Histogram, sent, bytes uint64, elapsed time.Duration, percentiles []float64) *result.DirectionResult {
	var lat result.Latency
	if hist != nil {
		lat = hist.Stats(percentiles)
	}

	var mps, bps float64
	if secs := elapsed.Seconds(); secs > 0 {
		mps = float64(sent) / secs
		bps = float64(bytes) / secs
	}

	return &result.DirectionResult{
		Latency: lat,
		Throughput: result.Throughput{
			MessagesPerSecond: mps,
			BytesPerSecond:    bps,
			TotalMessages:     sent,
			TotalBytes:        bytes,
		},
	}
}

func percentileValue(lat result.Latency, want float64) int64 {
	for _, p := range lat.Percentiles {
		if p.Percentile == want {
			return p.ValueNs
		}
	}
	return 0
}

func buildSummary(res result.TestResult, opts Options) result.Summary {
	var sent, bytes uint64
	var lat result.Latency

	if res.OneWayResults != nil {
		sent += res.OneWayResults.Throughput.TotalMessages
		bytes += res.OneWayResults.Throughput.TotalBytes
		lat = res.OneWayResults.Latency
	}
	if res.RoundTripResults != nil {
		sent += res.RoundTripResults.Throughput.TotalMessages
		bytes += res.RoundTripResults.Throughput.TotalBytes
		lat = res.RoundTripResults.Latency
	}

	var mbps float64
	if secs := res.EndTime.Sub(res.StartTime).Seconds(); secs > 0 {
		mbps = (float64(bytes) * 8 / 1_000_000) / secs
	}

	var dropped uint64
	if opts.Sink != nil {
		dropped = opts.Sink.Dropped()
	}

	return result.Summary{
		TotalMessagesSent:      sent,
		TotalBytesTransferred:  bytes,
		AverageThroughputMbps:  mbps,
		P95LatencyNs:           percentileValue(lat, 95),
		P99LatencyNs:           percentileValue(lat, 99),
		DroppedStreamedSamples: dropped,
	}
}

// warnBackpressure surfaces the ring transport's once-only backpressure
// flag as a single operator warning at end of run. Mechanisms whose
// servers don't track the flag are skipped.
func warnBackpressure(srv transport.Server, cfg config.TestConfig, log logging.Logger) {
	bp, ok := srv.(interface{ BackpressureWarned() bool })
	if !ok || log == nil || !bp.BackpressureWarned() {
		return
	}
	log.Warnf("%s: sender outpaced receiver and waited for ring space", cfg.Mechanism)
}

func firstNonNil(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// pairOutcome is one worker's contribution to an InProcess direction: the
// latency histogram belongs to whichever side measures (the receiver for
// one-way, the sender for round-trip), merged by the caller
// across workers.
type pairOutcome struct {
	hist  *histogram.Histogram
	sent  uint64
	bytes uint64
	err   error
}

func runInProcessAll(ctx context.Context, cfg config.TestConfig, log logging.Logger, opts Options) (roleResult, error) {
	var rr roleResult

	if cfg.OneWay {
		d, err := runInProcessDirection(ctx, cfg, log, false, opts.Sink)
		if err != nil {
			return rr, err
		}
		rr.OneWay = d
	}
	if cfg.RoundTrip {
		d, err := runInProcessDirection(ctx, cfg, log, true, opts.Sink)
		if err != nil {
			return rr, err
		}
		rr.RoundTrip = d
	}
	return rr, nil
}

func runInProcessDirection(ctx context.Context, cfg config.TestConfig, log logging.Logger, roundTrip bool, sink *latency.Sink) (*result.DirectionResult, error) {
	srv, err := buildServer(cfg, roundTrip)
	if err != nil {
		return nil, err
	}
	defer srv.Close()

	workers := effectiveConcurrency(cfg)
	deadline := deadlineFor(cfg)
	outcomes := make([]pairOutcome, workers)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = runWorkerPairInProcess(ctx, srv, cfg, log, roundTrip, uint32(i), deadline, sink)
		}()
	}
	if err := waitWorkers(ctx, &wg, cfg.GraceTimeout.Time()); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	warnBackpressure(srv, cfg, log)

	merged := histogram.New()
	var sent, bytes uint64
	var workerErr error
	for _, o := range outcomes {
		if o.err != nil && workerErr == nil {
			workerErr = o.err
		}
		if o.hist != nil {
			merged.Merge(o.hist)
		}
		sent += o.sent
		bytes += o.bytes
	}
	if workerErr != nil {
		return nil, workerErr
	}

	return buildDirectionResult(merged, sent, bytes, elapsed, cfg.Percentiles), nil
}

// runWorkerPairInProcess runs one worker's server-side and client-side
// halves concurrently over a freshly accepted/dialed connection pair, and
// waits for both to finish. The sender always issues the closing Terminate
// envelope, which is what lets the responder goroutine return.
func runWorkerPairInProcess(ctx context.Context, srv transport.Server, cfg config.TestConfig, log logging.Logger, roundTrip bool, workerID uint32, deadline time.Time, sink *latency.Sink) pairOutcome {
	var out pairOutcome
	var acceptErr, sendErr error
	var responderHist *histogram.Histogram
	var respSent, respBytes uint64
	var rtOut workerOutcome

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		coordinator.PinOrWarn(log, cfg.ServerAffinity)
		ep, err := srv.Accept(ctx)
		if err != nil {
			acceptErr = err
			return
		}
		defer ep.Close()
		if !roundTrip {
			responderHist = histogram.New()
		}
		_, respSent, respBytes, acceptErr = runResponder(ctx, ep, cfg, sink, responderHist)
	}()

	go func() {
		defer wg.Done()
		coordinator.PinOrWarn(log, cfg.ClientAffinity)
		dialer, err := buildDialer(cfg, roundTrip)
		if err != nil {
			sendErr = err
			return
		}
		ep, err := dialer.Dial(ctx)
		if err != nil {
			sendErr = err
			return
		}
		defer ep.Close()

		if roundTrip {
			rtOut, sendErr = runSenderRoundTrip(ctx, ep, cfg, workerID, deadline)
		} else {
			_, _, sendErr = runSenderOneWay(ctx, ep, cfg, workerID, deadline)
		}
	}()

	joinErr := waitWorkers(ctx, &wg, cfg.GraceTimeout.Time())

	if roundTrip {
		out.hist = rtOut.hist
		out.sent = rtOut.sent
		out.bytes = rtOut.bytes
	} else {
		// The receiver is the measuring side for one-way traffic, so
		// its counts are authoritative: they match its histogram exactly,
		// canary handling included.
		out.hist = responderHist
		out.sent = respSent
		out.bytes = respBytes
	}

	out.err = firstNonNil(sendErr, acceptErr, joinErr)
	return out
}

// runHost spawns the Client-mode counterpart, drives the sender side of
// every enabled direction against it, then reads back the one-way latency
// stats the counterpart measured before tearing it down.
func runHost(ctx context.Context, cfg config.TestConfig, log logging.Logger) (roleResult, error) {
	var rr roleResult

	binary, err := coordinator.ResolveBinary()
	if err != nil {
		return rr, err
	}

	coord := coordinator.New(log)
	peer, err := coord.Spawn(ctx, binary, clientArgs(cfg), os.Environ(), cfg.HandshakeTimeout)
	if err != nil {
		return rr, err
	}

	coordinator.PinOrWarn(log, cfg.ClientAffinity)

	if cfg.OneWay {
		d, derr := runHostDirection(ctx, cfg, false)
		if derr != nil {
			_ = coord.Terminate(peer, cfg.GraceTimeout)
			return rr, derr
		}
		rr.OneWay = d
	}
	if cfg.RoundTrip {
		d, derr := runHostDirection(ctx, cfg, true)
		if derr != nil {
			_ = coord.Terminate(peer, cfg.GraceTimeout)
			return rr, derr
		}
		rr.RoundTrip = d
	}

	remote, rerr := readRoleResult(peer)
	if rerr != nil && log != nil {
		log.Warnf("client role result: %v", rerr)
	}

	if err := coord.Terminate(peer, cfg.GraceTimeout); err != nil {
		return rr, err
	}

	// The receiver measures one-way latency; the client process is
	// the receiver in Host mode, so its reported stats supersede the
	// host's own send-side counts when available.
	if remote != nil && remote.OneWay != nil {
		rr.OneWay = remote.OneWay
	}

	return rr, nil
}

func runHostDirection(ctx context.Context, cfg config.TestConfig, roundTrip bool) (*result.DirectionResult, error) {
	dialer, err := buildDialer(cfg, roundTrip)
	if err != nil {
		return nil, err
	}

	ep, err := dialWithRetry(ctx, dialer, cfg.HandshakeTimeout.Time())
	if err != nil {
		return nil, err
	}
	defer ep.Close()

	deadline := deadlineFor(cfg)
	start := time.Now()

	if roundTrip {
		out, err := runSenderRoundTrip(ctx, ep, cfg, 0, deadline)
		if err != nil {
			return nil, err
		}
		return buildDirectionResult(out.hist, out.sent, out.bytes, time.Since(start), cfg.Percentiles), nil
	}

	sent, bytes, err := runSenderOneWay(ctx, ep, cfg, 0, deadline)
	if err != nil {
		return nil, err
	}
	return buildDirectionResult(nil, sent, bytes, time.Since(start), cfg.Percentiles), nil
}

// dialWithRetry tolerates the brief window between the Client counterpart
// finishing one direction and it having rebuilt its transport for the
// next: Host mode runs both directions against a single spawned process,
// and only the first direction's start is covered by the readiness
// handshake.
func dialWithRetry(ctx context.Context, dialer transport.Dialer, timeout time.Duration) (transport.Endpoint, error) {
	giveUp := time.Now().Add(timeout)
	var lastErr error
	for {
		ep, err := dialer.Dial(ctx)
		if err == nil {
			return ep, nil
		}
		lastErr = err
		if time.Now().After(giveUp) {
			return nil, lastErr
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// clientArgs encodes cfg as the counterpart's whole invocation: a single
// base64 JSON blob rather than re-deriving every individual CLI flag, so
// the Host side and the flag parser only need to agree on one contract.
func clientArgs(cfg config.TestConfig) []string {
	child := cfg.Clone()
	child.Mode = config.Client

	enc, _ := json.Marshal(child)
	return []string{"--role", "client", "--config-json", base64.StdEncoding.EncodeToString(enc)}
}

// DecodeClientConfig reverses clientArgs' encoding. cmd/rusty-comms calls
// this when it sees --role client to recover the TestConfig the Host side
// built.
func DecodeClientConfig(b64 string) (config.TestConfig, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return config.TestConfig{}, ierrs.ConfigInvalid.Newf("invalid --config-json: %v", err)
	}
	var cfg config.TestConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return config.TestConfig{}, ierrs.ConfigInvalid.Newf("invalid --config-json: %v", err)
	}
	return cfg, nil
}

func readRoleResult(peer *coordinator.Peer) (*roleResult, error) {
	scanner := bufio.NewScanner(peer.Output())
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	var rr roleResult
	if err := json.Unmarshal(scanner.Bytes(), &rr); err != nil {
		return nil, err
	}
	return &rr, nil
}

// RunServerRole is the Client-mode entrypoint: it builds the transport
// server for each enabled direction, signals readiness once its first
// direction's server is listening, serves until the sender's Terminate
// envelope, and reports back the one-way latency it measured.
func RunServerRole(ctx context.Context, cfg config.TestConfig, log logging.Logger) error {
	coordinator.PinOrWarn(log, cfg.ServerAffinity)

	var rr roleResult
	ready := false

	if cfg.OneWay {
		d, err := serveDirection(ctx, cfg, log, false, &ready)
		if err != nil {
			return err
		}
		rr.OneWay = d
	}
	if cfg.RoundTrip {
		if _, err := serveDirection(ctx, cfg, log, true, &ready); err != nil {
			return err
		}
	}

	enc, err := json.Marshal(rr)
	if err != nil {
		return ierrs.IoError.New(err)
	}
	if _, err := os.Stdout.Write(append(enc, '\n')); err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}

func serveDirection(ctx context.Context, cfg config.TestConfig, log logging.Logger, roundTrip bool, ready *bool) (*result.DirectionResult, error) {
	srv, err := buildServer(cfg, roundTrip)
	if err != nil {
		return nil, err
	}
	defer srv.Close()

	if !*ready {
		if err := coordinator.SignalReady(); err != nil {
			return nil, ierrs.IoError.New(err)
		}
		*ready = true
	}

	workers := effectiveConcurrency(cfg)
	hists := make([]*histogram.Histogram, workers)
	sents := make([]uint64, workers)
	bytesRecv := make([]uint64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ep, err := srv.Accept(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			defer ep.Close()

			var hist *histogram.Histogram
			if !roundTrip {
				hist = histogram.New()
				hists[i] = hist
			}
			_, sents[i], bytesRecv[i], errs[i] = runResponder(ctx, ep, cfg, nil, hist)
		}()
	}
	if err := waitWorkers(ctx, &wg, cfg.GraceTimeout.Time()); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	warnBackpressure(srv, cfg, log)

	if err := firstNonNil(errs...); err != nil {
		return nil, err
	}

	if roundTrip {
		return nil, nil
	}

	merged := histogram.New()
	var sent, bytes uint64
	for i, h := range hists {
		if h != nil {
			merged.Merge(h)
		}
		sent += sents[i]
		bytes += bytesRecv[i]
	}
	return buildDirectionResult(merged, sent, bytes, elapsed, cfg.Percentiles), nil
}
