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

package driver

import (
	"context"
	"time"

	"golang.org/x/sys/unix"

	"github.com/redhat-performance/rusty-comms/internal/config"
	"github.com/redhat-performance/rusty-comms/internal/envelope"
	"github.com/redhat-performance/rusty-comms/internal/histogram"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/latency"
	"github.com/redhat-performance/rusty-comms/internal/transport"
)

// nowNs is the single call site for "now" in the measurement loop. It
// reads CLOCK_MONOTONIC, which on Linux is one clock for every process on
// the host, so stamps taken by both processes of a Host/Client run are
// comparable.
func nowNs() int64 {
	var ts unix.Timespec
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	return ts.Nano()
}

// workerOutcome is one worker's contribution to a direction's result: its
// own histogram plus the raw counts the driver needs for throughput.
type workerOutcome struct {
	hist         *histogram.Histogram
	sent         uint64
	bytes        uint64
	droppedCount uint64
}

// runSenderOneWay drives the active side of a one-way test: it only sends;
// the passive responder on the other end is the one recording latency, so
// this returns no histogram of its own.
func runSenderOneWay(ctx context.Context, ep transport.Endpoint, cfg config.TestConfig, workerID uint32, deadline time.Time) (sent uint64, bytes uint64, err error) {
	payload := envelope.NewPayload(cfg.MessageSize)

	for i := uint64(0); i < cfg.Warmup; i++ {
		if err := sendOneWay(ctx, ep, workerID, i, payload); err != nil {
			return sent, bytes, err
		}
	}

	if err := sendOneWay(ctx, ep, workerID, 0, payload); err != nil {
		return sent, bytes, err
	}

	seq := uint64(1)
	for {
		if cfg.Termination.Duration <= 0 && sent >= cfg.Termination.Count {
			break
		}
		if cfg.Termination.Duration > 0 && !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		if err := sendOneWay(ctx, ep, workerID, seq, payload); err != nil {
			return sent, bytes, err
		}
		sent++
		bytes += uint64(len(payload))
		seq++
		if err := pace(ctx, cfg); err != nil {
			return sent, bytes, err
		}
	}

	return sent, bytes, sendTerminate(ctx, ep, workerID)
}

// runSenderRoundTrip drives both the request and the await-reply half of a
// round-trip test; the sender is the side that records latency here.
func runSenderRoundTrip(ctx context.Context, ep transport.Endpoint, cfg config.TestConfig, workerID uint32, deadline time.Time) (workerOutcome, error) {
	out := workerOutcome{hist: histogram.New()}
	payload := envelope.NewPayload(cfg.MessageSize)

	for i := uint64(0); i < cfg.Warmup; i++ {
		if _, err := roundTrip(ctx, ep, workerID, i, payload); err != nil {
			return out, err
		}
	}

	canary, err := roundTrip(ctx, ep, workerID, 0, payload)
	if err != nil {
		return out, err
	}
	if cfg.IncludeFirstMessage {
		record(out.hist, canary)
		out.sent++
		out.bytes += uint64(len(payload))
	}

	// measured counts only the loop's round trips: the canary accounted
	// above is additive to the configured count, never consumed by it.
	seq := uint64(1)
	var measured uint64
	for {
		if cfg.Termination.Duration <= 0 && measured >= cfg.Termination.Count {
			break
		}
		if cfg.Termination.Duration > 0 && !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		tripCtx := ctx
		var cancel context.CancelFunc
		if cfg.Termination.Duration > 0 && !deadline.IsZero() {
			tripCtx, cancel = context.WithDeadline(ctx, deadline.Add(cfg.GraceTimeout.Time()))
		}
		sample, err := roundTrip(tripCtx, ep, workerID, seq, payload)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			if cfg.Termination.Duration > 0 {
				// Discard the in-flight request rather than report it, so a
				// reply that straggles in past the deadline never skews the
				// latency statistics.
				break
			}
			return out, err
		}

		record(out.hist, sample)
		measured++
		out.sent++
		out.bytes += uint64(len(payload))
		seq++
		if err := pace(ctx, cfg); err != nil {
			return out, err
		}
	}

	return out, sendTerminate(ctx, ep, workerID)
}

func record(h *histogram.Histogram, s latency.Sample) {
	h.Record(s.LatencyNs())
}

func pace(ctx context.Context, cfg config.TestConfig) error {
	if cfg.SendDelay <= 0 {
		return nil
	}
	t := time.NewTimer(cfg.SendDelay.Time())
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sendOneWay(ctx context.Context, ep transport.Endpoint, workerID uint32, id uint64, payload []byte) error {
	env := envelope.Envelope{
		ID:              id,
		SendTimestampNs: uint64(nowNs()),
		WorkerID:        workerID,
		Kind:            envelope.OneWay,
		Payload:         payload,
	}
	return ep.Send(ctx, env)
}

func roundTrip(ctx context.Context, ep transport.Endpoint, workerID uint32, id uint64, payload []byte) (latency.Sample, error) {
	sendNs := nowNs()
	req := envelope.Envelope{
		ID:              id,
		SendTimestampNs: uint64(sendNs),
		WorkerID:        workerID,
		Kind:            envelope.Request,
		Payload:         payload,
	}
	if err := ep.Send(ctx, req); err != nil {
		return latency.Sample{}, err
	}

	reply, err := ep.Recv(ctx)
	if err != nil {
		return latency.Sample{}, err
	}
	if reply.ID != id || reply.Kind != envelope.Reply {
		return latency.Sample{}, ierrs.ProtocolMismatch.Newf("worker %d: expected reply id %d, got id %d kind %d", workerID, id, reply.ID, reply.Kind)
	}
	if len(reply.Payload) != len(payload) {
		return latency.Sample{}, ierrs.ProtocolMismatch.Newf("worker %d: reply payload length %d, want %d", workerID, len(reply.Payload), len(payload))
	}

	return latency.Sample{
		ID:       id,
		WorkerID: workerID,
		SendNs:   sendNs,
		RecvNs:   nowNs(),
		Kind:     envelope.Reply,
	}, nil
}

func sendTerminate(ctx context.Context, ep transport.Endpoint, workerID uint32) error {
	env := envelope.Envelope{Kind: envelope.Terminate, WorkerID: workerID, SendTimestampNs: uint64(nowNs())}
	if err := ep.Send(ctx, env); err != nil {
		// The peer may have already gone away on its own; that's not a
		// failure of this worker's measurement.
		if ierrs.KindOf(err) == ierrs.PeerClosed {
			return nil
		}
		return err
	}
	return nil
}

// runResponder is the passive side of a connection: it echoes Request
// envelopes as Reply (round-trip mode) and records latency for OneWay
// envelopes (one-way mode, where the receiver is the side that measures).
// It returns cleanly on a Terminate envelope or on the peer closing the
// transport.
func runResponder(ctx context.Context, ep transport.Endpoint, cfg config.TestConfig, sink *latency.Sink, hist *histogram.Histogram) (droppedAtSink uint64, sent uint64, bytes uint64, err error) {
	var received uint64
	for {
		in, rerr := ep.Recv(ctx)
		if rerr != nil {
			if ierrs.KindOf(rerr) == ierrs.PeerClosed || ctx.Err() != nil {
				return sinkDropped(sink), sent, bytes, nil
			}
			return sinkDropped(sink), sent, bytes, rerr
		}

		switch in.Kind {
		case envelope.Terminate:
			return sinkDropped(sink), sent, bytes, nil

		case envelope.Request:
			reply := envelope.Envelope{
				ID:              in.ID,
				SendTimestampNs: in.SendTimestampNs,
				EchoTimestampNs: uint64(nowNs()),
				WorkerID:        in.WorkerID,
				Kind:            envelope.Reply,
				Payload:         in.Payload,
			}
			if err := ep.Send(ctx, reply); err != nil {
				return sinkDropped(sink), sent, bytes, err
			}

		case envelope.OneWay:
			recvNs := nowNs()
			received++
			// The sender's warmup loop (cfg.Warmup messages) and canary
			// (the next one) carry no tag of their own; the receiver only
			// knows their position in the stream, which matches the
			// sender's fixed warmup-then-canary-then-measurement order.
			isWarmup := received <= cfg.Warmup
			isCanary := received == cfg.Warmup+1
			discard := isWarmup || (isCanary && !cfg.IncludeFirstMessage)
			if !discard && hist != nil {
				s := latency.Sample{ID: in.ID, WorkerID: in.WorkerID, SendNs: int64(in.SendTimestampNs), RecvNs: recvNs, Kind: in.Kind}
				hist.Record(s.LatencyNs())
				sent++
				bytes += uint64(len(in.Payload))
				if sink != nil {
					sink.Push(s)
				}
			}
		}
	}
}

func sinkDropped(sink *latency.Sink) uint64 {
	if sink == nil {
		return 0
	}
	return sink.Dropped()
}
