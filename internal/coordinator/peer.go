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

// Package coordinator implements the role coordinator: spawning the
// counterpart process for Host/Client mode, the stdout readiness handshake,
// CPU affinity pinning, and graceful-then-forced teardown.
package coordinator

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/hashicorp/go-uuid"

	"github.com/redhat-performance/rusty-comms/internal/idur"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/logging"
)

// RunIDEnvVar names the environment variable a spawned counterpart finds its
// per-run correlation id under, so parent and child log lines can be tied
// together by grepping one value out of two separate log streams.
const RunIDEnvVar = "RUSTY_COMMS_RUN_ID"

// ReadyByte is the single byte the child writes to its standard output once
// its transport is bound and ready to accept.
const ReadyByte = 0x01

// SignalReady writes the readiness byte to os.Stdout. Called by the child
// process after its transport server is listening.
func SignalReady() error {
	_, err := os.Stdout.Write([]byte{ReadyByte})
	return err
}

// Coordinator spawns and tears down counterpart processes for Host/Client
// mode tests.
type Coordinator struct {
	log logging.Logger
}

// New builds a Coordinator that logs through log.
func New(log logging.Logger) *Coordinator {
	return &Coordinator{log: log}
}

// Peer is a spawned counterpart process, past its readiness handshake.
type Peer struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	runID  string
	log    logging.Logger
}

// Spawn starts binary with args, on a pipe to its stdout, and blocks up to
// handshakeTimeout for the readiness byte. A freshly generated correlation
// id is appended to env under RunIDEnvVar so the child's own log lines can
// be tied back to this Spawn call without parsing pids.
func (c *Coordinator) Spawn(ctx context.Context, binary string, args []string, env []string, handshakeTimeout idur.Duration) (*Peer, error) {
	runID, err := uuid.GenerateUUID()
	if err != nil {
		runID = ""
	}

	cmd := exec.Command(binary, args...)
	cmd.Env = env
	if runID != "" {
		cmd.Env = append(cmd.Env, RunIDEnvVar+"="+runID)
	}
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, ierrs.ProcessSpawnFailed.New(err)
	}

	if err := cmd.Start(); err != nil {
		return nil, ierrs.ProcessSpawnFailed.New(err)
	}

	p := &Peer{cmd: cmd, stdout: stdout, runID: runID}
	if c.log != nil {
		p.log = c.log.WithFields(logging.Fields{"run_id": runID, "pid": p.Pid()})
	}

	if err := p.awaitReady(ctx, handshakeTimeout); err != nil {
		_ = p.kill()
		return nil, err
	}

	return p, nil
}

// RunID returns the correlation id generated for this peer at Spawn time,
// or "" if uuid generation failed (never fatal; the child then gets no
// RunIDEnvVar entry).
func (p *Peer) RunID() string { return p.runID }

func (p *Peer) awaitReady(ctx context.Context, timeout idur.Duration) error {
	type result struct {
		err error
	}
	done := make(chan result, 1)

	go func() {
		buf := make([]byte, 1)
		_, err := io.ReadFull(p.stdout, buf)
		if err != nil {
			done <- result{err: ierrs.HandshakeTimeout.New(err)}
			return
		}
		if buf[0] != ReadyByte {
			done <- result{err: ierrs.HandshakeTimeout.Newf("child wrote unexpected readiness byte 0x%02x", buf[0])}
			return
		}
		done <- result{}
	}()

	deadlineCtx, cancel := context.WithTimeout(ctx, timeout.Time())
	defer cancel()

	select {
	case r := <-done:
		return r.err
	case <-deadlineCtx.Done():
		return ierrs.HandshakeTimeout.Newf("no readiness byte within %s", timeout)
	}
}

// Wait blocks until the child process exits on its own. Callers use either
// Wait or Terminate, never both — exec.Cmd.Wait may only be collected once.
func (p *Peer) Wait() error {
	return p.cmd.Wait()
}

// Output returns the child's stdout stream positioned just after the
// readiness byte. Used in Host mode to read back the result a Client-mode
// counterpart reports after it finishes serving.
func (p *Peer) Output() io.Reader {
	return p.stdout
}

// Pid returns the child process's pid.
func (p *Peer) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Terminate asks the child to exit by sending SIGTERM, then waits up to
// grace before forcibly killing it. A child that exits within grace,
// including one that dies from the SIGTERM itself, yields its wait result
// with the SIGTERM death reported as nil. Closing the child's
// own transport/sending it a Terminate envelope is the driver's
// responsibility; this only handles the OS-process half.
func (c *Coordinator) Terminate(p *Peer, grace idur.Duration) error {
	if p.cmd.Process == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		_ = p.cmd.Process.Kill()
		return <-done
	}

	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() && ws.Signal() == syscall.SIGTERM {
				return nil
			}
		}
		return err
	case <-time.After(grace.Time()):
		if p.log != nil {
			p.log.Warnf("peer pid %d did not exit within grace window, killing", p.Pid())
		}
		_ = p.cmd.Process.Kill()
		return <-done
	}
}

func (p *Peer) kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil {
		return err
	}
	<-reap(p.cmd)
	return nil
}

// reap waits for the process to be collected, so a caller that just sent it
// a signal doesn't have to duplicate the Wait bookkeeping.
func reap(cmd *exec.Cmd) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	return done
}
