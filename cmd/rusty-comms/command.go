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
	"github.com/spf13/cobra"

	"github.com/redhat-performance/rusty-comms/internal/version"
)

// cliFlags is the whole flag surface, bound directly by pflag rather than
// through the pack's heavier viper/bubbletea command wrapper: this binary
// has no interactive prompts and no layered config file, just a flag set.
type cliFlags struct {
	mode        string
	mechanisms  []string
	messageSize int
	msgCount    uint64
	duration    string
	warmup      uint64
	concurrency int

	oneWay      bool
	noOneWay    bool
	roundTrip   bool
	noRoundTrip bool

	percentiles []float64
	bufferSize  int

	ipcPath     string
	shmName     string
	host        string
	port        int
	pmqPriority int

	sendDelay           string
	includeFirstMessage bool

	serverAffinity int
	clientAffinity int

	outputFile      string
	streamingJSON   string
	streamingCSV    string
	logFile         string
	verbosity       int
	continueOnError bool

	// role and configJSON back the hidden re-exec path coordinator.Spawn
	// uses for Host mode; a human invoking --mode client builds its
	// TestConfig from the flags above instead.
	role       string
	configJSON string
}

func newRootCommand() *cobra.Command {
	f := &cliFlags{}

	cmd := &cobra.Command{
		Use:           "rusty-comms",
		Short:         "Benchmark one-way and round-trip IPC latency/throughput across uds, tcp, shm and pmq",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.mode, "mode", "in-process", "process role: in-process, host or client")
	flags.StringArrayVarP(&f.mechanisms, "mechanism", "m", []string{"uds"}, "transport to exercise: uds, tcp, shm, pmq or all (repeatable)")
	flags.IntVarP(&f.messageSize, "message-size", "s", 1024, "payload size in bytes")
	flags.Uint64VarP(&f.msgCount, "msg-count", "i", 0, "number of messages to send (mutually exclusive with --duration)")
	flags.StringVarP(&f.duration, "duration", "d", "", "wall-clock duration to run, e.g. 2s, 500ms (mutually exclusive with --msg-count)")
	flags.Uint64VarP(&f.warmup, "warmup-iterations", "w", 1000, "warmup iterations discarded before measurement")
	flags.IntVarP(&f.concurrency, "concurrency", "c", 1, "worker count (forced to 1 for shm, with a warning)")

	flags.BoolVar(&f.oneWay, "one-way", true, "enable the one-way direction")
	flags.BoolVar(&f.noOneWay, "no-one-way", false, "disable the one-way direction")
	flags.BoolVar(&f.roundTrip, "round-trip", false, "enable the round-trip direction")
	flags.BoolVar(&f.noRoundTrip, "no-round-trip", false, "disable the round-trip direction")

	flags.Float64SliceVar(&f.percentiles, "percentiles", []float64{50, 95, 99, 99.9}, "latency percentiles to report")
	flags.IntVar(&f.bufferSize, "buffer-size", 1<<20, "ring capacity (shm) or socket/queue buffer in bytes")

	flags.StringVar(&f.ipcPath, "ipc-path", "", "uds socket path (default: $RUSTY_COMMS_TMPDIR/rusty-comms.sock)")
	flags.StringVar(&f.shmName, "shm-name", "rusty-comms", "shared memory segment name")
	flags.StringVar(&f.host, "host", "127.0.0.1", "tcp host")
	flags.IntVar(&f.port, "port", 9000, "tcp port")
	flags.IntVar(&f.pmqPriority, "pmq-priority", 0, "posix message queue priority")

	flags.StringVar(&f.sendDelay, "send-delay", "", "pause between sends, e.g. 100us")
	flags.BoolVar(&f.includeFirstMessage, "include-first-message", false, "keep the post-warmup canary message in the histogram")

	flags.IntVar(&f.serverAffinity, "server-affinity", -1, "cpu core to pin the server/responder side to")
	flags.IntVar(&f.clientAffinity, "client-affinity", -1, "cpu core to pin the client/sender side to")

	flags.StringVar(&f.outputFile, "output-file", "", "final report JSON path (absence: no file written)")
	flags.StringVar(&f.streamingJSON, "streaming-output-json", "", "streaming per-sample JSON path")
	flags.StringVar(&f.streamingCSV, "streaming-output-csv", "", "streaming per-sample CSV path")
	flags.StringVar(&f.logFile, "log-file", "stderr", "log output path, or \"stderr\"")
	flags.CountVarP(&f.verbosity, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	flags.BoolVar(&f.continueOnError, "continue-on-error", false, "keep running the remaining mechanisms after a failure")

	flags.StringVar(&f.role, "role", "", "internal: process role for a coordinator-spawned counterpart")
	flags.StringVar(&f.configJSON, "config-json", "", "internal: base64 TestConfig for --role client")
	_ = flags.MarkHidden("role")
	_ = flags.MarkHidden("config-json")

	return cmd
}
