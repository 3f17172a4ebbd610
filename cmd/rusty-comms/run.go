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
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redhat-performance/rusty-comms/internal/config"
	"github.com/redhat-performance/rusty-comms/internal/driver"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/latency"
	"github.com/redhat-performance/rusty-comms/internal/logging"
	"github.com/redhat-performance/rusty-comms/internal/result"
	"github.com/redhat-performance/rusty-comms/internal/summary"
)

// runRoot is the root command's RunE body, split out of command.go so it
// can be exercised without constructing a cobra.Command.
func runRoot(cmd *cobra.Command, f *cliFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := buildLogger(f)
	if err != nil {
		return err
	}
	defer log.Close()

	ierrs.SetMode(modeForLevel(log.Level()))

	// The hidden re-exec path: coordinator.Spawn launched this same binary
	// with --role client --config-json <blob> to serve one mechanism's
	// Client-mode counterpart. This never touches the rest of the flag
	// surface above.
	if f.role == "client" {
		cfg, err := driver.DecodeClientConfig(f.configJSON)
		if err != nil {
			return err
		}
		return driver.RunServerRole(ctx, cfg, log)
	}

	configs, err := buildConfigs(f, cmd.Flags().Changed("msg-count"), cmd.Flags().Changed("duration"))
	if err != nil {
		return err
	}

	// A human running --mode client directly (as opposed to being spawned
	// by a Host-mode counterpart) serves exactly one mechanism and never
	// produces a Report; it's the standalone half of S6.
	if config.Mode(f.mode) == config.Client {
		if len(configs) != 1 {
			return ierrs.ConfigInvalid.Newf("--mode client serves exactly one mechanism, got %d", len(configs))
		}
		return driver.RunServerRole(ctx, configs[0], log)
	}

	sink, writer, err := buildSinkAndWriter(f)
	if err != nil {
		return err
	}

	var pumpErr error
	var pumpDone chan struct{}
	if sink != nil {
		pumpDone = make(chan struct{})
		go func() {
			defer close(pumpDone)
			pumpErr = latency.Pump(ctx, sink, writer)
		}()
	}

	results := make([]result.TestResult, 0, len(configs))
	failed := false
	for _, cfg := range configs {
		mechLog := log.WithFields(logging.Fields{"mechanism": string(cfg.Mechanism), "mode": string(cfg.Mode)})
		res := driver.Run(ctx, cfg, mechLog, driver.Options{Sink: sink})
		results = append(results, res)
		if res.IsFailed() {
			failed = true
			mechLog.Errorf("%s failed: %s", cfg.Mechanism, res.FailureReason)
			if !f.continueOnError {
				break
			}
		}
	}

	if sink != nil {
		sink.Close()
		<-pumpDone
		if pumpErr != nil {
			log.Warnf("streaming writer: %v", pumpErr)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			log.Warnf("closing streaming writer: %v", err)
		}
	}

	report := result.NewReport(results)
	summary.Print(os.Stdout, report)

	if f.outputFile != "" {
		if err := writeReport(report, resolveOutputPath(f.outputFile)); err != nil {
			return err
		}
	}

	if failed && !f.continueOnError {
		return ierrs.Unknown.Newf("one or more mechanisms failed")
	}
	return nil
}

func buildLogger(f *cliFlags) (logging.Logger, error) {
	level := logging.LevelFromVerbosity(f.verbosity)
	if f.verbosity == 0 {
		if env := os.Getenv(envLogLevel); env != "" {
			level = logging.ParseLevel(env)
		}
	}

	if f.logFile == "" || strings.EqualFold(f.logFile, "stderr") {
		return logging.New(level), nil
	}
	return logging.NewFile(resolveOutputPath(f.logFile), level)
}

func modeForLevel(level logging.Level) ierrs.Mode {
	switch {
	case level >= logging.TraceLevel:
		return ierrs.MessageKindTrace
	case level >= logging.DebugLevel:
		return ierrs.MessageKind
	default:
		return ierrs.Message
	}
}

func buildSinkAndWriter(f *cliFlags) (*latency.Sink, latency.Writer, error) {
	writer, err := buildStreamingWriter(f)
	if err != nil {
		return nil, nil, err
	}
	if writer == nil {
		return nil, nil, nil
	}
	return latency.NewSink(latency.DefaultCapacity), writer, nil
}

func writeReport(r result.Report, path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return ierrs.IoError.New(err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}
