// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	mptIo "github.com/statetrie/statetrie/database/mpt/io"
	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./database/mpt/tool <command> <flags>

var (
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "sets the log level (debug, info, warn, error)",
		Value: "info",
	}
	cpuProfileFlag = cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "sets the target file for storing CPU profiles to, disabled if empty",
		Value: "",
	}
	traceFlag = cli.StringFlag{
		Name:  "tracefile",
		Usage: "sets the target file for traces to, disabled if empty",
		Value: "",
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "tool",
		Usage:     "Merkle Patricia Trie toolbox",
		Copyright: "(c) 2022-24 Fantom Foundation",
		Flags: []cli.Flag{
			&logLevelFlag,
			&cpuProfileFlag,
			&traceFlag,
		},
		Commands: []*cli.Command{
			&RootCmd,
			&ImportCmd,
			&GetCmd,
			&DumpCmd,
			&ListRootCmd,
		},
	}
}

// getLog creates the logger configured by the log-level flag.
func getLog(context *cli.Context) (*mptIo.Log, error) {
	logger, err := mptIo.NewLogger(context.String(logLevelFlag.Name))
	if err != nil {
		return nil, err
	}
	return mptIo.NewLog(logger), nil
}

func addPerformanceDiagnoses(action cli.ActionFunc) cli.ActionFunc {
	return func(context *cli.Context) (err error) {
		// Start CPU profiling.
		cpuProfileFileName := context.String(cpuProfileFlag.Name)
		if strings.TrimSpace(cpuProfileFileName) != "" {
			stop, startErr := startCpuProfiler(cpuProfileFileName)
			if startErr != nil {
				return startErr
			}
			defer func() {
				err = errors.Join(err, stop())
			}()
		}

		// Start recording a trace.
		traceFileName := context.String(traceFlag.Name)
		if strings.TrimSpace(traceFileName) != "" {
			stop, startErr := startTracer(traceFileName)
			if startErr != nil {
				return startErr
			}
			defer func() {
				err = errors.Join(err, stop())
			}()
		}

		return action(context)
	}
}

// startCpuProfiler starts CPU profiling into the given file. The returned
// function stops the profiler and closes the file.
func startCpuProfiler(filename string) (func() error, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, errors.Join(fmt.Errorf("could not start CPU profile: %w", err), f.Close())
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}

// startTracer starts recording an execution trace into the given file. The
// returned function stops the tracer and closes the file.
func startTracer(filename string) (func() error, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	if err := trace.Start(f); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to start trace: %w", err), f.Close())
	}
	return func() error {
		trace.Stop()
		return f.Close()
	}, nil
}
