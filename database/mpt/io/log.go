// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package io

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a logger customised for the MPT tool output.
// In particular, it attaches the time elapsed since the start of the program
// to every message.
type Log struct {
	start  time.Time
	logger *zap.Logger
}

// NewLog creates a new logger writing to the given zap logger.
func NewLog(logger *zap.Logger) *Log {
	return &Log{start: time.Now(), logger: logger}
}

// NewNopLog creates a logger discarding all messages.
func NewNopLog() *Log {
	return NewLog(zap.NewNop())
}

// NewLogger creates a console logger writing to stderr. The level is one of
// zap's level names, an empty level selects info.
func NewLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		var err error
		lvl, err = zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log setting: %w", err)
		}
	}
	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(lvl)
	cc.Sampling = nil
	return cc.Build()
}

// Print logs a message that includes the time elapsed since the start of the program.
func (l *Log) Print(msg string, fields ...zap.Field) {
	l.logger.Info(msg, append([]zap.Field{zap.String("t", l.elapsed())}, fields...)...)
}

// Printf logs a formatted message that includes the time elapsed since the start of the program.
func (l *Log) Printf(format string, v ...any) {
	l.Print(fmt.Sprintf(format, v...))
}

// Debugf logs a formatted message at debug level.
func (l *Log) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), zap.String("t", l.elapsed()))
}

// Sync flushes buffered log entries.
func (l *Log) Sync() error {
	return l.logger.Sync()
}

func (l *Log) elapsed() string {
	t := uint64(time.Since(l.start).Seconds())
	return fmt.Sprintf("%d:%02d", t/60, t%60)
}

// ProgressLogger is a logger that tracks the progress of a task.
// It logs the progress at regular intervals configured when creating this logger.
type ProgressLogger struct {
	log            *Log
	start          time.Time
	format         string
	window         int
	counter, steps int
}

// NewProgressTracker creates a new ProgressLogger.
func (l *Log) NewProgressTracker(format string, window int) *ProgressLogger {
	return &ProgressLogger{log: l, start: time.Now(), format: format, window: window}
}

// Step increments the progress counter by the given number of steps.
// If the counter reaches the window size, the progress is logged.
func (p *ProgressLogger) Step(increment int) {
	p.counter += increment
	p.steps += increment

	if p.steps >= p.window {
		now := time.Now()

		count := p.counter / p.window * p.window // round down to the nearest window size
		p.log.Printf(p.format, count, float64(p.steps)/now.Sub(p.start).Seconds())

		p.steps = 0
		p.start = now
	}
}

// GetCounter returns the current value of the progress counter.
func (p *ProgressLogger) GetCounter() int {
	return p.counter
}
