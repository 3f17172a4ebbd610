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

package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// Fields is a set of structured key/value pairs attached to a log line, e.g.
// mechanism="uds", worker=3, role="host".
type Fields = logrus.Fields

// Logger is the logging surface every component uses. It never panics or
// exits the process; FatalLevel/PanicLevel exist in logrus but are not
// exposed here, since an unrecoverable condition is reported to the driver
// as an ierrs.Error instead and the caller decides how to exit.
type Logger interface {
	// WithFields returns a child Logger with fields merged on top of any it
	// already carries.
	WithFields(f Fields) Logger

	Error(args ...any)
	Errorf(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Debug(args ...any)
	Debugf(format string, args ...any)
	Trace(args ...any)
	Tracef(format string, args ...any)

	// LogError logs err at a level derived from its ierrs.Kind, with the
	// kind and (at TraceLevel) call-site trace attached as fields.
	LogError(err error)

	// Level returns the logger's configured level.
	Level() Level
	// Close releases the underlying output sink, if it owns one (i.e. a
	// file opened by NewFile, not stderr).
	Close() error
}

type logger struct {
	entry  *logrus.Entry
	level  Level
	closer io.Closer
}

// New builds a Logger writing to stderr at the given level.
func New(level Level) Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level.logrus())
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableQuote:    true,
		TimestampFormat: "15:04:05.000",
	})
	return &logger{entry: logrus.NewEntry(l), level: level}
}

// NewFile builds a Logger writing to the file at path, truncating or
// creating it, at the given level. The returned Logger's Close releases the
// file handle.
func NewFile(path string, level Level) (Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, ierrs.ConfigInvalid.Newf("opening log file %q: %v", path, err)
	}

	l := logrus.New()
	l.SetOutput(f)
	l.SetLevel(level.logrus())
	l.SetFormatter(&logrus.JSONFormatter{})
	return &logger{entry: logrus.NewEntry(l), level: level, closer: f}, nil
}

// NewSink builds a Logger writing to an arbitrary io.Writer, used by tests
// that want to assert on log output.
func NewSink(w io.Writer, level Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level.logrus())
	return &logger{entry: logrus.NewEntry(l), level: level}
}

func (l *logger) WithFields(f Fields) Logger {
	return &logger{entry: l.entry.WithFields(f), level: l.level, closer: l.closer}
}

func (l *logger) Error(args ...any)                 { l.entry.Error(args...) }
func (l *logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
func (l *logger) Warn(args ...any)                  { l.entry.Warn(args...) }
func (l *logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logger) Info(args ...any)                  { l.entry.Info(args...) }
func (l *logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logger) Debug(args ...any)                 { l.entry.Debug(args...) }
func (l *logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logger) Trace(args ...any)                 { l.entry.Trace(args...) }
func (l *logger) Tracef(format string, args ...any) { l.entry.Tracef(format, args...) }

func (l *logger) LogError(err error) {
	kind := ierrs.KindOf(err)
	entry := l.entry.WithField("kind", kind.String())

	if l.level >= TraceLevel {
		if e, ok := err.(ierrs.Error); ok {
			entry = entry.WithField("detail", e.Detail(ierrs.MessageKindTrace))
		}
	}

	switch kind {
	case ierrs.Unknown, ierrs.IoError, ierrs.ConfigInvalid:
		entry.Error(err)
	default:
		entry.Warn(err)
	}
}

func (l *logger) Level() Level { return l.level }

func (l *logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

var _ fmt.Stringer = Level(0)
