/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package logger is a thin, line-buffered, append-only logging facade over
// logrus, in the shape of the teacher's logger package (per-level methods
// taking a message, optional structured data, and format args) but trimmed
// to a single sink: every worker and the daemon's accept loop write to the
// same file, so interleaved lines must remain intact.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	loglvl "github.com/nabbar/warmd/logger/level"
)

// Fields is structured data attached to one log line.
type Fields map[string]interface{}

// Logger is the daemon's logging facade.
type Logger interface {
	Debug(message string, data Fields, args ...interface{})
	Info(message string, data Fields, args ...interface{})
	Warning(message string, data Fields, args ...interface{})
	Error(message string, data Fields, args ...interface{})

	// With returns a Logger that always attaches extra on top of
	// whatever Fields are passed to a call.
	With(extra Fields) Logger

	// Close flushes and closes the underlying log file, if any.
	Close() error
}

type logger struct {
	entry *logrus.Entry
	out   io.Closer
}

// New opens path for append, line-buffered writes (one Write call per log
// line, which is all the os.File append-mode guarantee needs to keep
// interleaved lines intact across processes) and returns a Logger at lvl.
// If path is empty, logs go to stderr instead.
func New(path string, lvl loglvl.Level) (Logger, error) {
	var (
		w   io.Writer = os.Stderr
		clo io.Closer
	)

	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w, clo = f, f
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl.Logrus())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &logger{entry: logrus.NewEntry(l), out: clo}, nil
}

func (o *logger) log(lvl loglvl.Level, message string, data Fields, args []interface{}) {
	e := o.entry
	if len(data) > 0 {
		e = e.WithFields(logrus.Fields(data))
	}
	e.Logln(lvl.Logrus(), sprintf(message, args))
}

func (o *logger) Debug(message string, data Fields, args ...interface{}) {
	o.log(loglvl.DebugLevel, message, data, args)
}

func (o *logger) Info(message string, data Fields, args ...interface{}) {
	o.log(loglvl.InfoLevel, message, data, args)
}

func (o *logger) Warning(message string, data Fields, args ...interface{}) {
	o.log(loglvl.WarnLevel, message, data, args)
}

func (o *logger) Error(message string, data Fields, args ...interface{}) {
	o.log(loglvl.ErrorLevel, message, data, args)
}

func (o *logger) With(extra Fields) Logger {
	return &logger{entry: o.entry.WithFields(logrus.Fields(extra)), out: o.out}
}

func (o *logger) Close() error {
	if o.out == nil {
		return nil
	}
	return o.out.Close()
}
