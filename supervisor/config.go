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

//go:build unix

// Package supervisor is the daemon lifecycle: discover-or-spawn, one-shot
// application warmup, and per-request dispatch in isolation. It is
// grounded on spec.md §4.5's fork/daemonize/dispatch algorithm, adapted
// for Go's runtime: a live multi-threaded Go process cannot safely
// continue past a raw fork(2), so the one-time daemonization step uses a
// self re-exec instead of fork+setsid+fork, and per-request isolation
// uses a goroutine serialized by a supervisor-wide mutex around the
// process-global mutation (cwd, stdio, argv echo) instead of an OS fork —
// preserving the invariant that concurrent requests cannot corrupt each
// other's globals while keeping every request inside the one process that
// holds the loader's warm state.
package supervisor

import (
	"os"

	"github.com/nabbar/warmd/server/handler"
)

// Request is the decoded execute record handed to Runner.
type Request = handler.Request

// Runner services one request and returns the exit code to report to the
// client. A panic inside Runner is recovered by the dispatch loop and
// reported as exit code 1 with a logged traceback, matching
// ApplicationError semantics.
type Runner func(req *Request) int

// Loader performs one-shot, synchronous application warmup before the
// listener binds. Its error, if any, aborts the daemonized child.
type Loader func() error

// Config configures one daemon instance.
type Config struct {
	// AppName determines the per-user directory <home>/<AppName> holding
	// control.sock and log.
	AppName string
	Loader  Loader
	Runner  Runner

	// LogLevel controls verbosity of the daemon's own lifecycle log.
	LogLevel string
}

// socketName and logName are the fixed filenames inside the app directory.
const (
	socketName = "control.sock"
	logName    = "log"
)

func (c Config) socketPath(baseDir string) string {
	return baseDir + string(os.PathSeparator) + socketName
}

func (c Config) logPath(baseDir string) string {
	return baseDir + string(os.PathSeparator) + logName
}
