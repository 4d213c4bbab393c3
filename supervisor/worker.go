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

package supervisor

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/nabbar/warmd/internal/protocol"
	"github.com/nabbar/warmd/logger"
	"github.com/nabbar/warmd/server/handler"
)

// handle services one accepted connection end to end: receive the
// request, dispatch to Runner inside the mutex-guarded global-state
// section, and close with whatever exit code resulted. Every log line for
// this connection carries the same request_id so interleaved lines from
// concurrent workers in the shared append-only log file can be told apart.
//
// The deferred recover guards the dispatch machinery itself (Receive,
// dispatch's fd/cwd bookkeeping) rather than Runner, which already
// recovers its own panics inside runGuarded: a panic escaping here means
// the worker scope is being abandoned without ever having produced an
// application exit code, so the client is told 255 (AbnormalExitCode)
// instead of the connection simply vanishing, and — critically — the
// panic stops at this goroutine instead of taking down the accept loop.
func (d *dispatcher) handle(h *handler.Handler) {
	rlog := d.log.With(logger.Fields{"request_id": uuid.New().String()})

	defer func() {
		if r := recover(); r != nil {
			rlog.Error("worker scope panicked: %v", nil, r)
			_ = h.CloseAbnormally()
		}
	}()

	req, err := h.Receive()
	if err != nil {
		rlog.Warning("handshake failed: %s", nil, err.Error())
		_ = h.CloseWithExitCode(130)
		return
	}

	code := d.dispatch(rlog, req)
	if err := h.CloseWithExitCode(code); err != nil {
		rlog.Warning("closing handler failed: %s", nil, err.Error())
	}
}

// dispatch runs Runner with the process's working directory and standard
// streams swapped to the client's for the duration of the call. The
// mutex makes this swap-call-restore sequence atomic with respect to
// every other concurrent request, which is exactly the isolation a real
// fork would have given for free — traded here for staying in the one
// process that holds the loader's warm state. log is scoped to this one
// request (see handle's request_id field) so concurrent workers'
// interleaved lines in the shared log file stay attributable.
func (d *dispatcher) dispatch(log logger.Logger, req *handler.Request) (code int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	origCwd, err := os.Getwd()
	if err != nil {
		log.Error("reading current directory failed: %s", nil, err.Error())
		return 1
	}

	origStdin := dupOrNil(unix.Stdin)
	origStdout := dupOrNil(unix.Stdout)
	origStderr := dupOrNil(unix.Stderr)
	defer closeAll(origStdin, origStdout, origStderr)

	if err := redirectStdio(req); err != nil {
		log.Error("redirecting standard streams failed: %s", nil, err.Error())
		return 1
	}
	if err := os.Chdir(req.Cwd); err != nil {
		log.Error("changing to client cwd %s failed: %s", nil, req.Cwd, err.Error())
		restoreStdio(origStdin, origStdout, origStderr)
		return 1
	}

	code = d.runGuarded(log, req)

	restoreStdio(origStdin, origStdout, origStderr)
	if err := os.Chdir(origCwd); err != nil {
		log.Error("restoring original cwd failed: %s", nil, err.Error())
	}

	return code
}

// runGuarded calls the Runner callback, recovering a panic as
// ApplicationError (exit code 1) with a logged traceback rather than
// letting it take down the accept loop.
func (d *dispatcher) runGuarded(log logger.Logger, req *handler.Request) (code int) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("runner panicked: %v\n%s", nil, r, debug.Stack())
			code = 1
		}
	}()

	if d.cfg.Runner == nil {
		return 0
	}
	return protocol.ClampExitCode(d.cfg.Runner(req))
}

func dupOrNil(fd int) *os.File {
	nfd, err := unix.Dup(fd)
	if err != nil {
		return nil
	}
	return os.NewFile(uintptr(nfd), fmt.Sprintf("orig-fd%d", fd))
}

func redirectStdio(req *handler.Request) error {
	pairs := []struct {
		target int
		from   *os.File
	}{
		{unix.Stdin, req.Stdin},
		{unix.Stdout, req.Stdout},
		{unix.Stderr, req.Stderr},
	}
	for _, p := range pairs {
		if p.from == nil {
			continue
		}
		if err := unix.Dup2(int(p.from.Fd()), p.target); err != nil {
			return err
		}
	}
	return nil
}

func restoreStdio(stdin, stdout, stderr *os.File) {
	restore := []struct {
		target int
		from   *os.File
	}{
		{unix.Stdin, stdin},
		{unix.Stdout, stdout},
		{unix.Stderr, stderr},
	}
	for _, r := range restore {
		if r.from == nil {
			continue
		}
		_ = unix.Dup2(int(r.from.Fd()), r.target)
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
