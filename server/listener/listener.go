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

// Package listener owns the daemon's SOCK_STREAM Unix-domain listening
// socket: binding (with a stale-file probe), accepting connections as
// handlers, and idempotent teardown that unlinks the socket file.
package listener

import (
	"net"
	"os"
	"sync"

	liberr "github.com/nabbar/warmd/errors"
	"github.com/nabbar/warmd/server/handler"
)

// Listener owns one bound Unix-domain socket file.
type Listener struct {
	path string
	ln   *net.UnixListener

	mu     sync.Mutex
	closed bool
}

// Bind binds a SOCK_STREAM socket at path. If path already exists, Bind
// probes it by attempting to connect: a successful connect means a live
// peer owns it and Bind fails with AlreadyRunning; a refused connection
// means the file is stale, so Bind unlinks it and proceeds. This mirrors
// the teacher's socket package's own stale-file reclaim probe, generalized
// from TCP reuse checks to a Unix-domain connect probe.
func Bind(path string) (*Listener, error) {
	if _, err := os.Stat(path); err == nil {
		if probeLive(path) {
			return nil, liberr.AlreadyRunning.Error(nil, "control socket %s is held by a live daemon", path)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, liberr.IOError.Error(err, "removing stale socket file %s", path)
		}
	}

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, liberr.ConnectError.Error(err, "resolving unix address %s", path)
	}

	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, liberr.ConnectError.Error(err, "binding unix socket %s", path)
	}

	return &Listener{path: path, ln: ln}, nil
}

func probeLive(path string) bool {
	c, err := net.DialTimeout("unix", path, 0)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Path returns the bound socket's filesystem path.
func (l *Listener) Path() string {
	return l.path
}

// Accept blocks until a connection arrives and wraps it in a Handler.
func (l *Listener) Accept() (*handler.Handler, error) {
	conn, err := l.ln.AcceptUnix()
	if err != nil {
		return nil, liberr.IOError.Error(err, "accepting connection on %s", l.path)
	}
	return handler.New(conn), nil
}

// Close closes the listening descriptor and removes the socket file if
// present. Safe to call more than once.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	err := l.ln.Close()
	if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = liberr.IOError.Error(rmErr, "removing socket file %s", l.path)
	}
	return err
}
