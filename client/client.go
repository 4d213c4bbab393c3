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

// Package client dials a warmd control socket and runs the execute
// handshake defined by internal/wire, internal/fdpass and
// internal/protocol, returning the exit code the daemon reports.
package client

import (
	"net"
	"os"

	"github.com/nabbar/warmd/internal/fdpass"
	"github.com/nabbar/warmd/internal/protocol"
	"github.com/nabbar/warmd/internal/wire"

	liberr "github.com/nabbar/warmd/errors"
)

// Client is a dialed connection ready to run exactly one execute
// handshake. It is not reusable across handshakes: the wire protocol
// defines one request/reply pair per connection.
type Client struct {
	conn *net.UnixConn
	ch   *wire.Channel
}

// Dial connects to the control socket at path. "no such file" and
// "connection refused" are both reported as ConnectError so callers (the
// supervisor's fast path) can treat them identically as "no live daemon".
func Dial(path string) (*Client, error) {
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, liberr.ConnectError.Error(err, "resolving unix address %s", path)
	}

	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, liberr.ConnectError.Error(err, "connecting to %s", path)
	}

	return &Client{conn: conn, ch: wire.New(conn)}, nil
}

// Close closes the underlying connection without running a handshake.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Execute runs the full execute handshake: verb, cwd, argv, then each of
// stdin/stdout/stderr as an ancillary descriptor send followed by a
// draining sentinel frame, then blocks for the reply frame and parses it
// as the exit code.
func (c *Client) Execute(cwd string, argv []string, stdin, stdout, stderr *os.File) (int, error) {
	defer c.conn.Close()

	if err := c.ch.Send([]byte(protocol.ExecuteVerb)); err != nil {
		return 0, err
	}
	if err := c.ch.Send([]byte(cwd)); err != nil {
		return 0, err
	}
	if err := c.ch.Send([]byte(protocol.JoinArgv(argv))); err != nil {
		return 0, err
	}

	for _, f := range []*os.File{stdin, stdout, stderr} {
		if err := fdpass.Send(c.conn, f); err != nil {
			return 0, err
		}
		if err := c.ch.Send([]byte(protocol.Sentinel)); err != nil {
			return 0, err
		}
	}

	payload, ok, err := c.ch.Receive()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, liberr.ProtocolError.Error(nil, "connection closed before reply frame")
	}

	return protocol.DecodeExitCode(payload)
}

// Execute is the launcher convenience entry point: it snapshots the
// current process's working directory, argument vector, and three
// standard streams, dials path, and returns the daemon's exit code for the
// caller to propagate via os.Exit.
func Execute(path string) (int, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return 0, liberr.IOError.Error(err, "resolving current working directory")
	}

	c, err := Dial(path)
	if err != nil {
		return 0, err
	}

	return c.Execute(cwd, os.Args, os.Stdin, os.Stdout, os.Stderr)
}
