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

// Package handler is the server-side counterpart of one client connection:
// it decodes the execute handshake frame by frame, tracks every descriptor
// handed across by the client, and guarantees that descriptor set is
// closed on every exit path — success, protocol error, or transport
// failure alike. Grounded on the handshake order fixed by internal/wire,
// internal/fdpass and internal/protocol, and on the teacher's session
// state-machine shape (one object per connection, terminal states inert).
package handler

import (
	"net"
	"os"

	"github.com/nabbar/warmd/internal/fdpass"
	"github.com/nabbar/warmd/internal/protocol"
	"github.com/nabbar/warmd/internal/wire"
	"github.com/nabbar/warmd/ioutils/mapcloser"

	liberr "github.com/nabbar/warmd/errors"
)

// Request is the fully decoded execute record: the logical request plus
// the three live descriptors received from the client.
type Request struct {
	Cwd    string
	Argv   []string
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Handler is the server side of exactly one client connection.
type Handler struct {
	ch     *wire.Channel
	conn   *net.UnixConn
	state  State
	closer mapcloser.Closer
}

// New wraps conn as a Handler. conn must be the live *net.UnixConn accepted
// by the listener: descriptor passing is only possible on a Unix socket,
// so a Handler cannot be built over an arbitrary io.ReadWriteCloser the
// way a bare wire.Channel can.
func New(conn *net.UnixConn) *Handler {
	return &Handler{
		ch:     wire.New(conn),
		conn:   conn,
		state:  AwaitingVerb,
		closer: mapcloser.New(),
	}
}

// State reports the handler's current position in the handshake.
func (h *Handler) State() State {
	return h.state
}

func (h *Handler) recvFrame() (string, error) {
	p, ok, err := h.ch.Receive()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", liberr.ProtocolError.Error(nil, "connection closed before handshake completed")
	}
	return string(p), nil
}

func (h *Handler) recvDescriptor() (*os.File, error) {
	f, err := fdpass.Receive(h.conn)
	if err != nil {
		return nil, err
	}
	h.closer.Add(f)
	// The sentinel frame that follows forces the kernel to have already
	// delivered this descriptor's ancillary data; draining it here keeps
	// the handshake's byte stream and descriptor stream in lockstep.
	if _, err := h.recvFrame(); err != nil {
		return nil, err
	}
	return f, nil
}

// Receive runs the handshake to completion: verb, cwd, argv, then the
// three descriptors each followed by their draining sentinel. Any
// verb other than protocol.ExecuteVerb is rejected with
// UnsupportedRequest. All descriptors received along the way are retained
// on the handler regardless of outcome, for CloseWithExitCode to close.
func (h *Handler) Receive() (*Request, error) {
	verb, err := h.recvFrame()
	if err != nil {
		h.state = Closed
		return nil, err
	}
	if verb != protocol.ExecuteVerb {
		h.state = Closed
		return nil, liberr.UnsupportedRequest.Error(nil, "unsupported verb %q", verb)
	}
	h.state = AwaitingCwd

	cwd, err := h.recvFrame()
	if err != nil {
		h.state = Closed
		return nil, err
	}
	h.state = AwaitingArgv

	argvJoined, err := h.recvFrame()
	if err != nil {
		h.state = Closed
		return nil, err
	}
	h.state = AwaitingStdin

	stdin, err := h.recvDescriptor()
	if err != nil {
		h.state = Closed
		return nil, err
	}
	h.state = AwaitingStdout

	stdout, err := h.recvDescriptor()
	if err != nil {
		h.state = Closed
		return nil, err
	}
	h.state = AwaitingStderr

	stderr, err := h.recvDescriptor()
	if err != nil {
		h.state = Closed
		return nil, err
	}
	h.state = Dispatching

	return &Request{
		Cwd:    cwd,
		Argv:   protocol.SplitArgv(argvJoined),
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}, nil
}

// SendExitCode writes the reply frame. code must already be in
// [0, protocol.MaxExitCode]; callers that might have an out-of-range
// value should run it through protocol.ClampExitCode first.
func (h *Handler) SendExitCode(code int) error {
	if code < 0 || code > protocol.MaxExitCode {
		return liberr.ProtocolError.Error(nil, "exit code %d out of range [0,%d]", code, protocol.MaxExitCode)
	}
	err := h.ch.Send(protocol.EncodeExitCode(code))
	h.state = Replied
	return err
}

// CloseWithExitCode sends code (clamped into range) and then closes every
// descriptor received from the client plus the channel itself, regardless
// of whether the send succeeded. The descriptor close pass is a scoped
// cleanup: it always runs, even when SendExitCode returns an error, so a
// client that disappeared mid-reply still cannot leak descriptors.
func (h *Handler) CloseWithExitCode(code int) error {
	sendErr := h.SendExitCode(protocol.ClampExitCode(code))
	return h.closeAfterSend(sendErr)
}

// CloseAbnormally sends protocol.AbnormalExitCode and closes the handler,
// for use when the worker scope is torn down without Runner ever having
// produced a code — a panic or failure in the dispatch machinery itself,
// as opposed to a panic inside Runner, which is recovered and reported as
// a normal clamped exit code. It bypasses SendExitCode's range check
// since 255 is reserved and never a valid argument there.
func (h *Handler) CloseAbnormally() error {
	sendErr := h.ch.Send(protocol.EncodeExitCode(protocol.AbnormalExitCode))
	h.state = Replied
	return h.closeAfterSend(sendErr)
}

func (h *Handler) closeAfterSend(sendErr error) error {
	closeErr := h.closer.Close()
	chErr := h.ch.Close()
	h.state = Closed

	switch {
	case sendErr != nil:
		return sendErr
	case closeErr != nil:
		return closeErr
	default:
		return chErr
	}
}
