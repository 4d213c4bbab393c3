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

// Package errors implements the daemon's error taxonomy: a small numeric
// CodeError catalogue (one entry per failure kind named in the wire
// protocol's error handling design) with a registered message per code and
// a captured call-site trace, in the shape of the teacher's own errors
// package but narrowed to the kinds this domain needs.
package errors

import "strconv"

// CodeError classifies a failure the way the wire protocol names it.
type CodeError uint16

const (
	// UnknownError is the zero value: no specific classification.
	UnknownError CodeError = iota
	// EncodingError: a payload does not fit the 32-bit frame length.
	EncodingError
	// ProtocolError: truncated frame, unexpected verb, or an exit code
	// that is not a decimal integer in [0,254].
	ProtocolError
	// IOError: the underlying read/write on the channel failed.
	IOError
	// ConnectError: no listener, connection refused, or permission denied.
	ConnectError
	// AlreadyRunning: the listener path is held by a responsive peer.
	AlreadyRunning
	// ApplicationError: the runner callback failed (panicked).
	ApplicationError
	// UnsupportedRequest: the handler received a verb other than
	// "/v0/execute".
	UnsupportedRequest
)

var messages = map[CodeError]string{
	UnknownError:       "unknown error",
	EncodingError:      "payload does not fit a 32-bit frame length",
	ProtocolError:      "malformed or unexpected protocol frame",
	IOError:            "transport read/write failure",
	ConnectError:       "could not connect to the daemon socket",
	AlreadyRunning:     "control socket is held by a live daemon",
	ApplicationError:   "hosted application failed",
	UnsupportedRequest: "unsupported request verb",
}

// String returns the registered human-readable message for the code, or
// "unknown error" if none is registered.
func (c CodeError) String() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[UnknownError]
}

// Uint16 returns the numeric value of the code.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

func (c CodeError) label() string {
	return strconv.Itoa(int(c)) + ":" + c.String()
}
