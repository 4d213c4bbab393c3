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

package wire

import (
	"encoding/binary"
	"io"
	"net"

	liberr "github.com/nabbar/warmd/errors"
)

// Channel is a single-producer/single-consumer framed byte-stream endpoint.
// It owns the underlying descriptor and closes it on Close.
type Channel struct {
	rw io.ReadWriteCloser
	// raw exposes the live fd for out-of-band descriptor-passing
	// operations performed directly on the socket between frames.
	raw *net.UnixConn
}

// New wraps rw as a Channel. If rw is also a *net.UnixConn, Underlying()
// exposes it for descriptor passing; otherwise Underlying() returns nil.
func New(rw io.ReadWriteCloser) *Channel {
	c := &Channel{rw: rw}
	if uc, ok := rw.(*net.UnixConn); ok {
		c.raw = uc
	}
	return c
}

// Underlying returns the *net.UnixConn backing this channel, or nil if the
// channel was not built over a Unix socket. Capability leak required so
// that SCM_RIGHTS sends/receives can be interleaved with frames on the
// same descriptor.
func (c *Channel) Underlying() *net.UnixConn {
	return c.raw
}

// Close closes the underlying descriptor. Idempotent only to the extent
// the wrapped io.Closer is idempotent.
func (c *Channel) Close() error {
	return c.rw.Close()
}

// Send writes one frame: a 4-byte big-endian length prefix followed by
// payload, then nothing further is buffered (each write is flushed by
// virtue of going straight to the underlying descriptor).
func (c *Channel) Send(payload []byte) error {
	if uint64(len(payload)) > MaxFrameLength {
		return liberr.EncodingError.Error(nil, "frame payload of %d bytes exceeds the 32-bit length prefix", len(payload))
	}

	var hdr [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))

	if _, err := c.rw.Write(hdr[:]); err != nil {
		return liberr.IOError.Error(err, "writing frame length prefix")
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := c.rw.Write(payload); err != nil {
		return liberr.IOError.Error(err, "writing frame payload")
	}
	return nil
}

// Receive reads the next complete frame. ok is false with a nil error only
// when the stream ended cleanly at a frame boundary (zero bytes available
// where a length prefix would begin). A partial length prefix, or fewer
// than length payload bytes before end-of-stream, is a ProtocolError.
func (c *Channel) Receive() (payload []byte, ok bool, err error) {
	var hdr [lengthPrefixSize]byte

	n, rerr := io.ReadFull(c.rw, hdr[:])
	switch {
	case rerr == io.EOF && n == 0:
		return nil, false, nil
	case rerr == io.ErrUnexpectedEOF || (rerr == io.EOF && n > 0):
		return nil, false, liberr.ProtocolError.Error(rerr, "stream ended after %d of %d length-prefix bytes", n, lengthPrefixSize)
	case rerr != nil:
		return nil, false, liberr.IOError.Error(rerr, "reading frame length prefix")
	}

	length := binary.BigEndian.Uint32(hdr[:])
	if length == 0 {
		return []byte{}, true, nil
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(c.rw, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, false, liberr.ProtocolError.Error(err, "stream ended before %d payload bytes arrived", length)
		}
		return nil, false, liberr.IOError.Error(err, "reading frame payload")
	}

	return buf, true, nil
}
