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

// Package fdpass passes open file descriptors across a Unix domain socket
// as SCM_RIGHTS ancillary data, one descriptor per call, which is all the
// execute handshake needs (one send per standard stream).
package fdpass

import (
	"net"
	"os"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/warmd/errors"
)

// maxOOB is large enough for a single fd's worth of control message data;
// one cmsghdr plus one int on every supported platform fits comfortably.
const maxOOB = 32

// Send transfers f's descriptor as ancillary data on conn. The byte written
// alongside it is a single zero byte: some kernels refuse to deliver
// ancillary data attached to a zero-length message, so a 1-byte payload
// accompanies every descriptor send. Callers still follow it with a normal
// framed sentinel (see the execute handshake) to force the receiver to
// drain the ancillary data deterministically.
func Send(conn *net.UnixConn, f *os.File) error {
	rights := unix.UnixRights(int(f.Fd()))
	_, _, err := conn.WriteMsgUnix([]byte{0}, rights, nil)
	if err != nil {
		return liberr.IOError.Error(err, "sending descriptor as ancillary data")
	}
	return nil
}

// Receive reads one descriptor sent by Send off conn. The returned *os.File
// wraps the kernel-delivered fd itself; the caller owns it and must close
// it eventually.
func Receive(conn *net.UnixConn) (*os.File, error) {
	buf := make([]byte, 1)
	oob := make([]byte, maxOOB)

	_, oobn, _, _, err := conn.ReadMsgUnix(buf, oob)
	if err != nil {
		return nil, liberr.IOError.Error(err, "receiving ancillary data")
	}

	scms, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return nil, liberr.ProtocolError.Error(err, "parsing socket control message")
	}
	if len(scms) == 0 {
		return nil, liberr.ProtocolError.Error(nil, "no ancillary data in descriptor transfer")
	}

	fds, err := unix.ParseUnixRights(&scms[0])
	if err != nil {
		return nil, liberr.ProtocolError.Error(err, "parsing SCM_RIGHTS")
	}
	if len(fds) == 0 {
		return nil, liberr.ProtocolError.Error(nil, "SCM_RIGHTS carried no descriptors")
	}

	return os.NewFile(uintptr(fds[0]), "fdpass"), nil
}
