//go:build unix

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

package handler_test

import (
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/nabbar/warmd/internal/fdpass"
	"github.com/nabbar/warmd/internal/protocol"
	"github.com/nabbar/warmd/internal/wire"
	. "github.com/nabbar/warmd/server/handler"

	. "github.com/onsi/ginkgo/v2"

	. "github.com/onsi/gomega"
)

func socketpair() (*net.UnixConn, *net.UnixConn) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	Expect(err).ToNot(HaveOccurred())

	fa, err := net.FileConn(os.NewFile(uintptr(fds[0]), "a"))
	Expect(err).ToNot(HaveOccurred())
	fb, err := net.FileConn(os.NewFile(uintptr(fds[1]), "b"))
	Expect(err).ToNot(HaveOccurred())

	return fa.(*net.UnixConn), fb.(*net.UnixConn)
}

// sendExecute plays the client side of the handshake directly onto conn,
// so the handler under test can be exercised without internal/client.
func sendExecute(conn *net.UnixConn, cwd string, argv []string, stdin, stdout, stderr *os.File) {
	ch := wire.New(conn)
	Expect(ch.Send([]byte(protocol.ExecuteVerb))).ToNot(HaveOccurred())
	Expect(ch.Send([]byte(cwd))).ToNot(HaveOccurred())
	Expect(ch.Send([]byte(protocol.JoinArgv(argv)))).ToNot(HaveOccurred())

	for _, f := range []*os.File{stdin, stdout, stderr} {
		Expect(fdpass.Send(conn, f)).ToNot(HaveOccurred())
		Expect(ch.Send([]byte(protocol.Sentinel))).ToNot(HaveOccurred())
	}
}

var _ = Describe("handler", func() {
	It("Receive parses a full handshake into a Request", func() {
		client, server := socketpair()
		defer client.Close()

		rIn, wIn, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		defer rIn.Close()
		defer wIn.Close()

		rOut, wOut, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		defer rOut.Close()
		defer wOut.Close()

		rErr, wErr, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		defer rErr.Close()
		defer wErr.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			sendExecute(client, "/tmp", []string{"echo", "hi"}, rIn, wOut, wErr)
		}()

		h := New(server)
		req, err := h.Receive()
		Expect(err).ToNot(HaveOccurred())
		<-done

		Expect(req.Cwd).To(Equal("/tmp"))
		Expect(req.Argv).To(Equal([]string{"echo", "hi"}))
		Expect(req.Stdin).ToNot(BeNil())
		Expect(req.Stdout).ToNot(BeNil())
		Expect(req.Stderr).ToNot(BeNil())
		Expect(h.State()).To(Equal(Dispatching))

		Expect(h.CloseWithExitCode(0)).ToNot(HaveOccurred())
		Expect(h.State()).To(Equal(Closed))
	})

	It("Receive rejects an unsupported verb", func() {
		client, server := socketpair()
		defer client.Close()
		defer server.Close()

		go func() {
			ch := wire.New(client)
			_ = ch.Send([]byte("/v1/explode"))
		}()

		h := New(server)
		_, err := h.Receive()
		Expect(err).To(HaveOccurred())
		Expect(h.State()).To(Equal(Closed))
	})

	It("CloseWithExitCode closes the descriptors received during the handshake", func() {
		client, server := socketpair()
		defer client.Close()

		rIn, wIn, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		defer wIn.Close()

		rOut, wOut, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		defer rOut.Close()
		defer wOut.Close()

		rErr, wErr, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		defer rErr.Close()
		defer wErr.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			sendExecute(client, "/", []string{"noop"}, rIn, wOut, wErr)
		}()

		h := New(server)
		req, err := h.Receive()
		Expect(err).ToNot(HaveOccurred())
		<-done

		Expect(h.CloseWithExitCode(0)).ToNot(HaveOccurred())

		// The original rIn/rOut/rErr here are independent fds, dup'd
		// across the socket via SCM_RIGHTS; only the handler's own
		// copies are closed by CloseWithExitCode, so closing them again
		// fails.
		Expect(req.Stdin.Close()).To(HaveOccurred())
		Expect(req.Stdout.Close()).To(HaveOccurred())
		Expect(req.Stderr.Close()).To(HaveOccurred())
	})

	It("SendExitCode rejects a code outside [0,MaxExitCode]", func() {
		client, server := socketpair()
		defer client.Close()
		defer server.Close()

		h := New(server)
		Expect(h.SendExitCode(255)).To(HaveOccurred())
		Expect(h.SendExitCode(-1)).To(HaveOccurred())
	})

	It("CloseAbnormally sends the reserved exit code and closes the handler", func() {
		client, server := socketpair()
		defer client.Close()

		done := make(chan []byte, 1)
		go func() {
			ch := wire.New(client)
			payload, _, _ := ch.Receive()
			done <- payload
		}()

		h := New(server)
		Expect(h.CloseAbnormally()).ToNot(HaveOccurred())
		Expect(h.State()).To(Equal(Closed))
		Expect(protocol.DecodeExitCode(<-done)).To(Equal(protocol.AbnormalExitCode))
	})
})
