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

package client_test

import (
	"net"
	"os"
	"path/filepath"

	. "github.com/nabbar/warmd/client"
	liberr "github.com/nabbar/warmd/errors"
	"github.com/nabbar/warmd/server/handler"

	. "github.com/onsi/ginkgo/v2"

	. "github.com/onsi/gomega"
)

var _ = Describe("client", func() {
	var (
		dir  string
		path string
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "client-test-*")
		Expect(err).ToNot(HaveOccurred())
		path = filepath.Join(dir, "control.sock")
	})

	AfterEach(func() {
		if dir != "" {
			os.RemoveAll(dir)
		}
	})

	It("Dial fails when no listener is bound", func() {
		_, err := Dial(path)
		Expect(err).To(HaveOccurred())
		Expect(liberr.Is(err, liberr.ConnectError)).To(BeTrue())
	})

	It("Execute round-trips a request and returns the application's exit code", func() {
		addr, err := net.ResolveUnixAddr("unix", path)
		Expect(err).ToNot(HaveOccurred())
		ln, err := net.ListenUnix("unix", addr)
		Expect(err).ToNot(HaveOccurred())
		defer ln.Close()
		defer os.Remove(path)

		done := make(chan struct{})
		go func() {
			defer close(done)
			conn, acceptErr := ln.AcceptUnix()
			Expect(acceptErr).ToNot(HaveOccurred())

			h := handler.New(conn)
			req, recvErr := h.Receive()
			Expect(recvErr).ToNot(HaveOccurred())
			Expect(req.Argv).To(Equal([]string{"echo", "hi"}))
			Expect(h.CloseWithExitCode(42)).ToNot(HaveOccurred())
		}()

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

		c, err := Dial(path)
		Expect(err).ToNot(HaveOccurred())

		code, err := c.Execute("/tmp", []string{"echo", "hi"}, rIn, wOut, wErr)
		Expect(err).ToNot(HaveOccurred())
		Expect(code).To(Equal(42))
		<-done
	})
})
