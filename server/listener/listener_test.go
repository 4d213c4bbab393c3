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

package listener_test

import (
	"net"
	"os"
	"path/filepath"
	"time"

	liberr "github.com/nabbar/warmd/errors"
	"github.com/nabbar/warmd/logger"
	loglvl "github.com/nabbar/warmd/logger/level"
	. "github.com/nabbar/warmd/server/listener"

	. "github.com/onsi/ginkgo/v2"

	. "github.com/onsi/gomega"
)

var _ = Describe("listener", func() {
	var (
		dir  string
		path string
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "listener-test-*")
		Expect(err).ToNot(HaveOccurred())
		path = filepath.Join(dir, "control.sock")
	})

	AfterEach(func() {
		if dir != "" {
			os.RemoveAll(dir)
		}
	})

	It("Bind creates the socket file and Close unlinks it", func() {
		l, err := Bind(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(l.Path()).To(Equal(path))

		_, statErr := os.Stat(path)
		Expect(statErr).ToNot(HaveOccurred())

		Expect(l.Close()).ToNot(HaveOccurred())
		_, statErr = os.Stat(path)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("Close is idempotent", func() {
		l, err := Bind(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(l.Close()).ToNot(HaveOccurred())
		Expect(l.Close()).ToNot(HaveOccurred())
	})

	It("Bind reclaims a stale socket file left behind by a crashed daemon", func() {
		addr, err := net.ResolveUnixAddr("unix", path)
		Expect(err).ToNot(HaveOccurred())
		raw, err := net.ListenUnix("unix", addr)
		Expect(err).ToNot(HaveOccurred())

		// Go unlinks a listener's socket file on Close by default; that
		// would erase the very file this test needs to leave behind, so
		// disable it to actually simulate a crash that never unlinked.
		raw.SetUnlinkOnClose(false)
		Expect(raw.Close()).ToNot(HaveOccurred())

		_, statErr := os.Stat(path)
		Expect(statErr).ToNot(HaveOccurred())

		l, err := Bind(path)
		Expect(err).ToNot(HaveOccurred())
		defer l.Close()
	})

	It("Bind fails against a live listener", func() {
		l, err := Bind(path)
		Expect(err).ToNot(HaveOccurred())
		defer l.Close()

		_, err = Bind(path)
		Expect(err).To(HaveOccurred())
		Expect(liberr.Is(err, liberr.AlreadyRunning)).To(BeTrue())
	})

	It("Accept returns a handler for an incoming connection", func() {
		l, err := Bind(path)
		Expect(err).ToNot(HaveOccurred())
		defer l.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			c, dialErr := net.Dial("unix", path)
			Expect(dialErr).ToNot(HaveOccurred())
			defer c.Close()
		}()

		h, err := l.Accept()
		Expect(err).ToNot(HaveOccurred())
		Expect(h).ToNot(BeNil())
		<-done
	})

	It("Watch logs a warning when the socket file disappears", func() {
		l, err := Bind(path)
		Expect(err).ToNot(HaveOccurred())
		defer l.Close()

		logPath := filepath.Join(dir, "watch.log")
		log, err := logger.New(logPath, loglvl.DebugLevel)
		Expect(err).ToNot(HaveOccurred())
		defer log.Close()

		stop, err := l.Watch(log)
		Expect(err).ToNot(HaveOccurred())
		defer stop()

		Expect(os.Remove(path)).ToNot(HaveOccurred())

		Eventually(func() (string, error) {
			data, err := os.ReadFile(logPath)
			return string(data), err
		}, time.Second, 10*time.Millisecond).Should(ContainSubstring("vanished"))
	})
})
