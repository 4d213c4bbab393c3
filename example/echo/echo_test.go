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

package echo_test

import (
	"os"

	. "github.com/nabbar/warmd/example/echo"
	"github.com/nabbar/warmd/server/handler"

	. "github.com/onsi/ginkgo/v2"

	. "github.com/onsi/gomega"
)

var _ = Describe("echo", func() {
	It("Runner writes the joined argv to stdout", func() {
		Expect(Loader()).ToNot(HaveOccurred())

		r, w, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		defer r.Close()

		code := Runner(&handler.Request{Argv: []string{"echo", "hi", "there"}, Stdout: w})
		Expect(w.Close()).ToNot(HaveOccurred())
		Expect(code).To(Equal(0))

		buf := make([]byte, 256)
		n, _ := r.Read(buf)
		Expect(string(buf[:n])).To(ContainSubstring("hi there"))
	})

	It("the exit verb returns the requested numeric code", func() {
		code := Runner(&handler.Request{Argv: []string{"echo", "exit", "76"}})
		Expect(code).To(Equal(76))
	})

	It("returns 1 when Stdout is nil", func() {
		code := Runner(&handler.Request{Argv: []string{"echo", "hi"}})
		Expect(code).To(Equal(1))
	})

	It("the panic verb panics, for exercising the dispatcher's recover", func() {
		Expect(func() {
			Runner(&handler.Request{Argv: []string{"echo", "panic"}})
		}).To(Panic())
	})
})
