/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package mapcloser_test

import (
	"errors"

	. "github.com/nabbar/warmd/ioutils/mapcloser"

	. "github.com/onsi/ginkgo/v2"

	. "github.com/onsi/gomega"
)

type fakeCloser struct {
	err    error
	closed bool
}

func (f *fakeCloser) Close() error {
	f.closed = true
	return f.err
}

var _ = Describe("mapcloser", func() {
	It("Add registers closers and Len/Get report them", func() {
		c := New()
		Expect(c.Len()).To(Equal(0))

		a, b := &fakeCloser{}, &fakeCloser{}
		c.Add(a, nil, b)
		Expect(c.Len()).To(Equal(2))
		Expect(c.Get()).To(HaveLen(2))
	})

	It("Close closes every registered closer", func() {
		c := New()
		a, b := &fakeCloser{}, &fakeCloser{}
		c.Add(a, b)

		Expect(c.Close()).ToNot(HaveOccurred())
		Expect(a.closed).To(BeTrue())
		Expect(b.closed).To(BeTrue())
	})

	It("Close is idempotent", func() {
		c := New()
		a := &fakeCloser{}
		c.Add(a)

		Expect(c.Close()).ToNot(HaveOccurred())
		Expect(c.Close()).ToNot(HaveOccurred())
	})

	It("Close aggregates every closer's error", func() {
		c := New()
		c.Add(&fakeCloser{err: errors.New("fd 3 bad")}, &fakeCloser{err: errors.New("fd 4 bad")})

		err := c.Close()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("fd 3 bad"))
		Expect(err.Error()).To(ContainSubstring("fd 4 bad"))
	})

	It("Add after Close is a no-op", func() {
		c := New()
		Expect(c.Close()).ToNot(HaveOccurred())

		c.Add(&fakeCloser{})
		Expect(c.Len()).To(Equal(0))
	})
})
