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

// Package mapcloser registers the descriptors a handler receives from a
// client so that close_with_exit_code can close every one of them on every
// exit path, exactly once. It is the teacher's ioutils/mapCloser Add/Get/
// Len/Close contract, scoped down to a single connection's lifetime instead
// of a context-cancellation-driven pool: a handler's Closer is always
// closed explicitly when the reply is sent, never by a context timing out,
// so the teacher's background polling goroutine has nothing to do here.
package mapcloser

import (
	"io"
	"strings"
	"sync"
)

// Closer is a thread-safe registry of io.Closer instances, closed exactly
// once by Close.
type Closer interface {
	// Add registers one or more closers. Nil closers are accepted and
	// filtered out. A no-op once Close has run.
	Add(clo ...io.Closer)
	// Get returns a snapshot of the registered closers, excluding nils.
	Get() []io.Closer
	// Len returns how many non-nil closers are currently registered.
	Len() int
	// Close closes every registered closer exactly once and aggregates
	// per-closer errors. Safe to call more than once; only the first
	// call does any work.
	Close() error
}

type closer struct {
	mu     sync.Mutex
	items  []io.Closer
	closed bool
}

// New returns an empty Closer.
func New() Closer {
	return &closer{items: make([]io.Closer, 0, 4)}
}

func (c *closer) Add(clo ...io.Closer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	for _, v := range clo {
		if v != nil {
			c.items = append(c.items, v)
		}
	}
}

func (c *closer) Get() []io.Closer {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]io.Closer, len(c.items))
	copy(out, c.items)
	return out
}

func (c *closer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *closer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var msgs []string
	for _, v := range c.items {
		if err := v.Close(); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	c.items = nil

	if len(msgs) > 0 {
		return errJoin(msgs)
	}
	return nil
}

type joinedError struct{ msg string }

func (e *joinedError) Error() string { return e.msg }

func errJoin(msgs []string) error {
	return &joinedError{msg: strings.Join(msgs, ", ")}
}
