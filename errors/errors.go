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

package errors

import (
	"fmt"
	"runtime"

	pkgerr "github.com/pkg/errors"
)

// Error is a CodeError-classified error carrying an optional cause and the
// call site where it was raised.
type Error interface {
	error

	// Code returns the classification of this error.
	Code() CodeError
	// Is reports whether this error, or any cause in its chain, carries code.
	Is(code CodeError) bool
	// Cause returns the wrapped error, or nil if there is none.
	Cause() error
	// Trace returns "file:line" of the call site that raised this error.
	Trace() string
}

type wireError struct {
	code  CodeError
	msg   string
	cause error
	frame runtime.Frame
}

// New builds an Error classified as code, wrapping cause (which may be
// nil) and formatting an additional message with fmt.Sprintf semantics.
// The call site is captured for later diagnostics via Trace().
func New(code CodeError, cause error, format string, args ...interface{}) Error {
	msg := code.String()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}

	if cause != nil {
		cause = pkgerr.WithStack(cause)
	}

	e := &wireError{code: code, msg: msg, cause: cause}

	pc := make([]uintptr, 1)
	if n := runtime.Callers(3, pc); n > 0 {
		frames := runtime.CallersFrames(pc[:n])
		f, _ := frames.Next()
		e.frame = f
	}

	return e
}

// Error returns the composed "code:label: message (caused by: ...)" string.
func (e *wireError) Error() string {
	s := e.code.label() + ": " + e.msg
	if e.cause != nil {
		s += " (caused by: " + e.cause.Error() + ")"
	}
	return s
}

func (e *wireError) Code() CodeError {
	if e == nil {
		return UnknownError
	}
	return e.code
}

func (e *wireError) Is(code CodeError) bool {
	if e == nil {
		return false
	}
	if e.code == code {
		return true
	}
	if c, ok := e.cause.(Error); ok {
		return c.Is(code)
	}
	return false
}

func (e *wireError) Cause() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func (e *wireError) Trace() string {
	if e == nil || e.frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", e.frame.File, e.frame.Line)
}

// Is reports whether err, or any cause in its chain, was raised with code.
// It is the package-level counterpart of Error.Is for use with plain `error`
// values that may or may not implement this package's Error interface.
func Is(err error, code CodeError) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(Error); ok {
		return e.Is(code)
	}
	return false
}

// CodeOf returns the CodeError carried by err, or UnknownError if err does
// not implement Error.
func CodeOf(err error) CodeError {
	if e, ok := err.(Error); ok {
		return e.Code()
	}
	return UnknownError
}
