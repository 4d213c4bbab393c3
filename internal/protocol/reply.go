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

package protocol

import (
	"strconv"

	liberr "github.com/nabbar/warmd/errors"
)

// MaxExitCode is the highest exit code an application may return; 255 is
// reserved for an abnormal handler close (AbnormalExitCode).
const MaxExitCode = 254

// AbnormalExitCode is sent when the handler is closed without the
// application ever producing a code.
const AbnormalExitCode = 255

// ClampExitCode forces code into [0, MaxExitCode]. A value already in
// range passes through unchanged; anything higher, including exactly 255,
// is clamped to MaxExitCode so that 255 stays exclusively reserved for
// abnormal handler close.
func ClampExitCode(code int) int {
	if code < 0 {
		return 0
	}
	if code > MaxExitCode {
		return MaxExitCode
	}
	return code
}

// EncodeExitCode renders an already-clamped exit code as its decimal wire
// representation.
func EncodeExitCode(code int) []byte {
	return []byte(strconv.Itoa(code))
}

// DecodeExitCode parses the reply frame's payload into an exit code in
// [0, 254], or exactly 255 (AbnormalExitCode). Anything else — empty,
// non-numeric, negative, or out of range — is a ProtocolError.
func DecodeExitCode(payload []byte) (int, error) {
	if len(payload) == 0 {
		return 0, liberr.ProtocolError.Error(nil, "empty exit code reply")
	}

	n, err := strconv.Atoi(string(payload))
	if err != nil {
		return 0, liberr.ProtocolError.Error(err, "exit code reply %q is not a decimal integer", payload)
	}
	if n < 0 || (n > MaxExitCode && n != AbnormalExitCode) {
		return 0, liberr.ProtocolError.Error(nil, "exit code reply %d out of range [0,%d]", n, MaxExitCode)
	}
	return n, nil
}
