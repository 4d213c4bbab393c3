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

// Package protocol encodes and decodes the v0 execute request/reply records
// carried over a wire.Channel, independent of the transport and of
// descriptor-passing mechanics.
package protocol

import "strings"

// ExecuteVerb is the literal verb frame that opens every execute handshake.
const ExecuteVerb = "/v0/execute"

// Sentinel is the short frame sent after each descriptor transfer purely to
// force the receiver to drain ancillary data in lockstep with the byte
// stream; its contents are never inspected.
const Sentinel = "ok"

// Request is the decoded logical record of one execute call, minus the
// three descriptors (those are handled by fdpass and attached by the
// caller once received).
type Request struct {
	Cwd  string
	Argv []string
}

// JoinArgv rejoins argv with NUL separators, the wire representation sent
// as the third frame of the handshake.
func JoinArgv(argv []string) string {
	return strings.Join(argv, "\x00")
}

// SplitArgv splits a NUL-joined argv frame back into its elements. An empty
// input yields a single empty-string element, matching strings.Split's
// behavior and spec.md's "short argv (empty) is legal" edge case.
func SplitArgv(joined string) []string {
	return strings.Split(joined, "\x00")
}
