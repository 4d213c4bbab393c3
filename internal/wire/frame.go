// Package wire implements the length-prefixed framing channel used by every
// exchange between a warmd client and the daemon: a 4-byte big-endian length
// prefix followed by exactly that many payload bytes.
package wire

import "math"

// MaxFrameLength is the largest payload a single frame can carry (2^32-1).
const MaxFrameLength = math.MaxUint32

// lengthPrefixSize is the number of bytes used to encode a frame's length.
const lengthPrefixSize = 4
