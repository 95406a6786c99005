// Package hashutil provides the short string hash used for surface
// fingerprints (canvas pixel encodings and similar blobs).
package hashutil

import (
	"strconv"
	"unicode/utf16"
)

// ShortHash returns a compact lowercase-hex digest of s.
//
// The accumulator is a rolling multiplicative hash (h = h*31 + codeunit)
// over UTF-16 code units, truncated to 32-bit two's-complement at every
// step. The final value is rendered as the hex of its absolute value.
// The wraparound semantics are load-bearing: fingerprints compared across
// builds must hash identically, so this must never be widened to 64 bits.
func ShortHash(s string) string {
	var h int32
	for _, cu := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(cu)
	}

	// abs in 64 bits so the minimum int32 does not stay negative.
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 16)
}
