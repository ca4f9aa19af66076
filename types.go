// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// BitString is a structure for representing bit strings of arbitrary lengths.
// Bits are packed into bytes beginning with the most significant bit. Padding
// bits in the final byte are zero.
type BitString struct {
	Bytes     []byte // bits packed into bytes.
	BitLength int    // length in bits.
}

// Len returns the number of bits in s.
func (s BitString) Len() int {
	return s.BitLength
}

// At returns the bit at the given index. If the index is out of range At panics.
func (s BitString) At(i int) int {
	if i < 0 || i >= s.BitLength {
		panic("index out of range")
	}
	x := i / 8
	y := 7 - uint(i%8)
	return int(s.Bytes[x]>>y) & 1
}

// RightAlign returns a slice where the padding bits are at the beginning. The
// slice may share memory with the BitString.
func (s BitString) RightAlign() []byte {
	shift := uint(8 - (s.BitLength % 8))
	if shift == 8 || len(s.Bytes) == 0 {
		return s.Bytes
	}

	a := make([]byte, len(s.Bytes))
	a[0] = s.Bytes[0] >> shift
	for i := 1; i < len(s.Bytes); i++ {
		a[i] = s.Bytes[i-1] << (8 - shift)
		a[i] |= s.Bytes[i] >> shift
	}
	return a
}

// ObjectIdentifier represents an ASN.1 OBJECT IDENTIFIER as the sequence of
// its components.
type ObjectIdentifier []uint

// Equal reports whether oid and other represent the same identifier.
func (oid ObjectIdentifier) Equal(other ObjectIdentifier) bool {
	return slices.Equal(oid, other)
}

// String returns the dot-separated notation of oid.
func (oid ObjectIdentifier) String() string {
	var s strings.Builder
	s.Grow(32)

	buf := make([]byte, 0, 19)
	for i, v := range oid {
		if i > 0 {
			s.WriteByte('.')
		}
		s.Write(strconv.AppendInt(buf, int64(v), 10))
	}

	return s.String()
}

// parseObjectIdentifier decodes the contents octets of an OBJECT IDENTIFIER
// data value. The first two components are packed into a single
// subidentifier, all subidentifiers use base-128 encoding.
func parseObjectIdentifier(b []byte) (ObjectIdentifier, error) {
	if len(b) == 0 {
		return nil, errors.New("empty object identifier")
	}
	oid := make(ObjectIdentifier, 1, len(b)+1)
	for n := 0; len(b) > 0; n++ {
		v, rest, err := decodeBase128(b)
		if err != nil {
			return nil, err
		}
		b = rest
		if n == 0 {
			switch {
			case v < 40:
				oid[0] = 0
			case v < 80:
				oid[0], v = 1, v-40
			default:
				oid[0], v = 2, v-80
			}
		}
		oid = append(oid, v)
	}
	return oid, nil
}

// decodeBase128 decodes a single base-128 encoded integer from the beginning
// of b and returns the remaining bytes. The encoding must be minimal, that is
// it must not begin with a 0x80 octet.
func decodeBase128(b []byte) (uint, []byte, error) {
	if b[0] == 0x80 {
		return 0, nil, errors.New("base-128 value is not minimally encoded")
	}
	var v uint
	for i, c := range b {
		if v > (^uint(0))>>7 {
			return 0, nil, errors.New("base-128 value too large")
		}
		v = v<<7 | uint(c&0x7f)
		if c&0x80 == 0 {
			return v, b[i+1:], nil
		}
	}
	return 0, nil, errTruncated
}
