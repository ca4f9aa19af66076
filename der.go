// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package der decodes DER and BER encoded data values as defined in
// [Rec. ITU-T X.690]. The package models a data value as a [Value]: a tag
// octet together with a window into the buffer holding the contents octets.
// Values are produced either from byte buffers or from an [io.Reader] and are
// consumed through typed getters such as [Value.Bool] or [Value.OID].
//
// The package accepts two dialects. Strict parsing ([ParseDER]) enforces the
// Distinguished Encoding Rules: definite, minimally encoded lengths only.
// Relaxed parsing ([Parse], [NewDecoder], [ReadValue]) additionally accepts
// Basic Encoding Rules constructs, most notably indefinite lengths, which are
// rewritten into their definite-length equivalent before the value is
// handed out.
//
// Only low tag numbers (0 to 30) are supported. The tag of a data value is a
// single octet.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
package der

import "strconv"

// Class represents the class of an ASN.1 tag, encoded in the two high bits of
// the identifier octet.
type Class uint8

//go:generate stringer -type=Class -trimprefix=Class

const (
	ClassUniversal       Class = 0
	ClassApplication     Class = 1
	ClassContextSpecific Class = 2
	ClassPrivate         Class = 3
)

// IsValid reports whether c is a valid class value.
func (c Class) IsValid() bool {
	return c <= ClassPrivate
}

// Tag is the identifier octet of a data value. It encodes the class of the
// value in bits 8 and 7, the constructed flag in bit 6 and the tag number in
// the remaining five bits.
type Tag byte

// Universal tags understood by this package. Constructed variants of these
// tags carry the same tag number with the constructed bit set.
const (
	TagEndOfContents   Tag = 0x00
	TagBoolean         Tag = 0x01
	TagInteger         Tag = 0x02
	TagBitString       Tag = 0x03
	TagOctetString     Tag = 0x04
	TagNull            Tag = 0x05
	TagOID             Tag = 0x06
	TagEnumerated      Tag = 0x0a
	TagUTF8String      Tag = 0x0c
	TagPrintableString Tag = 0x13
	TagT61String       Tag = 0x14
	TagIA5String       Tag = 0x16
	TagUTCTime         Tag = 0x17
	TagGeneralizedTime Tag = 0x18
	TagGeneralString   Tag = 0x1b
	TagUniversalString Tag = 0x1c
	TagBMPString       Tag = 0x1e
	TagSequence        Tag = 0x30
	TagSet             Tag = 0x31
)

// NewTag assembles a tag octet from its components. Only the low five bits of
// number are used.
func NewTag(class Class, constructed bool, number byte) Tag {
	t := Tag(class)<<6 | Tag(number&0x1f)
	if constructed {
		t |= 0x20
	}
	return t
}

// Class returns the class of the tag.
func (t Tag) Class() Class {
	return Class(t >> 6)
}

// Constructed reports whether the constructed bit of the tag is set.
func (t Tag) Constructed() bool {
	return t&0x20 != 0
}

// Number returns the tag number, that is the low five bits of the identifier
// octet.
func (t Tag) Number() byte {
	return byte(t) & 0x1f
}

// String returns a human-readable representation of t such as "[4]" or
// "[APPLICATION 7, Constructed]". Universal tags are printed with the bare
// tag number.
func (t Tag) String() string {
	b := []byte{'['}
	switch t.Class() {
	case ClassApplication:
		b = append(b, "APPLICATION "...)
	case ClassContextSpecific:
		b = append(b, "CONTEXT "...)
	case ClassPrivate:
		b = append(b, "PRIVATE "...)
	}
	b = strconv.AppendUint(b, uint64(t.Number()), 10)
	if t.Constructed() {
		b = append(b, ", Constructed"...)
	}
	return string(append(b, ']'))
}
