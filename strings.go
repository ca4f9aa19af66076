// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

var (
	utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf32be = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
)

// stringEncoding returns the character encoding of the given string tag, or
// nil for the tags handled without a conversion table (ASCII and UTF-8).
func stringEncoding(tag Tag) encoding.Encoding {
	switch tag {
	case TagT61String:
		return charmap.ISO8859_1
	case TagBMPString:
		return utf16be
	case TagUniversalString:
		return utf32be
	default:
		return nil
	}
}

// decodeString converts the contents octets of a string value with the given
// tag into a Go string. Unmappable input is replaced with U+FFFD.
func decodeString(tag Tag, b []byte) (string, error) {
	switch tag {
	case TagUTF8String:
		return strings.ToValidUTF8(string(b), string(utf8.RuneError)), nil
	case TagPrintableString, TagIA5String, TagGeneralString:
		return decodeASCII(b), nil
	case TagT61String, TagBMPString, TagUniversalString:
		out, err := stringEncoding(tag).NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", errors.New("value is not a character string")
	}
}

// encodeString converts s into the character set of the given string tag.
// Characters without a representation in the target set are replaced with '?'.
func encodeString(tag Tag, s string) ([]byte, error) {
	switch tag {
	case TagUTF8String:
		return []byte(s), nil
	case TagPrintableString, TagIA5String, TagGeneralString:
		return encodeASCII(s), nil
	case TagT61String, TagBMPString, TagUniversalString:
		return encoding.ReplaceUnsupported(stringEncoding(tag).NewEncoder()).Bytes([]byte(s))
	default:
		return nil, errors.New("tag " + tag.String() + " is not a character string tag")
	}
}

// decodeASCII interprets b as US-ASCII, replacing high octets with U+FFFD.
func decodeASCII(b []byte) string {
	var s strings.Builder
	s.Grow(len(b))
	for _, c := range b {
		if c < 0x80 {
			s.WriteByte(c)
		} else {
			s.WriteRune(utf8.RuneError)
		}
	}
	return s.String()
}

// encodeASCII converts s to US-ASCII, replacing non-ASCII runes with '?'.
func encodeASCII(s string) []byte {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 {
			b = append(b, byte(r))
		} else {
			b = append(b, '?')
		}
	}
	return b
}

// isPrintableString reports whether every character of s is allowed in an
// ASN.1 PrintableString.
func isPrintableString(s string) bool {
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
		case 'A' <= r && r <= 'Z':
		case '0' <= r && r <= '9':
		default:
			if !strings.ContainsRune(" '()+,-./:=?", r) {
				return false
			}
		}
	}
	return true
}

//region String Getters

func (v *Value) stringValue(tag Tag, name string) (string, error) {
	if err := v.expect(tag, name); err != nil {
		return "", err
	}
	v.consume()
	s, err := decodeString(tag, v.buf[v.start:v.end])
	if err != nil {
		return "", syntaxError(tag, err)
	}
	return s, nil
}

// UTF8String decodes a UTF8String value. Invalid UTF-8 sequences are replaced
// with U+FFFD.
func (v *Value) UTF8String() (string, error) {
	return v.stringValue(TagUTF8String, "UTF8String")
}

// PrintableString decodes a PrintableString value.
func (v *Value) PrintableString() (string, error) {
	return v.stringValue(TagPrintableString, "PrintableString")
}

// IA5String decodes an IA5String value.
func (v *Value) IA5String() (string, error) {
	return v.stringValue(TagIA5String, "IA5String")
}

// GeneralString decodes a GeneralString value.
func (v *Value) GeneralString() (string, error) {
	return v.stringValue(TagGeneralString, "GeneralString")
}

// T61String decodes a T61String (TeletexString) value. The contents are
// interpreted as ISO 8859-1.
func (v *Value) T61String() (string, error) {
	return v.stringValue(TagT61String, "T61String")
}

// BMPString decodes a BMPString value encoded in UTF-16 big endian.
func (v *Value) BMPString() (string, error) {
	return v.stringValue(TagBMPString, "BMPString")
}

// UniversalString decodes a UniversalString value encoded in UTF-32 big
// endian. For historical reasons a failed conversion yields the empty string
// rather than an error.
func (v *Value) UniversalString() (string, error) {
	if err := v.expect(TagUniversalString, "UniversalString"); err != nil {
		return "", err
	}
	v.consume()
	s, err := decodeString(TagUniversalString, v.buf[v.start:v.end])
	if err != nil {
		return "", nil
	}
	return s, nil
}

// AsString decodes v as a character string based on its tag. It fails if the
// tag is not one of the supported string tags.
func (v *Value) AsString() (string, error) {
	switch v.tag {
	case TagUTF8String, TagPrintableString, TagIA5String, TagGeneralString,
		TagT61String, TagBMPString:
		return v.stringValue(v.tag, "character string")
	case TagUniversalString:
		return v.UniversalString()
	default:
		return "", syntaxError(v.tag, errors.New("value is not a character string"))
	}
}

//endregion
