// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strconv"
)

// A Value is a single decoded data value: a tag octet together with a window
// into the buffer holding the contents octets. The window is shared with the
// buffer the value was decoded from, it is not copied.
//
// The contents octets are consumed through the typed getter methods or
// through the cursor returned by [Value.Data]. Each getter checks that the
// tag of the value matches the requested type and consumes the contents.
//
// A Value is immutable after construction.
type Value struct {
	tag     Tag
	buf     []byte
	start   int
	end     int
	relaxed bool

	data *Decoder
}

func newValue(tag Tag, buf []byte, start, end int, relaxed bool) *Value {
	return &Value{
		tag: tag, buf: buf, start: start, end: end, relaxed: relaxed,
		data: &Decoder{buf: buf, start: start, end: end, pos: start, relaxed: relaxed},
	}
}

// NewString returns a Value holding s, encoded as a PrintableString if every
// character of s is allowed in one, and as a UTF8String otherwise.
func NewString(s string) *Value {
	tag := TagPrintableString
	if !isPrintableString(s) {
		tag = TagUTF8String
	}
	v, _ := NewStringValue(tag, s)
	return v
}

// NewStringValue returns a Value holding s encoded in the character set of
// the given string tag. NewStringValue fails if tag is not one of the
// supported string tags.
func NewStringValue(tag Tag, s string) (*Value, error) {
	b, err := encodeString(tag, s)
	if err != nil {
		return nil, err
	}
	return newValue(tag, b, 0, len(b), false), nil
}

// Parse decodes exactly one data value from b. Trailing bytes after the value
// are an error. Parse accepts BER constructs such as indefinite lengths; use
// [ParseDER] for strict DER parsing.
func Parse(b []byte) (*Value, error) {
	v, _, err := parse(b, 0, len(b), true, true)
	return v, err
}

// ParseDER decodes exactly one data value from b, enforcing the Distinguished
// Encoding Rules: lengths must be definite and minimally encoded.
func ParseDER(b []byte) (*Value, error) {
	v, _, err := parse(b, 0, len(b), false, true)
	return v, err
}

// parse decodes one data value from buf[pos:end]. It returns the value and
// the number of bytes of the original encoding, which can exceed the encoded
// size of the returned value if an indefinite-length encoding was rewritten.
// If exact is set, trailing bytes after the value are an error.
func parse(buf []byte, pos, end int, relaxed, exact bool) (*Value, int, error) {
	if end-pos < 2 {
		return nil, 0, syntaxError(0, errTruncated)
	}
	tag := Tag(buf[pos])
	lenByte := buf[pos+1]

	if lenByte == 0x80 {
		if !relaxed {
			return nil, 0, syntaxError(tag, errors.New("indefinite length in DER encoding"))
		}
		out, consumed, err := normalize(buf[pos:end])
		if err != nil {
			if err == errInsufficient {
				err = io.ErrUnexpectedEOF
			}
			return nil, 0, syntaxError(tag, err)
		}
		v, _, err := parse(out, 0, len(out), true, exact)
		if err != nil {
			return nil, 0, err
		}
		if v.tag != tag {
			return nil, 0, syntaxError(tag, errors.New("tag mismatch after indefinite length conversion"))
		}
		return v, consumed, nil
	}

	length := int(lenByte)
	hlen := 2
	if lenByte > 0x80 {
		w := int(lenByte & 0x7f)
		if w > 4 {
			return nil, 0, syntaxError(tag, errLengthTooWide)
		}
		if end-pos-2 < w {
			return nil, 0, syntaxError(tag, io.ErrUnexpectedEOF)
		}
		if buf[pos+2] == 0 && !relaxed {
			return nil, 0, syntaxError(tag, errors.New("redundant length octets"))
		}
		length = 0
		for _, c := range buf[pos+2 : pos+2+w] {
			length = length<<8 | int(c)
		}
		if length > math.MaxInt32 {
			return nil, 0, syntaxError(tag, errInvalidLength)
		}
		if length < 0x80 && !relaxed {
			return nil, 0, syntaxError(tag, errors.New("long form length should use short form"))
		}
		hlen = 2 + w
	}

	switch avail := end - pos - hlen; {
	case avail < length:
		return nil, 0, syntaxError(tag, io.ErrUnexpectedEOF)
	case avail > length && exact:
		return nil, 0, syntaxError(tag, errors.New("trailing data after value"))
	}
	return newValue(tag, buf, pos+hlen, pos+hlen+length, relaxed), hlen + length, nil
}

// ReadValue decodes one data value from r. The contents octets are read into
// a new buffer. An indefinite-length value is read until its outermost
// end-of-contents marker and rewritten into definite-length form; this may
// consume bytes from r beyond the value.
func ReadValue(r io.Reader) (*Value, error) {
	tb, err := readByte(r)
	if err != nil {
		return nil, err
	}
	tag := Tag(tb)
	lenByte, err := readByte(r)
	if err != nil {
		return nil, syntaxError(tag, noEOF(err))
	}

	if lenByte == 0x80 {
		out, err := normalizeStream(r, tag, lenByte)
		if err != nil {
			return nil, err
		}
		v, _, err := parse(out, 0, len(out), true, false)
		if err != nil {
			return nil, err
		}
		if v.tag != tag {
			return nil, syntaxError(tag, errors.New("tag mismatch after indefinite length conversion"))
		}
		return v, nil
	}

	length, err := readLength(r, tag, lenByte)
	if err != nil {
		return nil, err
	}
	content := make([]byte, length)
	if _, err := io.ReadFull(r, content); err != nil {
		return nil, syntaxError(tag, noEOF(err))
	}
	return newValue(tag, content, 0, length, true), nil
}

// readLength reads the remaining octets of a definite length field whose
// first octet is b. Stream lengths must always be minimally encoded.
func readLength(r io.Reader, tag Tag, b byte) (int, error) {
	if b < 0x80 {
		return int(b), nil
	}
	w := int(b & 0x7f)
	if w > 4 {
		return 0, syntaxError(tag, errLengthTooWide)
	}
	n := 0
	for i := range w {
		c, err := readByte(r)
		if err != nil {
			return 0, syntaxError(tag, noEOF(err))
		}
		if i == 0 && c == 0 {
			return 0, syntaxError(tag, errors.New("redundant length octets"))
		}
		n = n<<8 | int(c)
	}
	if n > math.MaxInt32 {
		return 0, syntaxError(tag, errInvalidLength)
	}
	if n < 0x80 {
		return 0, syntaxError(tag, errors.New("long form length should use short form"))
	}
	return n, nil
}

func readByte(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	return b[0], err
}

// Tag returns the tag of the value.
func (v *Value) Tag() Tag {
	return v.tag
}

// Len returns the number of contents octets.
func (v *Value) Len() int {
	return v.end - v.start
}

// Data returns the cursor over the contents octets of v. The cursor is shared
// with the typed getters: reading a getter consumes the contents.
func (v *Value) Data() *Decoder {
	return v.data
}

// Content returns a copy of the contents octets and consumes them.
func (v *Value) Content() []byte {
	v.data.pos = v.data.end
	return bytes.Clone(v.buf[v.start:v.end])
}

// WithTag returns a value identical to v but carrying the given tag. The
// contents are shared with v. This implements implicit re-tagging.
func (v *Value) WithTag(tag Tag) *Value {
	return newValue(tag, v.buf, v.start, v.end, v.relaxed)
}

// Components decodes the immediate children of a constructed value. If expect
// is nonzero the tag of v must equal it.
func (v *Value) Components(expect Tag) ([]*Value, error) {
	if expect != 0 && v.tag != expect {
		return nil, syntaxError(v.tag, errors.New("not constructed as "+expect.String()))
	}
	d := &Decoder{buf: v.buf, start: v.start, end: v.end, pos: v.start, relaxed: v.relaxed}
	var vals []*Value
	for d.More() {
		c, err := d.Next()
		if err != nil {
			return nil, err
		}
		vals = append(vals, c)
	}
	return vals, nil
}

// Equal reports whether v and other have the same tag and the same contents
// octets.
func (v *Value) Equal(other *Value) bool {
	if v == other {
		return true
	}
	if v.tag != other.tag {
		return false
	}
	if v.end-v.start != other.end-other.start {
		return false
	}
	if v.end > v.start && &v.buf[v.start] == &other.buf[other.start] {
		return true
	}
	return bytes.Equal(v.buf[v.start:v.end], other.buf[other.start:other.end])
}

// EncodeTo writes the DER encoding of v to w: the tag octet, the length in
// minimal form and the contents octets verbatim. The contents are consumed.
func (v *Value) EncodeTo(w io.Writer) error {
	hdr := appendLength([]byte{byte(v.tag)}, v.Len())
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	if _, err := w.Write(v.buf[v.start:v.end]); err != nil {
		return err
	}
	v.data.pos = v.data.end
	return nil
}

// Bytes returns the DER encoding of v and leaves the contents cursor at the
// start.
func (v *Value) Bytes() []byte {
	n := v.Len()
	b := make([]byte, 0, 1+lengthSize(n)+n)
	b = append(b, byte(v.tag))
	b = appendLength(b, n)
	b = append(b, v.buf[v.start:v.end]...)
	v.data.pos = v.data.start
	return b
}

// String returns a short description of v for debugging.
func (v *Value) String() string {
	return "Value" + v.tag.String() + ", length " + strconv.Itoa(v.Len())
}
